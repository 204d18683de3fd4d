package mermaid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

// ParseError reports the first structural failure a tolerant parser hit,
// with line/column, per spec.md §7.
type ParseError struct {
	Line    int
	Col     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("mermaid parse error at %d:%d: %s", e.Line, e.Col, e.Message)
}

// diagramTypeMapping is an ordered prefix table, checked top to bottom, the
// same dispatch shape used by the pack's mermaid-check parser.
var diagramTypeMapping = []struct {
	prefix string
	kind   model.DiagramKind
}{
	{"sequenceDiagram", model.KindSequence},
	{"flowchart", model.KindFlowchart},
	{"graph", model.KindFlowchart},
}

// DetectKind scans source for the first non-blank, non-comment line and
// matches it against the known diagram-type prefixes.
func DetectKind(source string) (model.DiagramKind, error) {
	for i, raw := range splitLines(source) {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		for _, m := range diagramTypeMapping {
			if strings.HasPrefix(line, m.prefix) {
				return m.kind, nil
			}
		}
		return 0, &ParseError{Line: i + 1, Col: 1, Message: "unrecognized diagram type: " + line}
	}
	return 0, &ParseError{Line: 1, Col: 1, Message: "empty document"}
}

func splitLines(source string) []string {
	return strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
}

func stripComment(line string) string {
	if idx := strings.Index(line, "%%"); idx >= 0 {
		return line[:idx]
	}
	return line
}

var participantLine = regexp.MustCompile(`^participant\s+(.+?)\s*$`)
var messageLine = regexp.MustCompile(`^(\S+?)\s*(->>|-->>|-\)|-->|->|--x|-x)\s*(\S+?)\s*:\s*(.*)$`)

// ParseSequence tolerantly parses a `sequenceDiagram` document.
func ParseSequence(source string) (*model.SequenceAst, error) {
	ast := model.NewSequenceAst()
	nameToID := make(map[string]ids.ObjectId)
	nextParticipant := 0
	nextMessage := 0
	var orderKey int64

	lines := splitLines(source)
	started := false
	for i, raw := range lines {
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}
		if !started {
			if !strings.HasPrefix(line, "sequenceDiagram") {
				return nil, &ParseError{Line: i + 1, Col: 1, Message: "expected sequenceDiagram header"}
			}
			started = true
			continue
		}

		if m := participantLine.FindStringSubmatch(line); m != nil {
			name := m[1]
			if _, exists := nameToID[name]; exists {
				continue
			}
			id, err := allocParticipantID(&nextParticipant)
			if err != nil {
				return nil, &ParseError{Line: i + 1, Col: 1, Message: err.Error()}
			}
			nameToID[name] = id
			ast.Participants.Set(id, model.Participant{MermaidName: name})
			continue
		}

		if m := messageLine.FindStringSubmatch(line); m != nil {
			fromName, rawArrow, toName, text := m[1], m[2], m[3], m[4]
			fromID := resolveParticipant(ast, nameToID, &nextParticipant, fromName)
			toID := resolveParticipant(ast, nameToID, &nextParticipant, toName)
			kind := kindForArrow(rawArrow)
			msgID, err := ids.NewObjectId(fmt.Sprintf("m:%d", nextMessage))
			if err != nil {
				return nil, &ParseError{Line: i + 1, Col: 1, Message: err.Error()}
			}
			nextMessage++
			arrow := normalizeParsedArrow(kind, rawArrow)
			ast.Messages = append(ast.Messages, model.Message{
				MessageID: msgID,
				From:      fromID,
				To:        toID,
				Kind:      kind,
				Arrow:     arrow,
				Text:      text,
				OrderKey:  orderKey,
			})
			orderKey++
			continue
		}
		// Unknown trailing token: ignored per spec.md §4.7.
	}

	if !started {
		return nil, &ParseError{Line: 1, Col: 1, Message: "missing sequenceDiagram header"}
	}
	return ast, nil
}

func allocParticipantID(next *int) (ids.ObjectId, error) {
	id, err := ids.NewObjectId(fmt.Sprintf("p:%d", *next))
	*next++
	return id, err
}

func resolveParticipant(ast *model.SequenceAst, nameToID map[string]ids.ObjectId, next *int, name string) ids.ObjectId {
	if id, ok := nameToID[name]; ok {
		return id
	}
	id, _ := allocParticipantID(next)
	nameToID[name] = id
	ast.Participants.Set(id, model.Participant{MermaidName: name})
	return id
}

func kindForArrow(raw string) model.SequenceMessageKind {
	switch raw {
	case "-)":
		return model.Async
	case "-->>", "--x":
		return model.Return
	default:
		return model.Sync
	}
}

func normalizeParsedArrow(kind model.SequenceMessageKind, raw string) *string {
	if raw == kind.CanonicalArrow() {
		return nil
	}
	v := raw
	return &v
}

var flowHeaderLine = regexp.MustCompile(`^(flowchart|graph)\s+(TD|TB|LR|RL|BT)?`)
var nodeDefLine = regexp.MustCompile(`^(\w+)\s*(\[|\(\(|\(\[|\(|\{)\s*"?([^"\]\)\}]*?)"?\s*(\]\)|\)\)|\]|\)|\})\s*$`)
var edgeLine = regexp.MustCompile(`^(\w+)\s+([\-.<>ox=]+)\s*(?:\|([^|]*)\|)?\s*(\w+)\s*$`)
var linkStyleLine = regexp.MustCompile(`^linkStyle\s+(default|\d+)\s+(.*)$`)

// ParseFlowchart tolerantly parses a `flowchart`/`graph` document.
func ParseFlowchart(source string) (*model.FlowchartAst, error) {
	ast := model.NewFlowchartAst()
	idByMermaid := make(map[string]ids.ObjectId)
	nextNode, nextEdge := 0, 0

	lines := splitLines(source)
	started := false
	for i, raw := range lines {
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}
		if !started {
			if !flowHeaderLine.MatchString(line) {
				return nil, &ParseError{Line: i + 1, Col: 1, Message: "expected flowchart/graph header"}
			}
			started = true
			continue
		}

		if m := linkStyleLine.FindStringSubmatch(line); m != nil {
			if m[1] == "default" {
				style := m[2]
				ast.DefaultEdgeStyle = &style
			}
			continue
		}

		if m := nodeDefLine.FindStringSubmatch(line); m != nil {
			mermaidID, shapeOpen, label := m[1], m[2], m[3]
			id, ok := idByMermaid[mermaidID]
			if !ok {
				var err error
				id, err = ids.NewObjectId(fmt.Sprintf("n:%d", nextNode))
				if err != nil {
					return nil, &ParseError{Line: i + 1, Col: 1, Message: err.Error()}
				}
				nextNode++
				idByMermaid[mermaidID] = id
			}
			shape := shapeName(shapeOpen)
			explicitID := mermaidID
			ast.Nodes.Set(id, model.Node{Label: label, Shape: shape, MermaidID: &explicitID})
			continue
		}

		if m := edgeLine.FindStringSubmatch(line); m != nil {
			fromMermaid, connector, label, toMermaid := m[1], m[2], m[3], m[4]
			fromID := resolveNode(ast, idByMermaid, &nextNode, fromMermaid)
			toID := resolveNode(ast, idByMermaid, &nextNode, toMermaid)
			edgeID, err := ids.NewObjectId(fmt.Sprintf("e:%d", nextEdge))
			if err != nil {
				return nil, &ParseError{Line: i + 1, Col: 1, Message: err.Error()}
			}
			nextEdge++
			var labelPtr *string
			if label != "" {
				labelPtr = &label
			}
			var connectorPtr *string
			if connector != "-->" {
				connectorPtr = &connector
			}
			ast.Edges.Set(edgeID, model.Edge{From: fromID, To: toID, Label: labelPtr, Connector: connectorPtr})
			continue
		}
		// Unknown trailing token: ignored per spec.md §4.7.
	}

	if !started {
		return nil, &ParseError{Line: 1, Col: 1, Message: "missing flowchart/graph header"}
	}
	return ast, nil
}

func resolveNode(ast *model.FlowchartAst, idByMermaid map[string]ids.ObjectId, next *int, mermaidID string) ids.ObjectId {
	if id, ok := idByMermaid[mermaidID]; ok {
		return id
	}
	id, _ := ids.NewObjectId(fmt.Sprintf("n:%d", *next))
	*next++
	idByMermaid[mermaidID] = id
	explicit := mermaidID
	ast.Nodes.Set(id, model.Node{Label: mermaidID, MermaidID: &explicit})
	return id
}

func shapeName(open string) *string {
	var s string
	switch open {
	case "(":
		s = "round"
	case "{":
		s = "diamond"
	case "((", "([":
		s = "stadium"
	default:
		return nil
	}
	return &s
}
