// Package mermaid implements the canonical Mermaid export and the tolerant
// Mermaid import described in spec.md §4.7.
package mermaid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bnomei/nereid/internal/model"
)

var unsafeIDChar = regexp.MustCompile(`[^A-Za-z0-9_]`)
var startsWithLetter = regexp.MustCompile(`^[A-Za-z]`)

// SafeID maps s to a Mermaid-safe identifier: each non-`[A-Za-z0-9_]`
// character becomes `_`, and an `id_` prefix is added if the result doesn't start with
// a letter.
func SafeID(s string) string {
	mapped := unsafeIDChar.ReplaceAllString(s, "_")
	if !startsWithLetter.MatchString(mapped) {
		mapped = "id_" + mapped
	}
	return mapped
}

// EscapeLabel escapes `"`, `\`, and newline for embedding in a quoted
// Mermaid label.
func EscapeLabel(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// ExportSequence renders ast as canonical Mermaid sequenceDiagram text.
func ExportSequence(ast *model.SequenceAst) string {
	var b strings.Builder
	b.WriteString("sequenceDiagram\n")

	for _, pID := range ast.Participants.Keys() {
		p, _ := ast.Participants.Get(pID)
		fmt.Fprintf(&b, "    participant %s\n", p.MermaidName)
	}

	sorted := append([]model.Message(nil), ast.Messages...)
	sortMessagesInPlace(sorted)

	nameOf := func(id string) string {
		for _, pID := range ast.Participants.Keys() {
			if pID.String() == id {
				p, _ := ast.Participants.Get(pID)
				return p.MermaidName
			}
		}
		return id
	}

	for _, m := range sorted {
		arrow := m.EffectiveArrow()
		fmt.Fprintf(&b, "    %s%s%s: %s\n", nameOf(m.From.String()), arrow, nameOf(m.To.String()), EscapeLabel(m.Text))
	}

	return b.String()
}

func sortMessagesInPlace(messages []model.Message) {
	for i := 1; i < len(messages); i++ {
		for j := i; j > 0 && model.CmpMessagesInOrder(messages[j-1], messages[j]) > 0; j-- {
			messages[j-1], messages[j] = messages[j], messages[j-1]
		}
	}
}

// ExportFlowchart renders ast as canonical Mermaid flowchart TD text.
func ExportFlowchart(ast *model.FlowchartAst) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")

	idFor := func(nodeID string, node model.Node) string {
		if node.MermaidID != nil && *node.MermaidID != "" {
			return *node.MermaidID
		}
		return SafeID(nodeID)
	}

	for _, nodeID := range ast.Nodes.Keys() {
		node, _ := ast.Nodes.Get(nodeID)
		id := idFor(nodeID.String(), node)
		open, close := shapeDelims(node.Shape)
		fmt.Fprintf(&b, "    %s%s\"%s\"%s\n", id, open, EscapeLabel(node.Label), close)
	}

	for i, edgeID := range ast.Edges.Keys() {
		e, _ := ast.Edges.Get(edgeID)
		fromNode, _ := ast.Nodes.Get(e.From)
		toNode, _ := ast.Nodes.Get(e.To)
		connector := "-->"
		if e.Connector != nil {
			connector = *e.Connector
		}
		if e.Label != nil && *e.Label != "" {
			fmt.Fprintf(&b, "    %s %s|%s| %s\n", idFor(e.From.String(), fromNode), connector, EscapeLabel(*e.Label), idFor(e.To.String(), toNode))
		} else {
			fmt.Fprintf(&b, "    %s %s %s\n", idFor(e.From.String(), fromNode), connector, idFor(e.To.String(), toNode))
		}
		if e.Style != nil {
			fmt.Fprintf(&b, "    linkStyle %d %s\n", i, *e.Style)
		}
	}

	if ast.DefaultEdgeStyle != nil {
		fmt.Fprintf(&b, "    linkStyle default %s\n", *ast.DefaultEdgeStyle)
	}

	return b.String()
}

func shapeDelims(shape *string) (string, string) {
	if shape == nil {
		return "[", "]"
	}
	switch *shape {
	case "round":
		return "(", ")"
	case "diamond":
		return "{", "}"
	case "stadium":
		return "([", "])"
	default:
		return "[", "]"
	}
}
