// Package ops implements the operation algebra and the apply_ops
// transactional mutator: the Op sum type, per-op semantics, conflict
// detection, and change-set (delta) accounting described in spec.md §4.1.
package ops

import (
	"sort"

	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

// ApplyResult is returned by ApplyOps on success.
type ApplyResult struct {
	NewRev  uint64
	Applied int
	Delta   Delta
}

func seqCategory(part string) ids.CategoryPath {
	cp, _ := ids.NewCategoryPath([]string{"seq", part})
	return cp
}

func flowCategory(part string) ids.CategoryPath {
	cp, _ := ids.NewCategoryPath([]string{"flow", part})
	return cp
}

// ApplyOps applies ops to diagram in order, as one all-or-nothing batch,
// implementing the five-step contract in spec.md §4.1.
func ApplyOps(diagram *model.Diagram, baseRev uint64, opsList []Op) (ApplyResult, error) {
	if baseRev != diagram.Rev {
		return ApplyResult{}, &ConflictError{BaseRev: baseRev, CurrentRev: diagram.Rev}
	}

	for _, op := range opsList {
		if err := checkKind(diagram.Kind(), op); err != nil {
			return ApplyResult{}, err
		}
	}

	clone := diagram.Ast.Clone()
	builder := newDeltaBuilder()

	for _, op := range opsList {
		var err error
		switch diagram.Kind() {
		case model.KindSequence:
			err = applySeqOp(clone.Sequence, diagram.DiagramID, op.(SeqOp), builder)
		case model.KindFlowchart:
			err = applyFlowOp(clone.Flowchart, diagram.DiagramID, op.(FlowOp), builder)
		}
		if err != nil {
			// Batch rejected: diagram is untouched because we mutated
			// only the clone.
			return ApplyResult{}, err
		}
	}

	if clone.Kind == model.KindSequence {
		canonicalizeSequence(clone.Sequence)
	}

	diagram.Ast = clone
	diagram.Rev = (diagram.Rev + 1) % model.RevisionCap

	return ApplyResult{
		NewRev:  diagram.Rev,
		Applied: len(opsList),
		Delta:   builder.build(),
	}, nil
}

func checkKind(diagramKind model.DiagramKind, op Op) error {
	switch op.(type) {
	case SeqOp:
		if diagramKind != model.KindSequence {
			return &KindMismatchError{DiagramKind: diagramKind.String(), OpKind: op.opKindName()}
		}
	case FlowOp:
		if diagramKind != model.KindFlowchart {
			return &KindMismatchError{DiagramKind: diagramKind.String(), OpKind: op.opKindName()}
		}
	default:
		return &UnsupportedOpError{OpKind: op.opKindName()}
	}
	return nil
}

func canonicalizeSequence(ast *model.SequenceAst) {
	sort.SliceStable(ast.Messages, func(i, j int) bool {
		return model.CmpMessagesInOrder(ast.Messages[i], ast.Messages[j]) < 0
	})
}

func applySeqOp(ast *model.SequenceAst, diagramID ids.DiagramId, op SeqOp, b *deltaBuilder) error {
	switch o := op.(type) {
	case AddParticipant:
		if ast.Participants.Contains(o.ParticipantID) {
			return &AlreadyExistsError{Kind: "participant", ID: o.ParticipantID.String()}
		}
		ast.Participants.Set(o.ParticipantID, model.Participant{
			MermaidName: o.MermaidName,
			Role:        o.Role,
			Note:        o.Note,
		})
		b.recordAdded(ids.NewObjectRef(diagramID, seqCategory("participant"), o.ParticipantID))
		return nil

	case UpdateParticipant:
		p, ok := ast.Participants.Get(o.ParticipantID)
		if !ok {
			return &NotFoundError{Kind: "participant", ID: o.ParticipantID.String()}
		}
		if o.Patch.MermaidName != nil {
			p.MermaidName = *o.Patch.MermaidName
		}
		if o.Patch.Role != nil {
			p.Role = *o.Patch.Role
		}
		if o.Patch.Note != nil {
			p.Note = *o.Patch.Note
		}
		ast.Participants.Set(o.ParticipantID, p)
		b.recordUpdated(ids.NewObjectRef(diagramID, seqCategory("participant"), o.ParticipantID))
		return nil

	case SetParticipantNote:
		p, ok := ast.Participants.Get(o.ParticipantID)
		if !ok {
			return &NotFoundError{Kind: "participant", ID: o.ParticipantID.String()}
		}
		p.Note = o.Note
		ast.Participants.Set(o.ParticipantID, p)
		b.recordUpdated(ids.NewObjectRef(diagramID, seqCategory("participant"), o.ParticipantID))
		return nil

	case RemoveParticipant:
		if !ast.Participants.Contains(o.ParticipantID) {
			return &NotFoundError{Kind: "participant", ID: o.ParticipantID.String()}
		}
		ast.Participants.Delete(o.ParticipantID)
		b.recordRemoved(ids.NewObjectRef(diagramID, seqCategory("participant"), o.ParticipantID))
		kept := ast.Messages[:0:0]
		for _, m := range ast.Messages {
			if m.From.String() == o.ParticipantID.String() || m.To.String() == o.ParticipantID.String() {
				b.recordRemoved(ids.NewObjectRef(diagramID, seqCategory("message"), m.MessageID))
				continue
			}
			kept = append(kept, m)
		}
		ast.Messages = kept
		return nil

	case AddMessage:
		if !ast.Participants.Contains(o.From) {
			return &NotFoundError{Kind: "participant", ID: o.From.String()}
		}
		if !ast.Participants.Contains(o.To) {
			return &NotFoundError{Kind: "participant", ID: o.To.String()}
		}
		for _, m := range ast.Messages {
			if m.MessageID.String() == o.MessageID.String() {
				return &AlreadyExistsError{Kind: "message", ID: o.MessageID.String()}
			}
		}
		ast.Messages = append(ast.Messages, model.Message{
			MessageID: o.MessageID,
			From:      o.From,
			To:        o.To,
			Kind:      o.Kind,
			Arrow:     normalizeArrow(o.Kind, o.Arrow),
			Text:      o.Text,
			OrderKey:  o.OrderKey,
		})
		b.recordAdded(ids.NewObjectRef(diagramID, seqCategory("message"), o.MessageID))
		return nil

	case UpdateMessage:
		idx := -1
		for i, m := range ast.Messages {
			if m.MessageID.String() == o.MessageID.String() {
				idx = i
				break
			}
		}
		if idx == -1 {
			return &NotFoundError{Kind: "message", ID: o.MessageID.String()}
		}
		m := ast.Messages[idx]
		if o.Patch.Kind != nil {
			m.Kind = *o.Patch.Kind
		}
		if o.Patch.Arrow != nil {
			m.Arrow = *o.Patch.Arrow
		}
		if o.Patch.Text != nil {
			m.Text = *o.Patch.Text
		}
		if o.Patch.OrderKey != nil {
			m.OrderKey = *o.Patch.OrderKey
		}
		m.Arrow = normalizeArrow(m.Kind, m.Arrow)
		ast.Messages[idx] = m
		b.recordUpdated(ids.NewObjectRef(diagramID, seqCategory("message"), o.MessageID))
		return nil

	case RemoveMessage:
		idx := -1
		for i, m := range ast.Messages {
			if m.MessageID.String() == o.MessageID.String() {
				idx = i
				break
			}
		}
		if idx == -1 {
			return &NotFoundError{Kind: "message", ID: o.MessageID.String()}
		}
		ast.Messages = append(ast.Messages[:idx], ast.Messages[idx+1:]...)
		b.recordRemoved(ids.NewObjectRef(diagramID, seqCategory("message"), o.MessageID))
		return nil
	}
	return &UnsupportedOpError{OpKind: op.opKindName()}
}

func applyFlowOp(ast *model.FlowchartAst, diagramID ids.DiagramId, op FlowOp, b *deltaBuilder) error {
	switch o := op.(type) {
	case AddNode:
		if ast.Nodes.Contains(o.NodeID) {
			return &AlreadyExistsError{Kind: "node", ID: o.NodeID.String()}
		}
		if o.MermaidID != nil {
			if err := validateMermaidIDSyntax(*o.MermaidID); err != nil {
				return err
			}
			if other, ok := findMermaidIDCollision(ast, o.NodeID, *o.MermaidID); ok {
				return &DuplicateFlowNodeMermaidIDError{MermaidID: *o.MermaidID, OtherID: other}
			}
		}
		ast.Nodes.Set(o.NodeID, model.Node{Label: o.Label, Shape: o.Shape, MermaidID: o.MermaidID, Note: o.Note})
		b.recordAdded(ids.NewObjectRef(diagramID, flowCategory("node"), o.NodeID))
		return nil

	case UpdateNode:
		n, ok := ast.Nodes.Get(o.NodeID)
		if !ok {
			return &NotFoundError{Kind: "node", ID: o.NodeID.String()}
		}
		if o.Patch.Label != nil {
			n.Label = *o.Patch.Label
		}
		if o.Patch.Shape != nil {
			n.Shape = *o.Patch.Shape
		}
		if o.Patch.Note != nil {
			n.Note = *o.Patch.Note
		}
		ast.Nodes.Set(o.NodeID, n)
		b.recordUpdated(ids.NewObjectRef(diagramID, flowCategory("node"), o.NodeID))
		return nil

	case SetNodeMermaidId:
		n, ok := ast.Nodes.Get(o.NodeID)
		if !ok {
			return &NotFoundError{Kind: "node", ID: o.NodeID.String()}
		}
		if o.MermaidID != nil {
			if err := validateMermaidIDSyntax(*o.MermaidID); err != nil {
				return err
			}
			if other, ok := findMermaidIDCollision(ast, o.NodeID, *o.MermaidID); ok {
				return &DuplicateFlowNodeMermaidIDError{MermaidID: *o.MermaidID, OtherID: other}
			}
		}
		n.MermaidID = o.MermaidID
		ast.Nodes.Set(o.NodeID, n)
		b.recordUpdated(ids.NewObjectRef(diagramID, flowCategory("node"), o.NodeID))
		return nil

	case SetNodeNote:
		n, ok := ast.Nodes.Get(o.NodeID)
		if !ok {
			return &NotFoundError{Kind: "node", ID: o.NodeID.String()}
		}
		n.Note = o.Note
		ast.Nodes.Set(o.NodeID, n)
		b.recordUpdated(ids.NewObjectRef(diagramID, flowCategory("node"), o.NodeID))
		return nil

	case RemoveNode:
		if !ast.Nodes.Contains(o.NodeID) {
			return &NotFoundError{Kind: "node", ID: o.NodeID.String()}
		}
		ast.Nodes.Delete(o.NodeID)
		b.recordRemoved(ids.NewObjectRef(diagramID, flowCategory("node"), o.NodeID))
		for _, edgeID := range ast.Edges.Keys() {
			e, _ := ast.Edges.Get(edgeID)
			if e.From.String() == o.NodeID.String() || e.To.String() == o.NodeID.String() {
				ast.Edges.Delete(edgeID)
				b.recordRemoved(ids.NewObjectRef(diagramID, flowCategory("edge"), edgeID))
			}
		}
		return nil

	case AddEdge:
		if !ast.Nodes.Contains(o.From) {
			return &MissingFlowNodeError{ID: o.From.String()}
		}
		if !ast.Nodes.Contains(o.To) {
			return &MissingFlowNodeError{ID: o.To.String()}
		}
		if ast.Edges.Contains(o.EdgeID) {
			return &AlreadyExistsError{Kind: "edge", ID: o.EdgeID.String()}
		}
		ast.Edges.Set(o.EdgeID, model.Edge{
			From:      o.From,
			To:        o.To,
			Label:     o.Label,
			Connector: normalizeConnector(o.Connector),
			Style:     o.Style,
		})
		b.recordAdded(ids.NewObjectRef(diagramID, flowCategory("edge"), o.EdgeID))
		return nil

	case UpdateEdge:
		e, ok := ast.Edges.Get(o.EdgeID)
		if !ok {
			return &NotFoundError{Kind: "edge", ID: o.EdgeID.String()}
		}
		if o.Patch.Label != nil {
			e.Label = *o.Patch.Label
		}
		if o.Patch.Connector != nil {
			e.Connector = *o.Patch.Connector
		}
		if o.Patch.Style != nil {
			e.Style = *o.Patch.Style
		}
		e.Connector = normalizeConnector(e.Connector)
		ast.Edges.Set(o.EdgeID, e)
		b.recordUpdated(ids.NewObjectRef(diagramID, flowCategory("edge"), o.EdgeID))
		return nil

	case RemoveEdge:
		if !ast.Edges.Contains(o.EdgeID) {
			return &NotFoundError{Kind: "edge", ID: o.EdgeID.String()}
		}
		ast.Edges.Delete(o.EdgeID)
		b.recordRemoved(ids.NewObjectRef(diagramID, flowCategory("edge"), o.EdgeID))
		return nil
	}
	return &UnsupportedOpError{OpKind: op.opKindName()}
}

// findMermaidIDCollision reports whether candidate collides with another
// node's explicit-or-implicit mermaid id, per spec.md §4.1's
// SetNodeMermaidId contract.
func findMermaidIDCollision(ast *model.FlowchartAst, selfID ids.ObjectId, candidate string) (string, bool) {
	for _, nodeID := range ast.Nodes.Keys() {
		if nodeID.String() == selfID.String() {
			continue
		}
		node, _ := ast.Nodes.Get(nodeID)
		if existing, ok := model.MermaidIDForUniqueness(nodeID, node); ok && existing == candidate {
			return nodeID.String(), true
		}
	}
	return "", false
}
