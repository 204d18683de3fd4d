package ops

import "github.com/bnomei/nereid/internal/ids"

// AddNode creates a new flowchart node.
type AddNode struct {
	NodeID    ids.ObjectId
	Label     string
	Shape     *string
	MermaidID *string
	Note      *string
}

func (AddNode) opKindName() string { return "AddNode" }
func (AddNode) isFlowOp()          {}

// NodePatch carries optional updates to a Node. MermaidID is deliberately
// absent here: it has its own dedicated uniqueness-checked op,
// SetNodeMermaidId.
type NodePatch struct {
	Label *string
	Shape **string
	Note  **string
}

// UpdateNode applies patch to an existing node.
type UpdateNode struct {
	NodeID ids.ObjectId
	Patch  NodePatch
}

func (UpdateNode) opKindName() string { return "UpdateNode" }
func (UpdateNode) isFlowOp()          {}

// SetNodeMermaidId sets or clears a node's explicit mermaid id, validating
// syntax and flowchart-wide uniqueness.
type SetNodeMermaidId struct {
	NodeID    ids.ObjectId
	MermaidID *string
}

func (SetNodeMermaidId) opKindName() string { return "SetNodeMermaidId" }
func (SetNodeMermaidId) isFlowOp()          {}

// SetNodeNote replaces a node's note outright (nil clears it).
type SetNodeNote struct {
	NodeID ids.ObjectId
	Note   *string
}

func (SetNodeNote) opKindName() string { return "SetNodeNote" }
func (SetNodeNote) isFlowOp()          {}

// RemoveNode removes a node and cascades to incident edges.
type RemoveNode struct {
	NodeID ids.ObjectId
}

func (RemoveNode) opKindName() string { return "RemoveNode" }
func (RemoveNode) isFlowOp()          {}

// AddEdge creates a new edge between two existing nodes.
type AddEdge struct {
	EdgeID    ids.ObjectId
	From      ids.ObjectId
	To        ids.ObjectId
	Label     *string
	Connector *string
	Style     *string
}

func (AddEdge) opKindName() string { return "AddEdge" }
func (AddEdge) isFlowOp()          {}

// EdgePatch carries optional updates to an Edge. From/To are immutable once
// created; re-pointing an edge is expressed as remove+add.
type EdgePatch struct {
	Label     **string
	Connector **string
	Style     **string
}

// UpdateEdge applies patch to an existing edge.
type UpdateEdge struct {
	EdgeID ids.ObjectId
	Patch  EdgePatch
}

func (UpdateEdge) opKindName() string { return "UpdateEdge" }
func (UpdateEdge) isFlowOp()          {}

// RemoveEdge removes a single edge by id.
type RemoveEdge struct {
	EdgeID ids.ObjectId
}

func (RemoveEdge) opKindName() string { return "RemoveEdge" }
func (RemoveEdge) isFlowOp()          {}
