package model

import "github.com/bnomei/nereid/internal/ids"

// Node is a flowchart box.
type Node struct {
	Label      string
	Shape      *string
	MermaidID  *string
	Note       *string
}

// Edge connects two flowchart nodes.
type Edge struct {
	From      ids.ObjectId
	To        ids.ObjectId
	Label     *string
	Connector *string
	Style     *string
}

// FlowchartAst is the typed object tree for a flowchart diagram.
type FlowchartAst struct {
	Nodes             *OrderedMap[ids.ObjectId, Node]
	Edges             *OrderedMap[ids.ObjectId, Edge]
	DefaultEdgeStyle  *string
	NodeGroups        *OrderedMap[ids.ObjectId, ids.ObjectId] // node id -> group id
}

// NewFlowchartAst returns an empty flowchart AST.
func NewFlowchartAst() *FlowchartAst {
	return &FlowchartAst{
		Nodes:      NewOrderedMap[ids.ObjectId, Node](),
		Edges:      NewOrderedMap[ids.ObjectId, Edge](),
		NodeGroups: NewOrderedMap[ids.ObjectId, ids.ObjectId](),
	}
}

// Clone returns a deep-enough copy of the AST for use as a mutation sandbox.
func (a *FlowchartAst) Clone() *FlowchartAst {
	return &FlowchartAst{
		Nodes:            a.Nodes.Clone(),
		Edges:            a.Edges.Clone(),
		DefaultEdgeStyle: a.DefaultEdgeStyle,
		NodeGroups:       a.NodeGroups.Clone(),
	}
}

// MermaidIDForUniqueness returns the mermaid id that participates in the
// flowchart-wide mermaid-id uniqueness check: the node's explicit
// MermaidID if set, otherwise the suffix of nodeID after an "n:" prefix.
func MermaidIDForUniqueness(nodeID ids.ObjectId, node Node) (string, bool) {
	if node.MermaidID != nil && *node.MermaidID != "" {
		return *node.MermaidID, true
	}
	raw := nodeID.String()
	const prefix = "n:"
	if len(raw) > len(prefix) && raw[:len(prefix)] == prefix {
		return raw[len(prefix):], true
	}
	return "", false
}
