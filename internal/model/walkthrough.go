package model

import "github.com/bnomei/nereid/internal/ids"

// WalkthroughRevCap bounds a walkthrough's own revision counter. Kept
// distinct from RevisionCap: the original implementation tracks diagram and
// walkthrough revisions against two different constants, and nothing in the
// spec requires unifying them.
const WalkthroughRevCap uint64 = 1_000_000

// WalkthroughEdgeKind enumerates the relationship a WalkthroughEdge encodes
// between two steps.
type WalkthroughEdgeKind int

const (
	// Next is the default linear-progression edge.
	Next WalkthroughEdgeKind = iota
	// Branch marks a conditional fork to another step.
	Branch
	// SeeAlso is a non-sequential cross-reference between steps.
	SeeAlso
)

func (k WalkthroughEdgeKind) String() string {
	switch k {
	case Branch:
		return "branch"
	case SeeAlso:
		return "see_also"
	default:
		return "next"
	}
}

// ParseWalkthroughEdgeKind parses the wire-form edge kind string.
func ParseWalkthroughEdgeKind(s string) (WalkthroughEdgeKind, bool) {
	switch s {
	case "next":
		return Next, true
	case "branch":
		return Branch, true
	case "see_also":
		return SeeAlso, true
	default:
		return Next, false
	}
}

// WalkthroughNode is one step of a walkthrough: a titled, optionally
// Markdown-bodied node carrying object refs into the session's diagrams and
// free-form tags, plus an optional completion status.
type WalkthroughNode struct {
	NodeID ids.WalkthroughNodeId
	Title  string
	BodyMd *string
	Refs   []ids.ObjectRef
	Tags   []string
	Status *string
}

// WalkthroughEdge links two walkthrough nodes by id, typed by kind, with an
// optional label (e.g. a branch condition).
type WalkthroughEdge struct {
	FromNodeID ids.WalkthroughNodeId
	ToNodeID   ids.WalkthroughNodeId
	Kind       WalkthroughEdgeKind
	Label      *string
}

// Walkthrough is a guided tour through a session: an ordered set of nodes
// and edges, with an optional free-text source describing its provenance
// (e.g. "generated", "hand-authored").
type Walkthrough struct {
	WalkthroughID ids.WalkthroughId
	Title         string
	Rev           uint64
	Nodes         *OrderedMap[ids.WalkthroughNodeId, *WalkthroughNode]
	Edges         []WalkthroughEdge
	Source        *string
}

// NewWalkthrough constructs an empty Walkthrough at revision 0.
func NewWalkthrough(id ids.WalkthroughId, title string) *Walkthrough {
	return &Walkthrough{
		WalkthroughID: id,
		Title:         title,
		Rev:           0,
		Nodes:         NewOrderedMap[ids.WalkthroughNodeId, *WalkthroughNode](),
	}
}

// Clone returns a deep-enough copy of the walkthrough for use as a mutation
// sandbox, mirroring Diagram's apply-then-commit pattern.
func (w *Walkthrough) Clone() *Walkthrough {
	out := &Walkthrough{
		WalkthroughID: w.WalkthroughID,
		Title:         w.Title,
		Rev:           w.Rev,
		Nodes:         NewOrderedMap[ids.WalkthroughNodeId, *WalkthroughNode](),
		Edges:         append([]WalkthroughEdge(nil), w.Edges...),
		Source:        w.Source,
	}
	for _, id := range w.Nodes.Keys() {
		n, _ := w.Nodes.Get(id)
		clone := *n
		clone.Refs = append([]ids.ObjectRef(nil), n.Refs...)
		clone.Tags = append([]string(nil), n.Tags...)
		out.Nodes.Set(id, &clone)
	}
	return out
}

// NodeExists reports whether nodeID is present in the walkthrough.
func (w *Walkthrough) NodeExists(nodeID ids.WalkthroughNodeId) bool {
	return w.Nodes.Contains(nodeID)
}
