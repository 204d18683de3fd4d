package ops

import (
	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

// WalkthroughOp is implemented by every operation that mutates a
// Walkthrough. It is a separate sum type from Op: walkthroughs have their
// own revision counter (model.WalkthroughRevCap) and their own opaque
// string ref space, per spec.md §4.2.
type WalkthroughOp interface {
	walkthroughOpKindName() string
}

// WalkthroughNodePatch carries optional updates to a WalkthroughNode. A nil
// field means "keep". BodyMd and Status are themselves optional, so their
// patch fields are double pointers following ParticipantPatch's convention.
type WalkthroughNodePatch struct {
	Title  *string
	BodyMd **string
	Refs   *[]ids.ObjectRef
	Tags   *[]string
	Status **string
}

// AddWalkthroughNode creates a new walkthrough step.
type AddWalkthroughNode struct {
	NodeID ids.WalkthroughNodeId
	Title  string
	BodyMd *string
	Refs   []ids.ObjectRef
	Tags   []string
	Status *string
}

func (AddWalkthroughNode) walkthroughOpKindName() string { return "AddWalkthroughNode" }

// UpdateWalkthroughNode applies patch to an existing walkthrough node.
type UpdateWalkthroughNode struct {
	NodeID ids.WalkthroughNodeId
	Patch  WalkthroughNodePatch
}

func (UpdateWalkthroughNode) walkthroughOpKindName() string { return "UpdateWalkthroughNode" }

// RemoveWalkthroughNode removes a node and cascades to incident edges.
type RemoveWalkthroughNode struct {
	NodeID ids.WalkthroughNodeId
}

func (RemoveWalkthroughNode) walkthroughOpKindName() string { return "RemoveWalkthroughNode" }

// AddWalkthroughEdge links two existing walkthrough nodes.
type AddWalkthroughEdge struct {
	FromNodeID ids.WalkthroughNodeId
	ToNodeID   ids.WalkthroughNodeId
	Kind       model.WalkthroughEdgeKind
	Label      *string
}

func (AddWalkthroughEdge) walkthroughOpKindName() string { return "AddWalkthroughEdge" }

// RemoveWalkthroughEdge removes the edge identified by its
// (from, to, kind) triple — the same triple that forms its opaque ref.
type RemoveWalkthroughEdge struct {
	FromNodeID ids.WalkthroughNodeId
	ToNodeID   ids.WalkthroughNodeId
	Kind       model.WalkthroughEdgeKind
}

func (RemoveWalkthroughEdge) walkthroughOpKindName() string { return "RemoveWalkthroughEdge" }

// WalkthroughMetaPatch carries optional updates to a Walkthrough's own
// title/source fields.
type WalkthroughMetaPatch struct {
	Title  *string
	Source **string
}

// SetWalkthroughMeta applies patch to the walkthrough's own metadata.
type SetWalkthroughMeta struct {
	Patch WalkthroughMetaPatch
}

func (SetWalkthroughMeta) walkthroughOpKindName() string { return "SetWalkthroughMeta" }
