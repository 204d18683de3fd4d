package ops

import (
	"fmt"

	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

// WalkthroughDelta mirrors Delta but over the opaque string refs spec.md
// §4.2 names for walkthroughs, rather than ids.ObjectRef.
type WalkthroughDelta struct {
	Added   []string
	Updated []string
	Removed []string
}

// WalkthroughApplyResult is returned by ApplyWalkthroughOps on success.
type WalkthroughApplyResult struct {
	NewRev  uint64
	Applied int
	Delta   WalkthroughDelta
}

func walkthroughNodeRef(walkthroughID ids.WalkthroughId, nodeID ids.WalkthroughNodeId) string {
	return fmt.Sprintf("w:%s/node/%s", walkthroughID.String(), nodeID.String())
}

func walkthroughEdgeRef(walkthroughID ids.WalkthroughId, e model.WalkthroughEdge) string {
	return fmt.Sprintf("w:%s/edge/%s/%s/%s", walkthroughID.String(), e.FromNodeID.String(), e.ToNodeID.String(), e.Kind.String())
}

func walkthroughMetaRef(walkthroughID ids.WalkthroughId) string {
	return fmt.Sprintf("w:%s/meta", walkthroughID.String())
}

// ApplyWalkthroughOps applies ops to w in order as one all-or-nothing
// batch, mirroring ApplyOps' five-step contract but against
// model.WalkthroughRevCap and the walkthrough's own op algebra.
func ApplyWalkthroughOps(w *model.Walkthrough, baseRev uint64, opsList []WalkthroughOp) (WalkthroughApplyResult, error) {
	if baseRev != w.Rev {
		return WalkthroughApplyResult{}, &ConflictError{BaseRev: baseRev, CurrentRev: w.Rev}
	}

	clone := w.Clone()
	b := newWalkthroughDeltaBuilder()

	for _, op := range opsList {
		if err := applyWalkthroughOp(clone, op, b); err != nil {
			return WalkthroughApplyResult{}, err
		}
	}

	*w = *clone
	w.Rev = (w.Rev + 1) % model.WalkthroughRevCap

	return WalkthroughApplyResult{
		NewRev:  w.Rev,
		Applied: len(opsList),
		Delta:   b.build(),
	}, nil
}

func applyWalkthroughOp(w *model.Walkthrough, op WalkthroughOp, b *walkthroughDeltaBuilder) error {
	switch o := op.(type) {
	case AddWalkthroughNode:
		if w.Nodes.Contains(o.NodeID) {
			return &AlreadyExistsError{Kind: "walkthrough node", ID: o.NodeID.String()}
		}
		w.Nodes.Set(o.NodeID, &model.WalkthroughNode{
			NodeID: o.NodeID,
			Title:  o.Title,
			BodyMd: o.BodyMd,
			Refs:   o.Refs,
			Tags:   o.Tags,
			Status: o.Status,
		})
		b.recordAdded(walkthroughNodeRef(w.WalkthroughID, o.NodeID))
		return nil

	case UpdateWalkthroughNode:
		n, ok := w.Nodes.Get(o.NodeID)
		if !ok {
			return &NotFoundError{Kind: "walkthrough node", ID: o.NodeID.String()}
		}
		if o.Patch.Title != nil {
			n.Title = *o.Patch.Title
		}
		if o.Patch.BodyMd != nil {
			n.BodyMd = *o.Patch.BodyMd
		}
		if o.Patch.Refs != nil {
			n.Refs = *o.Patch.Refs
		}
		if o.Patch.Tags != nil {
			n.Tags = *o.Patch.Tags
		}
		if o.Patch.Status != nil {
			n.Status = *o.Patch.Status
		}
		w.Nodes.Set(o.NodeID, n)
		b.recordUpdated(walkthroughNodeRef(w.WalkthroughID, o.NodeID))
		return nil

	case RemoveWalkthroughNode:
		if !w.Nodes.Contains(o.NodeID) {
			return &NotFoundError{Kind: "walkthrough node", ID: o.NodeID.String()}
		}
		w.Nodes.Delete(o.NodeID)
		b.recordRemoved(walkthroughNodeRef(w.WalkthroughID, o.NodeID))
		kept := w.Edges[:0:0]
		for _, e := range w.Edges {
			if e.FromNodeID.String() == o.NodeID.String() || e.ToNodeID.String() == o.NodeID.String() {
				b.recordRemoved(walkthroughEdgeRef(w.WalkthroughID, e))
				continue
			}
			kept = append(kept, e)
		}
		w.Edges = kept
		return nil

	case AddWalkthroughEdge:
		if !w.Nodes.Contains(o.FromNodeID) {
			return &NotFoundError{Kind: "walkthrough node", ID: o.FromNodeID.String()}
		}
		if !w.Nodes.Contains(o.ToNodeID) {
			return &NotFoundError{Kind: "walkthrough node", ID: o.ToNodeID.String()}
		}
		edge := model.WalkthroughEdge{FromNodeID: o.FromNodeID, ToNodeID: o.ToNodeID, Kind: o.Kind, Label: o.Label}
		for _, e := range w.Edges {
			if sameWalkthroughEdge(e, edge) {
				return &AlreadyExistsError{Kind: "walkthrough edge", ID: walkthroughEdgeRef(w.WalkthroughID, edge)}
			}
		}
		w.Edges = append(w.Edges, edge)
		b.recordAdded(walkthroughEdgeRef(w.WalkthroughID, edge))
		return nil

	case RemoveWalkthroughEdge:
		target := model.WalkthroughEdge{FromNodeID: o.FromNodeID, ToNodeID: o.ToNodeID, Kind: o.Kind}
		idx := -1
		for i, e := range w.Edges {
			if sameWalkthroughEdge(e, target) {
				idx = i
				break
			}
		}
		if idx == -1 {
			return &NotFoundError{Kind: "walkthrough edge", ID: walkthroughEdgeRef(w.WalkthroughID, target)}
		}
		removed := w.Edges[idx]
		w.Edges = append(w.Edges[:idx], w.Edges[idx+1:]...)
		b.recordRemoved(walkthroughEdgeRef(w.WalkthroughID, removed))
		return nil

	case SetWalkthroughMeta:
		if o.Patch.Title != nil {
			w.Title = *o.Patch.Title
		}
		if o.Patch.Source != nil {
			w.Source = *o.Patch.Source
		}
		b.recordUpdated(walkthroughMetaRef(w.WalkthroughID))
		return nil
	}
	return &UnsupportedOpError{OpKind: op.walkthroughOpKindName()}
}

func sameWalkthroughEdge(a, b model.WalkthroughEdge) bool {
	return a.FromNodeID.String() == b.FromNodeID.String() && a.ToNodeID.String() == b.ToNodeID.String() && a.Kind == b.Kind
}

// walkthroughDeltaBuilder accumulates added/updated/removed walkthrough
// string refs across one apply_ops batch, using the same collapse rules as
// deltaBuilder.
type walkthroughDeltaBuilder struct {
	c *DeltaCollapser[string]
}

func identityKey(s string) string { return s }

func newWalkthroughDeltaBuilder() *walkthroughDeltaBuilder {
	return &walkthroughDeltaBuilder{c: NewDeltaCollapser[string](identityKey)}
}

func (b *walkthroughDeltaBuilder) recordAdded(ref string)   { b.c.RecordAdded(ref) }
func (b *walkthroughDeltaBuilder) recordUpdated(ref string) { b.c.RecordUpdated(ref) }
func (b *walkthroughDeltaBuilder) recordRemoved(ref string) { b.c.RecordRemoved(ref) }

func (b *walkthroughDeltaBuilder) build() WalkthroughDelta {
	added, updated, removed := b.c.Result()
	return WalkthroughDelta{Added: added, Updated: updated, Removed: removed}
}
