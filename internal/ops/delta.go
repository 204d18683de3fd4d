package ops

import "github.com/bnomei/nereid/internal/ids"

// Delta is the set of added/updated/removed object refs produced by one
// successful apply_ops batch.
type Delta struct {
	Added   []ids.ObjectRef
	Updated []ids.ObjectRef
	Removed []ids.ObjectRef
}

type collapseState int

const (
	collapseAdded collapseState = iota
	collapseUpdated
	collapseRemoved
)

// DeltaCollapser accumulates added/updated/removed events for refs of type T
// across an ordered sequence of transitions, applying the collapse rules
// from spec.md §4.1 step 3: added+removed cancels; updated+removed
// collapses to removed; added+updated collapses to added. A single batch of
// ops applies these transitions in op order; a chain of already-collapsed
// historical deltas (internal/deltahistory) applies them in chain order, so
// the same rules reconcile a ref added in one entry and removed in a later
// one. keyFn extracts the comparison key for a ref (ids.ObjectRef.String for
// typed refs, the identity function for opaque walkthrough string refs).
type DeltaCollapser[T any] struct {
	keyFn func(T) string
	order []T
	state map[string]collapseState
	refs  map[string]T
}

// NewDeltaCollapser returns an empty collapser keyed by keyFn.
func NewDeltaCollapser[T any](keyFn func(T) string) *DeltaCollapser[T] {
	return &DeltaCollapser[T]{
		keyFn: keyFn,
		state: make(map[string]collapseState),
		refs:  make(map[string]T),
	}
}

func (c *DeltaCollapser[T]) RecordAdded(ref T)   { c.transition(ref, collapseAdded) }
func (c *DeltaCollapser[T]) RecordUpdated(ref T) { c.transition(ref, collapseUpdated) }
func (c *DeltaCollapser[T]) RecordRemoved(ref T) { c.transition(ref, collapseRemoved) }

func (c *DeltaCollapser[T]) transition(ref T, event collapseState) {
	key := c.keyFn(ref)
	cur, exists := c.state[key]
	if !exists {
		c.state[key] = event
		c.refs[key] = ref
		c.order = append(c.order, ref)
		return
	}
	switch {
	case cur == collapseAdded && event == collapseRemoved:
		delete(c.state, key)
		delete(c.refs, key)
		for i, r := range c.order {
			if c.keyFn(r) == key {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	case cur == collapseUpdated && event == collapseRemoved:
		c.state[key] = collapseRemoved
	case cur == collapseAdded && event == collapseUpdated:
		// stays added
	default:
		c.state[key] = event
	}
}

// Result renders the accumulated state into added/updated/removed slices,
// preserving the order in which each ref first appeared.
func (c *DeltaCollapser[T]) Result() (added, updated, removed []T) {
	for _, ref := range c.order {
		switch c.state[c.keyFn(ref)] {
		case collapseAdded:
			added = append(added, ref)
		case collapseUpdated:
			updated = append(updated, ref)
		case collapseRemoved:
			removed = append(removed, ref)
		}
	}
	return added, updated, removed
}

// deltaBuilder accumulates added/updated/removed object refs across one
// apply_ops batch.
type deltaBuilder struct {
	c *DeltaCollapser[ids.ObjectRef]
}

func newDeltaBuilder() *deltaBuilder {
	return &deltaBuilder{c: NewDeltaCollapser[ids.ObjectRef](ids.ObjectRef.String)}
}

func (b *deltaBuilder) recordAdded(ref ids.ObjectRef)   { b.c.RecordAdded(ref) }
func (b *deltaBuilder) recordUpdated(ref ids.ObjectRef) { b.c.RecordUpdated(ref) }
func (b *deltaBuilder) recordRemoved(ref ids.ObjectRef) { b.c.RecordRemoved(ref) }

// build renders the accumulated state into a Delta.
func (b *deltaBuilder) build() Delta {
	added, updated, removed := b.c.Result()
	return Delta{Added: added, Updated: updated, Removed: removed}
}
