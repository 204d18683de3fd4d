// Package deltahistory implements the bounded per-diagram (and
// per-walkthrough) FIFO of recent deltas that backs get_delta(since_rev),
// per spec.md §4.2.
package deltahistory

import (
	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/ops"
)

// Cap is the maximum number of entries retained per history ring.
const Cap = 64

// Entry is one recorded apply_ops outcome.
type Entry struct {
	FromRev uint64
	ToRev   uint64
	Delta   ops.Delta
}

// ErrUnavailable is returned by GetDelta when the ring cannot chain back to
// sinceRev; the caller should fetch a full snapshot instead.
type ErrUnavailable struct {
	SupportedSinceRev uint64
}

func (e *ErrUnavailable) Error() string {
	return "delta history does not reach the requested revision"
}

// History is a bounded FIFO ring of Entry, one per diagram.
type History struct {
	entries []Entry
}

// New returns an empty history ring.
func New() *History {
	return &History{}
}

// Record appends a new entry, evicting the oldest if over Cap.
func (h *History) Record(fromRev, toRev uint64, delta ops.Delta) {
	h.entries = append(h.entries, Entry{FromRev: fromRev, ToRev: toRev, Delta: delta})
	if len(h.entries) > Cap {
		h.entries = h.entries[len(h.entries)-Cap:]
	}
}

// GetDelta scans the ring for a contiguous chain of entries connecting
// sinceRev to the current revision and returns their union. If the chain
// cannot be completed (history truncated past sinceRev), it returns
// ErrUnavailable naming the oldest revision the ring can still serve.
func (h *History) GetDelta(sinceRev uint64) (ops.Delta, error) {
	if len(h.entries) == 0 {
		return ops.Delta{}, &ErrUnavailable{SupportedSinceRev: sinceRev}
	}
	currentRev := h.entries[len(h.entries)-1].ToRev
	if sinceRev == currentRev {
		return ops.Delta{}, nil
	}

	start := -1
	for i, e := range h.entries {
		if e.FromRev == sinceRev {
			start = i
			break
		}
	}
	if start == -1 {
		return ops.Delta{}, &ErrUnavailable{SupportedSinceRev: h.entries[0].FromRev}
	}

	chain := h.entries[start:]
	for i := 1; i < len(chain); i++ {
		if chain[i].FromRev != chain[i-1].ToRev {
			return ops.Delta{}, &ErrUnavailable{SupportedSinceRev: h.entries[0].FromRev}
		}
	}

	return unionDeltas(chain), nil
}

// unionDeltas folds a chain of already-collapsed per-entry deltas through
// the same add/update/remove collapse rules a single apply_ops batch uses,
// so a ref added in one entry and removed in a later one cancels out of the
// chain's union instead of appearing in both Added and Removed.
func unionDeltas(chain []Entry) ops.Delta {
	c := ops.NewDeltaCollapser[ids.ObjectRef](ids.ObjectRef.String)
	for _, e := range chain {
		for _, ref := range e.Delta.Added {
			c.RecordAdded(ref)
		}
		for _, ref := range e.Delta.Updated {
			c.RecordUpdated(ref)
		}
		for _, ref := range e.Delta.Removed {
			c.RecordRemoved(ref)
		}
	}
	added, updated, removed := c.Result()
	return ops.Delta{Added: added, Updated: updated, Removed: removed}
}
