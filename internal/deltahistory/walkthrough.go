package deltahistory

import "github.com/bnomei/nereid/internal/ops"

// WalkthroughDelta mirrors ops.Delta but over opaque string refs of the
// form "w:<id>/node/<node>", "w:<id>/edge/<from>/<to>/<kind>",
// "w:<id>/meta", as named in spec.md §4.2.
type WalkthroughDelta struct {
	Added   []string
	Updated []string
	Removed []string
}

// WalkthroughHistory is the walkthrough-scoped analog of History.
type WalkthroughHistory struct {
	entries []walkthroughEntry
}

type walkthroughEntry struct {
	FromRev uint64
	ToRev   uint64
	Delta   WalkthroughDelta
}

// NewWalkthroughHistory returns an empty history ring.
func NewWalkthroughHistory() *WalkthroughHistory {
	return &WalkthroughHistory{}
}

// Record appends a new entry, evicting the oldest if over Cap.
func (h *WalkthroughHistory) Record(fromRev, toRev uint64, delta WalkthroughDelta) {
	h.entries = append(h.entries, walkthroughEntry{FromRev: fromRev, ToRev: toRev, Delta: delta})
	if len(h.entries) > Cap {
		h.entries = h.entries[len(h.entries)-Cap:]
	}
}

// GetDelta mirrors History.GetDelta over the opaque string ref space.
func (h *WalkthroughHistory) GetDelta(sinceRev uint64) (WalkthroughDelta, error) {
	if len(h.entries) == 0 {
		return WalkthroughDelta{}, &ErrUnavailable{SupportedSinceRev: sinceRev}
	}
	currentRev := h.entries[len(h.entries)-1].ToRev
	if sinceRev == currentRev {
		return WalkthroughDelta{}, nil
	}

	start := -1
	for i, e := range h.entries {
		if e.FromRev == sinceRev {
			start = i
			break
		}
	}
	if start == -1 {
		return WalkthroughDelta{}, &ErrUnavailable{SupportedSinceRev: h.entries[0].FromRev}
	}

	chain := h.entries[start:]
	for i := 1; i < len(chain); i++ {
		if chain[i].FromRev != chain[i-1].ToRev {
			return WalkthroughDelta{}, &ErrUnavailable{SupportedSinceRev: h.entries[0].FromRev}
		}
	}

	return unionWalkthroughDeltas(chain), nil
}

// unionWalkthroughDeltas is the opaque-string-ref analog of unionDeltas: it
// folds the chain through the same add/update/remove collapse rules so a
// ref added in one entry and removed in a later one cancels out instead of
// appearing in both Added and Removed.
func unionWalkthroughDeltas(chain []walkthroughEntry) WalkthroughDelta {
	c := ops.NewDeltaCollapser[string](identityKey)
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
	return WalkthroughDelta{Added: added, Updated: updated, Removed: removed}
}

func identityKey(s string) string { return s }
