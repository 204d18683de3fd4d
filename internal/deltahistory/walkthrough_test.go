package deltahistory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkthroughHistory_DeltaChain(t *testing.T) {
	h := NewWalkthroughHistory()
	h.Record(5, 6, WalkthroughDelta{Added: []string{"w:w1/node/n1"}})
	h.Record(6, 7, WalkthroughDelta{Updated: []string{"w:w1/node/n1"}})
	h.Record(7, 8, WalkthroughDelta{Removed: []string{"w:w1/node/n2"}})

	got, err := h.GetDelta(5)
	require.NoError(t, err)
	assert.Len(t, got.Added, 1)
	assert.Empty(t, got.Updated)
	assert.Len(t, got.Removed, 1)
}

func TestWalkthroughHistory_DeltaChain_AddThenRemoveCancels(t *testing.T) {
	h := NewWalkthroughHistory()
	h.Record(5, 6, WalkthroughDelta{Added: []string{"w:w1/node/n1"}})
	h.Record(6, 7, WalkthroughDelta{Updated: []string{"w:w1/node/n2"}})
	h.Record(7, 8, WalkthroughDelta{Removed: []string{"w:w1/node/n1"}})

	got, err := h.GetDelta(5)
	require.NoError(t, err)
	assert.Empty(t, got.Added)
	assert.Empty(t, got.Removed)
	assert.Len(t, got.Updated, 1)
}

func TestWalkthroughHistory_DeltaUnavailable(t *testing.T) {
	h := NewWalkthroughHistory()
	h.Record(5, 6, WalkthroughDelta{})
	h.Record(6, 7, WalkthroughDelta{})

	_, err := h.GetDelta(4)
	var unavailable *ErrUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, uint64(5), unavailable.SupportedSinceRev)
}

func TestWalkthroughHistory_SameRevReturnsEmptyDelta(t *testing.T) {
	h := NewWalkthroughHistory()
	h.Record(5, 6, WalkthroughDelta{Added: []string{"w:w1/node/n1"}})

	got, err := h.GetDelta(6)
	require.NoError(t, err)
	assert.Empty(t, got.Added)
}
