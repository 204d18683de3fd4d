package deltahistory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/ops"
)

func ref(t *testing.T, s string) ids.ObjectRef {
	t.Helper()
	r, err := ids.ParseObjectRef(s)
	require.NoError(t, err)
	return r
}

func TestHistory_DeltaChain(t *testing.T) {
	h := New()
	h.Record(5, 6, ops.Delta{Added: []ids.ObjectRef{ref(t, "d1/seq/participant/p:a")}})
	h.Record(6, 7, ops.Delta{Updated: []ids.ObjectRef{ref(t, "d1/seq/participant/p:a")}})
	h.Record(7, 8, ops.Delta{Removed: []ids.ObjectRef{ref(t, "d1/seq/participant/p:b")}})

	got, err := h.GetDelta(5)
	require.NoError(t, err)
	// p:a was added then updated across entries: the chain's union collapses
	// that to "added", mirroring ops.deltaBuilder's single-batch rule.
	assert.Len(t, got.Added, 1)
	assert.Empty(t, got.Updated)
	assert.Len(t, got.Removed, 1)
}

func TestHistory_DeltaChain_AddThenRemoveCancels(t *testing.T) {
	h := New()
	h.Record(5, 6, ops.Delta{Added: []ids.ObjectRef{ref(t, "d1/seq/participant/p:a")}})
	h.Record(6, 7, ops.Delta{Updated: []ids.ObjectRef{ref(t, "d1/seq/participant/p:b")}})
	h.Record(7, 8, ops.Delta{Removed: []ids.ObjectRef{ref(t, "d1/seq/participant/p:a")}})

	got, err := h.GetDelta(5)
	require.NoError(t, err)
	assert.Empty(t, got.Added)
	assert.Empty(t, got.Removed)
	assert.Len(t, got.Updated, 1)
}

func TestHistory_DeltaUnavailable(t *testing.T) {
	h := New()
	h.Record(5, 6, ops.Delta{})
	h.Record(6, 7, ops.Delta{})
	h.Record(7, 8, ops.Delta{})

	_, err := h.GetDelta(4)
	var unavailable *ErrUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, uint64(5), unavailable.SupportedSinceRev)
}

func TestHistory_SameRevReturnsEmptyDelta(t *testing.T) {
	h := New()
	h.Record(5, 6, ops.Delta{Added: []ids.ObjectRef{ref(t, "d1/seq/participant/p:a")}})

	got, err := h.GetDelta(6)
	require.NoError(t, err)
	assert.Empty(t, got.Added)
}
