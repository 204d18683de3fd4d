package recents

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "recents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTouchThenList(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Touch("/sessions/a"))
	require.NoError(t, s.Touch("/sessions/b"))
	require.NoError(t, s.Touch("/sessions/a"))

	entries, err := s.List(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byPath := map[string]Entry{}
	for _, e := range entries {
		byPath[e.Path] = e
	}
	assert.Equal(t, 2, byPath["/sessions/a"].OpenCount)
	assert.Equal(t, 1, byPath["/sessions/b"].OpenCount)
}

func TestForget(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Touch("/sessions/a"))
	require.NoError(t, s.Forget("/sessions/a"))

	entries, err := s.List(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
