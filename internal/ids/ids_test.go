package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectId_Valid(t *testing.T) {
	id, err := NewObjectId("n:a")
	require.NoError(t, err)
	assert.Equal(t, "n:a", id.String())
}

func TestNewObjectId_Empty(t *testing.T) {
	_, err := NewObjectId("")
	require.Error(t, err)
}

func TestNewObjectId_ControlChar(t *testing.T) {
	_, err := NewObjectId("n:a\x01b")
	require.Error(t, err)
}

func TestNewObjectId_PathSeparator(t *testing.T) {
	_, err := NewObjectId("n:a/b")
	require.Error(t, err)

	_, err = NewObjectId(`n:a\b`)
	require.Error(t, err)
}

func TestNewCategoryPath_RequiresTwoSegments(t *testing.T) {
	_, err := NewCategoryPath([]string{"seq"})
	require.Error(t, err)

	path, err := NewCategoryPath([]string{"seq", "participant"})
	require.NoError(t, err)
	assert.Equal(t, []string{"seq", "participant"}, path.Segments())
}

func TestNewCategoryPath_RejectsEmptySegment(t *testing.T) {
	_, err := NewCategoryPath([]string{"seq", ""})
	require.Error(t, err)
}

func TestObjectRef_RoundTrip(t *testing.T) {
	diagram, err := NewDiagramId("d1")
	require.NoError(t, err)
	category, err := NewCategoryPath([]string{"seq", "participant"})
	require.NoError(t, err)
	object, err := NewObjectId("p:a")
	require.NoError(t, err)

	ref := NewObjectRef(diagram, category, object)
	assert.Equal(t, "d1/seq/participant/p:a", ref.String())

	parsed, err := ParseObjectRef(ref.String())
	require.NoError(t, err)
	assert.True(t, ref.Equal(parsed))
}

func TestObjectRef_RoundTrip_DeepCategory(t *testing.T) {
	raw := "flowdiag/flow/group/subgroup/n:x"
	ref, err := ParseObjectRef(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, ref.String())
	assert.Equal(t, []string{"flow", "group", "subgroup"}, ref.Category.Segments())
}

func TestParseObjectRef_TooFewSegments(t *testing.T) {
	_, err := ParseObjectRef("d1/only")
	require.Error(t, err)
}

func TestParseObjectRef_EmptySegment(t *testing.T) {
	_, err := ParseObjectRef("d1//participant/p:a")
	require.Error(t, err)
}
