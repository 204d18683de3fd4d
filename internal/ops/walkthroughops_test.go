package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

func mustWalkthroughNodeID(t *testing.T, raw string) ids.WalkthroughNodeId {
	t.Helper()
	id, err := ids.NewWalkthroughNodeId(raw)
	require.NoError(t, err)
	return id
}

func freshWalkthrough(t *testing.T) *model.Walkthrough {
	t.Helper()
	id, err := ids.NewWalkthroughId("w1")
	require.NoError(t, err)
	return model.NewWalkthrough(id, "Tour")
}

func TestApplyWalkthroughOps_ConflictRejection(t *testing.T) {
	w := freshWalkthrough(t)
	n := mustWalkthroughNodeID(t, "n1")

	_, err := ApplyWalkthroughOps(w, 1, []WalkthroughOp{AddWalkthroughNode{NodeID: n, Title: "Step 1"}})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 0, w.Nodes.Len())
	assert.Equal(t, uint64(0), w.Rev)
}

func TestApplyWalkthroughOps_CascadingRemoveNode(t *testing.T) {
	w := freshWalkthrough(t)
	n1 := mustWalkthroughNodeID(t, "n1")
	n2 := mustWalkthroughNodeID(t, "n2")

	res, err := ApplyWalkthroughOps(w, 0, []WalkthroughOp{
		AddWalkthroughNode{NodeID: n1, Title: "Start"},
		AddWalkthroughNode{NodeID: n2, Title: "Next"},
		AddWalkthroughEdge{FromNodeID: n1, ToNodeID: n2, Kind: model.Next},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.NewRev)
	assert.ElementsMatch(t, []string{
		"w:w1/node/n1", "w:w1/node/n2", "w:w1/edge/n1/n2/next",
	}, res.Delta.Added)

	res, err = ApplyWalkthroughOps(w, 1, []WalkthroughOp{RemoveWalkthroughNode{NodeID: n1}})
	require.NoError(t, err)

	assert.Equal(t, uint64(2), res.NewRev)
	assert.Equal(t, 1, w.Nodes.Len())
	assert.Empty(t, w.Edges)
	assert.ElementsMatch(t, []string{"w:w1/node/n1", "w:w1/edge/n1/n2/next"}, res.Delta.Removed)
}

func TestApplyWalkthroughOps_UpdateNodePatchClearsBody(t *testing.T) {
	w := freshWalkthrough(t)
	n1 := mustWalkthroughNodeID(t, "n1")
	body := "hello"

	_, err := ApplyWalkthroughOps(w, 0, []WalkthroughOp{
		AddWalkthroughNode{NodeID: n1, Title: "Start", BodyMd: &body},
	})
	require.NoError(t, err)

	var clearedBody *string
	_, err = ApplyWalkthroughOps(w, 1, []WalkthroughOp{
		UpdateWalkthroughNode{NodeID: n1, Patch: WalkthroughNodePatch{BodyMd: &clearedBody}},
	})
	require.NoError(t, err)

	n, ok := w.Nodes.Get(n1)
	require.True(t, ok)
	assert.Nil(t, n.BodyMd)
}

func TestApplyWalkthroughOps_SetMetaAndRemoveMissingEdge(t *testing.T) {
	w := freshWalkthrough(t)
	title := "Renamed Tour"
	res, err := ApplyWalkthroughOps(w, 0, []WalkthroughOp{
		SetWalkthroughMeta{Patch: WalkthroughMetaPatch{Title: &title}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Tour", w.Title)
	assert.Equal(t, []string{"w:w1/meta"}, res.Delta.Updated)

	_, err = ApplyWalkthroughOps(w, 1, []WalkthroughOp{
		RemoveWalkthroughEdge{FromNodeID: mustWalkthroughNodeID(t, "missing-a"), ToNodeID: mustWalkthroughNodeID(t, "missing-b"), Kind: model.Next},
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}
