package sessionfolder

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnomei/nereid/internal/config"
	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

func buildSessionForRoundTrip(t *testing.T) *model.Session {
	t.Helper()
	sessionID, err := ids.NewSessionId("s1")
	require.NoError(t, err)
	session := model.NewSession(sessionID)

	seqDiagramID, err := ids.NewDiagramId("seq1")
	require.NoError(t, err)
	seqAst := model.NewSequenceAst()
	alice := mustID(t, "p:alice")
	bob := mustID(t, "p:bob")
	seqAst.Participants.Set(alice, model.Participant{MermaidName: "Alice"})
	seqAst.Participants.Set(bob, model.Participant{MermaidName: "Bob"})
	msg := mustID(t, "m:hello")
	seqAst.Messages = append(seqAst.Messages, model.Message{
		MessageID: msg, From: alice, To: bob, Kind: model.Sync, Text: "hello", OrderKey: 0,
	})
	seqAst.Blocks = []model.Block{{
		BlockID: "b0",
		Kind:    model.Opt,
		Sections: []model.Section{{
			SectionID:  "s0",
			Kind:       model.Main,
			MessageIDs: []ids.ObjectId{msg},
		}},
	}}
	seqDiagram := model.NewDiagram(seqDiagramID, "Handshake", model.DiagramAst{Kind: model.KindSequence, Sequence: seqAst})
	session.Diagrams.Set(seqDiagramID, seqDiagram)

	flowDiagramID, err := ids.NewDiagramId("flow1")
	require.NoError(t, err)
	flowAst := model.NewFlowchartAst()
	nA := mustID(t, "n:A")
	nB := mustID(t, "n:B")
	mermaidA, mermaidB := "A", "B"
	flowAst.Nodes.Set(nA, model.Node{Label: "Start", MermaidID: &mermaidA})
	flowAst.Nodes.Set(nB, model.Node{Label: "End", MermaidID: &mermaidB})
	style := "stroke:#f00"
	flowAst.Edges.Set(mustID(t, "e:1"), model.Edge{From: nA, To: nB, Style: &style})
	flowDiagram := model.NewDiagram(flowDiagramID, "Flow", model.DiagramAst{Kind: model.KindFlowchart, Flowchart: flowAst})
	session.Diagrams.Set(flowDiagramID, flowDiagram)

	session.SetActiveDiagramID(seqDiagramID)
	session.Select(ids.NewObjectRef(seqDiagramID, mustCategory(t, "seq", "participant"), alice))

	return session
}

func mustID(t *testing.T, raw string) ids.ObjectId {
	t.Helper()
	id, err := ids.NewObjectId(raw)
	require.NoError(t, err)
	return id
}

func mustCategory(t *testing.T, segs ...string) ids.CategoryPath {
	t.Helper()
	c, err := ids.NewCategoryPath(segs)
	require.NoError(t, err)
	return c
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	root := t.TempDir()
	session := buildSessionForRoundTrip(t)

	require.NoError(t, Save(session, root, config.Relaxed))

	loaded, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, session.SessionID.String(), loaded.SessionID.String())
	assert.Equal(t, 2, loaded.Diagrams.Len())
	require.NotNil(t, loaded.ActiveDiagramID)
	assert.Equal(t, "seq1", loaded.ActiveDiagramID.String())

	seqDiagramID, err := ids.NewDiagramId("seq1")
	require.NoError(t, err)
	seqDiagram, ok := loaded.Diagrams.Get(seqDiagramID)
	require.True(t, ok)
	require.Equal(t, model.KindSequence, seqDiagram.Ast.Kind)

	alice := mustID(t, "p:alice")
	_, ok = seqDiagram.Ast.Sequence.Participants.Get(alice)
	assert.True(t, ok, "participant stable id p:alice should be restored via the by_name sidecar match")

	require.Len(t, seqDiagram.Ast.Sequence.Messages, 1)
	assert.Equal(t, "m:hello", seqDiagram.Ast.Sequence.Messages[0].MessageID.String())

	require.Len(t, seqDiagram.Ast.Sequence.Blocks, 1)
	require.Len(t, seqDiagram.Ast.Sequence.Blocks[0].Sections, 1)
	assert.Equal(t, []ids.ObjectId{mustID(t, "m:hello")}, seqDiagram.Ast.Sequence.Blocks[0].Sections[0].MessageIDs)

	flowDiagramID, err := ids.NewDiagramId("flow1")
	require.NoError(t, err)
	flowDiagram, ok := loaded.Diagrams.Get(flowDiagramID)
	require.True(t, ok)
	edgeID := mustID(t, "e:1")
	edge, ok := flowDiagram.Ast.Flowchart.Edges.Get(edgeID)
	require.True(t, ok, "edge stable id e:1 should be restored via the flow_edges fingerprint match")
	require.NotNil(t, edge.Style)
	assert.Equal(t, "stroke:#f00", *edge.Style)

	selected := loaded.SelectedObjectRefs.Refs()
	require.Len(t, selected, 1)
	assert.Equal(t, "seq1/seq/participant/p:alice", selected[0].String())
}

func TestLoad_RejectsIncompatibleFormatVersion(t *testing.T) {
	root := t.TempDir()
	session := buildSessionForRoundTrip(t)
	require.NoError(t, Save(session, root, config.Relaxed))

	metaPath := filepath.Join(root, "meta.json")
	data, err := os.ReadFile(metaPath)
	require.NoError(t, err)
	patched := []byte(replaceFirst(string(data), `"format_version": "1.0.0"`, `"format_version": "9.0.0"`))
	require.NoError(t, os.WriteFile(metaPath, patched, 0o644))

	_, err = Load(root)
	require.Error(t, err)
}

func replaceFirst(s, old, new string) string {
	idx := indexOf(s, old)
	if idx < 0 {
		return s
	}
	return s[:idx] + new + s[idx+len(old):]
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestWriteAtomic_RefusesSymlinkDestination(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on windows")
	}
	root := t.TempDir()
	target := filepath.Join(root, "real.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	link := filepath.Join(root, "link.txt")
	require.NoError(t, os.Symlink(target, link))

	err := writeAtomic(link, []byte("y"), config.Relaxed)
	require.Error(t, err)
	var pv *PathViolationError
	require.ErrorAs(t, err, &pv)
}

func TestValidateRelativePath_RejectsTraversalAndAbsolute(t *testing.T) {
	require.Error(t, validateRelativePath(""))
	require.Error(t, validateRelativePath("/etc/passwd"))
	require.Error(t, validateRelativePath("../escape.json"))
	require.NoError(t, validateRelativePath("diagrams/d1.mmd"))
}

func TestReconcileIDs_CollisionAllocatesReconcileSuffix(t *testing.T) {
	a := mustID(t, "p:0")
	b := mustID(t, "p:1")
	stable := mustID(t, "p:1") // both parsed ids want the id the other already has

	desired := map[ids.ObjectId]ids.ObjectId{a: stable}
	final, err := reconcileIDs([]ids.ObjectId{a, b}, desired)
	require.NoError(t, err)

	assert.Equal(t, "p:1", final[a].String())
	assert.Equal(t, "p:1:reconcile:0000", final[b].String())
}
