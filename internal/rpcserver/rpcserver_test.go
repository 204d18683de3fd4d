package rpcserver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/bnomei/nereid/internal/config"
	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
	"github.com/bnomei/nereid/internal/sessionfolder"
)

func buildFixtureSession(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	sessionID, err := ids.NewSessionId("s1")
	require.NoError(t, err)
	session := model.NewSession(sessionID)

	diagramID, err := ids.NewDiagramId("d1")
	require.NoError(t, err)
	ast := model.NewSequenceAst()
	diagram := model.NewDiagram(diagramID, "Handshake", model.DiagramAst{Kind: model.KindSequence, Sequence: ast})
	session.Diagrams.Set(diagramID, diagram)

	walkthroughID, err := ids.NewWalkthroughId("w1")
	require.NoError(t, err)
	session.Walkthroughs.Set(walkthroughID, model.NewWalkthrough(walkthroughID, "Tour"))

	require.NoError(t, sessionfolder.Save(session, root, config.Relaxed))
	return root
}

func unlimitedServer() *Server {
	return New(config.Relaxed, rate.Inf, 1)
}

func rpcCall(t *testing.T, s *Server, method string, params any) JSONRPCResponse {
	t.Helper()
	paramsBytes, err := json.Marshal(params)
	require.NoError(t, err)
	reqBytes, err := json.Marshal(JSONRPCRequest{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: method, Params: paramsBytes})
	require.NoError(t, err)
	return s.handleLine(reqBytes, rate.NewLimiter(rate.Inf, 1))
}

func TestLoadThenApplyThenGetDelta(t *testing.T) {
	root := buildFixtureSession(t)
	s := unlimitedServer()

	loadResp := rpcCall(t, s, "load_session", loadSessionParams{Root: root})
	require.Nil(t, loadResp.Error)
	var loaded loadSessionResult
	require.NoError(t, json.Unmarshal(loadResp.Result, &loaded))
	assert.Equal(t, "s1", loaded.SessionID)
	require.Len(t, loaded.Diagrams, 1)
	assert.Equal(t, "d1", loaded.Diagrams[0].DiagramID)
	require.Len(t, loaded.Walkthroughs, 1)

	diagramID := "d1"
	addOp := json.RawMessage(`{"kind":"AddParticipant","participant_id":"p:alice","mermaid_name":"Alice"}`)
	applyResp := rpcCall(t, s, "apply_ops", applyOpsParams{
		Root: root, DiagramID: &diagramID, BaseRev: 0, Ops: []json.RawMessage{addOp},
	})
	require.Nil(t, applyResp.Error)
	var applied applyOpsResult
	require.NoError(t, json.Unmarshal(applyResp.Result, &applied))
	assert.Equal(t, uint64(1), applied.NewRev)
	assert.Equal(t, 1, applied.Applied)
	assert.Equal(t, []string{"d1/seq/participant/p:alice"}, applied.Added)

	deltaResp := rpcCall(t, s, "get_delta", getDeltaParams{Root: root, DiagramID: &diagramID, SinceRev: 0})
	require.Nil(t, deltaResp.Error)
	var delta getDeltaResult
	require.NoError(t, json.Unmarshal(deltaResp.Result, &delta))
	assert.True(t, delta.Available)
	assert.Equal(t, []string{"d1/seq/participant/p:alice"}, delta.Added)

	saveResp := rpcCall(t, s, "save_session", saveSessionParams{Root: root})
	require.Nil(t, saveResp.Error)
}

func TestApplyOps_ConflictSurfacesAsRejection(t *testing.T) {
	root := buildFixtureSession(t)
	s := unlimitedServer()
	require.Nil(t, rpcCall(t, s, "load_session", loadSessionParams{Root: root}).Error)

	diagramID := "d1"
	addOp := json.RawMessage(`{"kind":"AddParticipant","participant_id":"p:alice","mermaid_name":"Alice"}`)
	resp := rpcCall(t, s, "apply_ops", applyOpsParams{
		Root: root, DiagramID: &diagramID, BaseRev: 41, Ops: []json.RawMessage{addOp},
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeApplyRejected, resp.Error.Code)
}

func TestApplyOps_WalkthroughTargetRoundTrips(t *testing.T) {
	root := buildFixtureSession(t)
	s := unlimitedServer()
	require.Nil(t, rpcCall(t, s, "load_session", loadSessionParams{Root: root}).Error)

	walkthroughID := "w1"
	addNode := json.RawMessage(`{"kind":"AddWalkthroughNode","node_id":"n1","title":"Start"}`)
	resp := rpcCall(t, s, "apply_ops", applyOpsParams{
		Root: root, WalkthroughID: &walkthroughID, BaseRev: 0, Ops: []json.RawMessage{addNode},
	})
	require.Nil(t, resp.Error)
	var applied applyOpsResult
	require.NoError(t, json.Unmarshal(resp.Result, &applied))
	assert.Equal(t, []string{"w:w1/node/n1"}, applied.Added)
}

func TestHandleLine_UnknownMethod(t *testing.T) {
	s := unlimitedServer()
	reqBytes, err := json.Marshal(JSONRPCRequest{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "nonexistent"})
	require.NoError(t, err)
	resp := s.handleLine(reqBytes, rate.NewLimiter(rate.Inf, 1))
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestHandleLine_RateLimitsApplyOps(t *testing.T) {
	root := buildFixtureSession(t)
	s := New(config.Relaxed, rate.Limit(0), 0)
	require.Nil(t, rpcCall(t, s, "load_session", loadSessionParams{Root: root}).Error)

	diagramID := "d1"
	reqBytes, err := json.Marshal(JSONRPCRequest{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "apply_ops", Params: mustMarshal(t, applyOpsParams{
		Root: root, DiagramID: &diagramID, BaseRev: 0,
	})})
	require.NoError(t, err)
	resp := s.handleLine(reqBytes, rate.NewLimiter(0, 0))
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeRateLimited, resp.Error.Code)
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
