package rpcserver

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnomei/nereid/internal/deltahistory"
	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/ops"
	"github.com/bnomei/nereid/internal/sessionfolder"
)

// diagramSummary and walkthroughSummary are the load_session result's
// per-object listing; full ASTs are not sent over the wire, matching
// spec.md §6's framing of apply_ops/get_delta as the mutation surface.
type diagramSummary struct {
	DiagramID string `json:"diagram_id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Rev       uint64 `json:"rev"`
}

type walkthroughSummary struct {
	WalkthroughID string `json:"walkthrough_id"`
	Title         string `json:"title"`
	Rev           uint64 `json:"rev"`
}

type loadSessionParams struct {
	Root string `json:"root"`
}

type loadSessionResult struct {
	SessionID           string               `json:"session_id"`
	ActiveDiagramID     *string              `json:"active_diagram_id,omitempty"`
	ActiveWalkthroughID *string              `json:"active_walkthrough_id,omitempty"`
	Diagrams            []diagramSummary     `json:"diagrams"`
	Walkthroughs        []walkthroughSummary `json:"walkthroughs"`
}

func (s *Server) handleLoadSession(req JSONRPCRequest) JSONRPCResponse {
	var params loadSessionParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Root == "" {
		return errorResponse(req.ID, codeInvalidParams, "load_session requires a non-empty \"root\"")
	}

	session, err := sessionfolder.Load(params.Root)
	if err != nil {
		return errorResponse(req.ID, codeInternalError, fmt.Sprintf("load_session: %v", err))
	}

	st := &sessionState{
		root:         params.Root,
		session:      session,
		diagrams:     make(map[string]*diagramState),
		walkthroughs: make(map[string]*walkthroughState),
	}
	result := loadSessionResult{SessionID: session.SessionID.String()}
	for _, diagramID := range session.Diagrams.Keys() {
		d, _ := session.Diagrams.Get(diagramID)
		st.diagrams[diagramID.String()] = &diagramState{diagram: d, history: deltahistory.New()}
		result.Diagrams = append(result.Diagrams, diagramSummary{
			DiagramID: diagramID.String(), Name: d.Name, Kind: d.Ast.Kind.String(), Rev: d.Rev,
		})
	}
	for _, walkthroughID := range session.Walkthroughs.Keys() {
		w, _ := session.Walkthroughs.Get(walkthroughID)
		st.walkthroughs[walkthroughID.String()] = &walkthroughState{walkthrough: w, history: deltahistory.NewWalkthroughHistory()}
		result.Walkthroughs = append(result.Walkthroughs, walkthroughSummary{
			WalkthroughID: walkthroughID.String(), Title: w.Title, Rev: w.Rev,
		})
	}
	if session.ActiveDiagramID != nil {
		v := session.ActiveDiagramID.String()
		result.ActiveDiagramID = &v
	}
	if session.ActiveWalkthroughID != nil {
		v := session.ActiveWalkthroughID.String()
		result.ActiveWalkthroughID = &v
	}

	s.mu.Lock()
	s.sessions[params.Root] = st
	s.mu.Unlock()

	return resultResponse(req.ID, result)
}

type saveSessionParams struct {
	Root string `json:"root"`
}

type saveSessionResult struct {
	Saved bool `json:"saved"`
}

func (s *Server) handleSaveSession(req JSONRPCRequest) JSONRPCResponse {
	var params saveSessionParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Root == "" {
		return errorResponse(req.ID, codeInvalidParams, "save_session requires a non-empty \"root\"")
	}

	st, ok := s.sessionFor(params.Root)
	if !ok {
		return errorResponse(req.ID, codeInvalidRequest, fmt.Sprintf("session %q is not loaded", params.Root))
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if err := sessionfolder.Save(st.session, st.root, s.durability); err != nil {
		return errorResponse(req.ID, codeInternalError, fmt.Sprintf("save_session: %v", err))
	}
	return resultResponse(req.ID, saveSessionResult{Saved: true})
}

type applyOpsParams struct {
	Root          string            `json:"root"`
	DiagramID     *string           `json:"diagram_id,omitempty"`
	WalkthroughID *string           `json:"walkthrough_id,omitempty"`
	BaseRev       uint64            `json:"base_rev"`
	Ops           []json.RawMessage `json:"ops"`
}

type applyOpsResult struct {
	NewRev  uint64   `json:"new_rev"`
	Applied int      `json:"applied"`
	Added   []string `json:"added,omitempty"`
	Updated []string `json:"updated,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

func (s *Server) handleApplyOps(req JSONRPCRequest) JSONRPCResponse {
	var params applyOpsParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("apply_ops: %v", err))
	}
	if (params.DiagramID == nil) == (params.WalkthroughID == nil) {
		return errorResponse(req.ID, codeInvalidParams, "apply_ops requires exactly one of \"diagram_id\" or \"walkthrough_id\"")
	}

	st, ok := s.sessionFor(params.Root)
	if !ok {
		return errorResponse(req.ID, codeInvalidRequest, fmt.Sprintf("session %q is not loaded", params.Root))
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if params.DiagramID != nil {
		return s.applyDiagramOps(req, st, *params.DiagramID, params.BaseRev, params.Ops)
	}
	return s.applyWalkthroughOps(req, st, *params.WalkthroughID, params.BaseRev, params.Ops)
}

func (s *Server) applyDiagramOps(req JSONRPCRequest, st *sessionState, diagramIDRaw string, baseRev uint64, rawOps []json.RawMessage) JSONRPCResponse {
	ds, ok := st.diagrams[diagramIDRaw]
	if !ok {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("diagram %q not loaded in session %q", diagramIDRaw, st.root))
	}

	decoded := make([]ops.Op, len(rawOps))
	for i, raw := range rawOps {
		op, err := ops.UnmarshalOp(raw)
		if err != nil {
			return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("ops[%d]: %v", i, err))
		}
		decoded[i] = op
	}

	result, err := ops.ApplyOps(ds.diagram, baseRev, decoded)
	if err != nil {
		return errorResponse(req.ID, codeApplyRejected, applyRejectionMessage(err))
	}
	ds.history.Record(baseRev, result.NewRev, result.Delta)

	return resultResponse(req.ID, applyOpsResult{
		NewRev:  result.NewRev,
		Applied: result.Applied,
		Added:   refsToStrings(result.Delta.Added),
		Updated: refsToStrings(result.Delta.Updated),
		Removed: refsToStrings(result.Delta.Removed),
	})
}

func (s *Server) applyWalkthroughOps(req JSONRPCRequest, st *sessionState, walkthroughIDRaw string, baseRev uint64, rawOps []json.RawMessage) JSONRPCResponse {
	ws, ok := st.walkthroughs[walkthroughIDRaw]
	if !ok {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("walkthrough %q not loaded in session %q", walkthroughIDRaw, st.root))
	}

	decoded := make([]ops.WalkthroughOp, len(rawOps))
	for i, raw := range rawOps {
		op, err := ops.UnmarshalWalkthroughOp(raw)
		if err != nil {
			return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("ops[%d]: %v", i, err))
		}
		decoded[i] = op
	}

	result, err := ops.ApplyWalkthroughOps(ws.walkthrough, baseRev, decoded)
	if err != nil {
		return errorResponse(req.ID, codeApplyRejected, applyRejectionMessage(err))
	}
	ws.history.Record(baseRev, result.NewRev, deltahistory.WalkthroughDelta{
		Added: result.Delta.Added, Updated: result.Delta.Updated, Removed: result.Delta.Removed,
	})

	return resultResponse(req.ID, applyOpsResult{
		NewRev:  result.NewRev,
		Applied: result.Applied,
		Added:   result.Delta.Added,
		Updated: result.Delta.Updated,
		Removed: result.Delta.Removed,
	})
}

func applyRejectionMessage(err error) string {
	var conflict *ops.ConflictError
	if errors.As(err, &conflict) {
		return conflict.Error()
	}
	return err.Error()
}

func refsToStrings(refs []ids.ObjectRef) []string {
	if refs == nil {
		return nil
	}
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}
	return out
}

type getDeltaParams struct {
	Root          string  `json:"root"`
	DiagramID     *string `json:"diagram_id,omitempty"`
	WalkthroughID *string `json:"walkthrough_id,omitempty"`
	SinceRev      uint64  `json:"since_rev"`
}

type getDeltaResult struct {
	Available         bool     `json:"available"`
	SupportedSinceRev *uint64  `json:"supported_since_rev,omitempty"`
	Added             []string `json:"added,omitempty"`
	Updated           []string `json:"updated,omitempty"`
	Removed           []string `json:"removed,omitempty"`
}

func (s *Server) handleGetDelta(req JSONRPCRequest) JSONRPCResponse {
	var params getDeltaParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("get_delta: %v", err))
	}
	if (params.DiagramID == nil) == (params.WalkthroughID == nil) {
		return errorResponse(req.ID, codeInvalidParams, "get_delta requires exactly one of \"diagram_id\" or \"walkthrough_id\"")
	}

	st, ok := s.sessionFor(params.Root)
	if !ok {
		return errorResponse(req.ID, codeInvalidRequest, fmt.Sprintf("session %q is not loaded", params.Root))
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if params.DiagramID != nil {
		ds, ok := st.diagrams[*params.DiagramID]
		if !ok {
			return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("diagram %q not loaded in session %q", *params.DiagramID, st.root))
		}
		delta, err := ds.history.GetDelta(params.SinceRev)
		if err != nil {
			var unavailable *deltahistory.ErrUnavailable
			if errors.As(err, &unavailable) {
				v := unavailable.SupportedSinceRev
				return resultResponse(req.ID, getDeltaResult{Available: false, SupportedSinceRev: &v})
			}
			return errorResponse(req.ID, codeInternalError, fmt.Sprintf("get_delta: %v", err))
		}
		return resultResponse(req.ID, getDeltaResult{
			Available: true,
			Added:     refsToStrings(delta.Added),
			Updated:   refsToStrings(delta.Updated),
			Removed:   refsToStrings(delta.Removed),
		})
	}

	ws, ok := st.walkthroughs[*params.WalkthroughID]
	if !ok {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("walkthrough %q not loaded in session %q", *params.WalkthroughID, st.root))
	}
	delta, err := ws.history.GetDelta(params.SinceRev)
	if err != nil {
		var unavailable *deltahistory.ErrUnavailable
		if errors.As(err, &unavailable) {
			v := unavailable.SupportedSinceRev
			return resultResponse(req.ID, getDeltaResult{Available: false, SupportedSinceRev: &v})
		}
		return errorResponse(req.ID, codeInternalError, fmt.Sprintf("get_delta: %v", err))
	}
	return resultResponse(req.ID, getDeltaResult{
		Available: true,
		Added:     delta.Added,
		Updated:   delta.Updated,
		Removed:   delta.Removed,
	})
}
