package sessionfolder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/bnomei/nereid/internal/config"
	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/mermaid"
	"github.com/bnomei/nereid/internal/model"
)

// loadConcurrency bounds how many diagram files are parsed and reconciled
// at once, the same pool.New().WithMaxGoroutines shape the teacher uses for
// its scanner fan-out.
const loadConcurrency = 4

// Load reads a session folder written by Save and reconstructs the
// in-memory Session, reconciling parsed object ids against each diagram's
// sidecar per spec.md §4.8, then recomputing xref statuses.
func Load(root string) (*model.Session, error) {
	metaBytes, err := os.ReadFile(filepath.Join(root, "meta.json"))
	if err != nil {
		return nil, fmt.Errorf("read meta.json: %w", err)
	}
	var meta metaJSON
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("unmarshal meta.json: %w", err)
	}
	if err := config.CheckFormatVersion(meta.FormatVersion); err != nil {
		return nil, fmt.Errorf("meta.json: %w", err)
	}

	sessionID, err := ids.NewSessionId(meta.SessionID)
	if err != nil {
		return nil, fmt.Errorf("meta.json session_id: %w", err)
	}
	session := model.NewSession(sessionID)

	type loadedDiagram struct {
		index   int
		id      ids.DiagramId
		diagram *model.Diagram
	}
	results := make([]loadedDiagram, len(meta.Diagrams))
	var mu sync.Mutex
	var loadErr error

	p := pool.New().WithMaxGoroutines(loadConcurrency)
	for i, dm := range meta.Diagrams {
		i, dm := i, dm
		p.Go(func() {
			diagramID, err := ids.NewDiagramId(dm.DiagramID)
			if err != nil {
				mu.Lock()
				loadErr = fmt.Errorf("diagram %q: %w", dm.DiagramID, err)
				mu.Unlock()
				return
			}
			diagram, err := loadDiagram(root, dm)
			if err != nil {
				mu.Lock()
				loadErr = fmt.Errorf("load diagram %q: %w", dm.DiagramID, err)
				mu.Unlock()
				return
			}
			mu.Lock()
			results[i] = loadedDiagram{index: i, id: diagramID, diagram: diagram}
			mu.Unlock()
		})
	}
	p.Wait()
	if loadErr != nil {
		return nil, loadErr
	}
	for _, r := range results {
		session.Diagrams.Set(r.id, r.diagram)
	}

	for _, xm := range meta.XRefs {
		xrefID, err := ids.NewXRefId(xm.XRefID)
		if err != nil {
			return nil, fmt.Errorf("xref id %q: %w", xm.XRefID, err)
		}
		from, err := ids.ParseObjectRef(xm.From)
		if err != nil {
			return nil, fmt.Errorf("xref %q from: %w", xm.XRefID, err)
		}
		to, err := ids.ParseObjectRef(xm.To)
		if err != nil {
			return nil, fmt.Errorf("xref %q to: %w", xm.XRefID, err)
		}
		status, _ := model.ParseXRefStatus(xm.Status)
		session.XRefs.Set(xrefID, &model.XRef{
			XRefID: xrefID,
			From:   from,
			To:     to,
			Kind:   xm.Kind,
			Label:  xm.Label,
			Status: status,
		})
	}

	for _, raw := range meta.SelectedObjectRefs {
		ref, err := ids.ParseObjectRef(raw)
		if err != nil {
			continue // stale/unparsable ref: dropped, RefreshXRefStatuses would drop it anyway
		}
		session.Select(ref)
	}

	if meta.ActiveDiagramID != nil {
		id, err := ids.NewDiagramId(*meta.ActiveDiagramID)
		if err == nil {
			session.SetActiveDiagramID(id)
		}
	}

	for _, wID := range meta.WalkthroughIDs {
		walkthroughID, err := ids.NewWalkthroughId(wID)
		if err != nil {
			return nil, fmt.Errorf("walkthrough id %q: %w", wID, err)
		}
		w, err := loadWalkthrough(root, wID)
		if err != nil {
			return nil, fmt.Errorf("load walkthrough %q: %w", wID, err)
		}
		session.Walkthroughs.Set(walkthroughID, w)
	}
	if meta.ActiveWalkthroughID != nil {
		id, err := ids.NewWalkthroughId(*meta.ActiveWalkthroughID)
		if err == nil {
			session.SetActiveWalkthroughID(id)
		}
	}

	session.RefreshXRefStatuses()
	return session, nil
}

func loadDiagram(root string, dm diagramMeta) (*model.Diagram, error) {
	mmdPath := filepath.Join(root, filepath.FromSlash(dm.MmdPath))
	mmdBytes, err := os.ReadFile(mmdPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dm.MmdPath, err)
	}

	sidecarPath := sidecarPathFor(mmdPath)
	sidecarBytes, err := os.ReadFile(sidecarPath)
	if err != nil {
		return nil, fmt.Errorf("read sidecar for %s: %w", dm.DiagramID, err)
	}
	var sidecar sidecarJSON
	if err := json.Unmarshal(sidecarBytes, &sidecar); err != nil {
		return nil, fmt.Errorf("unmarshal sidecar for %s: %w", dm.DiagramID, err)
	}

	diagramID, err := ids.NewDiagramId(dm.DiagramID)
	if err != nil {
		return nil, err
	}

	var ast model.DiagramAst
	switch dm.Kind {
	case "flowchart":
		parsed, err := mermaid.ParseFlowchart(string(mmdBytes))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", dm.MmdPath, err)
		}
		reconciled, err := reconcileFlowchart(parsed, sidecar)
		if err != nil {
			return nil, err
		}
		ast = model.DiagramAst{Kind: model.KindFlowchart, Flowchart: reconciled}
	default:
		parsed, err := mermaid.ParseSequence(string(mmdBytes))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", dm.MmdPath, err)
		}
		reconciled, err := reconcileSequence(parsed, sidecar)
		if err != nil {
			return nil, err
		}
		ast = model.DiagramAst{Kind: model.KindSequence, Sequence: reconciled}
	}

	return &model.Diagram{DiagramID: diagramID, Name: dm.Name, Rev: dm.Rev, Ast: ast}, nil
}

func sidecarPathFor(mmdPath string) string {
	ext := filepath.Ext(mmdPath)
	return mmdPath[:len(mmdPath)-len(ext)] + ".meta.json"
}

// reconcileIDs assigns each id in parsedOrder a final id: its desired[id]
// target when that target is not already claimed by an earlier entry in
// parsedOrder, otherwise its own parsed id if free, otherwise
// "<parsed>:reconcile:<nnnn>" for the smallest free n. This is deterministic
// given parsedOrder, matching spec.md §4.8's collision-resolution contract.
func reconcileIDs(parsedOrder []ids.ObjectId, desired map[ids.ObjectId]ids.ObjectId) (map[ids.ObjectId]ids.ObjectId, error) {
	used := make(map[string]bool, len(parsedOrder))
	final := make(map[ids.ObjectId]ids.ObjectId, len(parsedOrder))

	for _, pid := range parsedOrder {
		want, ok := desired[pid]
		if !ok {
			continue
		}
		if !used[want.String()] {
			used[want.String()] = true
			final[pid] = want
		}
	}
	for _, pid := range parsedOrder {
		if _, ok := final[pid]; ok {
			continue
		}
		if !used[pid.String()] {
			used[pid.String()] = true
			final[pid] = pid
			continue
		}
		for n := 0; ; n++ {
			alt, err := ids.NewObjectId(fmt.Sprintf("%s:reconcile:%04d", pid.String(), n))
			if err != nil {
				return nil, fmt.Errorf("allocate reconciled id for %s: %w", pid.String(), err)
			}
			if !used[alt.String()] {
				used[alt.String()] = true
				final[pid] = alt
				break
			}
		}
	}
	return final, nil
}

func reconcileSequence(ast *model.SequenceAst, sidecar sidecarJSON) (*model.SequenceAst, error) {
	participantOrder := ast.Participants.Keys()
	desired := make(map[ids.ObjectId]ids.ObjectId)
	for _, pid := range participantOrder {
		p, _ := ast.Participants.Get(pid)
		if stable, ok := sidecar.StableIDMap.ByName[p.MermaidName]; ok {
			stableID, err := ids.NewObjectId(stable)
			if err == nil {
				desired[pid] = stableID
			}
		}
	}
	participantFinal, err := reconcileIDs(participantOrder, desired)
	if err != nil {
		return nil, err
	}

	renamed := model.NewSequenceAst()
	for _, pid := range participantOrder {
		p, _ := ast.Participants.Get(pid)
		newID := participantFinal[pid]
		if note, ok := sidecar.SequenceParticipantNotes[newID.String()]; ok {
			n := note
			p.Note = &n
		}
		renamed.Participants.Set(newID, p)
	}

	messageOrder := make([]ids.ObjectId, len(ast.Messages))
	for i, m := range ast.Messages {
		messageOrder[i] = m.MessageID
	}
	msgDesired := make(map[ids.ObjectId]ids.ObjectId)
	usedSidecarMsg := make([]bool, len(sidecar.SequenceMessages))
	for _, m := range ast.Messages {
		from := participantFinal[m.From]
		to := participantFinal[m.To]
		for j, fp := range sidecar.SequenceMessages {
			if usedSidecarMsg[j] {
				continue
			}
			if fp.From == from.String() && fp.To == to.String() && fp.Kind == messageKindToString(m.Kind) && fp.Text == m.Text {
				if stableID, err := ids.NewObjectId(fp.MessageID); err == nil {
					msgDesired[m.MessageID] = stableID
					usedSidecarMsg[j] = true
				}
				break
			}
		}
	}
	messageFinal, err := reconcileIDs(messageOrder, msgDesired)
	if err != nil {
		return nil, err
	}

	for _, m := range ast.Messages {
		from := participantFinal[m.From]
		to := participantFinal[m.To]
		renamed.Messages = append(renamed.Messages, model.Message{
			MessageID: messageFinal[m.MessageID],
			From:      from,
			To:        to,
			Kind:      m.Kind,
			Arrow:     m.Arrow,
			Text:      m.Text,
			OrderKey:  m.OrderKey,
		})
	}

	renamed.Blocks = fromBlockJSON(sidecar.SequenceBlocks)
	return renamed, nil
}

func fromBlockJSON(blocks []blockJSON) []model.Block {
	if blocks == nil {
		return nil
	}
	out := make([]model.Block, len(blocks))
	for i, b := range blocks {
		sections := make([]model.Section, len(b.Sections))
		for j, s := range b.Sections {
			var msgIDs []ids.ObjectId
			for _, raw := range s.MessageIDs {
				id, err := ids.NewObjectId(raw)
				if err != nil {
					continue
				}
				msgIDs = append(msgIDs, id)
			}
			sections[j] = model.Section{
				SectionID:  s.SectionID,
				Kind:       model.ParseSectionKind(s.Kind),
				Header:     s.Header,
				MessageIDs: msgIDs,
			}
		}
		out[i] = model.Block{
			BlockID:  b.BlockID,
			Kind:     model.ParseBlockKind(b.Kind),
			Header:   b.Header,
			Sections: sections,
			Blocks:   fromBlockJSON(b.Blocks),
		}
	}
	return out
}

func reconcileFlowchart(ast *model.FlowchartAst, sidecar sidecarJSON) (*model.FlowchartAst, error) {
	nodeOrder := ast.Nodes.Keys()
	desired := make(map[ids.ObjectId]ids.ObjectId)
	for _, nid := range nodeOrder {
		n, _ := ast.Nodes.Get(nid)
		mermaidKey, ok := model.MermaidIDForUniqueness(nid, n)
		if !ok {
			continue
		}
		if stable, ok := sidecar.StableIDMap.ByMermaidID[mermaidKey]; ok {
			stableID, err := ids.NewObjectId(stable)
			if err == nil {
				desired[nid] = stableID
			}
		}
	}
	nodeFinal, err := reconcileIDs(nodeOrder, desired)
	if err != nil {
		return nil, err
	}

	renamed := model.NewFlowchartAst()
	renamed.DefaultEdgeStyle = ast.DefaultEdgeStyle
	for _, nid := range nodeOrder {
		n, _ := ast.Nodes.Get(nid)
		newID := nodeFinal[nid]
		if note, ok := sidecar.FlowNodeNotes[newID.String()]; ok {
			nt := note
			n.Note = &nt
		}
		renamed.Nodes.Set(newID, n)
	}

	edgeOrder := ast.Edges.Keys()
	edgeDesired := make(map[ids.ObjectId]ids.ObjectId)
	edgeStyle := make(map[ids.ObjectId]*string)
	usedSidecarEdge := make([]bool, len(sidecar.FlowEdges))
	for _, eid := range edgeOrder {
		e, _ := ast.Edges.Get(eid)
		from := nodeFinal[e.From]
		to := nodeFinal[e.To]
		for j, fp := range sidecar.FlowEdges {
			if usedSidecarEdge[j] {
				continue
			}
			if fp.From != from.String() || fp.To != to.String() {
				continue
			}
			if !labelEqual(fp.Label, e.Label) {
				continue
			}
			if stableID, err := ids.NewObjectId(fp.EdgeID); err == nil {
				edgeDesired[eid] = stableID
				edgeStyle[eid] = fp.Style
				usedSidecarEdge[j] = true
			}
			break
		}
	}
	edgeFinal, err := reconcileIDs(edgeOrder, edgeDesired)
	if err != nil {
		return nil, err
	}

	for _, eid := range edgeOrder {
		e, _ := ast.Edges.Get(eid)
		newID := edgeFinal[eid]
		e.From = nodeFinal[e.From]
		e.To = nodeFinal[e.To]
		if style, ok := edgeStyle[eid]; ok {
			e.Style = style
		}
		renamed.Edges.Set(newID, e)
	}

	return renamed, nil
}

func labelEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func loadWalkthrough(root, walkthroughID string) (*model.Walkthrough, error) {
	relPath := filepath.Join("walkthroughs", walkthroughID+".json")
	data, err := os.ReadFile(filepath.Join(root, relPath))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relPath, err)
	}
	var wj walkthroughJSON
	if err := json.Unmarshal(data, &wj); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", relPath, err)
	}

	id, err := ids.NewWalkthroughId(wj.WalkthroughID)
	if err != nil {
		return nil, err
	}
	w := model.NewWalkthrough(id, wj.Title)
	w.Rev = wj.Rev
	w.Source = wj.Source

	for _, nj := range wj.Nodes {
		nodeID, err := ids.NewWalkthroughNodeId(nj.NodeID)
		if err != nil {
			return nil, fmt.Errorf("walkthrough node id %q: %w", nj.NodeID, err)
		}
		var refs []ids.ObjectRef
		for _, raw := range nj.Refs {
			ref, err := ids.ParseObjectRef(raw)
			if err != nil {
				continue
			}
			refs = append(refs, ref)
		}
		w.Nodes.Set(nodeID, &model.WalkthroughNode{
			NodeID: nodeID,
			Title:  nj.Title,
			BodyMd: nj.BodyMd,
			Refs:   refs,
			Tags:   nj.Tags,
			Status: nj.Status,
		})
	}
	for _, ej := range wj.Edges {
		fromID, err := ids.NewWalkthroughNodeId(ej.FromNodeID)
		if err != nil {
			continue
		}
		toID, err := ids.NewWalkthroughNodeId(ej.ToNodeID)
		if err != nil {
			continue
		}
		kind, _ := model.ParseWalkthroughEdgeKind(ej.Kind)
		w.Edges = append(w.Edges, model.WalkthroughEdge{FromNodeID: fromID, ToNodeID: toID, Kind: kind, Label: ej.Label})
	}

	return w, nil
}
