package sessionfolder

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/bnomei/nereid/internal/config"
	"github.com/bnomei/nereid/internal/mermaid"
	"github.com/bnomei/nereid/internal/model"
)

// Save serializes session to root: meta.json, one .mmd + sidecar per
// diagram, and one JSON file per walkthrough. Every file is written via
// writeAtomic, per spec.md §4.8.
func Save(session *model.Session, root string, durability config.Durability) error {
	meta := metaJSON{
		SessionID:          session.SessionID.String(),
		FormatVersion:      config.FormatVersion,
		WalkthroughIDs:     nil,
		Diagrams:           nil,
		XRefs:              nil,
		SelectedObjectRefs: nil,
	}
	if session.ActiveDiagramID != nil {
		v := session.ActiveDiagramID.String()
		meta.ActiveDiagramID = &v
	}
	if session.ActiveWalkthroughID != nil {
		v := session.ActiveWalkthroughID.String()
		meta.ActiveWalkthroughID = &v
	}

	for _, diagramID := range session.Diagrams.Keys() {
		diagram, _ := session.Diagrams.Get(diagramID)
		mmdRelPath := filepath.Join("diagrams", diagramID.String()+".mmd")
		if err := validateRelativePath(mmdRelPath); err != nil {
			return err
		}

		var mmdText string
		var sidecar sidecarJSON
		switch diagram.Ast.Kind {
		case model.KindSequence:
			mmdText = mermaid.ExportSequence(diagram.Ast.Sequence)
			sidecar = sequenceSidecar(diagram.Ast.Sequence)
		case model.KindFlowchart:
			mmdText = mermaid.ExportFlowchart(diagram.Ast.Flowchart)
			sidecar = flowchartSidecar(diagram.Ast.Flowchart)
		}

		if err := writeAtomic(filepath.Join(root, mmdRelPath), []byte(mmdText), durability); err != nil {
			return err
		}
		sidecarBytes, err := json.MarshalIndent(sidecar, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal sidecar for %s: %w", diagramID.String(), err)
		}
		sidecarRelPath := filepath.Join("diagrams", diagramID.String()+".meta.json")
		if err := writeAtomic(filepath.Join(root, sidecarRelPath), sidecarBytes, durability); err != nil {
			return err
		}

		meta.Diagrams = append(meta.Diagrams, diagramMeta{
			DiagramID: diagramID.String(),
			Name:      diagram.Name,
			Kind:      diagram.Ast.Kind.String(),
			MmdPath:   filepath.ToSlash(mmdRelPath),
			Rev:       diagram.Rev,
		})
	}

	for _, xrefID := range session.XRefs.Keys() {
		xref, _ := session.XRefs.Get(xrefID)
		meta.XRefs = append(meta.XRefs, xrefMeta{
			XRefID: xrefID.String(),
			From:   xref.From.String(),
			To:     xref.To.String(),
			Kind:   xref.Kind,
			Label:  xref.Label,
			Status: xref.Status.String(),
		})
	}

	for _, ref := range session.SelectedObjectRefs.Refs() {
		meta.SelectedObjectRefs = append(meta.SelectedObjectRefs, ref.String())
	}

	for _, walkthroughID := range session.Walkthroughs.Keys() {
		meta.WalkthroughIDs = append(meta.WalkthroughIDs, walkthroughID.String())
		walkthrough, _ := session.Walkthroughs.Get(walkthroughID)
		wJSON := toWalkthroughJSON(walkthrough)
		data, err := json.MarshalIndent(wJSON, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal walkthrough %s: %w", walkthroughID.String(), err)
		}
		relPath := filepath.Join("walkthroughs", walkthroughID.String()+".json")
		if err := validateRelativePath(relPath); err != nil {
			return err
		}
		if err := writeAtomic(filepath.Join(root, relPath), data, durability); err != nil {
			return err
		}
	}

	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meta.json: %w", err)
	}
	return writeAtomic(filepath.Join(root, "meta.json"), metaBytes, durability)
}

func sequenceSidecar(ast *model.SequenceAst) sidecarJSON {
	sidecar := sidecarJSON{
		StableIDMap: stableIDMap{ByName: map[string]string{}},
		SequenceParticipantNotes: map[string]string{},
	}
	for _, pID := range ast.Participants.Keys() {
		p, _ := ast.Participants.Get(pID)
		sidecar.StableIDMap.ByName[p.MermaidName] = pID.String()
		if p.Note != nil {
			sidecar.SequenceParticipantNotes[pID.String()] = *p.Note
		}
	}
	for _, m := range ast.Messages {
		sidecar.SequenceMessages = append(sidecar.SequenceMessages, seqMsgFingerprint{
			MessageID: m.MessageID.String(),
			From:      m.From.String(),
			To:        m.To.String(),
			Kind:      messageKindToString(m.Kind),
			Text:      m.Text,
		})
	}
	sidecar.SequenceBlocks = toBlockJSON(ast.Blocks)
	return sidecar
}

func toBlockJSON(blocks []model.Block) []blockJSON {
	if blocks == nil {
		return nil
	}
	out := make([]blockJSON, len(blocks))
	for i, b := range blocks {
		sections := make([]sectionJSON, len(b.Sections))
		for j, s := range b.Sections {
			msgIDs := make([]string, len(s.MessageIDs))
			for k, id := range s.MessageIDs {
				msgIDs[k] = id.String()
			}
			sections[j] = sectionJSON{
				SectionID:  s.SectionID,
				Kind:       s.Kind.String(),
				Header:     s.Header,
				MessageIDs: msgIDs,
			}
		}
		out[i] = blockJSON{
			BlockID:  b.BlockID,
			Kind:     b.Kind.String(),
			Header:   b.Header,
			Sections: sections,
			Blocks:   toBlockJSON(b.Blocks),
		}
	}
	return out
}

func flowchartSidecar(ast *model.FlowchartAst) sidecarJSON {
	sidecar := sidecarJSON{
		StableIDMap:   stableIDMap{ByMermaidID: map[string]string{}},
		FlowNodeNotes: map[string]string{},
	}
	for _, nodeID := range ast.Nodes.Keys() {
		node, _ := ast.Nodes.Get(nodeID)
		if mermaidID, ok := model.MermaidIDForUniqueness(nodeID, node); ok {
			sidecar.StableIDMap.ByMermaidID[mermaidID] = nodeID.String()
		}
		if node.Note != nil {
			sidecar.FlowNodeNotes[nodeID.String()] = *node.Note
		}
	}
	for _, edgeID := range ast.Edges.Keys() {
		e, _ := ast.Edges.Get(edgeID)
		sidecar.FlowEdges = append(sidecar.FlowEdges, flowEdgeFingerprint{
			EdgeID: edgeID.String(),
			From:   e.From.String(),
			To:     e.To.String(),
			Label:  e.Label,
			Style:  e.Style,
		})
	}
	return sidecar
}

func toWalkthroughJSON(w *model.Walkthrough) walkthroughJSON {
	out := walkthroughJSON{WalkthroughID: w.WalkthroughID.String(), Title: w.Title, Rev: w.Rev, Source: w.Source}
	for _, nodeID := range w.Nodes.Keys() {
		n, _ := w.Nodes.Get(nodeID)
		refs := make([]string, len(n.Refs))
		for i, r := range n.Refs {
			refs[i] = r.String()
		}
		out.Nodes = append(out.Nodes, walkthroughNodeJSON{
			NodeID: nodeID.String(),
			Title:  n.Title,
			BodyMd: n.BodyMd,
			Refs:   refs,
			Tags:   n.Tags,
			Status: n.Status,
		})
	}
	for _, e := range w.Edges {
		out.Edges = append(out.Edges, walkthroughEdgeJSON{
			FromNodeID: e.FromNodeID.String(),
			ToNodeID:   e.ToNodeID.String(),
			Kind:       e.Kind.String(),
			Label:      e.Label,
		})
	}
	return out
}
