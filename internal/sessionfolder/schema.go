package sessionfolder

import "github.com/bnomei/nereid/internal/model"

// metaJSON mirrors the top-level meta.json schema of spec.md §6, plus the
// format_version field added by SPEC_FULL.md §C. Unknown fields are ignored
// on read (the json package already does this); absent fields default to
// their zero value, which for slices means empty.
type metaJSON struct {
	SessionID            string          `json:"session_id"`
	FormatVersion        string          `json:"format_version,omitempty"`
	ActiveDiagramID      *string         `json:"active_diagram_id"`
	ActiveWalkthroughID  *string         `json:"active_walkthrough_id"`
	WalkthroughIDs       []string        `json:"walkthrough_ids,omitempty"`
	Diagrams             []diagramMeta   `json:"diagrams"`
	XRefs                []xrefMeta      `json:"xrefs"`
	SelectedObjectRefs   []string        `json:"selected_object_refs"`
}

type diagramMeta struct {
	DiagramID string `json:"diagram_id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"` // "sequence" | "flowchart"
	MmdPath   string `json:"mmd_path"`
	Rev       uint64 `json:"rev"`
}

type xrefMeta struct {
	XRefID string  `json:"xref_id"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Kind   string  `json:"kind"`
	Label  *string `json:"label,omitempty"`
	Status string  `json:"status"`
}

// sidecarJSON mirrors the per-diagram sidecar schema of spec.md §4.8.
type sidecarJSON struct {
	StableIDMap              stableIDMap           `json:"stable_id_map"`
	FlowEdges                []flowEdgeFingerprint `json:"flow_edges,omitempty"`
	SequenceMessages         []seqMsgFingerprint   `json:"sequence_messages,omitempty"`
	FlowNodeNotes            map[string]string     `json:"flow_node_notes,omitempty"`
	SequenceParticipantNotes map[string]string     `json:"sequence_participant_notes,omitempty"`
	// SequenceBlocks preserves nested alt/opt/loop/par structure, which the
	// documented Mermaid subset this exporter emits does not represent.
	SequenceBlocks []blockJSON `json:"sequence_blocks,omitempty"`
}

type blockJSON struct {
	BlockID  string        `json:"block_id"`
	Kind     string        `json:"kind"`
	Header   *string       `json:"header,omitempty"`
	Sections []sectionJSON `json:"sections"`
	Blocks   []blockJSON   `json:"blocks,omitempty"`
}

type sectionJSON struct {
	SectionID  string   `json:"section_id"`
	Kind       string   `json:"kind"`
	Header     *string  `json:"header,omitempty"`
	MessageIDs []string `json:"message_ids"`
}

type stableIDMap struct {
	ByMermaidID map[string]string `json:"by_mermaid_id,omitempty"`
	ByName      map[string]string `json:"by_name,omitempty"`
}

type flowEdgeFingerprint struct {
	EdgeID string  `json:"edge_id"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Label  *string `json:"label,omitempty"`
	Style  *string `json:"style,omitempty"`
}

type seqMsgFingerprint struct {
	MessageID string `json:"message_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Kind      string `json:"kind"` // "sync" | "async" | "return"
	Text      string `json:"text"`
}

// walkthroughJSON mirrors D/walkthroughs/<id>.json, per SPEC_FULL.md §C.
type walkthroughJSON struct {
	WalkthroughID string              `json:"walkthrough_id"`
	Title         string              `json:"title"`
	Rev           uint64              `json:"rev"`
	Source        *string             `json:"source,omitempty"`
	Nodes         []walkthroughNodeJSON `json:"nodes"`
	Edges         []walkthroughEdgeJSON `json:"edges"`
}

type walkthroughNodeJSON struct {
	NodeID string   `json:"node_id"`
	Title  string   `json:"title"`
	BodyMd *string  `json:"body_md,omitempty"`
	Refs   []string `json:"refs,omitempty"`
	Tags   []string `json:"tags,omitempty"`
	Status *string  `json:"status,omitempty"`
}

type walkthroughEdgeJSON struct {
	FromNodeID string  `json:"from_node_id"`
	ToNodeID   string  `json:"to_node_id"`
	Kind       string  `json:"kind"`
	Label      *string `json:"label,omitempty"`
}

func messageKindToString(k model.SequenceMessageKind) string {
	switch k {
	case model.Async:
		return "async"
	case model.Return:
		return "return"
	default:
		return "sync"
	}
}

func messageKindFromString(s string) model.SequenceMessageKind {
	switch s {
	case "async":
		return model.Async
	case "return":
		return model.Return
	default:
		return model.Sync
	}
}
