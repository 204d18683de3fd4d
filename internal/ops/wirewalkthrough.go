package ops

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

// MarshalWalkthroughOp renders op as its wire JSON form, the walkthrough
// analog of MarshalOp.
func MarshalWalkthroughOp(op WalkthroughOp) ([]byte, error) {
	switch v := op.(type) {
	case AddWalkthroughNode:
		return json.Marshal(struct {
			Kind   string   `json:"kind"`
			NodeID string   `json:"node_id"`
			Title  string   `json:"title"`
			BodyMd *string  `json:"body_md,omitempty"`
			Refs   []string `json:"refs,omitempty"`
			Tags   []string `json:"tags,omitempty"`
			Status *string  `json:"status,omitempty"`
		}{"AddWalkthroughNode", v.NodeID.String(), v.Title, v.BodyMd, refsToWire(v.Refs), v.Tags, v.Status})

	case UpdateWalkthroughNode:
		var refsWire *[]string
		if v.Patch.Refs != nil {
			r := refsToWire(*v.Patch.Refs)
			refsWire = &r
		}
		return json.Marshal(struct {
			Kind   string    `json:"kind"`
			NodeID string    `json:"node_id"`
			Title  *string   `json:"title,omitempty"`
			BodyMd **string  `json:"body_md,omitempty"`
			Refs   *[]string `json:"refs,omitempty"`
			Tags   *[]string `json:"tags,omitempty"`
			Status **string  `json:"status,omitempty"`
		}{"UpdateWalkthroughNode", v.NodeID.String(), v.Patch.Title, v.Patch.BodyMd, refsWire, v.Patch.Tags, v.Patch.Status})

	case RemoveWalkthroughNode:
		return json.Marshal(struct {
			Kind   string `json:"kind"`
			NodeID string `json:"node_id"`
		}{"RemoveWalkthroughNode", v.NodeID.String()})

	case AddWalkthroughEdge:
		return json.Marshal(struct {
			Kind       string  `json:"kind"`
			FromNodeID string  `json:"from_node_id"`
			ToNodeID   string  `json:"to_node_id"`
			EdgeKind   string  `json:"edge_kind"`
			Label      *string `json:"label,omitempty"`
		}{"AddWalkthroughEdge", v.FromNodeID.String(), v.ToNodeID.String(), v.Kind.String(), v.Label})

	case RemoveWalkthroughEdge:
		return json.Marshal(struct {
			Kind       string `json:"kind"`
			FromNodeID string `json:"from_node_id"`
			ToNodeID   string `json:"to_node_id"`
			EdgeKind   string `json:"edge_kind"`
		}{"RemoveWalkthroughEdge", v.FromNodeID.String(), v.ToNodeID.String(), v.Kind.String()})

	case SetWalkthroughMeta:
		return json.Marshal(struct {
			Kind   string   `json:"kind"`
			Title  *string  `json:"title,omitempty"`
			Source **string `json:"source,omitempty"`
		}{"SetWalkthroughMeta", v.Patch.Title, v.Patch.Source})

	default:
		return nil, fmt.Errorf("marshal walkthrough op: unknown op type %T", op)
	}
}

func refsToWire(refs []ids.ObjectRef) []string {
	if refs == nil {
		return nil
	}
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}
	return out
}

func refsFromWire(raw []string) ([]ids.ObjectRef, error) {
	if raw == nil {
		return nil, nil
	}
	out := make([]ids.ObjectRef, len(raw))
	for i, s := range raw {
		ref, err := ids.ParseObjectRef(s)
		if err != nil {
			return nil, fmt.Errorf("ref %q: %w", s, err)
		}
		out[i] = ref
	}
	return out, nil
}

// UnmarshalWalkthroughOp parses the wire JSON form produced by
// MarshalWalkthroughOp back into a concrete WalkthroughOp, applying the
// same key-presence patch convention as UnmarshalOp.
func UnmarshalWalkthroughOp(data []byte) (WalkthroughOp, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal walkthrough op: %w", err)
	}
	kind, err := stringField(fields, "kind")
	if err != nil {
		return nil, fmt.Errorf("unmarshal walkthrough op: %w", err)
	}

	switch kind {
	case "AddWalkthroughNode":
		id, err := walkthroughNodeIDField(fields, "node_id")
		if err != nil {
			return nil, err
		}
		title, err := stringField(fields, "title")
		if err != nil {
			return nil, err
		}
		bodyMd, err := optionalStringField(fields, "body_md")
		if err != nil {
			return nil, err
		}
		var refs []ids.ObjectRef
		if raw, ok := fields["refs"]; ok {
			var rawRefs []string
			if err := json.Unmarshal(raw, &rawRefs); err != nil {
				return nil, fmt.Errorf("field \"refs\": %w", err)
			}
			if refs, err = refsFromWire(rawRefs); err != nil {
				return nil, err
			}
		}
		var tags []string
		if raw, ok := fields["tags"]; ok {
			if err := json.Unmarshal(raw, &tags); err != nil {
				return nil, fmt.Errorf("field \"tags\": %w", err)
			}
		}
		status, err := optionalStringField(fields, "status")
		if err != nil {
			return nil, err
		}
		return AddWalkthroughNode{NodeID: id, Title: title, BodyMd: bodyMd, Refs: refs, Tags: tags, Status: status}, nil

	case "UpdateWalkthroughNode":
		id, err := walkthroughNodeIDField(fields, "node_id")
		if err != nil {
			return nil, err
		}
		title, err := optionalStringField(fields, "title")
		if err != nil {
			return nil, err
		}
		bodyMd, err := patchStringField(fields, "body_md")
		if err != nil {
			return nil, err
		}
		var refsPatch *[]ids.ObjectRef
		if raw, ok := fields["refs"]; ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			var rawRefs []string
			if err := json.Unmarshal(raw, &rawRefs); err != nil {
				return nil, fmt.Errorf("field \"refs\": %w", err)
			}
			refs, err := refsFromWire(rawRefs)
			if err != nil {
				return nil, err
			}
			refsPatch = &refs
		}
		var tagsPatch *[]string
		if raw, ok := fields["tags"]; ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			var tags []string
			if err := json.Unmarshal(raw, &tags); err != nil {
				return nil, fmt.Errorf("field \"tags\": %w", err)
			}
			tagsPatch = &tags
		}
		status, err := patchStringField(fields, "status")
		if err != nil {
			return nil, err
		}
		return UpdateWalkthroughNode{NodeID: id, Patch: WalkthroughNodePatch{
			Title: title, BodyMd: bodyMd, Refs: refsPatch, Tags: tagsPatch, Status: status,
		}}, nil

	case "RemoveWalkthroughNode":
		id, err := walkthroughNodeIDField(fields, "node_id")
		if err != nil {
			return nil, err
		}
		return RemoveWalkthroughNode{NodeID: id}, nil

	case "AddWalkthroughEdge":
		from, err := walkthroughNodeIDField(fields, "from_node_id")
		if err != nil {
			return nil, err
		}
		to, err := walkthroughNodeIDField(fields, "to_node_id")
		if err != nil {
			return nil, err
		}
		edgeKindStr, err := stringField(fields, "edge_kind")
		if err != nil {
			return nil, err
		}
		edgeKind, _ := model.ParseWalkthroughEdgeKind(edgeKindStr)
		label, err := optionalStringField(fields, "label")
		if err != nil {
			return nil, err
		}
		return AddWalkthroughEdge{FromNodeID: from, ToNodeID: to, Kind: edgeKind, Label: label}, nil

	case "RemoveWalkthroughEdge":
		from, err := walkthroughNodeIDField(fields, "from_node_id")
		if err != nil {
			return nil, err
		}
		to, err := walkthroughNodeIDField(fields, "to_node_id")
		if err != nil {
			return nil, err
		}
		edgeKindStr, err := stringField(fields, "edge_kind")
		if err != nil {
			return nil, err
		}
		edgeKind, _ := model.ParseWalkthroughEdgeKind(edgeKindStr)
		return RemoveWalkthroughEdge{FromNodeID: from, ToNodeID: to, Kind: edgeKind}, nil

	case "SetWalkthroughMeta":
		title, err := optionalStringField(fields, "title")
		if err != nil {
			return nil, err
		}
		source, err := patchStringField(fields, "source")
		if err != nil {
			return nil, err
		}
		return SetWalkthroughMeta{Patch: WalkthroughMetaPatch{Title: title, Source: source}}, nil

	default:
		return nil, fmt.Errorf("unmarshal walkthrough op: unknown kind %q", kind)
	}
}

func walkthroughNodeIDField(fields map[string]json.RawMessage, key string) (ids.WalkthroughNodeId, error) {
	s, err := stringField(fields, key)
	if err != nil {
		return ids.WalkthroughNodeId{}, err
	}
	id, err := ids.NewWalkthroughNodeId(s)
	if err != nil {
		return ids.WalkthroughNodeId{}, fmt.Errorf("field %q: %w", key, err)
	}
	return id, nil
}
