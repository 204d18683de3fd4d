package ops

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

// MarshalOp renders op as its wire JSON form, a flat object carrying a
// "kind" discriminator plus the op's own fields in snake_case. This is the
// format internal/rpcserver's apply_ops method accepts and returns.
func MarshalOp(op Op) ([]byte, error) {
	switch v := op.(type) {
	case AddParticipant:
		return json.Marshal(struct {
			Kind          string  `json:"kind"`
			ParticipantID string  `json:"participant_id"`
			MermaidName   string  `json:"mermaid_name"`
			Role          *string `json:"role,omitempty"`
			Note          *string `json:"note,omitempty"`
		}{"AddParticipant", v.ParticipantID.String(), v.MermaidName, v.Role, v.Note})
	case UpdateParticipant:
		return json.Marshal(struct {
			Kind          string  `json:"kind"`
			ParticipantID string  `json:"participant_id"`
			MermaidName   *string `json:"mermaid_name,omitempty"`
			Role          **string `json:"role,omitempty"`
			Note          **string `json:"note,omitempty"`
		}{"UpdateParticipant", v.ParticipantID.String(), v.Patch.MermaidName, v.Patch.Role, v.Patch.Note})
	case SetParticipantNote:
		return json.Marshal(struct {
			Kind          string  `json:"kind"`
			ParticipantID string  `json:"participant_id"`
			Note          *string `json:"note"`
		}{"SetParticipantNote", v.ParticipantID.String(), v.Note})
	case RemoveParticipant:
		return json.Marshal(struct {
			Kind          string `json:"kind"`
			ParticipantID string `json:"participant_id"`
		}{"RemoveParticipant", v.ParticipantID.String()})
	case AddMessage:
		return json.Marshal(struct {
			Kind      string `json:"kind"`
			MessageID string `json:"message_id"`
			From      string `json:"from"`
			To        string `json:"to"`
			Kind2     string `json:"message_kind"`
			Arrow     *string `json:"arrow,omitempty"`
			Text      string `json:"text"`
			OrderKey  int64  `json:"order_key"`
		}{"AddMessage", v.MessageID.String(), v.From.String(), v.To.String(), messageKindToWire(v.Kind), v.Arrow, v.Text, v.OrderKey})
	case UpdateMessage:
		var kindPtr *string
		if v.Patch.Kind != nil {
			s := messageKindToWire(*v.Patch.Kind)
			kindPtr = &s
		}
		return json.Marshal(struct {
			Kind      string   `json:"kind"`
			MessageID string   `json:"message_id"`
			Text      *string  `json:"text,omitempty"`
			OrderKey  *int64   `json:"order_key,omitempty"`
			MsgKind   *string  `json:"message_kind,omitempty"`
			Arrow     **string `json:"arrow,omitempty"`
		}{"UpdateMessage", v.MessageID.String(), v.Patch.Text, v.Patch.OrderKey, kindPtr, v.Patch.Arrow})
	case RemoveMessage:
		return json.Marshal(struct {
			Kind      string `json:"kind"`
			MessageID string `json:"message_id"`
		}{"RemoveMessage", v.MessageID.String()})
	case AddNode:
		return json.Marshal(struct {
			Kind      string  `json:"kind"`
			NodeID    string  `json:"node_id"`
			Label     string  `json:"label"`
			Shape     *string `json:"shape,omitempty"`
			MermaidID *string `json:"mermaid_id,omitempty"`
			Note      *string `json:"note,omitempty"`
		}{"AddNode", v.NodeID.String(), v.Label, v.Shape, v.MermaidID, v.Note})
	case UpdateNode:
		return json.Marshal(struct {
			Kind   string   `json:"kind"`
			NodeID string   `json:"node_id"`
			Label  *string  `json:"label,omitempty"`
			Shape  **string `json:"shape,omitempty"`
			Note   **string `json:"note,omitempty"`
		}{"UpdateNode", v.NodeID.String(), v.Patch.Label, v.Patch.Shape, v.Patch.Note})
	case SetNodeMermaidId:
		return json.Marshal(struct {
			Kind      string  `json:"kind"`
			NodeID    string  `json:"node_id"`
			MermaidID *string `json:"mermaid_id"`
		}{"SetNodeMermaidId", v.NodeID.String(), v.MermaidID})
	case SetNodeNote:
		return json.Marshal(struct {
			Kind   string  `json:"kind"`
			NodeID string  `json:"node_id"`
			Note   *string `json:"note"`
		}{"SetNodeNote", v.NodeID.String(), v.Note})
	case RemoveNode:
		return json.Marshal(struct {
			Kind   string `json:"kind"`
			NodeID string `json:"node_id"`
		}{"RemoveNode", v.NodeID.String()})
	case AddEdge:
		return json.Marshal(struct {
			Kind      string  `json:"kind"`
			EdgeID    string  `json:"edge_id"`
			From      string  `json:"from"`
			To        string  `json:"to"`
			Label     *string `json:"label,omitempty"`
			Connector *string `json:"connector,omitempty"`
			Style     *string `json:"style,omitempty"`
		}{"AddEdge", v.EdgeID.String(), v.From.String(), v.To.String(), v.Label, v.Connector, v.Style})
	case UpdateEdge:
		return json.Marshal(struct {
			Kind      string   `json:"kind"`
			EdgeID    string   `json:"edge_id"`
			Label     **string `json:"label,omitempty"`
			Connector **string `json:"connector,omitempty"`
			Style     **string `json:"style,omitempty"`
		}{"UpdateEdge", v.EdgeID.String(), v.Patch.Label, v.Patch.Connector, v.Patch.Style})
	case RemoveEdge:
		return json.Marshal(struct {
			Kind   string `json:"kind"`
			EdgeID string `json:"edge_id"`
		}{"RemoveEdge", v.EdgeID.String()})
	default:
		return nil, fmt.Errorf("marshal op: unknown op type %T", op)
	}
}

func messageKindToWire(k model.SequenceMessageKind) string {
	switch k {
	case model.Async:
		return "async"
	case model.Return:
		return "return"
	default:
		return "sync"
	}
}

func messageKindFromWire(s string) model.SequenceMessageKind {
	switch s {
	case "async":
		return model.Async
	case "return":
		return model.Return
	default:
		return model.Sync
	}
}

// UnmarshalOp parses the wire JSON form produced by MarshalOp back into a
// concrete Op. Patch fields use key-presence to distinguish "don't touch"
// (key absent) from "clear" (key present, JSON null) from "set" (key
// present, non-null), per the double-pointer convention documented on
// ParticipantPatch/MessagePatch/NodePatch/EdgePatch.
func UnmarshalOp(data []byte) (Op, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal op: %w", err)
	}
	kind, err := stringField(fields, "kind")
	if err != nil {
		return nil, fmt.Errorf("unmarshal op: %w", err)
	}

	switch kind {
	case "AddParticipant":
		id, err := objectIDField(fields, "participant_id")
		if err != nil {
			return nil, err
		}
		name, err := stringField(fields, "mermaid_name")
		if err != nil {
			return nil, err
		}
		role, err := optionalStringField(fields, "role")
		if err != nil {
			return nil, err
		}
		note, err := optionalStringField(fields, "note")
		if err != nil {
			return nil, err
		}
		return AddParticipant{ParticipantID: id, MermaidName: name, Role: role, Note: note}, nil

	case "UpdateParticipant":
		id, err := objectIDField(fields, "participant_id")
		if err != nil {
			return nil, err
		}
		name, err := optionalStringField(fields, "mermaid_name")
		if err != nil {
			return nil, err
		}
		role, err := patchStringField(fields, "role")
		if err != nil {
			return nil, err
		}
		note, err := patchStringField(fields, "note")
		if err != nil {
			return nil, err
		}
		return UpdateParticipant{ParticipantID: id, Patch: ParticipantPatch{MermaidName: name, Role: role, Note: note}}, nil

	case "SetParticipantNote":
		id, err := objectIDField(fields, "participant_id")
		if err != nil {
			return nil, err
		}
		note, err := optionalStringField(fields, "note")
		if err != nil {
			return nil, err
		}
		return SetParticipantNote{ParticipantID: id, Note: note}, nil

	case "RemoveParticipant":
		id, err := objectIDField(fields, "participant_id")
		if err != nil {
			return nil, err
		}
		return RemoveParticipant{ParticipantID: id}, nil

	case "AddMessage":
		id, err := objectIDField(fields, "message_id")
		if err != nil {
			return nil, err
		}
		from, err := objectIDField(fields, "from")
		if err != nil {
			return nil, err
		}
		to, err := objectIDField(fields, "to")
		if err != nil {
			return nil, err
		}
		kindStr, err := stringField(fields, "message_kind")
		if err != nil {
			return nil, err
		}
		arrow, err := optionalStringField(fields, "arrow")
		if err != nil {
			return nil, err
		}
		text, err := stringField(fields, "text")
		if err != nil {
			return nil, err
		}
		orderKey, err := int64Field(fields, "order_key")
		if err != nil {
			return nil, err
		}
		return AddMessage{MessageID: id, From: from, To: to, Kind: messageKindFromWire(kindStr), Arrow: arrow, Text: text, OrderKey: orderKey}, nil

	case "UpdateMessage":
		id, err := objectIDField(fields, "message_id")
		if err != nil {
			return nil, err
		}
		text, err := optionalStringField(fields, "text")
		if err != nil {
			return nil, err
		}
		orderKey, err := optionalInt64Field(fields, "order_key")
		if err != nil {
			return nil, err
		}
		var kindPtr *model.SequenceMessageKind
		if kindStr, err := optionalStringField(fields, "message_kind"); err != nil {
			return nil, err
		} else if kindStr != nil {
			k := messageKindFromWire(*kindStr)
			kindPtr = &k
		}
		arrow, err := patchStringField(fields, "arrow")
		if err != nil {
			return nil, err
		}
		return UpdateMessage{MessageID: id, Patch: MessagePatch{Kind: kindPtr, Arrow: arrow, Text: text, OrderKey: orderKey}}, nil

	case "RemoveMessage":
		id, err := objectIDField(fields, "message_id")
		if err != nil {
			return nil, err
		}
		return RemoveMessage{MessageID: id}, nil

	case "AddNode":
		id, err := objectIDField(fields, "node_id")
		if err != nil {
			return nil, err
		}
		label, err := stringField(fields, "label")
		if err != nil {
			return nil, err
		}
		shape, err := optionalStringField(fields, "shape")
		if err != nil {
			return nil, err
		}
		mermaidID, err := optionalStringField(fields, "mermaid_id")
		if err != nil {
			return nil, err
		}
		note, err := optionalStringField(fields, "note")
		if err != nil {
			return nil, err
		}
		return AddNode{NodeID: id, Label: label, Shape: shape, MermaidID: mermaidID, Note: note}, nil

	case "UpdateNode":
		id, err := objectIDField(fields, "node_id")
		if err != nil {
			return nil, err
		}
		label, err := optionalStringField(fields, "label")
		if err != nil {
			return nil, err
		}
		shape, err := patchStringField(fields, "shape")
		if err != nil {
			return nil, err
		}
		note, err := patchStringField(fields, "note")
		if err != nil {
			return nil, err
		}
		return UpdateNode{NodeID: id, Patch: NodePatch{Label: label, Shape: shape, Note: note}}, nil

	case "SetNodeMermaidId":
		id, err := objectIDField(fields, "node_id")
		if err != nil {
			return nil, err
		}
		mermaidID, err := optionalStringField(fields, "mermaid_id")
		if err != nil {
			return nil, err
		}
		return SetNodeMermaidId{NodeID: id, MermaidID: mermaidID}, nil

	case "SetNodeNote":
		id, err := objectIDField(fields, "node_id")
		if err != nil {
			return nil, err
		}
		note, err := optionalStringField(fields, "note")
		if err != nil {
			return nil, err
		}
		return SetNodeNote{NodeID: id, Note: note}, nil

	case "RemoveNode":
		id, err := objectIDField(fields, "node_id")
		if err != nil {
			return nil, err
		}
		return RemoveNode{NodeID: id}, nil

	case "AddEdge":
		id, err := objectIDField(fields, "edge_id")
		if err != nil {
			return nil, err
		}
		from, err := objectIDField(fields, "from")
		if err != nil {
			return nil, err
		}
		to, err := objectIDField(fields, "to")
		if err != nil {
			return nil, err
		}
		label, err := optionalStringField(fields, "label")
		if err != nil {
			return nil, err
		}
		connector, err := optionalStringField(fields, "connector")
		if err != nil {
			return nil, err
		}
		style, err := optionalStringField(fields, "style")
		if err != nil {
			return nil, err
		}
		return AddEdge{EdgeID: id, From: from, To: to, Label: label, Connector: connector, Style: style}, nil

	case "UpdateEdge":
		id, err := objectIDField(fields, "edge_id")
		if err != nil {
			return nil, err
		}
		label, err := patchStringField(fields, "label")
		if err != nil {
			return nil, err
		}
		connector, err := patchStringField(fields, "connector")
		if err != nil {
			return nil, err
		}
		style, err := patchStringField(fields, "style")
		if err != nil {
			return nil, err
		}
		return UpdateEdge{EdgeID: id, Patch: EdgePatch{Label: label, Connector: connector, Style: style}}, nil

	case "RemoveEdge":
		id, err := objectIDField(fields, "edge_id")
		if err != nil {
			return nil, err
		}
		return RemoveEdge{EdgeID: id}, nil

	default:
		return nil, fmt.Errorf("unmarshal op: unknown kind %q", kind)
	}
}

func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("missing required field %q", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("field %q: %w", key, err)
	}
	return s, nil
}

func int64Field(fields map[string]json.RawMessage, key string) (int64, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return n, nil
}

func optionalInt64Field(fields map[string]json.RawMessage, key string) (*int64, error) {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	return &n, nil
}

func objectIDField(fields map[string]json.RawMessage, key string) (ids.ObjectId, error) {
	s, err := stringField(fields, key)
	if err != nil {
		return ids.ObjectId{}, err
	}
	id, err := ids.NewObjectId(s)
	if err != nil {
		return ids.ObjectId{}, fmt.Errorf("field %q: %w", key, err)
	}
	return id, nil
}

func optionalStringField(fields map[string]json.RawMessage, key string) (*string, error) {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	return &s, nil
}

// patchStringField implements the double-pointer decode: key absent means
// "don't touch" (nil outer pointer); key present with null means "clear"
// (non-nil outer pointer to a nil inner pointer); key present with a
// string means "set".
func patchStringField(fields map[string]json.RawMessage, key string) (**string, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		var inner *string
		return &inner, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	inner := &s
	return &inner, nil
}
