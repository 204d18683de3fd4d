// Package ids defines the typed, validated identifiers that name objects
// across a Nereid session: diagrams, sessions, walkthroughs, per-diagram
// objects, and the cross-diagram references built from them.
package ids

import (
	"fmt"
	"strings"
)

// InvalidIDError reports why a raw string could not become the named
// identifier kind.
type InvalidIDError struct {
	Kind   string
	Value  string
	Reason string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Value, e.Reason)
}

func validateRaw(kind, raw string) error {
	if raw == "" {
		return &InvalidIDError{Kind: kind, Value: raw, Reason: "must not be empty"}
	}
	for _, r := range raw {
		if r < 0x20 || r == 0x7f {
			return &InvalidIDError{Kind: kind, Value: raw, Reason: "must not contain control characters"}
		}
		if r == '/' || r == '\\' {
			return &InvalidIDError{Kind: kind, Value: raw, Reason: "must not contain path separators"}
		}
	}
	return nil
}

// ObjectId names an object within a single diagram. By convention it may
// embed a kind prefix such as "n:", "e:", "m:", or "p:", but the prefix is
// not enforced here — callers that rely on prefix-derived implicit ids
// (flowchart mermaid ids) do so at the call site.
type ObjectId struct{ raw string }

// NewObjectId validates and wraps raw as an ObjectId.
func NewObjectId(raw string) (ObjectId, error) {
	if err := validateRaw("ObjectId", raw); err != nil {
		return ObjectId{}, err
	}
	return ObjectId{raw: raw}, nil
}

// String returns the underlying string value.
func (id ObjectId) String() string { return id.raw }

// IsZero reports whether id is the zero value (never produced by NewObjectId).
func (id ObjectId) IsZero() bool { return id.raw == "" }

// DiagramId names a diagram within a session.
type DiagramId struct{ raw string }

// NewDiagramId validates and wraps raw as a DiagramId.
func NewDiagramId(raw string) (DiagramId, error) {
	if err := validateRaw("DiagramId", raw); err != nil {
		return DiagramId{}, err
	}
	return DiagramId{raw: raw}, nil
}

func (id DiagramId) String() string { return id.raw }
func (id DiagramId) IsZero() bool   { return id.raw == "" }

// SessionId names a session.
type SessionId struct{ raw string }

// NewSessionId validates and wraps raw as a SessionId.
func NewSessionId(raw string) (SessionId, error) {
	if err := validateRaw("SessionId", raw); err != nil {
		return SessionId{}, err
	}
	return SessionId{raw: raw}, nil
}

func (id SessionId) String() string { return id.raw }
func (id SessionId) IsZero() bool   { return id.raw == "" }

// WalkthroughId names a walkthrough within a session.
type WalkthroughId struct{ raw string }

// NewWalkthroughId validates and wraps raw as a WalkthroughId.
func NewWalkthroughId(raw string) (WalkthroughId, error) {
	if err := validateRaw("WalkthroughId", raw); err != nil {
		return WalkthroughId{}, err
	}
	return WalkthroughId{raw: raw}, nil
}

func (id WalkthroughId) String() string { return id.raw }
func (id WalkthroughId) IsZero() bool   { return id.raw == "" }

// WalkthroughNodeId names a node within a walkthrough.
type WalkthroughNodeId struct{ raw string }

// NewWalkthroughNodeId validates and wraps raw as a WalkthroughNodeId.
func NewWalkthroughNodeId(raw string) (WalkthroughNodeId, error) {
	if err := validateRaw("WalkthroughNodeId", raw); err != nil {
		return WalkthroughNodeId{}, err
	}
	return WalkthroughNodeId{raw: raw}, nil
}

func (id WalkthroughNodeId) String() string { return id.raw }
func (id WalkthroughNodeId) IsZero() bool   { return id.raw == "" }

// XRefId names a cross-reference within a session.
type XRefId struct{ raw string }

// NewXRefId validates and wraps raw as an XRefId.
func NewXRefId(raw string) (XRefId, error) {
	if err := validateRaw("XRefId", raw); err != nil {
		return XRefId{}, err
	}
	return XRefId{raw: raw}, nil
}

func (id XRefId) String() string { return id.raw }
func (id XRefId) IsZero() bool   { return id.raw == "" }

// CategoryPath is an ordered sequence of two or more non-empty segments
// naming an object's kind within a diagram, e.g. ["seq", "participant"].
type CategoryPath struct {
	segments []string
}

// NewCategoryPath validates segments and builds a CategoryPath.
func NewCategoryPath(segments []string) (CategoryPath, error) {
	if len(segments) < 2 {
		return CategoryPath{}, fmt.Errorf("category path must have at least two segments, got %d", len(segments))
	}
	out := make([]string, len(segments))
	for i, seg := range segments {
		if seg == "" {
			return CategoryPath{}, fmt.Errorf("category path segment %d must not be empty", i)
		}
		if strings.ContainsAny(seg, "/\\") {
			return CategoryPath{}, fmt.Errorf("category path segment %q must not contain a path separator", seg)
		}
		out[i] = seg
	}
	return CategoryPath{segments: out}, nil
}

// Segments returns a copy of the path's segments.
func (c CategoryPath) Segments() []string {
	out := make([]string, len(c.segments))
	copy(out, c.segments)
	return out
}

func (c CategoryPath) String() string { return strings.Join(c.segments, "/") }

// ObjectRef uniquely names one object across the session: the diagram it
// lives in, its category path, and its object id.
type ObjectRef struct {
	Diagram  DiagramId
	Category CategoryPath
	Object   ObjectId
}

// NewObjectRef builds an ObjectRef from its parts.
func NewObjectRef(diagram DiagramId, category CategoryPath, object ObjectId) ObjectRef {
	return ObjectRef{Diagram: diagram, Category: category, Object: object}
}

// String renders the canonical wire form "<diagram>/<cat1>/<cat2>/<object>".
func (r ObjectRef) String() string {
	var b strings.Builder
	b.WriteString(r.Diagram.String())
	for _, seg := range r.Category.segments {
		b.WriteByte('/')
		b.WriteString(seg)
	}
	b.WriteByte('/')
	b.WriteString(r.Object.String())
	return b.String()
}

// Equal reports whether two refs name the same object.
func (r ObjectRef) Equal(other ObjectRef) bool {
	return r.String() == other.String()
}

// ParseObjectRef parses the canonical wire form produced by String: the
// first segment is the DiagramId, the last is the ObjectId, and the
// segments in between (at least one) form the CategoryPath.
func ParseObjectRef(raw string) (ObjectRef, error) {
	parts := strings.Split(raw, "/")
	if len(parts) < 4 {
		return ObjectRef{}, fmt.Errorf("object ref %q must have at least 4 slash-separated segments", raw)
	}
	for _, p := range parts {
		if p == "" {
			return ObjectRef{}, fmt.Errorf("object ref %q must not contain empty segments", raw)
		}
	}

	diagramID, err := NewDiagramId(parts[0])
	if err != nil {
		return ObjectRef{}, fmt.Errorf("object ref %q: %w", raw, err)
	}
	objectID, err := NewObjectId(parts[len(parts)-1])
	if err != nil {
		return ObjectRef{}, fmt.Errorf("object ref %q: %w", raw, err)
	}
	category, err := NewCategoryPath(parts[1 : len(parts)-1])
	if err != nil {
		return ObjectRef{}, fmt.Errorf("object ref %q: %w", raw, err)
	}

	return NewObjectRef(diagramID, category, objectID), nil
}
