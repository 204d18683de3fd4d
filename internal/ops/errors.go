package ops

import "fmt"

// ConflictError is returned when base_rev does not match the diagram's
// current revision.
type ConflictError struct {
	BaseRev    uint64
	CurrentRev uint64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: base_rev %d does not match current_rev %d", e.BaseRev, e.CurrentRev)
}

// KindMismatchError is returned when an op's variant does not match the
// diagram's AST kind.
type KindMismatchError struct {
	DiagramKind string
	OpKind      string
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("kind mismatch: diagram is %s, op is %s", e.DiagramKind, e.OpKind)
}

// UnsupportedOpError is returned for an Op value this engine does not
// recognize (e.g. a zero-value or foreign implementation of the Op interface).
type UnsupportedOpError struct {
	OpKind string
}

func (e *UnsupportedOpError) Error() string {
	return fmt.Sprintf("unsupported op: %s", e.OpKind)
}

// AlreadyExistsError is returned when an Add* op names an id already present.
type AlreadyExistsError struct {
	Kind string
	ID   string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.ID)
}

// NotFoundError is returned when an op references an id that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// MissingFlowNodeError is returned when an edge op references a node id that
// does not exist in the flowchart.
type MissingFlowNodeError struct {
	ID string
}

func (e *MissingFlowNodeError) Error() string {
	return fmt.Sprintf("flow node %q not found", e.ID)
}

// InvalidFlowNodeMermaidIDError is returned when a mermaid id fails the
// `^[A-Za-z0-9_]+$` syntax check.
type InvalidFlowNodeMermaidIDError struct {
	ID     string
	Reason string
}

func (e *InvalidFlowNodeMermaidIDError) Error() string {
	return fmt.Sprintf("invalid mermaid id %q: %s", e.ID, e.Reason)
}

// DuplicateFlowNodeMermaidIDError is returned when a mermaid id collides
// with another node's explicit-or-implicit mermaid id.
type DuplicateFlowNodeMermaidIDError struct {
	MermaidID string
	OtherID   string
}

func (e *DuplicateFlowNodeMermaidIDError) Error() string {
	return fmt.Sprintf("mermaid id %q already used by node %q", e.MermaidID, e.OtherID)
}
