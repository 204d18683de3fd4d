package model

import "github.com/bnomei/nereid/internal/ids"

// RevisionCap bounds a diagram's revision counter so a bounded delta history
// stays bounded even under pathological op volume. 2^20. Walkthrough
// revisions use WalkthroughRevCap instead.
const RevisionCap uint64 = 1 << 20

// DiagramKind distinguishes the two AST variants a Diagram can hold.
type DiagramKind int

const (
	// KindSequence marks a diagram whose Ast is a *SequenceAst.
	KindSequence DiagramKind = iota
	// KindFlowchart marks a diagram whose Ast is a *FlowchartAst.
	KindFlowchart
)

func (k DiagramKind) String() string {
	if k == KindFlowchart {
		return "flowchart"
	}
	return "sequence"
}

// DiagramAst is a tagged union over the two diagram AST variants. Exactly
// one of Sequence or Flowchart is non-nil, matching Kind.
type DiagramAst struct {
	Kind       DiagramKind
	Sequence   *SequenceAst
	Flowchart  *FlowchartAst
}

// NewSequenceDiagramAst wraps a fresh sequence AST.
func NewSequenceDiagramAst() DiagramAst {
	return DiagramAst{Kind: KindSequence, Sequence: NewSequenceAst()}
}

// NewFlowchartDiagramAst wraps a fresh flowchart AST.
func NewFlowchartDiagramAst() DiagramAst {
	return DiagramAst{Kind: KindFlowchart, Flowchart: NewFlowchartAst()}
}

// Clone deep-enough-copies the active variant.
func (a DiagramAst) Clone() DiagramAst {
	switch a.Kind {
	case KindFlowchart:
		return DiagramAst{Kind: KindFlowchart, Flowchart: a.Flowchart.Clone()}
	default:
		return DiagramAst{Kind: KindSequence, Sequence: a.Sequence.Clone()}
	}
}

// Diagram is one diagram within a session: its identity, display name,
// monotonic revision, and typed AST.
type Diagram struct {
	DiagramID ids.DiagramId
	Name      string
	Rev       uint64
	Ast       DiagramAst
}

// NewDiagram constructs a Diagram at revision 0.
func NewDiagram(id ids.DiagramId, name string, ast DiagramAst) *Diagram {
	return &Diagram{DiagramID: id, Name: name, Rev: 0, Ast: ast}
}

// Kind reports the diagram's AST variant.
func (d *Diagram) Kind() DiagramKind { return d.Ast.Kind }
