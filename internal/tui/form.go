package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/bnomei/nereid/internal/model"
)

// quickAddTarget names which op the quick-entry form is building, per
// SPEC_FULL.md §D's "huh-driven quick-entry form for the common ops".
type quickAddTarget string

const (
	targetSeqParticipant  quickAddTarget = "participant"
	targetSeqMessage      quickAddTarget = "message"
	targetFlowNode        quickAddTarget = "node"
	targetFlowEdge        quickAddTarget = "edge"
	targetWalkthroughNode quickAddTarget = "walkthrough step"
)

// quickAddInputs is the staging area every field of the quick-entry form
// writes into; its values are read back once the form completes and turned
// into a concrete ops.Op/ops.WalkthroughOp. targetStr is bound directly to
// the form's select widget (huh.Value requires a *string, not a named
// string type), and resolved into target once the form completes.
type quickAddInputs struct {
	target    quickAddTarget
	targetStr string

	name string // participant mermaid name / node label / walkthrough step title
	from string // message/edge source id
	to   string // message/edge destination id
	text string // message text / edge label
}

// resolveTarget copies the form's final select value into in.target. Call
// this once the form reaches huh.StateCompleted.
func (in *quickAddInputs) resolveTarget() {
	if in.targetStr != "" {
		in.target = quickAddTarget(in.targetStr)
	}
}

// newQuickAddForm builds the form shown for the diagram or walkthrough
// currently selected in the picker. The target choices offered depend on
// what kind of thing is selected: a sequence diagram offers
// participant/message, a flowchart offers node/edge, a walkthrough offers
// only its one step-adding op.
func newQuickAddForm(kind model.DiagramKind, isWalkthrough bool) (*huh.Form, *quickAddInputs) {
	in := &quickAddInputs{}

	if isWalkthrough {
		in.target = targetWalkthroughNode
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Step title").Value(&in.name),
			huh.NewInput().Title("Body (markdown, optional)").Value(&in.text),
		).Title("Add walkthrough step"))
		return form, in
	}

	switch kind {
	case model.KindSequence:
		in.targetStr = string(targetSeqParticipant)
		typeGroup := huh.NewGroup(
			huh.NewSelect[string]().
				Title("Add").
				Options(
					huh.NewOption("Participant", string(targetSeqParticipant)),
					huh.NewOption("Message", string(targetSeqMessage)),
				).
				Value(&in.targetStr),
		)
		participantGroup := huh.NewGroup(
			huh.NewInput().Title("Participant name").Value(&in.name),
		).WithHideFunc(func() bool { return in.targetStr != string(targetSeqParticipant) })
		messageGroup := huh.NewGroup(
			huh.NewInput().Title("From participant id").Value(&in.from),
			huh.NewInput().Title("To participant id").Value(&in.to),
			huh.NewInput().Title("Message text").Value(&in.text),
		).WithHideFunc(func() bool { return in.targetStr != string(targetSeqMessage) })

		return huh.NewForm(typeGroup, participantGroup, messageGroup), in

	case model.KindFlowchart:
		in.targetStr = string(targetFlowNode)
		typeGroup := huh.NewGroup(
			huh.NewSelect[string]().
				Title("Add").
				Options(
					huh.NewOption("Node", string(targetFlowNode)),
					huh.NewOption("Edge", string(targetFlowEdge)),
				).
				Value(&in.targetStr),
		)
		nodeGroup := huh.NewGroup(
			huh.NewInput().Title("Node label").Value(&in.name),
		).WithHideFunc(func() bool { return in.targetStr != string(targetFlowNode) })
		edgeGroup := huh.NewGroup(
			huh.NewInput().Title("From node id").Value(&in.from),
			huh.NewInput().Title("To node id").Value(&in.to),
			huh.NewInput().Title("Edge label (optional)").Value(&in.text),
		).WithHideFunc(func() bool { return in.targetStr != string(targetFlowEdge) })

		return huh.NewForm(typeGroup, nodeGroup, edgeGroup), in
	}

	return huh.NewForm(huh.NewGroup(huh.NewNote().Title("Nothing to add here"))), in
}
