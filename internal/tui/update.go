package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
	"github.com/bnomei/nereid/internal/ops"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := m.height - 3
		if listHeight < 1 {
			listHeight = 1
		}
		m.list.SetSize(m.width, listHeight)
		m.viewport.Width = m.width
		m.viewport.Height = listHeight
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StatePicker:
		return m.handlePickerKey(msg)
	case StateViewport:
		return m.handleViewportKey(msg)
	case StateForm:
		return m.handleFormKey(msg)
	}
	return m, nil
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "enter":
		m.renderSelection()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleViewportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.state = StatePicker
		m.statusBar.ClearActive()
		return m, nil
	case "n":
		return m.openQuickAddForm()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) openQuickAddForm() (tea.Model, tea.Cmd) {
	if d, ok := m.selectedDiagram(); ok {
		m.form, m.formInputs = newQuickAddForm(d.Ast.Kind, false)
		m.formKind = pickerKindDiagram
		m.state = StateForm
		return m, m.form.Init()
	}
	if _, ok := m.selectedWalkthrough(); ok {
		m.form, m.formInputs = newQuickAddForm(model.KindSequence, true)
		m.formKind = pickerKindWalkthrough
		m.state = StateForm
		return m, m.form.Init()
	}
	return m, nil
}

func (m *Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.state = StateViewport
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.formInputs.resolveTarget()
		m.applyQuickAdd()
		m.renderSelection()
		return m, nil
	case huh.StateAborted:
		m.state = StateViewport
		return m, nil
	}

	return m, cmd
}

// applyQuickAdd turns the completed quick-entry form into a concrete op and
// applies it to the selected diagram or walkthrough. Errors (a malformed
// from/to id, a conflicting base revision) are recorded on m.err and shown
// in the viewport rather than dropped silently.
func (m *Model) applyQuickAdd() {
	in := m.formInputs
	if in == nil {
		return
	}

	if m.formKind == pickerKindWalkthrough {
		w, ok := m.selectedWalkthrough()
		if !ok {
			return
		}
		nodeID := ids.NewGeneratedWalkthroughNodeId()
		var bodyMd *string
		if in.text != "" {
			bodyMd = &in.text
		}
		_, err := ops.ApplyWalkthroughOps(w, w.Rev, []ops.WalkthroughOp{
			ops.AddWalkthroughNode{NodeID: nodeID, Title: in.name, BodyMd: bodyMd},
		})
		m.err = err
		return
	}

	d, ok := m.selectedDiagram()
	if !ok {
		return
	}

	var op ops.Op
	switch in.target {
	case targetSeqParticipant:
		op = ops.AddParticipant{
			ParticipantID: ids.NewGeneratedObjectId("p:"),
			MermaidName:   in.name,
		}
	case targetSeqMessage:
		from, err := ids.NewObjectId(in.from)
		if err != nil {
			m.err = err
			return
		}
		to, err := ids.NewObjectId(in.to)
		if err != nil {
			m.err = err
			return
		}
		op = ops.AddMessage{
			MessageID: ids.NewGeneratedObjectId("m:"),
			From:      from,
			To:        to,
			Kind:      model.Sync,
			Text:      in.text,
			OrderKey:  int64(len(d.Ast.Sequence.Messages)) * 10,
		}
	case targetFlowNode:
		op = ops.AddNode{
			NodeID: ids.NewGeneratedObjectId("n:"),
			Label:  in.name,
		}
	case targetFlowEdge:
		from, err := ids.NewObjectId(in.from)
		if err != nil {
			m.err = err
			return
		}
		to, err := ids.NewObjectId(in.to)
		if err != nil {
			m.err = err
			return
		}
		var label *string
		if in.text != "" {
			label = &in.text
		}
		op = ops.AddEdge{
			EdgeID: ids.NewGeneratedObjectId("e:"),
			From:   from,
			To:     to,
			Label:  label,
		}
	default:
		return
	}

	_, err := ops.ApplyOps(d, d.Rev, []ops.Op{op})
	m.err = err
}
