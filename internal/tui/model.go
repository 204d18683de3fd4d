package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/bnomei/nereid/internal/config"
	"github.com/bnomei/nereid/internal/flowlayout"
	"github.com/bnomei/nereid/internal/model"
	"github.com/bnomei/nereid/internal/recents"
	"github.com/bnomei/nereid/internal/render"
	"github.com/bnomei/nereid/internal/routing"
	"github.com/bnomei/nereid/internal/seqlayout"
)

// UIState represents the current screen of the editor.
type UIState int

const (
	// StatePicker shows the list of diagrams and walkthroughs in the
	// loaded session.
	StatePicker UIState = iota
	// StateViewport shows the rendered diagram or walkthrough node body
	// for the currently selected item.
	StateViewport
	// StateForm shows a huh quick-entry form for adding an object to the
	// selected diagram or walkthrough.
	StateForm
)

// Model is the Bubble Tea model for the Nereid editor.
type Model struct {
	session  *model.Session
	root     string
	cfg      config.Config
	recents  *recents.Store
	err      error

	list       list.Model
	viewport   viewport.Model
	statusBar  *StatusBar
	mdRenderer *MarkdownRenderer
	form       *huh.Form
	formKind   pickerKind
	formInputs *quickAddInputs

	state    UIState
	width    int
	height   int
	quitting bool
}

// Ensure Model satisfies the tea.Model interface at compile time.
var _ tea.Model = (*Model)(nil)

// NewModel creates a new editor Model over an already-loaded session rooted
// at root. store may be nil (recents indexing is a peripheral convenience,
// never required for editing to work).
func NewModel(session *model.Session, root string, cfg config.Config, store *recents.Store) *Model {
	items := buildPickerItems(session)
	delegate := list.NewDefaultDelegate()
	l := list.New(items, delegate, 80, 20)
	l.Title = "Diagrams & Walkthroughs"

	vp := viewport.New(80, 20)
	mdRenderer, _ := NewMarkdownRenderer(80)

	m := &Model{
		session:    session,
		root:       root,
		cfg:        cfg,
		recents:    store,
		list:       l,
		viewport:   vp,
		statusBar:  NewStatusBar(80),
		mdRenderer: mdRenderer,
		state:      StatePicker,
		width:      80,
		height:     24,
	}
	m.statusBar.SetSession(session.SessionID.String(), root)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// selectedDiagram returns the diagram currently highlighted in the picker
// list, or nil if the selection is a walkthrough or the list is empty.
func (m *Model) selectedDiagram() (*model.Diagram, bool) {
	item, ok := m.list.SelectedItem().(pickerItem)
	if !ok || item.kind != pickerKindDiagram {
		return nil, false
	}
	d, ok := m.session.Diagrams.Get(item.diagramID)
	return d, ok
}

func (m *Model) selectedWalkthrough() (*model.Walkthrough, bool) {
	item, ok := m.list.SelectedItem().(pickerItem)
	if !ok || item.kind != pickerKindWalkthrough {
		return nil, false
	}
	w, ok := m.session.Walkthroughs.Get(item.walkthroughID)
	return w, ok
}

// renderSelection re-renders the viewport content for whatever is currently
// selected in the picker and switches to StateViewport.
func (m *Model) renderSelection() {
	if d, ok := m.selectedDiagram(); ok {
		m.viewport.SetContent(renderDiagram(d))
		m.statusBar.SetActive(d.Name, d.Rev)
		m.state = StateViewport
		return
	}
	if w, ok := m.selectedWalkthrough(); ok {
		m.viewport.SetContent(renderWalkthrough(w, m.mdRenderer))
		m.statusBar.SetActive(w.Title, w.Rev)
		m.state = StateViewport
	}
}

// renderDiagram lays out and rasterizes a diagram's current AST: layout,
// then routing for flowcharts, then canvas rasterization.
func renderDiagram(d *model.Diagram) string {
	switch d.Ast.Kind {
	case model.KindSequence:
		layout := seqlayout.Layout(d.Ast.Sequence)
		return render.Sequence(d.Ast.Sequence, layout)
	case model.KindFlowchart:
		layout := flowlayout.Layout(d.Ast.Flowchart)
		routes := routing.Route(d.Ast.Flowchart, layout)
		return render.Flowchart(d.Ast.Flowchart, layout, routes)
	default:
		return ""
	}
}

// renderWalkthrough renders a walkthrough as its ordered node list, each
// node's body_md glamour-rendered.
func renderWalkthrough(w *model.Walkthrough, md *MarkdownRenderer) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(w.Title))
	b.WriteString("\n\n")
	for _, nodeID := range w.Nodes.Keys() {
		n, ok := w.Nodes.Get(nodeID)
		if !ok {
			continue
		}
		b.WriteString(headerStyle.Render("• " + n.Title))
		b.WriteString("\n")
		if n.BodyMd != nil {
			rendered, err := md.Render(*n.BodyMd)
			if err == nil {
				b.WriteString(rendered)
			} else {
				b.WriteString(*n.BodyMd + "\n")
			}
		}
	}
	for _, e := range w.Edges {
		b.WriteString(dimStyle.Render(e.FromNodeID.String() + " -" + e.Kind.String() + "-> " + e.ToNodeID.String()))
		b.WriteString("\n")
	}
	return b.String()
}
