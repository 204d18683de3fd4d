package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

// pickerKind discriminates the two kinds of object a pickerItem names.
type pickerKind int

const (
	pickerKindDiagram pickerKind = iota
	pickerKindWalkthrough
)

// pickerItem is one row of the diagram/walkthrough list, per SPEC_FULL.md
// §D's "diagram/walkthrough picker" screen. It implements list.DefaultItem
// so it can be rendered by list.NewDefaultDelegate() without a custom
// delegate.
type pickerItem struct {
	kind          pickerKind
	diagramID     ids.DiagramId
	walkthroughID ids.WalkthroughId
	title         string
	desc          string
}

func (i pickerItem) Title() string       { return i.title }
func (i pickerItem) Description() string { return i.desc }
func (i pickerItem) FilterValue() string { return i.title }

// buildPickerItems lists every diagram and walkthrough in session, in their
// stored insertion order, per spec.md §3's ordered-map requirement.
func buildPickerItems(session *model.Session) []list.Item {
	var items []list.Item
	for _, diagramID := range session.Diagrams.Keys() {
		d, ok := session.Diagrams.Get(diagramID)
		if !ok {
			continue
		}
		items = append(items, pickerItem{
			kind:      pickerKindDiagram,
			diagramID: diagramID,
			title:     d.Name,
			desc:      fmt.Sprintf("%s diagram · rev %d", d.Ast.Kind.String(), d.Rev),
		})
	}
	for _, walkthroughID := range session.Walkthroughs.Keys() {
		w, ok := session.Walkthroughs.Get(walkthroughID)
		if !ok {
			continue
		}
		items = append(items, pickerItem{
			kind:          pickerKindWalkthrough,
			walkthroughID: walkthroughID,
			title:         w.Title,
			desc:          fmt.Sprintf("walkthrough · %d steps · rev %d", w.Nodes.Len(), w.Rev),
		})
	}
	return items
}
