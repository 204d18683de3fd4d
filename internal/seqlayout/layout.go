// Package seqlayout implements the geometric layout for sequence diagrams
// described in spec.md §4.5: participant columns, message rows (with
// self-message loops), and nested alt/opt/loop/par block row ranges.
package seqlayout

import (
	"sort"
	"unicode/utf8"

	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

const colPadding = 4

// MessageLayout positions one message on the grid.
type MessageLayout struct {
	MessageID ids.ObjectId
	FromCol   uint32
	ToCol     uint32
	Row       uint32
	Kind      model.SequenceMessageKind
	Text      string
	SelfLoop  bool
}

// BlockLayout annotates the row range a nested block spans, derived from
// the rows of the messages its sections reference. Header/footer rows
// surround that range. Absent references are skipped silently; no warning is
// emitted. Complete is false only when none of the block's references (its
// own or its sub-blocks') resolve to a message row.
type BlockLayout struct {
	BlockID    string
	HeaderRow  uint32
	FooterRow  uint32
	Complete   bool
	Sections   []SectionLayout
	SubBlocks  []BlockLayout
}

// SectionLayout marks the separator row preceding a non-first section.
type SectionLayout struct {
	SectionID     string
	SeparatorRow  uint32
	HasSeparator  bool
}

// SequenceLayout is the full computed geometry of a sequence diagram.
type SequenceLayout struct {
	ParticipantCols map[ids.ObjectId]uint32
	ColOrder        []ids.ObjectId
	ColWidths       []int
	Messages        []MessageLayout
	Blocks          []BlockLayout
	Rows            uint32
	Cols            uint32
}

// Layout computes participant columns, message rows, and block row
// annotations for ast.
func Layout(ast *model.SequenceAst) *SequenceLayout {
	colOrder := ast.Participants.Keys()
	cols := make(map[ids.ObjectId]uint32, len(colOrder))
	for i, p := range colOrder {
		cols[p] = uint32(i)
	}

	sorted := append([]model.Message(nil), ast.Messages...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return model.CmpMessagesInOrder(sorted[i], sorted[j]) < 0
	})

	messageRow := make(map[string]uint32, len(sorted))
	var layouts []MessageLayout
	var row uint32
	for _, m := range sorted {
		self := m.From.String() == m.To.String()
		layouts = append(layouts, MessageLayout{
			MessageID: m.MessageID,
			FromCol:   cols[m.From],
			ToCol:     cols[m.To],
			Row:       row,
			Kind:      m.Kind,
			Text:      m.Text,
			SelfLoop:  self,
		})
		messageRow[m.MessageID.String()] = row
		if self {
			row += 2 // self-messages reserve an extra row for the loop
		} else {
			row++
		}
	}

	blocks := layoutBlocks(ast.Blocks, messageRow)
	colWidths := columnWidths(ast, colOrder, sorted)

	return &SequenceLayout{
		ParticipantCols: cols,
		ColOrder:        colOrder,
		ColWidths:       colWidths,
		Messages:        layouts,
		Blocks:          blocks,
		Rows:            row,
		Cols:            uint32(len(colOrder)),
	}
}

func layoutBlocks(blocks []model.Block, messageRow map[string]uint32) []BlockLayout {
	if blocks == nil {
		return nil
	}
	out := make([]BlockLayout, len(blocks))
	for i, b := range blocks {
		minRow, maxRow, complete := blockRowRange(b, messageRow)
		sections := make([]SectionLayout, len(b.Sections))
		for j, s := range b.Sections {
			sMin, _, sOK := sectionRowRange(s, messageRow)
			sections[j] = SectionLayout{SectionID: s.SectionID, SeparatorRow: sMin, HasSeparator: j > 0 && sOK}
		}
		out[i] = BlockLayout{
			BlockID:   b.BlockID,
			HeaderRow: minRow,
			FooterRow: maxRow,
			Complete:  complete,
			Sections:  sections,
			SubBlocks: layoutBlocks(b.Blocks, messageRow),
		}
	}
	return out
}

func sectionRowRange(s model.Section, messageRow map[string]uint32) (uint32, uint32, bool) {
	var min, max uint32
	found := false
	for _, mid := range s.MessageIDs {
		r, ok := messageRow[mid.String()]
		if !ok {
			continue // absent reference: skipped, no warning is emitted
		}
		if !found || r < min {
			min = r
		}
		if !found || r > max {
			max = r
		}
		found = true
	}
	return min, max, found
}

func blockRowRange(b model.Block, messageRow map[string]uint32) (uint32, uint32, bool) {
	var min, max uint32
	found := false
	for _, s := range b.Sections {
		sMin, sMax, ok := sectionRowRange(s, messageRow)
		if !ok {
			continue
		}
		if !found || sMin < min {
			min = sMin
		}
		if !found || sMax > max {
			max = sMax
		}
		found = true
	}
	for _, sub := range b.Blocks {
		subMin, subMax, ok := blockRowRange(sub, messageRow)
		if !ok {
			continue
		}
		if !found || subMin < min {
			min = subMin
		}
		if !found || subMax > max {
			max = subMax
		}
		found = true
	}
	if !found {
		return 0, 0, false
	}
	header := uint32(0)
	if min > 0 {
		header = min - 1
	}
	return header, max + 1, true
}

func columnWidths(ast *model.SequenceAst, colOrder []ids.ObjectId, messages []model.Message) []int {
	widest := make(map[string]int, len(colOrder))
	for _, p := range colOrder {
		participant, _ := ast.Participants.Get(p)
		widest[p.String()] = utf8.RuneCountInString(participant.MermaidName) + colPadding
	}
	for _, m := range messages {
		textWidth := utf8.RuneCountInString(m.Text) + colPadding
		if textWidth > widest[m.From.String()] {
			widest[m.From.String()] = textWidth
		}
	}
	out := make([]int, len(colOrder))
	for i, p := range colOrder {
		out[i] = widest[p.String()]
	}
	return out
}
