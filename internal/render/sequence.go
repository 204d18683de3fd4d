package render

import (
	"github.com/bnomei/nereid/internal/model"
	"github.com/bnomei/nereid/internal/seqlayout"
)

const (
	headerRows  = 1
	rowHeight   = 2 // one row for the arrow line, one spare for labels/loops
	leftMargin  = 1
)

// Sequence rasterizes ast using layout into Unicode box-drawing text:
// participant headers, lifelines, and message arrows selected by kind
// (solid for Sync, dashed for Return, half-open for Async), per spec.md §4.6.
func Sequence(ast *model.SequenceAst, layout *seqlayout.SequenceLayout) string {
	colX := make([]int, len(layout.ColOrder))
	x := leftMargin
	for i, w := range layout.ColWidths {
		colX[i] = x + w/2
		x += w
	}
	totalCols := x + leftMargin
	totalRows := headerRows + int(layout.Rows)*rowHeight + 2

	c := newCanvas(totalCols, totalRows)

	for i, pID := range layout.ColOrder {
		p, _ := ast.Participants.Get(pID)
		cx := colX[i]
		name := p.MermaidName
		c.writeText(cx-len([]rune(name))/2, 0, name)
		for y := headerRows; y < totalRows; y++ {
			c.set(cx, y, '│')
		}
	}

	for _, m := range layout.Messages {
		y := headerRows + int(m.Row)*rowHeight + 1
		if m.SelfLoop {
			drawSelfLoop(c, colX[m.FromCol], y, m.Text)
			continue
		}
		drawArrow(c, colX[m.FromCol], colX[m.ToCol], y, m.Kind, m.Text)
	}

	return c.String()
}

func drawArrow(c *canvas, fromX, toX, y int, kind model.SequenceMessageKind, text string) {
	left, right := fromX, toX
	reversed := false
	if left > right {
		left, right = right, left
		reversed = true
	}
	glyph := arrowGlyph(kind)
	shaft := '─'
	if kind == model.Return {
		shaft = '╌'
	}
	for x := left + 1; x < right; x++ {
		c.set(x, y, shaft)
	}
	if reversed {
		c.set(left, y, glyph.head)
	} else {
		c.set(right, y, glyph.head)
	}
	mid := (left + right) / 2
	c.writeText(mid-len([]rune(text))/2, y-1, text)
}

func drawSelfLoop(c *canvas, x, y int, text string) {
	c.set(x+1, y, '┐')
	c.set(x+1, y+1, '┘')
	c.set(x, y+1, '▸')
	c.writeText(x+2, y, text)
}

type arrowGlyphs struct {
	head rune
}

func arrowGlyph(kind model.SequenceMessageKind) arrowGlyphs {
	switch kind {
	case model.Return:
		return arrowGlyphs{head: '◁'}
	case model.Async:
		return arrowGlyphs{head: '>'}
	default:
		return arrowGlyphs{head: '►'}
	}
}
