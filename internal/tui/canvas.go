package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// segment is styled text anchored at a cell.
type segment struct {
	x    int
	text string
}

// canvas is a fixed grid of rows. Segments are placed left to right on
// each row; a segment that starts inside the previous one is dropped and
// anything past the right edge is cut.
type canvas struct {
	width  int
	height int
	rows   [][]segment
}

func newCanvas(width, height int) *canvas {
	return &canvas{
		width:  width,
		height: height,
		rows:   make([][]segment, height),
	}
}

// put places text at (x, y). Out of range rows are ignored.
func (c *canvas) put(x, y int, text string) {
	if y < 0 || y >= c.height || x >= c.width {
		return
	}
	c.rows[y] = append(c.rows[y], segment{x: max(0, x), text: text})
}

// block places a multi-line string with its top-left corner at (x, y).
func (c *canvas) block(x, y int, text string) {
	for i, line := range strings.Split(text, "\n") {
		c.put(x, y+i, line)
	}
}

func (c *canvas) String() string {
	out := make([]string, c.height)

	for y, segs := range c.rows {
		sort.SliceStable(segs, func(i, j int) bool { return segs[i].x < segs[j].x })

		var b strings.Builder
		col := 0
		for _, s := range segs {
			if s.x < col {
				continue
			}
			b.WriteString(strings.Repeat(" ", s.x-col))
			col = s.x

			text := truncate.String(s.text, uint(c.width-col))
			b.WriteString(text)
			col += lipgloss.Width(text)
		}
		if col < c.width {
			b.WriteString(strings.Repeat(" ", c.width-col))
		}
		out[y] = b.String()
	}

	return strings.Join(out, "\n")
}
