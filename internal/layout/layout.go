// Package layout breaks subtitle text into lines that fit a fixed rectangle.
// Widths are measured with a per-glyph width function, so the same routine
// serves terminal cells (the default) and proportional fonts.
package layout

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

var (
	ErrInvalidMetrics = errors.New("invalid layout metrics")
)

// Rect is the on-screen area reserved for text.
type Rect struct {
	Left   int `yaml:"left" toml:"left"`
	Top    int `yaml:"top" toml:"top"`
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
}

// Bottom returns the first row below the rectangle.
func (r Rect) Bottom() int {
	return r.Top + r.Height
}

// GlyphWidth measures a single glyph.
type GlyphWidth func(r rune) int

// Metrics describes the font used for layout.
type Metrics struct {
	// LineHeight is the height of one line of text
	LineHeight int

	// LineSpacing is added to LineHeight between lines. It may be negative
	// to tighten the pitch, as long as the pitch stays positive.
	LineSpacing int

	// GlyphWidth measures one rune. Nil means terminal cell width.
	GlyphWidth GlyphWidth
}

// TerminalMetrics lays text out in terminal cells, one row per line.
func TerminalMetrics() Metrics {
	return Metrics{
		LineHeight: 1,
		GlyphWidth: CellWidth,
	}
}

// CellWidth returns the number of terminal cells the rune occupies.
func CellWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// Line is one wrapped line positioned inside the rectangle.
type Line struct {
	Text  string
	X     int
	Y     int
	Width int

	// HardBreak is set when the line was cut inside a word because the
	// word alone does not fit the rectangle width.
	HardBreak bool
}

// Result holds the lines that fit and whatever text did not.
type Result struct {
	Lines    []Line
	Leftover string
}

// Truncated reports whether some text did not fit vertically.
func (r Result) Truncated() bool {
	return r.Leftover != ""
}

// Texts returns the text of every line in order.
func (r Result) Texts() []string {
	texts := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		texts[i] = l.Text
	}
	return texts
}

// Wrap lays text out inside rect. Lines are grown glyph by glyph until the
// next glyph would exceed rect.Width, then backed off to the last blank so
// words stay whole. A word wider than the rectangle is broken at the cut
// point and the line is flagged HardBreak. Lines are emitted from rect.Top
// while a full line still fits above rect.Bottom(); the rest is returned
// as Leftover. Runs of whitespace are collapsed to a single space first.
func Wrap(text string, rect Rect, m Metrics) (Result, error) {
	if rect.Width <= 0 {
		return Result{}, fmt.Errorf("%w: width must be positive, got %d", ErrInvalidMetrics, rect.Width)
	}
	if m.LineHeight <= 0 {
		return Result{}, fmt.Errorf("%w: line height must be positive, got %d", ErrInvalidMetrics, m.LineHeight)
	}
	pitch := m.LineHeight + m.LineSpacing
	if pitch <= 0 {
		return Result{}, fmt.Errorf("%w: line pitch must be positive, got %d", ErrInvalidMetrics, pitch)
	}

	glyph := m.GlyphWidth
	if glyph == nil {
		glyph = CellWidth
	}

	var lines []Line
	remaining := []rune(strings.Join(strings.Fields(text), " "))
	y := rect.Top

	for {
		if len(remaining) == 0 || y+m.LineHeight > rect.Bottom() {
			break
		}

		cut := fit(remaining, rect.Width, glyph)
		end, consumed, hard := cut, cut, false

		if cut < len(remaining) {
			switch {
			case unicode.IsSpace(remaining[cut]):
				// the glyph that overflowed is itself the break
				consumed = cut + 1
			default:
				if sp := lastSpace(remaining[:cut]); sp > 0 {
					end, consumed = sp, sp+1
				} else {
					hard = true
					if cut == 0 {
						// a single glyph wider than the rectangle
						end, consumed = 1, 1
						if consumed < len(remaining) && unicode.IsSpace(remaining[consumed]) {
							consumed++
						}
					}
				}
			}
		}

		line := remaining[:end]
		lines = append(lines, Line{
			Text:      string(line),
			X:         rect.Left,
			Y:         y,
			Width:     measure(line, glyph),
			HardBreak: hard,
		})

		remaining = remaining[consumed:]
		y += pitch
	}

	return Result{Lines: lines, Leftover: string(remaining)}, nil
}

// fit returns how many leading runes fit within maxWidth.
func fit(runes []rune, maxWidth int, glyph GlyphWidth) int {
	width := 0
	for i, r := range runes {
		width += glyph(r)
		if width > maxWidth {
			return i
		}
	}
	return len(runes)
}

func measure(runes []rune, glyph GlyphWidth) int {
	width := 0
	for _, r := range runes {
		width += glyph(r)
	}
	return width
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}
