package playback

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Yates-Labs/sitcom/internal/portrait"
	"github.com/charmbracelet/lipgloss"
)

var (
	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F780FF")).
			Bold(true)

	counterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	speechStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E9E9F4"))

	truncatedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)
)

// TextSurface prints frames to a writer one after another. It is used for
// headless runs where no terminal UI is available.
type TextSurface struct {
	w        io.Writer
	renderer *portrait.Renderer

	portraitWidth  int
	portraitHeight int
}

// NewTextSurface creates a surface writing to w. Portraits are drawn in a
// portraitWidth x portraitHeight cell box; a zero size leaves them out.
func NewTextSurface(w io.Writer, portraitWidth, portraitHeight int) *TextSurface {
	return &TextSurface{
		w:              w,
		renderer:       portrait.NewRenderer(),
		portraitWidth:  portraitWidth,
		portraitHeight: portraitHeight,
	}
}

// Show prints the speaker, portrait and subtitle lines.
func (t *TextSurface) Show(ctx context.Context, f Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(counterStyle.Render(fmt.Sprintf("[%d/%d] ", f.Index+1, f.Total)))
	b.WriteString(speakerStyle.Render(f.Speaker))
	b.WriteString("\n")

	if t.portraitWidth > 0 && t.portraitHeight > 0 {
		b.WriteString(t.renderer.Render(f.Portrait, t.portraitWidth, t.portraitHeight))
		b.WriteString("\n")
	}

	for _, l := range f.Lines {
		b.WriteString(strings.Repeat(" ", max(0, l.X)))
		b.WriteString(speechStyle.Render(l.Text))
		b.WriteString("\n")
	}
	if f.Leftover != "" {
		b.WriteString(truncatedStyle.Render("  …"))
		b.WriteString("\n")
	}

	_, err := io.WriteString(t.w, b.String())
	return err
}

// Clear separates consecutive frames.
func (t *TextSurface) Clear(ctx context.Context, f Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := io.WriteString(t.w, "\n")
	return err
}

// Close prints the closing line.
func (t *TextSurface) Close(err error) error {
	if err != nil {
		_, werr := fmt.Fprintln(t.w, errorStyle.Render("Playback stopped:"), err)
		return werr
	}
	_, werr := fmt.Fprintln(t.w, counterStyle.Render("-- fin --"))
	return werr
}
