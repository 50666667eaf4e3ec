// Package tui is the full-screen terminal surface for playback. The model
// only changes inside Update on the Bubble Tea goroutine; the playback
// worker reaches it through messages posted by Surface.
package tui

import (
	"fmt"

	"github.com/Yates-Labs/sitcom/internal/layout"
	"github.com/Yates-Labs/sitcom/internal/playback"
	"github.com/Yates-Labs/sitcom/internal/portrait"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F780FF")).
			Bold(true)

	counterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	speechStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E9E9F4"))

	markerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C")).
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)
)

// TruncationMarker is drawn after the subtitle when speech did not fit.
const TruncationMarker = "…"

type (
	frameMsg struct{ frame playback.Frame }
	clearMsg struct{ index int }
	closeMsg struct{ err error }
	stateMsg struct{ event playback.Event }
)

// Canvas is the fixed drawing area and where the portrait goes on it.
type Canvas struct {
	Width    int
	Height   int
	Portrait layout.Rect
}

// DefaultCanvas is an 80x24 screen with the portrait in the top right half.
func DefaultCanvas() Canvas {
	return Canvas{
		Width:    80,
		Height:   24,
		Portrait: layout.Rect{Left: 40, Top: 0, Width: 40, Height: 12},
	}
}

// Model is the Bubble Tea model for playback.
type Model struct {
	canvas   Canvas
	title    string
	renderer *portrait.Renderer

	frame   *playback.Frame
	event   playback.Event
	done    bool
	err     error
	aborted bool
}

// NewModel creates an empty-screen model.
func NewModel(c Canvas, title string) Model {
	return Model{
		canvas:   c,
		title:    title,
		renderer: portrait.NewRenderer(),
		event:    playback.Event{State: playback.StateIdle, Index: -1},
	}
}

// Aborted reports whether the user quit before playback ended.
func (m Model) Aborted() bool {
	return m.aborted
}

// Err is the error playback stopped with, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.done {
			return m, tea.Quit
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.aborted = true
			return m, tea.Quit
		}

	case frameMsg:
		f := msg.frame
		m.frame = &f

	case clearMsg:
		if m.frame != nil && m.frame.Index == msg.index {
			m.frame = nil
		}

	case stateMsg:
		m.event = msg.event

	case closeMsg:
		m.done = true
		m.err = msg.err
		m.frame = nil
		if m.err != nil {
			// keep the screen up until a key is pressed
			return m, nil
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	c := newCanvas(m.canvas.Width, m.canvas.Height)

	if m.title != "" {
		c.put(1, 0, counterStyle.Render(m.title))
	}

	if f := m.frame; f != nil {
		p := m.canvas.Portrait
		c.block(p.Left, p.Top, m.renderer.Render(f.Portrait, p.Width, p.Height))

		c.put(2, 2, titleStyle.Render(f.Speaker))
		c.put(2, 3, counterStyle.Render(fmt.Sprintf("%d / %d", f.Index+1, f.Total)))

		for _, l := range f.Lines {
			c.put(l.X, l.Y, speechStyle.Render(l.Text))
		}
		if f.Leftover != "" && len(f.Lines) > 0 {
			last := f.Lines[len(f.Lines)-1]
			c.put(last.X+last.Width+1, last.Y, markerStyle.Render(TruncationMarker))
		}
	}

	c.put(1, m.canvas.Height-1, m.footer())
	return c.String()
}

func (m Model) footer() string {
	if m.err != nil {
		return errorStyle.Render("stopped: "+m.err.Error()) + footerStyle.Render(" · any key to exit")
	}

	hint := "q to quit"
	if m.event.State.Terminal() {
		hint = "any key to exit"
	}
	status := m.event.State.String()
	if m.event.State == playback.StatePlaying && m.event.Total > 0 {
		status = fmt.Sprintf("%s %d/%d", status, m.event.Index+1, m.event.Total)
	}
	return footerStyle.Render(status + " · " + hint)
}
