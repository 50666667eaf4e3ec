package tui

import (
	"context"

	"github.com/Yates-Labs/sitcom/internal/playback"
	tea "github.com/charmbracelet/bubbletea"
)

// Sender posts a message to a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// Surface forwards playback calls to the Bubble Tea program as messages.
type Surface struct {
	program Sender
}

var _ playback.Surface = (*Surface)(nil)

// NewSurface creates a surface posting to program.
func NewSurface(program Sender) *Surface {
	return &Surface{program: program}
}

func (s *Surface) Show(ctx context.Context, f playback.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.program.Send(frameMsg{frame: f})
	return nil
}

func (s *Surface) Clear(ctx context.Context, f playback.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.program.Send(clearMsg{index: f.Index})
	return nil
}

func (s *Surface) Close(err error) error {
	s.program.Send(closeMsg{err: err})
	return nil
}

// Observe passes transitions to the status footer. Use it with
// playback.WithObserver.
func (s *Surface) Observe(e playback.Event) {
	s.program.Send(stateMsg{event: e})
}
