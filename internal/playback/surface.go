package playback

import (
	"context"
	"time"

	"github.com/Yates-Labs/sitcom/internal/layout"
	"github.com/Yates-Labs/sitcom/internal/portrait"
)

// Frame is everything drawn for one script line.
type Frame struct {
	Index   int
	Total   int
	Speaker string
	Speech  string

	Portrait *portrait.Portrait

	// Rect is the subtitle rectangle and Lines the speech laid out in it
	Rect  layout.Rect
	Lines []layout.Line

	// Leftover is speech that did not fit the rectangle
	Leftover string
}

// Surface is where frames are drawn. The controller is its only caller
// and calls it from a single goroutine.
type Surface interface {
	// Show draws the portrait and subtitle lines of f.
	Show(ctx context.Context, f Frame) error

	// Clear erases what Show drew for f.
	Clear(ctx context.Context, f Frame) error

	// Close signals the end of playback. err is nil after the last
	// line, otherwise the reason playback stopped.
	Close(err error) error
}

// Waiter blocks for d or until ctx is done.
type Waiter func(ctx context.Context, d time.Duration) error

// Sleep waits on a timer and returns early with ctx.Err() on cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
