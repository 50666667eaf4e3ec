package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Yates-Labs/sitcom/internal/cast"
	"github.com/Yates-Labs/sitcom/internal/layout"
	"github.com/Yates-Labs/sitcom/internal/script"
)

var (
	ErrAlreadyStarted = errors.New("playback already started")
	ErrInvalidConfig  = errors.New("invalid playback configuration")
)

// DefaultSlideDuration is how long each line stays on screen.
const DefaultSlideDuration = 3 * time.Second

// Loader produces the script to play.
type Loader interface {
	Load(ctx context.Context) (*script.Script, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (*script.Script, error)

func (f LoaderFunc) Load(ctx context.Context) (*script.Script, error) {
	return f(ctx)
}

// Binder resolves the speaker of every line to a portrait.
type Binder interface {
	Bind(s *script.Script) ([]cast.Cue, error)
}

// Config holds the fixed playback geometry and timing.
type Config struct {
	SlideDuration time.Duration
	Subtitle      layout.Rect
	Metrics       layout.Metrics
}

// Controller runs the playback state machine. It is used once.
type Controller struct {
	loader  Loader
	binder  Binder
	config  Config
	wait    Waiter
	observe func(Event)

	mu     sync.Mutex
	state  State
	script *script.Script
}

// Option configures a Controller.
type Option func(*Controller)

// WithWaiter replaces the timer used between lines.
func WithWaiter(w Waiter) Option {
	return func(c *Controller) {
		c.wait = w
	}
}

// WithObserver registers a callback for every transition. It runs on the
// playback goroutine.
func WithObserver(fn func(Event)) Option {
	return func(c *Controller) {
		c.observe = fn
	}
}

// New creates a controller in the Idle state.
func New(loader Loader, binder Binder, config Config, opts ...Option) (*Controller, error) {
	if loader == nil || binder == nil {
		return nil, fmt.Errorf("%w: loader and binder are required", ErrInvalidConfig)
	}
	if config.SlideDuration <= 0 {
		config.SlideDuration = DefaultSlideDuration
	}
	if config.Metrics.LineHeight == 0 {
		config.Metrics = layout.TerminalMetrics()
	}
	if config.Subtitle.Width <= 0 || config.Subtitle.Height <= 0 {
		return nil, fmt.Errorf("%w: subtitle rectangle %+v is empty", ErrInvalidConfig, config.Subtitle)
	}

	c := &Controller{
		loader: loader,
		binder: binder,
		config: config,
		wait:   Sleep,
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Script returns the loaded script, or nil before Ready.
func (c *Controller) Script() *script.Script {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.script
}

// Run loads the script and plays it on surface, one line at a time, in
// order. It returns nil once Finished, ctx.Err() if cancelled, and the
// loading or drawing error otherwise.
func (c *Controller) Run(ctx context.Context, surface Surface) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.state = StateLoading
	c.mu.Unlock()

	c.transition(Event{State: StateLoading, Index: -1})

	s, err := c.loader.Load(ctx)
	if err != nil {
		return c.stop(ctx, surface, err)
	}
	cues, err := c.binder.Bind(s)
	if err != nil {
		return c.stop(ctx, surface, err)
	}

	c.mu.Lock()
	c.script = s
	c.mu.Unlock()

	total := len(cues)
	c.transition(Event{State: StateReady, Index: -1, Total: total})

	for i, cue := range cues {
		frame, err := c.layout(i, total, cue)
		if err != nil {
			return c.stop(ctx, surface, err)
		}

		c.transition(Event{State: StatePlaying, Index: i, Total: total})
		if err := surface.Show(ctx, frame); err != nil {
			return c.stop(ctx, surface, err)
		}
		if frame.Leftover != "" {
			slog.Warn("subtitle truncated", "index", i, "speaker", frame.Speaker, "leftover", len([]rune(frame.Leftover)))
		}

		if err := c.wait(ctx, c.config.SlideDuration); err != nil {
			return c.stop(ctx, surface, err)
		}

		if err := surface.Clear(ctx, frame); err != nil {
			return c.stop(ctx, surface, err)
		}
		c.transition(Event{State: StateCleared, Index: i, Total: total})
	}

	c.transition(Event{State: StateFinished, Index: -1, Total: total})
	return surface.Close(nil)
}

func (c *Controller) layout(i, total int, cue cast.Cue) (Frame, error) {
	res, err := layout.Wrap(cue.Line.Speech, c.config.Subtitle, c.config.Metrics)
	if err != nil {
		return Frame{}, err
	}

	return Frame{
		Index:    i,
		Total:    total,
		Speaker:  cue.Line.Speaker,
		Speech:   cue.Line.Speech,
		Portrait: cue.Portrait,
		Rect:     c.config.Subtitle,
		Lines:    res.Lines,
		Leftover: res.Leftover,
	}, nil
}

// stop ends playback in Cancelled when ctx is done and Failed otherwise.
func (c *Controller) stop(ctx context.Context, surface Surface, err error) error {
	state := StateFailed
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		state = StateCancelled
	}

	c.transition(Event{State: state, Index: -1, Err: err})
	if cerr := surface.Close(err); cerr != nil {
		slog.Debug("surface close failed", "error", cerr)
	}
	return err
}

func (c *Controller) transition(e Event) {
	c.mu.Lock()
	c.state = e.State
	c.mu.Unlock()

	slog.Debug("playback", "state", e.String())
	if c.observe != nil {
		c.observe(e)
	}
}
