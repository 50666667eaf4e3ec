package playback

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Yates-Labs/sitcom/internal/cast"
	"github.com/Yates-Labs/sitcom/internal/layout"
	"github.com/Yates-Labs/sitcom/internal/script"
)

// recordingSurface keeps every call in order.
type recordingSurface struct {
	mu     sync.Mutex
	calls  []string
	frames []Frame
	closed error
	done   bool
}

func (r *recordingSurface) Show(ctx context.Context, f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "show")
	r.frames = append(r.frames, f)
	return nil
}

func (r *recordingSurface) Clear(ctx context.Context, f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "clear")
	return nil
}

func (r *recordingSurface) Close(err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "close")
	r.closed = err
	r.done = true
	return nil
}

func noWait(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func threeLineScript() *script.Script {
	return script.New("budget cuts", "mock", []script.Line{
		{Speaker: "Dr. Babcock", Speech: "The department is buying Macs."},
		{Speaker: "Dr. Moscola", Speech: "Finally some good news."},
		{Speaker: "Prof. Zeller", Speech: "I will keep my typewriter."},
	})
}

func testCast(t *testing.T) *cast.Cast {
	t.Helper()
	r, err := cast.NewRoster([]cast.Character{
		{Name: "Dr. Babcock"},
		{Name: "Prof. Hake"},
		{Name: "Dr. Moscola"},
		{Name: "Prof. Zeller"},
	})
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	c, err := cast.New(context.Background(), r, cast.Options{})
	if err != nil {
		t.Fatalf("cast: %v", err)
	}
	return c
}

func staticLoader(s *script.Script) Loader {
	return LoaderFunc(func(ctx context.Context) (*script.Script, error) {
		return s, nil
	})
}

func testConfig() Config {
	return Config{
		SlideDuration: time.Millisecond,
		Subtitle:      layout.Rect{Left: 2, Top: 16, Width: 20, Height: 4},
		Metrics:       layout.TerminalMetrics(),
	}
}

func TestController_VisitsStatesInOrder(t *testing.T) {
	var events []string
	ctrl, err := New(staticLoader(threeLineScript()), testCast(t), testConfig(),
		WithWaiter(noWait),
		WithObserver(func(e Event) { events = append(events, e.String()) }),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctrl.State() != StateIdle {
		t.Fatalf("expected Idle before Run, got %s", ctrl.State())
	}

	surface := &recordingSurface{}
	if err := ctrl.Run(context.Background(), surface); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"Loading", "Ready",
		"Playing(0)", "Cleared(0)",
		"Playing(1)", "Cleared(1)",
		"Playing(2)", "Cleared(2)",
		"Finished",
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("unexpected transitions\nwant: %v\ngot:  %v", want, events)
	}

	wantCalls := []string{"show", "clear", "show", "clear", "show", "clear", "close"}
	if !reflect.DeepEqual(surface.calls, wantCalls) {
		t.Errorf("unexpected surface calls: %v", surface.calls)
	}
	if surface.closed != nil {
		t.Errorf("expected clean close, got %v", surface.closed)
	}
	if ctrl.State() != StateFinished {
		t.Errorf("expected Finished, got %s", ctrl.State())
	}
	if ctrl.Script() == nil || ctrl.Script().Len() != 3 {
		t.Error("expected loaded script to be kept")
	}
}

func TestController_FramesCarryLayout(t *testing.T) {
	ctrl, err := New(staticLoader(threeLineScript()), testCast(t), testConfig(), WithWaiter(noWait))
	if err != nil {
		t.Fatal(err)
	}

	surface := &recordingSurface{}
	if err := ctrl.Run(context.Background(), surface); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := surface.frames[0]
	if f.Speaker != "Dr. Babcock" || f.Index != 0 || f.Total != 3 {
		t.Errorf("unexpected frame header: %+v", f)
	}
	if f.Portrait == nil || f.Portrait.Name != "Dr. Babcock" {
		t.Errorf("expected Dr. Babcock's portrait, got %+v", f.Portrait)
	}

	var texts []string
	for _, l := range f.Lines {
		texts = append(texts, l.Text)
		if l.X != 2 {
			t.Errorf("line not placed at rect left: %+v", l)
		}
	}
	if !reflect.DeepEqual(texts, []string{"The department is", "buying Macs."}) {
		t.Errorf("unexpected lines: %q", texts)
	}
	if f.Lines[0].Y != 16 || f.Lines[1].Y != 17 {
		t.Errorf("unexpected rows: %+v", f.Lines)
	}
}

func TestController_ReportsLeftover(t *testing.T) {
	s := script.New("", "", []script.Line{
		{Speaker: "Prof. Hake", Speech: strings.Repeat("spring ", 40)},
	})
	ctrl, err := New(staticLoader(s), testCast(t), testConfig(), WithWaiter(noWait))
	if err != nil {
		t.Fatal(err)
	}

	surface := &recordingSurface{}
	if err := ctrl.Run(context.Background(), surface); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(surface.frames[0].Lines) != 4 {
		t.Errorf("expected the rectangle to be filled, got %d lines", len(surface.frames[0].Lines))
	}
	if surface.frames[0].Leftover == "" {
		t.Error("expected leftover text")
	}
}

func TestController_LoadFailure(t *testing.T) {
	loadErr := errors.New("network unreachable")
	loader := LoaderFunc(func(ctx context.Context) (*script.Script, error) {
		return nil, loadErr
	})

	var last Event
	ctrl, err := New(loader, testCast(t), testConfig(), WithWaiter(noWait),
		WithObserver(func(e Event) { last = e }))
	if err != nil {
		t.Fatal(err)
	}

	surface := &recordingSurface{}
	err = ctrl.Run(context.Background(), surface)
	if !errors.Is(err, loadErr) {
		t.Fatalf("expected load error, got %v", err)
	}

	if last.State != StateFailed || !errors.Is(last.Err, loadErr) {
		t.Errorf("expected Failed event with error, got %+v", last)
	}
	if !reflect.DeepEqual(surface.calls, []string{"close"}) {
		t.Errorf("expected only close, got %v", surface.calls)
	}
	if !errors.Is(surface.closed, loadErr) {
		t.Errorf("expected surface closed with error, got %v", surface.closed)
	}
}

func TestController_UnresolvedSpeakerFailsBeforeDrawing(t *testing.T) {
	s := script.New("", "", []script.Line{
		{Speaker: "Dr. Babcock", Speech: "hi"},
		{Speaker: "Dr. Babcock", Speech: "hello"},
		{Speaker: "Dr. Babcock", Speech: "anyone?"},
		{Speaker: "Prof. Hake", Speech: "yes"},
		{Speaker: "The Dean", Speech: "meeting now"},
	})

	ctrl, err := New(staticLoader(s), testCast(t), testConfig(), WithWaiter(noWait))
	if err != nil {
		t.Fatal(err)
	}

	surface := &recordingSurface{}
	err = ctrl.Run(context.Background(), surface)
	if !errors.Is(err, cast.ErrUnresolvedSpeaker) {
		t.Fatalf("expected ErrUnresolvedSpeaker, got %v", err)
	}
	if len(surface.frames) != 0 {
		t.Errorf("nothing should be drawn, got %d frames", len(surface.frames))
	}
	if ctrl.State() != StateFailed {
		t.Errorf("expected Failed, got %s", ctrl.State())
	}
}

func TestController_CancelInterruptsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := testConfig()
	config.SlideDuration = time.Hour

	ctrl, err := New(staticLoader(threeLineScript()), testCast(t), config,
		WithObserver(func(e Event) {
			if e.State == StatePlaying {
				cancel()
			}
		}))
	if err != nil {
		t.Fatal(err)
	}

	surface := &recordingSurface{}
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx, surface) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("wait was not interrupted by cancellation")
	}

	if ctrl.State() != StateCancelled {
		t.Errorf("expected Cancelled, got %s", ctrl.State())
	}
	if !surface.done {
		t.Error("surface should be closed on cancellation")
	}
}

func TestController_RunOnce(t *testing.T) {
	ctrl, err := New(staticLoader(threeLineScript()), testCast(t), testConfig(), WithWaiter(noWait))
	if err != nil {
		t.Fatal(err)
	}

	if err := ctrl.Run(context.Background(), &recordingSurface{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ctrl.Run(context.Background(), &recordingSurface{}); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(nil, testCast(t), testConfig()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for nil loader, got %v", err)
	}

	config := testConfig()
	config.Subtitle = layout.Rect{}
	if _, err := New(staticLoader(threeLineScript()), testCast(t), config); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for empty rect, got %v", err)
	}
}

func TestSleep(t *testing.T) {
	start := time.Now()
	if err := Sleep(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("returned after %v", elapsed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTextSurface(t *testing.T) {
	var buf bytes.Buffer
	surface := NewTextSurface(&buf, 0, 0)

	ctrl, err := New(staticLoader(threeLineScript()), testCast(t), testConfig(), WithWaiter(noWait))
	if err != nil {
		t.Fatal(err)
	}
	if err := ctrl.Run(context.Background(), surface); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"[1/3]", "Dr. Babcock", "buying Macs.", "[3/3]", "typewriter.", "fin"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTextSurface_Portrait(t *testing.T) {
	var buf bytes.Buffer
	surface := NewTextSurface(&buf, 12, 5)

	ctrl, err := New(staticLoader(threeLineScript()), testCast(t), testConfig(), WithWaiter(noWait))
	if err != nil {
		t.Fatal(err)
	}
	if err := ctrl.Run(context.Background(), surface); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// placeholder cards are drawn with a rounded border
	out := buf.String()
	if strings.Count(out, "╭") != 3 {
		t.Errorf("expected a portrait per line:\n%s", out)
	}
}
