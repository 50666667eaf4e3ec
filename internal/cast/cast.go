package cast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Yates-Labs/sitcom/internal/portrait"
	"github.com/Yates-Labs/sitcom/internal/script"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnresolvedSpeaker = errors.New("unresolved speaker")
)

// SpeakerPolicy decides what happens to lines spoken by someone who is
// not on the roster.
type SpeakerPolicy string

const (
	// SpeakerFail rejects the script at load time.
	SpeakerFail SpeakerPolicy = "fail"

	// SpeakerDefault shows the fallback portrait.
	SpeakerDefault SpeakerPolicy = "default"

	// SpeakerSkip drops the line.
	SpeakerSkip SpeakerPolicy = "skip"
)

// Valid reports whether p is a known policy.
func (p SpeakerPolicy) Valid() bool {
	switch p {
	case SpeakerFail, SpeakerDefault, SpeakerSkip:
		return true
	}
	return false
}

// UnresolvedSpeakerError reports a script line whose speaker has no portrait.
type UnresolvedSpeakerError struct {
	Speaker string
	Index   int
	Known   []string
}

func (e *UnresolvedSpeakerError) Error() string {
	return fmt.Sprintf("%s %q at line %d (known: %s)",
		ErrUnresolvedSpeaker, e.Speaker, e.Index, strings.Join(e.Known, ", "))
}

func (e *UnresolvedSpeakerError) Is(target error) bool {
	return target == ErrUnresolvedSpeaker
}

// Cue is a script line bound to the portrait shown while it plays.
type Cue struct {
	// Index is the position of the line in the original script
	Index    int
	Line     script.Line
	Portrait *portrait.Portrait
}

// Cast maps speaker names to portraits.
type Cast struct {
	roster    *Roster
	portraits map[string]*portrait.Portrait
	fallback  *portrait.Portrait
	policy    SpeakerPolicy
}

// Options configures New.
type Options struct {
	Policy SpeakerPolicy

	// DefaultPortrait is an image path used with SpeakerDefault. Empty
	// means a placeholder card.
	DefaultPortrait string
}

// New loads every portrait on the roster concurrently. Characters without
// a portrait file get a placeholder.
func New(ctx context.Context, roster *Roster, opts Options) (*Cast, error) {
	if roster == nil {
		return nil, fmt.Errorf("%w: roster is required", ErrRoster)
	}
	policy := opts.Policy
	if policy == "" {
		policy = SpeakerFail
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("unknown speaker policy %q", policy)
	}

	loaded := make([]*portrait.Portrait, len(roster.Characters))
	eg, egCtx := errgroup.WithContext(ctx)

	for i, c := range roster.Characters {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			path := roster.PortraitPath(c)
			if path == "" {
				loaded[i] = portrait.Placeholder(c.Name)
				return nil
			}
			p, err := portrait.Load(c.Name, path)
			if err != nil {
				return err
			}
			loaded[i] = p
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	c := &Cast{
		roster:    roster,
		portraits: make(map[string]*portrait.Portrait, len(loaded)),
		fallback:  portrait.Placeholder("?"),
		policy:    policy,
	}
	for i, ch := range roster.Characters {
		c.portraits[normalizeName(ch.Name)] = loaded[i]
	}

	if opts.DefaultPortrait != "" {
		p, err := portrait.Load("default", opts.DefaultPortrait)
		if err != nil {
			return nil, err
		}
		c.fallback = p
	}

	slog.Debug("cast loaded", "characters", len(loaded), "policy", policy)
	return c, nil
}

// Resolve returns the portrait for speaker.
func (c *Cast) Resolve(speaker string) (*portrait.Portrait, bool) {
	p, ok := c.portraits[normalizeName(speaker)]
	return p, ok
}

// Bind resolves every line of s before playback starts. Under SpeakerFail
// the first unknown speaker yields an *UnresolvedSpeakerError.
func (c *Cast) Bind(s *script.Script) ([]Cue, error) {
	cues := make([]Cue, 0, len(s.Lines))

	for i, line := range s.Lines {
		p, ok := c.Resolve(line.Speaker)
		if !ok {
			switch c.policy {
			case SpeakerSkip:
				slog.Warn("skipping line from unknown speaker", "index", i, "speaker", line.Speaker)
				continue
			case SpeakerDefault:
				slog.Warn("unknown speaker, using default portrait", "index", i, "speaker", line.Speaker)
				p = c.fallback
			default:
				return nil, &UnresolvedSpeakerError{
					Speaker: line.Speaker,
					Index:   i,
					Known:   c.roster.Names(),
				}
			}
		}

		cues = append(cues, Cue{Index: i, Line: line, Portrait: p})
	}

	return cues, nil
}
