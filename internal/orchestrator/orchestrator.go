// Package orchestrator wires the loading pipeline: the cast description
// and topic go to the script source, the reply is parsed and normalised,
// and the resulting script is archived for replay.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/Yates-Labs/sitcom/internal/archive"
	"github.com/Yates-Labs/sitcom/internal/cast"
	"github.com/Yates-Labs/sitcom/internal/narrative"
	"github.com/Yates-Labs/sitcom/internal/playback"
	"github.com/Yates-Labs/sitcom/internal/script"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var (
	ErrInvalidTakes = errors.New("number of takes must be positive")
)

// Options configures a Pipeline.
type Options struct {
	MissingFields script.MissingFieldPolicy

	// Archive stores every generated script. Nil disables archiving.
	Archive *archive.Store

	// TakesInterval spaces the model calls of GenerateTakes. Zero means
	// no limit.
	TakesInterval time.Duration
}

// Pipeline turns a topic into a script.
type Pipeline struct {
	roster    *cast.Roster
	generator *narrative.Generator
	opts      Options
}

// NewPipeline creates a pipeline for the given cast and script source.
func NewPipeline(roster *cast.Roster, generator *narrative.Generator, opts Options) *Pipeline {
	if opts.MissingFields == "" {
		opts.MissingFields = script.MissingFieldFail
	}
	return &Pipeline{
		roster:    roster,
		generator: generator,
		opts:      opts,
	}
}

// Generate makes one model call for topic and returns the parsed run.
// Archiving failures are logged and do not fail the run.
func (p *Pipeline) Generate(ctx context.Context, topic string) (*archive.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before generation: %w", err)
	}

	raw, err := p.generator.Generate(ctx, p.roster.Describe(), topic)
	if err != nil {
		return nil, err
	}

	lines, err := script.Parse(raw)
	if err != nil {
		return nil, err
	}
	lines, err = script.Normalize(lines, p.opts.MissingFields)
	if err != nil {
		return nil, err
	}

	rec := &archive.Record{
		Script: script.New(topic, p.generator.Model(), lines),
		Raw:    raw,
	}
	slog.Info("script generated", "id", rec.Script.ID, "lines", rec.Script.Len(), "model", rec.Script.Model)

	if p.opts.Archive != nil {
		if _, err := p.opts.Archive.Save(*rec); err != nil {
			slog.Warn("failed to archive script", "id", rec.Script.ID, "error", err)
		}
	}

	return rec, nil
}

// Loader returns a playback loader that generates a script for topic.
func (p *Pipeline) Loader(topic string) playback.Loader {
	return playback.LoaderFunc(func(ctx context.Context) (*script.Script, error) {
		rec, err := p.Generate(ctx, topic)
		if err != nil {
			return nil, err
		}
		return rec.Script, nil
	})
}

// GenerateTakes generates n independent scripts for the same topic
// concurrently. Results keep take order; the first failure cancels the
// remaining takes.
func (p *Pipeline) GenerateTakes(ctx context.Context, topic string, n int) ([]*archive.Record, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTakes, n)
	}

	records := make([]*archive.Record, n)
	eg, egCtx := errgroup.WithContext(ctx)

	var limiter *rate.Limiter
	if p.opts.TakesInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(p.opts.TakesInterval), 1)
	}

	for i := range n {
		eg.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(egCtx); err != nil {
					return err
				}
			}

			rec, err := p.Generate(egCtx, topic)
			if err != nil {
				return fmt.Errorf("take %d: %w", i+1, err)
			}
			records[i] = rec
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// ReplayLoader loads a saved script without calling the model. ref is a
// script file path, or a run ID (or unique prefix) in store.
func ReplayLoader(ref string, store *archive.Store, policy script.MissingFieldPolicy) playback.Loader {
	return playback.LoaderFunc(func(ctx context.Context) (*script.Script, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s, err := openReplay(ref, store)
		if err != nil {
			return nil, err
		}

		lines, err := script.Normalize(s.Lines, policy)
		if err != nil {
			return nil, err
		}
		s.Lines = lines

		slog.Info("script loaded", "ref", ref, "lines", s.Len())
		return s, nil
	})
}

func openReplay(ref string, store *archive.Store) (*script.Script, error) {
	if _, err := os.Stat(ref); err == nil {
		return script.ReadFile(ref)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if store == nil {
		return nil, fmt.Errorf("%w: %s", archive.ErrNotFound, ref)
	}
	rec, err := store.Load(ref)
	if err != nil {
		return nil, err
	}
	return rec.Script, nil
}
