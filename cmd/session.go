package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Yates-Labs/sitcom/internal/archive"
	"github.com/Yates-Labs/sitcom/internal/cast"
	"github.com/Yates-Labs/sitcom/internal/config"
	"github.com/Yates-Labs/sitcom/internal/narrative"
	"github.com/Yates-Labs/sitcom/internal/orchestrator"
)

// session holds what every command builds from the config.
type session struct {
	roster *cast.Roster
	cast   *cast.Cast
	store  *archive.Store
}

// openSession loads the roster and its portraits.
func openSession(ctx context.Context, c *config.Config) (*session, error) {
	roster, err := cast.LoadRoster(c.Roster)
	if err != nil {
		return nil, err
	}

	cs, err := cast.New(ctx, roster, c.CastOptions())
	if err != nil {
		return nil, err
	}

	slog.Debug("session opened", "roster", c.Roster, "characters", len(roster.Characters))
	return &session{
		roster: roster,
		cast:   cs,
		store:  archive.Open(c.ArchiveDir),
	}, nil
}

// pipeline builds the script source. It reads the credential unless the
// provider is the offline mock.
func (s *session) pipeline(c *config.Config, keyFile string, archiveRuns bool) (*orchestrator.Pipeline, error) {
	var apiKey string
	if !strings.EqualFold(c.Provider, narrative.ProviderMock) {
		key, err := config.ReadCredential(keyFile, config.CredentialEnv(c.Provider))
		if err != nil {
			return nil, err
		}
		apiKey = key
	}

	llmConfig := c.LLM(apiKey)
	llm, err := narrative.NewLLM(llmConfig, s.roster.Names())
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM: %w", err)
	}

	opts := orchestrator.Options{
		MissingFields: c.Policy.MissingFields,
		TakesInterval: c.TakesInterval,
	}
	if archiveRuns {
		opts.Archive = s.store
	}
	return orchestrator.NewPipeline(s.roster, narrative.NewGenerator(llm, llmConfig), opts), nil
}
