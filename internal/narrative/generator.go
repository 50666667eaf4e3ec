package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var (
	ErrGenerationFailed = errors.New("script generation failed")
)

// Generator is the script source: it invokes an LLM with the assembled
// prompt and returns the raw reply, which is expected to hold JSON.
type Generator struct {
	llm    LLM
	config LLMConfig
}

// NewGenerator creates a script generator with the given LLM implementation.
func NewGenerator(llm LLM, config LLMConfig) *Generator {
	return &Generator{
		llm:    llm,
		config: config,
	}
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if strings.EqualFold(g.config.Provider, ProviderMock) {
		return ProviderMock
	}
	return g.config.Model
}

// Generate makes one model call. It does not retry: a failed or empty
// reply is returned to the caller.
func (g *Generator) Generate(ctx context.Context, characterDesc, topic string) (string, error) {
	if g.llm == nil {
		return "", fmt.Errorf("%w: LLM is required", ErrGenerationFailed)
	}

	prompt, err := AssemblePrompt(characterDesc, topic)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	start := time.Now()
	text, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: LLM invocation failed: %w", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, ErrEmptyResponse)
	}

	slog.Debug("script reply received", "model", g.Model(), "bytes", len(text), "elapsed", time.Since(start))
	return text, nil
}
