// Package narrative asks a language model to write the dialogue script.
// It defines a provider-agnostic LLM interface with concrete implementations
// for OpenAI and Anthropic and a deterministic mock for testing. The
// generator turns a cast description and a topic into the raw model reply.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrLLMFailed     = errors.New("LLM request failed")
	ErrEmptyResponse = errors.New("LLM returned no content")
	ErrInvalidConfig = errors.New("invalid LLM configuration")
)

// Provider names accepted by NewLLM.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Prompt is one request: a system instruction and the user message.
type Prompt struct {
	System string
	User   string
}

// LLM defines the interface for interacting with language models.
// Implementations must be stateless and thread-safe.
type LLM interface {
	// Generate produces text from a prompt using the configured model.
	// Returns the generated text or an error if generation fails.
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// LLMConfig holds common configuration options for LLM providers.
type LLMConfig struct {
	// Provider selects the implementation ("openai", "anthropic" or "mock")
	Provider string

	// Model specifies the model identifier (e.g., "gpt-4o-mini")
	Model string

	// Temperature controls randomness (0 = provider default)
	Temperature float32

	// MaxTokens limits the response length (0 = use provider default)
	MaxTokens int

	// APIKey is the authentication key for the provider
	APIKey string

	// BaseURL points the OpenAI client at a compatible endpoint
	BaseURL string

	// JSONMode asks the provider for a JSON object reply where supported
	JSONMode bool
}

// DefaultLLMConfig returns sensible defaults for script generation.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:  ProviderOpenAI,
		Model:     "gpt-4o-mini",
		MaxTokens: 2000,
		JSONMode:  true,
	}
}

// NewLLM builds the provider named in config. The mock provider answers
// with a scripted conversation between speakers.
func NewLLM(config LLMConfig, speakers []string) (LLM, error) {
	switch strings.ToLower(config.Provider) {
	case "", ProviderOpenAI:
		return NewOpenAILLM(config)
	case ProviderAnthropic:
		return NewAnthropicLLM(config)
	case ProviderMock:
		return NewScriptedMockLLM(speakers), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, config.Provider)
	}
}
