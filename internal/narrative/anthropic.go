package narrative

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// defaultAnthropicMaxTokens is used when the config leaves MaxTokens at
// zero; the Messages API requires a limit.
const defaultAnthropicMaxTokens = 4096

// AnthropicLLM implements the LLM interface using the Anthropic Messages API.
type AnthropicLLM struct {
	client anthropic.Client
	config LLMConfig
}

// Compile-time checks that both providers satisfy the LLM interface.
var (
	_ LLM = (*AnthropicLLM)(nil)
	_ LLM = (*OpenAILLM)(nil)
)

// NewAnthropicLLM creates an Anthropic-backed LLM implementation.
func NewAnthropicLLM(config LLMConfig) (*AnthropicLLM, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key (set ANTHROPIC_API_KEY or provide a key file)", ErrInvalidConfig)
	}
	if config.Model == "" {
		return nil, fmt.Errorf("%w: missing model name", ErrInvalidConfig)
	}

	opts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(apiKey),
	}
	if config.BaseURL != "" {
		opts = append(opts, anthropicopt.WithBaseURL(config.BaseURL))
	}

	return &AnthropicLLM{
		client: anthropic.NewClient(opts...),
		config: config,
	}, nil
}

// Generate sends the prompt to the Messages API and joins the text blocks
// of the reply.
func (a *AnthropicLLM) Generate(ctx context.Context, prompt Prompt) (string, error) {
	if prompt.User == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", ErrInvalidConfig)
	}

	maxTokens := int64(defaultAnthropicMaxTokens)
	if a.config.MaxTokens > 0 {
		maxTokens = int64(a.config.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.config.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
		},
	}
	if prompt.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: prompt.System},
		}
	}
	if a.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(a.config.Temperature))
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLLMFailed, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(variant.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: no text blocks in reply", ErrEmptyResponse)
	}

	return b.String(), nil
}
