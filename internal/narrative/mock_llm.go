package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockLLM is a deterministic LLM implementation for testing and offline runs.
// It returns predictable responses based on its configuration.
type MockLLM struct {
	// Response is the fixed text returned by Generate.
	// If empty, a conversation between Speakers is generated.
	Response string

	// Error, if set, is returned by Generate instead of a response.
	Error error

	// Speakers take turns in the generated conversation.
	Speakers []string

	mu         sync.Mutex
	lastPrompt Prompt
	calls      int
}

// NewMockLLM creates a mock LLM with the given fixed response.
func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

// NewMockLLMWithError creates a mock LLM that always returns an error.
func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Error: err}
}

// NewScriptedMockLLM creates a mock that writes a short conversation
// between the given speakers.
func NewScriptedMockLLM(speakers []string) *MockLLM {
	return &MockLLM{Speakers: speakers}
}

// Generate returns the configured response or generates a deterministic one.
func (m *MockLLM) Generate(ctx context.Context, prompt Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastPrompt = prompt
	m.calls++

	if m.Error != nil {
		return "", m.Error
	}

	if m.Response != "" {
		return m.Response, nil
	}

	return generateMockConversation(m.Speakers, m.calls)
}

// LastPrompt returns the most recent prompt passed to Generate.
func (m *MockLLM) LastPrompt() Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}

// Calls returns how many times Generate was called.
func (m *MockLLM) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// generateMockConversation builds a reply in the shape the real prompt asks for.
func generateMockConversation(speakers []string, take int) (string, error) {
	if len(speakers) == 0 {
		speakers = []string{"Narrator"}
	}

	type line struct {
		Speaker string `json:"speaker"`
		Speech  string `json:"speech"`
	}

	lines := make([]line, 0, len(speakers)*2)
	for round := 1; round <= 2; round++ {
		for _, s := range speakers {
			lines = append(lines, line{
				Speaker: s,
				Speech:  fmt.Sprintf("This is %s speaking, line %d of take %d.", s, round, take),
			})
		}
	}

	out, err := json.Marshal(map[string][]line{"conversation": lines})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
