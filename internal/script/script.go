// Package script holds the dialogue produced by the model: an ordered list
// of speaker/speech pairs, the parser that extracts it from a model reply,
// and JSON export for replaying it later.
package script

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConversationKey is the top-level array field the model is asked to fill.
const ConversationKey = "conversation"

// Line is one speaker/speech pair. Order within a Script is playback order.
type Line struct {
	Speaker string `json:"speaker"`
	Speech  string `json:"speech"`
}

// Script is a generated dialogue. It is not modified after creation.
type Script struct {
	// ID identifies the generation run
	ID string `json:"id"`

	// Prompt is the topic the user asked for
	Prompt string `json:"prompt,omitempty"`

	// Model is the LLM that wrote the script
	Model string `json:"model,omitempty"`

	// CreatedAt is when the script was generated
	CreatedAt time.Time `json:"created_at"`

	// Lines are the dialogue lines in playback order
	Lines []Line `json:"conversation"`
}

// New creates a script with a fresh ID.
func New(prompt, model string, lines []Line) *Script {
	copied := make([]Line, len(lines))
	copy(copied, lines)

	return &Script{
		ID:        uuid.NewString(),
		Prompt:    prompt,
		Model:     model,
		CreatedAt: time.Now(),
		Lines:     copied,
	}
}

// Len returns the number of lines.
func (s *Script) Len() int {
	return len(s.Lines)
}

// Speakers returns the distinct speakers in order of first appearance.
func (s *Script) Speakers() []string {
	seen := make(map[string]struct{})
	var speakers []string
	for _, l := range s.Lines {
		name := strings.TrimSpace(l.Speaker)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		speakers = append(speakers, name)
	}
	return speakers
}
