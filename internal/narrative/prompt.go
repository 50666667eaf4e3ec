package narrative

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingTopic = errors.New("a script topic is required")
)

// SystemInstruction is sent as the system message with every request.
const SystemInstruction = "Please generate my scripts."

const promptFormat = "%s. Provide the JSON to:%s. " +
	"The array header for the dialog should be labeled 'conversation'. " +
	"In this array, make two sections, one labeled 'speaker' for the current character, " +
	"and the other labeled 'speech' for their dialog."

// AssemblePrompt combines the cast description and the topic into the
// request that asks the model for a conversation array.
func AssemblePrompt(characterDesc, topic string) (Prompt, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Prompt{}, ErrMissingTopic
	}

	desc := strings.TrimSuffix(strings.TrimSpace(characterDesc), ".")

	return Prompt{
		System: SystemInstruction,
		User:   fmt.Sprintf(promptFormat, desc, topic),
	}, nil
}
