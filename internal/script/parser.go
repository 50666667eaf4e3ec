package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrParse        = errors.New("script parse failed")
	ErrMissingField = errors.New("missing required field")
)

// ParseError reports a reply that is not valid JSON or lacks the expected
// section. It matches ErrParse with errors.Is.
type ParseError struct {
	// Key is the section that was being read
	Key string

	// Index is the offending element, or -1 when the whole document is at fault
	Index int

	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(ErrParse.Error())
	if e.Key != "" {
		b.WriteString(fmt.Sprintf(" (%s", e.Key))
		if e.Index >= 0 {
			b.WriteString(fmt.Sprintf("[%d]", e.Index))
		}
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ParseSection decodes the elements of the top-level array field key.
// A reply wrapped in a Markdown code fence is unwrapped first.
func ParseSection[T any](raw string, key string) ([]T, error) {
	body := unwrapFence(raw)

	if !gjson.Valid(body) {
		return nil, &ParseError{Key: key, Index: -1, Reason: "not valid JSON"}
	}

	root := gjson.Parse(body)
	if !root.IsObject() {
		return nil, &ParseError{Key: key, Index: -1, Reason: "top-level value is not an object"}
	}

	section, ok := root.Map()[key]
	if !ok || !section.Exists() {
		return nil, &ParseError{Key: key, Index: -1, Reason: "field not found"}
	}
	if !section.IsArray() {
		return nil, &ParseError{Key: key, Index: -1, Reason: "field is not an array"}
	}

	var out []T
	if err := json.Unmarshal([]byte(section.Raw), &out); err != nil {
		return nil, &ParseError{Key: key, Index: -1, Reason: "decode elements", Err: err}
	}
	if out == nil {
		out = []T{}
	}

	return out, nil
}

// Parse extracts the conversation lines from a model reply.
func Parse(raw string) ([]Line, error) {
	return ParseSection[Line](raw, ConversationKey)
}

// Decode reads a script file: either a full export or a bare
// {"conversation": [...]} document. Missing metadata is filled in.
func Decode(raw string) (*Script, error) {
	lines, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	var meta Script
	// metadata is optional; the lines above are the strict part
	_ = json.Unmarshal([]byte(unwrapFence(raw)), &meta)

	s := New(meta.Prompt, meta.Model, lines)
	if meta.ID != "" {
		s.ID = meta.ID
	}
	if !meta.CreatedAt.IsZero() {
		s.CreatedAt = meta.CreatedAt
	}
	return s, nil
}

func unwrapFence(raw string) string {
	body := strings.TrimSpace(raw)
	if !strings.HasPrefix(body, "```") {
		return body
	}

	// drop the opening fence line, which may carry a language tag
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		return body
	}
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}
