package script

import (
	"fmt"
	"log/slog"
	"strings"
)

// MissingFieldPolicy decides what happens to lines without a speaker or speech.
type MissingFieldPolicy string

const (
	MissingFieldFail MissingFieldPolicy = "fail"
	MissingFieldSkip MissingFieldPolicy = "skip"
)

// Valid reports whether p is a known policy.
func (p MissingFieldPolicy) Valid() bool {
	return p == MissingFieldFail || p == MissingFieldSkip
}

// Normalize trims every line and applies policy to incomplete ones.
// With MissingFieldFail the first incomplete line produces a *ParseError
// wrapping ErrMissingField; with MissingFieldSkip it is dropped.
func Normalize(lines []Line, policy MissingFieldPolicy) ([]Line, error) {
	if policy == "" {
		policy = MissingFieldFail
	}

	out := make([]Line, 0, len(lines))
	for i, l := range lines {
		l.Speaker = strings.TrimSpace(l.Speaker)
		l.Speech = strings.TrimSpace(l.Speech)

		var missing string
		switch {
		case l.Speaker == "":
			missing = "speaker"
		case l.Speech == "":
			missing = "speech"
		}

		if missing == "" {
			out = append(out, l)
			continue
		}

		if policy == MissingFieldSkip {
			slog.Warn("skipping incomplete line", "index", i, "missing", missing)
			continue
		}

		return nil, &ParseError{
			Key:    ConversationKey,
			Index:  i,
			Reason: fmt.Sprintf("no %s", missing),
			Err:    ErrMissingField,
		}
	}

	return out, nil
}
