package cmd

import (
	"errors"

	"github.com/Yates-Labs/sitcom/internal/archive"
	"github.com/Yates-Labs/sitcom/internal/cast"
	"github.com/Yates-Labs/sitcom/internal/config"
	"github.com/Yates-Labs/sitcom/internal/narrative"
	"github.com/Yates-Labs/sitcom/internal/orchestrator"
	"github.com/Yates-Labs/sitcom/internal/playback"
	"github.com/Yates-Labs/sitcom/internal/portrait"
	"github.com/Yates-Labs/sitcom/internal/script"
)

// ErrUserAbort ends a run on request, before or during playback.
var ErrUserAbort = errors.New("aborted by user")

// Exit codes for sitcom CLI.
const (
	ExitOK                = 0 // Finished, or aborted by the user.
	ExitInvalid           = 1 // Invalid configuration or arguments.
	ExitIO                = 3 // Missing credential, roster, portrait or archived run.
	ExitAPI               = 4 // Model call failed or returned nothing.
	ExitParse             = 5 // Reply was not a usable script.
	ExitUnresolvedSpeaker = 6 // Script names someone not on the roster.
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrUserAbort):
		return ExitOK
	case errors.Is(err, cast.ErrUnresolvedSpeaker):
		return ExitUnresolvedSpeaker
	case errors.Is(err, script.ErrParse), errors.Is(err, script.ErrMissingField):
		return ExitParse
	case errors.Is(err, config.ErrInvalid),
		errors.Is(err, narrative.ErrInvalidConfig),
		errors.Is(err, narrative.ErrMissingTopic),
		errors.Is(err, playback.ErrInvalidConfig),
		errors.Is(err, orchestrator.ErrInvalidTakes):
		return ExitInvalid
	case errors.Is(err, config.ErrCredential),
		errors.Is(err, cast.ErrRoster),
		errors.Is(err, archive.ErrNotFound),
		errors.Is(err, archive.ErrAmbiguous),
		errors.Is(err, portrait.ErrLoad):
		return ExitIO
	case errors.Is(err, narrative.ErrLLMFailed),
		errors.Is(err, narrative.ErrEmptyResponse),
		errors.Is(err, narrative.ErrGenerationFailed):
		return ExitAPI
	default:
		return ExitInvalid
	}
}
