package cmd

import (
	"fmt"
	"time"

	"github.com/Yates-Labs/sitcom/internal/cast"
	"github.com/Yates-Labs/sitcom/internal/config"
	"github.com/Yates-Labs/sitcom/internal/script"
	"github.com/spf13/cobra"
)

// applyOverrides copies explicitly set flags over the loaded config.
func applyOverrides(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("provider") {
		c.Provider = providerFlag
	}
	if flags.Changed("model") {
		c.Model = modelFlag
	}
	if flags.Changed("roster") {
		c.Roster = rosterFlag
	}
	if flags.Changed("duration") {
		d, err := time.ParseDuration(durationFlag)
		if err != nil {
			return fmt.Errorf("%w: --duration: %v", config.ErrInvalid, err)
		}
		c.Playback.SlideDuration = d
	}
	if flags.Changed("unknown-speaker") {
		c.Policy.UnknownSpeaker = cast.SpeakerPolicy(unknownSpeakerFlag)
	}
	if flags.Changed("missing-fields") {
		c.Policy.MissingFields = script.MissingFieldPolicy(missingFieldsFlag)
	}
	return nil
}
