package config

import (
	"fmt"
	"strings"

	"github.com/Yates-Labs/sitcom/internal/layout"
	"github.com/Yates-Labs/sitcom/internal/narrative"
)

// Validate checks all fields and returns every problem at once.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Provider) {
	case narrative.ProviderOpenAI, narrative.ProviderAnthropic, narrative.ProviderMock:
	default:
		errs = append(errs, fmt.Sprintf("provider: unknown provider %q (must be openai, anthropic, or mock)", c.Provider))
	}
	if c.Model == "" && !strings.EqualFold(c.Provider, narrative.ProviderMock) {
		errs = append(errs, "model: must be set")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Sprintf("temperature: must be between 0 and 2, got %g", c.Temperature))
	}
	if c.MaxTokens < 0 {
		errs = append(errs, fmt.Sprintf("max_tokens: must be non-negative, got %d", c.MaxTokens))
	}
	if c.Roster == "" {
		errs = append(errs, "roster: must be set")
	}
	if c.TakesInterval < 0 {
		errs = append(errs, fmt.Sprintf("takes_interval: must be non-negative, got %s", c.TakesInterval))
	}

	p := c.Playback
	if p.SlideDuration <= 0 {
		errs = append(errs, fmt.Sprintf("playback.slide_duration: must be positive, got %s", p.SlideDuration))
	}
	if p.Window.Width <= 0 || p.Window.Height <= 0 {
		errs = append(errs, fmt.Sprintf("playback.window: must be positive, got %dx%d", p.Window.Width, p.Window.Height))
	}
	if p.LineHeight <= 0 {
		errs = append(errs, fmt.Sprintf("playback.line_height: must be positive, got %d", p.LineHeight))
	}
	if p.LineSpacing < -p.LineHeight+1 {
		errs = append(errs, fmt.Sprintf("playback.line_spacing: line pitch must stay positive, got spacing %d", p.LineSpacing))
	}
	errs = append(errs, checkRect("playback.subtitle", p.Subtitle, p.Window)...)
	errs = append(errs, checkRect("playback.portrait", p.Portrait, p.Window)...)

	if !c.Policy.MissingFields.Valid() {
		errs = append(errs, fmt.Sprintf("policy.missing_fields: invalid value %q (must be fail or skip)", c.Policy.MissingFields))
	}
	if !c.Policy.UnknownSpeaker.Valid() {
		errs = append(errs, fmt.Sprintf("policy.unknown_speaker: invalid value %q (must be fail, default, or skip)", c.Policy.UnknownSpeaker))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrInvalid, strings.Join(errs, "\n  "))
	}
	return nil
}

func checkRect(name string, r layout.Rect, w Window) []string {
	var errs []string
	if r.Width <= 0 || r.Height <= 0 {
		errs = append(errs, fmt.Sprintf("%s: must have a positive size, got %dx%d", name, r.Width, r.Height))
	}
	if r.Left < 0 || r.Top < 0 || r.Left+r.Width > w.Width || r.Bottom() > w.Height {
		errs = append(errs, fmt.Sprintf("%s: %+v does not fit the %dx%d window", name, r, w.Width, w.Height))
	}
	return errs
}
