// Package config loads sitcom settings from a YAML or TOML file. Missing
// files and missing keys fall back to Default.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Yates-Labs/sitcom/internal/cast"
	"github.com/Yates-Labs/sitcom/internal/layout"
	"github.com/Yates-Labs/sitcom/internal/narrative"
	"github.com/Yates-Labs/sitcom/internal/playback"
	"github.com/Yates-Labs/sitcom/internal/script"
	"github.com/Yates-Labs/sitcom/internal/tui"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalid = errors.New("invalid configuration")
)

// SearchPaths are tried in order when no config file is named.
var SearchPaths = []string{"sitcom.yaml", "sitcom.yml", "sitcom.toml"}

// Config is the full set of run settings.
type Config struct {
	Provider    string  `yaml:"provider" toml:"provider"`
	Model       string  `yaml:"model" toml:"model"`
	Temperature float32 `yaml:"temperature" toml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" toml:"max_tokens"`
	BaseURL     string  `yaml:"base_url" toml:"base_url"`
	JSONMode    bool    `yaml:"json_mode" toml:"json_mode"`

	APIKeyFile string `yaml:"api_key_file" toml:"api_key_file"`
	Roster     string `yaml:"roster" toml:"roster"`
	ArchiveDir string `yaml:"archive_dir" toml:"archive_dir"`
	LogFile    string `yaml:"log_file" toml:"log_file"`

	Playback Playback `yaml:"playback" toml:"playback"`
	Policy   Policy   `yaml:"policy" toml:"policy"`

	// TakesInterval spaces the requests of a batch generation
	TakesInterval time.Duration `yaml:"takes_interval" toml:"takes_interval"`

	// Source is the file the config was read from, empty for defaults
	Source string `yaml:"-" toml:"-"`
}

// Playback holds screen geometry and timing.
type Playback struct {
	SlideDuration time.Duration `yaml:"slide_duration" toml:"slide_duration"`
	Window        Window        `yaml:"window" toml:"window"`
	Portrait      layout.Rect   `yaml:"portrait" toml:"portrait"`
	Subtitle      layout.Rect   `yaml:"subtitle" toml:"subtitle"`
	LineHeight    int           `yaml:"line_height" toml:"line_height"`
	LineSpacing   int           `yaml:"line_spacing" toml:"line_spacing"`
}

// Window is the canvas size in cells.
type Window struct {
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
}

// Policy holds the failure policies applied while loading a script.
type Policy struct {
	MissingFields   script.MissingFieldPolicy `yaml:"missing_fields" toml:"missing_fields"`
	UnknownSpeaker  cast.SpeakerPolicy        `yaml:"unknown_speaker" toml:"unknown_speaker"`
	DefaultPortrait string                    `yaml:"default_portrait" toml:"default_portrait"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	llm := narrative.DefaultLLMConfig()
	canvas := tui.DefaultCanvas()

	return &Config{
		Provider:   llm.Provider,
		Model:      llm.Model,
		MaxTokens:  llm.MaxTokens,
		JSONMode:   llm.JSONMode,
		APIKeyFile: filepath.Join("resources", "api_key.txt"),
		Roster:     filepath.Join("resources", "character_desc.json"),
		ArchiveDir: filepath.Join(".sitcom", "runs"),
		LogFile:    "sitcom.log",
		Playback: Playback{
			SlideDuration: playback.DefaultSlideDuration,
			Window:        Window{Width: canvas.Width, Height: canvas.Height},
			Portrait:      canvas.Portrait,
			Subtitle:      layout.Rect{Left: 4, Top: 14, Width: 72, Height: 6},
			LineHeight:    1,
		},
		Policy: Policy{
			MissingFields:  script.MissingFieldFail,
			UnknownSpeaker: cast.SpeakerFail,
		},
		TakesInterval: time.Second,
	}
}

// Load reads the named file, or the first of SearchPaths that exists when
// path is empty. With no file at all it returns Default.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFile(path)
	}

	for _, p := range SearchPaths {
		if _, err := os.Stat(p); err == nil {
			return loadFile(p)
		}
	}
	return Default(), nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: config file %s not found", ErrInvalid, path)
		}
		return nil, err
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalid, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}

	cfg.Source = path
	return cfg, nil
}

// Write marshals the config to YAML.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close() //nolint:errcheck // best-effort close
	enc.SetIndent(2)
	return enc.Encode(cfg)
}

// LLM returns the provider settings with apiKey filled in.
func (c *Config) LLM(apiKey string) narrative.LLMConfig {
	return narrative.LLMConfig{
		Provider:    c.Provider,
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		APIKey:      apiKey,
		BaseURL:     c.BaseURL,
		JSONMode:    c.JSONMode,
	}
}

// PlaybackConfig returns the controller settings.
func (c *Config) PlaybackConfig() playback.Config {
	metrics := layout.TerminalMetrics()
	if c.Playback.LineHeight > 0 {
		metrics.LineHeight = c.Playback.LineHeight
	}
	metrics.LineSpacing = c.Playback.LineSpacing

	return playback.Config{
		SlideDuration: c.Playback.SlideDuration,
		Subtitle:      c.Playback.Subtitle,
		Metrics:       metrics,
	}
}

// Canvas returns the terminal drawing area.
func (c *Config) Canvas() tui.Canvas {
	return tui.Canvas{
		Width:    c.Playback.Window.Width,
		Height:   c.Playback.Window.Height,
		Portrait: c.Playback.Portrait,
	}
}

// CastOptions returns the speaker binding settings.
func (c *Config) CastOptions() cast.Options {
	return cast.Options{
		Policy:          c.Policy.UnknownSpeaker,
		DefaultPortrait: c.Policy.DefaultPortrait,
	}
}
