package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Yates-Labs/sitcom/internal/config"
	sitcomlog "github.com/Yates-Labs/sitcom/internal/log"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Global flag values.
var (
	configPath string
	verbose    bool
	quiet      bool
	noColor    bool

	// overrides for values from the config file
	providerFlag       string
	modelFlag          string
	rosterFlag         string
	durationFlag       string
	unknownSpeakerFlag string
	missingFieldsFlag  string
)

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FF5555")).
	Bold(true)

var rootCmd = &cobra.Command{
	Use:   "sitcom",
	Short: "Sitcom - LLM-written dialogue played as a slideshow",
	Long: `Sitcom asks a language model to write a short conversation between a
fixed cast of characters and plays it back in the terminal, one line at a
time: the speaker's portrait and the line as a word-wrapped subtitle.

Generated scripts are archived so they can be replayed without another
model call.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if noColor {
			color.NoColor = true
		}
		sitcomlog.Setup(os.Stderr, verbose, quiet)

		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := applyOverrides(cmd, c); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if c.Source != "" {
			slog.Debug("config loaded", "path", c.Source)
		}
		cfg = c
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default: sitcom.yaml, sitcom.yml or sitcom.toml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")

	flags.StringVar(&providerFlag, "provider", "", "LLM provider: openai, anthropic or mock")
	flags.StringVar(&modelFlag, "model", "", "model name")
	flags.StringVar(&rosterFlag, "roster", "", "character roster file")
	flags.StringVar(&durationFlag, "duration", "", "how long each line stays on screen (e.g. 3s)")
	flags.StringVar(&unknownSpeakerFlag, "unknown-speaker", "", "unknown speaker policy: fail, default or skip")
	flags.StringVar(&missingFieldsFlag, "missing-fields", "", "incomplete line policy: fail or skip")
}

// Execute runs the root command and exits with the code for its error.
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	err := rootCmd.Execute()
	os.Exit(handleError(os.Stderr, err))
}

// handleError reports err once and returns the process exit code.
func handleError(w io.Writer, err error) int {
	code := ExitCode(err)
	if err == nil || code == ExitOK {
		return code
	}

	slog.Error("run failed", "error", err, "exit_code", code)
	fmt.Fprintln(w, errorStyle.Render("Error:"), err)
	return code
}
