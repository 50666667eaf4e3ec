package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Yates-Labs/sitcom/internal/script"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

var (
	generatePrompt  string
	generateKeyFile string
	generateTakes   int
	exportFile      string
)

// listingWidth is the wrap width of printed speeches.
const listingWidth = 72

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate scripts without playing them",
	Long: `Generate one or more scripts for a topic, archive them and print them.

Several takes are generated concurrently, spaced by takes_interval.

Examples:
  sitcom generate --prompt "the broken elevator"
  sitcom generate --prompt "grading season" --takes 3
  sitcom generate --prompt "office hours" --export office-hours.json`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&generatePrompt, "prompt", "", "conversation topic")
	generateCmd.Flags().StringVar(&generateKeyFile, "key-file", "", "API key file (default: api_key_file from the config)")
	generateCmd.Flags().IntVar(&generateTakes, "takes", 1, "number of scripts to generate")
	generateCmd.Flags().StringVar(&exportFile, "export", "", "Export scripts to JSON file: --export <filename>")
	_ = generateCmd.MarkFlagRequired("prompt")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	keyFile := generateKeyFile
	if keyFile == "" {
		keyFile = cfg.APIKeyFile
	}

	sess, err := openSession(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	pipeline, err := sess.pipeline(cfg, keyFile, true)
	if err != nil {
		return err
	}

	records, err := pipeline.GenerateTakes(cmd.Context(), generatePrompt, generateTakes)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for i, rec := range records {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printScript(w, rec.Script)

		if exportFile != "" {
			name := exportName(exportFile, i, len(records))
			if err := script.ExportFile(rec.Script, name); err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			fmt.Fprintf(w, "✓ Exported %d lines to %s\n", rec.Script.Len(), name)
		}
	}
	return nil
}

// printScript lists a script with speeches wrapped under their speaker.
func printScript(w io.Writer, s *script.Script) {
	var (
		idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
		promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD")).Italic(true)
		speakerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F780FF")).Bold(true)
		speechStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E9E9F4"))
	)

	fmt.Fprintf(w, "%s %s\n\n", idStyle.Render(shortID(s.ID)), promptStyle.Render(s.Prompt))
	for _, l := range s.Lines {
		fmt.Fprintln(w, speakerStyle.Render(l.Speaker))
		speech := indent.String(wordwrap.String(l.Speech, listingWidth-2), 2)
		fmt.Fprintln(w, speechStyle.Render(speech))
	}
}

// exportName numbers files when there is more than one take.
func exportName(name string, i, n int) string {
	if n <= 1 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), i+1, ext)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
