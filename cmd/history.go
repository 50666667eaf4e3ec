package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/Yates-Labs/sitcom/internal/archive"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived runs",
	Long: `List archived runs, newest first. Use the ID with "sitcom replay".

Examples:
  sitcom history
  sitcom history --limit 5`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "show at most this many runs (0 = all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	store := archive.Open(cfg.ArchiveDir)
	entries, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintf(w, "No archived runs in %s\n", store.Dir())
		return nil
	}
	if historyLimit > 0 && len(entries) > historyLimit {
		entries = entries[:historyLimit]
	}

	outputTable(w, entries)
	return nil
}

func outputTable(w io.Writer, entries []archive.Entry) {
	// LipGloss signature purple/pink palette
	var (
		headerColor = lipgloss.Color("#F780FF") // Bright pink/magenta
		idColor     = lipgloss.Color("#BD93F9") // Purple
		numberColor = lipgloss.Color("#FF79C6") // Pink
		dateColor   = lipgloss.Color("#E9E9F4") // Light purple/white
		borderColor = lipgloss.Color("#6272A4") // Muted purple
		promptColor = lipgloss.Color("#8BE9FD") // Cyan accent
	)

	// Column widths
	const (
		idWidth     = 10
		dateWidth   = 16
		linesWidth  = 7
		modelWidth  = 14
		promptWidth = 36
	)

	headerStyle := lipgloss.NewStyle().
		Foreground(headerColor).
		Bold(true).
		Padding(0, 1)

	borderStyle := lipgloss.NewStyle().Foreground(borderColor)

	headers := []string{
		headerStyle.Width(idWidth).Render("RUN"),
		headerStyle.Width(dateWidth).Render("CREATED"),
		headerStyle.Width(linesWidth).Render("LINES"),
		headerStyle.Width(modelWidth).Render("MODEL"),
		headerStyle.Width(promptWidth).Render("PROMPT"),
	}
	fmt.Fprintln(w, strings.Join(headers, borderStyle.Render("│")))

	separatorParts := []string{
		strings.Repeat("─", idWidth),
		strings.Repeat("─", dateWidth),
		strings.Repeat("─", linesWidth),
		strings.Repeat("─", modelWidth),
		strings.Repeat("─", promptWidth),
	}
	fmt.Fprintln(w, borderStyle.Render(strings.Join(separatorParts, "┼")))

	cell := func(c lipgloss.Color, width int) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Padding(0, 1).Width(width)
	}

	for _, e := range entries {
		cells := []string{
			cell(idColor, idWidth).Render(shortID(e.ID)),
			cell(dateColor, dateWidth).Render(e.CreatedAt.Local().Format("Jan 02, 15:04")),
			cell(numberColor, linesWidth).Align(lipgloss.Right).Render(fmt.Sprintf("%d", e.Lines)),
			cell(dateColor, modelWidth).Render(truncate.StringWithTail(e.Model, modelWidth-2, "…")),
			cell(promptColor, promptWidth).Render(truncate.StringWithTail(e.Prompt, promptWidth-2, "…")),
		}
		fmt.Fprintln(w, strings.Join(cells, borderStyle.Render("│")))
	}

	summaryStyle := lipgloss.NewStyle().
		Foreground(promptColor).
		Italic(true)

	fmt.Fprintln(w)
	fmt.Fprintln(w, summaryStyle.Render(fmt.Sprintf("%d runs", len(entries))))
}
