package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	sitcomlog "github.com/Yates-Labs/sitcom/internal/log"
	"github.com/Yates-Labs/sitcom/internal/narrative"
	"github.com/Yates-Labs/sitcom/internal/playback"
	"github.com/Yates-Labs/sitcom/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	playPrompt  string
	playKeyFile string
	headless    bool
	noArchive   bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Generate a script and play it",
	Long: `Ask for a topic and an API key file, generate a conversation between the
characters on the roster and play it full screen.

Type "exit" at either prompt to quit without calling the model. Press q,
esc or ctrl+c to stop playback.

Examples:
  sitcom play
  sitcom play --prompt "the new parking policy" --key-file ./resources/api_key.txt
  sitcom play --provider mock --prompt "finals week" --headless`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().StringVar(&playPrompt, "prompt", "", "conversation topic (skips the topic prompt)")
	playCmd.Flags().StringVar(&playKeyFile, "key-file", "", "API key file (skips the key file prompt)")
	playCmd.Flags().BoolVar(&headless, "headless", false, "print lines to stdout instead of the full screen view")
	playCmd.Flags().BoolVar(&noArchive, "no-archive", false, "do not archive the generated script")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	topic := strings.TrimSpace(playPrompt)
	for topic == "" {
		answer, err := ask(in, out, "What should they talk about?", "")
		if err != nil {
			return err
		}
		topic = answer
	}

	keyFile := playKeyFile
	if keyFile == "" && !strings.EqualFold(cfg.Provider, narrative.ProviderMock) {
		answer, err := ask(in, out, "Path to your API key file", cfg.APIKeyFile)
		if err != nil {
			return err
		}
		keyFile = answer
	}

	ctx := cmd.Context()
	sess, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	pipeline, err := sess.pipeline(cfg, keyFile, !noArchive)
	if err != nil {
		return err
	}

	return playScript(cmd, pipeline.Loader(topic), sess, topic)
}

// playScript runs loader through the playback controller on the terminal
// UI, or on stdout with --headless.
func playScript(cmd *cobra.Command, loader playback.Loader, sess *session, title string) error {
	if headless {
		return playHeadless(cmd, loader, sess)
	}
	return playFullScreen(cmd, loader, sess, title)
}

func playHeadless(cmd *cobra.Command, loader playback.Loader, sess *session) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	ctrl, err := playback.New(loader, sess.cast, cfg.PlaybackConfig())
	if err != nil {
		return err
	}

	p := cfg.Playback.Portrait
	err = ctrl.Run(ctx, playback.NewTextSurface(cmd.OutOrStdout(), p.Width, p.Height))
	if errors.Is(err, context.Canceled) {
		return ErrUserAbort
	}
	return err
}

func playFullScreen(cmd *cobra.Command, loader playback.Loader, sess *session, title string) error {
	// the screen belongs to the UI until it exits
	logFile, err := sitcomlog.OpenFile(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	sitcomlog.Setup(logFile, verbose, quiet)
	defer sitcomlog.Setup(os.Stderr, verbose, quiet)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	program := tea.NewProgram(
		tui.NewModel(cfg.Canvas(), title),
		tea.WithAltScreen(),
	)
	surface := tui.NewSurface(program)

	ctrl, err := playback.New(loader, sess.cast, cfg.PlaybackConfig(), playback.WithObserver(surface.Observe))
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Run(ctx, surface)
	}()

	final, err := program.Run()
	cancel()
	playErr := <-done
	if err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}

	if m, ok := final.(tui.Model); ok && m.Aborted() {
		slog.Info("playback stopped by user", "state", ctrl.State())
		return ErrUserAbort
	}
	return playErr
}
