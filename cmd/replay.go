package cmd

import (
	"github.com/Yates-Labs/sitcom/internal/orchestrator"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file|run-id>",
	Short: "Play a saved script without calling the model",
	Long: `Play a script file, or a run from the archive by its ID. A unique prefix
of a run ID is enough; see "sitcom history" for the IDs.

Examples:
  sitcom replay ./scripts/parking.json
  sitcom replay 3f2a9c1e
  sitcom replay 3f2a9c1e --headless`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&headless, "headless", false, "print lines to stdout instead of the full screen view")
}

func runReplay(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	loader := orchestrator.ReplayLoader(args[0], sess.store, cfg.Policy.MissingFields)
	return playScript(cmd, loader, sess, "replay "+args[0])
}
