package cmd

import (
	"fmt"

	"github.com/Yates-Labs/sitcom/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after the config file and flag overrides are
applied, as YAML. The output can be saved as a starting sitcom.yaml.

Examples:
  sitcom config
  sitcom config --provider anthropic > sitcom.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if cfg.Source != "" {
		fmt.Fprintf(w, "# loaded from %s\n", cfg.Source)
	}
	return config.Write(w, cfg)
}
