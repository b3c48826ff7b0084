package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	pipelineFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "triblend",
	Short: "Walk-forward training and gated fusion for a daily ETF signal",
	Long: `triblend CLI

Walk-forward orchestrator for the tri-modal index-ETF signal:
price, news and social heads blended by a gated convex combination
under a strict point-in-time protocol.

Usage:
  go run ./cmd/triblend [command]

Examples:
  go run ./cmd/triblend backfill run --from 2020-01-01 --to 2023-01-01
  go run ./cmd/triblend plan --from 2020-01-01 --to 2023-01-01
  go run ./cmd/triblend predict
  go run ./cmd/triblend status --run-id wf-20230101-abcd1234`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&pipelineFile, "pipeline", "", "pipeline config file (default from PIPELINE_CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
