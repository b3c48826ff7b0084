package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show run metadata and per-window metrics",
	Long: `Loads a run's metadata and stored window artifacts and prints
the per-window test metrics.

Example:
  go run ./cmd/triblend status --run-id wf-20230101-abcd1234`,
	RunE: runStatus,
}

var statusRunID string

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusRunID, "run-id", "", "run identifier")
	_ = statusCmd.MarkFlagRequired("run-id")
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := initDeps(false, 0)
	if err != nil {
		return err
	}
	defer d.close()

	ctx := cmd.Context()

	meta, err := d.artifacts.GetRunMeta(ctx, statusRunID)
	if err != nil {
		return err
	}
	windows, err := d.artifacts.ListWindows(ctx, statusRunID)
	if err != nil {
		return err
	}

	PrintDoubleSeparator()
	fmt.Println("  Run Status")
	PrintSeparator()
	PrintKeyValue("Run ID", meta.RunID, 12)
	PrintKeyValue("Config hash", meta.ConfigHash[:12], 12)
	PrintKeyValue("History", meta.History.String(), 12)
	PrintKeyValue("Windows", fmt.Sprintf("%d (%d completed, %d skipped)",
		meta.Windows, len(meta.Completed), len(meta.Skipped)), 12)
	PrintKeyValue("Started", meta.StartedAt.Format("2006-01-02 15:04:05"), 12)
	PrintKeyValue("Finished", meta.FinishedAt.Format("2006-01-02 15:04:05"), 12)
	if meta.Success {
		PrintSuccess("run completed")
	} else {
		PrintError(fmt.Sprintf("run failed: %s", meta.Error))
	}

	if len(windows) > 0 {
		fmt.Println()
		widths := []int{4, 10, 8, 8, 8, 8, 6}
		PrintTableHeader([]string{"ID", "Test days", "LogLoss", "Brier", "AUC", "Hit", "Prior"}, widths)
		for _, a := range windows {
			prior := ""
			if a.FusionFromPrior {
				prior = "yes"
			}
			PrintTableRow([]string{
				fmt.Sprintf("%d", a.WindowID),
				fmt.Sprintf("%d", a.TestMetrics.Samples),
				fmt.Sprintf("%.4f", a.TestMetrics.LogLoss),
				fmt.Sprintf("%.4f", a.TestMetrics.Brier),
				fmt.Sprintf("%.4f", a.TestMetrics.AUC),
				fmt.Sprintf("%.3f", a.TestMetrics.HitRate),
				prior,
			}, widths)
		}
	}

	for _, s := range meta.Skipped {
		PrintWarning(fmt.Sprintf("window %d skipped: %s", s.WindowID, s.Reason))
	}
	return nil
}
