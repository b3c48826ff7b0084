package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minsuk/triblend/internal/contracts"
	"github.com/minsuk/triblend/internal/walkforward"
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the window partition for a history range",
	Long: `Partitions a history range with the configured walk-forward
geometry and prints the resulting windows without running anything.

Example:
  go run ./cmd/triblend plan --from 2020-01-01 --to 2023-01-01`,
	RunE: runPlan,
}

var (
	planFrom string
	planTo   string
)

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&planFrom, "from", "", "history start (YYYY-MM-DD)")
	planCmd.Flags().StringVar(&planTo, "to", "", "history end, exclusive (YYYY-MM-DD)")
	_ = planCmd.MarkFlagRequired("from")
	_ = planCmd.MarkFlagRequired("to")
}

func runPlan(cmd *cobra.Command, args []string) error {
	d, err := initDeps(true, 1)
	if err != nil {
		return err
	}

	from, err := parseDay(planFrom, "from")
	if err != nil {
		return err
	}
	to, err := parseDay(planTo, "to")
	if err != nil {
		return err
	}
	history := contracts.DateRange{Start: from, End: to}

	specs, err := walkforward.Partition(history, d.pipeline.Windows)
	if err != nil {
		return err
	}

	fmt.Printf("\n📅 History : %s\n", history)
	fmt.Printf("🪟 Windows : %d (train %dm / val %dm / test %dm, step %dm, embargo %dd)\n\n",
		len(specs),
		d.pipeline.Windows.TrainMonths, d.pipeline.Windows.ValMonths,
		d.pipeline.Windows.TestMonths, d.pipeline.Windows.RollStepMonths,
		d.pipeline.Windows.EmbargoDays)

	widths := []int{4, 24, 24, 24}
	PrintTableHeader([]string{"ID", "Train", "Val", "Test"}, widths)
	for _, s := range specs {
		PrintTableRow([]string{
			fmt.Sprintf("%d", s.ID),
			s.Train.String(),
			s.Val.String(),
			s.Test.String(),
		}, widths)
	}
	return nil
}
