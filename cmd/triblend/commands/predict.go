package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/minsuk/triblend/internal/artifacts"
	"github.com/minsuk/triblend/internal/contracts"
	"github.com/minsuk/triblend/internal/walkforward"
	"github.com/minsuk/triblend/pkg/redis"
)

// predictCmd represents the predict command
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score the most recent window and print the latest signal",
	Long: `Trains the single most recent walk-forward window (train and
validation strictly before the test month containing --as-of) and
prints the fused signal for the latest scored day.

The window is computed into a scratch artifact store; nothing is
persisted. Use backfill for the full, recorded protocol.

Example:
  go run ./cmd/triblend predict
  go run ./cmd/triblend predict --as-of 2023-06-30`,
	RunE: runPredict,
}

var (
	predictAsOf      string
	predictSynthetic bool
)

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringVar(&predictAsOf, "as-of", "", "score as of this date (YYYY-MM-DD, default: today)")
	predictCmd.Flags().BoolVar(&predictSynthetic, "synthetic", false, "run against a generated in-memory history")
}

func runPredict(cmd *cobra.Command, args []string) error {
	fmt.Println("=== triblend Predict ===")

	d, err := initDeps(predictSynthetic, 36)
	if err != nil {
		return err
	}
	defer d.close()

	asOf := time.Now().UTC()
	if predictAsOf != "" {
		asOf, err = parseDay(predictAsOf, "as-of")
		if err != nil {
			return err
		}
	}
	if predictSynthetic {
		// The generated history starts 2020-01-01; score its final month.
		asOf = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 36, 0)
	}

	// One window's worth of history ending at the as-of day.
	w := d.pipeline.Windows
	end := contracts.Day(asOf).AddDate(0, 0, 1)
	start := end.AddDate(0, -(w.TrainMonths + w.ValMonths + w.TestMonths), 0)
	history := contracts.DateRange{Start: start, End: end}

	fmt.Printf("\n📅 As of   : %s\n", contracts.Day(asOf).Format("2006-01-02"))
	fmt.Printf("🪟 Window  : %s\n\n", history)

	orch := walkforward.NewOrchestrator(d.features, artifacts.NewMemory(), d.pipeline, d.log)
	res, err := orch.Run(cmd.Context(), walkforward.RunOptions{
		RunID:   generateRunID(),
		History: history,
	})
	if err != nil {
		return fmt.Errorf("predict run failed: %w", err)
	}
	if len(res.Predictions) == 0 {
		return fmt.Errorf("no scoreable day at or before %s", asOf.Format("2006-01-02"))
	}

	latest := res.Predictions[len(res.Predictions)-1]

	if d.redis != nil && d.redis.Enabled() {
		cache := redis.NewCache(d.redis, "prediction")
		if err := cache.Set(cmd.Context(), "latest", latest, 48*time.Hour); err != nil {
			d.log.WithError(err).Warn("cache latest prediction failed")
		}
	}

	PrintDoubleSeparator()
	fmt.Println("  Latest Signal")
	PrintSeparator()
	PrintKeyValue("Date", latest.Date.Format("2006-01-02"), 10)
	PrintKeyValue("Signal", fmt.Sprintf("%.4f", latest.Value), 10)
	PrintKeyValue("Window", fmt.Sprintf("%d", latest.WindowID), 10)
	PrintSeparator()

	if latest.Value > 0.5 {
		PrintSuccess("lean long: up-day probability above one half")
	} else {
		PrintWarning("lean flat/short: up-day probability at or below one half")
	}
	return nil
}
