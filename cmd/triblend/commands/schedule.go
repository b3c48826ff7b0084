package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/minsuk/triblend/internal/contracts"
	"github.com/minsuk/triblend/internal/walkforward"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the daily walk-forward update on a schedule",
	Long: `Starts a daemon that extends the walk-forward run every day at
the configured time (SCHEDULE_TIME, HH:MM). Each tick re-runs the
backfill over the configured history; completed windows are skipped
via the resume check, so only newly closed months actually compute.

Example:
  go run ./cmd/triblend schedule --from 2020-01-01 --run-id wf-prod`,
	RunE: runSchedule,
}

var (
	scheduleFrom  string
	scheduleRunID string
)

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleFrom, "from", "", "history start (YYYY-MM-DD)")
	scheduleCmd.Flags().StringVar(&scheduleRunID, "run-id", "", "run identifier to extend")
	_ = scheduleCmd.MarkFlagRequired("from")
	_ = scheduleCmd.MarkFlagRequired("run-id")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	fmt.Println("=== triblend Scheduler ===")

	d, err := initDeps(false, 0)
	if err != nil {
		return err
	}
	defer d.close()

	from, err := parseDay(scheduleFrom, "from")
	if err != nil {
		return err
	}

	spec, err := cronSpec(d.cfg.ScheduleTime)
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(d.cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %s: %w", d.cfg.Timezone, err)
	}

	tick := func() {
		// History runs up to the current month boundary so only fully
		// closed months become test slices.
		now := time.Now().In(loc)
		end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		history := contracts.DateRange{Start: from, End: end}

		orch := walkforward.NewOrchestrator(d.features, d.artifacts, d.pipeline, d.log)
		res, err := orch.Run(context.Background(), walkforward.RunOptions{
			RunID:   scheduleRunID,
			History: history,
			GitSHA:  getGitSHA(),
		})
		if err != nil {
			d.log.WithError(err).Error("scheduled walk-forward update failed")
			return
		}
		d.log.WithFields(map[string]interface{}{
			"run_id":      scheduleRunID,
			"completed":   len(res.Meta.Completed),
			"predictions": len(res.Predictions),
		}).Info("scheduled walk-forward update finished")
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(spec, tick); err != nil {
		return fmt.Errorf("register schedule: %w", err)
	}
	c.Start()
	defer c.Stop()

	fmt.Printf("\n⏰ Scheduled daily at %s (%s)\n", d.cfg.ScheduleTime, d.cfg.Timezone)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n👋 Scheduler stopped")
	return nil
}

// cronSpec converts an HH:MM wall-clock time into a daily cron spec.
func cronSpec(at string) (string, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return "", fmt.Errorf("invalid SCHEDULE_TIME %q, want HH:MM: %w", at, err)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}
