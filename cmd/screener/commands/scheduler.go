package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-screener/internal/export"
	"github.com/wonny/aegis-screener/internal/scheduler"
	"github.com/wonny/aegis-screener/internal/scheduler/jobs"
	"github.com/wonny/aegis-screener/internal/series"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Scheduled screening",
	Long: `Runs screening (and bar sync, when DATABASE_URL is set) on a cron schedule
in the strategy timezone.

Subcommands:
  start   - start the scheduler daemon
  list    - list jobs and their next run
  run     - run one job immediately

Example:
  go run ./cmd/screener scheduler start
  go run ./cmd/screener scheduler list
  go run ./cmd/screener scheduler run screen_opportunity`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Registers every job and runs until Ctrl+C.

Jobs:
- screen_<mode>: strategy schedule.cron (default weekdays 16:30 exchange time)
- bar_sync:      --sync-cron, only with DATABASE_URL
- cache_cleanup: every 15 minutes, only without Redis`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	// Flags
	schedulerSyncCron  string
	schedulerExportDir string
	schedulerFormat    string
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().StringVar(&schedulerSyncCron, "sync-cron", "0 0 17 * * 1-5", "bar sync schedule (with seconds)")
	schedulerCmd.PersistentFlags().StringVar(&schedulerExportDir, "export-dir", "charts", "chart export directory")
	schedulerCmd.PersistentFlags().StringVar(&schedulerFormat, "format", "parquet", "chart export format (csv|parquet|json|none)")
}

// initScheduler builds the scheduler and registers every job
func initScheduler(a *app) (*scheduler.Scheduler, error) {
	loc, err := time.LoadLocation(a.strategy.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	sched := scheduler.New(a.log, scheduler.WithLocation(loc))

	// 1. Screening job
	var writer export.Writer
	if schedulerFormat != "none" {
		if writer, err = export.NewWriter(schedulerFormat); err != nil {
			return nil, err
		}
	}
	orchestrator, err := a.orchestrator(a.strategy.Mode, writer != nil)
	if err != nil {
		return nil, fmt.Errorf("init orchestrator: %w", err)
	}
	screenJob := jobs.NewScreenJob(orchestrator, a.runConfig(0), a.strategy.Schedule.Cron, schedulerExportDir, writer, a.log)
	if err := sched.AddJob(screenJob); err != nil {
		return nil, err
	}

	// 2. Bar sync job (Postgres only)
	if a.db != nil {
		repo, err := a.priceRepository()
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureSchema(context.Background()); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		syncer := series.NewSyncer(a.yahoo, repo, a.log)
		syncJob := jobs.NewBarSyncJob(syncer, a.strategy.Universe.Tickers, a.strategy.Universe.Lookback(), schedulerSyncCron, a.log)
		if err := sched.AddJob(syncJob); err != nil {
			return nil, err
		}
	}

	// 3. In-process cache cleanup (Redis disabled)
	if a.memory != nil {
		if err := sched.AddJob(jobs.NewCacheCleanupJob(a.memory, a.log)); err != nil {
			return nil, err
		}
	}

	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.close()

	if !a.strategy.Schedule.Enabled {
		PrintWarning(cmd.OutOrStdout(), "schedule.enabled is false in the strategy; starting anyway")
	}

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// Start scheduler
	sched.Start()

	out := cmd.OutOrStdout()
	PrintSuccess(out, "Scheduler started")
	printJobs(cmd, sched)
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// Next activations are computed once cron is running
	sched.Start()
	defer sched.Stop()

	printJobs(cmd, sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	result, err := sched.RunJob(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !result.Success {
		return fmt.Errorf("job %s failed after %d attempts: %s", result.JobName, result.Attempts, result.Error)
	}
	PrintSuccess(out, fmt.Sprintf("Job %s completed in %s", result.JobName, result.Duration.Round(time.Millisecond)))
	return nil
}

func printJobs(cmd *cobra.Command, sched *scheduler.Scheduler) {
	out := cmd.OutOrStdout()
	stats := sched.GetJobStats()

	fmt.Fprintln(out, "\nRegistered jobs:")
	for _, name := range sched.GetAllJobs() {
		next, _ := sched.NextRun(name)
		line := fmt.Sprintf("%-20s %-18s", name, stats[name].Schedule)
		if !next.IsZero() {
			line += " next " + next.Format("2006-01-02 15:04 MST")
		}
		fmt.Fprintf(out, "  - %s\n", line)
	}
	fmt.Fprintln(out)
}
