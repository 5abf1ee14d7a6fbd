package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-screener/internal/series"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [ticker...]",
	Short: "Pull daily bars from Yahoo into Postgres",
	Long: `Fetches daily bars for the given tickers (default: strategy universe)
and upserts them into market.daily_bars. Requires DATABASE_URL.

Afterwards screens can run offline with --source db.

Example:
  go run ./cmd/screener fetch
  go run ./cmd/screener fetch AAPL NVDA --days 365`,
	RunE: runFetch,
}

var fetchDays int

func init() {
	rootCmd.AddCommand(fetchCmd)

	// Flags
	fetchCmd.Flags().IntVar(&fetchDays, "days", 0, "lookback in calendar days (default: strategy lookback_days)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	repo, err := a.priceRepository()
	if err != nil {
		return err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	tickers := a.strategy.Universe.Tickers
	if len(args) > 0 {
		tickers = make([]string, len(args))
		for i, t := range args {
			tickers[i] = strings.ToUpper(t)
		}
	}

	universe := a.strategy.Universe
	if fetchDays > 0 {
		universe.LookbackDays = fetchDays
	}

	syncer := series.NewSyncer(a.yahoo, repo, a.log)
	result, err := syncer.Sync(ctx, tickers, universe.Lookback())
	if err != nil {
		return fmt.Errorf("sync bars: %w", err)
	}

	out := cmd.OutOrStdout()
	PrintSuccess(out, fmt.Sprintf("Saved %d bars for %d tickers", result.Saved, result.Tickers-len(result.Failed)))
	if len(result.Failed) > 0 {
		failed := make([]string, 0, len(result.Failed))
		for t := range result.Failed {
			failed = append(failed, t)
		}
		sort.Strings(failed)
		for _, t := range failed {
			PrintWarning(out, fmt.Sprintf("%s: %s", t, result.Failed[t]))
		}
	}
	return nil
}
