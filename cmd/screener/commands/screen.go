package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-screener/internal/brain"
	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/internal/export"
	"github.com/wonny/aegis-screener/internal/selection"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run one screening pass and print the rankings",
	Long: `Fetches ~3 months of daily bars for every universe ticker, computes
indicators, scores each ticker and prints the rankings.

The top N of every ranking get their indicator series exported.

Example:
  go run ./cmd/screener screen
  go run ./cmd/screener screen --mode momentum --top 5
  go run ./cmd/screener screen --format parquet --export-dir ./charts
  go run ./cmd/screener screen --json > run.json`,
	RunE: runScreen,
}

var (
	screenTop       int
	screenExportDir string
	screenFormat    string
	screenJSON      bool
)

func init() {
	rootCmd.AddCommand(screenCmd)

	// Flags
	screenCmd.Flags().IntVar(&screenTop, "top", 0, "charts per ranking, 1..5 (default: strategy chart.top_n)")
	screenCmd.Flags().StringVar(&screenExportDir, "export-dir", "charts", "chart export directory")
	screenCmd.Flags().StringVar(&screenFormat, "format", "csv", "chart export format (csv|parquet|json|none)")
	screenCmd.Flags().BoolVar(&screenJSON, "json", false, "print the run result as JSON instead of tables")
}

func runScreen(cmd *cobra.Command, args []string) error {
	if screenTop < 0 || screenTop > 5 {
		return fmt.Errorf("--top must be in 1..5")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	var writer export.Writer
	if screenFormat != "none" {
		if writer, err = export.NewWriter(screenFormat); err != nil {
			return err
		}
	}

	orchestrator, err := a.orchestrator(a.strategy.Mode, writer != nil)
	if err != nil {
		return fmt.Errorf("init orchestrator: %w", err)
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	progress := func(done, total int, outcome contracts.TickerOutcome) {
		if screenJSON {
			return
		}
		fmt.Fprintf(errOut, "[Screen] %-6s %-8s [%d/%d]\n", outcome.Ticker, outcome.Status, done, total)
	}

	config := a.runConfig(screenTop)
	result, err := orchestrator.Run(ctx, config, progress)
	if err != nil && !result.Cancelled {
		return fmt.Errorf("screening run: %w", err)
	}

	if screenJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(out, result, len(config.Tickers))

	if result.Cancelled {
		PrintWarning(out, "Run interrupted; rankings cover completed tickers only")
		return nil
	}

	if writer != nil && len(result.ChartOrder) > 0 {
		dir := filepath.Join(screenExportDir, result.RunID)
		for _, ticker := range result.ChartOrder {
			path, err := export.WriteFile(dir, ticker, result.Charts[ticker], writer)
			if err != nil {
				return fmt.Errorf("export %s: %w", ticker, err)
			}
			PrintSuccess(out, fmt.Sprintf("Chart %s → %s", ticker, path))
		}
	}

	return nil
}

// printResult prints every ranking of a run, then the tickers no ranking covers
func printResult(w io.Writer, result *brain.RunResult, tickers int) {
	PrintRunHeader(w, result, tickers)

	var excluded []selection.Exclusion
	for _, key := range selection.KeysForMode(result.Mode) {
		ranking, ok := result.Rankings[key]
		if !ok {
			continue
		}
		excluded = ranking.Excluded

		fmt.Fprintln(w)
		title := titleStyle.Render(rankingTitle(key))
		if key == selection.OrderOpportunity {
			title = fmt.Sprintf("%s (score ≥ %d)", title, ranking.Floor)
		}
		fmt.Fprintln(w, title)
		if len(ranking.Entries) == 0 {
			PrintWarning(w, "No ticker reached the floor")
		} else {
			fmt.Fprintln(w, RenderRanking(ranking, 0))
		}
		fmt.Fprintln(w, RenderStats(ranking.Stats))
	}

	if len(excluded) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Excluded:")
		for _, ex := range excluded {
			fmt.Fprintf(w, "   • %s %s: %s\n", ex.Ticker, ex.Status, ex.Reason)
		}
	}
	fmt.Fprintln(w)
}

func rankingTitle(key selection.OrderKey) string {
	switch key {
	case selection.OrderBuy:
		return "Buy signals"
	case selection.OrderSell:
		return "Sell signals"
	default:
		return "Opportunities"
	}
}
