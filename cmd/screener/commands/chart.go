package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-screener/internal/export"
)

// chartCmd represents the chart command
var chartCmd = &cobra.Command{
	Use:   "chart <ticker>",
	Short: "Export the indicator series of one ticker",
	Long: `Computes the full indicator series (close, SMA, RSI, MACD, volume SMA,
N-day return) for one ticker and writes it to a file.

Example:
  go run ./cmd/screener chart NVDA
  go run ./cmd/screener chart AAPL --mode momentum --format parquet --out ./charts`,
	Args: cobra.ExactArgs(1),
	RunE: runChart,
}

var (
	chartOut    string
	chartFormat string
)

func init() {
	rootCmd.AddCommand(chartCmd)

	// Flags
	chartCmd.Flags().StringVar(&chartOut, "out", "charts", "output directory")
	chartCmd.Flags().StringVar(&chartFormat, "format", "csv", "export format (csv|parquet|json)")
}

func runChart(cmd *cobra.Command, args []string) error {
	ticker := strings.ToUpper(strings.TrimSpace(args[0]))

	writer, err := export.NewWriter(chartFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	orchestrator, err := a.orchestrator(a.strategy.Mode, true)
	if err != nil {
		return fmt.Errorf("init orchestrator: %w", err)
	}

	sets, err := orchestrator.Chart(ctx, ticker)
	if err != nil {
		return fmt.Errorf("chart %s: %w", ticker, err)
	}

	path, err := export.WriteFile(chartOut, ticker, sets, writer)
	if err != nil {
		return err
	}

	PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s: %d bars → %s", ticker, len(sets), path))
	return nil
}
