package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	modeFlag     string
	sourceFlag   string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Aegis Screener - US stock technical screener",
	Long: `Aegis Screener CLI

Daily bars → SMA / RSI / MACD / volume / return → rule score → ranking.

Modes:
  opportunity  trend + mean reversion, one score 0..6
  momentum     independent buy / sell scores 0..3

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener screen
  go run ./cmd/screener screen --mode momentum --top 5
  go run ./cmd/screener chart NVDA --format parquet
  go run ./cmd/screener fetch
  go run ./cmd/screener serve`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: STRATEGY_FILE or built-in)")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "scoring mode override (opportunity|momentum)")
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "yahoo", "bar source (yahoo|db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
