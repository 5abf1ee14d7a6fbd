package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/aegis-screener/internal/strategyconfig"
)

// strategyCmd represents the strategy command
var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Inspect strategy files",
	Long: `Validates a strategy YAML and prints the effective configuration.

Example:
  go run ./cmd/screener strategy check config/strategy/us_momentum.yaml
  go run ./cmd/screener strategy show`,
}

var (
	strategyCheckCmd = &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a strategy file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStrategyCheck,
	}

	strategyShowCmd = &cobra.Command{
		Use:   "show [file]",
		Short: "Print the effective strategy with defaults applied",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStrategyShow,
	}
)

func init() {
	rootCmd.AddCommand(strategyCmd)
	strategyCmd.AddCommand(strategyCheckCmd)
	strategyCmd.AddCommand(strategyShowCmd)
}

// loadStrategyArg loads the file argument, --strategy, or the built-in default
func loadStrategyArg(args []string) (*strategyconfig.Config, error) {
	path := strategyFile
	if len(args) == 1 {
		path = args[0]
	}
	return strategyconfig.LoadOrDefault(path)
}

func runStrategyCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadStrategyArg(args)
	if err != nil {
		return err
	}
	if err := strategyconfig.Validate(cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return err
	}

	PrintSuccess(out, fmt.Sprintf("%s v%s is valid (%s, %d tickers)", cfg.Meta.StrategyID, cfg.Meta.Version, cfg.Mode, len(cfg.Universe.Tickers)))
	PrintKeyValue(out, "Hash", hash, 6)
	for _, w := range strategyconfig.Warn(cfg) {
		PrintWarning(out, fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
	return nil
}

func runStrategyShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadStrategyArg(args)
	if err != nil {
		return err
	}

	// 프리셋 지표 설정을 명시적으로 출력
	indicatorCfg := cfg.IndicatorConfig()
	cfg.Indicators = &indicatorCfg

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}
