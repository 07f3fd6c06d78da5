package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	env          string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "voltarget",
	Short: "변동성 타겟 비중 파이프라인",
	Long: `voltarget CLI

가격과 추세 시그널로부터 종목별 EWMA 변동성, 목표 변동성 비중,
종목당 캡 적용 비중을 계산합니다.

V0 Prices → V1 Volatility → V2 Signals → V3 Align → V4 Weights → V5 Caps → V6 Output → V7 Audit

Usage:
  go run ./cmd/voltarget [command]

Examples:
  go run ./cmd/voltarget run
  go run ./cmd/voltarget run --strategy strategies/default.yaml --workers 4
  go run ./cmd/voltarget vol --prices data/prices_daily.csv
  go run ./cmd/voltarget strategy validate
  go run ./cmd/voltarget quality`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// 플래그가 환경변수보다 우선
		if cmd.Flags().Changed("env") {
			os.Setenv("ENV", env)
		}
		if verbose {
			os.Setenv("LOG_LEVEL", "debug")
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML file (default: $STRATEGY_FILE or built-in)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
