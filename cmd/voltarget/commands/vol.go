package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/brain"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/strategyconfig"
)

// volCmd runs V0 → V1 only
var volCmd = &cobra.Command{
	Use:   "vol",
	Short: "가격 → 연율화 EWMA 변동성 파일만 계산",
	Long: `가격 파일에서 종목별 연율화 EWMA 변동성을 계산해 기록합니다.
시그널 파일은 읽지 않습니다.

Example:
  go run ./cmd/voltarget vol
  go run ./cmd/voltarget vol --prices data/prices.xlsx --vol-out output/vol.xlsx --com 30`,
	RunE: runVol,
}

func init() {
	rootCmd.AddCommand(volCmd)
	addInputFlags(volCmd)
}

func runVol(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	if err := applyOverrides(cmd, rt.strategy); err != nil {
		return err
	}

	orchestrator, err := brain.NewOrchestrator(rt.strategy, nil, brain.Sinks{}, rt.log)
	if err != nil {
		return fmt.Errorf("init orchestrator: %w", err)
	}

	hash, err := strategyconfig.Hash(rt.strategy)
	if err != nil {
		return err
	}
	runConfig := brain.NewRunConfig(rt.strategy, hash, rt.cfg.Resolve)

	result, err := orchestrator.RunVolatility(cmd.Context(), runConfig)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintSuccess(fmt.Sprintf("Volatility written: %s (%d dates × %d instruments, %.2fs)",
		runConfig.VolatilityPath, result.Volatility.Rows(), result.Volatility.Cols(), result.Duration.Seconds()))
	return nil
}
