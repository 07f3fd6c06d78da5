package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/s0_data"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/s0_data/quality"
)

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "입력 파일 데이터 품질 리포트",
	Long: `가격/시그널 파일을 읽어 종목별 커버리지와 품질 점수를 출력합니다.
계산이나 파일 기록은 하지 않습니다.

Example:
  go run ./cmd/voltarget quality
  go run ./cmd/voltarget quality --min-coverage 0.8`,
	RunE: runQuality,
}

var qualityMinCoverage float64

func init() {
	rootCmd.AddCommand(qualityCmd)
	qualityCmd.Flags().Float64Var(&qualityMinCoverage, "min-coverage", quality.DefaultConfig().MinCoverage, "coverage warning threshold")
}

func runQuality(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	gateConfig := quality.DefaultConfig()
	gateConfig.MinCoverage = qualityMinCoverage
	gate := quality.NewQualityGate(gateConfig)

	pricesPath := rt.cfg.Resolve(rt.strategy.Inputs.Prices)
	prices, priceStats, err := s0_data.ReadPrices(pricesPath)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}
	printQuality(gate, gate.Check(quality.KindPrices, &prices.Frame, priceStats))

	signalsPath := rt.cfg.Resolve(rt.strategy.Inputs.Signals)
	signals, signalStats, err := s0_data.ReadSignals(signalsPath, rt.strategy.Inputs.SignalColumn)
	if err != nil {
		return fmt.Errorf("load signals: %w", err)
	}
	printQuality(gate, gate.Check(quality.KindSignals, &signals.Frame, signalStats))

	return nil
}

func printQuality(gate *quality.QualityGate, s *contracts.DataQualitySnapshot) {
	PrintDoubleSeparator()
	fmt.Printf("  %s: %s\n", s.Kind, s.Source)
	PrintSeparator()
	PrintKeyValue("Period", fmt.Sprintf("%s ~ %s", s.From.Format(time.DateOnly), s.To.Format(time.DateOnly)), 16)
	PrintKeyValue("Dates", fmt.Sprint(s.Dates), 16)
	PrintKeyValue("Instruments", fmt.Sprint(s.Instruments), 16)
	PrintKeyValue("Rows read", fmt.Sprint(s.RowsRead), 16)
	PrintKeyValue("Rows dropped", fmt.Sprint(s.RowsDropped), 16)
	PrintKeyValue("Duplicates", fmt.Sprint(s.DuplicateDates), 16)
	PrintKeyValue("Coverage", fmt.Sprintf("%.1f%%", s.CoverageRate()*100), 16)
	PrintKeyValue("Score", fmt.Sprintf("%.3f", s.QualityScore), 16)

	if low := gate.LowCoverage(s); len(low) > 0 {
		PrintWarning(fmt.Sprintf("%d instrument(s) below coverage threshold", len(low)))
		PrintList(low)
	}
	if gate.Passed(s) {
		PrintSuccess("quality gate passed")
	} else {
		PrintError("quality gate failed")
	}
}
