package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/brain"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/strategyconfig"
)

// runCmd executes the full pipeline
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "전체 파이프라인 실행 (V0 → V7)",
	Long: `가격/시그널 파일을 읽어 변동성, 캡 이전/이후 비중 파일을 기록합니다.

플래그는 전략 파일 값을 덮어씁니다.

V7 (선택):
- DB_ENABLED=true      → PostgreSQL audit
- SQLITE_PATH=...      → SQLite audit
- REDIS_ENABLED=true   → 최신 비중 publish
- METRICS_TEXTFILE=... → node-exporter textfile

Example:
  go run ./cmd/voltarget run
  go run ./cmd/voltarget run --prices data/prices.xlsx --target-vol 0.15
  go run ./cmd/voltarget run --cap 0.2 --workers 8 --no-audit`,
	RunE: runPipeline,
}

var (
	runPrices         string
	runSignals        string
	runSignalColumn   string
	runVolOut         string
	runPreOut         string
	runPostOut        string
	runTargetVol      float64
	runCap            float64
	runCom            float64
	runAnnualDays     int
	runEps            float64
	runWorkers        int
	runRequireQuality bool
	runNoAudit        bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	addInputFlags(runCmd)
	runCmd.Flags().StringVar(&runSignals, "signals", "", "signal file (long format)")
	runCmd.Flags().StringVar(&runSignalColumn, "signal-column", "", "signal value column")
	runCmd.Flags().StringVar(&runPreOut, "pre-out", "", "pre-cap weights output")
	runCmd.Flags().StringVar(&runPostOut, "post-out", "", "post-cap weights output")
	runCmd.Flags().Float64Var(&runTargetVol, "target-vol", 0, "annualized portfolio volatility target")
	runCmd.Flags().Float64Var(&runCap, "cap", 0, "per-instrument absolute weight cap")
	runCmd.Flags().Float64Var(&runEps, "eps", 0, "numerical floor")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "parallel weight workers (1 = sequential)")
	runCmd.Flags().BoolVar(&runRequireQuality, "require-quality", false, "fail when an input is below the quality threshold")
	runCmd.Flags().BoolVar(&runNoAudit, "no-audit", false, "skip the audit store even if configured")
}

// addInputFlags registers the flags shared by run and vol
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runPrices, "prices", "", "price file (wide, .csv or .xlsx)")
	cmd.Flags().StringVar(&runVolOut, "vol-out", "", "volatility output")
	cmd.Flags().Float64Var(&runCom, "com", -1, "EWMA center of mass")
	cmd.Flags().IntVar(&runAnnualDays, "annual-days", 0, "annualization days")
}

// applyOverrides copies changed flags onto the strategy and re-validates it
func applyOverrides(cmd *cobra.Command, s *strategyconfig.Config) error {
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			apply()
		}
	}

	set("prices", func() { s.Inputs.Prices = runPrices })
	set("signals", func() { s.Inputs.Signals = runSignals })
	set("signal-column", func() { s.Inputs.SignalColumn = runSignalColumn })
	set("vol-out", func() { s.Outputs.Volatility = runVolOut })
	set("pre-out", func() { s.Outputs.WeightsBeforeCaps = runPreOut })
	set("post-out", func() { s.Outputs.WeightsAfterCaps = runPostOut })
	set("target-vol", func() { s.Risk.TargetVol = runTargetVol })
	set("cap", func() { s.Risk.PerInstrumentCap = runCap })
	set("com", func() { s.Risk.EWMACom = runCom })
	set("annual-days", func() { s.Risk.AnnualDays = runAnnualDays })
	set("eps", func() { s.Risk.Eps = runEps })
	set("workers", func() { s.Execution.Workers = runWorkers })

	if err := strategyconfig.Validate(s); err != nil {
		return fmt.Errorf("invalid strategy: %w", err)
	}
	return nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	if err := applyOverrides(cmd, rt.strategy); err != nil {
		return err
	}
	for _, w := range strategyconfig.Warn(rt.strategy) {
		rt.log.WithField("code", w.Code).Warn(w.Message)
	}

	hash, err := strategyconfig.Hash(rt.strategy)
	if err != nil {
		return fmt.Errorf("hash strategy: %w", err)
	}

	ctx := cmd.Context()
	sinks, closeSinks, err := rt.openSinks(ctx, !runNoAudit)
	if err != nil {
		return err
	}
	defer closeSinks()

	orchestrator, err := brain.NewOrchestrator(rt.strategy, nil, sinks, rt.log)
	if err != nil {
		return fmt.Errorf("init orchestrator: %w", err)
	}

	runConfig := brain.NewRunConfig(rt.strategy, hash, rt.cfg.Resolve)
	runConfig.MetricsTextfile = rt.cfg.Resolve(rt.cfg.MetricsTextfile)
	runConfig.RequireQuality = runRequireQuality

	PrintDoubleSeparator()
	fmt.Printf("  voltarget run %s\n", runConfig.RunID)
	PrintSeparator()
	PrintKeyValue("Strategy", fmt.Sprintf("%s (%s)", rt.strategy.Meta.StrategyID, rt.source), 12)
	PrintKeyValue("Config", hash[:12], 12)
	PrintKeyValue("Git", getGitSHA(), 12)
	PrintKeyValue("Target vol", fmt.Sprintf("%.2f%%", rt.strategy.Risk.TargetVol*100), 12)
	PrintKeyValue("Cap", fmt.Sprintf("±%.2f%%", rt.strategy.Risk.PerInstrumentCap*100), 12)
	PrintSeparator()

	result, err := orchestrator.Run(ctx, runConfig)
	if err != nil {
		PrintError(err.Error())
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	printRunResult(result, runConfig)
	return nil
}

func printRunResult(result *brain.RunResult, config brain.RunConfig) {
	fmt.Println()
	PrintSuccess(fmt.Sprintf("Pipeline run completed in %.2fs", result.Duration.Seconds()))
	fmt.Println()

	fmt.Println("Completed Stages:")
	for _, stage := range result.CompletedStages {
		fmt.Printf("  ✅ %s\n", stage)
	}
	fmt.Println()

	s := result.Summary
	fmt.Println("Summary:")
	PrintKeyValue("Dates", fmt.Sprintf("%d (%s ~ %s)", s.Dates,
		result.PostCap.First().Format(time.DateOnly), result.PostCap.Last().Format(time.DateOnly)), 20)
	PrintKeyValue("Instruments", fmt.Sprint(s.Instruments), 20)
	PrintKeyValue("Zero-signal dates", fmt.Sprint(s.ZeroSignalDates), 20)
	PrintKeyValue("Floored vol cells", fmt.Sprint(s.FlooredVolCells), 20)
	PrintKeyValue("Capped cells", fmt.Sprint(s.CappedCells), 20)
	PrintKeyValue("Gross (pre → post)", fmt.Sprintf("%.4f → %.4f", s.MeanGrossPreCap, s.MeanGrossPostCap), 20)
	PrintKeyValue("Risk norm (pre→post)", fmt.Sprintf("%.4f → %.4f", s.MeanRiskNormPreCap, s.MeanRiskNormPostCap), 20)
	fmt.Println()

	if result.Latest != nil {
		fmt.Printf("Latest weights (%s):\n", result.Latest.Date.Format(time.DateOnly))
		printWeights(result.Latest.Weights)
		fmt.Println()
	}

	fmt.Println("Outputs:")
	PrintList([]string{config.VolatilityPath, config.PreCapPath, config.PostCapPath})
}

func printWeights(weights map[string]float64) {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	widths := []int{12, 12}
	PrintTableHeader([]string{"Ticker", "Weight"}, widths)
	for _, name := range names {
		PrintTableRow([]string{name, fmt.Sprintf("%+.4f", weights[name])}, widths)
	}
}
