package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "V7 audit 실행 이력 조회",
	Long: `DB_ENABLED 또는 SQLITE_PATH로 저장된 실행 이력을 조회합니다.

Example:
  go run ./cmd/voltarget runs list --limit 10
  go run ./cmd/voltarget runs show <run-id>`,
}

var runsLimit int

var (
	runsListCmd = &cobra.Command{
		Use:   "list",
		Short: "최근 실행 목록",
		RunE:  runRunsList,
	}

	runsShowCmd = &cobra.Command{
		Use:   "show <run-id>",
		Short: "실행 상세 (요약 + 마지막 날짜 비중)",
		Args:  cobra.ExactArgs(1),
		RunE:  runRunsShow,
	}
)

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd, runsShowCmd)

	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs")
}

func runRunsList(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	store, closeStore, err := rt.openStore(cmd.Context())
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("no audit store configured (set DB_ENABLED or SQLITE_PATH)")
	}
	defer closeStore()

	runs, err := store.ListRuns(cmd.Context(), rt.strategy.Meta.StrategyID, runsLimit)
	if err != nil {
		return err
	}

	widths := []int{36, 20, 10, 8, 8}
	PrintTableHeader([]string{"Run ID", "Started", "Last date", "Dates", "Capped"}, widths)
	for _, r := range runs {
		PrintTableRow([]string{
			r.RunID,
			r.StartedAt.Local().Format(time.DateTime),
			r.LastDate.Format(time.DateOnly),
			strconv.Itoa(r.Summary.Dates),
			strconv.Itoa(r.Summary.CappedCells),
		}, widths)
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	store, closeStore, err := rt.openStore(cmd.Context())
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("no audit store configured (set DB_ENABLED or SQLITE_PATH)")
	}
	defer closeStore()

	run, err := store.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	PrintDoubleSeparator()
	fmt.Printf("  run %s\n", run.RunID)
	PrintSeparator()
	PrintKeyValue("Strategy", run.StrategyID, 12)
	PrintKeyValue("Config", run.ConfigHash, 12)
	PrintKeyValue("Prices", run.PricesPath, 12)
	PrintKeyValue("Signals", run.SignalsPath, 12)
	PrintKeyValue("Started", run.StartedAt.Local().Format(time.DateTime), 12)
	PrintKeyValue("Duration", run.Duration.String(), 12)
	PrintKeyValue("Dates", fmt.Sprintf("%d (%s ~ %s)", run.Summary.Dates,
		run.FirstDate.Format(time.DateOnly), run.LastDate.Format(time.DateOnly)), 12)
	PrintSeparator()

	rows, err := store.GetWeights(cmd.Context(), run.RunID)
	if err != nil {
		return err
	}
	latest := make(map[string]float64)
	for _, r := range rows {
		if r.Date.Equal(run.LastDate) && r.WeightPostCap != nil {
			latest[r.Ticker] = *r.WeightPostCap
		}
	}
	if len(latest) > 0 {
		fmt.Printf("Post-cap weights on %s:\n", run.LastDate.Format(time.DateOnly))
		printWeights(latest)
	}
	return nil
}
