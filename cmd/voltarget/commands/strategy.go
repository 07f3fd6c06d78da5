package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/strategyconfig"
)

var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "전략 파일 검증/해시/출력",
	Long: `전략 YAML 파일을 다룹니다.

명령어:
  validate  구조/범위 검증 + 경고
  hash      정규화된 설정의 SHA256
  show      기본값이 채워진 실제 설정 출력

Example:
  go run ./cmd/voltarget strategy validate --strategy strategies/default.yaml
  go run ./cmd/voltarget strategy hash
  go run ./cmd/voltarget strategy show --json`,
}

var strategyShowJSON bool

var (
	strategyValidateCmd = &cobra.Command{
		Use:   "validate",
		Short: "전략 파일 검증",
		RunE:  runStrategyValidate,
	}

	strategyHashCmd = &cobra.Command{
		Use:   "hash",
		Short: "설정 해시 출력",
		RunE:  runStrategyHash,
	}

	strategyShowCmd = &cobra.Command{
		Use:   "show",
		Short: "실제 적용 설정 출력",
		RunE:  runStrategyShow,
	}
)

func init() {
	rootCmd.AddCommand(strategyCmd)
	strategyCmd.AddCommand(strategyValidateCmd, strategyHashCmd, strategyShowCmd)

	strategyShowCmd.Flags().BoolVar(&strategyShowJSON, "json", false, "print the run snapshot as JSON")
}

func runStrategyValidate(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintSuccess(fmt.Sprintf("%s: valid (strategy_id=%s)", rt.source, rt.strategy.Meta.StrategyID))

	warnings := strategyconfig.Warn(rt.strategy)
	for _, w := range warnings {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
	return nil
}

func runStrategyHash(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	hash, err := strategyconfig.Hash(rt.strategy)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func runStrategyShow(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	effective, err := strategyconfig.Marshal(rt.strategy)
	if err != nil {
		return err
	}

	if !strategyShowJSON {
		fmt.Print(string(effective))
		return nil
	}

	snapshot, err := strategyconfig.NewRunSnapshot(rt.strategy, effective, getGitSHA())
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
