package contracts

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel roots for errors.Is
var (
	ErrSchema    = errors.New("schema error")
	ErrAlignment = errors.New("alignment error")
)

// SchemaError: 입력 파일에 필수 컬럼 없음 (치명적, 계산 전 중단)
type SchemaError struct {
	Source  string   // file path or logical input name
	Missing []string // required columns that were not found
	Present []string // header actually read
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required column(s) %s (have: %s)",
		e.Source, strings.Join(e.Missing, ", "), strings.Join(e.Present, ", "))
}

// Is makes errors.Is(err, ErrSchema) work on wrapped SchemaErrors
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// AlignmentError: 시그널/변동성 종목 교집합이 비어 있음 (치명적, 비중 계산 전 중단)
type AlignmentError struct {
	SignalColumns     []string
	VolatilityColumns []string
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("no common tickers between signals (%d: %s) and volatility (%d: %s)",
		len(e.SignalColumns), preview(e.SignalColumns),
		len(e.VolatilityColumns), preview(e.VolatilityColumns))
}

// Is makes errors.Is(err, ErrAlignment) work on wrapped AlignmentErrors
func (e *AlignmentError) Is(target error) bool {
	return target == ErrAlignment
}

func preview(cols []string) string {
	const maxShown = 5
	if len(cols) <= maxShown {
		return strings.Join(cols, ",")
	}
	return strings.Join(cols[:maxShown], ",") + ",…"
}
