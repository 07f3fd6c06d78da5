package audit

import (
	"context"
	"errors"
	"math"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

// ErrNotFound is returned when a run id is unknown
var ErrNotFound = errors.New("audit record not found")

// Store persists run audit records (V7)
// 구현: Repository (PostgreSQL), SQLiteRepository (로컬 실행)
type Store interface {
	EnsureSchema(ctx context.Context) error
	SaveRun(ctx context.Context, run *contracts.RunSnapshot, quality []contracts.DataQualitySnapshot, rows []contracts.WeightRow) error
	GetRun(ctx context.Context, runID string) (*contracts.RunSnapshot, error)
	ListRuns(ctx context.Context, strategyID string, limit int) ([]contracts.RunSnapshot, error)
	GetWeights(ctx context.Context, runID string) ([]contracts.WeightRow, error)
}

// BuildRows flattens the aligned inputs and both weight matrices into long format.
// Cells where every value is missing are skipped.
func BuildRows(pair *contracts.AlignedPair, pre, post *contracts.WeightMatrix) []contracts.WeightRow {
	rows := make([]contracts.WeightRow, 0, pre.Rows()*pre.Cols())

	for i, date := range pre.Dates {
		for j, ticker := range pre.Columns {
			row := contracts.WeightRow{
				Date:          date,
				Ticker:        ticker,
				Signal:        ptr(pair.Signals.Values[i][j]),
				Volatility:    ptr(pair.Volatility.Values[i][j]),
				WeightPreCap:  ptr(pre.Values[i][j]),
				WeightPostCap: ptr(post.Values[i][j]),
			}
			if row.Signal == nil && row.Volatility == nil && row.WeightPreCap == nil && row.WeightPostCap == nil {
				continue
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// ptr maps missing (NaN/Inf) to nil → SQL NULL
func ptr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*SQLiteRepository)(nil)
)
