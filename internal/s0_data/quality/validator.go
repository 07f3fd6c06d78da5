package quality

import (
	"math"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/s0_data"
)

// Input kinds
const (
	KindPrices  = "prices"
	KindSignals = "signals"
)

// QualityGate scores loaded inputs and generates snapshots
type QualityGate struct {
	config Config
}

// Config holds quality gate thresholds
type Config struct {
	MinCoverage float64 `yaml:"min_coverage"` // 종목별 커버리지 경고 기준
	MinScore    float64 `yaml:"min_score"`    // 이 점수 미만이면 Passed=false
}

// DefaultConfig returns the thresholds used by the CLI
func DefaultConfig() Config {
	return Config{
		MinCoverage: 0.5,
		MinScore:    0.5,
	}
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config Config) *QualityGate {
	return &QualityGate{config: config}
}

// Check builds the quality snapshot of one loaded matrix
// ⭐ SSOT: V0/V2 → 품질 스냅샷
func (g *QualityGate) Check(kind string, f *contracts.Frame, stats s0_data.LoadStats) *contracts.DataQualitySnapshot {
	snapshot := &contracts.DataQualitySnapshot{
		Source:         stats.Source,
		Kind:           kind,
		From:           f.First(),
		To:             f.Last(),
		Dates:          f.Rows(),
		Instruments:    f.Cols(),
		RowsRead:       stats.RowsRead,
		RowsDropped:    stats.RowsDropped,
		DuplicateDates: stats.DuplicateDates,
		Coverage:       coverage(f),
	}
	snapshot.QualityScore = g.calculateScore(snapshot)
	return snapshot
}

// Passed reports whether a snapshot meets the minimum score
func (g *QualityGate) Passed(s *contracts.DataQualitySnapshot) bool {
	return s.IsValid(g.config.MinScore)
}

// LowCoverage lists instruments under the coverage threshold
func (g *QualityGate) LowCoverage(s *contracts.DataQualitySnapshot) []string {
	return s.LowCoverage(g.config.MinCoverage)
}

// coverage returns the share of finite cells per instrument
func coverage(f *contracts.Frame) map[string]float64 {
	out := make(map[string]float64, f.Cols())
	if f.Rows() == 0 {
		for _, name := range f.Columns {
			out[name] = 0
		}
		return out
	}

	for j, name := range f.Columns {
		n := 0
		for _, row := range f.Values {
			if v := row[j]; !math.IsNaN(v) && !math.IsInf(v, 0) {
				n++
			}
		}
		out[name] = float64(n) / float64(f.Rows())
	}
	return out
}

// calculateScore: 평균 커버리지 × 유효 행 비율
func (g *QualityGate) calculateScore(s *contracts.DataQualitySnapshot) float64 {
	if s.RowsRead == 0 {
		return 0
	}
	kept := float64(s.RowsRead-s.RowsDropped) / float64(s.RowsRead)
	return s.CoverageRate() * kept
}
