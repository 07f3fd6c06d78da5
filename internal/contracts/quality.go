package contracts

import (
	"sort"
	"time"
)

// DataQualitySnapshot describes one loaded input (prices or signals)
// ⭐ SSOT: V0/V2 → 로그/감사용 데이터 품질 정보
type DataQualitySnapshot struct {
	Source         string             `json:"source"`
	Kind           string             `json:"kind"` // "prices" | "signals"
	From           time.Time          `json:"from"`
	To             time.Time          `json:"to"`
	Dates          int                `json:"dates"`
	Instruments    int                `json:"instruments"`
	RowsRead       int                `json:"rows_read"`
	RowsDropped    int                `json:"rows_dropped"`    // 날짜 파싱 실패
	DuplicateDates int                `json:"duplicate_dates"` // 마지막 값으로 대체됨
	Coverage       map[string]float64 `json:"coverage"`        // 종목별 유효 셀 비율
	QualityScore   float64            `json:"quality_score"`   // 0.0 ~ 1.0
}

// CoverageRate returns the average coverage across instruments
func (d *DataQualitySnapshot) CoverageRate() float64 {
	if len(d.Coverage) == 0 {
		return 0.0
	}

	total := 0.0
	for _, rate := range d.Coverage {
		total += rate
	}
	return total / float64(len(d.Coverage))
}

// LowCoverage returns instruments whose coverage is below threshold, sorted by name
func (d *DataQualitySnapshot) LowCoverage(threshold float64) []string {
	var out []string
	for name, rate := range d.Coverage {
		if rate < threshold {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// IsValid checks the snapshot against a minimum quality score
func (d *DataQualitySnapshot) IsValid(minScore float64) bool {
	return d.Dates > 0 && d.Instruments > 0 && d.QualityScore >= minScore
}
