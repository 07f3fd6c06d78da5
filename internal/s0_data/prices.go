package s0_data

import (
	"fmt"
	"sort"
	"time"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

// LoadStats counts what a loader read and discarded
type LoadStats struct {
	Source         string
	RowsRead       int
	RowsDropped    int // 날짜 파싱 실패 (또는 필수 값 없음)
	DuplicateDates int // 같은 날짜가 다시 나와 마지막 값으로 대체됨
}

// LoadPrices reads a wide price table (V0)
func LoadPrices(path string) (*contracts.PriceMatrix, error) {
	m, _, err := ReadPrices(path)
	return m, err
}

// ReadPrices reads a wide price table and reports load statistics
// ⭐ SSOT: 가격 입력 정규화는 여기서만
//
// 날짜 컬럼: "time" 우선, 없으면 "date". 나머지 컬럼은 파일 순서대로 종목.
func ReadPrices(path string) (*contracts.PriceMatrix, LoadStats, error) {
	stats := LoadStats{Source: path}

	t, err := ReadTable(path)
	if err != nil {
		return nil, stats, err
	}

	dateIdx, _, ok := resolveDateColumn(t)
	if !ok {
		return nil, stats, &contracts.SchemaError{
			Source:  path,
			Missing: []string{"time|date"},
			Present: t.Header,
		}
	}

	// 종목 컬럼: 날짜 후보 컬럼/빈 헤더 무시, 중복 헤더는 첫 번째만 사용
	var (
		columns []string
		colIdx  []int
	)
	seen := make(map[string]bool, len(t.Header))
	for _, name := range dateColumns {
		seen[name] = true
	}
	for j, name := range t.Header {
		if j == dateIdx || name == "" || seen[name] {
			continue
		}
		seen[name] = true
		columns = append(columns, name)
		colIdx = append(colIdx, j)
	}

	type record struct {
		date   time.Time
		values []float64
	}

	records := make([]record, 0, len(t.Rows))
	for _, row := range t.Rows {
		stats.RowsRead++

		date, ok := parseDate(t.Cell(row, dateIdx), t.Format)
		if !ok {
			stats.RowsDropped++
			continue
		}

		values := make([]float64, len(colIdx))
		for k, j := range colIdx {
			values[k] = parseValue(t.Cell(row, j))
		}
		records = append(records, record{date: date, values: values})
	}

	// 안정 정렬 → 같은 날짜는 파일 순서 유지, 마지막 행이 이김
	sort.SliceStable(records, func(a, b int) bool {
		return records[a].date.Before(records[b].date)
	})

	dates := make([]time.Time, 0, len(records))
	values := make([][]float64, 0, len(records))
	for _, rec := range records {
		if n := len(dates); n > 0 && dates[n-1].Equal(rec.date) {
			values[n-1] = rec.values
			stats.DuplicateDates++
			continue
		}
		dates = append(dates, rec.date)
		values = append(values, rec.values)
	}

	m := &contracts.PriceMatrix{Frame: contracts.Frame{
		Dates:   dates,
		Columns: columns,
		Values:  values,
	}}
	if err := m.Validate(); err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	return m, stats, nil
}
