package s0_data

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

// DefaultSignalColumn is the value column of the long signal table
const DefaultSignalColumn = "signal_12m"

// TickerColumn is the instrument column of the long signal table
const TickerColumn = "ticker"

// SignalSchema is the validated column layout of a long signal table
type SignalSchema struct {
	DateIndex   int
	DateColumn  string
	TickerIndex int
	ValueIndex  int
	ValueColumn string
}

// ResolveSignalSchema validates the header once; every missing column is reported together
func ResolveSignalSchema(t *Table, valueColumn string) (*SignalSchema, error) {
	if valueColumn == "" {
		valueColumn = DefaultSignalColumn
	}

	var missing []string
	dateIdx, dateCol, ok := resolveDateColumn(t)
	if !ok {
		missing = append(missing, "time|date")
	}
	tickerIdx := t.Index(TickerColumn)
	if tickerIdx < 0 {
		missing = append(missing, TickerColumn)
	}
	valueIdx := t.Index(valueColumn)
	if valueIdx < 0 {
		missing = append(missing, valueColumn)
	}

	if len(missing) > 0 {
		return nil, &contracts.SchemaError{
			Source:  t.Source,
			Missing: missing,
			Present: t.Header,
		}
	}

	return &SignalSchema{
		DateIndex:   dateIdx,
		DateColumn:  dateCol,
		TickerIndex: tickerIdx,
		ValueIndex:  valueIdx,
		ValueColumn: valueColumn,
	}, nil
}

// LoadSignals reads a long-format signal table and pivots it wide (V2)
func LoadSignals(path, valueColumn string) (*contracts.SignalMatrix, error) {
	m, _, err := ReadSignals(path, valueColumn)
	return m, err
}

type signalKey struct {
	date   time.Time
	ticker string
}

// ReadSignals reads and pivots a long signal table, reporting load statistics
// ⭐ SSOT: (날짜, 종목) 충돌 시 마지막 유효 값이 이김
//
// 결측 값은 pivot에 들어가지 않음 → 값이 하나도 없는 날짜/종목은 결과에서 빠짐
func ReadSignals(path, valueColumn string) (*contracts.SignalMatrix, LoadStats, error) {
	stats := LoadStats{Source: path}

	t, err := ReadTable(path)
	if err != nil {
		return nil, stats, err
	}

	schema, err := ResolveSignalSchema(t, valueColumn)
	if err != nil {
		return nil, stats, err
	}

	type record struct {
		date   time.Time
		ticker string
		value  float64
	}

	records := make([]record, 0, len(t.Rows))
	for _, row := range t.Rows {
		stats.RowsRead++

		date, ok := parseDate(t.Cell(row, schema.DateIndex), t.Format)
		ticker := t.Cell(row, schema.TickerIndex)
		if !ok || ticker == "" {
			stats.RowsDropped++
			continue
		}
		records = append(records, record{
			date:   date,
			ticker: ticker,
			value:  parseValue(t.Cell(row, schema.ValueIndex)),
		})
	}

	sort.SliceStable(records, func(a, b int) bool {
		return records[a].date.Before(records[b].date)
	})

	// 1-pass pivot
	pivot := make(map[signalKey]float64, len(records))
	dateSet := make(map[time.Time]struct{})
	tickerSet := make(map[string]struct{})
	for _, rec := range records {
		if math.IsNaN(rec.value) {
			continue
		}
		key := signalKey{date: rec.date, ticker: rec.ticker}
		if _, dup := pivot[key]; dup {
			stats.DuplicateDates++ // 시그널은 (날짜, 종목) 쌍 기준
		}
		pivot[key] = rec.value
		dateSet[rec.date] = struct{}{}
		tickerSet[rec.ticker] = struct{}{}
	}

	// 결정적 순서: 날짜 오름차순, 종목 이름순
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(a, b int) bool { return dates[a].Before(dates[b]) })

	tickers := make([]string, 0, len(tickerSet))
	for tk := range tickerSet {
		tickers = append(tickers, tk)
	}
	sort.Strings(tickers)

	m := &contracts.SignalMatrix{Frame: *contracts.NewFrame(dates, tickers)}
	for j, tk := range tickers {
		for i, d := range dates {
			if v, ok := pivot[signalKey{date: d, ticker: tk}]; ok {
				m.Values[i][j] = v
			}
		}
	}
	if err := m.Validate(); err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	return m, stats, nil
}
