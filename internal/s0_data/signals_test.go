package s0_data

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

func TestLoadSignals(t *testing.T) {
	path := writeFile(t, "signals.csv", `date,ticker,signal_12m
2024-01-31,ZZZ,0.5
2024-01-31,AAA,-1
2023-12-29,AAA,1
2024-01-31,AAA,-2
2024-01-31,MMM,
bad,AAA,9
2023-12-29,,3
`)

	m, stats, err := ReadSignals(path, "")
	require.NoError(t, err)

	// 종목 이름순, 값이 없는 종목(MMM)은 제외
	assert.Equal(t, []string{"AAA", "ZZZ"}, m.Columns)
	assert.Equal(t, []time.Time{d(2023, 12, 29), d(2024, 1, 31)}, m.Dates)

	assert.Equal(t, 1.0, m.Get(0, "AAA"))
	assert.True(t, math.IsNaN(m.Get(0, "ZZZ")))
	// 마지막 값이 이김
	assert.Equal(t, -2.0, m.Get(1, "AAA"))
	assert.Equal(t, 0.5, m.Get(1, "ZZZ"))

	assert.Equal(t, 7, stats.RowsRead)
	assert.Equal(t, 2, stats.RowsDropped)
	assert.Equal(t, 1, stats.DuplicateDates)
}

func TestLoadSignals_ColumnOrderIndependentOfRowOrder(t *testing.T) {
	a := writeFile(t, "a.csv", "time,ticker,signal_12m\n2024-01-02,B,1\n2024-01-02,A,2\n")
	b := writeFile(t, "b.csv", "time,ticker,signal_12m\n2024-01-02,A,2\n2024-01-02,B,1\n")

	ma, err := LoadSignals(a, DefaultSignalColumn)
	require.NoError(t, err)
	mb, err := LoadSignals(b, DefaultSignalColumn)
	require.NoError(t, err)

	assert.True(t, ma.Equal(&mb.Frame))
}

func TestLoadSignals_CustomValueColumn(t *testing.T) {
	path := writeFile(t, "signals.csv", "date,ticker,score\n2024-01-02,A,0.3\n")

	m, err := LoadSignals(path, "score")
	require.NoError(t, err)
	assert.Equal(t, 0.3, m.Get(0, "A"))
}

func TestLoadSignals_SchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing []string
	}{
		{"no date", "day,ticker,signal_12m\n", []string{"time|date"}},
		{"no ticker", "date,symbol,signal_12m\n", []string{"ticker"}},
		{"no value", "date,ticker,signal\n", []string{"signal_12m"}},
		{"nothing", "x\n", []string{"time|date", "ticker", "signal_12m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "signals.csv", tt.content)

			_, err := LoadSignals(path, "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, contracts.ErrSchema))

			var se *contracts.SchemaError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.missing, se.Missing)
		})
	}
}

func TestReadTable_Empty(t *testing.T) {
	path := writeFile(t, "empty.csv", "")
	_, err := ReadTable(path)
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatXLSX, FormatOf("x/prices.XLSX"))
	assert.Equal(t, FormatCSV, FormatOf("x/prices.csv"))
	assert.Equal(t, FormatCSV, FormatOf("x/prices"))
}
