package s0_data

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestLoadPrices(t *testing.T) {
	path := writeFile(t, "prices.csv", `date,B,A
2024-01-03,50,101
2024-01-02,50,100
not-a-date,1,1
2024-01-04,,102
2024-01-03,51,101.5
`)

	m, stats, err := ReadPrices(path)
	require.NoError(t, err)

	// 파일 순서 유지
	assert.Equal(t, []string{"B", "A"}, m.Columns)
	assert.Equal(t, []time.Time{d(2024, 1, 2), d(2024, 1, 3), d(2024, 1, 4)}, m.Dates)

	// 중복 날짜는 마지막 행
	assert.Equal(t, 51.0, m.At(1, 0))
	assert.Equal(t, 101.5, m.At(1, 1))

	// 빈 셀 → 결측
	assert.True(t, math.IsNaN(m.At(2, 0)))
	assert.Equal(t, 102.0, m.At(2, 1))

	assert.Equal(t, 5, stats.RowsRead)
	assert.Equal(t, 1, stats.RowsDropped)
	assert.Equal(t, 1, stats.DuplicateDates)
}

func TestLoadPrices_TimePreferredOverDate(t *testing.T) {
	path := writeFile(t, "prices.csv", `date,time,A
garbage,2024-01-02,1
garbage,2024-01-03,2
`)

	m, err := LoadPrices(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, m.Columns, "the other date-like column is not an instrument")
	assert.Equal(t, []time.Time{d(2024, 1, 2), d(2024, 1, 3)}, m.Dates)
}

func TestLoadPrices_MissingDateColumn(t *testing.T) {
	path := writeFile(t, "prices.csv", "day,A\n2024-01-02,1\n")

	_, err := LoadPrices(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrSchema))

	var se *contracts.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, path, se.Source)
	assert.Equal(t, []string{"day", "A"}, se.Present)
}

func TestLoadPrices_DateTimeAndBOM(t *testing.T) {
	path := writeFile(t, "prices.csv", "\ufefftime,A\n2024-01-02 15:30:00,1\n2024/01/03,2\n")

	m, err := LoadPrices(path)
	require.NoError(t, err)
	require.Equal(t, 2, m.Rows())
	assert.Equal(t, time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC), m.Dates[0])
	assert.Equal(t, d(2024, 1, 3), m.Dates[1])
}

func TestLoadPrices_ShortRows(t *testing.T) {
	path := writeFile(t, "prices.csv", "date,A,B\n2024-01-02,1\n2024-01-03,2,3\n")

	m, err := LoadPrices(path)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(m.At(0, 1)))
	assert.Equal(t, 3.0, m.At(1, 1))
}

func TestLoadPrices_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"date", "A", "B"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"2024-01-02", 100.0, 50.0}))
	// 엑셀 날짜 시리얼 (2024-01-03)
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{45294, 101.0, nil}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	m, err := LoadPrices(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, m.Columns)
	assert.Equal(t, []time.Time{d(2024, 1, 2), d(2024, 1, 3)}, m.Dates)
	assert.Equal(t, 101.0, m.At(1, 0))
	assert.True(t, math.IsNaN(m.At(1, 1)))
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		missing bool
	}{
		{"1.5", 1.5, false},
		{" 42 ", 42, false},
		{"-0.25", -0.25, false},
		{"", 0, true},
		{"n/a", 0, true},
		{"NaN", 0, true},
		{"inf", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseValue(tt.in)
			if tt.missing {
				assert.True(t, math.IsNaN(got))
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
