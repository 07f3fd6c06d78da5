package s0_data

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Recognized date column names, in order of preference
var dateColumns = []string{"time", "date"}

// Accepted date layouts, tried in order
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02",
	"2006.01.02",
	"20060102",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// resolveDateColumn finds the date column ("time" preferred over "date")
func resolveDateColumn(t *Table) (int, string, bool) {
	for _, name := range dateColumns {
		if j := t.Index(name); j >= 0 {
			return j, name, true
		}
	}
	return -1, "", false
}

// parseDate parses a date cell; XLSX tables may also carry Excel serial numbers.
// Returned times are UTC.
func parseDate(s string, format Format) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	if format == FormatXLSX {
		if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// parseValue parses a numeric cell; blank, unparseable and non-finite cells are missing (NaN)
func parseValue(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}
