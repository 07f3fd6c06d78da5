package output

import (
	"math"
	"strconv"
	"time"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// dateFormatter picks one layout for the whole index: date-only unless some date carries a time
func dateFormatter(dates []time.Time) func(time.Time) string {
	layout := dateLayout
	for _, d := range dates {
		if d.Hour() != 0 || d.Minute() != 0 || d.Second() != 0 || d.Nanosecond() != 0 {
			layout = dateTimeLayout
			break
		}
	}
	return func(d time.Time) string { return d.Format(layout) }
}

// formatFloat renders the shortest representation that round-trips; missing → ""
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// header returns "date" followed by the instrument columns
func header(f *contracts.Frame) []string {
	h := make([]string, 0, f.Cols()+1)
	h = append(h, "date")
	return append(h, f.Columns...)
}

// records renders the frame body as strings
func records(f *contracts.Frame) [][]string {
	formatDate := dateFormatter(f.Dates)

	out := make([][]string, f.Rows())
	for i, row := range f.Values {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, formatDate(f.Dates[i]))
		for _, v := range row {
			rec = append(rec, formatFloat(v))
		}
		out[i] = rec
	}
	return out
}
