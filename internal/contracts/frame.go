package contracts

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Frame is a date-indexed table of float64 cells
// ⭐ SSOT: 모든 매트릭스(가격/변동성/시그널/비중)는 이 타입을 공유
//
// Dates are strictly ascending, Values is row-major (len(Values) == len(Dates),
// len(Values[i]) == len(Columns)). A missing cell is NaN.
// Frames are treated as immutable once handed to the next stage.
type Frame struct {
	Dates   []time.Time `json:"dates"`
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"-"`
}

// NewFrame allocates a frame with every cell missing
func NewFrame(dates []time.Time, columns []string) *Frame {
	values := make([][]float64, len(dates))
	for i := range values {
		row := make([]float64, len(columns))
		for j := range row {
			row[j] = math.NaN()
		}
		values[i] = row
	}
	return &Frame{
		Dates:   slices.Clone(dates),
		Columns: slices.Clone(columns),
		Values:  values,
	}
}

// Rows returns the number of dates
func (f *Frame) Rows() int {
	return len(f.Dates)
}

// Cols returns the number of instruments
func (f *Frame) Cols() int {
	return len(f.Columns)
}

// ColumnIndex returns the position of a column, or -1
func (f *Frame) ColumnIndex(name string) int {
	return slices.Index(f.Columns, name)
}

// Column returns a copy of one instrument's series
func (f *Frame) Column(name string) ([]float64, bool) {
	j := f.ColumnIndex(name)
	if j < 0 {
		return nil, false
	}
	out := make([]float64, len(f.Values))
	for i, row := range f.Values {
		out[i] = row[j]
	}
	return out, true
}

// At returns the cell at row r, column c
func (f *Frame) At(r, c int) float64 {
	return f.Values[r][c]
}

// Get returns the cell for (date index, instrument name); missing column → NaN
func (f *Frame) Get(r int, name string) float64 {
	j := f.ColumnIndex(name)
	if j < 0 {
		return math.NaN()
	}
	return f.Values[r][j]
}

// Row returns a copy of row r
func (f *Frame) Row(r int) []float64 {
	return slices.Clone(f.Values[r])
}

// Select returns a new frame restricted to the given columns, in the given order
func (f *Frame) Select(columns []string) (*Frame, error) {
	idx := make([]int, len(columns))
	for k, name := range columns {
		j := f.ColumnIndex(name)
		if j < 0 {
			return nil, fmt.Errorf("column %q not in frame", name)
		}
		idx[k] = j
	}

	out := &Frame{
		Dates:   slices.Clone(f.Dates),
		Columns: slices.Clone(columns),
		Values:  make([][]float64, len(f.Values)),
	}
	for i, row := range f.Values {
		sel := make([]float64, len(idx))
		for k, j := range idx {
			sel[k] = row[j]
		}
		out.Values[i] = sel
	}
	return out, nil
}

// Clone returns a deep copy
func (f *Frame) Clone() *Frame {
	out := &Frame{
		Dates:   slices.Clone(f.Dates),
		Columns: slices.Clone(f.Columns),
		Values:  make([][]float64, len(f.Values)),
	}
	for i, row := range f.Values {
		out.Values[i] = slices.Clone(row)
	}
	return out
}

// Equal reports whether two frames have identical index, columns and cells.
// Two missing cells compare equal.
func (f *Frame) Equal(o *Frame) bool {
	if f.Rows() != o.Rows() || !slices.Equal(f.Columns, o.Columns) {
		return false
	}
	for i := range f.Dates {
		if !f.Dates[i].Equal(o.Dates[i]) {
			return false
		}
		for j := range f.Values[i] {
			a, b := f.Values[i][j], o.Values[i][j]
			if math.IsNaN(a) && math.IsNaN(b) {
				continue
			}
			if a != b {
				return false
			}
		}
	}
	return true
}

// Validate checks the structural invariants of the frame
func (f *Frame) Validate() error {
	if len(f.Values) != len(f.Dates) {
		return fmt.Errorf("frame has %d dates but %d rows", len(f.Dates), len(f.Values))
	}
	for i := 1; i < len(f.Dates); i++ {
		if !f.Dates[i].After(f.Dates[i-1]) {
			return fmt.Errorf("dates not strictly ascending at row %d (%s)", i, f.Dates[i].Format("2006-01-02"))
		}
	}
	for i, row := range f.Values {
		if len(row) != len(f.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(f.Columns))
		}
	}
	return nil
}

// FiniteCount returns the number of non-missing, finite cells
func (f *Frame) FiniteCount() int {
	n := 0
	for _, row := range f.Values {
		for _, v := range row {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				n++
			}
		}
	}
	return n
}

// First returns the first date, or the zero time for an empty frame
func (f *Frame) First() time.Time {
	if len(f.Dates) == 0 {
		return time.Time{}
	}
	return f.Dates[0]
}

// Last returns the last date, or the zero time for an empty frame
func (f *Frame) Last() time.Time {
	if len(f.Dates) == 0 {
		return time.Time{}
	}
	return f.Dates[len(f.Dates)-1]
}
