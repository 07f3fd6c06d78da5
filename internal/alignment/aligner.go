package alignment

import (
	"math"
	"slices"
	"sort"
	"time"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

// Align restricts signals and volatility to their common instruments (sorted)
// and resolves volatility onto the signal dates (V3).
//
// 각 시그널 날짜의 변동성 = 그 날짜 이하에서 마지막으로 관측된 유효 값 (as-of).
// 첫 변동성 관측 이전 날짜는 결측으로 남음.
func Align(signals *contracts.SignalMatrix, vol *contracts.VolatilityMatrix) (*contracts.AlignedPair, error) {
	common := Intersect(signals.Columns, vol.Columns)
	if len(common) == 0 {
		return nil, &contracts.AlignmentError{
			SignalColumns:     slices.Clone(signals.Columns),
			VolatilityColumns: slices.Clone(vol.Columns),
		}
	}

	sig, err := signals.Select(common)
	if err != nil {
		return nil, err
	}
	volCommon, err := vol.Select(common)
	if err != nil {
		return nil, err
	}

	return &contracts.AlignedPair{
		Signals:    &contracts.SignalMatrix{Frame: *sig},
		Volatility: &contracts.VolatilityMatrix{Frame: *asOf(volCommon, sig.Dates)},
	}, nil
}

// Intersect returns the sorted set of names present in both lists
func Intersect(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, name := range b {
		inB[name] = struct{}{}
	}

	seen := make(map[string]struct{}, len(a))
	var out []string
	for _, name := range a {
		if _, ok := inB[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Diff returns the instruments present on only one side, each sorted
func Diff(signalColumns, volColumns []string) (onlySignals, onlyVolatility []string) {
	common := make(map[string]struct{})
	for _, name := range Intersect(signalColumns, volColumns) {
		common[name] = struct{}{}
	}
	for _, name := range signalColumns {
		if _, ok := common[name]; !ok {
			onlySignals = append(onlySignals, name)
		}
	}
	for _, name := range volColumns {
		if _, ok := common[name]; !ok {
			onlyVolatility = append(onlyVolatility, name)
		}
	}
	sort.Strings(onlySignals)
	sort.Strings(onlyVolatility)
	return onlySignals, onlyVolatility
}

// asOf merges src onto target dates: both date lists are ascending, so one
// forward pass over src keeps the last finite value per column.
func asOf(src *contracts.Frame, target []time.Time) *contracts.Frame {
	out := contracts.NewFrame(target, src.Columns)

	last := make([]float64, src.Cols())
	for j := range last {
		last[j] = math.NaN()
	}

	k := 0
	for i, date := range target {
		for k < src.Rows() && !src.Dates[k].After(date) {
			for j, v := range src.Values[k] {
				if !math.IsNaN(v) && !math.IsInf(v, 0) {
					last[j] = v
				}
			}
			k++
		}
		copy(out.Values[i], last)
	}
	return out
}
