package portfolio

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/logger"
)

func pair(columns []string, signals, vols [][]float64) *contracts.AlignedPair {
	dates := make([]time.Time, len(signals))
	for i := range dates {
		dates[i] = time.Date(2024, 1, 2+i, 0, 0, 0, 0, time.UTC)
	}
	sig := contracts.NewFrame(dates, columns)
	vol := contracts.NewFrame(dates, columns)
	for i := range signals {
		copy(sig.Values[i], signals[i])
		copy(vol.Values[i], vols[i])
	}
	return &contracts.AlignedPair{
		Signals:    &contracts.SignalMatrix{Frame: *sig},
		Volatility: &contracts.VolatilityMatrix{Frame: *vol},
	}
}

func newConstructor(t *testing.T, workers int) *Constructor {
	t.Helper()
	cfg := DefaultPortfolioConfig()
	cfg.Workers = workers
	c, err := NewConstructor(cfg, logger.Nop())
	require.NoError(t, err)
	return c
}

func sumSq(row []float64) float64 {
	s := 0.0
	for _, v := range row {
		if !math.IsNaN(v) {
			s += v * v
		}
	}
	return s
}

func TestBuild_Scenario(t *testing.T) {
	// {A: 1, B: -1}, σ = {0.10, 0.20} → raw {10, -5}, Σ=125
	p := pair([]string{"A", "B"}, [][]float64{{1, -1}}, [][]float64{{0.10, 0.20}})

	w, err := newConstructor(t, 1).Build(context.Background(), p)
	require.NoError(t, err)

	scale := 0.10 / math.Sqrt(125)
	assert.InDelta(t, 10*scale, w.Get(0, "A"), 1e-12)
	assert.InDelta(t, -5*scale, w.Get(0, "B"), 1e-12)
	assert.InDelta(t, 0.0894, w.Get(0, "A"), 1e-4)
	assert.InDelta(t, -0.0447, w.Get(0, "B"), 1e-4)
	assert.InDelta(t, 0.01, sumSq(w.Row(0)), 1e-15)
	assert.False(t, w.Capped)

	// 캡 이내 → 변화 없음
	capped := DefaultConstraints().Apply(w)
	assert.True(t, capped.Capped)
	assert.Equal(t, w.Row(0), capped.Row(0))
}

func TestBuild_ZeroSignalRow(t *testing.T) {
	nan := math.NaN()
	p := pair([]string{"A", "B", "C"},
		[][]float64{
			{0, 0, nan},
			{0, 1e-14, 0},
			{nan, nan, nan},
		},
		[][]float64{
			{0.1, 0.2, 0.3},
			{nan, 0.0, 0.3},
			{0.1, 0.2, 0.3},
		},
	)

	w, err := newConstructor(t, 1).Build(context.Background(), p)
	require.NoError(t, err)

	// 결측 셀까지 포함해 정확히 0
	assert.Equal(t, []float64{0, 0, 0}, w.Row(0))
	assert.Equal(t, []float64{0, 0, 0}, w.Row(1))
	// 시그널이 전부 결측이어도 Σ|signal| = 0
	assert.Equal(t, []float64{0, 0, 0}, w.Row(2))

	capped := DefaultConstraints().Apply(w)
	assert.Equal(t, []float64{0, 0, 0}, capped.Row(0))
}

func TestBuild_MissingAndFlooredVol(t *testing.T) {
	nan := math.NaN()
	p := pair([]string{"A", "B", "C", "D"},
		[][]float64{{1, nan, 1, 1}},
		[][]float64{{0.1, 0.1, nan, 0.0}},
	)

	w, err := newConstructor(t, 1).Build(context.Background(), p)
	require.NoError(t, err)

	row := w.Row(0)
	assert.True(t, math.IsNaN(row[1]), "missing signal → missing weight")
	assert.True(t, math.IsNaN(row[2]), "missing volatility → missing weight")

	// σ=0 → eps 하한, D가 거의 전부를 차지
	assert.InDelta(t, 0.10, row[3], 1e-9)
	assert.InDelta(t, 0.0, row[0], 1e-9)
	assert.InDelta(t, 0.01, sumSq(row), 1e-15)

	capped := DefaultConstraints().Apply(w)
	assert.True(t, math.IsNaN(capped.Row(0)[1]))

	// 변동성이 아직 없는 유일한 비영 시그널: 행 전체가 0이 되면 안 됨
	leading := pair([]string{"A", "B"},
		[][]float64{{1, 0}},
		[][]float64{{nan, 0.2}},
	)
	w, err = newConstructor(t, 1).Build(context.Background(), leading)
	require.NoError(t, err)

	row = w.Row(0)
	assert.True(t, math.IsNaN(row[0]), "A weight should stay missing")
	assert.Equal(t, 0.0, row[1])

	summary := Summarize(leading, w, DefaultConstraints().Apply(w), DefaultPortfolioConfig(), DefaultConstraints())
	assert.Equal(t, 0, summary.ZeroSignalDates)
}

func TestBuild_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	columns := []string{"A", "B", "C", "D", "E", "F"}

	var signals, vols [][]float64
	for i := 0; i < 200; i++ {
		s := make([]float64, len(columns))
		v := make([]float64, len(columns))
		for j := range columns {
			s[j] = rng.NormFloat64()
			v[j] = 0.02 + 0.5*rng.Float64()
		}
		if i%17 == 0 {
			for j := range s {
				s[j] = 0
			}
		}
		signals = append(signals, s)
		vols = append(vols, v)
	}
	p := pair(columns, signals, vols)

	pre, err := newConstructor(t, 1).Build(context.Background(), p)
	require.NoError(t, err)

	cons := DefaultConstraints()
	post := cons.Apply(pre)

	for i := range pre.Values {
		if i%17 == 0 {
			assert.Equal(t, make([]float64, len(columns)), pre.Row(i))
			continue
		}
		assert.InDelta(t, 0.01, sumSq(pre.Row(i)), 1e-12, "row %d", i)

		for _, v := range post.Row(i) {
			assert.LessOrEqual(t, v, cons.MaxWeight)
			assert.GreaterOrEqual(t, v, -cons.MaxWeight)
		}
	}
}

func TestBuild_DeterministicAcrossWorkers(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	columns := []string{"A", "B", "C"}

	var signals, vols [][]float64
	for i := 0; i < 101; i++ {
		signals = append(signals, []float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()})
		vols = append(vols, []float64{rng.Float64(), rng.Float64(), rng.Float64()})
	}
	p := pair(columns, signals, vols)

	seq, err := newConstructor(t, 1).Build(context.Background(), p)
	require.NoError(t, err)

	for _, workers := range []int{2, 3, 8, 500} {
		par, err := newConstructor(t, workers).Build(context.Background(), p)
		require.NoError(t, err)
		assert.True(t, seq.Equal(&par.Frame), "workers=%d", workers)
	}
}

func TestBuild_Empty(t *testing.T) {
	p := pair([]string{"A"}, nil, nil)
	w, err := newConstructor(t, 4).Build(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 0, w.Rows())
}

func TestBuild_Cancelled(t *testing.T) {
	p := pair([]string{"A"}, [][]float64{{1}}, [][]float64{{0.1}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newConstructor(t, 1).Build(ctx, p)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBuild_Misaligned(t *testing.T) {
	p := pair([]string{"A"}, [][]float64{{1}}, [][]float64{{0.1}})
	p.Volatility.Columns = []string{"A", "B"}

	_, err := newConstructor(t, 1).Build(context.Background(), p)
	assert.Error(t, err)
}

func TestPortfolioConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  PortfolioConfig
		wantErr bool
	}{
		{"default", DefaultPortfolioConfig(), false},
		{"zero target", PortfolioConfig{TargetVol: 0, Eps: 1e-12}, true},
		{"nan target", PortfolioConfig{TargetVol: math.NaN(), Eps: 1e-12}, true},
		{"zero eps", PortfolioConfig{TargetVol: 0.1, Eps: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConstructor(tt.config, logger.Nop())
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidConfig))
				return
			}
			assert.NoError(t, err)
		})
	}
}
