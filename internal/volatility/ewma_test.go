package volatility

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

func priceMatrix(columns []string, rows ...[]float64) *contracts.PriceMatrix {
	dates := make([]time.Time, len(rows))
	for i := range rows {
		dates[i] = time.Date(2024, 1, 2+i, 0, 0, 0, 0, time.UTC)
	}
	f := contracts.NewFrame(dates, columns)
	for i, row := range rows {
		copy(f.Values[i], row)
	}
	return &contracts.PriceMatrix{Frame: *f}
}

func TestEstimate_Scenario(t *testing.T) {
	// A: 100 → 101 → 102, B: flat
	prices := priceMatrix([]string{"A", "B"},
		[]float64{100, 50},
		[]float64{101, 50},
		[]float64{102, 50},
	)

	est, err := NewEstimator(DefaultConfig())
	require.NoError(t, err)

	vol := est.Estimate(prices)
	require.NoError(t, vol.Validate())
	assert.Equal(t, prices.Dates, vol.Dates)
	assert.Equal(t, prices.Columns, vol.Columns)

	alpha := 1.0 / 61.0
	r1 := 0.01
	r2 := 102.0/101.0 - 1
	v1 := alpha * r1 * r1
	v2 := alpha*r2*r2 + (1-alpha)*v1

	// 첫 날 변동성은 0 (NaN 아님)
	assert.Equal(t, 0.0, vol.At(0, 0))
	assert.InDelta(t, math.Sqrt(252*v1), vol.At(1, 0), 1e-12)
	assert.InDelta(t, math.Sqrt(252*v2), vol.At(2, 0), 1e-12)
	assert.InDelta(t, 0.0203, vol.At(1, 0), 1e-4)

	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, vol.At(i, 1), "flat series has zero volatility")
	}
}

func TestEstimate_IsCausal(t *testing.T) {
	est, err := NewEstimator(DefaultConfig())
	require.NoError(t, err)

	base := []float64{100, 102, 99, 101, 104}
	shocked := []float64{100, 102, 99, 101, 150}

	a := est.Series(base)
	b := est.Series(shocked)

	// 마지막 날 충격은 과거 추정치를 바꾸지 않음
	assert.Equal(t, a[:4], b[:4])
	assert.Greater(t, b[4], a[4])
}

func TestReturns(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name   string
		prices []float64
		want   []float64
	}{
		{"simple", []float64{100, 110, 99}, []float64{0, 0.10000000000000009, -0.09999999999999998}},
		{"gap carried forward", []float64{100, nan, 110}, []float64{0, 0, 0.10000000000000009}},
		{"leading missing", []float64{nan, nan, 50, 55}, []float64{0, 0, 0, 0.10000000000000009}},
		{"zero price", []float64{0, 10, 20}, []float64{0, 0, 1}},
		{"empty", nil, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Returns(tt.prices)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12, "index %d", i)
			}
		})
	}
}

func TestEWMA(t *testing.T) {
	got := EWMA([]float64{4, 0, 0}, 0.5)
	assert.Equal(t, []float64{4, 2, 1}, got)

	// α=1 (C=0) → 입력 그대로
	assert.Equal(t, []float64{1, 2, 3}, EWMA([]float64{1, 2, 3}, 1))
	assert.Empty(t, EWMA(nil, 0.5))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"zero com", Config{CenterOfMass: 0, AnnualDays: 252}, false},
		{"negative com", Config{CenterOfMass: -1, AnnualDays: 252}, true},
		{"nan com", Config{CenterOfMass: math.NaN(), AnnualDays: 252}, true},
		{"zero days", Config{CenterOfMass: 60, AnnualDays: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEstimator(tt.config)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidConfig))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAlpha(t *testing.T) {
	assert.InDelta(t, 1.0/61.0, DefaultConfig().Alpha(), 1e-15)
}
