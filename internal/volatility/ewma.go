package volatility

import (
	"errors"
	"fmt"
	"math"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

// =============================================================================
// EWMA Volatility Estimator - 순수 계산기 (V1)
// =============================================================================

var ErrInvalidConfig = errors.New("invalid volatility configuration")

// Config EWMA 설정
type Config struct {
	CenterOfMass float64 // C: α = 1/(1+C)
	AnnualDays   int     // 연율화 계수 (거래일)
}

// DefaultConfig returns C=60, 252 trading days
func DefaultConfig() Config {
	return Config{
		CenterOfMass: 60,
		AnnualDays:   252,
	}
}

// Alpha returns the smoothing factor 1/(1+C)
func (c Config) Alpha() float64 {
	return 1.0 / (1.0 + c.CenterOfMass)
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.CenterOfMass < 0 || math.IsNaN(c.CenterOfMass) || math.IsInf(c.CenterOfMass, 0) {
		return fmt.Errorf("%w: center of mass must be finite and >= 0, got %v", ErrInvalidConfig, c.CenterOfMass)
	}
	if c.AnnualDays <= 0 {
		return fmt.Errorf("%w: annual days must be > 0, got %d", ErrInvalidConfig, c.AnnualDays)
	}
	return nil
}

// Estimator EWMA 변동성 추정기
// ⭐ SSOT: 인과적(causal) 필터 - t 시점 값은 t 이전/당일 수익률만 사용
type Estimator struct {
	config Config
}

// NewEstimator creates an estimator
func NewEstimator(config Config) (*Estimator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{config: config}, nil
}

// Config returns the estimator settings
func (e *Estimator) Config() Config {
	return e.config
}

// Estimate computes annualized EWMA volatility for every instrument.
// The result has the price matrix's dates and columns and no missing cells.
func (e *Estimator) Estimate(prices *contracts.PriceMatrix) *contracts.VolatilityMatrix {
	out := &contracts.VolatilityMatrix{Frame: *contracts.NewFrame(prices.Dates, prices.Columns)}

	for j, name := range prices.Columns {
		series, _ := prices.Column(name)
		vol := e.Series(series)
		for i, v := range vol {
			out.Values[i][j] = v
		}
	}
	return out
}

// Series computes annualized EWMA volatility for one price series
func (e *Estimator) Series(prices []float64) []float64 {
	variance := EWMA(Squared(Returns(prices)), e.config.Alpha())

	annual := float64(e.config.AnnualDays)
	for i, v := range variance {
		variance[i] = math.Sqrt(annual * v)
	}
	return variance
}

// Returns computes simple returns P_t/P_{t-1} - 1 against the last known price.
//
// 결측 가격은 직전 가격으로 채운 것으로 간주 (수익률 0).
// 첫 수익률, 직전 가격이 없는 수익률, 유한하지 않은 수익률은 0.
func Returns(prices []float64) []float64 {
	returns := make([]float64, len(prices))

	last := math.NaN()
	for i, p := range prices {
		if math.IsNaN(p) {
			continue // carry forward → 0
		}
		if !math.IsNaN(last) {
			r := p/last - 1
			if !math.IsNaN(r) && !math.IsInf(r, 0) {
				returns[i] = r
			}
		}
		last = p
	}
	return returns
}

// Squared returns x² element-wise
func Squared(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v * v
	}
	return out
}

// EWMA applies the no-adjust recursion y_t = α·x_t + (1-α)·y_{t-1}, y_0 = x_0
func EWMA(x []float64, alpha float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}

	out[0] = x[0]
	for t := 1; t < len(x); t++ {
		out[t] = alpha*x[t] + (1-alpha)*out[t-1]
	}
	return out
}
