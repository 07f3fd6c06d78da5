package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/logger"
)

var ErrInvalidConfig = errors.New("invalid portfolio configuration")

// Constructor implements V4: vol-targeted weight construction
// ⭐ SSOT: V4 비중 계산 로직은 여기서만
type Constructor struct {
	config PortfolioConfig
	logger *logger.Logger
}

// PortfolioConfig defines weight construction parameters
type PortfolioConfig struct {
	TargetVol float64 // 포트폴리오 목표 변동성 (연율, 0.10 = 10%)
	Eps       float64 // 변동성/제곱합 하한, 0-시그널 판정 기준
	Workers   int     // 날짜 행 병렬 처리 수 (1 = 순차)
}

// DefaultPortfolioConfig returns target 10%, eps 1e-12, sequential
func DefaultPortfolioConfig() PortfolioConfig {
	return PortfolioConfig{
		TargetVol: 0.10,
		Eps:       1e-12,
		Workers:   1,
	}
}

// Validate checks the configuration
func (c PortfolioConfig) Validate() error {
	if !(c.TargetVol > 0) || math.IsInf(c.TargetVol, 0) {
		return fmt.Errorf("%w: target vol must be finite and > 0, got %v", ErrInvalidConfig, c.TargetVol)
	}
	if !(c.Eps > 0) || math.IsInf(c.Eps, 0) {
		return fmt.Errorf("%w: eps must be finite and > 0, got %v", ErrInvalidConfig, c.Eps)
	}
	return nil
}

// NewConstructor creates a new weight constructor
func NewConstructor(config PortfolioConfig, logger *logger.Logger) (*Constructor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Constructor{
		config: config,
		logger: logger,
	}, nil
}

// Build computes pre-cap weights for every signal date.
// Rows are independent; with Workers > 1 they are split into chunks and
// computed concurrently. The output does not depend on Workers.
func (c *Constructor) Build(ctx context.Context, pair *contracts.AlignedPair) (*contracts.WeightMatrix, error) {
	sig, vol := pair.Signals, pair.Volatility
	if sig.Rows() != vol.Rows() || sig.Cols() != vol.Cols() {
		return nil, fmt.Errorf("misaligned pair: signals %dx%d, volatility %dx%d",
			sig.Rows(), sig.Cols(), vol.Rows(), vol.Cols())
	}

	out := &contracts.WeightMatrix{Frame: *contracts.NewFrame(sig.Dates, sig.Columns)}

	rows := sig.Rows()
	workers := min(c.config.Workers, max(rows, 1))
	chunk := (rows + workers - 1) / max(workers, 1)

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < rows; start += chunk {
		start := start
		end := min(start+chunk, rows)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				c.weightRow(sig.Values[i], vol.Values[i], out.Values[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build weights: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"dates":       rows,
		"instruments": sig.Cols(),
		"target_vol":  c.config.TargetVol,
		"workers":     workers,
	}).Debug("Weights constructed")

	return out, nil
}

// weightRow fills one date's weights
//
//  1. σ' = max(σ, eps)
//  2. raw = signal / σ'
//  3. Σraw² (유한 값만), 하한 eps
//  4. w = raw · target / √Σraw²
//  5. Σ|signal| < eps → 행 전체 정확히 0
//
// 시그널 또는 변동성 결측 → 비중 결측 (5번 예외)
func (c *Constructor) weightRow(signals, vols, out []float64) {
	eps := c.config.Eps

	raw := make([]float64, len(signals))
	finite := make([]float64, 0, len(signals))

	for j, s := range signals {
		v := vols[j]
		if !isFinite(s) || math.IsNaN(v) {
			raw[j] = math.NaN()
			continue
		}
		raw[j] = s / math.Max(v, eps)
		finite = append(finite, raw[j])
	}

	// Σ|signal|은 변동성 결측 여부와 무관하게 날짜 전체 기준
	if isZeroRow(signals, eps) {
		for j := range out {
			out[j] = 0
		}
		return
	}

	sumSq := math.Max(floats.Dot(finite, finite), eps)
	floats.ScaleTo(out, c.config.TargetVol/math.Sqrt(sumSq), raw)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
