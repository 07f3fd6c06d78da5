package portfolio

import (
	"fmt"
	"math"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

// Constraints defines per-instrument weight limits (V5)
// ⭐ SSOT: 비중 제약조건은 여기서만
type Constraints struct {
	MaxWeight float64 // 종목당 최대 |비중| (0.25 = ±25%)
}

// DefaultConstraints returns ±25% per instrument
func DefaultConstraints() Constraints {
	return Constraints{
		MaxWeight: 0.25,
	}
}

// Validate checks the cap
func (c Constraints) Validate() error {
	if !(c.MaxWeight > 0) || math.IsInf(c.MaxWeight, 0) {
		return fmt.Errorf("%w: max weight must be finite and > 0, got %v", ErrInvalidConfig, c.MaxWeight)
	}
	return nil
}

// Apply clips every weight to [-MaxWeight, +MaxWeight]; missing stays missing.
// The input is not modified.
func (c Constraints) Apply(w *contracts.WeightMatrix) *contracts.WeightMatrix {
	out := &contracts.WeightMatrix{Frame: *w.Clone(), Capped: true}
	for _, row := range out.Values {
		for j, v := range row {
			row[j] = c.Clip(v)
		}
	}
	return out
}

// Clip bounds one weight
func (c Constraints) Clip(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Max(-c.MaxWeight, math.Min(c.MaxWeight, v))
}

// Binding reports whether the cap changes v
func (c Constraints) Binding(v float64) bool {
	return !math.IsNaN(v) && math.Abs(v) > c.MaxWeight
}
