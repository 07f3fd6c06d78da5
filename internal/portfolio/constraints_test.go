package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

func TestConstraints_Clip(t *testing.T) {
	c := DefaultConstraints()

	tests := []struct {
		in, want float64
	}{
		{0.1, 0.1},
		{0.25, 0.25},
		{0.4, 0.25},
		{-0.9, -0.25},
		{0, 0},
		{math.Inf(1), 0.25},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Clip(tt.in), "clip(%v)", tt.in)
	}
	assert.True(t, math.IsNaN(c.Clip(math.NaN())))
}

func TestConstraints_Apply_DoesNotMutate(t *testing.T) {
	f := contracts.NewFrame([]time.Time{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}, []string{"A", "B"})
	f.Values[0] = []float64{0.6, -0.1}
	w := &contracts.WeightMatrix{Frame: *f}

	capped := Constraints{MaxWeight: 0.5}.Apply(w)

	assert.Equal(t, []float64{0.5, -0.1}, capped.Row(0))
	assert.Equal(t, []float64{0.6, -0.1}, w.Row(0))
	assert.False(t, w.Capped)
}

func TestConstraints_Validate(t *testing.T) {
	assert.NoError(t, DefaultConstraints().Validate())
	assert.Error(t, Constraints{MaxWeight: 0}.Validate())
	assert.Error(t, Constraints{MaxWeight: math.NaN()}.Validate())
}

func TestConstraints_Binding(t *testing.T) {
	c := DefaultConstraints()
	assert.True(t, c.Binding(0.3))
	assert.True(t, c.Binding(-0.3))
	assert.False(t, c.Binding(0.25))
	assert.False(t, c.Binding(math.NaN()))
}
