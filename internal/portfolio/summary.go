package portfolio

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

// Summarize computes run diagnostics from the aligned inputs and both weight matrices
func Summarize(pair *contracts.AlignedPair, pre, post *contracts.WeightMatrix, config PortfolioConfig, constraints Constraints) contracts.WeightSummary {
	summary := contracts.WeightSummary{
		Dates:       pre.Rows(),
		Instruments: pre.Cols(),
	}

	var (
		grossPre, grossPost, netPost []float64
		normPre, normPost, diagPost  []float64
		absPost                      []float64
	)

	for i := range pre.Values {
		sig := pair.Signals.Values[i]
		vol := pair.Volatility.Values[i]

		for j := range sig {
			if v := vol[j]; !math.IsNaN(v) && v < config.Eps {
				summary.FlooredVolCells++
			}
			if math.IsNaN(pre.Values[i][j]) {
				summary.MissingCells++
			}
			if constraints.Binding(pre.Values[i][j]) {
				summary.CappedCells++
			}
		}

		if isZeroRow(sig, config.Eps) {
			summary.ZeroSignalDates++
			continue
		}

		wPre := finiteOf(pre.Values[i])
		wPost := finiteOf(post.Values[i])
		if len(wPre) == 0 {
			continue
		}

		grossPre = append(grossPre, floats.Norm(wPre, 1))
		grossPost = append(grossPost, floats.Norm(wPost, 1))
		netPost = append(netPost, floats.Sum(wPost))
		normPre = append(normPre, floats.Norm(wPre, 2))
		normPost = append(normPost, floats.Norm(wPost, 2))
		diagPost = append(diagPost, diagonalVol(post.Values[i], vol))

		for _, w := range wPost {
			absPost = append(absPost, math.Abs(w))
		}
	}

	summary.MeanGrossPreCap = mean(grossPre)
	summary.MeanGrossPostCap = mean(grossPost)
	summary.MeanNetPostCap = mean(netPost)
	summary.MeanRiskNormPreCap = mean(normPre)
	summary.MeanRiskNormPostCap = mean(normPost)
	summary.MeanDiagVolPostCap = mean(diagPost)
	if len(absPost) > 0 {
		summary.MaxAbsWeightPostCap = floats.Max(absPost)
	}

	return summary
}

// Latest returns the last date that has at least one finite weight
func Latest(w *contracts.WeightMatrix) (time.Time, map[string]float64, bool) {
	for i := w.Rows() - 1; i >= 0; i-- {
		weights := make(map[string]float64, w.Cols())
		for j, name := range w.Columns {
			if v := w.Values[i][j]; isFinite(v) {
				weights[name] = v
			}
		}
		if len(weights) > 0 {
			return w.Dates[i], weights, true
		}
	}
	return time.Time{}, nil, false
}

// Exposure returns gross (Σ|w|) and net (Σw) of a weight map
func Exposure(weights map[string]float64) (gross, net float64) {
	for _, w := range weights {
		gross += math.Abs(w)
		net += w
	}
	return gross, net
}

func isZeroRow(signals []float64, eps float64) bool {
	return floats.Norm(finiteOf(signals), 1) < eps
}

// diagonalVol: √Σ(w·σ)², 결측 셀 제외
func diagonalVol(weights, vols []float64) float64 {
	contrib := make([]float64, 0, len(weights))
	for j, w := range weights {
		if isFinite(w) && isFinite(vols[j]) {
			contrib = append(contrib, w*vols[j])
		}
	}
	return floats.Norm(contrib, 2)
}

func finiteOf(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}
