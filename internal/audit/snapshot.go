package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/portfolio"
)

// SnapshotInput collects what a run knows once the weights are built
type SnapshotInput struct {
	RunID       string // 비어 있으면 새로 생성
	StrategyID  string
	ConfigHash  string
	PricesPath  string
	SignalsPath string
	StartedAt   time.Time
	FinishedAt  time.Time
	Weights     *contracts.WeightMatrix
	Summary     contracts.WeightSummary
}

// NewRunID returns a fresh run identifier
func NewRunID() string {
	return uuid.NewString()
}

// NewRunSnapshot builds the audit record of one run
func NewRunSnapshot(in SnapshotInput) *contracts.RunSnapshot {
	runID := in.RunID
	if runID == "" {
		runID = NewRunID()
	}

	snap := &contracts.RunSnapshot{
		RunID:       runID,
		StrategyID:  in.StrategyID,
		ConfigHash:  in.ConfigHash,
		PricesPath:  in.PricesPath,
		SignalsPath: in.SignalsPath,
		StartedAt:   in.StartedAt.UTC(),
		Summary:     in.Summary,
	}
	if !in.FinishedAt.IsZero() && in.FinishedAt.After(in.StartedAt) {
		snap.Duration = in.FinishedAt.Sub(in.StartedAt)
	}
	if in.Weights != nil {
		snap.FirstDate = in.Weights.First()
		snap.LastDate = in.Weights.Last()
	}
	return snap
}

// LatestWeights extracts the published snapshot from the post-cap weights.
// Returns false when no date has a finite weight.
func LatestWeights(run *contracts.RunSnapshot, post *contracts.WeightMatrix) (*contracts.LatestWeights, bool) {
	date, weights, ok := portfolio.Latest(post)
	if !ok {
		return nil, false
	}
	gross, net := portfolio.Exposure(weights)
	return &contracts.LatestWeights{
		RunID:      run.RunID,
		StrategyID: run.StrategyID,
		Date:       date,
		Weights:    weights,
		Gross:      gross,
		Net:        net,
		ConfigHash: run.ConfigHash,
	}, true
}
