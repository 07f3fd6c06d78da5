package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/alignment"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/audit"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/output"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/portfolio"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/s0_data"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/s0_data/quality"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/strategyconfig"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/volatility"
	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/logger"
	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/metrics"
	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/redis"
)

// Orchestrator coordinates the V0..V7 pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	// Stage components
	qualityGate *quality.QualityGate
	estimator   *volatility.Estimator
	constructor *portfolio.Constructor
	constraints portfolio.Constraints
	writer      *output.Writer

	// V7 sinks (nil = 사용 안 함)
	store     audit.Store
	publisher *redis.Publisher
	recorder  *metrics.Recorder

	portfolioConfig portfolio.PortfolioConfig
	logger          *logger.Logger
}

// Sinks are the optional V7 destinations
type Sinks struct {
	Store     audit.Store
	Publisher *redis.Publisher
	Metrics   *metrics.Recorder
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	RunID      string
	StrategyID string
	ConfigHash string

	PricesPath   string
	SignalsPath  string
	SignalColumn string

	VolatilityPath string
	PreCapPath     string
	PostCapPath    string

	MetricsTextfile string // 비어 있으면 기록 안 함
	RequireQuality  bool   // true면 품질 미달 시 중단
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           string
	Success         bool
	Error           error
	CompletedStages []string
	Quality         []contracts.DataQualitySnapshot
	Volatility      *contracts.VolatilityMatrix
	Aligned         *contracts.AlignedPair
	PreCap          *contracts.WeightMatrix
	PostCap         *contracts.WeightMatrix
	Summary         contracts.WeightSummary
	Snapshot        *contracts.RunSnapshot
	Latest          *contracts.LatestWeights
	Duration        time.Duration
}

// NewOrchestrator builds every stage component from the strategy
func NewOrchestrator(strategy *strategyconfig.Config, gate *quality.QualityGate, sinks Sinks, log *logger.Logger) (*Orchestrator, error) {
	estimator, err := volatility.NewEstimator(volatility.Config{
		CenterOfMass: strategy.Risk.EWMACom,
		AnnualDays:   strategy.Risk.AnnualDays,
	})
	if err != nil {
		return nil, err
	}

	portfolioConfig := portfolio.PortfolioConfig{
		TargetVol: strategy.Risk.TargetVol,
		Eps:       strategy.Risk.Eps,
		Workers:   strategy.Execution.Workers,
	}
	constructor, err := portfolio.NewConstructor(portfolioConfig, log)
	if err != nil {
		return nil, err
	}

	constraints := portfolio.Constraints{MaxWeight: strategy.Risk.PerInstrumentCap}
	if err := constraints.Validate(); err != nil {
		return nil, err
	}

	if gate == nil {
		gate = quality.NewQualityGate(quality.DefaultConfig())
	}

	return &Orchestrator{
		qualityGate:     gate,
		estimator:       estimator,
		constructor:     constructor,
		constraints:     constraints,
		writer:          output.NewWriter(log),
		store:           sinks.Store,
		publisher:       sinks.Publisher,
		recorder:        sinks.Metrics,
		portfolioConfig: portfolioConfig,
		logger:          log,
	}, nil
}

// NewRunConfig maps the strategy file onto a run; resolve turns relative paths into real ones
func NewRunConfig(strategy *strategyconfig.Config, configHash string, resolve func(string) string) RunConfig {
	if resolve == nil {
		resolve = func(p string) string { return p }
	}
	return RunConfig{
		RunID:          audit.NewRunID(),
		StrategyID:     strategy.Meta.StrategyID,
		ConfigHash:     configHash,
		PricesPath:     resolve(strategy.Inputs.Prices),
		SignalsPath:    resolve(strategy.Inputs.Signals),
		SignalColumn:   strategy.Inputs.SignalColumn,
		VolatilityPath: resolve(strategy.Outputs.Volatility),
		PreCapPath:     resolve(strategy.Outputs.WeightsBeforeCaps),
		PostCapPath:    resolve(strategy.Outputs.WeightsAfterCaps),
	}
}

// Run executes the complete pipeline
// V0 → V1 → V2 → V3 → V4 → V5 → V6 → V7
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()
	if config.RunID == "" {
		config.RunID = audit.NewRunID()
	}

	result := &RunResult{
		RunID:           config.RunID,
		CompletedStages: make([]string, 0, len(contracts.AllStages())),
	}
	fail := func(stage contracts.Stage, err error) (*RunResult, error) {
		result.Error = fmt.Errorf("%s failed: %w", stage.ShortName(), err)
		result.Duration = time.Since(startTime)
		o.logger.WithError(result.Error).WithStage(stage.String()).Error("Pipeline run failed")
		return result, result.Error
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":      config.RunID,
		"strategy_id": config.StrategyID,
		"config_hash": config.ConfigHash,
		"prices":      config.PricesPath,
		"signals":     config.SignalsPath,
	}).Info("Starting pipeline run")

	// V0 + V1: 가격 → 변동성 (파일 기록 포함)
	vol, serr := o.runVolatility(ctx, config, result)
	if serr != nil {
		return fail(serr.stage, serr.err)
	}
	result.Volatility = vol

	// V2: Signals
	t := time.Now()
	signals, err := o.runV2(ctx, config, result)
	if err != nil {
		return fail(contracts.StageSignals, err)
	}
	o.done(result, contracts.StageSignals, t)

	// V3: Align
	t = time.Now()
	pair, err := o.runV3(ctx, signals, vol)
	if err != nil {
		return fail(contracts.StageAlign, err)
	}
	result.Aligned = pair
	o.done(result, contracts.StageAlign, t)

	// V4: Weights
	t = time.Now()
	pre, err := o.constructor.Build(ctx, pair)
	if err != nil {
		return fail(contracts.StageWeights, err)
	}
	result.PreCap = pre
	o.done(result, contracts.StageWeights, t)

	// V5: Caps
	t = time.Now()
	post := o.constraints.Apply(pre)
	result.PostCap = post
	result.Summary = portfolio.Summarize(pair, pre, post, o.portfolioConfig, o.constraints)
	o.logger.WithFields(map[string]interface{}{
		"capped_cells":      result.Summary.CappedCells,
		"zero_signal_dates": result.Summary.ZeroSignalDates,
		"floored_vol_cells": result.Summary.FlooredVolCells,
		"max_abs_weight":    result.Summary.MaxAbsWeightPostCap,
	}).Info("V5 completed")
	o.done(result, contracts.StageCaps, t)

	// V6: Output (비중 행렬이 모두 계산된 뒤에만 기록)
	t = time.Now()
	if err := o.runV6(ctx, config, pre, post); err != nil {
		return fail(contracts.StageOutput, err)
	}
	o.done(result, contracts.StageOutput, t)

	// V7: Audit & publish
	t = time.Now()
	result.Snapshot = audit.NewRunSnapshot(audit.SnapshotInput{
		RunID:       config.RunID,
		StrategyID:  config.StrategyID,
		ConfigHash:  config.ConfigHash,
		PricesPath:  config.PricesPath,
		SignalsPath: config.SignalsPath,
		StartedAt:   startTime,
		FinishedAt:  time.Now(),
		Weights:     post,
		Summary:     result.Summary,
	})
	if err := o.runV7(ctx, config, result); err != nil {
		return fail(contracts.StageAudit, err)
	}
	o.done(result, contracts.StageAudit, t)

	// Mark success
	result.Success = true
	result.Duration = time.Since(startTime)

	if o.recorder != nil && config.MetricsTextfile != "" {
		o.recorder.RecordRun(result.Snapshot)
		if err := o.recorder.WriteTextfile(config.MetricsTextfile); err != nil {
			o.logger.WithError(err).Warn("Failed to write metrics textfile")
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":   config.RunID,
		"duration": result.Duration.Seconds(),
		"stages":   len(result.CompletedStages),
	}).Info("Pipeline run completed successfully")

	return result, nil
}

// RunVolatility executes V0 → V1 only and writes the volatility file
func (o *Orchestrator) RunVolatility(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()
	result := &RunResult{RunID: config.RunID}

	vol, serr := o.runVolatility(ctx, config, result)
	result.Duration = time.Since(startTime)
	if serr != nil {
		result.Error = fmt.Errorf("%s failed: %w", serr.stage.ShortName(), serr.err)
		return result, result.Error
	}

	result.Volatility = vol
	result.Success = true
	return result, nil
}

type stageError struct {
	stage contracts.Stage
	err   error
}

// runVolatility executes V0 (prices) and V1 (volatility + file)
func (o *Orchestrator) runVolatility(ctx context.Context, config RunConfig, result *RunResult) (*contracts.VolatilityMatrix, *stageError) {
	t := time.Now()
	prices, err := o.runV0(ctx, config, result)
	if err != nil {
		return nil, &stageError{contracts.StagePrices, err}
	}
	o.done(result, contracts.StagePrices, t)

	t = time.Now()
	vol, err := o.runV1(ctx, config, prices)
	if err != nil {
		return nil, &stageError{contracts.StageVolatility, err}
	}
	o.done(result, contracts.StageVolatility, t)
	return vol, nil
}

// runV0 executes V0: Price Loader
func (o *Orchestrator) runV0(ctx context.Context, config RunConfig, result *RunResult) (*contracts.PriceMatrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.logger.Info("Running V0: Price Loader")

	prices, stats, err := s0_data.ReadPrices(config.PricesPath)
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}

	if err := o.checkQuality(quality.KindPrices, &prices.Frame, stats, config, result); err != nil {
		return nil, err
	}
	return prices, nil
}

// runV1 executes V1: EWMA volatility, then writes it
func (o *Orchestrator) runV1(ctx context.Context, config RunConfig, prices *contracts.PriceMatrix) (*contracts.VolatilityMatrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.logger.Info("Running V1: EWMA Volatility")

	vol := o.estimator.Estimate(prices)

	if config.VolatilityPath != "" {
		if err := o.writer.WriteVolatility(config.VolatilityPath, vol); err != nil {
			return nil, fmt.Errorf("write volatility: %w", err)
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"dates":       vol.Rows(),
		"instruments": vol.Cols(),
		"alpha":       o.estimator.Config().Alpha(),
		"path":        config.VolatilityPath,
	}).Info("V1 completed")

	return vol, nil
}

// runV2 executes V2: Signal Loader
func (o *Orchestrator) runV2(ctx context.Context, config RunConfig, result *RunResult) (*contracts.SignalMatrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.logger.Info("Running V2: Signal Loader")

	signals, stats, err := s0_data.ReadSignals(config.SignalsPath, config.SignalColumn)
	if err != nil {
		return nil, fmt.Errorf("load signals: %w", err)
	}

	if err := o.checkQuality(quality.KindSignals, &signals.Frame, stats, config, result); err != nil {
		return nil, err
	}
	return signals, nil
}

// runV3 executes V3: Align
func (o *Orchestrator) runV3(ctx context.Context, signals *contracts.SignalMatrix, vol *contracts.VolatilityMatrix) (*contracts.AlignedPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.logger.Info("Running V3: Align")

	pair, err := alignment.Align(signals, vol)
	if err != nil {
		return nil, err
	}

	onlySignals, onlyVol := alignment.Diff(signals.Columns, vol.Columns)
	o.logger.WithFields(map[string]interface{}{
		"instruments":        len(pair.Instruments()),
		"dates":              pair.Signals.Rows(),
		"dropped_signals":    len(onlySignals),
		"dropped_volatility": len(onlyVol),
	}).Info("V3 completed")
	if len(onlySignals) > 0 {
		o.logger.WithField("tickers", onlySignals).Warn("Signals without prices dropped")
	}

	return pair, nil
}

// runV6 executes V6: both weight files
func (o *Orchestrator) runV6(ctx context.Context, config RunConfig, pre, post *contracts.WeightMatrix) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.logger.Info("Running V6: Output")

	return o.writer.WriteWeightPair(config.PreCapPath, config.PostCapPath, pre, post)
}

// runV7 executes V7: audit store, latest-weights publish
func (o *Orchestrator) runV7(ctx context.Context, config RunConfig, result *RunResult) error {
	if o.store != nil {
		o.logger.Info("Running V7: Audit")

		rows := audit.BuildRows(result.Aligned, result.PreCap, result.PostCap)
		if err := o.store.SaveRun(ctx, result.Snapshot, result.Quality, rows); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		o.logger.WithFields(map[string]interface{}{
			"run_id": result.Snapshot.RunID,
			"rows":   len(rows),
		}).Info("Run saved")
	}

	latest, ok := audit.LatestWeights(result.Snapshot, result.PostCap)
	if !ok {
		o.logger.Warn("No finite post-cap weights to publish")
		return nil
	}
	result.Latest = latest

	if o.publisher != nil {
		if err := o.publisher.PublishLatest(ctx, latest); err != nil {
			return fmt.Errorf("publish latest: %w", err)
		}
	}
	return nil
}

// checkQuality scores one input and logs the snapshot
func (o *Orchestrator) checkQuality(kind string, f *contracts.Frame, stats s0_data.LoadStats, config RunConfig, result *RunResult) error {
	snapshot := o.qualityGate.Check(kind, f, stats)
	result.Quality = append(result.Quality, *snapshot)
	if o.recorder != nil {
		o.recorder.ObserveQuality(snapshot)
	}

	log := o.logger.WithFields(map[string]interface{}{
		"kind":            kind,
		"dates":           snapshot.Dates,
		"instruments":     snapshot.Instruments,
		"rows_dropped":    snapshot.RowsDropped,
		"duplicate_dates": snapshot.DuplicateDates,
		"quality_score":   snapshot.QualityScore,
	})

	if !o.qualityGate.Passed(snapshot) {
		if config.RequireQuality {
			return fmt.Errorf("quality gate failed for %s: score=%.2f", kind, snapshot.QualityScore)
		}
		log.Warn("Input below quality threshold")
		return nil
	}
	if low := o.qualityGate.LowCoverage(snapshot); len(low) > 0 {
		log = log.WithField("low_coverage", low)
	}
	log.Info("Input loaded")
	return nil
}

// done marks a stage as completed
func (o *Orchestrator) done(result *RunResult, stage contracts.Stage, started time.Time) {
	elapsed := time.Since(started)
	result.CompletedStages = append(result.CompletedStages, fmt.Sprintf("%s:%s", stage.ShortName(), stage.Description()))
	o.logger.Debugf("%s done in %s", stage.ShortName(), elapsed)
	if o.recorder != nil {
		o.recorder.ObserveStage(stage, elapsed)
	}
}
