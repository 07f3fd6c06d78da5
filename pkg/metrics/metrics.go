package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

const namespace = "voltarget"

// Recorder collects the gauges of one batch run
// 배치 작업이라 /metrics 서버 대신 node-exporter textfile로 내보냄
type Recorder struct {
	registry *prometheus.Registry

	dates           prometheus.Gauge
	instruments     prometheus.Gauge
	zeroSignalDates prometheus.Gauge
	flooredCells    prometheus.Gauge
	missingCells    prometheus.Gauge
	cappedCells     prometheus.Gauge
	grossPostCap    prometheus.Gauge
	maxAbsWeight    prometheus.Gauge
	duration        prometheus.Gauge
	lastSuccess     prometheus.Gauge
	stageDuration   *prometheus.GaugeVec
	qualityScore    *prometheus.GaugeVec
}

// NewRecorder creates a recorder with its own registry
func NewRecorder(strategyID string) *Recorder {
	labels := prometheus.Labels{"strategy_id": strategyID}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: name, Help: help, ConstLabels: labels,
		})
	}

	r := &Recorder{
		registry:        prometheus.NewRegistry(),
		dates:           gauge("weight_dates", "Number of dates in the weight matrices."),
		instruments:     gauge("weight_instruments", "Number of instruments in the weight matrices."),
		zeroSignalDates: gauge("zero_signal_dates", "Dates whose weights were forced to zero."),
		flooredCells:    gauge("floored_vol_cells", "Volatility cells raised to the eps floor."),
		missingCells:    gauge("missing_weight_cells", "Weight cells left missing."),
		cappedCells:     gauge("capped_cells", "Weight cells clipped by the per-instrument cap."),
		grossPostCap:    gauge("mean_gross_post_cap", "Mean gross exposure after caps."),
		maxAbsWeight:    gauge("max_abs_weight_post_cap", "Largest absolute post-cap weight."),
		duration:        gauge("run_duration_seconds", "Wall time of the last run."),
		lastSuccess:     gauge("last_success_timestamp_seconds", "Unix time of the last successful run."),
		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "stage_duration_seconds",
			Help: "Wall time per pipeline stage.", ConstLabels: labels,
		}, []string{"stage"}),
		qualityScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "input_quality_score",
			Help: "Data quality score per input.", ConstLabels: labels,
		}, []string{"kind"}),
	}

	r.registry.MustRegister(
		r.dates, r.instruments, r.zeroSignalDates, r.flooredCells, r.missingCells,
		r.cappedCells, r.grossPostCap, r.maxAbsWeight, r.duration, r.lastSuccess,
		r.stageDuration, r.qualityScore,
	)
	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveStage records the wall time of one stage
func (r *Recorder) ObserveStage(stage contracts.Stage, d time.Duration) {
	r.stageDuration.WithLabelValues(stage.ShortName()).Set(d.Seconds())
}

// ObserveQuality records the score of one input
func (r *Recorder) ObserveQuality(q *contracts.DataQualitySnapshot) {
	r.qualityScore.WithLabelValues(q.Kind).Set(q.QualityScore)
}

// RecordRun copies the run summary into the gauges
func (r *Recorder) RecordRun(run *contracts.RunSnapshot) {
	s := run.Summary
	r.dates.Set(float64(s.Dates))
	r.instruments.Set(float64(s.Instruments))
	r.zeroSignalDates.Set(float64(s.ZeroSignalDates))
	r.flooredCells.Set(float64(s.FlooredVolCells))
	r.missingCells.Set(float64(s.MissingCells))
	r.cappedCells.Set(float64(s.CappedCells))
	r.grossPostCap.Set(s.MeanGrossPostCap)
	r.maxAbsWeight.Set(s.MaxAbsWeightPostCap)
	r.duration.Set(run.Duration.Seconds())
	r.lastSuccess.Set(float64(run.StartedAt.Add(run.Duration).Unix()))
}

// WriteTextfile writes the registry in text exposition format.
// WriteToTextfile renames a temp file into place, so collectors never see a partial file.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
