package contracts

import "time"

// WeightSummary aggregates diagnostics of one weight run (V4/V5)
type WeightSummary struct {
	Dates       int `json:"dates"`
	Instruments int `json:"instruments"`

	ZeroSignalDates int `json:"zero_signal_dates"` // 전부 0으로 강제된 날짜 수
	FlooredVolCells int `json:"floored_vol_cells"` // eps 하한이 적용된 변동성 셀
	MissingCells    int `json:"missing_cells"`     // 시그널/변동성 결측으로 비중 없음
	CappedCells     int `json:"capped_cells"`      // 캡에 걸린 셀

	// 평균은 0-시그널 날짜를 제외한 날짜 기준
	MeanGrossPreCap     float64 `json:"mean_gross_pre_cap"`
	MeanGrossPostCap    float64 `json:"mean_gross_post_cap"`
	MeanNetPostCap      float64 `json:"mean_net_post_cap"`
	MeanRiskNormPreCap  float64 `json:"mean_risk_norm_pre_cap"`  // √Σw², 캡 이전에는 target_vol
	MeanRiskNormPostCap float64 `json:"mean_risk_norm_post_cap"` // 캡 이후 √Σw²
	MeanDiagVolPostCap  float64 `json:"mean_diag_vol_post_cap"`  // √Σ(w·σ)², 상관 0 가정
	MaxAbsWeightPostCap float64 `json:"max_abs_weight_post_cap"`
}

// WeightRow is one (date, instrument) line of a run, in long format for persistence
type WeightRow struct {
	Date          time.Time `json:"date"`
	Ticker        string    `json:"ticker"`
	Signal        *float64  `json:"signal"`
	Volatility    *float64  `json:"volatility"`
	WeightPreCap  *float64  `json:"weight_pre_cap"`
	WeightPostCap *float64  `json:"weight_post_cap"`
}

// RunSnapshot records one pipeline invocation for reproducibility
// ⭐ SSOT: 재현성을 위해 설정 해시와 입력 경로를 함께 기록
type RunSnapshot struct {
	RunID       string        `json:"run_id"`
	StrategyID  string        `json:"strategy_id"`
	ConfigHash  string        `json:"config_hash"`
	PricesPath  string        `json:"prices_path"`
	SignalsPath string        `json:"signals_path"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	FirstDate   time.Time     `json:"first_date"`
	LastDate    time.Time     `json:"last_date"`
	Summary     WeightSummary `json:"summary"`
}

// LatestWeights is the published snapshot of the last date's post-cap weights
type LatestWeights struct {
	RunID      string             `json:"run_id"`
	StrategyID string             `json:"strategy_id"`
	Date       time.Time          `json:"date"`
	Weights    map[string]float64 `json:"weights"`
	Gross      float64            `json:"gross"`
	Net        float64            `json:"net"`
	ConfigHash string             `json:"config_hash"`
}
