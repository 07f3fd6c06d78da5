package strategyconfig

import "time"

// Config는 변동성 타겟 비중 전략의 전체 설정
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Inputs    Inputs    `yaml:"inputs" json:"inputs"`
	Outputs   Outputs   `yaml:"outputs" json:"outputs"`
	Risk      Risk      `yaml:"risk" json:"risk"`
	Execution Execution `yaml:"execution" json:"execution"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id" validate:"required"`
	Version    string `yaml:"version" json:"version"`
}

// Inputs V0/V2: 입력 파일
type Inputs struct {
	Prices       string `yaml:"prices" json:"prices" validate:"required"`
	Signals      string `yaml:"signals" json:"signals" validate:"required"`
	SignalColumn string `yaml:"signal_column" json:"signal_column" validate:"required"` // long 포맷의 값 컬럼
}

// Outputs V6: 결과 파일 (.csv 또는 .xlsx)
type Outputs struct {
	Volatility        string `yaml:"volatility" json:"volatility" validate:"required"`
	WeightsBeforeCaps string `yaml:"weights_before_caps" json:"weights_before_caps" validate:"required"`
	WeightsAfterCaps  string `yaml:"weights_after_caps" json:"weights_after_caps" validate:"required"`
}

// Risk V1/V4/V5: 수치 정책
type Risk struct {
	TargetVol        float64 `yaml:"target_vol" json:"target_vol" validate:"gt=0,lte=1"`
	PerInstrumentCap float64 `yaml:"per_instrument_cap" json:"per_instrument_cap" validate:"gt=0,lte=1"`
	EWMACom          float64 `yaml:"ewma_com" json:"ewma_com" validate:"gte=0"`
	AnnualDays       int     `yaml:"annual_days" json:"annual_days" validate:"gt=0"`
	Eps              float64 `yaml:"eps" json:"eps" validate:"gt=0"`
}

// Execution 실행 옵션
type Execution struct {
	Workers int `yaml:"workers" json:"workers" validate:"gte=1,lte=256"` // 비중 계산 병렬도 (1 = 순차)
}

// Default returns the built-in strategy
// ⭐ SSOT: 전략 파일이 없거나 필드가 생략되면 이 값이 사용됨
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "vol_target_default",
			Version:    "1",
		},
		Inputs: Inputs{
			Prices:       "data/prices_daily.csv",
			Signals:      "output/signals/signals_12m_minus_1_latest.csv",
			SignalColumn: "signal_12m",
		},
		Outputs: Outputs{
			Volatility:        "output/vol_ewma_annualized.csv",
			WeightsBeforeCaps: "output/weights_before_caps.csv",
			WeightsAfterCaps:  "output/weights_after_caps.csv",
		},
		Risk: Risk{
			TargetVol:        0.10, // 연 10%
			PerInstrumentCap: 0.25, // ±25%
			EWMACom:          60,
			AnnualDays:       252,
			Eps:              1e-12,
		},
		Execution: Execution{
			Workers: 1,
		},
	}
}

// RunSnapshot 실행 스냅샷 (재현성용)
type RunSnapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	StrategyID string    `json:"strategy_id"`
	GitCommit  string    `json:"git_commit"`
	CreatedAt  time.Time `json:"created_at"`
}
