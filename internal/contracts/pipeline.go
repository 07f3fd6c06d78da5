package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 스냅샷, DB row에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   V0 → V1 ─┐
//            V3 → V4 → V5 → V6 → V7
//   V2 ──────┘
//   Prices  Volatility  Signals  Align  Weights  Caps  Output  Audit

// Stage represents a pipeline stage
type Stage string

const (
	// StagePrices V0: 가격 로드
	// 책임: 날짜 컬럼 정규화, 파싱 실패 행 제거, 정렬, 중복 날짜 제거
	// 위치: internal/s0_data/prices.go
	StagePrices Stage = "V0_PRICES"

	// StageVolatility V1: EWMA 변동성
	// 책임: 단순 수익률, EWMA(com) 분산, 연율화
	// 위치: internal/volatility/
	StageVolatility Stage = "V1_VOLATILITY"

	// StageSignals V2: 시그널 로드 (long → wide)
	// 위치: internal/s0_data/signals.go
	StageSignals Stage = "V2_SIGNALS"

	// StageAlign V3: 종목 교집합 + 변동성 as-of 정렬
	// 위치: internal/alignment/
	StageAlign Stage = "V3_ALIGN"

	// StageWeights V4: 역변동성 비중 + 목표 변동성 스케일
	// 위치: internal/portfolio/constructor.go
	StageWeights Stage = "V4_WEIGHTS"

	// StageCaps V5: 종목당 비중 상/하한
	// 위치: internal/portfolio/constraints.go
	StageCaps Stage = "V5_CAPS"

	// StageOutput V6: 결과 파일 기록
	// 위치: internal/output/
	StageOutput Stage = "V6_OUTPUT"

	// StageAudit V7: 실행 기록 저장/배포 (선택)
	// 위치: internal/audit/, pkg/redis/
	StageAudit Stage = "V7_AUDIT"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "V0", "V1")
func (s Stage) ShortName() string {
	if !IsValidStage(string(s)) {
		return "UNKNOWN"
	}
	return string(s)[:2]
}

// Description returns a human description of the stage
func (s Stage) Description() string {
	switch s {
	case StagePrices:
		return "price loader"
	case StageVolatility:
		return "EWMA volatility estimator"
	case StageSignals:
		return "signal loader"
	case StageAlign:
		return "signal/volatility aligner"
	case StageWeights:
		return "vol-targeted weight builder"
	case StageCaps:
		return "per-instrument cap"
	case StageOutput:
		return "file writer"
	case StageAudit:
		return "audit & publish"
	default:
		return "unknown"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StagePrices,
		StageVolatility,
		StageSignals,
		StageAlign,
		StageWeights,
		StageCaps,
		StageOutput,
		StageAudit,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}
