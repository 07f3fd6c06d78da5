package strategyconfig

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()

	// 에러 메시지에 yaml 필드명 사용
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Struct tags ===
	if err := structValidator.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return ValidationError{fieldPath(fe.Namespace()), ruleMessage(fe)}
		}
		return err
	}

	// === Risk ===
	r := cfg.Risk
	for _, f := range []struct {
		field string
		v     float64
	}{
		{"risk.target_vol", r.TargetVol},
		{"risk.per_instrument_cap", r.PerInstrumentCap},
		{"risk.ewma_com", r.EWMACom},
		{"risk.eps", r.Eps},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return ValidationError{f.field, "must be finite"}
		}
	}
	if r.Eps >= r.TargetVol {
		return ValidationError{"risk.eps", "must be < target_vol"}
	}

	// === Outputs ===
	// 같은 파일에 두 결과를 덮어쓰면 안 됨
	seen := make(map[string]string, 3)
	for _, out := range []struct{ field, path string }{
		{"outputs.volatility", cfg.Outputs.Volatility},
		{"outputs.weights_before_caps", cfg.Outputs.WeightsBeforeCaps},
		{"outputs.weights_after_caps", cfg.Outputs.WeightsAfterCaps},
	} {
		if err := validateTableExt(out.path); err != nil {
			return ValidationError{out.field, err.Error()}
		}
		clean := filepath.Clean(out.path)
		if prev, ok := seen[clean]; ok {
			return ValidationError{out.field, fmt.Sprintf("same path as %s", prev)}
		}
		seen[clean] = out.field
	}

	// === Inputs ===
	if err := validateTableExt(cfg.Inputs.Prices); err != nil {
		return ValidationError{"inputs.prices", err.Error()}
	}
	if err := validateTableExt(cfg.Inputs.Signals); err != nil {
		return ValidationError{"inputs.signals", err.Error()}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 캡이 목표 변동성보다 작으면 대부분의 비중이 잘림
	if cfg.Risk.PerInstrumentCap < cfg.Risk.TargetVol {
		warnings = append(warnings, Warning{
			Code:    "CAP_BELOW_TARGET",
			Message: fmt.Sprintf("per_instrument_cap %.4f < target_vol %.4f: 캡 이후 실현 변동성이 목표보다 낮아짐", cfg.Risk.PerInstrumentCap, cfg.Risk.TargetVol),
		})
	}

	// 짧은 반감기 → 노이즈 큰 변동성
	if cfg.Risk.EWMACom < 10 {
		warnings = append(warnings, Warning{
			Code:    "SHORT_EWMA",
			Message: fmt.Sprintf("ewma_com %.1f < 10: 변동성 추정치가 불안정할 수 있음", cfg.Risk.EWMACom),
		})
	}

	if cfg.Risk.AnnualDays != 252 && cfg.Risk.AnnualDays != 365 {
		warnings = append(warnings, Warning{
			Code:    "UNUSUAL_ANNUALIZATION",
			Message: fmt.Sprintf("annual_days=%d (보통 252 또는 365)", cfg.Risk.AnnualDays),
		})
	}

	if cfg.Risk.Eps > 1e-6 {
		warnings = append(warnings, Warning{
			Code:    "LARGE_EPS",
			Message: "eps > 1e-6: 낮은 변동성 종목이 하한에 걸릴 수 있음",
		})
	}

	return warnings
}

// === Helper Functions ===

// fieldPath strips the root struct name: "Config.risk.target_vol" → "risk.target_vol"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "gt":
		return fmt.Sprintf("must be > %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}

func validateTableExt(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return nil
	default:
		return fmt.Errorf("unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}
