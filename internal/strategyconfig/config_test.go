package strategyconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
meta:
  strategy_id: trend_12m_vt10
  version: "2"
inputs:
  prices: data/prices.xlsx
  signals: data/signals.csv
outputs:
  volatility: out/vol.csv
  weights_before_caps: out/w_pre.csv
  weights_after_caps: out/w_post.xlsx
risk:
  target_vol: 0.12
  per_instrument_cap: 0.3
execution:
  workers: 4
`

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Empty(t, Warn(cfg))

	assert.Equal(t, 0.10, cfg.Risk.TargetVol)
	assert.Equal(t, 0.25, cfg.Risk.PerInstrumentCap)
	assert.Equal(t, 60.0, cfg.Risk.EWMACom)
	assert.Equal(t, 252, cfg.Risk.AnnualDays)
	assert.Equal(t, 1e-12, cfg.Risk.Eps)
	assert.Equal(t, "signal_12m", cfg.Inputs.SignalColumn)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	cfg, yamlData, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, sampleYAML, string(yamlData))

	assert.Equal(t, "trend_12m_vt10", cfg.Meta.StrategyID)
	assert.Equal(t, 0.12, cfg.Risk.TargetVol)
	assert.Equal(t, 0.3, cfg.Risk.PerInstrumentCap)
	assert.Equal(t, 4, cfg.Execution.Workers)

	// 생략된 필드는 기본값 유지
	assert.Equal(t, 60.0, cfg.Risk.EWMACom)
	assert.Equal(t, 252, cfg.Risk.AnnualDays)
	assert.Equal(t, "signal_12m", cfg.Inputs.SignalColumn)
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("risk:\n  target_volatility: 0.1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target_volatility")
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing strategy id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"zero target vol", func(c *Config) { c.Risk.TargetVol = 0 }, "risk.target_vol"},
		{"negative cap", func(c *Config) { c.Risk.PerInstrumentCap = -0.1 }, "risk.per_instrument_cap"},
		{"cap above one", func(c *Config) { c.Risk.PerInstrumentCap = 1.5 }, "risk.per_instrument_cap"},
		{"negative com", func(c *Config) { c.Risk.EWMACom = -1 }, "risk.ewma_com"},
		{"zero annual days", func(c *Config) { c.Risk.AnnualDays = 0 }, "risk.annual_days"},
		{"zero eps", func(c *Config) { c.Risk.Eps = 0 }, "risk.eps"},
		{"eps above target", func(c *Config) { c.Risk.Eps = 0.5 }, "risk.eps"},
		{"zero workers", func(c *Config) { c.Execution.Workers = 0 }, "execution.workers"},
		{"missing signal column", func(c *Config) { c.Inputs.SignalColumn = "" }, "inputs.signal_column"},
		{"bad output ext", func(c *Config) { c.Outputs.Volatility = "vol.parquet" }, "outputs.volatility"},
		{"bad input ext", func(c *Config) { c.Inputs.Prices = "prices.json" }, "inputs.prices"},
		{"duplicate outputs", func(c *Config) { c.Outputs.WeightsAfterCaps = c.Outputs.WeightsBeforeCaps }, "outputs.weights_after_caps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var ve ValidationError
			require.True(t, errors.As(err, &ve), "got %T: %v", err, err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestWarn(t *testing.T) {
	cfg := Default()
	cfg.Risk.PerInstrumentCap = 0.05
	cfg.Risk.EWMACom = 3

	codes := make([]string, 0)
	for _, w := range Warn(cfg) {
		codes = append(codes, w.Code)
	}
	assert.ElementsMatch(t, []string{"CAP_BELOW_TARGET", "SHORT_EWMA"}, codes)
}

func TestHash(t *testing.T) {
	a := Default()
	b := Default()

	ha, err := Hash(a)
	require.NoError(t, err)
	assert.Len(t, ha, 64)

	// 동일 설정 → 동일 해시
	hb, _ := Hash(b)
	assert.Equal(t, ha, hb)

	b.Risk.TargetVol = 0.11
	hb, _ = Hash(b)
	assert.NotEqual(t, ha, hb)
}

func TestMarshal_RoundTrip(t *testing.T) {
	data, err := Marshal(Default())
	require.NoError(t, err)

	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestRunSnapshot(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	snapshot, err := NewRunSnapshot(cfg, []byte(sampleYAML), "abc123")
	require.NoError(t, err)

	hash, _ := Hash(cfg)
	assert.Equal(t, hash, snapshot.ConfigHash)
	assert.Equal(t, "trend_12m_vt10", snapshot.StrategyID)
	assert.Equal(t, "abc123", snapshot.GitCommit)
	assert.False(t, snapshot.CreatedAt.IsZero())
}
