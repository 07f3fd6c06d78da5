package logger_test

import (
	"errors"

	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/config"
	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Pipeline started")
	log.Infof("Loaded %d price dates", 2520)
}

// Example_withStage demonstrates stage-tagged structured logging
func Example_withStage() {
	log := logger.New(&config.Config{Env: "production", LogLevel: "info", LogFormat: "json"})

	log.WithStage("V1_VOLATILITY").
		WithFields(map[string]interface{}{
			"instruments": 14,
			"ewma_com":    60,
		}).
		Info("Volatility estimated")

	log.WithStage("V3_ALIGN").
		WithError(errors.New("no common tickers")).
		Error("Alignment failed")
}
