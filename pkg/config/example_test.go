package config_test

import (
	"fmt"

	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Strategy file: %s\n", cfg.Resolve(cfg.StrategyFile))
	fmt.Printf("Audit DB enabled: %v\n", cfg.Database.Enabled)
}
