package commands

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/audit"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/brain"
	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/strategyconfig"
	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/config"
	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/database"
	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/logger"
	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/metrics"
	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/redis"
)

// runtime bundles what every command needs
type runtime struct {
	cfg      *config.Config
	log      *logger.Logger
	strategy *strategyconfig.Config
	yaml     []byte // 전략 파일 원문 (내장 기본값이면 nil)
	source   string
}

// loadRuntime: env 설정 → 로거 → 전략 파일
func loadRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	path := strategyFile
	if path == "" {
		path = cfg.StrategyFile
	}

	rt := &runtime{cfg: cfg, log: log, source: "built-in"}
	if path == "" {
		rt.strategy = strategyconfig.Default()
		return rt, nil
	}

	strategy, data, err := strategyconfig.Load(cfg.Resolve(path))
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	rt.strategy, rt.yaml, rt.source = strategy, data, path
	return rt, nil
}

// openSinks connects the configured V7 destinations; close releases them
func (rt *runtime) openSinks(ctx context.Context, withAudit bool) (brain.Sinks, func(), error) {
	var (
		sinks   brain.Sinks
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if withAudit {
		store, closeStore, err := rt.openStore(ctx)
		if err != nil {
			return sinks, closeAll, err
		}
		if store != nil {
			sinks.Store = store
			closers = append(closers, closeStore)
		}
	}

	if rt.cfg.Redis.Enabled {
		client, err := redis.New(ctx, rt.cfg)
		if err != nil {
			closeAll()
			return sinks, func() {}, fmt.Errorf("connect redis: %w", err)
		}
		sinks.Publisher = redis.NewPublisher(client)
		closers = append(closers, func() { client.Close() })
	}

	if rt.cfg.MetricsTextfile != "" {
		sinks.Metrics = metrics.NewRecorder(rt.strategy.Meta.StrategyID)
	}

	return sinks, closeAll, nil
}

// openStore: Postgres 우선, 없으면 SQLite, 둘 다 없으면 nil
func (rt *runtime) openStore(ctx context.Context) (audit.Store, func(), error) {
	switch {
	case rt.cfg.Database.Enabled:
		db, err := database.New(ctx, rt.cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		repo := audit.NewRepository(db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db.Close, nil

	case rt.cfg.SQLitePath != "":
		db, err := database.OpenSQLite(rt.cfg.Resolve(rt.cfg.SQLitePath))
		if err != nil {
			return nil, nil, err
		}
		repo := audit.NewSQLiteRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, func() { db.Close() }, nil
	}
	return nil, nil, nil
}

func getGitSHA() string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}
