package redis

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestCache_Disabled(t *testing.T) {
	client, _ := New(context.Background(), &config.Config{})
	cache := NewCache(client, "test")

	// When Redis is disabled, cache operations should be no-ops
	var result string
	found, err := cache.Get(context.Background(), "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}
	if err := cache.Set(context.Background(), "key", "v", time.Minute); err != nil {
		t.Errorf("Set() error = %v", err)
	}
}

func TestPublisher_Disabled(t *testing.T) {
	client, _ := New(context.Background(), &config.Config{})
	pub := NewPublisher(client)

	err := pub.PublishLatest(context.Background(), &contracts.LatestWeights{StrategyID: "s", RunID: "r"})
	if err != nil {
		t.Fatalf("PublishLatest() error = %v", err)
	}

	latest, found, err := pub.GetLatest(context.Background(), "s")
	if err != nil || found || latest != nil {
		t.Errorf("GetLatest() = %v, %v, %v; want nil, false, nil", latest, found, err)
	}
}

func TestCacheKeys(t *testing.T) {
	cache := NewCache(&Client{}, KeyPrefix)

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"LatestKey", cache.Key(LatestKey("vol_target_default")), "voltarget:latest:vol_target_default"},
		{"RunsKey", cache.Key(RunsKey("vol_target_default")), "voltarget:runs:vol_target_default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}

func TestPublisher_Redis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" || testing.Short() {
		t.Skip("TEST_REDIS_ADDR not set, skipping integration test")
	}

	host, port, _ := strings.Cut(addr, ":")
	cfg := &config.Config{
		Redis: config.RedisConfig{Enabled: true, Host: host, Port: port, TTL: time.Minute},
	}

	ctx := context.Background()
	client, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer client.Close()

	pub := NewPublisher(client)
	strategy := "redis_test_" + time.Now().Format("150405.000")
	defer client.Redis().Del(ctx, pub.cache.Key(LatestKey(strategy)), pub.cache.Key(RunsKey(strategy)))

	want := &contracts.LatestWeights{
		RunID:      "run-1",
		StrategyID: strategy,
		Date:       time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Weights:    map[string]float64{"A": 0.25, "B": -0.1},
		Gross:      0.35,
		Net:        0.15,
	}
	if err := pub.PublishLatest(ctx, want); err != nil {
		t.Fatalf("PublishLatest() error = %v", err)
	}

	got, found, err := pub.GetLatest(ctx, strategy)
	if err != nil || !found {
		t.Fatalf("GetLatest() = %v, %v", found, err)
	}
	if got.Weights["A"] != 0.25 || !got.Date.Equal(want.Date) {
		t.Errorf("GetLatest() = %+v", got)
	}

	runs, err := pub.RecentRuns(ctx, strategy)
	if err != nil || len(runs) != 1 || runs[0] != "run-1" {
		t.Errorf("RecentRuns() = %v, %v", runs, err)
	}
}
