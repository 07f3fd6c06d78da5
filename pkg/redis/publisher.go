package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

// KeyPrefix namespaces every key written by the pipeline
const KeyPrefix = "voltarget"

// RunHistoryLength bounds the per-strategy list of recent run ids
const RunHistoryLength = 50

// Publisher exposes the latest post-cap weights to downstream consumers
// 키: voltarget:latest:<strategy_id>, voltarget:runs:<strategy_id>
type Publisher struct {
	client *Client
	cache  *Cache
}

// NewPublisher creates a publisher on top of a (possibly disabled) client
func NewPublisher(client *Client) *Publisher {
	return &Publisher{
		client: client,
		cache:  NewCache(client, KeyPrefix),
	}
}

// PublishLatest writes the snapshot and records its run id in one pipeline
func (p *Publisher) PublishLatest(ctx context.Context, latest *contracts.LatestWeights) error {
	if !p.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(latest)
	if err != nil {
		return fmt.Errorf("marshal latest weights: %w", err)
	}

	latestKey := p.cache.Key(LatestKey(latest.StrategyID))
	runsKey := p.cache.Key(RunsKey(latest.StrategyID))

	pipe := p.client.Redis().TxPipeline()
	pipe.Set(ctx, latestKey, data, p.client.TTL())
	pipe.LPush(ctx, runsKey, latest.RunID)
	pipe.LTrim(ctx, runsKey, 0, RunHistoryLength-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish latest weights: %w", err)
	}
	return nil
}

// GetLatest reads the last published snapshot for a strategy
func (p *Publisher) GetLatest(ctx context.Context, strategyID string) (*contracts.LatestWeights, bool, error) {
	var latest contracts.LatestWeights
	found, err := p.cache.Get(ctx, LatestKey(strategyID), &latest)
	if err != nil || !found {
		return nil, false, err
	}
	return &latest, true, nil
}

// RecentRuns lists run ids published for a strategy, newest first
func (p *Publisher) RecentRuns(ctx context.Context, strategyID string) ([]string, error) {
	if !p.client.Enabled() {
		return nil, nil
	}
	return p.client.Redis().LRange(ctx, p.cache.Key(RunsKey(strategyID)), 0, -1).Result()
}
