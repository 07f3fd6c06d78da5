package audit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/config"
	"github.com/martignettifabiola1-sketch/Systematic-trading/pkg/database"
)

func TestRepository_Postgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" || testing.Short() {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, &config.Config{
		Database: config.DatabaseConfig{Enabled: true, URL: url, MaxConns: 2, MinConns: 1},
	})
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db.Pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	pair, pre, post := fixture()
	run := NewRunSnapshot(SnapshotInput{
		StrategyID: "audit_test",
		ConfigHash: "abc",
		StartedAt:  time.Now(),
		Weights:    post,
	})
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM audit.voltarget_runs WHERE run_id = $1`, run.RunID)
	})

	require.NoError(t, repo.SaveRun(ctx, run, nil, BuildRows(pair, pre, post)))
	require.NoError(t, repo.SaveRun(ctx, run, nil, BuildRows(pair, pre, post)))

	got, err := repo.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, "audit_test", got.StrategyID)

	weights, err := repo.GetWeights(ctx, run.RunID)
	require.NoError(t, err)
	assert.Len(t, weights, 3)

	runs, err := repo.ListRuns(ctx, "audit_test", 5)
	require.NoError(t, err)
	assert.NotEmpty(t, runs)

	_, err = repo.GetRun(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}
