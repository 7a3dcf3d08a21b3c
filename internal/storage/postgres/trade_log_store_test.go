package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"rug-surfer/internal/domain"
	"rug-surfer/internal/storage"
	"rug-surfer/internal/storage/migrations"
	"rug-surfer/internal/storage/postgres"
)

// setupTestDB creates a PostgreSQL container and applies migrations.
func setupTestDB(t *testing.T) (*postgres.Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := postgres.NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	require.NoError(t, migrations.RunPostgresMigrations(ctx, pool), "failed to run migrations")

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func sampleTrade(id string, exitMs int64) *domain.ClosedTrade {
	return &domain.ClosedTrade{
		TradeID:     id,
		Mint:        "MintA",
		EntryTimeMs: exitMs - 30000,
		ExitTimeMs:  exitMs,
		EntryPrice:  1.0,
		ExitPrice:   1.06,
		PnlPercent:  0.06,
		PnlBase:     0.012,
		ExitReason:  domain.ExitReasonTP,
		PRugEntry:   0.1,
		PRugExit:    0.12,
		Simulated:   true,
		Features: domain.FeatureVector{
			Mint:      "MintA",
			Price:     1.06,
			Liquidity: 20000,
			MarketCap: 60000,
			Momentum:  1.8,
		},
	}
}

func TestTradeLogStore_AppendAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTradeLogStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, sampleTrade("t2", 2000)))
	require.NoError(t, store.Append(ctx, sampleTrade("t1", 1000)))

	trades, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	require.Equal(t, "t1", trades[0].TradeID, "trades must be ordered by exit time")
	require.Equal(t, "t2", trades[1].TradeID)

	got := trades[0]
	require.Equal(t, domain.ExitReasonTP, got.ExitReason)
	require.InDelta(t, 0.06, got.PnlPercent, 1e-9)
	require.InDelta(t, 20000, got.Features.Liquidity, 1e-9)
	require.True(t, got.Simulated)
}

func TestTradeLogStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTradeLogStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, sampleTrade("t1", 1000)))

	err := store.Append(ctx, sampleTrade("t1", 1000))
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	trades, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1, "duplicate append must not add a row")
}

func TestTradeLogStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTradeLogStore(pool)
	ctx := context.Background()

	require.ErrorIs(t, store.Append(ctx, nil), storage.ErrInvalidInput)
	require.ErrorIs(t, store.Append(ctx, &domain.ClosedTrade{}), storage.ErrInvalidInput)
}
