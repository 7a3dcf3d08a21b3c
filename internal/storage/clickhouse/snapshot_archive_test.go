package clickhouse_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"rug-surfer/internal/domain"
	chstore "rug-surfer/internal/storage/clickhouse"
	"rug-surfer/internal/storage/migrations"
)

// setupTestDB starts a ClickHouse container, connects, and applies migrations.
func setupTestDB(t *testing.T) (*chstore.Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.1-alpine",
		ExposedPorts: []string{"9000/tcp", "8123/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Application: Ready for connections").
				WithStartupTimeout(60*time.Second),
			wait.ForListeningPort("9000/tcp"),
		),
		Env: map[string]string{
			"CLICKHOUSE_DB":       "test",
			"CLICKHOUSE_USER":     "default",
			"CLICKHOUSE_PASSWORD": "",
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start clickhouse container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	dsn := fmt.Sprintf("clickhouse://default@%s:%s/test", host, port.Port())
	conn, err := chstore.NewConn(ctx, dsn)
	require.NoError(t, err, "failed to connect to clickhouse")

	require.NoError(t, migrations.RunClickhouseMigrations(ctx, conn), "failed to run migrations")

	cleanup := func() {
		conn.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return conn, cleanup
}

func TestSnapshotArchive_InsertBatch(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	archive := chstore.NewSnapshotArchive(conn)
	ctx := context.Background()

	now := time.Now().UnixMilli()
	snapshots := []*domain.Snapshot{
		{Mint: "MintA", Price: 0.001, Liquidity: 15000, MarketCap: 50000, LastUpdatedMs: now},
		{Mint: "MintA", Price: 0.0011, Liquidity: 15100, MarketCap: 51000, LastUpdatedMs: now + 300},
		{Mint: "MintB", Price: 0.5, Liquidity: 80000, MarketCap: 200000, LastUpdatedMs: now},
	}

	require.NoError(t, archive.InsertBatch(ctx, snapshots))

	count, err := archive.CountByMint(ctx, "MintA")
	require.NoError(t, err)
	require.Equal(t, uint64(2), count)
}

func TestSnapshotArchive_EmptyBatchIsNoop(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	archive := chstore.NewSnapshotArchive(conn)
	require.NoError(t, archive.InsertBatch(context.Background(), nil))
}
