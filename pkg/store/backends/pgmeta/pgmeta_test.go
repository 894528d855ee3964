package pgmeta_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/store"
	"github.com/Digital-Defiance/brightchain-off/pkg/store/backends/memdisk"
	"github.com/Digital-Defiance/brightchain-off/pkg/store/backends/pgmeta"
)

func setupTestContainer(t *testing.T, ctx context.Context) string {
	t.Helper()

	container, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("pgmeta_test"),
		tcpostgres.WithUsername("test_user"),
		tcpostgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("docker unavailable, skipping pgmeta integration test: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return connStr
}

func TestListByPoolAcceleratesOverWrappedBackend(t *testing.T) {
	ctx := context.Background()
	connStr := setupTestContainer(t, ctx)

	backend := memdisk.New()
	idx, err := pgmeta.Open(ctx, connStr, backend)
	require.NoError(t, err)
	defer idx.Close()

	data := make([]byte, blocks.Tiny.Bytes())
	for i := range data {
		data[i] = byte(i)
	}
	block, err := blocks.NewRaw(blocks.Tiny, data, false, blocks.WithPool("pool-a"))
	require.NoError(t, err)

	require.NoError(t, idx.Put(ctx, block, store.PutOptions{}))

	ids, err := idx.ListByPool(ctx, "pool-a")
	require.NoError(t, err)
	require.Len(t, ids, 1)
	require.Equal(t, block.ID(), ids[0])

	ids, err = idx.ListByPool(ctx, "pool-b")
	require.NoError(t, err)
	require.Empty(t, ids)

	got, err := idx.Get(ctx, block.ID())
	require.NoError(t, err)
	wantData, err := block.Data()
	require.NoError(t, err)
	gotData, err := got.Data()
	require.NoError(t, err)
	require.Equal(t, wantData, gotData)

	require.NoError(t, idx.Delete(ctx, block.ID()))
	ids, err = idx.ListByPool(ctx, "pool-a")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestHealthCheckReflectsPostgresReachability(t *testing.T) {
	ctx := context.Background()
	connStr := setupTestContainer(t, ctx)

	idx, err := pgmeta.Open(ctx, connStr, memdisk.New())
	require.NoError(t, err)
	defer idx.Close()

	status := idx.HealthCheck(ctx)
	require.True(t, status.Healthy)
}
