// Package pgmeta is a PostgreSQL-backed listByPool accelerator, grounded on
// the pgxpool connection-pool and query conventions in the teacher's
// compliance postgres store
// (_examples/TheEntropyCollective-noisefs/pkg/compliance/storage/postgres/database.go
// and repository.go — a sibling package belonging to the out-of-scope
// compliance feature pack, but whose pgx usage this index follows
// directly).
//
// Index is not itself a store.Backend: it wraps any store.Backend's
// Put/Delete calls and mirrors a checksum/pool/type/size/date row into
// Postgres, so ListByPool queries never have to scan the wrapped backend.
package pgmeta

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/checksum"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
	"github.com/Digital-Defiance/brightchain-off/pkg/store"
)

// schema is applied by Open; callers embedding this in a larger migration
// pipeline may skip it and create the table themselves with the same shape.
const schema = `
CREATE TABLE IF NOT EXISTS block_index (
	checksum    TEXT PRIMARY KEY,
	pool_id     TEXT NOT NULL DEFAULT '',
	block_type  INTEGER NOT NULL,
	block_size  INTEGER NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS block_index_pool_id_idx ON block_index (pool_id);
`

// Index wraps a store.Backend, mirroring Put/Delete into a Postgres table
// kept solely for fast pool-scoped listing.
type Index struct {
	pool    *pgxpool.Pool
	backend store.Backend
}

// Open connects to Postgres at connString, ensures the block_index table
// exists, and returns an Index wrapping backend.
func Open(ctx context.Context, connString string, backend store.Backend) (*Index, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, offerrors.New("pgmeta.Open", offerrors.Unknown, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, offerrors.New("pgmeta.Open", offerrors.Unknown, err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, offerrors.New("pgmeta.Open", offerrors.Unknown, err)
	}
	return &Index{pool: pool, backend: backend}, nil
}

// Close releases the connection pool.
func (idx *Index) Close() {
	idx.pool.Close()
}

// Put stores block via the wrapped backend, then mirrors its metadata into
// block_index. If the backend write fails, nothing is mirrored.
func (idx *Index) Put(ctx context.Context, block *blocks.Block, opts store.PutOptions) error {
	if err := idx.backend.Put(ctx, block, opts); err != nil {
		return err
	}
	_, err := idx.pool.Exec(ctx,
		`INSERT INTO block_index (checksum, pool_id, block_type, block_size, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (checksum) DO NOTHING`,
		block.ID().Hex(), block.PoolID(), int(block.Type()), block.Size().Bytes(), block.DateCreated(),
	)
	if err != nil {
		return offerrors.New("pgmeta.Put", offerrors.Unknown, err)
	}
	return nil
}

// Get delegates to the wrapped backend.
func (idx *Index) Get(ctx context.Context, id checksum.Checksum) (*blocks.Block, error) {
	return idx.backend.Get(ctx, id)
}

// Has delegates to the wrapped backend.
func (idx *Index) Has(ctx context.Context, id checksum.Checksum) (bool, error) {
	return idx.backend.Has(ctx, id)
}

// Delete removes the block from the wrapped backend and its index row.
func (idx *Index) Delete(ctx context.Context, id checksum.Checksum) error {
	if err := idx.backend.Delete(ctx, id); err != nil {
		return err
	}
	if _, err := idx.pool.Exec(ctx, `DELETE FROM block_index WHERE checksum = $1`, id.Hex()); err != nil {
		return offerrors.New("pgmeta.Delete", offerrors.Unknown, err)
	}
	return nil
}

// ListBySize delegates to the wrapped backend.
func (idx *Index) ListBySize(ctx context.Context, size blocks.BlockSize) ([]checksum.Checksum, error) {
	return idx.backend.ListBySize(ctx, size)
}

// ListByPool answers from the Postgres index rather than the wrapped
// backend, which is the entire point of this accelerator.
func (idx *Index) ListByPool(ctx context.Context, poolID string) ([]checksum.Checksum, error) {
	rows, err := idx.pool.Query(ctx, `SELECT checksum FROM block_index WHERE pool_id = $1`, poolID)
	if err != nil {
		return nil, offerrors.New("pgmeta.ListByPool", offerrors.Unknown, err)
	}
	defer rows.Close()

	out := make([]checksum.Checksum, 0)
	for rows.Next() {
		var hex string
		if err := rows.Scan(&hex); err != nil {
			return nil, offerrors.New("pgmeta.ListByPool", offerrors.Unknown, err)
		}
		id, err := checksum.FromHex(hex)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, offerrors.New("pgmeta.ListByPool", offerrors.Unknown, err)
	}
	return out, nil
}

// HealthCheck pings Postgres and delegates backend health, reporting the
// index unhealthy if either is unreachable.
func (idx *Index) HealthCheck(ctx context.Context) store.HealthStatus {
	start := time.Now()
	if err := idx.pool.Ping(ctx); err != nil {
		return store.HealthStatus{Healthy: false, Status: "offline", LastChecked: time.Now()}
	}
	backendStatus := idx.backend.HealthCheck(ctx)
	backendStatus.Latency += time.Since(start)
	return backendStatus
}
