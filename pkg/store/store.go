// Package store implements the Block Store (spec §4.3): a keyed repository
// mapping checksum -> block bytes, with durability levels, a pool
// namespace, and the brightening primitive. Backend is the capability every
// concrete backend (memdisk, diskfs, ipfsbackend) satisfies; tuple, cbl,
// and reconstruct do not import this package at all (reconstruct takes a
// GetBlock function instead), matching the teacher's storage.Backend seam
// (_examples/TheEntropyCollective-noisefs/pkg/storage/interface.go) one
// level down from its IPFS/peer concerns.
package store

import (
	"context"
	"time"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/checksum"
)

// DurabilityLevel selects how strongly a Put is expected to survive a
// restart of the backend. Ephemeral backends (and the memdisk backend) are
// free to treat both levels identically.
type DurabilityLevel int

const (
	Ephemeral DurabilityLevel = iota
	Durable
)

// PutOptions carries the per-call knobs for Backend.Put.
type PutOptions struct {
	Durability DurabilityLevel
}

// HealthStatus mirrors the teacher's storage.HealthStatus shape
// (_examples/TheEntropyCollective-noisefs/pkg/storage/health.go), trimmed
// to what a block-addressed store can
// meaningfully report without a peer network.
type HealthStatus struct {
	Healthy     bool
	Status      string
	Latency     time.Duration
	BlockCount  int64
	LastChecked time.Time
}

// Backend is the capability contract of spec §4.3. Every suspending
// operation takes a context so callers can cancel at the next I/O boundary
// (spec §5).
type Backend interface {
	// Put stores block under its own ID, honoring opts.Durability. Fails
	// with CannotStoreEphemeralData if block.DataType() is
	// EphemeralStructuredData, BlockAlreadyExists if the key is already
	// present, or InvalidBlockSize if block.Size() doesn't match the
	// backend's configured block size (backends that accept any size never
	// raise this).
	Put(ctx context.Context, block *blocks.Block, opts PutOptions) error

	// Get fetches the block named by id. Fails with KeyNotFound if absent.
	// The returned block has already passed Validate().
	Get(ctx context.Context, id checksum.Checksum) (*blocks.Block, error)

	// Has reports whether id is present, without fetching its bytes.
	Has(ctx context.Context, id checksum.Checksum) (bool, error)

	// Delete removes id. Backends that never support deletion return
	// NotSupported.
	Delete(ctx context.Context, id checksum.Checksum) error

	// ListBySize enumerates every stored block of the given size, used by
	// Brighten to find eligible whitener peers. Order is unspecified.
	ListBySize(ctx context.Context, size blocks.BlockSize) ([]checksum.Checksum, error)

	// ListByPool enumerates every stored block recorded under poolID. A
	// backend with no pool-aware index may delegate to a pool.Oracle
	// instead and return NotSupported here; callers needing pool listing
	// should prefer the oracle directly (spec §4.3's listByPool is the pool
	// integrity accelerator, not a second source of truth).
	ListByPool(ctx context.Context, poolID string) ([]checksum.Checksum, error)

	// HealthCheck reports backend status for operability tooling
	// (cmd/offstatusd); never consulted by the core packages.
	HealthCheck(ctx context.Context) HealthStatus
}
