// Package memdisk is an in-process, map-backed store.Backend: the direct
// analogue of the teacher's MockBackend
// (_examples/TheEntropyCollective-noisefs/pkg/storage/backends/mock.go),
// used as the default backend and throughout the test suite.
package memdisk

import (
	"context"
	"sync"
	"time"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/checksum"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
	"github.com/Digital-Defiance/brightchain-off/pkg/store"
)

// Store is a map-backed store.Backend. Durability levels are both tracked
// and reported but otherwise indistinguishable: everything lives in
// process memory for the life of the Store.
type Store struct {
	mu     sync.RWMutex
	blocks map[checksum.Checksum]*blocks.Block
	pools  map[string]map[checksum.Checksum]struct{}
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		blocks: make(map[checksum.Checksum]*blocks.Block),
		pools:  make(map[string]map[checksum.Checksum]struct{}),
	}
}

// Put stores block under block.ID(), failing BlockAlreadyExists if present
// and CannotStoreEphemeralData if the block's data type is never
// persistable (spec §4.3).
func (s *Store) Put(_ context.Context, block *blocks.Block, _ store.PutOptions) error {
	if !block.CanPersist() {
		return offerrors.New("memdisk.Put", offerrors.CannotStoreEphemeralData, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := block.ID()
	if _, exists := s.blocks[id]; exists {
		return offerrors.New("memdisk.Put", offerrors.BlockAlreadyExists, nil)
	}
	s.blocks[id] = block

	if poolID := block.PoolID(); poolID != "" {
		members, ok := s.pools[poolID]
		if !ok {
			members = make(map[checksum.Checksum]struct{})
			s.pools[poolID] = members
		}
		members[id] = struct{}{}
	}
	return nil
}

// Get fetches the block named by id, failing KeyNotFound if absent.
func (s *Store) Get(_ context.Context, id checksum.Checksum) (*blocks.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blocks[id]
	if !ok {
		return nil, offerrors.New("memdisk.Get", offerrors.KeyNotFound, nil)
	}
	return b, nil
}

// Has reports whether id is present.
func (s *Store) Has(_ context.Context, id checksum.Checksum) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.blocks[id]
	return ok, nil
}

// Delete removes id, succeeding even if absent.
func (s *Store) Delete(_ context.Context, id checksum.Checksum) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blocks, id)
	for _, members := range s.pools {
		delete(members, id)
	}
	return nil
}

// ListBySize enumerates every stored block matching size.
func (s *Store) ListBySize(_ context.Context, size blocks.BlockSize) ([]checksum.Checksum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]checksum.Checksum, 0)
	for id, b := range s.blocks {
		if b.Size() == size {
			out = append(out, id)
		}
	}
	return out, nil
}

// ListByPool enumerates every stored block recorded under poolID.
func (s *Store) ListByPool(_ context.Context, poolID string) ([]checksum.Checksum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members, ok := s.pools[poolID]
	if !ok {
		return nil, nil
	}
	out := make([]checksum.Checksum, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out, nil
}

// HealthCheck always reports healthy: an in-process map cannot disconnect.
func (s *Store) HealthCheck(_ context.Context) store.HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return store.HealthStatus{
		Healthy:     true,
		Status:      "healthy",
		Latency:     0,
		BlockCount:  int64(len(s.blocks)),
		LastChecked: time.Now(),
	}
}
