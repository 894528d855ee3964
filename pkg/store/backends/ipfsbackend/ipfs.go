// Package ipfsbackend is an IPFS-backed store.Backend, ported in spirit
// from the teacher's IPFSBackend
// (_examples/TheEntropyCollective-noisefs/pkg/storage/backends/ipfs.go)
// trimmed of
// the libp2p peer-manager and error-classifier machinery, which belong to
// the out-of-scope peer wire-transport layer (spec §1 Non-goals).
//
// IPFS addresses content by its own CID, not by our SHA3-512 checksum, so
// this backend keeps a small in-process index from our checksum to the CID
// IPFS returned on Add. The block's identity for spec purposes is always
// id == sha3-512(data); the CID is kept only as opaque provider metadata.
package ipfsbackend

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/checksum"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
	"github.com/Digital-Defiance/brightchain-off/pkg/store"
)

// Store is an IPFS-backed store.Backend.
type Store struct {
	shell *shell.Shell

	mu    sync.RWMutex
	cids  map[checksum.Checksum]string
	sizes map[checksum.Checksum]blocks.BlockSize
	dates map[checksum.Checksum]time.Time
	types map[checksum.Checksum]blocks.BlockType
	dts   map[checksum.Checksum]blocks.BlockDataType
	pools map[checksum.Checksum]string
}

// New connects to the IPFS HTTP API at endpoint (e.g. "127.0.0.1:5001").
func New(endpoint string) *Store {
	return &Store{
		shell: shell.NewShell(endpoint),
		cids:  make(map[checksum.Checksum]string),
		sizes: make(map[checksum.Checksum]blocks.BlockSize),
		dates: make(map[checksum.Checksum]time.Time),
		types: make(map[checksum.Checksum]blocks.BlockType),
		dts:   make(map[checksum.Checksum]blocks.BlockDataType),
		pools: make(map[checksum.Checksum]string),
	}
}

// Put adds block's bytes to IPFS and records the resulting CID against the
// block's checksum so later Gets can recover it by id alone.
func (s *Store) Put(_ context.Context, block *blocks.Block, _ store.PutOptions) error {
	if !block.CanPersist() {
		return offerrors.New("ipfsbackend.Put", offerrors.CannotStoreEphemeralData, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := block.ID()
	if _, exists := s.cids[id]; exists {
		return offerrors.New("ipfsbackend.Put", offerrors.BlockAlreadyExists, nil)
	}

	data, err := block.Data()
	if err != nil {
		return err
	}

	cid, err := s.shell.Add(bytes.NewReader(data))
	if err != nil {
		return offerrors.New("ipfsbackend.Put", offerrors.Unknown, err)
	}

	s.cids[id] = cid
	s.sizes[id] = block.Size()
	s.dates[id] = block.DateCreated()
	s.types[id] = block.Type()
	s.dts[id] = block.DataType()
	s.pools[id] = block.PoolID()
	return nil
}

// Get fetches the block named by id from IPFS via its recorded CID,
// recomputing and comparing the checksum to preserve the
// id == sha3-512(data) invariant independent of IPFS's own CID scheme.
func (s *Store) Get(_ context.Context, id checksum.Checksum) (*blocks.Block, error) {
	s.mu.RLock()
	cid, ok := s.cids[id]
	size := s.sizes[id]
	date := s.dates[id]
	blockType := s.types[id]
	dataType := s.dts[id]
	poolID := s.pools[id]
	s.mu.RUnlock()

	if !ok {
		return nil, offerrors.New("ipfsbackend.Get", offerrors.KeyNotFound, nil)
	}

	reader, err := s.shell.Cat(cid)
	if err != nil {
		return nil, offerrors.New("ipfsbackend.Get", offerrors.KeyNotFound, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, offerrors.New("ipfsbackend.Get", offerrors.Unknown, err)
	}

	b, err := blocks.FromStored(id, size, data, blockType, dataType, date, poolID)
	if err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Has reports whether id has a recorded CID, without round-tripping to the
// IPFS daemon.
func (s *Store) Has(_ context.Context, id checksum.Checksum) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cids[id]
	return ok, nil
}

// Delete unpins the CID recorded for id. IPFS garbage-collects unpinned
// objects on its own schedule; this backend only forgets the mapping.
func (s *Store) Delete(_ context.Context, id checksum.Checksum) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cid, ok := s.cids[id]
	if !ok {
		return nil
	}
	_ = s.shell.Unpin(cid)
	delete(s.cids, id)
	delete(s.sizes, id)
	delete(s.dates, id)
	delete(s.types, id)
	delete(s.dts, id)
	delete(s.pools, id)
	return nil
}

// ListBySize enumerates every recorded checksum matching size.
func (s *Store) ListBySize(_ context.Context, size blocks.BlockSize) ([]checksum.Checksum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]checksum.Checksum, 0)
	for id, sz := range s.sizes {
		if sz == size {
			out = append(out, id)
		}
	}
	return out, nil
}

// ListByPool enumerates every recorded checksum tagged with poolID.
func (s *Store) ListByPool(_ context.Context, poolID string) ([]checksum.Checksum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]checksum.Checksum, 0)
	for id, p := range s.pools {
		if p == poolID {
			out = append(out, id)
		}
	}
	return out, nil
}

// HealthCheck pings the IPFS daemon's ID endpoint.
func (s *Store) HealthCheck(_ context.Context) store.HealthStatus {
	start := time.Now()
	_, err := s.shell.ID()
	latency := time.Since(start)
	if err != nil {
		return store.HealthStatus{Healthy: false, Status: "offline", Latency: latency, LastChecked: time.Now()}
	}

	s.mu.RLock()
	count := int64(len(s.cids))
	s.mu.RUnlock()

	return store.HealthStatus{Healthy: true, Status: "healthy", Latency: latency, BlockCount: count, LastChecked: time.Now()}
}
