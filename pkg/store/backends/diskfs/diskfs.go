// Package diskfs is a filesystem-backed store.Backend implementing the
// on-disk layout of spec §6:
// <root>/<sizeLabel>/<hex[0]>/<hex[1]>/<hexChecksum> holds the block bytes,
// and <hexChecksum>.m.json holds a sidecar metadata file. The two-nibble
// fanout bounds any single directory's entry count, the same concern the
// teacher addresses with its IPFS CID sharding conventions.
package diskfs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/checksum"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
	"github.com/Digital-Defiance/brightchain-off/pkg/store"
)

// meta is the sidecar JSON recorded next to every block's bytes.
type meta struct {
	BlockType              int       `json:"blockType"`
	BlockDataType          int       `json:"blockDataType"`
	BlockSize              int       `json:"blockSize"`
	LengthBeforeEncryption int       `json:"lengthBeforeEncryption"`
	DateCreated            time.Time `json:"dateCreated"`
	PoolID                 string    `json:"poolId,omitempty"`
}

// Store is a filesystem-backed store.Backend rooted at a directory.
type Store struct {
	mu   sync.RWMutex
	root string
}

// New opens (creating if necessary) a diskfs store rooted at root.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, offerrors.New("diskfs.New", offerrors.Unknown, err)
	}
	return &Store{root: root}, nil
}

func (s *Store) pathFor(size blocks.BlockSize, id checksum.Checksum) (dir, blockPath, metaPath string) {
	hex := id.Hex()
	dir = filepath.Join(s.root, size.String(), hex[0:1], hex[1:2])
	blockPath = filepath.Join(dir, hex)
	metaPath = blockPath + ".m.json"
	return
}

// Put writes block's bytes and sidecar metadata, failing BlockAlreadyExists
// if the block file is already present.
func (s *Store) Put(_ context.Context, block *blocks.Block, _ store.PutOptions) error {
	if !block.CanPersist() {
		return offerrors.New("diskfs.Put", offerrors.CannotStoreEphemeralData, nil)
	}

	data, err := block.Data()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir, blockPath, metaPath := s.pathFor(block.Size(), block.ID())
	if _, err := os.Stat(blockPath); err == nil {
		return offerrors.New("diskfs.Put", offerrors.BlockAlreadyExists, nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return offerrors.New("diskfs.Put", offerrors.Unknown, err)
	}
	if err := os.WriteFile(blockPath, data, 0o644); err != nil {
		return offerrors.New("diskfs.Put", offerrors.Unknown, err)
	}

	m := meta{
		BlockType:              int(block.Type()),
		BlockDataType:          int(block.DataType()),
		BlockSize:              block.Size().Bytes(),
		LengthBeforeEncryption: len(data),
		DateCreated:            block.DateCreated(),
		PoolID:                 block.PoolID(),
	}
	metaBytes, err := json.Marshal(m)
	if err != nil {
		return offerrors.New("diskfs.Put", offerrors.Unknown, err)
	}
	if err := os.WriteFile(metaPath, metaBytes, 0o644); err != nil {
		return offerrors.New("diskfs.Put", offerrors.Unknown, err)
	}
	return nil
}

// locate finds the block's path by trying every BlockSize bucket, since the
// on-disk layout shards by size and the caller supplies only a checksum.
func (s *Store) locate(id checksum.Checksum) (blocks.BlockSize, string, string, error) {
	for _, size := range []blocks.BlockSize{blocks.Message, blocks.Tiny, blocks.Small, blocks.Medium, blocks.Large, blocks.Huge} {
		_, blockPath, metaPath := s.pathFor(size, id)
		if _, err := os.Stat(blockPath); err == nil {
			return size, blockPath, metaPath, nil
		}
	}
	return blocks.UnknownSize, "", "", offerrors.New("diskfs.locate", offerrors.KeyNotFound, nil)
}

// Get reads the block named by id back from disk.
func (s *Store) Get(_ context.Context, id checksum.Checksum) (*blocks.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size, blockPath, metaPath, err := s.locate(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(blockPath)
	if err != nil {
		return nil, offerrors.New("diskfs.Get", offerrors.KeyNotFound, err)
	}

	metaBytes, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, offerrors.New("diskfs.Get", offerrors.Unknown, err)
	}
	var m meta
	if err := json.Unmarshal(metaBytes, &m); err != nil {
		return nil, offerrors.New("diskfs.Get", offerrors.Unknown, err)
	}

	b, err := blocks.FromStored(id, size, data, blocks.BlockType(m.BlockType), blocks.BlockDataType(m.BlockDataType), m.DateCreated, m.PoolID)
	if err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Has reports whether id is present on disk.
func (s *Store) Has(_ context.Context, id checksum.Checksum) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, _, _, err := s.locate(id)
	if err != nil {
		if offerrors.Is(err, offerrors.KeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes the block and its sidecar metadata from disk.
func (s *Store) Delete(_ context.Context, id checksum.Checksum) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, blockPath, metaPath, err := s.locate(id)
	if err != nil {
		if offerrors.Is(err, offerrors.KeyNotFound) {
			return nil
		}
		return err
	}
	_ = os.Remove(blockPath)
	_ = os.Remove(metaPath)
	return nil
}

// ListBySize walks the size-bucketed directory tree for size, collecting
// every stored checksum.
func (s *Store) ListBySize(_ context.Context, size blocks.BlockSize) ([]checksum.Checksum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root := filepath.Join(s.root, size.String())
	out := make([]checksum.Checksum, 0)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) == ".json" {
			return nil
		}
		id, parseErr := checksum.FromHex(filepath.Base(path))
		if parseErr != nil {
			return nil
		}
		out = append(out, id)
		return nil
	})
	if err != nil {
		return nil, offerrors.New("diskfs.ListBySize", offerrors.Unknown, err)
	}
	return out, nil
}

// ListByPool is not backed by an index in diskfs; callers needing
// pool-scoped listing should consult a pool.Oracle directly.
func (s *Store) ListByPool(_ context.Context, _ string) ([]checksum.Checksum, error) {
	return nil, offerrors.New("diskfs.ListByPool", offerrors.NotSupported, nil)
}

// HealthCheck reports whether root is reachable and how many blocks it
// currently holds across every size bucket.
func (s *Store) HealthCheck(ctx context.Context) store.HealthStatus {
	start := time.Now()
	_, err := os.Stat(s.root)
	if err != nil {
		return store.HealthStatus{Healthy: false, Status: "offline", LastChecked: time.Now()}
	}

	var count int64
	for _, size := range []blocks.BlockSize{blocks.Message, blocks.Tiny, blocks.Small, blocks.Medium, blocks.Large, blocks.Huge} {
		ids, err := s.ListBySize(ctx, size)
		if err == nil {
			count += int64(len(ids))
		}
	}

	return store.HealthStatus{
		Healthy:     true,
		Status:      "healthy",
		Latency:     time.Since(start),
		BlockCount:  count,
		LastChecked: time.Now(),
	}
}
