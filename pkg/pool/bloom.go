// This file implements a Bloom-filter-accelerated Oracle. Bloom filters
// can false-positive but never false-negative, so membership is decided by
// first consulting the filter: a negative answer is trusted outright (it
// cannot be wrong), while a positive answer falls through to the
// authoritative set before HasInPool ever returns true. This mirrors the
// teacher's genuine bits-and-blooms/bloom usage in its cache exchange
// layer (pkg/storage/cache/bloom_exchange.go), repurposed here for pool
// integrity rather than cache-state gossip.
package pool

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// defaultFalsePositiveRate controls the bloom filter's size/hash-count
// trade-off; it only affects how often the authoritative fallback fires,
// never correctness.
const defaultFalsePositiveRate = 0.01

// BloomOracle is an in-memory Oracle backed by one Bloom filter per pool,
// with an authoritative set underneath for the definitive answer on a
// bloom-positive.
type BloomOracle struct {
	mu       sync.RWMutex
	filters  map[string]*bloom.BloomFilter
	members  map[string]map[string]struct{}
	capacity uint
}

// NewBloomOracle creates an empty oracle. expectedMembersPerPool sizes each
// pool's bloom filter; pools may exceed this estimate at the cost of a
// higher false-positive (i.e. fallback-check) rate, never at the cost of
// correctness.
func NewBloomOracle(expectedMembersPerPool uint) *BloomOracle {
	if expectedMembersPerPool == 0 {
		expectedMembersPerPool = 1024
	}
	return &BloomOracle{
		filters:  make(map[string]*bloom.BloomFilter),
		members:  make(map[string]map[string]struct{}),
		capacity: expectedMembersPerPool,
	}
}

func (o *BloomOracle) filterFor(poolID string) *bloom.BloomFilter {
	f, ok := o.filters[poolID]
	if !ok {
		f = bloom.NewWithEstimates(o.capacity, defaultFalsePositiveRate)
		o.filters[poolID] = f
		o.members[poolID] = make(map[string]struct{})
	}
	return f
}

// Add records checksumHex as a member of poolID.
func (o *BloomOracle) Add(_ context.Context, poolID, checksumHex string) error {
	if err := ValidateID(poolID); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	f := o.filterFor(poolID)
	f.AddString(checksumHex)
	o.members[poolID][checksumHex] = struct{}{}
	return nil
}

// HasInPool reports whether checksumHex is a recorded member of poolID.
func (o *BloomOracle) HasInPool(_ context.Context, poolID, checksumHex string) (bool, error) {
	if err := ValidateID(poolID); err != nil {
		return false, err
	}
	o.mu.RLock()
	defer o.mu.RUnlock()

	f, ok := o.filters[poolID]
	if !ok {
		return false, nil
	}
	if !f.TestString(checksumHex) {
		return false, nil
	}
	_, present := o.members[poolID][checksumHex]
	return present, nil
}

// ListByPool returns every checksum recorded for poolID.
func (o *BloomOracle) ListByPool(_ context.Context, poolID string) ([]string, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	members, ok := o.members[poolID]
	if !ok {
		return nil, nil
	}
	out := make([]string, 0, len(members))
	for k := range members {
		out = append(out, k)
	}
	return out, nil
}
