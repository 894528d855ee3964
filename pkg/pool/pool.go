// Package pool implements the pool membership oracle (spec §3 "Pool",
// §4.4, §6): a namespace label attached to blocks and tuples, and an
// oracle answering hasInPool(poolID, checksumHex) -> bool.
package pool

import (
	"context"
	"regexp"

	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
)

// IDPattern is the pool identifier regex from spec §6.
var IDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateID reports whether poolID matches the pool identifier grammar.
func ValidateID(poolID string) error {
	if !IDPattern.MatchString(poolID) {
		return offerrors.New("pool.ValidateID", offerrors.PoolMismatch, nil)
	}
	return nil
}

// Oracle answers pool membership queries. Implementations must never
// return a false positive — i.e. hasInPool must never return
// true for a checksum that was never added to the pool — but are free to
// use any data structure (including probabilistic ones layered over an
// authoritative source) internally.
type Oracle interface {
	// HasInPool reports whether checksumHex names a member of poolID.
	HasInPool(ctx context.Context, poolID, checksumHex string) (bool, error)

	// Add records checksumHex as a member of poolID.
	Add(ctx context.Context, poolID, checksumHex string) error

	// ListByPool returns every checksum hex string recorded for poolID, in
	// no particular order. Backs store.Backend.ListByPool.
	ListByPool(ctx context.Context, poolID string) ([]string, error)
}
