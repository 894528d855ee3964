// Package tuple implements the Tuple / XOR Engine (spec §4.4): N-way XOR
// tuple construction and reversal, with pool-scoped membership enforcement.
package tuple

import (
	"context"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
	"github.com/Digital-Defiance/brightchain-off/pkg/pool"
)

// Tuple is an ordered sequence of exactly len(Members) blocks of identical
// BlockSize, optionally scoped to a pool.
type Tuple struct {
	Members []*blocks.Block
	PoolID  string
}

// New constructs a Tuple from members, rejecting mismatched block sizes.
// If poolID is non-empty, every member's PoolID must equal poolID (spec
// P7): constructing a tuple with poolId=P and any member whose poolId != P
// fails PoolMismatch; without a poolId, mixed pools succeed.
func New(members []*blocks.Block, poolID string) (*Tuple, error) {
	if len(members) < 2 {
		return nil, offerrors.New("tuple.New", offerrors.BlockSizeMismatch, nil)
	}
	size := members[0].Size()
	for _, m := range members {
		if m.Size() != size {
			return nil, offerrors.New("tuple.New", offerrors.BlockSizeMismatch, nil)
		}
	}
	if poolID != "" {
		if err := pool.ValidateID(poolID); err != nil {
			return nil, err
		}
		for _, m := range members {
			if m.PoolID() != poolID {
				return nil, offerrors.New("tuple.New", offerrors.PoolMismatch, nil)
			}
		}
	}
	return &Tuple{Members: members, PoolID: poolID}, nil
}

// Size returns the shared BlockSize of every member.
func (t *Tuple) Size() blocks.BlockSize {
	return t.Members[0].Size()
}

// XORReduce XORs the bytes of every input block together, returning a new
// block of the same size tagged with blockType. Requires at least two
// inputs, all of identical size (spec §4.4 "BlockSizeMismatch").
func XORReduce(inputs []*blocks.Block, blockType blocks.BlockType, opts ...blocks.Option) (*blocks.Block, error) {
	if len(inputs) < 2 {
		return nil, offerrors.New("tuple.XORReduce", offerrors.BlockSizeMismatch, nil)
	}
	size := inputs[0].Size()
	acc := make([]byte, size.Bytes())

	canRead := true
	canPersist := true
	for _, in := range inputs {
		if in.Size() != size {
			return nil, offerrors.New("tuple.XORReduce", offerrors.BlockSizeMismatch, nil)
		}
		data, err := in.Data()
		if err != nil {
			return nil, err
		}
		for i := range acc {
			acc[i] ^= data[i]
		}
		canRead = canRead && in.CanRead()
		canPersist = canPersist && in.CanPersist()
	}

	finalOpts := append([]blocks.Option{}, opts...)
	if !canRead {
		finalOpts = append(finalOpts, blocks.WithUnreadable())
	}
	if !canPersist {
		finalOpts = append(finalOpts, blocks.WithUnpersistable())
	}

	return blocks.NewTyped(size, acc, blockType, finalOpts...)
}

// MakeWhitened is XORReduce([payload] ++ whiteners) tagged as a Whitened
// block (spec §4.4, §4.7): result = payload XOR w1 XOR ... XOR w(T-1).
func MakeWhitened(payload *blocks.Block, whiteners []*blocks.Block, opts ...blocks.Option) (*blocks.Block, error) {
	inputs := append([]*blocks.Block{payload}, whiteners...)
	return XORReduce(inputs, blocks.Whitened, opts...)
}

// RecoverPayload XORs a whitened block with its whiteners to recover the
// original payload block (spec P3: the XOR involution). The result is
// tagged Raw, since the recovered bytes are original file content.
func RecoverPayload(whitened *blocks.Block, whiteners []*blocks.Block, opts ...blocks.Option) (*blocks.Block, error) {
	inputs := append([]*blocks.Block{whitened}, whiteners...)
	return XORReduce(inputs, blocks.Raw, opts...)
}

// CheckPoolIntegrity verifies that every member's checksum is recorded in
// oracle under poolID, failing fast with PoolIntegrityError on the first
// miss and never consulting a block store (spec §4.4, P11: the integrity
// check runs before any member fetch).
func CheckPoolIntegrity(ctx context.Context, oracle pool.Oracle, poolID string, memberChecksumHex []string) error {
	for _, hex := range memberChecksumHex {
		ok, err := oracle.HasInPool(ctx, poolID, hex)
		if err != nil {
			return err
		}
		if !ok {
			return offerrors.New("tuple.CheckPoolIntegrity", offerrors.PoolIntegrityError, nil)
		}
	}
	return nil
}
