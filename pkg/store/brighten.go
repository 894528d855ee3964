package store

import (
	"context"
	"math/rand"
	"sort"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/checksum"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
	"github.com/Digital-Defiance/brightchain-off/pkg/tuple"
)

// BrightenResult carries the identifiers Brighten produces: the stored
// whitened block, the source it was derived from, and the peers used.
type BrightenResult struct {
	BrightenedKey checksum.Checksum
	SourceKey     checksum.Checksum
	RandomKeys    []checksum.Checksum
}

// Brighten is the store-side XOR-with-N-peers primitive of spec §4.3: it
// selects n distinct eligible blocks of the source's size already in b,
// computes source XOR peer1 XOR ... XOR peerN, stores the result as a
// Whitened block, and returns the three identifiers. It fails with
// InsufficientRandomBlocks if fewer than n eligible peers exist and stores
// nothing in that case (P6), or KeyNotFound if source is absent.
//
// An "eligible peer" is any other block of the same BlockSize whose
// BlockType is Random: the spec's whitener-eligibility Open Question is
// resolved by only ever drawing whiteners from the pool of purpose-built
// random blocks, never from Raw (plaintext) or any other block kind, so a
// brighten call can never leak plaintext through the XOR tuple (see
// DESIGN.md).
//
// When seed != 0, peer selection is deterministic: candidates are sorted by
// hex id and shuffled with a seeded PRNG, satisfying the reproducibility
// requirement in spec §4.3. With seed == 0, candidates are used in their
// sorted order, which is deterministic given the store's current state
// (also satisfying the spec) but not caller-chosen.
func Brighten(ctx context.Context, b Backend, sourceID checksum.Checksum, n int, seed int64) (*BrightenResult, error) {
	source, err := b.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	candidateIDs, err := b.ListBySize(ctx, source.Size())
	if err != nil {
		return nil, err
	}
	sort.Slice(candidateIDs, func(i, j int) bool { return candidateIDs[i].Hex() < candidateIDs[j].Hex() })

	candidates := make([]*blocks.Block, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		if id.Equal(sourceID) {
			continue
		}
		select {
		case <-ctx.Done():
			return nil, offerrors.New("store.Brighten", offerrors.Cancelled, ctx.Err())
		default:
		}
		peer, err := b.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if peer.Type() != blocks.Random {
			continue
		}
		candidates = append(candidates, peer)
	}

	if len(candidates) < n {
		return nil, offerrors.New("store.Brighten", offerrors.InsufficientRandomBlocks, nil)
	}

	if seed != 0 {
		r := rand.New(rand.NewSource(seed))
		r.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	}
	peers := candidates[:n]

	chosen := make([]checksum.Checksum, 0, n)
	for _, peer := range peers {
		chosen = append(chosen, peer.ID())
	}

	whitened, err := tuple.MakeWhitened(source, peers)
	if err != nil {
		return nil, err
	}

	if err := b.Put(ctx, whitened, PutOptions{Durability: Durable}); err != nil {
		return nil, err
	}

	return &BrightenResult{
		BrightenedKey: whitened.ID(),
		SourceKey:     sourceID,
		RandomKeys:    chosen,
	}, nil
}
