package store_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
	"github.com/Digital-Defiance/brightchain-off/pkg/store"
	"github.com/Digital-Defiance/brightchain-off/pkg/store/backends/memdisk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putRaw(t *testing.T, s store.Backend, fill byte) *blocks.Block {
	t.Helper()
	b, err := blocks.NewRaw(blocks.Small, bytes.Repeat([]byte{fill}, blocks.Small.Bytes()), false)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), b, store.PutOptions{Durability: store.Durable}))
	return b
}

func putRandom(t *testing.T, s store.Backend) *blocks.Block {
	t.Helper()
	b, err := blocks.NewRandom(blocks.Small)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), b, store.PutOptions{Durability: store.Durable}))
	return b
}

// P5/P6: Brighten succeeds with enough eligible (Random) peers and fails
// cleanly without storing anything when there aren't enough.
func TestBrightenSucceedsWithEnoughPeers(t *testing.T) {
	s := memdisk.New()
	ctx := context.Background()

	source := putRaw(t, s, 0x11)
	putRandom(t, s)
	putRandom(t, s)

	result, err := store.Brighten(ctx, s, source.ID(), 2, 1)
	require.NoError(t, err)
	assert.True(t, result.SourceKey.Equal(source.ID()))
	assert.Len(t, result.RandomKeys, 2)

	whitened, err := s.Get(ctx, result.BrightenedKey)
	require.NoError(t, err)
	assert.Equal(t, blocks.Whitened, whitened.Type())
	assert.Equal(t, blocks.Small, whitened.Size())
}

func TestBrightenFailsWithInsufficientPeers(t *testing.T) {
	s := memdisk.New()
	ctx := context.Background()

	source := putRaw(t, s, 0x11)
	putRandom(t, s)

	_, err := store.Brighten(ctx, s, source.ID(), 3, 0)
	require.Error(t, err)
	assert.Equal(t, offerrors.InsufficientRandomBlocks, offerrors.KindOf(err))

	ids, err := s.ListBySize(ctx, blocks.Small)
	require.NoError(t, err)
	assert.Len(t, ids, 2, "no whitened block should be stored on failure")
}

// A Raw (plaintext) block is never eligible as a whitener peer, even when
// it is the only other same-size block available.
func TestBrightenRejectsRawPeers(t *testing.T) {
	s := memdisk.New()
	ctx := context.Background()

	source := putRaw(t, s, 0x11)
	putRaw(t, s, 0x22)
	putRaw(t, s, 0x33)

	_, err := store.Brighten(ctx, s, source.ID(), 2, 0)
	require.Error(t, err)
	assert.Equal(t, offerrors.InsufficientRandomBlocks, offerrors.KindOf(err))

	ids, err := s.ListBySize(ctx, blocks.Small)
	require.NoError(t, err)
	assert.Len(t, ids, 3, "no whitened block should be stored on failure")
}

func TestBrightenDeterministicWithSeed(t *testing.T) {
	s := memdisk.New()
	ctx := context.Background()

	source := putRaw(t, s, 0x11)
	peerData := make([][]byte, 5)
	for i := range peerData {
		peer := putRandom(t, s)
		peerData[i] = mustData(t, peer)
	}

	r1, err := store.Brighten(ctx, s, source.ID(), 2, 42)
	require.NoError(t, err)

	s2 := memdisk.New()
	ctx2 := context.Background()
	source2, err := blocks.NewRaw(blocks.Small, mustData(t, source), false)
	require.NoError(t, err)
	require.NoError(t, s2.Put(ctx2, source2, store.PutOptions{}))
	for _, data := range peerData {
		b, err := blocks.NewTyped(blocks.Small, data, blocks.Random)
		require.NoError(t, err)
		require.NoError(t, s2.Put(ctx2, b, store.PutOptions{}))
	}

	r2, err := store.Brighten(ctx2, s2, source2.ID(), 2, 42)
	require.NoError(t, err)

	assert.Equal(t, r1.RandomKeys, r2.RandomKeys)
}

func mustData(t *testing.T, b *blocks.Block) []byte {
	t.Helper()
	data, err := b.Data()
	require.NoError(t, err)
	return data
}
