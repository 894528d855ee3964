package workers_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/Digital-Defiance/brightchain-off/internal/workers"
	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/checksum"
	"github.com/Digital-Defiance/brightchain-off/pkg/store"
	"github.com/Digital-Defiance/brightchain-off/pkg/store/backends/memdisk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawBlock(t *testing.T, fill byte) *blocks.Block {
	t.Helper()
	b, err := blocks.NewRaw(blocks.Small, bytes.Repeat([]byte{fill}, blocks.Small.Bytes()), false)
	require.NoError(t, err)
	return b
}

func TestParallelXORProducesOneWhitenedBlockPerTuple(t *testing.T) {
	p := workers.New(4)
	ctx := context.Background()

	var tuples [][]*blocks.Block
	for i := 0; i < 5; i++ {
		tuples = append(tuples, []*blocks.Block{rawBlock(t, byte(i)), rawBlock(t, byte(i+1))})
	}

	results, err := p.ParallelXOR(ctx, tuples, blocks.Whitened)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for _, r := range results {
		assert.Equal(t, blocks.Whitened, r.Type())
	}
}

func TestParallelXORPropagatesSizeMismatch(t *testing.T) {
	p := workers.New(2)
	ctx := context.Background()

	mismatched, err := blocks.NewRaw(blocks.Medium, bytes.Repeat([]byte{0x01}, blocks.Medium.Bytes()), false)
	require.NoError(t, err)

	tuples := [][]*blocks.Block{{rawBlock(t, 0x01), mismatched}}
	_, err = p.ParallelXOR(ctx, tuples, blocks.Whitened)
	require.Error(t, err)
}

func TestParallelPutThenGet(t *testing.T) {
	p := workers.New(2)
	ctx := context.Background()
	backend := memdisk.New()

	var blockList []*blocks.Block
	for i := 0; i < 4; i++ {
		blockList = append(blockList, rawBlock(t, byte(i+10)))
	}

	require.NoError(t, p.ParallelPut(ctx, blockList, store.PutOptions{Durability: store.Durable}, backend))

	ids := make([]checksum.Checksum, len(blockList))
	for i, b := range blockList {
		ids[i] = b.ID()
	}

	got, err := p.ParallelGet(ctx, ids, backend)
	require.NoError(t, err)
	require.Len(t, got, len(blockList))
	for i, b := range got {
		data, err := b.Data()
		require.NoError(t, err)
		wantData, _ := blockList[i].Data()
		assert.Equal(t, wantData, data)
	}
}
