package tuple_test

import (
	"bytes"
	"testing"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
	"github.com/Digital-Defiance/brightchain-off/pkg/tuple"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawBlock(t *testing.T, size blocks.BlockSize, fill byte, opts ...blocks.Option) *blocks.Block {
	t.Helper()
	b, err := blocks.NewRaw(size, bytes.Repeat([]byte{fill}, size.Bytes()), false, opts...)
	require.NoError(t, err)
	return b
}

// Scenario 2: Whiten-dewhiten.
func TestWhitenDewhitenScenario(t *testing.T) {
	size, err := blocks.FromLength(512)
	require.NoError(t, err)

	p := rawBlock(t, size, 0x5A)
	w1 := rawBlock(t, size, 0xA5)
	w2 := rawBlock(t, size, 0x00)

	whitened, err := tuple.MakeWhitened(p, []*blocks.Block{w1, w2})
	require.NoError(t, err)

	data, err := whitened.Data()
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xFF}, size.Bytes()), data)

	recovered, err := tuple.RecoverPayload(whitened, []*blocks.Block{w1, w2})
	require.NoError(t, err)

	recoveredData, err := recovered.Data()
	require.NoError(t, err)
	pData, _ := p.Data()
	assert.Equal(t, pData, recoveredData)
}

// P3 XOR involution, generalized.
func TestXORInvolution(t *testing.T) {
	size := blocks.Small
	p := rawBlock(t, size, 0x11)
	w1 := rawBlock(t, size, 0x22)
	w2 := rawBlock(t, size, 0x33)

	whitened, err := tuple.MakeWhitened(p, []*blocks.Block{w1, w2})
	require.NoError(t, err)

	back, err := tuple.RecoverPayload(whitened, []*blocks.Block{w1, w2})
	require.NoError(t, err)

	pData, _ := p.Data()
	backData, _ := back.Data()
	assert.Equal(t, pData, backData)
}

// P4 Whitening preserves size.
func TestWhiteningPreservesSize(t *testing.T) {
	size := blocks.Medium
	p := rawBlock(t, size, 0x01)
	w := rawBlock(t, size, 0x02)

	whitened, err := tuple.MakeWhitened(p, []*blocks.Block{w})
	require.NoError(t, err)
	assert.Equal(t, size, whitened.Size())
}

func TestXORReduceRejectsSizeMismatch(t *testing.T) {
	a := rawBlock(t, blocks.Small, 0x01)
	b := rawBlock(t, blocks.Medium, 0x02)

	_, err := tuple.XORReduce([]*blocks.Block{a, b}, blocks.Whitened)
	require.Error(t, err)
	assert.Equal(t, offerrors.BlockSizeMismatch, offerrors.KindOf(err))
}

func TestXORReduceRequiresTwoInputs(t *testing.T) {
	a := rawBlock(t, blocks.Small, 0x01)
	_, err := tuple.XORReduce([]*blocks.Block{a}, blocks.Whitened)
	require.Error(t, err)
}

// Scenario 4 / P7: pool mismatch in tuple construction.
func TestNewTuplePoolMismatch(t *testing.T) {
	size := blocks.Small
	a := rawBlock(t, size, 0x01, blocks.WithPool("A"))
	b := rawBlock(t, size, 0x02, blocks.WithPool("A"))
	c := rawBlock(t, size, 0x03, blocks.WithPool("B"))

	_, err := tuple.New([]*blocks.Block{a, b, c}, "A")
	require.Error(t, err)
	assert.Equal(t, offerrors.PoolMismatch, offerrors.KindOf(err))

	// Without a poolId, mixed pools succeed.
	tup, err := tuple.New([]*blocks.Block{a, b, c}, "")
	require.NoError(t, err)
	assert.Len(t, tup.Members, 3)
}

func TestNewTupleAcceptsMatchingPool(t *testing.T) {
	size := blocks.Small
	a := rawBlock(t, size, 0x01, blocks.WithPool("mypool"))
	b := rawBlock(t, size, 0x02, blocks.WithPool("mypool"))

	tup, err := tuple.New([]*blocks.Block{a, b}, "mypool")
	require.NoError(t, err)
	assert.Equal(t, "mypool", tup.PoolID)
}
