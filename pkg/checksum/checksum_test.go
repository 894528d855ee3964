package checksum_test

import (
	"testing"

	"github.com/Digital-Defiance/brightchain-off/pkg/checksum"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// P1 Checksum determinism.
func TestCalculateDeterministic(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")

	a := checksum.Calculate(data)
	b := checksum.Calculate(data)

	assert.True(t, a.Equal(b))
	assert.Equal(t, checksum.Size, len(a.Bytes()))
}

func TestCalculateDiffersForDifferentInput(t *testing.T) {
	a := checksum.Calculate([]byte("alpha"))
	b := checksum.Calculate([]byte("beta"))

	assert.False(t, a.Equal(b))
}

func TestHexRoundTrip(t *testing.T) {
	c := checksum.Calculate([]byte("round trip me"))

	parsed, err := checksum.FromHex(c.Hex())
	require.NoError(t, err)
	assert.True(t, c.Equal(parsed))
}

func TestFromBytesInvalidLength(t *testing.T) {
	_, err := checksum.FromBytes([]byte{1, 2, 3})
	require.Error(t, err)
	assert.Equal(t, offerrors.InvalidLength, offerrors.KindOf(err))
}

func TestFromHexInvalidHex(t *testing.T) {
	_, err := checksum.FromHex("not-hex!!")
	require.Error(t, err)
	assert.Equal(t, offerrors.InvalidHex, offerrors.KindOf(err))
}

func TestZeroChecksum(t *testing.T) {
	var z checksum.Checksum
	assert.True(t, z.IsZero())

	c := checksum.Calculate([]byte("x"))
	assert.False(t, c.IsZero())
}
