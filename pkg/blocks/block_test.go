package blocks_test

import (
	"bytes"
	"testing"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockSizeMapping(t *testing.T) {
	s, err := blocks.FromLength(8192)
	require.NoError(t, err)
	assert.Equal(t, blocks.Small, s)

	_, err = blocks.FromLength(9000)
	require.Error(t, err)
	assert.Equal(t, offerrors.InvalidBlockSize, offerrors.KindOf(err))
}

func TestNextLargest(t *testing.T) {
	s, err := blocks.NextLargest(1000)
	require.NoError(t, err)
	assert.Equal(t, blocks.Tiny, s) // smallest size >= 1000 is 1024

	s, err = blocks.NextLargest(512)
	require.NoError(t, err)
	assert.Equal(t, blocks.Message, s)

	_, err = blocks.NextLargest(10_000_000)
	require.Error(t, err)
}

// P2 Block round-trip.
func TestNewRawValidates(t *testing.T) {
	payload := bytes.Repeat([]byte{0x42}, 100)
	b, err := blocks.NewRaw(blocks.Small, payload, true)
	require.NoError(t, err)

	data, err := b.Data()
	require.NoError(t, err)
	assert.Len(t, data, blocks.Small.Bytes())
	assert.True(t, bytes.Equal(data[:100], payload))

	require.NoError(t, b.Validate())
}

func TestNewRawRejectsOversizedPayload(t *testing.T) {
	payload := bytes.Repeat([]byte{0x01}, blocks.Small.Bytes()+1)
	_, err := blocks.NewRaw(blocks.Small, payload, false)
	require.Error(t, err)
	assert.Equal(t, offerrors.DataLengthExceedsCapacity, offerrors.KindOf(err))
}

func TestValidateDetectsCorruption(t *testing.T) {
	b, err := blocks.NewRandom(blocks.Message)
	require.NoError(t, err)
	require.NoError(t, b.Validate())

	corrupt, err := blocks.FromStored(b.ID(), b.Size(), bytes.Repeat([]byte{0xFF}, blocks.Message.Bytes()), blocks.Random, blocks.RawData, b.DateCreated(), "")
	require.NoError(t, err)

	err = corrupt.Validate()
	require.Error(t, err)
	assert.Equal(t, offerrors.ChecksumMismatch, offerrors.KindOf(err))
}

func TestRawRandomWhitenedHaveNoHeaderOverhead(t *testing.T) {
	b, err := blocks.NewRandom(blocks.Tiny)
	require.NoError(t, err)

	n, err := b.TotalOverhead()
	require.NoError(t, err)
	assert.Zero(t, n)

	header, err := b.LayerHeaderData()
	require.NoError(t, err)
	assert.Empty(t, header)
}

func TestUnreadableBlockRejectsDataAccess(t *testing.T) {
	b, err := blocks.NewRandom(blocks.Message, blocks.WithUnreadable())
	require.NoError(t, err)

	_, err = b.Data()
	require.Error(t, err)
	assert.Equal(t, offerrors.BlockNotReadable, offerrors.KindOf(err))

	err = b.Validate()
	require.Error(t, err)
	assert.Equal(t, offerrors.BlockNotReadable, offerrors.KindOf(err))
}

func TestCBLHeaderRoundTrip(t *testing.T) {
	f := blocks.CBLHeaderFields{
		DateCreatedUnixMS:  1234567,
		AddressCount:       9,
		OriginalDataLength: 2048,
		TupleSize:          3,
	}
	copy(f.CreatorID[:], bytes.Repeat([]byte{0x07}, 16))
	copy(f.Signature[:], bytes.Repeat([]byte{0x09}, 64))

	encoded := blocks.EncodeCBLHeader(f)
	assert.Len(t, encoded, blocks.CBLHeaderLen)

	decoded, err := blocks.DecodeCBLHeader(encoded)
	require.NoError(t, err)
	assert.Equal(t, f, decoded)
}

func TestExtendedCBLHeaderRoundTrip(t *testing.T) {
	f := blocks.ExtendedCBLHeaderFields{
		FileName: "report.pdf",
		MimeType: "application/pdf",
	}
	f.TupleSize = 3
	f.AddressCount = 3

	encoded := blocks.EncodeExtendedCBLHeader(f)
	decoded, n, err := blocks.DecodeExtendedCBLHeader(encoded)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), n)
	assert.Equal(t, "report.pdf", decoded.FileName)
	assert.Equal(t, "application/pdf", decoded.MimeType)
}

func TestMultiEncryptedHeaderRoundTrip(t *testing.T) {
	f := blocks.MultiEncryptedHeaderFields{
		DataLength: 4096,
		Recipients: []blocks.RecipientSlot{{}, {}},
	}
	copy(f.Recipients[0].RecipientID[:], bytes.Repeat([]byte{0x01}, 16))
	copy(f.Recipients[1].RecipientID[:], bytes.Repeat([]byte{0x02}, 16))

	encoded := blocks.EncodeMultiEncryptedHeader(f)
	decoded, n, err := blocks.DecodeMultiEncryptedHeader(encoded)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), n)
	assert.Len(t, decoded.Recipients, 2)
	assert.Equal(t, f.Recipients[0].RecipientID, decoded.Recipients[0].RecipientID)
}
