package cbl_test

import (
	"testing"
	"time"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/cbl"
	"github.com/Digital-Defiance/brightchain-off/pkg/checksum"
	"github.com/Digital-Defiance/brightchain-off/pkg/crypto"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func someAddresses(n int) []checksum.Checksum {
	out := make([]checksum.Checksum, n)
	for i := range out {
		out[i] = checksum.Calculate([]byte{byte(i), byte(i >> 8)})
	}
	return out
}

func resolverWith(signer *crypto.Signer) crypto.StaticResolver {
	r := crypto.StaticResolver{}
	r.Register(signer)
	return r
}

// Concrete scenario #1: encode then decode a short file's worth of
// addresses and recover the same fields.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	signer, err := crypto.GenerateSigner()
	require.NoError(t, err)

	addrs := someAddresses(6)
	b, err := cbl.Encode(cbl.EncodeParams{
		Signer:             signer,
		DateCreated:        time.Now(),
		TupleSize:          3,
		OriginalDataLength: 12345,
		Addresses:          addrs,
		Size:               blocks.Small,
	})
	require.NoError(t, err)
	assert.Equal(t, blocks.CBL, b.Type())

	decoded, err := cbl.Decode(b, resolverWith(signer))
	require.NoError(t, err)
	assert.Equal(t, addrs, decoded.Addresses)
	assert.EqualValues(t, 12345, decoded.Fields.OriginalDataLength)
	assert.EqualValues(t, 3, decoded.Fields.TupleSize)
}

// P8: signature binding covers the address list, not just the header.
func TestDecodeRejectsTamperedAddresses(t *testing.T) {
	signer, err := crypto.GenerateSigner()
	require.NoError(t, err)

	addrs := someAddresses(3)
	b, err := cbl.Encode(cbl.EncodeParams{
		Signer:             signer,
		DateCreated:        time.Now(),
		TupleSize:          3,
		OriginalDataLength: 100,
		Addresses:          addrs,
		Size:               blocks.Small,
	})
	require.NoError(t, err)

	data, err := b.Data()
	require.NoError(t, err)
	tampered := append([]byte{}, data...)
	tampered[blocks.CBLHeaderLen] ^= 0xFF
	tamperedBlock, err := blocks.NewTyped(blocks.Small, tampered, blocks.CBL)
	require.NoError(t, err)

	_, err = cbl.Decode(tamperedBlock, resolverWith(signer))
	require.Error(t, err)
	assert.Equal(t, offerrors.SignatureInvalid, offerrors.KindOf(err))
}

// P9: a CBL whose dateCreated is in the future is rejected.
func TestDecodeRejectsFutureDate(t *testing.T) {
	signer, err := crypto.GenerateSigner()
	require.NoError(t, err)

	addrs := someAddresses(3)
	b, err := cbl.Encode(cbl.EncodeParams{
		Signer:             signer,
		DateCreated:        time.Now().Add(24 * time.Hour),
		TupleSize:          3,
		OriginalDataLength: 100,
		Addresses:          addrs,
		Size:               blocks.Small,
	})
	require.NoError(t, err)

	_, err = cbl.Decode(b, resolverWith(signer))
	require.Error(t, err)
	assert.Equal(t, offerrors.DateInFuture, offerrors.KindOf(err))
}

// P10: encoding more addresses than the block's capacity allows fails
// cleanly instead of truncating.
func TestEncodeRejectsCapacityExceeded(t *testing.T) {
	signer, err := crypto.GenerateSigner()
	require.NoError(t, err)

	capacity := cbl.AddressCapacity(blocks.Message, blocks.CBLHeaderLen)
	addrs := someAddresses((capacity + 1) * 2)

	_, err = cbl.Encode(cbl.EncodeParams{
		Signer:             signer,
		DateCreated:        time.Now(),
		TupleSize:          2,
		OriginalDataLength: 100,
		Addresses:          addrs,
		Size:               blocks.Message,
	})
	require.Error(t, err)
	assert.Equal(t, offerrors.CapacityExceeded, offerrors.KindOf(err))
}

func TestDecodeRejectsUnresolvableCreator(t *testing.T) {
	signer, err := crypto.GenerateSigner()
	require.NoError(t, err)

	b, err := cbl.Encode(cbl.EncodeParams{
		Signer:             signer,
		DateCreated:        time.Now(),
		TupleSize:          2,
		OriginalDataLength: 10,
		Addresses:          someAddresses(4),
		Size:               blocks.Small,
	})
	require.NoError(t, err)

	_, err = cbl.Decode(b, crypto.StaticResolver{})
	require.Error(t, err)
	assert.Equal(t, offerrors.SignatureInvalid, offerrors.KindOf(err))
}
