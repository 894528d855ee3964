// Package cbl implements the CBL Encoder/Decoder (spec §4.5): frames
// creator, timestamp, address count, original length, tuple size, and
// signature into a single block-sized artifact, and validates every field
// on decode.
package cbl

import (
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"time"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/checksum"
	"github.com/Digital-Defiance/brightchain-off/pkg/crypto"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
)

// EncodeParams collects the inputs to Encode: the creator's signing
// identity, the tuple layout, and the ordered member addresses (already
// grouped tuple-major — tuple 0's members, then tuple 1's, ...).
type EncodeParams struct {
	Signer             *crypto.Signer
	DateCreated         time.Time
	TupleSize           uint8
	OriginalDataLength  uint64
	Addresses           []checksum.Checksum
	Size                blocks.BlockSize
	PoolID              string
}

// Encode builds a CBL block per spec §4.5 steps 1-5: assemble the header,
// concatenate addresses, sign header‖addresses, pad to block size with
// random bytes, and compute the final checksum.
func Encode(p EncodeParams) (*blocks.Block, error) {
	if len(p.Addresses) == 0 || int(p.TupleSize) == 0 || len(p.Addresses)%int(p.TupleSize) != 0 {
		return nil, offerrors.New("cbl.Encode", offerrors.MalformedCBL, nil)
	}

	capacity := AddressCapacity(p.Size, blocks.CBLHeaderLen)
	if len(p.Addresses) > capacity {
		return nil, offerrors.New("cbl.Encode", offerrors.CapacityExceeded, nil)
	}

	addrBytes := encodeAddresses(p.Addresses)

	creatorID := crypto.DeriveCreatorID(p.Signer.PublicKey())
	fields := blocks.CBLHeaderFields{
		CreatorID:          creatorID,
		DateCreatedUnixMS:  p.DateCreated.UnixMilli(),
		AddressCount:       uint32(len(p.Addresses)),
		OriginalDataLength: p.OriginalDataLength,
		TupleSize:          p.TupleSize,
	}
	unsigned := blocks.EncodeCBLHeader(fields)
	signedMessage := append(append([]byte{}, unsigned[:len(unsigned)-64]...), addrBytes...)
	signature := p.Signer.Sign(signedMessage)
	copy(fields.Signature[:], signature)

	header := blocks.EncodeCBLHeader(fields)
	payload := append(append([]byte{}, header...), addrBytes...)

	full := make([]byte, p.Size.Bytes())
	if len(payload) > len(full) {
		return nil, offerrors.New("cbl.Encode", offerrors.CapacityExceeded, nil)
	}
	copy(full, payload)
	if _, err := io.ReadFull(rand.Reader, full[len(payload):]); err != nil {
		return nil, offerrors.New("cbl.Encode", offerrors.Unknown, err)
	}

	opts := []blocks.Option{}
	if p.PoolID != "" {
		opts = append(opts, blocks.WithPool(p.PoolID))
	}
	return blocks.NewTyped(p.Size, full, blocks.CBL, opts...)
}

// Decoded is the parsed, validated content of a CBL block.
type Decoded struct {
	Fields    blocks.CBLHeaderFields
	Addresses []checksum.Checksum
}

// Decode parses and validates block (spec §4.5 decode steps): dateCreated
// must not be in the future, addressCount must be a multiple of tupleSize,
// and the signature over header(minus signature)‖addresses must verify
// under the creator's public key (resolved via resolver).
func Decode(block *blocks.Block, resolver crypto.IdentityResolver) (*Decoded, error) {
	data, err := block.Data()
	if err != nil {
		return nil, err
	}
	return decodeCBLBytes(data, resolver)
}

func decodeCBLBytes(data []byte, resolver crypto.IdentityResolver) (*Decoded, error) {
	fields, err := blocks.DecodeCBLHeader(data)
	if err != nil {
		return nil, err
	}

	if time.UnixMilli(fields.DateCreatedUnixMS).After(time.Now()) {
		return nil, offerrors.New("cbl.Decode", offerrors.DateInFuture, nil)
	}
	if fields.TupleSize == 0 || fields.AddressCount%uint32(fields.TupleSize) != 0 {
		return nil, offerrors.New("cbl.Decode", offerrors.MalformedCBL, nil)
	}

	addrStart := blocks.CBLHeaderLen
	addrEnd := addrStart + int(fields.AddressCount)*blocks.AddressLen
	if len(data) < addrEnd {
		return nil, offerrors.New("cbl.Decode", offerrors.MalformedCBL, nil)
	}
	addrBytes := data[addrStart:addrEnd]

	unsignedHeader := blocks.EncodeCBLHeader(fields)[:blocks.CBLHeaderLen-64]
	message := append(append([]byte{}, unsignedHeader...), addrBytes...)

	publicKey, ok := resolver.ResolvePublicKey(fields.CreatorID)
	if !ok {
		return nil, offerrors.New("cbl.Decode", offerrors.SignatureInvalid, nil)
	}
	if !crypto.Verify(ed25519.PublicKey(publicKey), message, fields.Signature[:]) {
		return nil, offerrors.New("cbl.Decode", offerrors.SignatureInvalid, nil)
	}

	addresses, err := decodeAddresses(addrBytes)
	if err != nil {
		return nil, err
	}

	return &Decoded{Fields: fields, Addresses: addresses}, nil
}

// AddressCapacity returns floor((blockSize - headerSize) / 64), the
// maximum address count a CBL of this size and header can hold (spec
// §4.5).
func AddressCapacity(size blocks.BlockSize, headerSize int) int {
	return (size.Bytes() - headerSize) / blocks.AddressLen
}

func encodeAddresses(addrs []checksum.Checksum) []byte {
	out := make([]byte, 0, len(addrs)*blocks.AddressLen)
	for _, a := range addrs {
		out = append(out, a.Bytes()...)
	}
	return out
}

func decodeAddresses(data []byte) ([]checksum.Checksum, error) {
	if len(data)%blocks.AddressLen != 0 {
		return nil, offerrors.New("cbl.decodeAddresses", offerrors.MalformedCBL, nil)
	}
	n := len(data) / blocks.AddressLen
	out := make([]checksum.Checksum, n)
	for i := 0; i < n; i++ {
		id, err := checksum.FromBytes(data[i*blocks.AddressLen : (i+1)*blocks.AddressLen])
		if err != nil {
			return nil, offerrors.New("cbl.decodeAddresses", offerrors.MalformedCBL, err)
		}
		out[i] = id
	}
	return out, nil
}
