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

// ExtendedEncodeParams is EncodeParams plus the file metadata an
// ExtendedCBL carries ahead of its address list (spec §3 "ExtendedCBL").
type ExtendedEncodeParams struct {
	EncodeParams
	FileName string
	MimeType string
}

// EncodeExtended builds an ExtendedCBL block: the fixed CBL header, then
// length-prefixed fileName/mimeType, then the address list — the signature
// covers the extra fields too (spec §4.5 "Extended variant").
func EncodeExtended(p ExtendedEncodeParams) (*blocks.Block, error) {
	if len(p.Addresses) == 0 || int(p.TupleSize) == 0 || len(p.Addresses)%int(p.TupleSize) != 0 {
		return nil, offerrors.New("cbl.EncodeExtended", offerrors.MalformedCBL, nil)
	}

	creatorID := crypto.DeriveCreatorID(p.Signer.PublicKey())
	extFields := blocks.ExtendedCBLHeaderFields{
		CBLHeaderFields: blocks.CBLHeaderFields{
			CreatorID:          creatorID,
			DateCreatedUnixMS:  p.DateCreated.UnixMilli(),
			AddressCount:       uint32(len(p.Addresses)),
			OriginalDataLength: p.OriginalDataLength,
			TupleSize:          p.TupleSize,
		},
		FileName: p.FileName,
		MimeType: p.MimeType,
	}

	headerSize := len(blocks.EncodeExtendedCBLHeader(extFields))
	capacity := AddressCapacity(p.Size, headerSize)
	if len(p.Addresses) > capacity {
		return nil, offerrors.New("cbl.EncodeExtended", offerrors.CapacityExceeded, nil)
	}

	addrBytes := encodeAddresses(p.Addresses)

	unsigned := blocks.EncodeExtendedCBLHeader(extFields)
	unsignedPrefix := unsigned[:blocks.CBLHeaderLen-64]
	unsignedSuffix := unsigned[blocks.CBLHeaderLen:]
	message := append(append(append([]byte{}, unsignedPrefix...), unsignedSuffix...), addrBytes...)
	signature := p.Signer.Sign(message)
	copy(extFields.Signature[:], signature)

	header := blocks.EncodeExtendedCBLHeader(extFields)
	payload := append(append([]byte{}, header...), addrBytes...)

	full := make([]byte, p.Size.Bytes())
	if len(payload) > len(full) {
		return nil, offerrors.New("cbl.EncodeExtended", offerrors.CapacityExceeded, nil)
	}
	copy(full, payload)
	if _, err := io.ReadFull(rand.Reader, full[len(payload):]); err != nil {
		return nil, offerrors.New("cbl.EncodeExtended", offerrors.Unknown, err)
	}

	opts := []blocks.Option{}
	if p.PoolID != "" {
		opts = append(opts, blocks.WithPool(p.PoolID))
	}
	return blocks.NewTyped(p.Size, full, blocks.ExtendedCBL, opts...)
}

// DecodedExtended is the parsed, validated content of an ExtendedCBL block.
type DecodedExtended struct {
	Fields    blocks.ExtendedCBLHeaderFields
	Addresses []checksum.Checksum
}

// DecodeExtended parses and validates an ExtendedCBL block, mirroring
// Decode but covering the file-metadata fields in the signature check.
func DecodeExtended(block *blocks.Block, resolver crypto.IdentityResolver) (*DecodedExtended, error) {
	data, err := block.Data()
	if err != nil {
		return nil, err
	}

	extFields, headerLen, err := blocks.DecodeExtendedCBLHeader(data)
	if err != nil {
		return nil, err
	}

	if time.UnixMilli(extFields.DateCreatedUnixMS).After(time.Now()) {
		return nil, offerrors.New("cbl.DecodeExtended", offerrors.DateInFuture, nil)
	}
	if extFields.TupleSize == 0 || extFields.AddressCount%uint32(extFields.TupleSize) != 0 {
		return nil, offerrors.New("cbl.DecodeExtended", offerrors.MalformedCBL, nil)
	}

	addrEnd := headerLen + int(extFields.AddressCount)*blocks.AddressLen
	if len(data) < addrEnd {
		return nil, offerrors.New("cbl.DecodeExtended", offerrors.MalformedCBL, nil)
	}
	addrBytes := data[headerLen:addrEnd]

	unsigned := blocks.EncodeExtendedCBLHeader(extFields)
	unsignedPrefix := unsigned[:blocks.CBLHeaderLen-64]
	unsignedSuffix := unsigned[blocks.CBLHeaderLen:]
	message := append(append(append([]byte{}, unsignedPrefix...), unsignedSuffix...), addrBytes...)

	publicKey, ok := resolver.ResolvePublicKey(extFields.CreatorID)
	if !ok {
		return nil, offerrors.New("cbl.DecodeExtended", offerrors.SignatureInvalid, nil)
	}
	if !crypto.Verify(ed25519.PublicKey(publicKey), message, extFields.Signature[:]) {
		return nil, offerrors.New("cbl.DecodeExtended", offerrors.SignatureInvalid, nil)
	}

	addresses, err := decodeAddresses(addrBytes)
	if err != nil {
		return nil, err
	}

	return &DecodedExtended{Fields: extFields, Addresses: addresses}, nil
}
