// This file implements the byte-exact layer header layouts of spec §4.2.
// All multi-byte integers are unsigned and MSB-first (big-endian), per the
// spec's resolution of the "byte order" open question in §9.
package blocks

import (
	"encoding/binary"

	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
)

const (
	creatorIDLen  = 16
	signatureLen  = 64
	ivLen         = 16
	authTagLen    = 16
	ephemeralLen  = 65
	recipientIDLen = 16
	// wrappedKeyLen holds a per-recipient ephemeral X25519 public key (32B)
	// ‖ AES-256-GCM-sealed 32-byte content key (32B ciphertext + 16B tag),
	// since recovering a per-recipient wrap requires its own ephemeral key
	// (spec §4.2 leaves "encryptedKey" a variable-length blob; this is the
	// fixed width this implementation picks — see DESIGN.md).
	wrappedKeyLen  = 32 + 32 + 16

	// CBLHeaderLen is the fixed size of the CBL layer header: 16 + 8 + 4 + 8 + 1 + 64.
	CBLHeaderLen = creatorIDLen + 8 + 4 + 8 + 1 + signatureLen

	// EncryptedHeaderLen is the fixed size of a single-recipient encryption
	// layer header: 65 + 16 + 16.
	EncryptedHeaderLen = ephemeralLen + ivLen + authTagLen

	// AddressLen is the width of one tuple-member address in a CBL's
	// address list (one checksum).
	AddressLen = 64

	// recipientSlotLen is 16B recipient id + 80B wrapped content key.
	recipientSlotLen = recipientIDLen + wrappedKeyLen
)

// CBLHeaderFields is the parsed, unverified content of a CBL layer header.
// Signature verification and date-sanity checks are the cbl package's job;
// this type only captures the byte layout.
type CBLHeaderFields struct {
	CreatorID          [creatorIDLen]byte
	DateCreatedUnixMS  int64
	AddressCount       uint32
	OriginalDataLength uint64
	TupleSize          uint8
	Signature          [signatureLen]byte
}

// EncodeCBLHeader serializes f into its fixed 101-byte wire layout.
func EncodeCBLHeader(f CBLHeaderFields) []byte {
	buf := make([]byte, CBLHeaderLen)
	off := 0
	copy(buf[off:], f.CreatorID[:])
	off += creatorIDLen
	binary.BigEndian.PutUint64(buf[off:], uint64(f.DateCreatedUnixMS))
	off += 8
	binary.BigEndian.PutUint32(buf[off:], f.AddressCount)
	off += 4
	binary.BigEndian.PutUint64(buf[off:], f.OriginalDataLength)
	off += 8
	buf[off] = f.TupleSize
	off++
	copy(buf[off:], f.Signature[:])
	return buf
}

// DecodeCBLHeader parses the fixed CBL layer header from the front of data.
func DecodeCBLHeader(data []byte) (CBLHeaderFields, error) {
	var f CBLHeaderFields
	if len(data) < CBLHeaderLen {
		return f, offerrors.New("blocks.DecodeCBLHeader", offerrors.MalformedCBL, nil)
	}
	off := 0
	copy(f.CreatorID[:], data[off:off+creatorIDLen])
	off += creatorIDLen
	f.DateCreatedUnixMS = int64(binary.BigEndian.Uint64(data[off:]))
	off += 8
	f.AddressCount = binary.BigEndian.Uint32(data[off:])
	off += 4
	f.OriginalDataLength = binary.BigEndian.Uint64(data[off:])
	off += 8
	f.TupleSize = data[off]
	off++
	copy(f.Signature[:], data[off:off+signatureLen])
	return f, nil
}

// ExtendedCBLHeaderFields is CBLHeaderFields plus the length-prefixed file
// metadata that sits between the CBL header and the address list.
type ExtendedCBLHeaderFields struct {
	CBLHeaderFields
	FileName string
	MimeType string
}

// EncodeExtendedCBLHeader serializes f: the fixed CBL header followed by
// 2B fileNameLen ‖ fileName ‖ 2B mimeLen ‖ mimeType.
func EncodeExtendedCBLHeader(f ExtendedCBLHeaderFields) []byte {
	base := EncodeCBLHeader(f.CBLHeaderFields)
	nameBytes := []byte(f.FileName)
	mimeBytes := []byte(f.MimeType)

	buf := make([]byte, len(base)+2+len(nameBytes)+2+len(mimeBytes))
	off := copy(buf, base)
	binary.BigEndian.PutUint16(buf[off:], uint16(len(nameBytes)))
	off += 2
	off += copy(buf[off:], nameBytes)
	binary.BigEndian.PutUint16(buf[off:], uint16(len(mimeBytes)))
	off += 2
	copy(buf[off:], mimeBytes)
	return buf
}

// DecodeExtendedCBLHeader parses the extended header from the front of
// data, returning the fields and the total header length consumed.
func DecodeExtendedCBLHeader(data []byte) (ExtendedCBLHeaderFields, int, error) {
	var f ExtendedCBLHeaderFields
	base, err := DecodeCBLHeader(data)
	if err != nil {
		return f, 0, err
	}
	f.CBLHeaderFields = base

	off := CBLHeaderLen
	if len(data) < off+2 {
		return f, 0, offerrors.New("blocks.DecodeExtendedCBLHeader", offerrors.MalformedCBL, nil)
	}
	nameLen := int(binary.BigEndian.Uint16(data[off:]))
	off += 2
	if len(data) < off+nameLen+2 {
		return f, 0, offerrors.New("blocks.DecodeExtendedCBLHeader", offerrors.MalformedCBL, nil)
	}
	f.FileName = string(data[off : off+nameLen])
	off += nameLen

	mimeLen := int(binary.BigEndian.Uint16(data[off:]))
	off += 2
	if len(data) < off+mimeLen {
		return f, 0, offerrors.New("blocks.DecodeExtendedCBLHeader", offerrors.MalformedCBL, nil)
	}
	f.MimeType = string(data[off : off+mimeLen])
	off += mimeLen

	return f, off, nil
}

// EncryptedHeaderFields is the single-recipient encryption layer header:
// an ephemeral public key, the AES-GCM IV, and the authentication tag.
type EncryptedHeaderFields struct {
	EphemeralPublicKey [ephemeralLen]byte
	IV                 [ivLen]byte
	AuthTag            [authTagLen]byte
}

// EncodeEncryptedHeader serializes f to its fixed 97-byte layout.
func EncodeEncryptedHeader(f EncryptedHeaderFields) []byte {
	buf := make([]byte, EncryptedHeaderLen)
	off := 0
	off += copy(buf[off:], f.EphemeralPublicKey[:])
	off += copy(buf[off:], f.IV[:])
	copy(buf[off:], f.AuthTag[:])
	return buf
}

// DecodeEncryptedHeader parses the fixed encryption layer header from the
// front of data.
func DecodeEncryptedHeader(data []byte) (EncryptedHeaderFields, error) {
	var f EncryptedHeaderFields
	if len(data) < EncryptedHeaderLen {
		return f, offerrors.New("blocks.DecodeEncryptedHeader", offerrors.InvalidEphemeralPublicKeyLength, nil)
	}
	off := 0
	copy(f.EphemeralPublicKey[:], data[off:off+ephemeralLen])
	off += ephemeralLen
	copy(f.IV[:], data[off:off+ivLen])
	off += ivLen
	copy(f.AuthTag[:], data[off:off+authTagLen])
	return f, nil
}

// RecipientSlot is one entry in a MultiEncrypted header: the recipient's id
// and their wrapped copy of the block's random content key.
type RecipientSlot struct {
	RecipientID [recipientIDLen]byte
	WrappedKey  [wrappedKeyLen]byte
}

// MultiEncryptedHeaderFields is the multi-recipient encryption layer
// header: shared IV/tag/length, then one RecipientSlot per recipient.
type MultiEncryptedHeaderFields struct {
	IV         [ivLen]byte
	AuthTag    [authTagLen]byte
	DataLength uint32
	Recipients []RecipientSlot
}

// EncodeMultiEncryptedHeader serializes f: 16B IV ‖ 16B tag ‖ 4B dataLength
// ‖ 2B recipientCount ‖ recipientCount×(16B id ‖ 80B wrapped key).
func EncodeMultiEncryptedHeader(f MultiEncryptedHeaderFields) []byte {
	buf := make([]byte, ivLen+authTagLen+4+2+len(f.Recipients)*recipientSlotLen)
	off := 0
	off += copy(buf[off:], f.IV[:])
	off += copy(buf[off:], f.AuthTag[:])
	binary.BigEndian.PutUint32(buf[off:], f.DataLength)
	off += 4
	binary.BigEndian.PutUint16(buf[off:], uint16(len(f.Recipients)))
	off += 2
	for _, r := range f.Recipients {
		off += copy(buf[off:], r.RecipientID[:])
		off += copy(buf[off:], r.WrappedKey[:])
	}
	return buf
}

// DecodeMultiEncryptedHeader parses the header from the front of data,
// returning the fields and the total header length consumed.
func DecodeMultiEncryptedHeader(data []byte) (MultiEncryptedHeaderFields, int, error) {
	var f MultiEncryptedHeaderFields
	fixed := ivLen + authTagLen + 4 + 2
	if len(data) < fixed {
		return f, 0, offerrors.New("blocks.DecodeMultiEncryptedHeader", offerrors.MalformedCBL, nil)
	}
	off := 0
	copy(f.IV[:], data[off:off+ivLen])
	off += ivLen
	copy(f.AuthTag[:], data[off:off+authTagLen])
	off += authTagLen
	f.DataLength = binary.BigEndian.Uint32(data[off:])
	off += 4
	count := int(binary.BigEndian.Uint16(data[off:]))
	off += 2

	if len(data) < off+count*recipientSlotLen {
		return f, 0, offerrors.New("blocks.DecodeMultiEncryptedHeader", offerrors.MalformedCBL, nil)
	}
	f.Recipients = make([]RecipientSlot, count)
	for i := 0; i < count; i++ {
		var slot RecipientSlot
		copy(slot.RecipientID[:], data[off:off+recipientIDLen])
		off += recipientIDLen
		copy(slot.WrappedKey[:], data[off:off+wrappedKeyLen])
		off += wrappedKeyLen
		f.Recipients[i] = slot
	}
	return f, off, nil
}
