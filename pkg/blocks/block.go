// Package blocks implements the Block Model (spec §3, §4.2): a
// discriminated union of block kinds, each with a typed header layout, a
// payload view, and validation. A Block owns its bytes and is immutable
// after construction — built in one pass, never mutated post hoc (spec §9:
// no defineProperty-style retrofits).
package blocks

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/Digital-Defiance/brightchain-off/pkg/checksum"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
)

// Block is the ownership root for stored bytes. Every Block is exactly
// Size().Bytes() long; its ID is the checksum of the full Data(); and its
// BlockType determines how LayerHeaderData/LayerPayload split Data.
type Block struct {
	id            checksum.Checksum
	data          []byte
	size          BlockSize
	blockType     BlockType
	blockDataType BlockDataType
	dateCreated   time.Time
	canRead       bool
	canPersist    bool
	poolID        string
}

// options collects the optional constructor parameters via functional
// options, matching the single-pass construction spec §9 calls for.
type Option func(*Block)

// WithPool attaches a pool id to the block being constructed.
func WithPool(poolID string) Option {
	return func(b *Block) { b.poolID = poolID }
}

// WithDataType overrides the default RawData data type.
func WithDataType(dt BlockDataType) Option {
	return func(b *Block) { b.blockDataType = dt }
}

// WithCreated overrides the default dateCreated of time.Now().
func WithCreated(t time.Time) Option {
	return func(b *Block) { b.dateCreated = t }
}

// WithUnreadable marks the block's content as not readable (canRead=false),
// e.g. for a placeholder that represents a block known only by checksum.
func WithUnreadable() Option {
	return func(b *Block) { b.canRead = false }
}

// WithUnpersistable marks the block as ineligible for store.Put regardless
// of its data type, e.g. an XOR result derived from an unpersistable input.
func WithUnpersistable() Option {
	return func(b *Block) { b.canPersist = false }
}

// newBlock is the single construction path every exported constructor
// funnels through: it fixes the length, computes the checksum once, and
// applies options before returning — there is no later mutation point.
func newBlock(size BlockSize, data []byte, blockType BlockType, opts ...Option) (*Block, error) {
	if size == UnknownSize || size.Bytes() == 0 {
		return nil, offerrors.New("blocks.newBlock", offerrors.InvalidBlockSize, nil)
	}
	if len(data) != size.Bytes() {
		return nil, offerrors.New("blocks.newBlock", offerrors.InvalidBlockSize, nil)
	}

	owned := make([]byte, len(data))
	copy(owned, data)

	b := &Block{
		id:            checksum.Calculate(owned),
		data:          owned,
		size:          size,
		blockType:     blockType,
		blockDataType: RawData,
		dateCreated:   time.Now(),
		canRead:       true,
		canPersist:    true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// NewRaw builds a Raw block from payload, zero-padding (or, per spec §4.2,
// random-padding for a freshly chunked file) the remainder to size. Use
// padRandom=true when this is the final, partial chunk of a file being
// split, so the padding never betrays the true content length; padRandom
// should be false when reconstructing a block whose bytes are already
// exactly blockSize (there padding was already applied once, upstream).
func NewRaw(size BlockSize, payload []byte, padRandom bool, opts ...Option) (*Block, error) {
	if len(payload) > size.Bytes() {
		return nil, offerrors.New("blocks.NewRaw", offerrors.DataLengthExceedsCapacity, nil)
	}
	buf := make([]byte, size.Bytes())
	copy(buf, payload)
	if padRandom && len(payload) < len(buf) {
		if _, err := io.ReadFull(rand.Reader, buf[len(payload):]); err != nil {
			return nil, offerrors.New("blocks.NewRaw", offerrors.Unknown, err)
		}
	}
	return newBlock(size, buf, Raw, opts...)
}

// NewRandom draws size.Bytes() of cryptographically secure entropy and
// wraps it as a Random block, the whitener supply for tuple construction
// and brightening.
func NewRandom(size BlockSize, opts ...Option) (*Block, error) {
	buf := make([]byte, size.Bytes())
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, offerrors.New("blocks.NewRandom", offerrors.Unknown, err)
	}
	return newBlock(size, buf, Random, opts...)
}

// NewWhitened wraps already-XORed bytes (produced by the tuple engine) as
// a Whitened block. It does not itself perform the XOR — see pkg/tuple.
func NewWhitened(size BlockSize, data []byte, opts ...Option) (*Block, error) {
	return newBlock(size, data, Whitened, opts...)
}

// NewTyped constructs a block of an arbitrary BlockType from fully-formed
// bytes (header + payload, already padded to size). Used by the cbl and
// crypto packages, which own the header-construction logic for their
// kinds; the block model only enforces length and computes the checksum.
func NewTyped(size BlockSize, data []byte, blockType BlockType, opts ...Option) (*Block, error) {
	return newBlock(size, data, blockType, opts...)
}

// FromStored reconstructs a Block from bytes read back from a store,
// given the metadata that travels alongside it (sidecar metadata in the
// disk layout, or column values in a metadata index). The checksum is
// recomputed; callers should call Validate to confirm it matches id.
func FromStored(id checksum.Checksum, size BlockSize, data []byte, blockType BlockType, dataType BlockDataType, dateCreated time.Time, poolID string) (*Block, error) {
	if len(data) != size.Bytes() {
		return nil, offerrors.New("blocks.FromStored", offerrors.InvalidBlockSize, nil)
	}
	owned := make([]byte, len(data))
	copy(owned, data)
	b := &Block{
		id:            id,
		data:          owned,
		size:          size,
		blockType:     blockType,
		blockDataType: dataType,
		dateCreated:   dateCreated,
		canRead:       true,
		canPersist:    true,
		poolID:        poolID,
	}
	return b, nil
}

// ID returns the block's content-addressed identifier.
func (b *Block) ID() checksum.Checksum { return b.id }

// Size returns the block's BlockSize enum member.
func (b *Block) Size() BlockSize { return b.size }

// Type returns the block's BlockType.
func (b *Block) Type() BlockType { return b.blockType }

// DataType returns the block's BlockDataType.
func (b *Block) DataType() BlockDataType { return b.blockDataType }

// DateCreated returns the block's construction timestamp.
func (b *Block) DateCreated() time.Time { return b.dateCreated }

// CanRead reports whether Data/LayerPayload may be called.
func (b *Block) CanRead() bool { return b.canRead }

// CanPersist reports whether this block is eligible for store.Put.
func (b *Block) CanPersist() bool { return b.canPersist && b.blockDataType.Persistable() }

// PoolID returns the block's pool namespace, or "" if none.
func (b *Block) PoolID() string { return b.poolID }

// Data returns the entire block content, exactly Size().Bytes() long.
// Fails with BlockNotReadable if CanRead() is false.
func (b *Block) Data() ([]byte, error) {
	if !b.canRead {
		return nil, offerrors.New("blocks.Data", offerrors.BlockNotReadable, nil)
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, nil
}

// headerLength computes this layer's header length in bytes given the
// block's type and content. Raw/Random/Whitened carry no header. CBL
// family and encryption kinds have either a fixed or length-prefixed
// header; the latter must be parsed out of data itself.
func headerLength(blockType BlockType, data []byte) (int, error) {
	switch blockType {
	case Raw, Random, Whitened, Unknown, FEC, Handle:
		return 0, nil
	case CBL:
		return CBLHeaderLen, nil
	case ExtendedCBL:
		_, n, err := DecodeExtendedCBLHeader(data)
		return n, err
	case EncryptedOwned:
		return EncryptedHeaderLen, nil
	case EncryptedCBL:
		return EncryptedHeaderLen, nil
	case EncryptedExtendedCBL:
		return EncryptedHeaderLen, nil
	case MultiEncrypted:
		_, n, err := DecodeMultiEncryptedHeader(data)
		return n, err
	default:
		return 0, nil
	}
}

// LayerHeaderData returns this layer's header prefix — the bytes that
// frame the payload at this layer, excluding any ancestor (outer
// encryption) layers' headers. Encrypted* kinds return their encryption
// header; CBL/ExtendedCBL return their CBL header (plus file metadata for
// the extended variant); Raw/Random/Whitened return an empty slice.
func (b *Block) LayerHeaderData() ([]byte, error) {
	data, err := b.Data()
	if err != nil {
		return nil, err
	}
	n, err := headerLength(b.blockType, data)
	if err != nil {
		return nil, err
	}
	return data[:n], nil
}

// FullHeaderData returns the concatenation of every ancestor layer's
// header. For this block model, encryption is always the outermost layer
// and CBL framing the next, so FullHeaderData is the same as
// LayerHeaderData except for EncryptedCBL/EncryptedExtendedCBL, whose
// payload (once decrypted) is itself a CBL with its own header; decrypting
// is pkg/crypto's job; at the Block level we can only report this layer's
// header.
func (b *Block) FullHeaderData() ([]byte, error) {
	return b.LayerHeaderData()
}

// LayerPayload returns the bytes after this layer's header: for CBL kinds,
// the signature-covered address list plus trailing random padding; for
// encryption kinds, the ciphertext; for Raw/Random/Whitened, the entire
// block.
func (b *Block) LayerPayload() ([]byte, error) {
	data, err := b.Data()
	if err != nil {
		return nil, err
	}
	n, err := headerLength(b.blockType, data)
	if err != nil {
		return nil, err
	}
	return data[n:], nil
}

// TotalOverhead returns the number of bytes in this block consumed by
// headers (i.e. not available to the payload).
func (b *Block) TotalOverhead() (int, error) {
	data, err := b.Data()
	if err != nil {
		return 0, err
	}
	return headerLength(b.blockType, data)
}

// Validate recomputes the checksum of the block's bytes and compares it to
// ID(), failing with ChecksumMismatch on any divergence (spec P2).
func (b *Block) Validate() error {
	if !b.canRead {
		return offerrors.New("blocks.Validate", offerrors.BlockNotReadable, nil)
	}
	if len(b.data) != b.size.Bytes() {
		return offerrors.New("blocks.Validate", offerrors.InvalidBlockSize, nil)
	}
	got := checksum.Calculate(b.data)
	if !got.Equal(b.id) {
		return offerrors.New("blocks.Validate", offerrors.ChecksumMismatch, nil)
	}
	return nil
}
