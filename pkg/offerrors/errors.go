// Package offerrors provides the tagged error kind shared by every layer of
// the OFF storage core. Kinds are the contract callers switch on; the
// message text is diagnostic only.
package offerrors

import "fmt"

// Kind identifies the class of failure a core operation can surface. Kinds
// are stable across packages so a caller can type-switch once regardless of
// which component raised the error.
type Kind int

const (
	Unknown Kind = iota

	InvalidBlockSize
	InvalidLength
	InvalidHex
	ChecksumMismatch

	BlockSizeMismatch
	BlockNotReadable
	BlockAlreadyExists
	KeyNotFound
	NotSupported

	CannotStoreEphemeralData
	DataLengthExceedsCapacity
	CapacityExceeded

	PoolMismatch
	PoolIntegrityError

	InsufficientRandomBlocks

	MalformedCBL
	SignatureInvalid
	DateInFuture

	DecryptionFailed
	InvalidIVLength
	InvalidAuthTagLength
	InvalidEphemeralPublicKeyLength

	Cancelled
)

var names = map[Kind]string{
	Unknown:                          "unknown",
	InvalidBlockSize:                 "invalid_block_size",
	InvalidLength:                    "invalid_length",
	InvalidHex:                       "invalid_hex",
	ChecksumMismatch:                 "checksum_mismatch",
	BlockSizeMismatch:                "block_size_mismatch",
	BlockNotReadable:                 "block_not_readable",
	BlockAlreadyExists:               "block_already_exists",
	KeyNotFound:                      "key_not_found",
	NotSupported:                     "not_supported",
	CannotStoreEphemeralData:         "cannot_store_ephemeral_data",
	DataLengthExceedsCapacity:        "data_length_exceeds_capacity",
	CapacityExceeded:                 "capacity_exceeded",
	PoolMismatch:                     "pool_mismatch",
	PoolIntegrityError:               "pool_integrity_error",
	InsufficientRandomBlocks:         "insufficient_random_blocks",
	MalformedCBL:                     "malformed_cbl",
	SignatureInvalid:                 "signature_invalid",
	DateInFuture:                     "date_in_future",
	DecryptionFailed:                 "decryption_failed",
	InvalidIVLength:                  "invalid_iv_length",
	InvalidAuthTagLength:             "invalid_auth_tag_length",
	InvalidEphemeralPublicKeyLength:  "invalid_ephemeral_public_key_length",
	Cancelled:                        "cancelled",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "unknown"
}

// Error is the concrete error type returned by every package in this
// module. Op names the failing operation ("store.Put", "cbl.Decode", ...),
// Kind is the stable contract callers switch on, and Err (optional) wraps
// the underlying cause for %w-style inspection.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, offerrors.New("", offerrors.KeyNotFound, nil)) or,
// more idiomatically, use KindOf below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs an *Error for op/kind, optionally wrapping cause.
func New(op string, kind Kind, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: cause}
}

// KindOf extracts the Kind carried by err, walking Unwrap chains. Returns
// Unknown if err is nil or carries no *Error.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return Unknown
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
