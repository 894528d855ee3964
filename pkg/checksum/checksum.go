// Package checksum provides the content-addressing primitive used
// throughout the OFF storage core: a fixed-width SHA3-512 digest with
// constant-time comparison and hex round-tripping.
//
// This mirrors the teacher's block-identity pattern (SHA-256 over block
// data, constant-time compare, hex strings) one layer down the dependency
// graph: the block model depends on this package as a pure function, never
// the reverse.
package checksum

import (
	"crypto/subtle"
	"encoding/hex"

	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
	"golang.org/x/crypto/sha3"
)

// Size is the fixed length in bytes of a Checksum (SHA3-512 digest width).
const Size = 64

// Checksum is an opaque, fixed-width content identifier. The zero value is
// not a valid checksum; use Calculate or FromHex to construct one.
type Checksum [Size]byte

// Calculate computes the SHA3-512 digest of data.
func Calculate(data []byte) Checksum {
	return Checksum(sha3.Sum512(data))
}

// Equal reports whether a and b represent the same digest, using a
// constant-time comparison to avoid leaking timing information about
// partial matches.
func (c Checksum) Equal(other Checksum) bool {
	return subtle.ConstantTimeCompare(c[:], other[:]) == 1
}

// Bytes returns the checksum's raw 64 bytes.
func (c Checksum) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, c[:])
	return out
}

// Hex returns the lowercase hex encoding of the checksum.
func (c Checksum) Hex() string {
	return hex.EncodeToString(c[:])
}

// String implements fmt.Stringer as the hex encoding, for logging.
func (c Checksum) String() string {
	return c.Hex()
}

// IsZero reports whether c is the zero-value checksum (never a valid
// content digest, used as a sentinel for "absent").
func (c Checksum) IsZero() bool {
	return c == Checksum{}
}

// FromBytes builds a Checksum from a raw byte slice, which must be exactly
// Size bytes long.
func FromBytes(b []byte) (Checksum, error) {
	var c Checksum
	if len(b) != Size {
		return c, offerrors.New("checksum.FromBytes", offerrors.InvalidLength, nil)
	}
	copy(c[:], b)
	return c, nil
}

// FromHex parses a hex-encoded checksum string.
func FromHex(s string) (Checksum, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Checksum{}, offerrors.New("checksum.FromHex", offerrors.InvalidHex, err)
	}
	return FromBytes(b)
}
