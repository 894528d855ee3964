package blocks

import "github.com/Digital-Defiance/brightchain-off/pkg/offerrors"

// BlockSize is the closed enumeration of fixed block sizes the store
// accepts. Every block, tuple member, and CBL is exactly one of these
// sizes; there is no variable-length block.
type BlockSize int

const (
	UnknownSize BlockSize = iota
	Message               // 512 B
	Tiny                   // 1 024 B
	Small                  // 8 192 B
	Medium                 // 32 768 B
	Large                  // 131 072 B
	Huge                   // 524 288 B
)

var sizeBytes = map[BlockSize]int{
	Message: 512,
	Tiny:    1024,
	Small:   8192,
	Medium:  32768,
	Large:   131072,
	Huge:    524288,
}

// orderedSizes lists the enum in ascending byte order, used by NextLargest.
var orderedSizes = []BlockSize{Message, Tiny, Small, Medium, Large, Huge}

// Bytes returns the number of bytes a block of this size occupies. Returns
// 0 for UnknownSize or any value outside the enumeration.
func (s BlockSize) Bytes() int {
	return sizeBytes[s]
}

func (s BlockSize) String() string {
	switch s {
	case Message:
		return "Message"
	case Tiny:
		return "Tiny"
	case Small:
		return "Small"
	case Medium:
		return "Medium"
	case Large:
		return "Large"
	case Huge:
		return "Huge"
	default:
		return "Unknown"
	}
}

// FromLength maps an exact byte length to its BlockSize. Any length that is
// not one of the enumerated sizes is rejected with InvalidBlockSize.
func FromLength(n int) (BlockSize, error) {
	for size, bytes := range sizeBytes {
		if bytes == n {
			return size, nil
		}
	}
	return UnknownSize, offerrors.New("blocks.FromLength", offerrors.InvalidBlockSize, nil)
}

// NextLargest returns the smallest BlockSize whose byte count is >= n. It
// fails with InvalidBlockSize if n exceeds the largest enumerated size.
func NextLargest(n int) (BlockSize, error) {
	if n < 0 {
		return UnknownSize, offerrors.New("blocks.NextLargest", offerrors.InvalidBlockSize, nil)
	}
	for _, size := range orderedSizes {
		if size.Bytes() >= n {
			return size, nil
		}
	}
	return UnknownSize, offerrors.New("blocks.NextLargest", offerrors.InvalidBlockSize, nil)
}
