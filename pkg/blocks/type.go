package blocks

// BlockType is the closed enumeration of block kinds. It determines the
// layer header layout (see header.go) and what operations may legally
// produce or consume a block of that kind.
type BlockType int

const (
	Unknown BlockType = iota
	Raw
	Whitened
	Random
	CBL
	ExtendedCBL
	EncryptedOwned
	EncryptedCBL
	EncryptedExtendedCBL
	MultiEncrypted
	FEC
	Handle
)

func (t BlockType) String() string {
	switch t {
	case Raw:
		return "Raw"
	case Whitened:
		return "Whitened"
	case Random:
		return "Random"
	case CBL:
		return "CBL"
	case ExtendedCBL:
		return "ExtendedCBL"
	case EncryptedOwned:
		return "EncryptedOwned"
	case EncryptedCBL:
		return "EncryptedCBL"
	case EncryptedExtendedCBL:
		return "EncryptedExtendedCBL"
	case MultiEncrypted:
		return "MultiEncrypted"
	case FEC:
		return "FEC"
	case Handle:
		return "Handle"
	default:
		return "Unknown"
	}
}

// IsCBLFamily reports whether t is one of the CBL-bearing kinds (plain or
// extended, encrypted or not) — i.e. whether its payload is a header plus
// an address list rather than raw file bytes.
func (t BlockType) IsCBLFamily() bool {
	switch t {
	case CBL, ExtendedCBL, EncryptedCBL, EncryptedExtendedCBL:
		return true
	default:
		return false
	}
}

// IsEncrypted reports whether t carries an encryption layer header.
func (t BlockType) IsEncrypted() bool {
	switch t {
	case EncryptedOwned, EncryptedCBL, EncryptedExtendedCBL, MultiEncrypted:
		return true
	default:
		return false
	}
}

// BlockDataType describes what the block's payload represents and drives
// persistability: EphemeralStructuredData may never be written to a store.
type BlockDataType int

const (
	RawData BlockDataType = iota
	EncryptedData
	EphemeralStructuredData
	Ephemeral
)

func (d BlockDataType) String() string {
	switch d {
	case RawData:
		return "RawData"
	case EncryptedData:
		return "EncryptedData"
	case EphemeralStructuredData:
		return "EphemeralStructuredData"
	case Ephemeral:
		return "Ephemeral"
	default:
		return "Unknown"
	}
}

// Persistable reports whether a block carrying this data type may be
// written to a store (§4.3: "stores iff block.dataType != EphemeralStructuredData").
func (d BlockDataType) Persistable() bool {
	return d != EphemeralStructuredData
}
