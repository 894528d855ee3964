// Package crypto provides the creator-signature and block-encryption
// primitives layered over the OFF block model: Ed25519 signing for CBL
// creator identity (spec §3 "CBL", §4.5), and X25519-ECDH + HKDF +
// AES-256-GCM for single- and multi-recipient block encryption (spec §3a).
//
// The ECDH-then-AEAD shape follows the retrieval pack's upspin pack/ee
// pattern (other_examples/00c93e2a_upspin-upspin__pack-ee-ee.go.go): derive
// a shared secret from an ephemeral key and the recipient's public key,
// run it through a KDF, and use the result as an AEAD content key. The
// teacher's own signature code (ref's pkg/announce/signature.go) signs via
// libp2p peer identity, which is tied to the out-of-scope transport layer,
// so creator signing here uses crypto/ed25519 directly instead.
package crypto

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
)

// Signer is a creator's Ed25519 identity, capable of signing CBL headers.
type Signer struct {
	public  ed25519.PublicKey
	private ed25519.PrivateKey
}

// GenerateSigner creates a fresh Ed25519 keypair.
func GenerateSigner() (*Signer, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, offerrors.New("crypto.GenerateSigner", offerrors.Unknown, err)
	}
	return &Signer{public: pub, private: priv}, nil
}

// NewSigner wraps an existing Ed25519 private key.
func NewSigner(private ed25519.PrivateKey) *Signer {
	return &Signer{public: private.Public().(ed25519.PublicKey), private: private}
}

// PublicKey returns the signer's public key.
func (s *Signer) PublicKey() ed25519.PublicKey { return s.public }

// Sign signs message with the creator's private key.
func (s *Signer) Sign(message []byte) []byte {
	return ed25519.Sign(s.private, message)
}

// Verify reports whether signature is a valid Ed25519 signature over
// message under public. Used by cbl.Decode to check CBL signature binding
// (spec P8).
func Verify(public ed25519.PublicKey, message, signature []byte) bool {
	if len(public) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(public, message, signature)
}

// DeriveCreatorID collapses a creator's public key into the 16-byte
// identifier the CBL header field (spec §4.2) has room for: the first 16
// bytes of SHA-256(publicKey). It is not itself a security boundary — a
// verifier must still resolve the id back to a full public key via an
// IdentityResolver and check the signature against that key.
func DeriveCreatorID(public ed25519.PublicKey) [16]byte {
	sum := sha256.Sum256(public)
	var id [16]byte
	copy(id[:], sum[:16])
	return id
}

// IdentityResolver maps a CBL creator id back to the full Ed25519 public
// key needed to verify its signature. Callers supply their own
// implementation (e.g. backed by a directory service or a static roster);
// the core never resolves identities on its own.
type IdentityResolver interface {
	ResolvePublicKey(creatorID [16]byte) (ed25519.PublicKey, bool)
}

// StaticResolver is an IdentityResolver backed by a fixed id->key map,
// useful for tests and single-writer deployments.
type StaticResolver map[[16]byte]ed25519.PublicKey

// ResolvePublicKey implements IdentityResolver.
func (r StaticResolver) ResolvePublicKey(creatorID [16]byte) (ed25519.PublicKey, bool) {
	k, ok := r[creatorID]
	return k, ok
}

// Register derives signer's creator id and adds it to the resolver.
func (r StaticResolver) Register(signer *Signer) [16]byte {
	id := DeriveCreatorID(signer.PublicKey())
	r[id] = signer.PublicKey()
	return id
}
