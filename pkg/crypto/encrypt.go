// This file implements the EncryptedOwned/EncryptedCBL/EncryptedExtendedCBL
// single-recipient layer (spec §3a, §4.2) and the MultiEncrypted
// multi-recipient layer, both ECDH(X25519)+HKDF-SHA256+AES-256-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
)

const (
	x25519KeyLen  = 32
	contentKeyLen = 32
	gcmNonceLen   = 12
)

// hkdfKey runs ECDH(ephemeralPriv, recipientPub) through HKDF-SHA256 to
// derive an AES-256 key, salted by the per-block IV and bound to a fixed
// info string so a key can never be reused across purposes.
func hkdfKey(sharedSecret, salt []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, sharedSecret, salt, []byte("off-block-encrypt"))
	key := make([]byte, contentKeyLen)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, offerrors.New("crypto.hkdfKey", offerrors.Unknown, err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, offerrors.New("crypto.newGCM", offerrors.Unknown, err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, gcmNonceLen)
	if err != nil {
		return nil, offerrors.New("crypto.newGCM", offerrors.Unknown, err)
	}
	return gcm, nil
}

// EncryptForRecipient encrypts plaintext under an ephemeral X25519 key
// ECDH'd with recipientPublic, returning the layer header fields (ephemeral
// public key, IV, auth tag — spec §4.2's 65+16+16 byte layout) and the
// ciphertext. The 65-byte ephemeral public key field is the 32-byte X25519
// point zero-padded to 65 bytes (see DESIGN.md Open Question: the spec's
// byte count describes an uncompressed EC point of a different curve
// family; X25519 points are fixed at 32 bytes, so this implementation
// widens rather than narrows the field to stay byte-layout-compatible).
func EncryptForRecipient(recipientPublic [x25519KeyLen]byte, plaintext []byte) (blocks.EncryptedHeaderFields, []byte, error) {
	var ephemeralPriv [x25519KeyLen]byte
	if _, err := io.ReadFull(rand.Reader, ephemeralPriv[:]); err != nil {
		return blocks.EncryptedHeaderFields{}, nil, offerrors.New("crypto.EncryptForRecipient", offerrors.Unknown, err)
	}
	ephemeralPub, err := curve25519.X25519(ephemeralPriv[:], curve25519.Basepoint)
	if err != nil {
		return blocks.EncryptedHeaderFields{}, nil, offerrors.New("crypto.EncryptForRecipient", offerrors.Unknown, err)
	}
	shared, err := curve25519.X25519(ephemeralPriv[:], recipientPublic[:])
	if err != nil {
		return blocks.EncryptedHeaderFields{}, nil, offerrors.New("crypto.EncryptForRecipient", offerrors.Unknown, err)
	}

	ivFull := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, ivFull); err != nil {
		return blocks.EncryptedHeaderFields{}, nil, offerrors.New("crypto.EncryptForRecipient", offerrors.Unknown, err)
	}

	key, err := hkdfKey(shared, ivFull)
	if err != nil {
		return blocks.EncryptedHeaderFields{}, nil, err
	}
	gcm, err := newGCM(key)
	if err != nil {
		return blocks.EncryptedHeaderFields{}, nil, err
	}

	sealed := gcm.Seal(nil, ivFull[:gcmNonceLen], plaintext, nil)
	ciphertext := sealed[:len(sealed)-gcm.Overhead()]
	tag := sealed[len(sealed)-gcm.Overhead():]

	var fields blocks.EncryptedHeaderFields
	copy(fields.EphemeralPublicKey[:x25519KeyLen], ephemeralPub)
	copy(fields.IV[:], ivFull)
	copy(fields.AuthTag[:], tag)

	return fields, ciphertext, nil
}

// DecryptFromSender reverses EncryptForRecipient given the recipient's
// X25519 private key and the parsed header fields plus ciphertext. Fails
// with DecryptionFailed on any authentication failure.
func DecryptFromSender(recipientPrivate [x25519KeyLen]byte, fields blocks.EncryptedHeaderFields, ciphertext []byte) ([]byte, error) {
	shared, err := curve25519.X25519(recipientPrivate[:], fields.EphemeralPublicKey[:x25519KeyLen])
	if err != nil {
		return nil, offerrors.New("crypto.DecryptFromSender", offerrors.DecryptionFailed, err)
	}

	key, err := hkdfKey(shared, fields.IV[:])
	if err != nil {
		return nil, err
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	sealed := append(append([]byte{}, ciphertext...), fields.AuthTag[:]...)
	plaintext, err := gcm.Open(nil, fields.IV[:gcmNonceLen], sealed, nil)
	if err != nil {
		return nil, offerrors.New("crypto.DecryptFromSender", offerrors.DecryptionFailed, err)
	}
	return plaintext, nil
}

// MultiRecipient describes one recipient of a MultiEncrypted block: their
// 16-byte recipient id (spec §4.2) and X25519 public key.
type MultiRecipient struct {
	ID        [16]byte
	PublicKey [x25519KeyLen]byte
}

// DeriveRecipientID collapses a recipient's X25519 public key into the
// 16-byte id the MultiEncrypted header's RecipientSlot carries.
func DeriveRecipientID(public [x25519KeyLen]byte) [16]byte {
	sum := sha256.Sum256(public[:])
	var id [16]byte
	copy(id[:], sum[:16])
	return id
}

// EncryptForMultipleRecipients encrypts plaintext once under a random
// content key, then wraps that content key separately for each recipient
// via the same ECDH+HKDF construction as the single-recipient path (spec
// §3a: "each recipient's slot wraps that content key with their own
// ECDH+HKDF key"). Returns the header fields and the shared ciphertext.
func EncryptForMultipleRecipients(recipients []MultiRecipient, plaintext []byte) (blocks.MultiEncryptedHeaderFields, []byte, error) {
	contentKey := make([]byte, contentKeyLen)
	if _, err := io.ReadFull(rand.Reader, contentKey); err != nil {
		return blocks.MultiEncryptedHeaderFields{}, nil, offerrors.New("crypto.EncryptForMultipleRecipients", offerrors.Unknown, err)
	}
	iv := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return blocks.MultiEncryptedHeaderFields{}, nil, offerrors.New("crypto.EncryptForMultipleRecipients", offerrors.Unknown, err)
	}

	gcm, err := newGCM(contentKey)
	if err != nil {
		return blocks.MultiEncryptedHeaderFields{}, nil, err
	}
	sealed := gcm.Seal(nil, iv[:gcmNonceLen], plaintext, nil)
	ciphertext := sealed[:len(sealed)-gcm.Overhead()]
	tag := sealed[len(sealed)-gcm.Overhead():]

	slots := make([]blocks.RecipientSlot, len(recipients))
	for i, r := range recipients {
		wrapped, err := wrapContentKey(r.PublicKey, iv, contentKey)
		if err != nil {
			return blocks.MultiEncryptedHeaderFields{}, nil, err
		}
		var slot blocks.RecipientSlot
		slot.RecipientID = r.ID
		copy(slot.WrappedKey[:], wrapped)
		slots[i] = slot
	}

	fields := blocks.MultiEncryptedHeaderFields{
		DataLength: uint32(len(ciphertext)),
		Recipients: slots,
	}
	copy(fields.IV[:], iv)
	copy(fields.AuthTag[:], tag)
	return fields, ciphertext, nil
}

// wrapContentKey seals contentKey for one recipient: a fresh ephemeral
// X25519 keypair is ECDH'd with the recipient's public key (a new
// ephemeral key per call, so two recipients of the same block get
// different shared secrets), the result keyed through HKDF salted by the
// block's shared IV, and the content key
// sealed with AES-256-GCM under that wrap key. The output is
// ephemeralPublicKey(32) ‖ sealedContentKey(32+16), exactly wrappedKeyLen
// (80) bytes — the fixed width blocks.RecipientSlot.WrappedKey reserves.
func wrapContentKey(recipientPublic [x25519KeyLen]byte, iv, contentKey []byte) ([]byte, error) {
	var ephemeralPriv [x25519KeyLen]byte
	if _, err := io.ReadFull(rand.Reader, ephemeralPriv[:]); err != nil {
		return nil, offerrors.New("crypto.wrapContentKey", offerrors.Unknown, err)
	}
	ephemeralPub, err := curve25519.X25519(ephemeralPriv[:], curve25519.Basepoint)
	if err != nil {
		return nil, offerrors.New("crypto.wrapContentKey", offerrors.Unknown, err)
	}
	shared, err := curve25519.X25519(ephemeralPriv[:], recipientPublic[:])
	if err != nil {
		return nil, offerrors.New("crypto.wrapContentKey", offerrors.Unknown, err)
	}
	wrapKey, err := hkdfKey(shared, iv)
	if err != nil {
		return nil, err
	}
	gcm, err := newGCM(wrapKey)
	if err != nil {
		return nil, err
	}
	sealed := gcm.Seal(nil, iv[:gcmNonceLen], contentKey, nil)

	out := make([]byte, 0, x25519KeyLen+len(sealed))
	out = append(out, ephemeralPub...)
	out = append(out, sealed...)
	return out, nil
}

// UnwrapContentKey reverses wrapContentKey given the recipient's own
// X25519 private key and the slot's 80-byte wrapped blob. Fails with
// DecryptionFailed if the GCM tag doesn't verify.
func UnwrapContentKey(recipientPrivate [x25519KeyLen]byte, iv, wrapped []byte) ([]byte, error) {
	if len(wrapped) != x25519KeyLen+contentKeyLen+16 {
		return nil, offerrors.New("crypto.UnwrapContentKey", offerrors.DecryptionFailed, nil)
	}
	ephemeralPub := wrapped[:x25519KeyLen]
	sealed := wrapped[x25519KeyLen:]

	shared, err := curve25519.X25519(recipientPrivate[:], ephemeralPub)
	if err != nil {
		return nil, offerrors.New("crypto.UnwrapContentKey", offerrors.DecryptionFailed, err)
	}
	wrapKey, err := hkdfKey(shared, iv)
	if err != nil {
		return nil, err
	}
	gcm, err := newGCM(wrapKey)
	if err != nil {
		return nil, err
	}
	contentKey, err := gcm.Open(nil, iv[:gcmNonceLen], sealed, nil)
	if err != nil {
		return nil, offerrors.New("crypto.UnwrapContentKey", offerrors.DecryptionFailed, err)
	}
	return contentKey, nil
}

// DecryptMultiEncrypted decrypts the shared ciphertext of a MultiEncrypted
// block once a recipient has recovered the content key via
// UnwrapContentKey.
func DecryptMultiEncrypted(contentKey []byte, fields blocks.MultiEncryptedHeaderFields, ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM(contentKey)
	if err != nil {
		return nil, err
	}
	sealed := append(append([]byte{}, ciphertext...), fields.AuthTag[:]...)
	plaintext, err := gcm.Open(nil, fields.IV[:gcmNonceLen], sealed, nil)
	if err != nil {
		return nil, offerrors.New("crypto.DecryptMultiEncrypted", offerrors.DecryptionFailed, err)
	}
	return plaintext, nil
}
