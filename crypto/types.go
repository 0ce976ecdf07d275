// Package crypto implements OfflineCrypto (C1): the single capability
// interface every other offline-authorization primitive signs, verifies,
// derives keys, or compares secrets through. It exposes one concrete
// provider (Ed25519 + HMAC-SHA256 + HKDF-SHA256) and one deterministic
// test variant, per the "polymorphism over crypto primitives" design note.
package crypto

import (
	stdcrypto "crypto"
	"time"
)

// KeyType identifies the signing algorithm a KeyPair implements. The
// offline core only ever mints Ed25519 keys; the type remains distinct
// from a bare constant so KeyStorage can hold heterogeneous keys if a
// future algorithm is added.
type KeyType string

// KeyTypeEd25519 is the only key type the offline grant protocol uses.
const KeyTypeEd25519 KeyType = "Ed25519"

// KeyPair is a signing keypair: the parent device's long-term Ed25519
// identity that signs QR grant tokens.
type KeyPair interface {
	// PublicKey returns the verifying half.
	PublicKey() stdcrypto.PublicKey

	// PrivateKey returns the signing half. Never leaves the parent device.
	PrivateKey() stdcrypto.PrivateKey

	// Type returns the key algorithm.
	Type() KeyType

	// Sign signs message, returning a detached signature.
	Sign(message []byte) ([]byte, error)

	// Verify checks a detached signature over message.
	Verify(message, signature []byte) error

	// ID returns a short, stable identifier derived from the public key.
	ID() string
}

// KeyStorage persists KeyPairs by an opaque string ID (typically a
// key_id). The child device's SecretStore-backed implementation and an
// in-memory implementation for tests both satisfy this interface.
type KeyStorage interface {
	Store(id string, keyPair KeyPair) error
	Load(id string) (KeyPair, error)
	Delete(id string) error
	List() ([]string, error)
	Exists(id string) bool
}

// KeyRotationConfig controls how KeyRotator.Rotate behaves.
type KeyRotationConfig struct {
	// KeepOldKeys, when true, retains the previous key under a derived ID
	// so grants signed before rotation still verify until explicitly
	// retired. The offline grant protocol requires this: a QR grant
	// already printed or in flight must not be invalidated by rotation.
	KeepOldKeys bool
}

// KeyRotationEvent records one rotation for audit/history purposes.
type KeyRotationEvent struct {
	Timestamp time.Time
	OldKeyID  string
	NewKeyID  string
	Reason    string
}

// KeyRotator rotates a KeyPair held in a KeyStorage.
type KeyRotator interface {
	Rotate(id string) (KeyPair, error)
	SetRotationConfig(config KeyRotationConfig)
	GetRotationHistory(id string) ([]KeyRotationEvent, error)
}
