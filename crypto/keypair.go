package crypto

import (
	stdcrypto "crypto"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"github.com/allow2/offlinecore/errs"
)

var (
	errNoPrivateKey = errors.New("keypair has no private key")
	errNotEd25519   = errors.New("not an Ed25519 public key")
)

// ed25519KeyPair implements KeyPair for Ed25519 keys.
//
// This used to live in a separate crypto/keys subpackage with a
// registrar indirection (crypto/manager.go + crypto/wrappers.go) so that
// crypto/keys could depend on crypto without a cycle, across several key
// algorithms (Ed25519, Secp256k1, RS256, X25519). The offline grant
// protocol only ever signs with Ed25519, so that indirection bought
// nothing here and is folded away.
type ed25519KeyPair struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	id         string
}

// generateEd25519KeyPairFrom generates an Ed25519 keypair sourcing
// randomness from rng (crypto/rand.Reader in production, a seeded
// reader in deterministic test variants).
func generateEd25519KeyPairFrom(rng io.Reader) (KeyPair, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rng)
	if err != nil {
		return nil, errs.New(errs.Malformed, "crypto.GenerateKeypair", err)
	}
	return &ed25519KeyPair{
		privateKey: privateKey,
		publicKey:  publicKey,
		id:         keyIDFromPublic(publicKey),
	}, nil
}

// NewEd25519KeyPair wraps an existing Ed25519 keypair (e.g. imported from
// a KeyStorage) as a KeyPair.
func NewEd25519KeyPair(pub ed25519.PublicKey, priv ed25519.PrivateKey) KeyPair {
	return &ed25519KeyPair{privateKey: priv, publicKey: pub, id: keyIDFromPublic(pub)}
}

// NewEd25519VerifyingKey wraps a bare public key as a verify-only KeyPair.
func NewEd25519VerifyingKey(pub ed25519.PublicKey) KeyPair {
	return &ed25519KeyPair{publicKey: pub, id: keyIDFromPublic(pub)}
}

func keyIDFromPublic(pub ed25519.PublicKey) string {
	hash := sha256.Sum256(pub)
	return hex.EncodeToString(hash[:8])
}

func (kp *ed25519KeyPair) PublicKey() stdcrypto.PublicKey   { return kp.publicKey }
func (kp *ed25519KeyPair) PrivateKey() stdcrypto.PrivateKey { return kp.privateKey }
func (kp *ed25519KeyPair) Type() KeyType                    { return KeyTypeEd25519 }
func (kp *ed25519KeyPair) ID() string                       { return kp.id }

func (kp *ed25519KeyPair) Sign(message []byte) ([]byte, error) {
	if len(kp.privateKey) == 0 {
		return nil, errs.New(errs.InvalidGrant, "ed25519KeyPair.Sign", errNoPrivateKey)
	}
	return ed25519.Sign(kp.privateKey, message), nil
}

func (kp *ed25519KeyPair) Verify(message, signature []byte) error {
	if !ed25519.Verify(kp.publicKey, message, signature) {
		return errs.E(errs.BadSignature)
	}
	return nil
}

// PublicKeyBytes returns the raw 32-byte Ed25519 public key.
func PublicKeyBytes(kp KeyPair) ([]byte, error) {
	pub, ok := kp.PublicKey().(ed25519.PublicKey)
	if !ok {
		return nil, errs.New(errs.InvalidGrant, "crypto.PublicKeyBytes", errNotEd25519)
	}
	return []byte(pub), nil
}
