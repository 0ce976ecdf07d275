package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/allow2/offlinecore/errs"
	"github.com/allow2/offlinecore/internal/metrics"
)

const algEd25519 = "ed25519"

// Provider is the OfflineCrypto capability interface (spec §4.1, §9). All
// signature, MAC, and key-derivation operations the offline core needs
// flow through it, so a test harness can substitute a deterministic
// variant without touching call sites.
type Provider interface {
	// GenerateKeypair produces a new Ed25519 signing keypair.
	GenerateKeypair() (KeyPair, error)

	// Sign signs msg with signing.
	Sign(signing KeyPair, msg []byte) ([]byte, error)

	// Verify checks sig over msg under verifying. Returns a *errs.Error
	// with Kind errs.BadSignature on mismatch.
	Verify(verifying KeyPair, msg, sig []byte) error

	// HMACSHA256 computes the HMAC-SHA256 tag of msg under key.
	HMACSHA256(key, msg []byte) []byte

	// HKDF derives length bytes from ikm using SHA-256, per RFC 5869.
	HKDF(ikm, salt, info []byte, length int) ([]byte, error)

	// RandomBytes returns n cryptographically random bytes.
	RandomBytes(n int) ([]byte, error)
}

// ed25519Provider is the production Provider: crypto/ed25519,
// crypto/hmac+crypto/sha256, golang.org/x/crypto/hkdf, crypto/rand.
type ed25519Provider struct {
	rng io.Reader
}

// NewProvider returns the default Ed25519 + HMAC-SHA256 + HKDF-SHA256
// Provider, sourcing randomness from crypto/rand.
func NewProvider() Provider {
	return &ed25519Provider{rng: rand.Reader}
}

// NewDeterministicProvider returns a Provider identical to NewProvider
// except RandomBytes reads from rng. Intended for tests that need to
// assert exact nonces or key IDs; never use in production, since rng is
// typically seeded and therefore predictable.
func NewDeterministicProvider(rng io.Reader) Provider {
	return &ed25519Provider{rng: rng}
}

func (p *ed25519Provider) GenerateKeypair() (KeyPair, error) {
	return generateEd25519KeyPairFrom(p.rng)
}

func (p *ed25519Provider) Sign(signing KeyPair, msg []byte) ([]byte, error) {
	start := time.Now()
	sig, err := signing.Sign(msg)
	metrics.CryptoOperationDuration.WithLabelValues("sign", algEd25519).Observe(time.Since(start).Seconds())
	metrics.CryptoOperations.WithLabelValues("sign", algEd25519).Inc()
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("sign").Inc()
	}
	return sig, err
}

func (p *ed25519Provider) Verify(verifying KeyPair, msg, sig []byte) error {
	start := time.Now()
	err := verifying.Verify(msg, sig)
	metrics.CryptoOperationDuration.WithLabelValues("verify", algEd25519).Observe(time.Since(start).Seconds())
	metrics.CryptoOperations.WithLabelValues("verify", algEd25519).Inc()
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("verify").Inc()
		return errs.New(errs.BadSignature, "crypto.Verify", err)
	}
	return nil
}

func (p *ed25519Provider) HMACSHA256(key, msg []byte) []byte {
	start := time.Now()
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	sum := mac.Sum(nil)
	metrics.CryptoOperationDuration.WithLabelValues("hmac", "hmac-sha256").Observe(time.Since(start).Seconds())
	metrics.CryptoOperations.WithLabelValues("hmac", "hmac-sha256").Inc()
	return sum
}

func (p *ed25519Provider) HKDF(ikm, salt, info []byte, length int) ([]byte, error) {
	start := time.Now()
	reader := hkdf.New(sha256.New, ikm, salt, info)
	out := make([]byte, length)
	_, err := io.ReadFull(reader, out)
	metrics.CryptoOperationDuration.WithLabelValues("hkdf", "hmac-sha256").Observe(time.Since(start).Seconds())
	metrics.CryptoOperations.WithLabelValues("hkdf", "hmac-sha256").Inc()
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("hkdf").Inc()
		return nil, errs.New(errs.Malformed, "crypto.HKDF", err)
	}
	return out, nil
}

func (p *ed25519Provider) RandomBytes(n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(p.rng, out); err != nil {
		return nil, errs.New(errs.Malformed, "crypto.RandomBytes", err)
	}
	return out, nil
}

// ConstantTimeEqual compares a and b without leaking timing information.
// It returns false (not a panic) when lengths differ, matching
// subtle.ConstantTimeCompare's contract of running in time independent of
// the values but not independent of the lengths.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// VoiceKeyInfo is the HKDF "info" label fixed by spec §4.1 for deriving
// the voice-code shared key from a pairing's pair_token.
const VoiceKeyInfo = "allow2-voice-v1"

// DeriveVoiceKey derives the 32-byte voice-code shared key from a
// pairing's pair_token and pair_id, per spec §4.1:
// HKDF(ikm=pair_token, salt=pair_id, info="allow2-voice-v1", len=32).
func DeriveVoiceKey(p Provider, pairToken, pairID []byte) ([]byte, error) {
	return p.HKDF(pairToken, pairID, []byte(VoiceKeyInfo), 32)
}
