package crypto

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEd25519KeyPairRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	kp := NewEd25519KeyPair(pub, priv)
	assert.Equal(t, KeyTypeEd25519, kp.Type())
	assert.NotEmpty(t, kp.ID())

	sig, err := kp.Sign([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, kp.Verify([]byte("hello"), sig))
}

func TestVerifyingOnlyKeyPairCannotSign(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	kp := NewEd25519VerifyingKey(pub)
	_, err = kp.Sign([]byte("hello"))
	assert.Error(t, err)
}

func TestKeyIDIsStableForSameKey(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	kp1 := NewEd25519KeyPair(pub, priv)
	kp2 := NewEd25519KeyPair(pub, priv)
	assert.Equal(t, kp1.ID(), kp2.ID())
}

func TestPublicKeyBytesReturnsRawKey(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	kp := NewEd25519KeyPair(pub, priv)
	raw, err := PublicKeyBytes(kp)
	require.NoError(t, err)
	assert.Equal(t, []byte(pub), raw)
}
