package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"

	sagecrypto "github.com/allow2/offlinecore/crypto"
)

// writeKeyFile saves a keypair's raw 64-byte Ed25519 private key,
// hex-encoded, to path. The matching public key can always be recovered
// from it (ed25519.PrivateKey.Public), so only one file is kept.
func writeKeyFile(path string, kp sagecrypto.KeyPair) error {
	priv, ok := kp.PrivateKey().(ed25519.PrivateKey)
	if !ok || len(priv) == 0 {
		return fmt.Errorf("keypair has no private key to save")
	}
	return os.WriteFile(path, []byte(hex.EncodeToString(priv)), 0600)
}

// loadSigningKey reads a private keyfile written by writeKeyFile.
func loadSigningKey(path string) (sagecrypto.KeyPair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	priv, err := hex.DecodeString(string(raw))
	if err != nil || len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%s is not a valid Ed25519 private keyfile", path)
	}
	privKey := ed25519.PrivateKey(priv)
	pub, ok := privKey.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%s: could not recover public key", path)
	}
	return sagecrypto.NewEd25519KeyPair(pub, privKey), nil
}

// loadVerifyingKey reads a hex-encoded 32-byte Ed25519 public key, either
// from a literal hex string or from a file containing one.
func loadVerifyingKey(hexOrPath string) (sagecrypto.KeyPair, error) {
	raw, err := hex.DecodeString(hexOrPath)
	if err != nil || len(raw) != ed25519.PublicKeySize {
		data, readErr := os.ReadFile(hexOrPath)
		if readErr != nil {
			return nil, fmt.Errorf("not a valid public key hex string or file: %s", hexOrPath)
		}
		raw, err = hex.DecodeString(string(data))
		if err != nil || len(raw) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("%s does not contain a valid Ed25519 public key", hexOrPath)
		}
	}
	return sagecrypto.NewEd25519VerifyingKey(ed25519.PublicKey(raw)), nil
}
