package main

import (
	"fmt"

	"github.com/allow2/offlinecore/secretstore"
)

// openVoiceStore returns the SecretStore the validate command persists its
// nonce and deficit ledgers in: Local when --store-dir is set, otherwise
// an in-memory store scoped to this single process.
func openVoiceStore() (secretstore.SecretStore, error) {
	if validateStoreDir == "" {
		return secretstore.NewMemory(), nil
	}
	if validatePassphrase == "" {
		return nil, fmt.Errorf("--passphrase is required with --store-dir")
	}
	return secretstore.NewLocal(validateStoreDir, validatePassphrase)
}
