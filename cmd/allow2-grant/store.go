package main

import (
	"fmt"

	"github.com/allow2/offlinecore/secretstore"
)

// openVerifyStore returns the SecretStore the verify command persists its
// nonce ledger in: Local when --store-dir is set, otherwise an in-memory
// store scoped to this single process.
func openVerifyStore() (secretstore.SecretStore, error) {
	if verifyStoreDir == "" {
		return secretstore.NewMemory(), nil
	}
	if verifyPassphrase == "" {
		return nil, fmt.Errorf("--passphrase is required with --store-dir")
	}
	return secretstore.NewLocal(verifyStoreDir, verifyPassphrase)
}
