package main

import (
	"fmt"

	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/crypto/rotation"
	"github.com/allow2/offlinecore/crypto/storage"
	"github.com/allow2/offlinecore/secretstore"
	"github.com/spf13/cobra"
)

const rotateKeyID = "parent"

var (
	rotateIn         string
	rotateOut        string
	rotateStoreDir   string
	rotatePassphrase string
)

var rotateKeypairCmd = &cobra.Command{
	Use:   "rotate-keypair",
	Short: "Rotate the parent signing keypair, retiring the old one without invalidating grants already issued under it",
	Example: `  allow2-grant rotate-keypair --in parent.key --out parent.key.new --store-dir ./keys --passphrase hunter2`,
	RunE: runRotateKeypair,
}

func init() {
	rootCmd.AddCommand(rotateKeypairCmd)
	rotateKeypairCmd.Flags().StringVar(&rotateIn, "in", "", "current private keyfile, as written by generate-keypair (required)")
	rotateKeypairCmd.Flags().StringVar(&rotateOut, "out", "", "path to write the new private keyfile to (required)")
	rotateKeypairCmd.Flags().StringVar(&rotateStoreDir, "store-dir", "", "persist rotation history under this directory via a passphrase-protected store (omit to rotate without history across runs)")
	rotateKeypairCmd.Flags().StringVar(&rotatePassphrase, "passphrase", "", "unlock passphrase for --store-dir")
	rotateKeypairCmd.MarkFlagRequired("in")
	rotateKeypairCmd.MarkFlagRequired("out")
}

func runRotateKeypair(cmd *cobra.Command, args []string) error {
	oldKeyPair, err := loadSigningKey(rotateIn)
	if err != nil {
		return fmt.Errorf("load current keyfile: %w", err)
	}

	keyStorage, err := openRotationStorage()
	if err != nil {
		return err
	}
	if err := keyStorage.Store(rotateKeyID, oldKeyPair); err != nil {
		return fmt.Errorf("register current key: %w", err)
	}

	rotator := rotation.NewKeyRotator(keyStorage)
	newKeyPair, err := rotator.Rotate(rotateKeyID)
	if err != nil {
		return fmt.Errorf("rotate keypair: %w", err)
	}

	if err := writeKeyFile(rotateOut, newKeyPair); err != nil {
		return fmt.Errorf("write new keyfile: %w", err)
	}

	newPub, err := sagecrypto.PublicKeyBytes(newKeyPair)
	if err != nil {
		return err
	}
	fmt.Printf("Old key ID: %s\n", oldKeyPair.ID())
	fmt.Printf("New key ID: %s\n", newKeyPair.ID())
	fmt.Printf("New public key: %x\n", newPub)
	fmt.Printf("New private key saved to: %s\n", rotateOut)
	fmt.Println("The old key remains valid for verification so any grant already issued under it still verifies.")
	return nil
}

// openRotationStorage returns the KeyStorage the rotator registers the
// current key under: secretstore-backed when --store-dir is set (so the
// retired key and rotation history survive past this single invocation),
// otherwise an in-memory store scoped to this one rotation.
func openRotationStorage() (sagecrypto.KeyStorage, error) {
	if rotateStoreDir == "" {
		return storage.NewMemoryKeyStorage(), nil
	}
	if rotatePassphrase == "" {
		return nil, fmt.Errorf("--passphrase is required with --store-dir")
	}
	store, err := secretstore.NewLocal(rotateStoreDir, rotatePassphrase)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return storage.NewSecretStoreKeyStorage(store), nil
}
