package main

import (
	"encoding/hex"
	"fmt"

	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/spf13/cobra"
)

var generateOut string

var generateKeypairCmd = &cobra.Command{
	Use:   "generate-keypair",
	Short: "Generate a new Ed25519 signing keypair",
	Example: `  # Generate a key and save the private half to parent.key
  allow2-grant generate-keypair --out parent.key`,
	RunE: runGenerateKeypair,
}

func init() {
	rootCmd.AddCommand(generateKeypairCmd)
	generateKeypairCmd.Flags().StringVarP(&generateOut, "out", "o", "", "private keyfile path (required)")
	generateKeypairCmd.MarkFlagRequired("out")
}

func runGenerateKeypair(cmd *cobra.Command, args []string) error {
	provider := sagecrypto.NewProvider()
	kp, err := provider.GenerateKeypair()
	if err != nil {
		return fmt.Errorf("generate keypair: %w", err)
	}
	if err := writeKeyFile(generateOut, kp); err != nil {
		return fmt.Errorf("write keyfile: %w", err)
	}

	pub, err := sagecrypto.PublicKeyBytes(kp)
	if err != nil {
		return err
	}
	fmt.Printf("Key ID:     %s\n", kp.ID())
	fmt.Printf("Public key: %s\n", hex.EncodeToString(pub))
	fmt.Printf("Private key saved to: %s\n", generateOut)
	return nil
}
