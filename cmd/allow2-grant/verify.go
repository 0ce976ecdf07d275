package main

import (
	"fmt"
	"time"

	"github.com/allow2/offlinecore/accept"
	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/errs"
	"github.com/allow2/offlinecore/nonceledger"
	"github.com/spf13/cobra"
)

var (
	verifyPubKey     string
	verifyToken      string
	verifyDevice     string
	verifyChild      uint64
	verifyStoreDir   string
	verifyPassphrase string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Accept a grant token: verify, check expiry/audience, and record its nonce against replay",
	Example: `  allow2-grant verify --pubkey a1b2c3... --token eyJhbGciOi... --child 1001`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&verifyPubKey, "pubkey", "", "verifying public key, hex string or keyfile (required)")
	verifyCmd.Flags().StringVar(&verifyToken, "token", "", "grant token to verify (required)")
	verifyCmd.Flags().StringVar(&verifyDevice, "device", "", "this device's ID, to check against the grant's device audience (empty: skip the check)")
	verifyCmd.Flags().Uint64Var(&verifyChild, "child", 0, "this device's child ID, to check against the grant's child audience (0: skip the check)")
	verifyCmd.Flags().StringVar(&verifyStoreDir, "store-dir", "", "persist the nonce ledger under this directory via a passphrase-protected store (omit for in-memory only, which cannot detect replay across separate runs)")
	verifyCmd.Flags().StringVar(&verifyPassphrase, "passphrase", "", "unlock passphrase for --store-dir")
	verifyCmd.MarkFlagRequired("pubkey")
	verifyCmd.MarkFlagRequired("token")
}

func runVerify(cmd *cobra.Command, args []string) error {
	verifying, err := loadVerifyingKey(verifyPubKey)
	if err != nil {
		return fmt.Errorf("load verifying key: %w", err)
	}

	store, err := openVerifyStore()
	if err != nil {
		return err
	}
	ledger, err := nonceledger.LoadFromStore(store, nonceledger.DefaultTTL)
	if err != nil {
		return fmt.Errorf("load nonce ledger: %w", err)
	}

	provider := sagecrypto.NewProvider()
	now := time.Now().UTC()
	grant, err := accept.Grant(verifyToken, verifying, provider, ledger, verifyDevice, verifyChild, now)
	if err != nil {
		if errs.Is(err, errs.Replay) {
			fmt.Println("Status:     REPLAY (nonce already consumed)")
			return nil
		}
		return fmt.Errorf("accept grant: %w", err)
	}

	if err := ledger.SaveToStore(store); err != nil {
		return fmt.Errorf("save nonce ledger: %w", err)
	}

	fmt.Printf("Type:       %s\n", grant.Type)
	fmt.Printf("Child ID:   %d\n", grant.ChildID)
	fmt.Printf("Activity:   %d\n", grant.ActivityID)
	fmt.Printf("Minutes:    %d\n", grant.Minutes)
	fmt.Printf("Issued at:  %s\n", grant.IssuedAt.Format(timeFormat))
	fmt.Printf("Expires at: %s\n", grant.ExpiresAt.Format(timeFormat))
	fmt.Printf("Device:     %s\n", deviceOrAny(grant.DeviceID))
	fmt.Printf("Nonce:      %s\n", grant.Nonce)
	fmt.Printf("Key ID:     %s\n", grant.KeyID)
	fmt.Println("Status:     accepted")
	return nil
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

func deviceOrAny(deviceID string) string {
	if deviceID == "" {
		return "(any)"
	}
	return deviceID
}
