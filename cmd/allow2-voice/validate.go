package main

import (
	"fmt"
	"os"
	"time"

	"github.com/allow2/offlinecore/accept"
	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/deficit"
	"github.com/allow2/offlinecore/errs"
	"github.com/allow2/offlinecore/nonceledger"
	"github.com/allow2/offlinecore/voicecode"
	"github.com/spf13/cobra"
)

var (
	validateKey        string
	validateCodes      []string
	validateApproval   string
	validateChild      uint64
	validateStoreDir   string
	validatePassphrase string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Accept an approval code: validate it, then apply each request code against the deficit and nonce ledgers",
	Example: `  allow2-voice validate --key a1b2c3... --code 012345 --approval 445566 --child 1001`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateKey, "key", "", "shared key, hex string or keyfile (required)")
	validateCmd.Flags().StringArrayVar(&validateCodes, "code", nil, "a request code (repeatable)")
	validateCmd.Flags().StringVar(&validateApproval, "approval", "", "the approval code to validate (required)")
	validateCmd.Flags().Uint64Var(&validateChild, "child", 0, "the child this approval applies to (required)")
	validateCmd.Flags().StringVar(&validateStoreDir, "store-dir", "", "persist the nonce/deficit ledgers under this directory via a passphrase-protected store (omit for in-memory only, which cannot detect replay across separate runs)")
	validateCmd.Flags().StringVar(&validatePassphrase, "passphrase", "", "unlock passphrase for --store-dir")
	validateCmd.MarkFlagRequired("key")
	validateCmd.MarkFlagRequired("code")
	validateCmd.MarkFlagRequired("approval")
	validateCmd.MarkFlagRequired("child")
}

func runValidate(cmd *cobra.Command, args []string) error {
	sharedKey, err := loadSharedKey(validateKey)
	if err != nil {
		return fmt.Errorf("load shared key: %w", err)
	}

	reqs := make([]voicecode.Request, 0, len(validateCodes))
	for _, c := range validateCodes {
		req, err := voicecode.ParseRequestCode(c)
		if err != nil {
			return fmt.Errorf("parse request code %q: %w", c, err)
		}
		reqs = append(reqs, req)
	}

	store, err := openVoiceStore()
	if err != nil {
		return err
	}
	nonces, err := nonceledger.LoadFromStore(store, nonceledger.DefaultTTL)
	if err != nil {
		return fmt.Errorf("load nonce ledger: %w", err)
	}
	deficits, err := deficit.LoadFromStore(store)
	if err != nil {
		return fmt.Errorf("load deficit ledger: %w", err)
	}

	provider := sagecrypto.NewProvider()
	applied, err := accept.VoiceApproval(provider, sharedKey, reqs, validateApproval, nonces, deficits, validateChild, time.Now().UTC())
	if err != nil {
		if errs.Is(err, errs.DeficitExceeded) {
			fmt.Println("REFUSED: deficit ceiling reached")
			os.Exit(1)
		}
		fmt.Println("REJECTED")
		os.Exit(1)
	}

	if err := nonces.SaveToStore(store); err != nil {
		return fmt.Errorf("save nonce ledger: %w", err)
	}
	if err := deficits.SaveToStore(store); err != nil {
		return fmt.Errorf("save deficit ledger: %w", err)
	}

	if len(applied) == 0 {
		fmt.Println("accepted, but every code was already consumed or unsupported")
		return nil
	}
	fmt.Printf("accepted %d code(s), child %d now owes %ds\n", len(applied), validateChild, deficits.Get(validateChild))
	return nil
}
