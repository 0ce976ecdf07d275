package main

import (
	"fmt"
	"time"

	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/voicecode"
	"github.com/spf13/cobra"
)

var (
	approveKey   string
	approveCodes []string
)

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Compute an approval code for a set of request codes",
	Example: `  allow2-voice approve --key a1b2c3... --code 012345 --code 198765`,
	RunE: runApprove,
}

func init() {
	rootCmd.AddCommand(approveCmd)
	approveCmd.Flags().StringVar(&approveKey, "key", "", "shared key, hex string or keyfile (required)")
	approveCmd.Flags().StringArrayVar(&approveCodes, "code", nil, "a request code (repeatable)")
	approveCmd.MarkFlagRequired("key")
	approveCmd.MarkFlagRequired("code")
}

func runApprove(cmd *cobra.Command, args []string) error {
	sharedKey, err := loadSharedKey(approveKey)
	if err != nil {
		return fmt.Errorf("load shared key: %w", err)
	}

	provider := sagecrypto.NewProvider()
	code := voicecode.GenerateApprovalCode(provider, sharedKey, approveCodes, time.Now().Unix())
	fmt.Println(code)
	return nil
}
