package main

import (
	"fmt"

	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/voicecode"
	"github.com/spf13/cobra"
)

var (
	requestType    int
	requestActID   int
	requestMinutes int
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Emit a 6-digit request code",
	Example: `  allow2-voice request --type 0 --activity 2 --minutes 30`,
	RunE: runRequest,
}

func init() {
	rootCmd.AddCommand(requestCmd)
	requestCmd.Flags().IntVar(&requestType, "type", 0, "request type (0=quota, 1=extend, 2=earlier, 3=lift_ban)")
	requestCmd.Flags().IntVar(&requestActID, "activity", 0, "activity ID (mod 10)")
	requestCmd.Flags().IntVar(&requestMinutes, "minutes", 30, "minutes requested (rounded to nearest 5, max 495)")
}

func runRequest(cmd *cobra.Command, args []string) error {
	provider := sagecrypto.NewProvider()
	req, err := voicecode.GenerateRequestCode(provider, voicecode.RequestType(requestType), requestActID, requestMinutes)
	if err != nil {
		return fmt.Errorf("generate request code: %w", err)
	}
	fmt.Println(req.Code())
	return nil
}
