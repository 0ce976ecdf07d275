package main

import (
	"encoding/hex"
	"fmt"
	"time"

	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/qrgrant"
	"github.com/spf13/cobra"
)

var (
	issueKeyFile  string
	issueType     string
	issueChild    uint64
	issueActivity uint64
	issueMinutes  uint16
	issueDevice   string
	issueTTL      time.Duration
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Build and sign a QR grant token",
	Example: `  allow2-grant issue --key parent.key --type quota --child 1 --activity 2 \
    --minutes 30 --ttl 1h`,
	RunE: runIssue,
}

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.Flags().StringVar(&issueKeyFile, "key", "", "signing keyfile (required)")
	issueCmd.Flags().StringVar(&issueType, "type", "quota", "grant type (extension, quota, earlier, lift_ban)")
	issueCmd.Flags().Uint64Var(&issueChild, "child", 0, "child ID (required)")
	issueCmd.Flags().Uint64Var(&issueActivity, "activity", 0, "activity ID")
	issueCmd.Flags().Uint16Var(&issueMinutes, "minutes", 0, "minutes granted (0-480)")
	issueCmd.Flags().StringVar(&issueDevice, "device", "", "device ID this grant is restricted to (empty: any device)")
	issueCmd.Flags().DurationVar(&issueTTL, "ttl", time.Hour, "how long the grant remains valid")
	issueCmd.MarkFlagRequired("key")
	issueCmd.MarkFlagRequired("child")
}

func runIssue(cmd *cobra.Command, args []string) error {
	signing, err := loadSigningKey(issueKeyFile)
	if err != nil {
		return fmt.Errorf("load signing key: %w", err)
	}

	deployment, err := loadDeploymentConfig()
	if err != nil {
		return err
	}
	if deployment != nil && deployment.Protocol != nil && int(issueMinutes) > deployment.Protocol.GrantMaxMinutes {
		return fmt.Errorf("--minutes %d exceeds deployment limit of %d", issueMinutes, deployment.Protocol.GrantMaxMinutes)
	}

	provider := sagecrypto.NewProvider()
	nonceBytes, err := provider.RandomBytes(16)
	if err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	now := time.Now().UTC()
	grant := qrgrant.Grant{
		Type:       qrgrant.Type(issueType),
		ChildID:    issueChild,
		ActivityID: issueActivity,
		Minutes:    issueMinutes,
		IssuedAt:   now,
		ExpiresAt:  now.Add(issueTTL),
		Nonce:      hex.EncodeToString(nonceBytes),
		DeviceID:   issueDevice,
	}

	token, err := qrgrant.Generate(grant, signing, provider, signing.ID())
	if err != nil {
		return fmt.Errorf("issue grant: %w", err)
	}

	fmt.Println(token)
	return nil
}
