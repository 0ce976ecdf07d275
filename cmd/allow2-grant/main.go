// Command allow2-grant issues and verifies signed QR grant tokens from
// the command line, for manual testing and offline key management.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/allow2/offlinecore/cmd/internal/envfile"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "allow2-grant",
	Short: "Issue and verify offline QR grant tokens",
	Long: `allow2-grant manages the Ed25519 keypair a parent device uses to sign
QR grant tokens, and issues or verifies tokens against it.

Subcommands:
  generate-keypair  generate a new Ed25519 signing key
  rotate-keypair    retire the current signing key for a new one
  issue             build and sign a grant token
  verify            verify a token and print the decoded grant`,
}

func main() {
	envfile.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "deployment config file (YAML/JSON) constraining protocol tunables like grant_max_minutes (optional)")
}
