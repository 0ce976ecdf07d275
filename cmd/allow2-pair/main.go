// Command allow2-pair drives a PairingSession against a real pairing
// endpoint from the command line, for manual and integration testing of
// the state machine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/allow2/offlinecore/cmd/internal/envfile"
)

var rootCmd = &cobra.Command{
	Use:   "allow2-pair",
	Short: "Drive a pairing session against an HTTP endpoint",
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
}
