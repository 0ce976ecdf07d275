// Command allow2-voice drives the voice-code challenge/response protocol
// from the command line, for manual testing over a real phone call
// without either end needing a data connection.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/allow2/offlinecore/cmd/internal/envfile"
)

var rootCmd = &cobra.Command{
	Use:   "allow2-voice",
	Short: "Generate and validate voice request/approval codes",
	Long: `allow2-voice exercises the voice-code protocol: a child reads a
6-digit request code over the phone, a parent computes a 6-digit
approval code from the shared key, and the child validates it.

Subcommands:
  request   emit a 6-digit request code
  approve   compute an approval code for a set of request codes
  validate  check an approval code against a set of request codes`,
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
