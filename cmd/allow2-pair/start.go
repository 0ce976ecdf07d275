package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/internal/logger"
	"github.com/allow2/offlinecore/pairing"
	"github.com/allow2/offlinecore/secretstore"
	"github.com/spf13/cobra"
)

var (
	startEndpoint   string
	startMode       string
	startDeviceName string
	startStoreDir   string
	startPassphrase string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a pairing session and print QR/PIN payloads and status transitions",
	Example: `  allow2-pair start --endpoint http://127.0.0.1:8080 --mode qr --device-name "Kid's Tablet"`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().StringVar(&startEndpoint, "endpoint", "", "pairing endpoint base URL (required)")
	startCmd.Flags().StringVar(&startMode, "mode", "qr", "pairing mode (qr, pin)")
	startCmd.Flags().StringVar(&startDeviceName, "device-name", "cli-device", "device name to present to the parent")
	startCmd.Flags().StringVar(&startStoreDir, "store-dir", "", "persist credentials under this directory via a passphrase-protected store (omit for in-memory only)")
	startCmd.Flags().StringVar(&startPassphrase, "passphrase", "", "unlock passphrase for --store-dir")
	startCmd.MarkFlagRequired("endpoint")
}

func runStart(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	transport := newHTTPTransport(startEndpoint)
	provider := sagecrypto.NewProvider()
	session := pairing.New(transport, store, provider)
	defer session.Close()

	log := logger.NewLogger(os.Stderr, logger.InfoLevel)

	terminal := make(chan pairing.State, 1)
	session.OnStateChange(func(state pairing.State) {
		log.Info("pairing state transition", logger.String("state", state.String()))
		if state.IsTerminal() {
			terminal <- state
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		session.Cancel(ctx)
		cancel()
	}()

	if err := session.Start(ctx, pairing.Mode(startMode), startDeviceName); err != nil {
		return fmt.Errorf("start pairing: %w", err)
	}

	select {
	case state := <-terminal:
		fmt.Printf("final state: %s\n", state)
		if state == pairing.StateCompleted {
			creds, ok, err := pairing.LoadCredentials(store)
			if err == nil && ok {
				fmt.Printf("paired as user %s, pair %s\n", creds.UserID, creds.PairID)
			}
		}
	case <-ctx.Done():
	}
	return nil
}

func openStore() (secretstore.SecretStore, error) {
	if startStoreDir == "" {
		return secretstore.NewMemory(), nil
	}
	if startPassphrase == "" {
		return nil, fmt.Errorf("--passphrase is required with --store-dir")
	}
	return secretstore.NewLocal(startStoreDir, startPassphrase)
}
