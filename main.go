package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "vorve-checkout-api",
		Short:   "Checkout and payment webhook service for the landing page",
		Version: Version,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(verifyConfigCmd())
	rootCmd.AddCommand(signWebhookCmd())

	// Running the binary bare keeps the old deployment behaviour of starting the server.
	rootCmd.RunE = serveCmd().RunE

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
