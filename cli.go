package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"vorve-checkout-api/config"
	"vorve-checkout-api/services/paddle"
)

func verifyConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-config",
		Short: "Check the environment for a deployable payment configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printChecks(cmd.OutOrStdout(), config.Load())
		},
	}
}

func printChecks(w io.Writer, cfg *config.Config) error {
	for _, warning := range cfg.Warnings {
		fmt.Fprintf(w, "[warn] %s\n", warning)
	}
	checks := cfg.Validate()
	for _, c := range checks {
		mark := "ok  "
		if !c.OK {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "[%s] %-28s %s\n", mark, c.Name, c.Detail)
	}
	if !config.Healthy(checks) {
		return fmt.Errorf("configuration has failing checks")
	}
	fmt.Fprintln(w, "configuration looks good")
	return nil
}

func signWebhookCmd() *cobra.Command {
	var (
		secret string
		at     int64
	)

	cmd := &cobra.Command{
		Use:   "sign-webhook [payload.json]",
		Short: "Print a signature header for a webhook payload",
		Long: `Sign a webhook payload with the notification secret so it can be
replayed against a sandbox deployment.

Examples:
  vorve-checkout-api sign-webhook event.json
  vorve-checkout-api sign-webhook --secret pdl_ntfset_... event.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read payload: %w", err)
			}
			if secret == "" {
				secret = config.Load().Paddle.WebhookSecret
			}
			ts := time.Now()
			if at > 0 {
				ts = time.Unix(at, 0)
			}
			return writeSignature(cmd.OutOrStdout(), secret, ts, body)
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "notification secret (defaults to PADDLE_WEBHOOK_SECRET)")
	cmd.Flags().Int64Var(&at, "at", 0, "unix timestamp to sign with (defaults to now)")

	return cmd
}

func writeSignature(w io.Writer, secret string, ts time.Time, body []byte) error {
	if secret == "" {
		return fmt.Errorf("no secret: set PADDLE_WEBHOOK_SECRET or pass --secret")
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", paddle.SignatureHeader, paddle.Sign(secret, ts, body))
	return err
}
