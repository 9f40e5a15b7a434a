package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/drivehr/jobsync/internal/webhook"
	"github.com/spf13/cobra"
)

func signCmd() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "sign <payload.json>",
		Short: "Compute the signature headers for a payload file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := resolveSecret(secret)
			if err != nil {
				return err
			}

			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read payload file: %w", err)
			}

			timestamp := strconv.FormatInt(time.Now().Unix(), 10)

			fmt.Printf("%s: %s\n", webhook.HeaderSignature, webhook.Sign(secret, body))
			fmt.Printf("%s: %s\n", webhook.HeaderTimestamp, timestamp)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "shared webhook secret (defaults to WEBHOOK_SECRET)")
	return cmd
}

func resolveSecret(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if s := os.Getenv("WEBHOOK_SECRET"); s != "" {
		return s, nil
	}
	return "", fmt.Errorf("no secret: pass --secret or set WEBHOOK_SECRET")
}
