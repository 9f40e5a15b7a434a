package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/drivehr/jobsync/internal/webhook"
	"github.com/spf13/cobra"
)

func sendCmd() *cobra.Command {
	var (
		secret string
		url    string
	)

	cmd := &cobra.Command{
		Use:   "send <payload.json>",
		Short: "Sign a payload file and POST it to a running sync endpoint",
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

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("failed to build request: %w", err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(webhook.HeaderSignature, webhook.Sign(secret, body))
			req.Header.Set(webhook.HeaderTimestamp, strconv.FormatInt(time.Now().Unix(), 10))

			client := &http.Client{Timeout: 60 * time.Second}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer func() {
				_ = resp.Body.Close()
			}()

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}

			fmt.Printf("%s\n%s\n", resp.Status, respBody)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "shared webhook secret (defaults to WEBHOOK_SECRET)")
	cmd.Flags().StringVar(&url, "url", "http://localhost:8080/webhook/drivehr-sync", "webhook endpoint URL")
	return cmd
}
