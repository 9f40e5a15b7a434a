package main

import (
	"fmt"
	"os"

	"github.com/drivehr/jobsync/internal/reconcile"
	"github.com/drivehr/jobsync/internal/store"
	"github.com/spf13/cobra"

	go_json "github.com/goccy/go-json"
)

// replayCmd applies a payload file against a local SQLite store, useful
// for inspecting what a batch would do without a running service.
func replayCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "replay <payload.json>",
		Short: "Reconcile a payload file against a local SQLite store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read payload file: %w", err)
			}

			var payload struct {
				Jobs []go_json.RawMessage `json:"jobs"`
			}
			if err := go_json.Unmarshal(body, &payload); err != nil {
				return fmt.Errorf("payload is not valid JSON: %w", err)
			}

			st, err := store.OpenSQLite(dbPath)
			if err != nil {
				return err
			}
			defer func() {
				_ = st.Close()
			}()

			engine := reconcile.New(st, "replay")
			result, err := engine.Reconcile(cmd.Context(), payload.Jobs)
			if err != nil {
				return fmt.Errorf("reconciliation failed: %w", err)
			}

			out, err := go_json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal result: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "jobsync.db", "path to the local SQLite database")
	return cmd
}
