package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lockllm/lockllm-go/pkg/cli"
	"github.com/lockllm/lockllm-go/pkg/usage"
)

var usageFlags struct {
	db    string
	since time.Duration
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show locally tracked usage",
	Long: `Show request and character totals from the local usage database.

These counters are advisory: the gateway's own accounting is
authoritative for billing.

Examples:
  lockllm usage --db data/usage.db
  lockllm usage --db data/usage.db --since 24h`,
	RunE: showUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.Flags().StringVar(&usageFlags.db, "db", "data/usage.db", "usage database path")
	usageCmd.Flags().DurationVar(&usageFlags.since, "since", 0, "only count samples newer than this (0 = all)")
}

func showUsage(cmd *cobra.Command, args []string) error {
	store, err := usage.NewStore(usageFlags.db)
	if err != nil {
		return cli.NewCommandError("usage", fmt.Errorf("failed to open usage database: %w", err))
	}
	defer store.Close()

	var requests, chars int64
	if usageFlags.since > 0 {
		requests, chars, err = store.TotalsSince(time.Now().Add(-usageFlags.since))
	} else {
		requests, chars, err = store.Totals()
	}
	if err != nil {
		return cli.NewCommandError("usage", err)
	}

	fmt.Printf("requests:    %d\n", requests)
	fmt.Printf("input_chars: %d\n", chars)
	return nil
}
