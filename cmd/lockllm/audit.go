package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lockllm/lockllm-go/pkg/audit"
	"github.com/lockllm/lockllm-go/pkg/cli"
)

var auditFlags struct {
	db        string
	timeRange string
	outcome   string
	mode      string
	limit     int
	format    string

	retentionDays int
	maxRecords    int64
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the local audit trail",
	Long: `Query and prune locally recorded scan outcomes.

Every scan the client performs can be recorded to a local SQLite audit
trail. These subcommands query and prune that database.

Examples:
  # Show the last 50 records
  lockllm audit query --db data/audit.db

  # Only flagged scans in a time range
  lockllm audit query --db data/audit.db --outcome flagged \
    --time-range "2026-08-01T00:00:00Z/2026-08-30T00:00:00Z"

  # Delete records older than 30 days
  lockllm audit prune --db data/audit.db --retention-days 30`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query audit records",
	RunE:  queryAudit,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old audit records",
	RunE:  pruneAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd)
	auditCmd.AddCommand(auditPruneCmd)

	auditQueryCmd.Flags().StringVar(&auditFlags.db, "db", "data/audit.db", "audit database path")
	auditQueryCmd.Flags().StringVar(&auditFlags.timeRange, "time-range", "", "RFC3339 interval: start/end")
	auditQueryCmd.Flags().StringVar(&auditFlags.outcome, "outcome", "", "filter by outcome: safe, flagged, or an error kind")
	auditQueryCmd.Flags().StringVar(&auditFlags.mode, "mode", "", "filter by scan mode")
	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", 50, "maximum records to return")
	auditQueryCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json, csv")

	auditPruneCmd.Flags().StringVar(&auditFlags.db, "db", "data/audit.db", "audit database path")
	auditPruneCmd.Flags().IntVar(&auditFlags.retentionDays, "retention-days", 90, "delete records older than this")
	auditPruneCmd.Flags().Int64Var(&auditFlags.maxRecords, "max-records", 0, "keep at most this many records (0 = unlimited)")
}

func openAuditStorage() (audit.Storage, error) {
	cfg := audit.DefaultSQLiteConfig()
	cfg.Path = auditFlags.db
	store, err := audit.NewSQLiteStorage(cfg)
	if err != nil {
		return nil, cli.NewCommandError("audit", fmt.Errorf("failed to open audit database: %w", err))
	}
	return store, nil
}

func queryAudit(cmd *cobra.Command, args []string) error {
	store, err := openAuditStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	query := &audit.Query{
		Outcome: auditFlags.outcome,
		Mode:    auditFlags.mode,
		Limit:   auditFlags.limit,
	}

	if auditFlags.timeRange != "" {
		parts := strings.Split(auditFlags.timeRange, "/")
		if len(parts) != 2 {
			return fmt.Errorf("invalid time range format (expected: start/end)")
		}
		start, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
		end, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return fmt.Errorf("invalid end time: %w", err)
		}
		query.StartTime = &start
		query.EndTime = &end
	}

	records, err := store.Query(context.Background(), query)
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}

	switch auditFlags.format {
	case "json":
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, records)
	case "csv":
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{
				r.ID,
				r.Time.Format(time.RFC3339),
				r.Outcome,
				r.Mode,
				r.Sensitivity,
				fmt.Sprintf("%d", r.InputChars),
				fmt.Sprintf("%d", r.DurationMS),
				r.RequestID,
			})
		}
		formatter := &cli.CSVFormatter{
			Headers: []string{"id", "time", "outcome", "mode", "sensitivity", "input_chars", "duration_ms", "request_id"},
		}
		return formatter.FormatTo(os.Stdout, rows)
	default:
		if len(records) == 0 {
			fmt.Println("no records")
			return nil
		}
		for _, r := range records {
			fmt.Printf("%s  %-12s mode=%-12s chars=%-6d %dms  %s\n",
				r.Time.Format(time.RFC3339), r.Outcome, r.Mode, r.InputChars, r.DurationMS, r.RequestID)
		}
		fmt.Printf("\n%d record(s)\n", len(records))
		return nil
	}
}

func pruneAudit(cmd *cobra.Command, args []string) error {
	store, err := openAuditStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	pruner := audit.NewPruner(store, &audit.RetentionConfig{
		RetentionDays: auditFlags.retentionDays,
		MaxRecords:    auditFlags.maxRecords,
	})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}

	fmt.Printf("deleted %d record(s)\n", deleted)
	return nil
}
