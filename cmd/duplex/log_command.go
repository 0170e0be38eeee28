package main

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"duplex/internal/ledger"
)

func newLogCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var limit int
	var csvOut bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the per-file run log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			led, err := ledger.Open(cfg)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer led.Close()

			entries, err := led.RunLog(cmd.Context(), ledger.RunLogQuery{RunID: runID, Limit: limit})
			if err != nil {
				return fmt.Errorf("read run log: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Run log is empty")
				return nil
			}

			if csvOut {
				writer := csv.NewWriter(out)
				if err := writer.Write([]string{"run_id", "file", "outcome", "reason", "pages", "size_bytes", "duration_ms", "created_at"}); err != nil {
					return err
				}
				for _, entry := range entries {
					record := []string{
						entry.RunID,
						entry.File,
						string(entry.Outcome),
						entry.Reason,
						strconv.Itoa(entry.Pages),
						strconv.FormatInt(entry.SizeBytes, 10),
						strconv.FormatInt(entry.Duration.Milliseconds(), 10),
						entry.CreatedAt.UTC().Format(time.RFC3339),
					}
					if err := writer.Write(record); err != nil {
						return err
					}
				}
				writer.Flush()
				return writer.Error()
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					shortRunID(entry.RunID),
					entry.File,
					string(entry.Outcome),
					strconv.Itoa(entry.Pages),
					entry.Duration.Truncate(time.Millisecond).String(),
					entry.Reason,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]column{
					{title: "Time"},
					{title: "Run"},
					{title: "File"},
					{title: "Outcome"},
					{title: "Pages", numeric: true},
					{title: "Duration", numeric: true},
					{title: "Reason"},
				},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Only show entries for the given run id")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to show (0 for all)")
	cmd.Flags().BoolVar(&csvOut, "csv", false, "Emit CSV instead of a table")
	return cmd
}

func shortRunID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}
