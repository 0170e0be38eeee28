package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"duplex/internal/config"
	"duplex/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Failure ledger utilities",
	}

	ledgerCmd.AddCommand(newLedgerShowCommand(ctx))
	ledgerCmd.AddCommand(newLedgerResetCommand(ctx))

	return ledgerCmd
}

func newLedgerShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List files with recorded failures",
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

			records, err := led.Failures(cmd.Context())
			if err != nil {
				return fmt.Errorf("read failures: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No recorded failures")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				state := "closed"
				if record.CircuitOpen() {
					state = "open"
				}
				rows = append(rows, []string{
					record.FileKey,
					strconv.Itoa(record.AttemptCount),
					state,
					record.LastReason,
					record.LastTimestamp.Local().Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]column{
					{title: "File"},
					{title: "Attempts", numeric: true},
					{title: "Circuit"},
					{title: "Last Reason"},
					{title: "Last Failure"},
				},
				rows,
			))
			return nil
		},
	}
}

func newLedgerResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <file>",
		Short: "Clear the failure history for a file so it is retried",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			key, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve file path: %w", err)
			}

			led, err := ledger.Open(cfg)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer led.Close()

			removed, err := led.ResetFailures(cmd.Context(), key)
			if err != nil {
				return fmt.Errorf("reset failures: %w", err)
			}
			out := cmd.OutOrStdout()
			if removed == 0 {
				fmt.Fprintf(out, "No failure history for %s\n", key)
				return nil
			}
			fmt.Fprintf(out, "Cleared %d failure events for %s\n", removed, key)
			return nil
		},
	}
}
