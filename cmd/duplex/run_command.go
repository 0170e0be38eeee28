package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"duplex/internal/batch"
	"duplex/internal/deps"
	"duplex/internal/ledger"
	"duplex/internal/logging"
	"duplex/internal/merge"
	"duplex/internal/pdfstore"
	"duplex/internal/provenance"
	"duplex/internal/services/pdf2zh"
	"duplex/internal/services/vlm"
	"duplex/internal/skiprule"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan the library and translate every eligible document",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			statuses := deps.CheckBinaries(deps.ForConfig(cfg))
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required binary %q: %s", missing[0].Command, missing[0].Detail)
			}
			for _, status := range statuses {
				if !status.Available {
					logger.Warn("optional binary unavailable",
						"name", status.Name,
						"command", status.Command,
						"detail", status.Detail)
				}
			}

			led, err := ledger.Open(cfg)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer led.Close()

			store := pdfstore.New(logger)
			prober := vlm.NewProber(
				vlm.NewClient(cfg.Probe),
				vlm.NewPopplerRenderer(cfg.Probe.RendererBinary, cfg.Probe.DPI),
				cfg.Probe,
				logger,
			)
			pipeline := batch.Deps{
				Store:      store,
				Decider:    skiprule.NewEngine(cfg, store, prober, logger),
				Translator: pdf2zh.NewInvoker(pdf2zh.NewCLI(cfg.Engine), cfg, logger),
				Merger:     merge.NewEngine(store, cfg.Merge.GapPt, logger),
				Embedder:   provenance.NewEmbedder(store, logger),
				Ledger:     led,
			}
			var opts []batch.Option
			if dryRun {
				opts = append(opts, batch.WithDryRun())
			}
			orchestrator := batch.NewOrchestrator(cfg, pipeline, logger, opts...)

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary, err := orchestrator.Run(runCtx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			verb := "Processed"
			if dryRun {
				verb = "Would process"
			}
			fmt.Fprintf(out, "%s %d files: %d translated, %d skipped, %d failed, %d degraded\n",
				verb, summary.Total, summary.Translated, summary.Skipped, summary.Failed, summary.Degraded)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Evaluate skip decisions without translating or writing anything")
	return cmd
}
