package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"duplex/internal/config"
	"duplex/internal/document"
	"duplex/internal/logging"
	"duplex/internal/pdfstore"
	"duplex/internal/provenance"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show a document's provenance metadata and geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve file path: %w", err)
			}
			doc, err := document.Snapshot(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			store := pdfstore.New(logging.NewNop())
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "File:  %s\n", doc.Path)
			fmt.Fprintf(out, "Size:  %d bytes\n", doc.SizeBytes)

			pages, err := store.PageCount(cmd.Context(), doc.Path)
			if err != nil {
				fmt.Fprintf(out, "Pages: unreadable (%v)\n", err)
			} else {
				fmt.Fprintf(out, "Pages: %d\n", pages)
			}
			if dims, err := store.PageDims(cmd.Context(), doc.Path); err == nil && len(dims) > 0 {
				fmt.Fprintf(out, "Page 1: %.1f x %.1f pt\n", dims[0].Width, dims[0].Height)
			}

			meta, err := provenance.ReadMetadata(cmd.Context(), store, doc.Path)
			if err != nil {
				return fmt.Errorf("read provenance metadata: %w", err)
			}
			if meta == nil {
				fmt.Fprintln(out, "Provenance: none")
				return nil
			}
			fmt.Fprintf(out, "Provenance: %s (run %s)\n", meta.Status, meta.RunTimeUTC)
			if meta.Model != "" {
				fmt.Fprintf(out, "Model: %s\n", meta.Model)
			}
			if meta.GapPt > 0 {
				fmt.Fprintf(out, "Gap: %.1f pt\n", meta.GapPt)
			}
			if len(meta.SourcePageSizes) > 0 {
				fmt.Fprintf(out, "Source pages: %d\n", len(meta.SourcePageSizes))
			}
			return nil
		},
	}
}
