package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/csheth/dumpling/internal/listing"
)

func addPDFs(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "pdfs",
		Short: "check entries against the PDF directory",
		Long: `Report PDFs that entries reference but that do not exist, PDFs in the
directory that no entry references, and referenced PDFs that cannot be read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup()
			if err != nil {
				return err
			}
			defer env.close()

			dir, err := env.config.ResolvedPDFDir()
			if err != nil {
				return fmt.Errorf("resolve pdf_dir: %w", err)
			}
			papers, err := env.store.All(cmd.Context())
			if err != nil {
				return err
			}
			report, err := listing.DiagnosePDFs(papers, dir)
			if err != nil {
				return err
			}
			env.log.WithField("dir", dir).WithField("healthy", report.Healthy()).Info("commands: pdf diagnostic")
			listing.PrintPDFReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
