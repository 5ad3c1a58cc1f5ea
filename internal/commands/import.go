package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/csheth/dumpling/internal/arxiv"
	"github.com/csheth/dumpling/internal/listing"
)

// newArxivClient is replaced in tests to point at a local server.
var newArxivClient = arxiv.NewClient

type importOptions struct {
	Tags  []string
	NoPDF bool
}

func addImport(topLevel *cobra.Command) {
	im := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import <arxiv-id|url>",
		Short: "create an entry from arXiv metadata and download its PDF",
		Example: `
dumpling import 1706.03762 --tag nlp
dumpling import https://arxiv.org/abs/2101.00001 --no-pdf
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup()
			if err != nil {
				return err
			}
			defer env.close()
			ctx := cmd.Context()
			log := env.log.WithField("input", args[0])

			client := newArxivClient()
			record, err := client.Lookup(ctx, args[0])
			if err != nil {
				log.WithError(err).Warn("commands: arxiv lookup failed")
				return err
			}

			docName := ""
			if !im.NoPDF {
				dir, err := env.config.ResolvedPDFDir()
				if err != nil {
					return fmt.Errorf("resolve pdf_dir: %w", err)
				}
				downloader, err := arxiv.NewDownloader(dir, client.HTTP)
				if err != nil {
					return err
				}
				path, err := downloader.Fetch(ctx, record.PDFURL, record.DocName())
				if err != nil {
					log.WithError(err).Warn("commands: pdf download failed")
					return err
				}
				if err := listing.CheckPDF(path); err != nil {
					_ = os.Remove(path)
					log.WithError(err).WithField("path", path).Warn("commands: downloaded pdf unreadable")
					return fmt.Errorf("downloaded PDF cannot be read: %w", err)
				}
				docName = record.DocName()
			}

			path, err := env.store.Write(record.Paper(im.Tags, docName))
			if err != nil {
				return err
			}
			log.WithField("path", path).Info("commands: imported entry")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", record.Title, path)
			return err
		},
	}

	cmd.Flags().StringArrayVar(&im.Tags, "tag", nil, "tag label, repeatable")
	cmd.Flags().BoolVar(&im.NoPDF, "no-pdf", false, "skip downloading the PDF")

	topLevel.AddCommand(cmd)
}
