package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csheth/dumpling/internal/paper"
)

type addOptions struct {
	Title       string
	Year        int
	Description string
	Bibtex      string
	DocName     string
	Journal     string
	Authors     []string
	Tags        []string
}

func (o *addOptions) paper() (paper.Paper, error) {
	if strings.TrimSpace(o.Title) == "" {
		return paper.Paper{}, errors.New("a title is required")
	}
	p := paper.New(strings.TrimSpace(o.Title), o.Year, o.Authors, o.Tags)
	p.Description = o.Description
	p.Bibtex = o.Bibtex
	p.DocName = o.DocName
	p.Journal = o.Journal
	return p, nil
}

func addAdd(topLevel *cobra.Command) {
	ao := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "write a new entry",
		Example: `
dumpling add --title "Attention Is All You Need" --year 2017 \
  --author "Ashish Vaswani" --author "Noam Shazeer" --tag nlp --doc vaswani2017.pdf
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ao.paper()
			if err != nil {
				return err
			}
			env, err := setup()
			if err != nil {
				return err
			}
			defer env.close()

			path, err := env.store.Write(p)
			if err != nil {
				return err
			}
			env.log.WithField("path", path).Info("commands: added entry")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	cmd.Flags().StringVar(&ao.Title, "title", "", "paper title")
	cmd.Flags().IntVar(&ao.Year, "year", 0, "publication year")
	cmd.Flags().StringVar(&ao.Description, "desc", "", "short description")
	cmd.Flags().StringVar(&ao.Bibtex, "bibtex", "", "bibtex record copied by the browser")
	cmd.Flags().StringVar(&ao.DocName, "doc", "", "PDF file name inside pdf_dir")
	cmd.Flags().StringVar(&ao.Journal, "journal", "", "publishing journal")
	cmd.Flags().StringArrayVar(&ao.Authors, "author", nil, "author name, repeatable")
	cmd.Flags().StringArrayVar(&ao.Tags, "tag", nil, "tag label, repeatable")
	_ = cmd.MarkFlagRequired("title")

	topLevel.AddCommand(cmd)
}
