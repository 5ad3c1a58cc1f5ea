package commands

import (
	"github.com/spf13/cobra"

	"github.com/csheth/dumpling/internal/listing"
)

func addTags(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "list every tag and how many entries carry it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup()
			if err != nil {
				return err
			}
			defer env.close()

			papers, err := env.store.All(cmd.Context())
			if err != nil {
				return err
			}
			listing.PrintTags(cmd.OutOrStdout(), listing.CountTags(papers))
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
