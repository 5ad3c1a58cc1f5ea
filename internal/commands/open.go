package commands

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/csheth/dumpling/internal/loader"
	"github.com/csheth/dumpling/internal/session"
	"github.com/csheth/dumpling/internal/tui"
)

type openOptions struct {
	FilterTag   string
	NoAltScreen bool
}

func addOpen(topLevel *cobra.Command) {
	oo := &openOptions{}

	cmd := &cobra.Command{
		Use:   "open",
		Short: "browse entries in the terminal interface",
		Example: `
dumpling open
dumpling open --filter-tag ml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup()
			if err != nil {
				return err
			}
			defer env.close()

			index, err := env.store.Scan(cmd.Context(), oo.FilterTag)
			if err != nil {
				return err
			}
			capacity := env.config.General.LoadSize
			if capacity <= 0 {
				capacity = tui.TerminalCapacity()
			}
			env.log.WithField("entries", len(index)).WithField("capacity", capacity).Info("commands: opening browser")

			opts := []tea.ProgramOption{}
			if !oo.NoAltScreen {
				opts = append(opts, tea.WithAltScreen())
			}
			err = tui.Run(tui.Config{
				Loader: loader.New(capacity, index, env.store, loader.WithLogger(env.log)),
				Commands: session.Commands{
					Editor: env.config.General.EditorCommand,
					Viewer: env.config.General.PDFViewer,
					PDFDir: env.config.General.PDFDir,
				},
				Settings: env.config,
				Log:      env.log,
			}, opts...)
			if err != nil {
				env.log.WithError(err).Error("commands: browser stopped")
			}
			return err
		},
	}

	cmd.Flags().StringVar(&oo.FilterTag, "filter-tag", "", "only list entries carrying this tag")
	cmd.Flags().BoolVar(&oo.NoAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")

	topLevel.AddCommand(cmd)
}
