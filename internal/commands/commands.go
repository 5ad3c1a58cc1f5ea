// Package commands builds the dumpling command tree.
package commands

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/csheth/dumpling/internal/config"
	"github.com/csheth/dumpling/internal/logging"
	"github.com/csheth/dumpling/internal/store"
)

// New returns the root command with every subcommand attached.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:          config.Name,
		Short:        "Browse and curate a bibliography of papers from the terminal.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

// AddCommands attaches the subcommands to topLevel.
func AddCommands(topLevel *cobra.Command) {
	addOpen(topLevel)
	addAdd(topLevel)
	addTags(topLevel)
	addPDFs(topLevel)
	addImport(topLevel)
}

// environment is what every subcommand needs: settings, the entry store and
// a logger writing to the log file.
type environment struct {
	paths  config.Paths
	config config.Config
	store  *store.Store
	log    *logrus.Logger

	logFile io.Closer
}

func setup() (*environment, error) {
	paths, err := config.ResolvePaths()
	if err != nil {
		return nil, err
	}
	cfg, cfgErr := config.Load(paths.ConfigFile)

	logFile, err := logging.Setup(paths.LogFile, cfg.General.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logrus.StandardLogger()
	if cfgErr != nil {
		log.WithError(cfgErr).WithField("path", paths.ConfigFile).Error("commands: config unreadable, using defaults")
	}

	s, err := store.Open(paths.EntryDir, store.WithLogger(log))
	if err != nil {
		_ = logFile.Close()
		return nil, err
	}
	log.WithField("dir", s.Dir()).Debug("commands: entry store ready")
	return &environment{paths: paths, config: cfg, store: s, log: log, logFile: logFile}, nil
}

func (e *environment) close() {
	e.log.SetOutput(os.Stderr)
	_ = e.logFile.Close()
}
