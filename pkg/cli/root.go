// Package cli implements the taskboard command line.
package cli

import (
	"fmt"
	"os"

	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/logger"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	// cfg is loaded in the pre-run hook unless preset.
	cfg *config.Config
	log *logger.Logger

	backend  string
	dataDir  string
	calendar string
	verbose  bool
}

// NewRootCommand builds the command tree. A nil cfg means config.Load is
// called before each command.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:   "taskboard",
		Short: "taskboard - a small personal task board",
		Long: `taskboard keeps a list of tasks grouped by status (in progress, pending,
completed) in a local store. Changes can optionally be mirrored to a
Google Calendar.`,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&a.backend, "backend", "", "Storage backend: file, sqlite, memory")
	rootCmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "Directory holding the task store")
	rootCmd.PersistentFlags().StringVar(&a.calendar, "calendar", "", "Google Calendar to mirror tasks into")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newAddCmd(a),
		newEditCmd(a),
		newRmCmd(a),
		newLsCmd(a),
		newShowCmd(a),
		newImportCmd(a),
		newAuthCmd(a),
		newSyncCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.backend != "" {
		a.cfg.Backend = a.backend
	}
	if a.dataDir != "" {
		a.cfg.DataDir = a.dataDir
	}
	if a.calendar != "" {
		a.cfg.Calendar = a.calendar
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	level := a.cfg.LogLevel
	if a.verbose {
		level = "DEBUG"
	}
	a.log = logger.New(
		logger.WithLevel(level),
		logger.WithFormat(a.cfg.LogFormat),
		logger.WithOutput(cmd.ErrOrStderr()),
	)
	return nil
}

// Execute runs the root command against os.Args.
func Execute(version string) error {
	rootCmd := NewRootCommand(nil)
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
