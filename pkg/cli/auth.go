package cli

import (
	"fmt"

	"github.com/harrisonrobin/taskboard/pkg/auth"
	"github.com/spf13/cobra"
)

func newAuthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Calendar",
		Long: `Runs the OAuth flow for the agenda mirror. credentials.json from the
Google Cloud console must be in the data directory; the resulting token
is stored next to it. Any existing token is discarded first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flow := auth.Flow{Dir: a.cfg.DataDir, Out: cmd.OutOrStdout(), Log: a.log}
			if err := flow.Reset(); err != nil {
				return err
			}
			if _, err := flow.CalendarService(cmd.Context()); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authentication successful! Token saved to %s\n", auth.TokenFile)
			return nil
		},
	}
}

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push every task to the mirror calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Calendar == "" {
				return fmt.Errorf("no calendar configured; use --calendar or `taskboard config set calendar <name>`")
			}
			b, err := a.openBoard(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer b.Close()

			if err := b.mirror.Sync(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d tasks to %s\n", len(b.store.Tasks()), a.cfg.Calendar)
			return nil
		},
	}
}
