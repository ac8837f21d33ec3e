package cli

import (
	"github.com/spf13/cobra"

	"github.com/intakehq/intake/engine/sync"
)

func SyncCmd() *cobra.Command {
	var workspaceID string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror tracker projects, users, and sections into the entity store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close(ctx)

			if workspaceID == "" {
				workspaceID = app.cfg.Tracker.WorkspaceID
			}
			stats, err := sync.NewSyncer(app.tracker, app.entities).SyncAll(ctx, workspaceID)
			if err != nil {
				return err
			}
			return printJSON(stats)
		},
	}
	cmd.Flags().StringVar(&workspaceID, "workspace", "", "tracker workspace ID (defaults to the configured one)")
	return cmd
}
