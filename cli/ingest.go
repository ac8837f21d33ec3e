package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/intakehq/intake/engine/core"
	"github.com/intakehq/intake/engine/ingest"
)

func IngestCmd() *cobra.Command {
	var projectID, assigneeID, sectionID string
	cmd := &cobra.Command{
		Use:   "ingest [text...]",
		Short: "Turn a free-text request into a tracker task",
		Long: "Extracts a task from the given text, resolves project, assignee, and " +
			"section names, and creates the task. When a name is ambiguous the " +
			"command prints the candidates; rerun with --project-id/--assignee-id/" +
			"--section-id to confirm a choice.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close(ctx)

			outcome, err := app.orchestrator().ResolveAndCreate(ctx, &ingest.Request{
				Text: strings.Join(args, " "),
				Confirmed: ingest.ConfirmedIDs{
					ProjectID:  core.ID(projectID),
					AssigneeID: core.ID(assigneeID),
					SectionID:  core.ID(sectionID),
				},
			})
			if err != nil {
				return err
			}
			return printJSON(outcome)
		},
	}
	cmd.Flags().StringVar(&projectID, "project-id", "", "confirmed project ID from a previous run")
	cmd.Flags().StringVar(&assigneeID, "assignee-id", "", "confirmed assignee ID from a previous run")
	cmd.Flags().StringVar(&sectionID, "section-id", "", "confirmed section ID from a previous run")
	return cmd
}
