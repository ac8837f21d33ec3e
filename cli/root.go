package cli

import (
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "intake",
		Short:         "Turn free-text requests and meeting transcripts into tracker tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		IngestCmd(),
		TranscriptCmd(),
		SyncCmd(),
		MigrateCmd(),
	)
	return root
}
