package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/intakehq/intake/engine/core"
	"github.com/intakehq/intake/engine/transcript"
)

func TranscriptCmd() *cobra.Command {
	var projectID, file, recording string
	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Process a meeting transcript into tracker tasks",
		Long: "Creates a parent meeting task, one subtask per extracted action item, " +
			"and a deal intelligence task. Reads the transcript from --file or stdin.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, fileName, err := readTranscript(file)
			if err != nil {
				return err
			}
			app, ctx, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close(ctx)

			result, err := app.pipeline().Process(ctx, &transcript.Input{
				ProjectID:      core.ID(projectID),
				TranscriptText: text,
				RecordingLink:  recording,
				FileName:       fileName,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "tracker project ID for the meeting tasks")
	cmd.Flags().StringVar(&file, "file", "", "transcript file (defaults to stdin)")
	cmd.Flags().StringVar(&recording, "recording", "", "recording link to include in the parent task")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func readTranscript(file string) (text, fileName string, err error) {
	if file == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading transcript from stdin: %w", err)
		}
		return string(data), "", nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", "", fmt.Errorf("reading transcript file: %w", err)
	}
	return string(data), filepath.Base(file), nil
}
