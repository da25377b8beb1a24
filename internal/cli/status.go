package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/waabox/cplog/internal/domain"
	"github.com/waabox/cplog/internal/tui"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func (a *app) statusCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "status [pipeline]",
		Short: "Show the result of the pipeline's current run",
		Long: `Show the result of the pipeline's current run.

The run is FAILURE when any stage's latest execution failed, SUCCESS
otherwise. The run id is the execution id of the last stage.

Examples:
  cplog status deploy-api
  cplog status -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(output); err != nil {
				return err
			}
			reader, name, err := a.reader(cmd, args)
			if err != nil {
				return err
			}
			status, err := reader.JobMeta(cmd.Context(), name)
			if err != nil {
				return err
			}
			return writeStatus(cmd.OutOrStdout(), status, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format (text, json, yaml)")
	return cmd
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q: use text, json or yaml", format)
	}
}

func writeStatus(w io.Writer, status domain.PipelineRunStatus, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(status); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeStatusText(w, status)
	}
}

func writeStatusText(w io.Writer, status domain.PipelineRunStatus) error {
	if _, err := fmt.Fprintf(w, "Pipeline:  %s (version %d)\nRun:       %s (%s)\nResult:    %s\nStages:\n",
		status.PipelineName, status.PipelineVersion,
		status.DisplayName, status.RunID,
		tui.RenderResult(status.Result)); err != nil {
		return err
	}
	for _, stage := range status.Stages {
		var execStatus string
		if stage.LatestExecution != nil {
			execStatus = stage.LatestExecution.Status
		}
		if _, err := fmt.Fprintf(w, "  %-25s %s\n", stage.StageName, tui.RenderStageStatus(execStatus)); err != nil {
			return err
		}
	}
	return nil
}
