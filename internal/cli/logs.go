package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) logsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs [pipeline]",
		Short: "Print the latest build logs of every CodeBuild project in the pipeline",
		Long: `Print the latest build logs of every CodeBuild project in the pipeline.

Projects appear in the order their actions are declared. A project
referenced by several actions appears once per reference. The command
fails if any project has no builds or its log stream is missing.

Examples:
  cplog logs deploy-api
  cplog logs --max-log-pages 20 > build.log`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, name, err := a.reader(cmd, args)
			if err != nil {
				return err
			}
			report, err := reader.JobLog(cmd.Context(), name)
			if err != nil {
				return err
			}
			if report == "" {
				a.logger.Info("pipeline references no build projects", "pipeline", name)
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), report)
			return err
		},
	}
}
