package cli

import (
	"github.com/spf13/cobra"

	"github.com/waabox/cplog/internal/tui"
)

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [pipeline]",
		Short: "Open an auto-refreshing terminal view of the pipeline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, name, err := a.reader(cmd, args)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), reader, name)
		},
	}
}
