package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/tusk/internal/app"
	"go.trai.ch/tusk/internal/ui/output"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Rebuild artifacts whenever a source or one of its imports changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			debounce, _ := cmd.Flags().GetDuration("debounce")
			p := output.NewPrinter(cmd.OutOrStdout())
			return c.app.Watch(cmd.Context(), root, app.WatchOptions{
				RunOptions: runOptions(cmd),
				Debounce:   debounce,
				OnBatch: func(rep *app.Report) {
					// Failures are printed and watching continues.
					_ = printResults(p, rep.Batch)
				},
			})
		},
	}
	cmd.Flags().Duration("debounce", 0, "Wait this long for changes to settle (default 100ms)")
	return cmd
}
