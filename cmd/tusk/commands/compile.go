package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/tusk/internal/ui/output"
)

func (c *CLI) newCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile <file|dir|glob>...",
		Short: "Compile sources into artifacts unconditionally",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.app.Compile(cmd.Context(), args, true, runOptions(cmd))
			if err != nil {
				return err
			}
			return printResults(output.NewPrinter(cmd.OutOrStdout()), rep.Batch)
		},
	}
}

func (c *CLI) newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <file|dir|glob>...",
		Short: "Bring artifacts up to date, compiling only what changed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			rep, err := c.app.Compile(cmd.Context(), args, force, runOptions(cmd))
			if err != nil {
				return err
			}
			p := output.NewPrinter(cmd.OutOrStdout())
			err = printResults(p, rep.Batch)
			printSummary(p, rep.Batch.Stats)
			return err
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Recompile every source")
	return cmd
}
