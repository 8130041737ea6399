package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/tusk/internal/ui/output"
)

func (c *CLI) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file|dir|glob>...",
		Short: "Process sources and report cache, ingestion and timing statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run := runOptions(cmd)
			run.Timings = true
			rep, err := c.app.Compile(cmd.Context(), args, false, run)
			if err != nil {
				return err
			}
			p := output.NewPrinter(cmd.OutOrStdout())
			printSummary(p, rep.Batch.Stats)
			printCache(p, rep.Cache, rep.Ingest)
			printTimings(p, rep.Timings)
			return rep.Batch.Err()
		},
	}
}
