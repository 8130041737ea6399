package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/tusk/internal/build"
	"go.trai.ch/tusk/internal/core/domain"
)

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmdo := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(cmdo, "tusk version %s (commit: %s, date: %s, artifact format: v%d)\n",
				build.Version, build.Commit, build.Date, domain.FormatVersion)
		},
	}
}
