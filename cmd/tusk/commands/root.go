// Package commands implements the CLI commands for tusk.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/tusk/internal/app"
	"go.trai.ch/tusk/internal/build"
	"go.trai.ch/tusk/internal/core/domain"
)

// CLI represents the command line interface for tusk.
type CLI struct {
	app       Application
	rootCmd   *cobra.Command
	logFormat func(flag string)
}

// Application represents the application logic interface.
type Application interface {
	Compile(ctx context.Context, args []string, force bool, run app.RunOptions) (*app.Report, error)
	Load(ctx context.Context, source string, run app.RunOptions) (*app.Loaded, error)
	Get(ctx context.Context, source, key string, fallback *domain.Value, run app.RunOptions) (domain.Value, error)
	Watch(ctx context.Context, root string, opts app.WatchOptions) error
	CleanCache(ctx context.Context) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "tusk",
		Short:         "Compile .tsk configuration into fast-loading binary artifacts",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringP("compression", "c", "", "Payload codec for new artifacts (none, lz4, zstd)")
	flags.IntP("jobs", "j", 0, "Maximum number of files processed in parallel")
	flags.Bool("memory-only", false, "Do not read or write the on-disk AST cache")
	flags.String("log-format", "auto", "Log format (auto, pretty, json)")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if c.logFormat != nil {
			format, _ := cmd.Flags().GetString("log-format")
			c.logFormat(format)
		}
	}

	rootCmd.AddCommand(c.newCompileCmd())
	rootCmd.AddCommand(c.newBatchCmd())
	rootCmd.AddCommand(c.newLoadCmd())
	rootCmd.AddCommand(c.newGetCmd())
	rootCmd.AddCommand(c.newStatsCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// OnLogFormat registers fn to receive the --log-format flag before any
// command runs.
func (c *CLI) OnLogFormat(fn func(flag string)) {
	c.logFormat = fn
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// runOptions reads the persistent flags shared by every engine command.
func runOptions(cmd *cobra.Command) app.RunOptions {
	compression, _ := cmd.Flags().GetString("compression")
	jobs, _ := cmd.Flags().GetInt("jobs")
	memoryOnly, _ := cmd.Flags().GetBool("memory-only")
	return app.RunOptions{
		Compression: compression,
		Parallel:    jobs,
		MemoryOnly:  memoryOnly,
	}
}
