// Package main is the entry point for the tusk configuration compiler.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/tusk/cmd/tusk/commands"
	"go.trai.ch/tusk/internal/adapters/detector"
	"go.trai.ch/tusk/internal/adapters/logger"
	"go.trai.ch/tusk/internal/app"
	"go.trai.ch/tusk/internal/core/domain"
	_ "go.trai.ch/tusk/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stdout, stderr io.Writer,
	provider ComponentProvider,
) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed.
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	defer cleanup()

	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)
	cli.OnLogFormat(func(flag string) {
		l, ok := components.Logger.(*logger.Logger)
		if !ok {
			return
		}
		l.SetOutput(stderr)
		l.SetJSON(detector.ResolveFormat(detector.DetectEnvironment(), flag) == detector.FormatJSON)
	})

	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, domain.ErrBatchFailed) {
			return 1
		}
		components.Logger.Error(err)
		return 1
	}
	return 0
}
