// Package main is the entry point for the lazycommit binary.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	urfavecli "github.com/urfave/cli/v3"

	"github.com/chmouel/lazycommit/internal/bootstrap"
	"github.com/chmouel/lazycommit/internal/buildinfo"
	"github.com/chmouel/lazycommit/internal/log"
)

// Populated by the linker at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	buildinfo.Set(version, commit, date, builtBy)
	buildinfo.Enrich()

	// SIGINT ends the watch loop and aborts in-flight generation calls.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		_ = log.Close()
		os.Exit(1)
	}

	if err := log.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing debug log: %v\n", err)
	}
}

// newRootCommand builds the CLI tree. The default action runs the commit
// pipeline; subcommands cover configuration, cache maintenance and shell
// completions.
func newRootCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  "lazycommit",
		Usage:                 "Generate commit messages for your changes with an LLM",
		Version:               buildinfo.Describe(),
		EnableShellCompletion: true,

		Flags: bootstrap.GlobalFlags(),

		Commands: []*urfavecli.Command{
			initCommand(),
			cacheCommand(),
			completionCommand(),
		},

		Action: runCommit,
	}
}
