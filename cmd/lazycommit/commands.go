// Package main provides CLI command definitions for lazycommit.
package main

import (
	"context"
	"fmt"
	"os"

	urfavecli "github.com/urfave/cli/v3"

	"github.com/chmouel/lazycommit/internal/bootstrap"
	"github.com/chmouel/lazycommit/internal/cache"
	"github.com/chmouel/lazycommit/internal/cli"
	"github.com/chmouel/lazycommit/internal/config"
	"github.com/chmouel/lazycommit/internal/git"
	"github.com/chmouel/lazycommit/internal/models"
	"github.com/chmouel/lazycommit/internal/watch"
)

// Swappable in tests.
var (
	newSessionFunc  = bootstrap.NewSession
	newInitPrompter = cli.NewStdioPrompter
)

// commitOptionsFrom extracts the flag-only session options. The
// config-derived fields are filled by bootstrap.NewSession after
// resolution.
func commitOptionsFrom(cmd *urfavecli.Command) models.CommitOptions {
	return models.CommitOptions{
		Mode:   cmd.String("mode"),
		Scope:  cmd.String("scope"),
		DryRun: cmd.Bool("dry-run"),
		Auto:   cmd.Bool("auto") || cmd.Bool("watch"),
		Batch:  cmd.Bool("batch"),
		Hunks:  cmd.Bool("hunks"),
		Amend:  cmd.Bool("amend"),
	}
}

func flagOverridesFrom(cmd *urfavecli.Command) config.FlagOverrides {
	return config.FlagOverrides{
		Model:        cmd.String("model"),
		MaxDiffChars: cmd.Int("max-diff-chars"),
		Theme:        cmd.String("theme"),
		DebugLog:     cmd.String("debug-log"),
	}
}

// runCommit is the default action: one commit session, or the watch loop.
func runCommit(ctx context.Context, cmd *urfavecli.Command) error {
	bootstrap.SetupDebugLog(cmd.String("debug-log"), "")

	if mode := cmd.String("mode"); !bootstrap.ValidMode(mode) {
		return fmt.Errorf("unknown mode %q (expected single, manual or ai)", mode)
	}
	if cmd.Bool("amend") && cmd.Bool("watch") {
		return fmt.Errorf("--amend and --watch are mutually exclusive")
	}

	sess, err := newSessionFunc(ctx, cmd.String("config-file"), flagOverridesFrom(cmd), commitOptionsFrom(cmd), cmd.Bool("plain"))
	if err != nil {
		return err
	}

	if cmd.Bool("watch") {
		return runWatch(ctx, sess)
	}
	return sess.Orch.Run(ctx)
}

// runWatch keeps committing as the worktree changes until interrupted.
func runWatch(ctx context.Context, sess *bootstrap.Session) error {
	w, err := watch.New(sess.Root)
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Fprintln(os.Stderr, "Watching for changes; press Ctrl+C to stop.")
	return w.Run(ctx, sess.Orch.Run, func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	})
}

// initCommand returns the init subcommand definition.
func initCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "init",
		Usage: "Create the configuration file interactively",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing configuration file",
			},
		},
		Action: runInit,
	}
}

// runInit asks for the handful of settings a first run needs and writes
// the config file. Empty answers keep the shown defaults.
func runInit(_ context.Context, cmd *urfavecli.Command) error {
	path, err := config.Path(cmd.String("config-file"))
	if err != nil {
		return err
	}

	p := newInitPrompter()
	cfg := config.DefaultConfig()

	key, err := p.Input("API key", "")
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("an API key is required")
	}
	cfg.APIKey = key

	if cfg.Model, err = p.Input("Model", config.DefaultModel); err != nil {
		return err
	}
	if cfg.BaseURL, err = p.Input("Base URL", config.DefaultBaseURL); err != nil {
		return err
	}
	if cfg.Language, err = p.Input("Message language (empty keeps English)", ""); err != nil {
		return err
	}

	if err := config.Save(cfg, path, cmd.Bool("force")); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// cacheCommand returns the cache subcommand definition.
func cacheCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the message cache",
		Commands: []*urfavecli.Command{
			{
				Name:  "clear",
				Usage: "Remove every cached message for this repository",
				Action: func(ctx context.Context, _ *urfavecli.Command) error {
					c, err := repoCache(ctx)
					if err != nil {
						return err
					}
					n, err := c.Clear()
					if err != nil {
						return err
					}
					fmt.Printf("Removed %d cached message(s).\n", n)
					return nil
				},
			},
			{
				Name:  "path",
				Usage: "Print the cache directory for this repository",
				Action: func(ctx context.Context, _ *urfavecli.Command) error {
					c, err := repoCache(ctx)
					if err != nil {
						return err
					}
					fmt.Println(c.Dir())
					return nil
				},
			},
		},
	}
}

// repoCache locates the cache of the repository containing the cwd.
func repoCache(ctx context.Context) (*cache.ContentCache, error) {
	if err := git.Available(); err != nil {
		return nil, err
	}
	gitDir, err := git.NewService("").GitDir(ctx)
	if err != nil {
		return nil, err
	}
	return cache.New(gitDir), nil
}
