package bootstrap

import (
	urfavecli "github.com/urfave/cli/v3"

	"github.com/chmouel/lazycommit/internal/models"
)

// GlobalFlags returns all global flags for the application.
// Note: --version is provided automatically by urfave/cli via Command.Version
func GlobalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			Value:   models.ModeAI,
			Usage:   "Grouping mode: single, manual or ai",
		},
		&urfavecli.BoolFlag{
			Name:  "dry-run",
			Usage: "Print would-be messages without staging or committing",
		},
		&urfavecli.BoolFlag{
			Name:  "hunks",
			Usage: "Stage hunks interactively (git add -p) instead of whole files",
		},
		&urfavecli.BoolFlag{
			Name:  "auto",
			Usage: "Accept every generated message without prompting",
		},
		&urfavecli.BoolFlag{
			Name:  "batch",
			Usage: "Force the large-changeset batching path",
		},
		&urfavecli.StringFlag{
			Name:  "model",
			Usage: "Override the generation model",
		},
		&urfavecli.StringFlag{
			Name:  "scope",
			Usage: "Force the conventional-commit scope (bypasses the message cache)",
		},
		&urfavecli.IntFlag{
			Name:  "max-diff-chars",
			Usage: "Character budget for the diff section of the payload",
		},
		&urfavecli.BoolFlag{
			Name:  "amend",
			Usage: "Regenerate the last commit's message instead of committing",
		},
		&urfavecli.BoolFlag{
			Name:  "watch",
			Usage: "Keep running and commit as files change (implies --auto)",
		},
		&urfavecli.BoolFlag{
			Name:  "plain",
			Usage: "Use plain stdio prompts even on a terminal",
		},
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.StringFlag{
			Name:    "theme",
			Aliases: []string{"t"},
			Usage:   "Override the UI theme",
		},
	}
}

// ValidMode reports whether mode names a known grouping mode.
func ValidMode(mode string) bool {
	switch mode {
	case models.ModeSingle, models.ModeManual, models.ModeAI:
		return true
	}
	return false
}
