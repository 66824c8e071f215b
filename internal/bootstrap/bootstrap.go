// Package bootstrap assembles a commit session from parsed flags: it
// layers the configuration, constructs the pipeline collaborators and
// picks the prompter. The cmd layer stays thin and untestable code stays
// out of here.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/chmouel/lazycommit/internal/cache"
	"github.com/chmouel/lazycommit/internal/cli"
	"github.com/chmouel/lazycommit/internal/config"
	"github.com/chmouel/lazycommit/internal/git"
	"github.com/chmouel/lazycommit/internal/grouping"
	"github.com/chmouel/lazycommit/internal/llm"
	"github.com/chmouel/lazycommit/internal/log"
	"github.com/chmouel/lazycommit/internal/models"
	"github.com/chmouel/lazycommit/internal/payload"
	"github.com/chmouel/lazycommit/internal/pipeline"
	"github.com/chmouel/lazycommit/internal/theme"
	"github.com/chmouel/lazycommit/internal/ui"
	"github.com/chmouel/lazycommit/internal/utils"
)

// Session is one wired pipeline run: the git collaborator, the assembled
// orchestrator and the settings they were built from.
type Session struct {
	Git    *git.Service
	Orch   *pipeline.Orchestrator
	Config *config.AppConfig
	Root   string
}

// ResolveConfig loads and layers the configuration for one invocation:
// defaults, config file, repository git config (lc.*), environment, CLI
// flags. It returns the effective config and the config file path it came
// from. A missing file is fine; a malformed one is not.
func ResolveConfig(explicitFile, repoRoot string, flags config.FlagOverrides) (*config.AppConfig, string, error) {
	path, err := config.Path(explicitFile)
	if err != nil {
		return nil, "", err
	}
	fileCfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	overlay, err := config.LoadGitOverlay(repoRoot)
	if err != nil {
		log.Printf("bootstrap: git config overlay skipped: %v", err)
	}
	cfg := config.Resolve(config.EnvironmentFromOS(), fileCfg, overlay, flags)
	return &cfg, path, nil
}

// NewSession wires the pipeline for one invocation. opts carries the
// flag-only settings; the config-derived fields (model, base URL,
// language, diff budget) are filled in here after resolution. The
// missing-key check runs before anything touches the working tree.
func NewSession(ctx context.Context, explicitConfig string, flags config.FlagOverrides, opts models.CommitOptions, plain bool) (*Session, error) {
	if err := git.Available(); err != nil {
		return nil, err
	}

	gitSvc := git.NewService("")
	root, err := gitSvc.RepoRoot(ctx)
	if err != nil {
		return nil, err
	}

	cfg, cfgPath, err := ResolveConfig(explicitConfig, root, flags)
	if err != nil {
		return nil, err
	}
	SetupDebugLog(flags.DebugLog, cfg.DebugLog)
	if cfg.APIKey == "" {
		return nil, &config.MissingKeyError{ConfigPath: cfgPath}
	}

	opts.Model = cfg.Model
	opts.BaseURL = cfg.BaseURL
	opts.Language = cfg.Language
	opts.MaxDiffChars = cfg.MaxDiffChars

	hints, err := config.LoadRepoHints(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	var extraIgnores []string
	if hints != nil {
		extraIgnores = hints.Ignore
	}

	gitDir, err := gitSvc.GitDir(ctx)
	if err != nil {
		return nil, err
	}

	client := llm.NewClient(llm.Options{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Policy:  cfg.Retry,
	})
	grouper := grouping.NewGrouper(client, warnToStderr)
	grouper.ForceBatch = opts.Batch

	orch := &pipeline.Orchestrator{
		Git:       gitSvc,
		Assembler: payload.NewAssembler(gitSvc, extraIgnores),
		Cache:     cache.New(gitDir),
		Generator: llm.NewGenerator(client, cfg.Language),
		Grouper:   grouper,
		Prompter:  NewPrompterFor(cfg, plain, opts.Auto),
		Hints:     hints,
		Opts:      opts,
	}

	return &Session{Git: gitSvc, Orch: orch, Config: cfg, Root: root}, nil
}

// NewPrompterFor picks the prompter implementation: the TUI on a
// terminal, the stdio fallback for pipes and for --plain or --auto runs.
func NewPrompterFor(cfg *config.AppConfig, plain, auto bool) pipeline.Prompter {
	if plain || auto || !interactiveTerminal() {
		return cli.NewStdioPrompter()
	}
	return ui.NewPrompter(theme.GetTheme(cfg.Theme), cfg.IconsEnabled())
}

// isTerminal is a package var so tests can fake a TTY.
var isTerminal = func(fd uintptr) bool { return term.IsTerminal(int(fd)) }

func interactiveTerminal() bool {
	return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
}

// SetupDebugLog routes debug logging to the flag path when given, the
// configured path otherwise, and discards buffered lines when neither is
// set. Safe to call again once the config is known; the file opens in
// append mode.
func SetupDebugLog(flagPath, configPath string) {
	path := flagPath
	if path == "" {
		path = configPath
	}
	if path == "" {
		_ = log.SetFile("")
		return
	}
	if expanded, err := utils.ExpandPath(path); err == nil {
		path = expanded
	}
	if err := log.SetFile(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening debug log file %q: %v\n", path, err)
	}
}

func warnToStderr(msg string) {
	fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
}
