package bootstrap

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chmouel/lazycommit/internal/cli"
	"github.com/chmouel/lazycommit/internal/config"
	"github.com/chmouel/lazycommit/internal/git"
	"github.com/chmouel/lazycommit/internal/grouping"
	"github.com/chmouel/lazycommit/internal/models"
	"github.com/chmouel/lazycommit/internal/ui"
)

// clearConfigEnv blanks every environment variable the resolver reads so
// the surrounding shell cannot leak into assertions.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LAZYCOMMIT_API_KEY", "OPENAI_API_KEY",
		"LAZYCOMMIT_MODEL", "LAZYCOMMIT_BASE_URL", "LAZYCOMMIT_LANGUAGE",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func stubTerminal(t *testing.T, val bool) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(uintptr) bool { return val }
	t.Cleanup(func() { isTerminal = orig })
}

func setupRepo(t *testing.T) string {
	t.Helper()
	if err := git.Available(); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	cmd := exec.Command("git", "-C", dir, "init", "-q")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git init: %v: %s", err, out)
	}
	return dir
}

func TestGlobalFlags(t *testing.T) {
	names := make(map[string]bool)
	for _, flag := range GlobalFlags() {
		names[flag.Names()[0]] = true
	}

	expected := []string{
		"mode", "dry-run", "hunks", "auto", "batch", "model", "scope",
		"max-diff-chars", "amend", "watch", "plain",
		"config-file", "debug-log", "theme",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("expected global flag %q", name)
		}
	}
}

func TestValidMode(t *testing.T) {
	for _, mode := range []string{models.ModeSingle, models.ModeManual, models.ModeAI} {
		if !ValidMode(mode) {
			t.Errorf("ValidMode(%q) = false, want true", mode)
		}
	}
	for _, mode := range []string{"", "AI", "interactive", "none"} {
		if ValidMode(mode) {
			t.Errorf("ValidMode(%q) = true, want false", mode)
		}
	}
}

func TestResolveConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.json")

	cfg, path, err := ResolveConfig(cfgPath, "", config.FlagOverrides{})
	if err != nil {
		t.Fatalf("ResolveConfig() error: %v", err)
	}
	if path != cfgPath {
		t.Errorf("path = %q, want %q", path, cfgPath)
	}
	if cfg.Model != config.DefaultModel {
		t.Errorf("Model = %q, want default %q", cfg.Model, config.DefaultModel)
	}
	if cfg.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.APIKey)
	}
}

func TestResolveConfigPrecedence(t *testing.T) {
	clearConfigEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	writeConfig(t, cfgPath, `{"apiKey": "sk-file", "model": "file-model"}`)

	cfg, _, err := ResolveConfig(cfgPath, "", config.FlagOverrides{})
	if err != nil {
		t.Fatalf("ResolveConfig() error: %v", err)
	}
	if cfg.Model != "file-model" {
		t.Errorf("Model = %q, want file value", cfg.Model)
	}

	t.Setenv("LAZYCOMMIT_MODEL", "env-model")
	cfg, _, err = ResolveConfig(cfgPath, "", config.FlagOverrides{})
	if err != nil {
		t.Fatalf("ResolveConfig() error: %v", err)
	}
	if cfg.Model != "env-model" {
		t.Errorf("Model = %q, want environment to beat the file", cfg.Model)
	}

	cfg, _, err = ResolveConfig(cfgPath, "", config.FlagOverrides{Model: "flag-model"})
	if err != nil {
		t.Fatalf("ResolveConfig() error: %v", err)
	}
	if cfg.Model != "flag-model" {
		t.Errorf("Model = %q, want flag to beat everything", cfg.Model)
	}
}

func TestResolveConfigMalformedFile(t *testing.T) {
	clearConfigEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	writeConfig(t, cfgPath, `{not json`)

	if _, _, err := ResolveConfig(cfgPath, "", config.FlagOverrides{}); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestNewPrompterFor(t *testing.T) {
	cfg := config.DefaultConfig()

	t.Run("tui on a terminal", func(t *testing.T) {
		stubTerminal(t, true)
		if _, ok := NewPrompterFor(cfg, false, false).(*ui.Prompter); !ok {
			t.Error("expected the TUI prompter on a terminal")
		}
	})

	t.Run("plain forces stdio", func(t *testing.T) {
		stubTerminal(t, true)
		if _, ok := NewPrompterFor(cfg, true, false).(*cli.Prompter); !ok {
			t.Error("expected the stdio prompter with --plain")
		}
	})

	t.Run("auto forces stdio", func(t *testing.T) {
		stubTerminal(t, true)
		if _, ok := NewPrompterFor(cfg, false, true).(*cli.Prompter); !ok {
			t.Error("expected the stdio prompter with --auto")
		}
	})

	t.Run("pipe forces stdio", func(t *testing.T) {
		stubTerminal(t, false)
		if _, ok := NewPrompterFor(cfg, false, false).(*cli.Prompter); !ok {
			t.Error("expected the stdio prompter without a terminal")
		}
	})
}

func TestNewSessionMissingKey(t *testing.T) {
	dir := setupRepo(t)
	t.Chdir(dir)
	clearConfigEnv(t)

	cfgPath := filepath.Join(t.TempDir(), "config.json")
	_, err := NewSession(context.Background(), cfgPath, config.FlagOverrides{}, models.CommitOptions{Mode: models.ModeAI}, true)
	if err == nil {
		t.Fatal("expected a missing-key error")
	}
	if !config.IsMissingKey(err) {
		t.Fatalf("error = %v, want missing API key", err)
	}
	if !strings.Contains(err.Error(), cfgPath) {
		t.Errorf("error %q should name the config path %q", err, cfgPath)
	}
}

func TestNewSessionWiresCollaborators(t *testing.T) {
	dir := setupRepo(t)
	t.Chdir(dir)
	clearConfigEnv(t)

	cfgPath := filepath.Join(t.TempDir(), "config.json")
	writeConfig(t, cfgPath, `{"apiKey": "sk-test", "model": "test-model"}`)

	opts := models.CommitOptions{Mode: models.ModeAI, Batch: true}
	sess, err := NewSession(context.Background(), cfgPath, config.FlagOverrides{}, opts, true)
	if err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}

	if sess.Orch == nil || sess.Git == nil {
		t.Fatal("session not fully wired")
	}
	if sess.Orch.Opts.Model != "test-model" {
		t.Errorf("Opts.Model = %q, want the configured model", sess.Orch.Opts.Model)
	}
	if sess.Orch.Opts.MaxDiffChars != config.DefaultMaxDiffChars {
		t.Errorf("Opts.MaxDiffChars = %d, want default %d", sess.Orch.Opts.MaxDiffChars, config.DefaultMaxDiffChars)
	}
	if _, ok := sess.Orch.Prompter.(*cli.Prompter); !ok {
		t.Errorf("prompter = %T, want stdio in plain mode", sess.Orch.Prompter)
	}
	if g, ok := sess.Orch.Grouper.(*grouping.Grouper); !ok || !g.ForceBatch {
		t.Error("batch flag not forwarded to the grouper")
	}

	resolvedRoot, err := filepath.EvalSymlinks(sess.Root)
	if err != nil {
		t.Fatalf("eval root: %v", err)
	}
	resolvedDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("eval dir: %v", err)
	}
	if resolvedRoot != resolvedDir {
		t.Errorf("Root = %q, want %q", resolvedRoot, resolvedDir)
	}
}

func TestNewSessionOutsideRepository(t *testing.T) {
	if err := git.Available(); err != nil {
		t.Skip("git not installed")
	}
	t.Chdir(t.TempDir())
	clearConfigEnv(t)

	cfgPath := filepath.Join(t.TempDir(), "config.json")
	if _, err := NewSession(context.Background(), cfgPath, config.FlagOverrides{}, models.CommitOptions{}, true); err == nil {
		t.Fatal("expected an error outside a repository")
	}
}
