// Package git wraps the git commands lazycommit relies on.
package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	log "github.com/chmouel/lazycommit/internal/log"
	"github.com/chmouel/lazycommit/internal/models"
)

// LookupPath is used to find executables in PATH. It's exposed as a package
// variable so tests can mock it and avoid depending on system binaries being
// installed.
var LookupPath = exec.LookPath

// Service runs git commands against one working tree. All commands execute
// with `git -C <dir>` so the process cwd never matters.
type Service struct {
	dir  string
	root string // cached RepoRoot result
}

// NewService constructs a Service rooted at dir. The directory may be
// anywhere inside the working tree; RepoRoot resolves the actual top level.
func NewService(dir string) *Service {
	return &Service{dir: dir}
}

// Available reports whether a git binary can be found in PATH.
func Available() error {
	if _, err := LookupPath("git"); err != nil {
		return fmt.Errorf("git not found in PATH: %w", err)
	}
	return nil
}

func (s *Service) cwd() string {
	if s.root != "" {
		return s.root
	}
	return s.dir
}

// run executes a git command and returns its trimmed stdout. Any non-zero
// exit is an error carrying git's stderr.
func (s *Service) run(ctx context.Context, args ...string) (string, error) {
	out, _, err := s.runExit(ctx, []int{0}, args...)
	return out, err
}

// runExit executes a git command treating the listed return codes as
// success. It returns stdout, the exit code, and an error for everything
// else.
func (s *Service) runExit(ctx context.Context, okReturncodes []int, args ...string) (string, int, error) {
	allArgs := append([]string{"-C", s.cwd()}, args...)
	log.Printf("git %s", strings.Join(allArgs, " "))

	// #nosec G204 -- arguments are assembled from internal logic, never shell interpolated
	cmd := exec.CommandContext(ctx, "git", allArgs...)
	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			code := exitError.ExitCode()
			if slices.Contains(okReturncodes, code) {
				return strings.TrimSpace(string(output)), code, nil
			}
			stderr := strings.TrimSpace(string(exitError.Stderr))
			if stderr == "" {
				stderr = fmt.Sprintf("exit %d", code)
			}
			log.Printf("git %s: %s", strings.Join(args, " "), stderr)
			return "", code, fmt.Errorf("git %s: %s", args[0], stderr)
		}
		log.Printf("git %s: %v", strings.Join(args, " "), err)
		return "", -1, fmt.Errorf("git %s: %w", args[0], err)
	}
	return strings.TrimSpace(string(output)), 0, nil
}

// RepoRoot returns the top-level directory of the working tree. The result
// is cached; later commands run from the root so porcelain paths resolve.
func (s *Service) RepoRoot(ctx context.Context) (string, error) {
	if s.root != "" {
		return s.root, nil
	}
	out, err := s.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not inside a git repository: %w", err)
	}
	s.root = out
	return s.root, nil
}

// GitDir returns the repository's git directory as an absolute path.
func (s *Service) GitDir(ctx context.Context) (string, error) {
	out, err := s.run(ctx, "rev-parse", "--git-dir")
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(s.cwd(), out)
	}
	return filepath.Clean(out), nil
}

// Status returns the current changeset from `git status --porcelain`. The
// two-character XY code is preserved; rename entries carry the new path
// with OldPath set to the origin.
func (s *Service) Status(ctx context.Context) ([]models.ChangeEntry, error) {
	out, err := s.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseStatus(out), nil
}

func parseStatus(out string) []models.ChangeEntry {
	var entries []models.ChangeEntry
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		code := line[:2]
		path := line[3:]
		oldPath := ""
		// Renames and copies read "R  old -> new".
		if code[0] == 'R' || code[0] == 'C' {
			if idx := strings.Index(path, " -> "); idx >= 0 {
				oldPath = path[:idx]
				path = path[idx+4:]
			}
		}
		entries = append(entries, models.ChangeEntry{
			Path:    unquotePath(path),
			Status:  code,
			OldPath: unquotePath(oldPath),
		})
	}
	return entries
}

// unquotePath strips the quoting git applies to paths with special
// characters.
func unquotePath(path string) string {
	if len(path) >= 2 && path[0] == '"' && path[len(path)-1] == '"' {
		if unquoted, err := strconv.Unquote(path); err == nil {
			return unquoted
		}
	}
	return path
}

// DiffStat returns `git diff --stat` output for the given paths.
func (s *Service) DiffStat(ctx context.Context, staged bool, paths []string) (string, error) {
	args := []string{"diff"}
	if staged {
		args = append(args, "--cached")
	}
	args = append(args, "--stat", "--no-color")
	args = appendPathspec(args, paths)
	return s.run(ctx, args...)
}

// Diff returns the unified diff for the given paths.
func (s *Service) Diff(ctx context.Context, staged bool, paths []string) (string, error) {
	args := []string{"diff"}
	if staged {
		args = append(args, "--cached")
	}
	args = append(args, "--patch", "--no-color")
	args = appendPathspec(args, paths)
	return s.run(ctx, args...)
}

// Stage adds the given paths to the index.
func (s *Service) Stage(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := appendPathspec([]string{"add"}, paths)
	_, err := s.run(ctx, args...)
	return err
}

// StageInteractive runs `git add -p` for the given paths with the terminal
// attached so the user can pick hunks.
func (s *Service) StageInteractive(ctx context.Context, paths []string) error {
	allArgs := append([]string{"-C", s.cwd(), "add", "-p"}, "--")
	allArgs = append(allArgs, paths...)
	log.Printf("git %s (interactive)", strings.Join(allArgs, " "))

	// #nosec G204 -- arguments are assembled from internal logic
	cmd := exec.CommandContext(ctx, "git", allArgs...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git add -p: %w", err)
	}
	return nil
}

// HasStagedChanges reports whether any of the given paths has staged
// content. Uses `git diff --cached --quiet`, where exit code 1 means yes.
func (s *Service) HasStagedChanges(ctx context.Context, paths []string) (bool, error) {
	args := []string{"diff", "--cached", "--quiet"}
	args = appendPathspec(args, paths)
	_, code, err := s.runExit(ctx, []int{0, 1}, args...)
	if err != nil {
		return false, err
	}
	return code == 1, nil
}

// Unstage removes the given paths from the index, keeping worktree content.
func (s *Service) Unstage(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := appendPathspec([]string{"reset", "HEAD"}, paths)
	// reset exits 1 when unstaged changes remain after the reset, which is
	// exactly our situation.
	_, _, err := s.runExit(ctx, []int{0, 1}, args...)
	return err
}

// Commit records a commit restricted to exactly the given paths so other
// staged content is left alone.
func (s *Service) Commit(ctx context.Context, paths []string, subject, body string) error {
	args := []string{"commit", "-m", subject}
	if body != "" {
		args = append(args, "-m", body)
	}
	args = appendPathspec(args, paths)
	_, err := s.run(ctx, args...)
	return err
}

// Amend rewrites the last commit in place with a new message.
func (s *Service) Amend(ctx context.Context, subject, body string) error {
	args := []string{"commit", "--amend", "-m", subject}
	if body != "" {
		args = append(args, "-m", body)
	}
	_, err := s.run(ctx, args...)
	return err
}

// RecentCommits returns the subjects of the last n commits, newest first.
// A repository without commits yields an empty history, not an error.
func (s *Service) RecentCommits(ctx context.Context, n int) ([]string, error) {
	// Exit 128 covers the unborn-branch case; RepoRoot already ran by the
	// time we get here, so it cannot mean "not a repository".
	out, code, err := s.runExit(ctx, []int{0, 128}, "log", "-n", fmt.Sprintf("%d", n), "--pretty=%s")
	if err != nil {
		return nil, err
	}
	if code != 0 || out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// LastCommitMessage returns the full message of the last commit.
func (s *Service) LastCommitMessage(ctx context.Context) (string, error) {
	return s.run(ctx, "log", "-1", "--pretty=%B")
}

func appendPathspec(args, paths []string) []string {
	if len(paths) == 0 {
		return args
	}
	args = append(args, "--")
	return append(args, paths...)
}
