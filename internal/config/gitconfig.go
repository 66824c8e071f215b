package config

import (
	"os/exec"
	"strings"
)

// gitConfigMock allows tests to mock git config output.
var gitConfigMock func(args []string, repoPath string) (string, error)

// Overlay keys recognized in the repository's local git config, without
// the "lc." prefix. Git downcases key names on output.
const (
	overlayModel    = "model"
	overlayBaseURL  = "baseurl"
	overlayLanguage = "language"
	overlayTheme    = "theme"
)

// runGitConfig executes git config and returns raw output.
func runGitConfig(args []string, repoPath string) (string, error) {
	if gitConfigMock != nil {
		return gitConfigMock(args, repoPath)
	}

	cmd := exec.Command("git", args...)
	if repoPath != "" {
		cmd.Dir = repoPath
	}

	output, err := cmd.Output()
	if err != nil {
		// git config returns exit code 1 when no key matches (not an error)
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", err
	}
	return string(output), nil
}

// parseGitConfigOutput parses git config output into a flat map.
// Input format: "lc.model gpt-4o\nlc.language french\n". When a key
// repeats, the last occurrence wins (matches git's own lookup rule).
func parseGitConfigOutput(output string) map[string]string {
	configMap := make(map[string]string)
	if output == "" {
		return configMap
	}

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}

		// SplitN with 2 so values containing spaces survive
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimPrefix(parts[0], "lc.")
		configMap[key] = parts[1]
	}

	return configMap
}

// LoadGitOverlay reads the repository-local lc.* git config values.
// A missing section or a directory outside any repository yields an
// empty map.
func LoadGitOverlay(repoPath string) (map[string]string, error) {
	args := []string{"config", "--local", "--get-regexp", "^lc\\."}

	output, err := runGitConfig(args, repoPath)
	if err != nil {
		return nil, err
	}
	return parseGitConfigOutput(output), nil
}
