package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chmouel/lazycommit/internal/models"
	"gopkg.in/yaml.v3"
)

// RepoHints is the optional per-repository .lazycommit.yaml file. Scopes
// maps a path prefix to the conventional-commit scope to use for groups
// living entirely under it; Ignore adds path segments or extensions to
// the payload denylist.
type RepoHints struct {
	Scopes map[string]string `yaml:"scopes"`
	Ignore []string          `yaml:"ignore"`
}

// LoadRepoHints reads the hints file from the repository root. A missing
// file yields (nil, nil).
func LoadRepoHints(repoRoot string) (*RepoHints, error) {
	if repoRoot == "" {
		return nil, nil
	}
	path := filepath.Join(repoRoot, models.RepoHintsFilename)

	data, err := os.ReadFile(path) // #nosec G304 -- fixed name under the repo root
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	hints := &RepoHints{}
	if err := yaml.Unmarshal(data, hints); err != nil {
		return nil, fmt.Errorf("parse %s: %w", models.RepoHintsFilename, err)
	}
	return hints, nil
}

// ScopeFor returns the scope configured for the longest path prefix that
// covers every given path, or "" when no prefix covers them all.
func (h *RepoHints) ScopeFor(paths []string) string {
	if h == nil || len(h.Scopes) == 0 || len(paths) == 0 {
		return ""
	}

	bestPrefix := ""
	bestScope := ""
	for prefix, scope := range h.Scopes {
		if len(prefix) <= len(bestPrefix) && bestPrefix != "" {
			continue
		}
		covered := true
		for _, p := range paths {
			if !pathHasPrefix(p, prefix) {
				covered = false
				break
			}
		}
		if covered {
			bestPrefix = prefix
			bestScope = scope
		}
	}
	return bestScope
}

func pathHasPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
