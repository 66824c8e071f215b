// Package utils holds small helpers shared across lazycommit packages.
package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// Permissions for files and directories created by lazycommit. Config and
// cache entries may hold API responses, so keep them private to the user.
const (
	DefaultFilePerms = 0o600
	DefaultDirPerms  = 0o750
)

// ExpandPath expands a leading ~ and any environment variables in path.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}
