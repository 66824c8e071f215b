// Package config loads lazycommit configuration and resolves the effective
// settings from defaults, the JSON config file, the repository's git-config
// overlay, environment variables and CLI flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chmouel/lazycommit/internal/models"
	"github.com/chmouel/lazycommit/internal/utils"
)

// AppConfig is the on-disk application configuration. All fields are
// optional; zero values fall back to defaults during Resolve.
type AppConfig struct {
	APIKey       string             `json:"apiKey,omitempty"`
	Model        string             `json:"model,omitempty"`
	BaseURL      string             `json:"baseUrl,omitempty"`
	Language     string             `json:"language,omitempty"`
	Retry        models.RetryPolicy `json:"retry,omitempty"`
	Theme        string             `json:"theme,omitempty"`
	DebugLog     string             `json:"debugLog,omitempty"`
	MaxDiffChars int                `json:"maxDiffChars,omitempty"`
	Icons        *bool              `json:"icons,omitempty"`
}

// Defaults applied when neither the file nor any override supplies a value.
const (
	DefaultModel        = "gpt-4o-mini"
	DefaultBaseURL      = "https://api.openai.com/v1"
	DefaultMaxDiffChars = 6000
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Model:   DefaultModel,
		BaseURL: DefaultBaseURL,
		Retry: models.RetryPolicy{
			MaxRetries: 3,
			BaseDelay:  models.Duration(1 * time.Second),
			MaxDelay:   models.Duration(10 * time.Second),
			Timeout:    models.Duration(30 * time.Second),
		},
		MaxDiffChars: DefaultMaxDiffChars,
	}
}

// IconsEnabled reports whether file icons should be rendered. Defaults to
// true when the config file does not say otherwise.
func (c *AppConfig) IconsEnabled() bool {
	if c.Icons == nil {
		return true
	}
	return *c.Icons
}

func getConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// Path returns the config file location: the explicit path when given
// (with ~ and env vars expanded), otherwise the XDG default.
func Path(explicit string) (string, error) {
	if explicit != "" {
		expanded, err := utils.ExpandPath(explicit)
		if err != nil {
			return "", err
		}
		return filepath.Abs(expanded)
	}
	return filepath.Join(getConfigDir(), "lazycommit", "config.json"), nil
}

// Load reads the configuration file at path. A missing file is not an
// error and yields the defaults; a file that exists but cannot be parsed
// is an error so a broken apiKey never degrades silently.
func Load(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) // #nosec G304 -- path resolved via Path()
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory. Existing files
// are preserved unless force is set.
func Save(cfg *AppConfig, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), utils.DefaultDirPerms); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, utils.DefaultFilePerms); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// MissingKeyError reports that no API key was found anywhere in the
// resolution chain. It points the user at the config path that was
// consulted.
type MissingKeyError struct {
	ConfigPath string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("no API key configured: set apiKey in %s or export LAZYCOMMIT_API_KEY", e.ConfigPath)
}

// IsMissingKey reports whether err is a MissingKeyError.
func IsMissingKey(err error) bool {
	var mke *MissingKeyError
	return errors.As(err, &mke)
}
