package config

import (
	"os"
	"time"

	"github.com/chmouel/lazycommit/internal/models"
)

// Environment captures the process environment variables lazycommit
// honors. Components never read os.Getenv themselves; the environment is
// sampled once here and passed through Resolve.
type Environment struct {
	APIKey   string
	Model    string
	BaseURL  string
	Language string
}

// EnvironmentFromOS samples the relevant variables from the process
// environment. LAZYCOMMIT_API_KEY wins over OPENAI_API_KEY.
func EnvironmentFromOS() Environment {
	apiKey := os.Getenv("LAZYCOMMIT_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return Environment{
		APIKey:   apiKey,
		Model:    os.Getenv("LAZYCOMMIT_MODEL"),
		BaseURL:  os.Getenv("LAZYCOMMIT_BASE_URL"),
		Language: os.Getenv("LAZYCOMMIT_LANGUAGE"),
	}
}

// FlagOverrides carries the CLI flag values that shadow config file and
// environment settings.
type FlagOverrides struct {
	Model        string
	MaxDiffChars int
	Theme        string
	DebugLog     string
}

// Resolve merges the configuration layers into the effective settings for
// one invocation. Precedence, lowest to highest: defaults, config file,
// repository-local git config (lc.*), environment, CLI flags. The result
// is a value, not a pointer: nothing mutates it after session start.
func Resolve(env Environment, file *AppConfig, overlay map[string]string, flags FlagOverrides) AppConfig {
	effective := *DefaultConfig()

	if file != nil {
		applyFile(&effective, file)
	}
	applyOverlay(&effective, overlay)
	applyEnvironment(&effective, env)
	applyFlags(&effective, flags)
	clampRetry(&effective.Retry)

	return effective
}

func applyFile(dst, src *AppConfig) {
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.Language != "" {
		dst.Language = src.Language
	}
	if src.Theme != "" {
		dst.Theme = src.Theme
	}
	if src.DebugLog != "" {
		dst.DebugLog = src.DebugLog
	}
	if src.MaxDiffChars > 0 {
		dst.MaxDiffChars = src.MaxDiffChars
	}
	if src.Icons != nil {
		dst.Icons = src.Icons
	}
	if src.Retry.MaxRetries != 0 {
		dst.Retry.MaxRetries = src.Retry.MaxRetries
	}
	if src.Retry.BaseDelay != 0 {
		dst.Retry.BaseDelay = src.Retry.BaseDelay
	}
	if src.Retry.MaxDelay != 0 {
		dst.Retry.MaxDelay = src.Retry.MaxDelay
	}
	if src.Retry.Timeout != 0 {
		dst.Retry.Timeout = src.Retry.Timeout
	}
}

func applyOverlay(dst *AppConfig, overlay map[string]string) {
	if v := overlay[overlayModel]; v != "" {
		dst.Model = v
	}
	if v := overlay[overlayBaseURL]; v != "" {
		dst.BaseURL = v
	}
	if v := overlay[overlayLanguage]; v != "" {
		dst.Language = v
	}
	if v := overlay[overlayTheme]; v != "" {
		dst.Theme = v
	}
}

func applyEnvironment(dst *AppConfig, env Environment) {
	if env.APIKey != "" {
		dst.APIKey = env.APIKey
	}
	if env.Model != "" {
		dst.Model = env.Model
	}
	if env.BaseURL != "" {
		dst.BaseURL = env.BaseURL
	}
	if env.Language != "" {
		dst.Language = env.Language
	}
}

func applyFlags(dst *AppConfig, flags FlagOverrides) {
	if flags.Model != "" {
		dst.Model = flags.Model
	}
	if flags.MaxDiffChars > 0 {
		dst.MaxDiffChars = flags.MaxDiffChars
	}
	if flags.Theme != "" {
		dst.Theme = flags.Theme
	}
	if flags.DebugLog != "" {
		dst.DebugLog = flags.DebugLog
	}
}

// clampRetry keeps the policy inside sane bounds whatever the file said.
func clampRetry(p *models.RetryPolicy) {
	if p.MaxRetries < 1 {
		p.MaxRetries = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = models.Duration(1 * time.Second)
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	if p.Timeout <= 0 {
		p.Timeout = models.Duration(30 * time.Second)
	}
}
