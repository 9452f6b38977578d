// Package config loads runtime configuration from a .env file and the
// process environment. Configuration errors are fatal at startup, not
// per-request conditions.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported hosting providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Environment variable names.
const (
	EnvProvider   = "PROCUREMESH_PROVIDER"
	EnvModel      = "PROCUREMESH_MODEL"
	EnvDataDir    = "PROCUREMESH_DATA_DIR"
	EnvRunTimeout = "PROCUREMESH_RUN_TIMEOUT"

	envAnthropicAPIKey = "ANTHROPIC_API_KEY"
	envOpenAIAPIKey    = "OPENAI_API_KEY"
)

// Config holds all runtime settings.
type Config struct {
	// Provider selects the hosting backend: "anthropic" or "openai".
	Provider string
	// Model overrides the provider's default model id. Optional.
	Model string
	// APIKey is the key for the selected provider.
	APIKey string
	// DataDir is the catalog data directory. Defaults to "data".
	DataDir string
	// RunTimeout bounds one purchase request run. Zero means no timeout.
	RunTimeout time.Duration
}

// Load reads configuration from the .env file at path (skipped when the file
// does not exist) and the process environment. The environment takes
// precedence over the file.
func Load(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, fmt.Errorf("config: load %s: %w", path, err)
			}
		}
	}

	cfg := &Config{
		Provider: strings.ToLower(strings.TrimSpace(os.Getenv(EnvProvider))),
		Model:    strings.TrimSpace(os.Getenv(EnvModel)),
		DataDir:  strings.TrimSpace(os.Getenv(EnvDataDir)),
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}

	switch cfg.Provider {
	case ProviderAnthropic:
		cfg.APIKey = os.Getenv(envAnthropicAPIKey)
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("config: %s is required for provider %s", envAnthropicAPIKey, cfg.Provider)
		}
	case ProviderOpenAI:
		cfg.APIKey = os.Getenv(envOpenAIAPIKey)
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("config: %s is required for provider %s", envOpenAIAPIKey, cfg.Provider)
		}
	case "":
		return nil, fmt.Errorf("config: %s is required (%q or %q)", EnvProvider, ProviderAnthropic, ProviderOpenAI)
	default:
		return nil, fmt.Errorf("config: unknown provider %q (%q or %q)", cfg.Provider, ProviderAnthropic, ProviderOpenAI)
	}

	if raw := strings.TrimSpace(os.Getenv(EnvRunTimeout)); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("config: invalid %s %q: %w", EnvRunTimeout, raw, err)
		}
		if timeout < 0 {
			return nil, fmt.Errorf("config: %s must not be negative", EnvRunTimeout)
		}
		cfg.RunTimeout = timeout
	}

	return cfg, nil
}
