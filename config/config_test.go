package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvProvider, "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv(EnvModel, "")
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvRunTimeout, "")
}

func TestLoad(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Zero(t, cfg.RunTimeout)
}

func TestLoadOptionalSettings(t *testing.T) {
	setBaseEnv(t)
	t.Setenv(EnvModel, "claude-3-5-sonnet-20241022")
	t.Setenv(EnvDataDir, "/srv/procuremesh/data")
	t.Setenv(EnvRunTimeout, "2m30s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.Model)
	assert.Equal(t, "/srv/procuremesh/data", cfg.DataDir)
	assert.Equal(t, 2*time.Minute+30*time.Second, cfg.RunTimeout)
}

func TestLoadOpenAIProvider(t *testing.T) {
	setBaseEnv(t)
	t.Setenv(EnvProvider, "OpenAI") // case-insensitive
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk-openai", cfg.APIKey)
}

func TestLoadValidation(t *testing.T) {
	t.Run("MissingProvider", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv(EnvProvider, "")

		_, err := Load("")
		require.Error(t, err)
		assert.ErrorContains(t, err, EnvProvider)
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv(EnvProvider, "azure")

		_, err := Load("")
		require.Error(t, err)
		assert.ErrorContains(t, err, `unknown provider "azure"`)
	})

	t.Run("MissingAPIKey", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("ANTHROPIC_API_KEY", "")

		_, err := Load("")
		require.Error(t, err)
		assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")
	})

	t.Run("InvalidTimeout", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv(EnvRunTimeout, "soon")

		_, err := Load("")
		require.Error(t, err)
		assert.ErrorContains(t, err, EnvRunTimeout)
	})

	t.Run("NegativeTimeout", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv(EnvRunTimeout, "-5s")

		_, err := Load("")
		require.Error(t, err)
		assert.ErrorContains(t, err, "must not be negative")
	})
}

func TestLoadDotEnvFile(t *testing.T) {
	setBaseEnv(t)
	// godotenv only fills variables absent from the environment, so the
	// ones the file should provide must be fully unset, not just empty.
	t.Setenv(EnvProvider, "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	os.Unsetenv(EnvProvider)
	os.Unsetenv("ANTHROPIC_API_KEY")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"PROCUREMESH_PROVIDER=anthropic\nANTHROPIC_API_KEY=sk-from-file\n",
	), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-file", cfg.APIKey)
}

func TestLoadMissingDotEnvFileIsIgnored(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
}
