package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drallgood/abs-cli/internal/logger"
)

// clearEnv unsets every variable Load looks at for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ABS_SERVER_URL", "ABS_API_TOKEN", "LOG_LEVEL", "LOG_FORMAT", "HARDCOVER_TOKEN", "HARDCOVER_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTOML(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, "config.toml", `
server_url = "https://abs.example.com/"
api_token = "secret-token"

[logging]
level = "debug"
format = "json"

[hardcover]
token = "hc-token"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://abs.example.com", cfg.ServerURL, "trailing slash is trimmed")
	assert.Equal(t, "secret-token", cfg.APIToken)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "hc-token", cfg.Hardcover.Token)
	assert.Equal(t, DefaultHardcoverURL, cfg.Hardcover.URL)
	assert.Equal(t, DefaultSecretCommand, cfg.Secrets.Command)
	assert.Equal(t, path, cfg.Path)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, "config.yaml", `
server_url: "http://localhost:13378"
secrets:
  command: ["pass", "show", "abs"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:13378", cfg.ServerURL)
	assert.Empty(t, cfg.APIToken)
	assert.Equal(t, []string{"pass", "show", "abs"}, cfg.Secrets.Command)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ABS_SERVER_URL", "https://env.example.com")
	t.Setenv("ABS_API_TOKEN", "env-token")
	t.Setenv("LOG_LEVEL", "warn")

	path := writeFile(t, "config.toml", `
server_url = "https://file.example.com"
api_token = "file-token"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.ServerURL)
	assert.Equal(t, "env-token", cfg.APIToken)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "nope.toml")

	t.Run("without env is a config error", func(t *testing.T) {
		cfg, err := Load(missing)
		require.Error(t, err)
		assert.Nil(t, cfg)

		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "server_url", cfgErr.Field)
		assert.Contains(t, err.Error(), missing)
	})

	t.Run("env provides the server", func(t *testing.T) {
		t.Setenv("ABS_SERVER_URL", "https://env.example.com")
		cfg, err := Load(missing)
		require.NoError(t, err)
		assert.Equal(t, "https://env.example.com", cfg.ServerURL)
		assert.Empty(t, cfg.Path)
	})
}

func TestLoadInvalidFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", "server_url = [unterminated")

	_, err := Load(path)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://abs.example.com", false},
		{"http with port", "http://10.0.0.2:13378", false},
		{"empty", "", true},
		{"no scheme", "abs.example.com", true},
		{"ftp", "ftp://abs.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ServerURL: tt.url}
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ResolvePath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "abs-cli", "config.toml"), got)

	got, err = ResolvePath("~/other.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "other.yaml"), got)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "test.env", "ABS_SERVER_URL=https://dotenv.example.com\n")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "https://dotenv.example.com", os.Getenv("ABS_SERVER_URL"))

	assert.Error(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestLoadFromFileLogsAtConfiguredLevel(t *testing.T) {
	logger.ResetForTesting()
	t.Cleanup(logger.ResetForTesting)

	path := writeFile(t, "config.toml", `server_url = "https://abs.example.com"`)

	var buf bytes.Buffer
	logger.ForceSetup(logger.Config{Level: "warn", Format: logger.FormatJSON, Output: &buf})
	_, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Empty(t, buf.String(), "no debug output at warn level")

	logger.ForceSetup(logger.Config{Level: "debug", Format: logger.FormatJSON, Output: &buf})
	buf.Reset()
	_, err = LoadFromFile(path)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Parsed configuration file")
	assert.Contains(t, buf.String(), `"has_api_token":false`)
}
