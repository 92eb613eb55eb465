package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))
	t.Setenv(EnvPrefix+"CONFIG_PATH", "")
	return tmp
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	tmp := isolate(t)
	Load()

	assert.Equal(t, DefaultBaseURL, Get("base_url", ""))
	assert.Equal(t, 20, GetInt("page_size", 0))
	assert.Equal(t, "page", Get("pagination", ""))
	assert.Equal(t, 30*time.Second, GetSeconds("realtime_retry_seconds", 0))
	assert.Equal(t, 10*time.Second, GetSeconds("push_retry_seconds", 0))
	assert.False(t, GetBool("enable_hmac", true))
	assert.Equal(t, filepath.Join(tmp, "state", "bellsync"), Get("state_dir", ""))
	assert.Equal(t, filepath.Join(tmp, "state", "bellsync", "cache.db"), Get("cache_path", ""))
	assert.Equal(t, "default", Get("missing", "default"))
}

func TestLoadFromDefaultFileLocation(t *testing.T) {
	tmp := isolate(t)
	writeConfig(t, filepath.Join(tmp, "config", "bellsync"), `
api_key = "pk_123"
page_size = 50
enable_hmac = true
pagination = "cursor"
`)
	Load()

	assert.Equal(t, "pk_123", Get("api_key", ""))
	assert.Equal(t, 50, GetInt("page_size", 0))
	assert.True(t, GetBool("enable_hmac", false))
	assert.Equal(t, "cursor", Get("pagination", ""))
}

func TestEnvOverridesFile(t *testing.T) {
	tmp := isolate(t)
	path := writeConfig(t, filepath.Join(tmp, "elsewhere"), `
api_key = "from_file"
user_email = "file@example.com"
`)
	t.Setenv(EnvPrefix+"CONFIG_PATH", path)
	t.Setenv(EnvPrefix+"API_KEY", "from_env")
	Load()

	assert.Equal(t, "from_env", Get("api_key", ""))
	assert.Equal(t, "file@example.com", Get("user_email", ""))
	assert.Equal(t, "", Get("config_path", ""), "config path is not a config value")
}

func TestValidatorsFallBackToDefaults(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPrefix+"PAGE_SIZE", "-5")
	t.Setenv(EnvPrefix+"PAGINATION", "offset")
	t.Setenv(EnvPrefix+"ENABLE_HMAC", "maybe")
	t.Setenv(EnvPrefix+"BASE_URL", "ftp://nope")
	t.Setenv(EnvPrefix+"LOGGING_LEVEL", "WARN")
	Load()

	assert.Equal(t, "20", Get("page_size", ""))
	assert.Equal(t, "page", Get("pagination", ""))
	assert.Equal(t, "false", Get("enable_hmac", ""))
	assert.Equal(t, DefaultBaseURL, Get("base_url", ""))
	assert.Equal(t, "warn", Get("logging_level", ""))
}

func TestDebugForcesDebugLevel(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPrefix+"DEBUG", "yes")
	t.Setenv(EnvPrefix+"LOGGING_LEVEL", "error")
	Load()

	assert.True(t, GetBool("debug", false))
	assert.Equal(t, "debug", Get("logging_level", ""))
}

func TestBaseURLTrailingSlash(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPrefix+"BASE_URL", "http://localhost:8080/")
	Load()
	assert.Equal(t, "http://localhost:8080", Get("base_url", ""))
}

func TestSetOverrides(t *testing.T) {
	isolate(t)
	Load()
	Set("user_email", "flag@example.com")
	assert.Equal(t, "flag@example.com", Get("user_email", ""))
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator Validator
		value     string
		want      string
	}{
		{"positive int ok", PositiveIntValidator(), "007", "7"},
		{"positive int zero", PositiveIntValidator(), "0", "def"},
		{"positive int empty", PositiveIntValidator(), "", "def"},
		{"enum ok", EnumValidator(map[string]bool{"a": true}), "A", "a"},
		{"enum bad", EnumValidator(map[string]bool{"a": true}), "b", "def"},
		{"bool on", BoolValidator(), "on", "true"},
		{"bool off", BoolValidator(), "0", "false"},
		{"bool bad", BoolValidator(), "nah", "def"},
		{"url ok", URLValidator(), "https://x.test/", "https://x.test"},
		{"url no host", URLValidator(), "https://", "def"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.validator("key", tt.value, "def")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegisterValidatorPanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		RegisterValidator("page_size", BoolValidator())
	})
}
