// Package config provides configuration loading.
//
// Values are resolved from defaults, then the TOML config file, then
// BELLSYNC_* environment variables (env wins). Every value is kept as a
// string and normalized by the validators registered for its key.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/bellsync/internal/colors"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "BELLSYNC_"

// FileExtTOML is the file extension for TOML configuration files.
const FileExtTOML = ".toml"

// DefaultBaseURL is the default API endpoint.
const DefaultBaseURL = "https://api.magicbell.com"

var (
	config   map[string]string
	defaults map[string]string
	mu       sync.RWMutex
)

func init() {
	initValidators()
}

// Load initializes configuration.
func Load() {
	mu.Lock()
	defer mu.Unlock()

	config = make(map[string]string)
	defaults = make(map[string]string)

	setDefaults()
	loadFromEnv()
	loadFromFile()
	// env wins over the file
	loadFromEnv()
	validate()
	computeDirs()
}

// setDefaults populates config with default values.
func setDefaults() {
	home, _ := os.UserHomeDir()
	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome == "" {
		xdgConfigHome = filepath.Join(home, ".config")
	}
	xdgStateHome := os.Getenv("XDG_STATE_HOME")
	if xdgStateHome == "" {
		xdgStateHome = filepath.Join(home, ".local", "state")
	}

	setDefault("config_dir", filepath.Join(xdgConfigHome, "bellsync"))
	setDefault("state_dir", filepath.Join(xdgStateHome, "bellsync"))
	setDefault("api_key", "")
	setDefault("api_secret", "")
	setDefault("base_url", DefaultBaseURL)
	setDefault("enable_hmac", "false")
	setDefault("user_email", "")
	setDefault("user_external_id", "")
	setDefault("page_size", "20")
	setDefault("pagination", "page")
	setDefault("realtime_retry_seconds", "30")
	setDefault("push_retry_seconds", "10")
	setDefault("http_timeout_seconds", "30")
	setDefault("logging_enabled", "false")
	setDefault("logging_level", "info")
	setDefault("logging_max_files", "10")
	setDefault("debug", "false")
	setDefault("metrics_addr", "")
	setDefault("hooks_dir", filepath.Join(xdgConfigHome, "bellsync", "hooks"))
	setDefault("hooks_failure_mode", "warn")
	setDefault("hooks_async", "false")
	setDefault("hooks_timeout_seconds", "30")
	setDefault("hooks_max_async", "10")
}

func setDefault(key, value string) {
	config[key] = value
	defaults[key] = value
}

// loadFromFile reads configuration from a file.
func loadFromFile() {
	configPath := os.Getenv(EnvPrefix + "CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join(config["config_dir"], "config"+FileExtTOML)
		if _, err := os.Stat(configPath); err != nil {
			return
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		colors.Debug(fmt.Sprintf("unable to read config file %s: %v", configPath, err))
		return
	}
	if strings.ToLower(filepath.Ext(configPath)) != FileExtTOML {
		colors.Warning(fmt.Sprintf("unsupported config file format: %s", configPath))
		return
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		colors.Warning(fmt.Sprintf("unable to parse config file %s: %v", configPath, err))
		return
	}

	for k, v := range raw {
		key := strings.ToLower(k)
		converted, ok := coerceConfigValue(v)
		if !ok {
			colors.Warning(fmt.Sprintf("unsupported config value type for %s: %T", key, v))
			continue
		}
		config[key] = converted
	}
}

// coerceConfigValue converts a configuration value to its string representation.
func coerceConfigValue(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(typed), true
	default:
		return "", false
	}
}

// loadFromEnv applies environment variable overrides.
func loadFromEnv() {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, EnvPrefix) {
			continue
		}
		name, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		if key == "config_path" {
			continue
		}
		config[key] = value
	}
}

// validate checks and normalizes configuration values using registered validators.
func validate() {
	for key, value := range config {
		validator := getValidator(key)
		if validator == nil {
			continue
		}
		defaultValue := defaults[key]
		normalized, err := validator(key, value, defaultValue)
		if err != nil {
			colors.Warning(fmt.Sprintf("validation error for %s: %v, using default: %s", key, err, defaultValue))
			config[key] = defaultValue
			continue
		}
		config[key] = normalized
	}
}

// computeDirs derives paths that depend on other keys.
func computeDirs() {
	if config["cache_path"] == "" {
		config["cache_path"] = filepath.Join(config["state_dir"], "cache.db")
	}
	// debug implies debug level logging
	if config["debug"] == "true" {
		config["logging_level"] = "debug"
	}
}

// Set overrides a single value, mainly for flags and tests.
func Set(key, value string) {
	mu.Lock()
	defer mu.Unlock()
	if config == nil {
		config = make(map[string]string)
	}
	config[key] = value
}

// Get returns a configuration value or default.
func Get(key, defaultValue string) string {
	mu.RLock()
	defer mu.RUnlock()
	if val, ok := config[key]; ok {
		return val
	}
	return defaultValue
}

// GetInt returns a configuration value as integer, or default.
func GetInt(key string, defaultValue int) int {
	mu.RLock()
	defer mu.RUnlock()
	val, ok := config[key]
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return n
}

// GetBool returns a configuration value as boolean, or default.
func GetBool(key string, defaultValue bool) bool {
	mu.RLock()
	defer mu.RUnlock()
	val, ok := config[key]
	if !ok {
		return defaultValue
	}
	switch normalizeBool(val) {
	case "true":
		return true
	case "false":
		return false
	default:
		return defaultValue
	}
}

// GetSeconds returns an integer key as a duration in seconds, or default.
func GetSeconds(key string, defaultValue time.Duration) time.Duration {
	n := GetInt(key, -1)
	if n <= 0 {
		return defaultValue
	}
	return time.Duration(n) * time.Second
}
