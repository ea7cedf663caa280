// Package config loads the layered cyberorganism configuration:
// built-in defaults, the system config file, config.toml in the working
// directory, then CYBERORGANISM_* environment variables, later layers
// overriding earlier ones.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type Suggestion struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	OrganizationID string `toml:"organization_id"`
	TimeoutSecs    int    `toml:"timeout_secs"`
	BatchCount     int    `toml:"batch_count"`
}

// Timeout converts the configured seconds to a duration.
func (s Suggestion) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

type Storage struct {
	DataDir string `toml:"data_dir"`
}

type Config struct {
	Suggestion Suggestion `toml:"suggestion"`
	Storage    Storage    `toml:"storage"`
}

func Default() Config {
	return Config{
		Suggestion: Suggestion{
			BaseURL:     "https://api.genius.example.com",
			TimeoutSecs: 10,
			BatchCount:  10,
		},
		Storage: Storage{DataDir: "."},
	}
}

// Load merges the configuration layers. A file that fails to parse is
// skipped and reported through the returned error while the remaining
// layers still apply; callers treat that error as a warning, not a
// failure.
func Load() (Config, error) {
	cfg := Default()
	var warn error

	if dir, err := os.UserConfigDir(); err == nil {
		if err := decodeFile(filepath.Join(dir, "cyberorganism", "config.toml"), &cfg); err != nil && warn == nil {
			warn = err
		}
	}
	if err := decodeFile("config.toml", &cfg); err != nil && warn == nil {
		warn = err
	}
	applyEnv(&cfg)
	return cfg, warn
}

// decodeFile layers one TOML file into cfg. Keys absent from the file
// keep their current values; a missing file is not an error.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

const envPrefix = "CYBERORGANISM_"

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(envPrefix + key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setString("SUGGESTION_BASE_URL", &cfg.Suggestion.BaseURL)
	setString("SUGGESTION_API_KEY", &cfg.Suggestion.APIKey)
	setString("SUGGESTION_ORGANIZATION_ID", &cfg.Suggestion.OrganizationID)
	setInt("SUGGESTION_TIMEOUT_SECS", &cfg.Suggestion.TimeoutSecs)
	setInt("SUGGESTION_BATCH_COUNT", &cfg.Suggestion.BatchCount)
	setString("DATA_DIR", &cfg.Storage.DataDir)
}
