// Package config loads ambient CLI settings from ~/.rackline/config.yaml
// and RACKLINE_* environment variables.
//
// Only device-local knobs live here: where data is stored, sync timing,
// and daemon logging. League content and transport credentials are kept
// in the settings store so they survive alongside the document itself.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Settings holds the resolved ambient configuration.
type Settings struct {
	// DataDir is where the settings database and daemon state live.
	DataDir string `mapstructure:"data_dir"`

	// DebounceDelay overrides how long the scheduler waits after a
	// local mutation before syncing.
	DebounceDelay time.Duration `mapstructure:"debounce_delay"`

	// SyncInterval overrides the daemon's periodic reconcile cadence.
	SyncInterval time.Duration `mapstructure:"sync_interval"`

	// LogFile is where the daemon writes its rotating log. Empty means
	// stderr.
	LogFile string `mapstructure:"log_file"`

	// InboxDir is watched by the daemon for dropped backup files.
	// Empty disables the watcher.
	InboxDir string `mapstructure:"inbox_dir"`
}

// DatabasePath returns the settings database location under DataDir.
func (s *Settings) DatabasePath() string {
	return filepath.Join(s.DataDir, "rackline.db")
}

// Load reads config.yaml from ~/.rackline (creating nothing), applies
// RACKLINE_* environment overrides, and fills defaults. A missing
// config file is not an error.
func Load() (*Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return LoadFrom(filepath.Join(home, ".rackline"))
}

// LoadFrom reads configuration rooted at the given directory.
func LoadFrom(dir string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("RACKLINE")
	v.AutomaticEnv()

	v.SetDefault("data_dir", dir)
	v.SetDefault("debounce_delay", 1500*time.Millisecond)
	v.SetDefault("sync_interval", 60*time.Second)
	v.SetDefault("log_file", "")
	v.SetDefault("inbox_dir", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if s.DebounceDelay <= 0 {
		return nil, fmt.Errorf("debounce_delay must be positive, got %s", s.DebounceDelay)
	}
	if s.SyncInterval <= 0 {
		return nil, fmt.Errorf("sync_interval must be positive, got %s", s.SyncInterval)
	}
	return &s, nil
}
