package config

import "time"

// HotReloadConfig represents hot reload configuration.
// Only the log level is reloaded; everything else is fixed at start.
type HotReloadConfig struct {
	Enabled  bool          `json:"enabled" yaml:"enabled"`
	Debounce time.Duration `json:"debounce" yaml:"debounce"`
}
