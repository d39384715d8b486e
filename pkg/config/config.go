package config

import (
	"github.com/evan70/fscommander/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Sync    SyncConfig    `yaml:"sync"`
	Search  SearchConfig  `yaml:"search"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Exclude []string      `yaml:"exclude"`
}

// SyncConfig holds sync-related settings
type SyncConfig struct {
	ConflictPolicy   models.ConflictPolicy `yaml:"conflict_policy"`
	VerifyHash       bool                  `yaml:"verify_hash"`
	HashAlgorithm    string                `yaml:"hash_algorithm"` // "xxhash" or "sha256"
	DeleteExtraneous bool                  `yaml:"delete_extraneous"`
	MaxWorkers       int                   `yaml:"max_workers"`
}

// SearchConfig holds search and traversal settings
type SearchConfig struct {
	IncludeHidden  bool `yaml:"include_hidden"`
	FollowSymlinks bool `yaml:"follow_symlinks"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human", "progress" or "json"
	Progress bool   `yaml:"progress"` // Show progress bars
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
	Color    bool   `yaml:"color"`    // Colorize terminal output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = stderr)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			ConflictPolicy:   models.PolicyPreferSource,
			VerifyHash:       false,
			HashAlgorithm:    "xxhash",
			DeleteExtraneous: false,
			MaxWorkers:       5,
		},
		Search: SearchConfig{
			IncludeHidden:  false,
			FollowSymlinks: false,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
			Color:    true,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Format:  "json",
			Level:   "info",
			File:    "",
		},
		Exclude: []string{
			"*.tmp",
			".git/**",
			"node_modules/**",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := models.ParseConflictPolicy(string(c.Sync.ConflictPolicy)); err != nil {
		return &models.ValidationError{
			Field:   "sync.conflict_policy",
			Message: err.Error(),
		}
	}

	if c.Sync.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "sync.max_workers",
			Message: "must be at least 1",
		}
	}

	validAlgorithms := map[string]bool{"xxhash": true, "sha256": true}
	if !validAlgorithms[c.Sync.HashAlgorithm] {
		return &models.ValidationError{
			Field:   "sync.hash_algorithm",
			Message: "must be 'xxhash' or 'sha256'",
		}
	}

	validFormats := map[string]bool{"human": true, "progress": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human', 'progress' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}
