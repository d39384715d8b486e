package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/evan70/fscommander/pkg/config"
	"github.com/evan70/fscommander/pkg/logging"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
	NoColor    bool
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/fscommander/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
	cmd.PersistentFlags().BoolVar(
		&globalFlags.NoColor,
		"no-color",
		false,
		"disable colorized output",
	)
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}

// ApplyGlobalFlags adjusts process-wide settings once flags are parsed
func ApplyGlobalFlags() {
	if globalFlags.NoColor {
		color.NoColor = true
	}
}

// loadConfig loads the configuration honoring the --config flag
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// newLogger builds a logger from config plus per-command overrides.
// An empty file with logging disabled yields the null logger.
func newLogger(cfg *config.Config, file, format, level string) (logging.Logger, error) {
	if file == "" {
		file = cfg.Logging.File
	}
	if format == "" {
		format = cfg.Logging.Format
	}
	if level == "" {
		level = cfg.Logging.Level
	}
	if globalFlags.Verbose {
		level = "debug"
	}

	if !cfg.Logging.Enabled && file == "" {
		return logging.NewNullLogger(), nil
	}

	lf := logging.FormatJSON
	if format == "text" {
		lf = logging.FormatText
	}
	return logging.NewZapLogger(logging.Config{
		Level:  level,
		Format: lf,
		File:   file,
	})
}
