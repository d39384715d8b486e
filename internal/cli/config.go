package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evan70/fscommander/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or modify fscommander configuration.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Printf("Conflict Policy: %s\n", cfg.Sync.ConflictPolicy)
			fmt.Printf("Hash Algorithm: %s\n", cfg.Sync.HashAlgorithm)
			fmt.Printf("Verify Hash: %t\n", cfg.Sync.VerifyHash)
			fmt.Printf("Delete Extraneous: %t\n", cfg.Sync.DeleteExtraneous)
			fmt.Printf("Max Workers: %d\n", cfg.Sync.MaxWorkers)
			fmt.Printf("Include Hidden: %t\n", cfg.Search.IncludeHidden)
			fmt.Printf("Follow Symlinks: %t\n", cfg.Search.FollowSymlinks)
			fmt.Printf("Output Format: %s\n", cfg.Output.Format)
			fmt.Printf("Log Format: %s\n", cfg.Logging.Format)
			fmt.Printf("Log Level: %s\n", cfg.Logging.Level)
			fmt.Printf("Exclude: %v\n", cfg.Exclude)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Printf("Configuration file created at: %s\n", path)
			return nil
		},
	}
}
