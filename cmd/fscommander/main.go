package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evan70/fscommander/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "fscommander",
		Short: "Scriptable filesystem toolbox",
		Long: `fscommander is a filesystem toolbox built in Go.
It finds entries by metadata, searches file contents, compares directory
trees and synchronizes them, with single-file operations for scripting.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cli.ApplyGlobalFlags()
		},
	}

	// Add global flags
	cli.AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(cli.NewSyncCommand())
	rootCmd.AddCommand(cli.NewFindCommand())
	rootCmd.AddCommand(cli.NewSearchCommand())
	rootCmd.AddCommand(cli.NewCopyCommand())
	rootCmd.AddCommand(cli.NewMoveCommand())
	rootCmd.AddCommand(cli.NewRenameCommand())
	rootCmd.AddCommand(cli.NewRemoveCommand())
	rootCmd.AddCommand(cli.NewMkdirCommand())
	rootCmd.AddCommand(cli.NewListCommand())
	rootCmd.AddCommand(cli.NewTreeCommand())
	rootCmd.AddCommand(cli.NewConfigCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())

	return rootCmd.Execute()
}
