package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evan70/fscommander/pkg/config"
	"github.com/evan70/fscommander/pkg/diff"
	"github.com/evan70/fscommander/pkg/fsys"
	"github.com/evan70/fscommander/pkg/logging"
	"github.com/evan70/fscommander/pkg/models"
	"github.com/evan70/fscommander/pkg/output"
	syncpkg "github.com/evan70/fscommander/pkg/sync"
)

// SyncFlags holds sync command flags
type SyncFlags struct {
	DryRun     bool
	Delete     bool
	OnConflict string
	VerifyHash bool
	Hash       string
	Workers    int
	Exclude    []string
	Hidden     bool
	Follow     bool
	CreateDest bool
	Output     string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var syncFlags SyncFlags

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync SOURCE DEST",
		Short: "Synchronize two directory trees",
		Long: `Synchronize files from a source directory to a destination directory.
The trees are compared first and only entries that differ are touched.
Use --dry-run to preview the plan without changing anything.`,
		Args: cobra.ExactArgs(2),
		RunE: runSync,
	}

	cmd.Flags().BoolVar(&syncFlags.DryRun, "dry-run", false, "plan only, don't modify the destination")
	cmd.Flags().BoolVar(&syncFlags.Delete, "delete", false, "delete destination entries missing from source")
	cmd.Flags().StringVar(&syncFlags.OnConflict, "on-conflict", "", "conflict policy: prefer-source, prefer-dest, prefer-newer, manual")
	cmd.Flags().BoolVar(&syncFlags.VerifyHash, "verify-hash", false, "confirm content equality by hashing")
	cmd.Flags().StringVar(&syncFlags.Hash, "hash", "", "hash algorithm: xxhash, sha256")
	cmd.Flags().IntVarP(&syncFlags.Workers, "workers", "w", 0, "number of parallel copy workers (default: 5)")
	cmd.Flags().StringSliceVar(&syncFlags.Exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().BoolVar(&syncFlags.Hidden, "hidden", false, "include hidden entries")
	cmd.Flags().BoolVar(&syncFlags.Follow, "follow", false, "follow symlinks while scanning")
	cmd.Flags().BoolVar(&syncFlags.CreateDest, "create-dest", false, "create destination directory if it doesn't exist")
	cmd.Flags().StringVarP(&syncFlags.Output, "output", "o", "", "output format: human, progress, json")

	cmd.Flags().StringVar(&syncFlags.LogFile, "log-file", "", "write logs to file")
	cmd.Flags().StringVar(&syncFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&syncFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts, diffOpts, err := syncOptions(cfg)
	if err != nil {
		return err
	}

	source, err := fsys.NewLocal(args[0])
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}

	var dest *fsys.Local
	if syncFlags.CreateDest {
		dest, err = fsys.NewLocalCreate(args[1])
	} else {
		dest, err = fsys.NewLocal(args[1])
	}
	if err != nil {
		return fmt.Errorf("failed to open destination: %w", err)
	}

	logger, err := newLogger(cfg, syncFlags.LogFile, syncFlags.LogFormat, syncFlags.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	formatter, err := syncFormatter(cfg)
	if err != nil {
		return err
	}

	logger.Info(ctx, "comparing trees", logging.Fields{
		"source": source.Root(),
		"dest":   dest.Root(),
	})

	result, err := diff.Tree(ctx, source, dest, diffOpts)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}
	for _, we := range result.SourceErrors {
		logger.Warn(ctx, "source scan error", logging.Fields{"path": we.Path, "error": we.Err.Error()})
	}
	for _, we := range result.DestErrors {
		logger.Warn(ctx, "destination scan error", logging.Fields{"path": we.Path, "error": we.Err.Error()})
	}

	if GetGlobalFlags().Quiet {
		formatter = nil
	}

	engine := syncpkg.NewEngine(source, dest, logger, formatter)
	plan, err := engine.Plan(result.Entries, opts)
	if err != nil {
		return err
	}

	if opts.Policy == models.PolicyManual {
		for _, c := range plan.Conflicts() {
			fmt.Fprintf(os.Stderr, "conflict: %s (%s)\n", c.Diff.RelativePath, c.Diff.ConflictReason)
		}
	}

	syncResult, err := engine.Execute(ctx, plan)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if syncResult.Failed > 0 {
		return fmt.Errorf("%d of %d entries failed", syncResult.Failed, len(plan.Entries))
	}
	return nil
}

// syncOptions merges config defaults with command-line flags
func syncOptions(cfg *config.Config) (models.SyncOptions, diff.Options, error) {
	policy := cfg.Sync.ConflictPolicy
	if syncFlags.OnConflict != "" {
		p, err := models.ParseConflictPolicy(syncFlags.OnConflict)
		if err != nil {
			return models.SyncOptions{}, diff.Options{}, err
		}
		policy = p
	}

	workers := cfg.Sync.MaxWorkers
	if syncFlags.Workers > 0 {
		workers = syncFlags.Workers
	}

	opts := models.SyncOptions{
		DryRun:           syncFlags.DryRun,
		DeleteExtraneous: syncFlags.Delete || cfg.Sync.DeleteExtraneous,
		Policy:           policy,
		MaxWorkers:       workers,
	}

	algo := diff.XXHash
	name := cfg.Sync.HashAlgorithm
	if syncFlags.Hash != "" {
		name = syncFlags.Hash
	}
	switch name {
	case "xxhash", "":
	case "sha256":
		algo = diff.SHA256
	default:
		return models.SyncOptions{}, diff.Options{}, &models.ConfigurationError{
			Field: "hash algorithm", Message: "must be 'xxhash' or 'sha256'",
		}
	}

	diffOpts := diff.Options{
		DeleteExtraneous: opts.DeleteExtraneous,
		VerifyHash:       syncFlags.VerifyHash || cfg.Sync.VerifyHash,
		Algorithm:        algo,
		IncludeHidden:    syncFlags.Hidden || cfg.Search.IncludeHidden,
		FollowSymlinks:   syncFlags.Follow || cfg.Search.FollowSymlinks,
		Exclude:          append(append([]string{}, cfg.Exclude...), syncFlags.Exclude...),
	}
	return opts, diffOpts, nil
}

func syncFormatter(cfg *config.Config) (output.Formatter, error) {
	name := syncFlags.Output
	if name == "" {
		name = cfg.Output.Format
		if name == "human" && cfg.Output.Progress && !GetGlobalFlags().Verbose {
			name = "progress"
		}
	}
	return output.NewFormatter(name)
}
