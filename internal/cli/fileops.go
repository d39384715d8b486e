package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evan70/fscommander/pkg/fileops"
	"github.com/evan70/fscommander/pkg/fsys"
	"github.com/evan70/fscommander/pkg/models"
	"github.com/evan70/fscommander/pkg/output"
	"github.com/evan70/fscommander/pkg/walker"
)

// Single-entry commands: cp, mv, rename, rm, mkdir, ls, tree.

// openAt roots a filesystem at the system root so the command can
// reference arbitrary absolute or relative paths.
func openAt(paths ...string) (fsys.FS, []string, error) {
	fsx, err := fsys.NewLocal(string(filepath.Separator))
	if err != nil {
		return nil, nil, err
	}
	rels := make([]string, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve path %q: %w", p, err)
		}
		rels[i] = strings.TrimPrefix(filepath.ToSlash(abs), "/")
	}
	return fsx, rels, nil
}

// NewCopyCommand creates the cp command
func NewCopyCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "cp SOURCE DEST",
		Short: "Copy a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsx, rels, err := openAt(args...)
			if err != nil {
				return err
			}
			return fileops.CopyFile(fsx, rels[0], rels[1], force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing destination")
	return cmd
}

// NewMoveCommand creates the mv command
func NewMoveCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "mv SOURCE DEST",
		Short: "Move or rename a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsx, rels, err := openAt(args...)
			if err != nil {
				return err
			}
			return fileops.MoveFile(fsx, rels[0], rels[1], force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing destination")
	return cmd
}

// NewRenameCommand creates the rename command
func NewRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename PATH NEW_NAME",
		Short: "Rename an entry within its directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsx, rels, err := openAt(args[0])
			if err != nil {
				return err
			}
			return fileops.Rename(fsx, rels[0], args[1])
		},
	}
}

// NewRemoveCommand creates the rm command
func NewRemoveCommand() *cobra.Command {
	var recursive, force bool

	cmd := &cobra.Command{
		Use:   "rm PATH...",
		Short: "Remove files or directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsx, rels, err := openAt(args...)
			if err != nil {
				return err
			}
			failed := 0
			for i, rel := range rels {
				if err := fileops.Remove(fsx, rel, recursive, force); err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "rm: %s: %v\n", args[i], err)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d paths could not be removed", failed, len(rels))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "remove directories and their contents")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "ignore missing paths")
	return cmd
}

// NewMkdirCommand creates the mkdir command
func NewMkdirCommand() *cobra.Command {
	var parents bool

	cmd := &cobra.Command{
		Use:   "mkdir PATH...",
		Short: "Create directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsx, rels, err := openAt(args...)
			if err != nil {
				return err
			}
			for i, rel := range rels {
				if err := fileops.CreateDir(fsx, rel, parents); err != nil {
					return fmt.Errorf("mkdir: %s: %w", args[i], err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "create parent directories as needed")
	return cmd
}

// NewListCommand creates the ls command
func NewListCommand() *cobra.Command {
	var all, long bool

	cmd := &cobra.Command{
		Use:   "ls [PATH]",
		Short: "List directory contents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			fsx, err := fsys.NewLocal(root)
			if err != nil {
				return err
			}
			entries, err := fileops.ListDir(fsx, ".", all)
			if err != nil {
				return err
			}
			if long {
				bytes, _, err := fileops.TreeSize(fsx, ".")
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "total %s\n", output.FormatBytes(bytes))
			}
			for i := range entries {
				output.PrintEntry(os.Stdout, &entries[i], long)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include hidden entries")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show size and modification time")
	return cmd
}

// NewTreeCommand creates the tree command
func NewTreeCommand() *cobra.Command {
	var hidden, follow bool
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "tree [PATH]",
		Short: "Render a directory tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			fsx, err := fsys.NewLocal(root)
			if err != nil {
				return err
			}

			entries, walkErrs := walker.Collect(ctx, fsx, walker.Options{
				Order:          walker.DepthFirst,
				IncludeHidden:  hidden,
				FollowSymlinks: follow,
			})
			output.PrintTree(os.Stdout, root, limitDepth(entries, maxDepth))

			for i := range walkErrs {
				fmt.Fprintf(os.Stderr, "tree: %v\n", &walkErrs[i])
			}
			if len(walkErrs) > 0 {
				return fmt.Errorf("%d paths could not be read", len(walkErrs))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&hidden, "all", "a", false, "include hidden entries")
	cmd.Flags().BoolVar(&follow, "follow", false, "follow symlinks")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 3, "maximum depth to render (0 for unlimited)")
	return cmd
}

// limitDepth drops entries nested more than max levels below the root.
// Zero or negative means no limit.
func limitDepth(entries []models.Entry, max int) []models.Entry {
	if max <= 0 {
		return entries
	}
	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if strings.Count(e.RelativePath, "/") < max {
			out = append(out, e)
		}
	}
	return out
}
