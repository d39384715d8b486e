package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evan70/fscommander/pkg/filter"
	"github.com/evan70/fscommander/pkg/fsys"
	"github.com/evan70/fscommander/pkg/output"
	"github.com/evan70/fscommander/pkg/search"
)

// SearchFlags holds search command flags
type SearchFlags struct {
	Include    string
	Exclude    []string
	FilesOnly  bool
	IgnoreCase bool
	Hidden     bool
	Follow     bool
}

var searchFlags SearchFlags

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search PATTERN [PATH]",
		Short: "Search file contents with a regular expression",
		Long: `Search regular files under a directory for lines matching a regular
expression. Binary files are detected and skipped. Matches print in
grep-like form: path, line number, matching line.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runSearch,
	}

	cmd.Flags().StringVar(&searchFlags.Include, "include", "", "only scan files whose name matches this glob")
	cmd.Flags().StringSliceVar(&searchFlags.Exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().BoolVar(&searchFlags.FilesOnly, "files-only", false, "print each matching file once")
	cmd.Flags().BoolVarP(&searchFlags.IgnoreCase, "ignore-case", "i", false, "case-insensitive matching")
	cmd.Flags().BoolVar(&searchFlags.Hidden, "hidden", false, "include hidden entries")
	cmd.Flags().BoolVar(&searchFlags.Follow, "follow", false, "follow symlinks")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	root := "."
	if len(args) > 1 {
		root = args[1]
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fsx, err := fsys.NewLocal(root)
	if err != nil {
		return err
	}

	engine, err := search.New(fsx, search.Options{
		Filter:         filter.Spec{Name: searchFlags.Include},
		ContentPattern: args[0],
		IgnoreCase:     searchFlags.IgnoreCase,
		FilesOnly:      searchFlags.FilesOnly,
		IncludeHidden:  searchFlags.Hidden || cfg.Search.IncludeHidden,
		FollowSymlinks: searchFlags.Follow || cfg.Search.FollowSymlinks,
		Exclude:        append(append([]string{}, cfg.Exclude...), searchFlags.Exclude...),
	})
	if err != nil {
		return err
	}

	quiet := GetGlobalFlags().Quiet
	scanErrors := 0
	for r := range engine.Search(ctx) {
		if r.Err != nil {
			scanErrors++
			if !quiet {
				fmt.Fprintf(os.Stderr, "search: %v\n", r.Err)
			}
			continue
		}
		m := r.Match
		output.PrintMatch(os.Stdout, m.Entry.RelativePath, m.Line, m.Text, m.Binary)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if scanErrors > 0 {
		return fmt.Errorf("%d paths could not be read", scanErrors)
	}
	return nil
}
