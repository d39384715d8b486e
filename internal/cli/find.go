package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/evan70/fscommander/pkg/filter"
	"github.com/evan70/fscommander/pkg/fsys"
	"github.com/evan70/fscommander/pkg/models"
	"github.com/evan70/fscommander/pkg/output"
	"github.com/evan70/fscommander/pkg/search"
)

// FindFlags holds find command flags
type FindFlags struct {
	Name      string
	Regex     string
	Size      string
	Type      string
	NewerThan string
	OlderThan string
	Hidden    bool
	Follow    bool
	Exclude   []string
	Long      bool
}

var findFlags FindFlags

// NewFindCommand creates the find command
func NewFindCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find [ROOT]",
		Short: "Find entries matching metadata criteria",
		Long: `Walk a directory tree and print entries matching the given criteria.
All criteria are combined with AND; with none given every entry matches.

Size expressions accept an operator and a unit, e.g. '>1MB' or '<=100KB'.
Time filters accept a duration relative to now ('24h', '30m') or a date
in YYYY-MM-DD form.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runFind,
	}

	cmd.Flags().StringVarP(&findFlags.Name, "name", "n", "", "glob pattern matched against entry names")
	cmd.Flags().StringVar(&findFlags.Regex, "regex", "", "regular expression matched against relative paths")
	cmd.Flags().StringVarP(&findFlags.Size, "size", "s", "", "size expression, e.g. '>1MB'")
	cmd.Flags().StringVarP(&findFlags.Type, "type", "t", "", "entry type: f (file), d (dir), l (symlink)")
	cmd.Flags().StringVar(&findFlags.NewerThan, "newer-than", "", "only entries modified after this time")
	cmd.Flags().StringVar(&findFlags.OlderThan, "older-than", "", "only entries modified before this time")
	cmd.Flags().BoolVar(&findFlags.Hidden, "hidden", false, "include hidden entries")
	cmd.Flags().BoolVar(&findFlags.Follow, "follow", false, "follow symlinks")
	cmd.Flags().StringSliceVar(&findFlags.Exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().BoolVarP(&findFlags.Long, "long", "l", false, "show size and modification time")

	return cmd
}

func runFind(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	spec, err := findSpec()
	if err != nil {
		return err
	}

	fsx, err := fsys.NewLocal(root)
	if err != nil {
		return err
	}

	engine, err := search.New(fsx, search.Options{
		Filter:         spec,
		IncludeHidden:  findFlags.Hidden || cfg.Search.IncludeHidden,
		FollowSymlinks: findFlags.Follow || cfg.Search.FollowSymlinks,
		Exclude:        append(append([]string{}, cfg.Exclude...), findFlags.Exclude...),
	})
	if err != nil {
		return err
	}

	scanErrors := 0
	for r := range engine.Search(ctx) {
		if r.Err != nil {
			scanErrors++
			fmt.Fprintf(os.Stderr, "find: %v\n", r.Err)
			continue
		}
		output.PrintEntry(os.Stdout, &r.Match.Entry, findFlags.Long)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if scanErrors > 0 {
		return fmt.Errorf("%d paths could not be read", scanErrors)
	}
	return nil
}

// findSpec translates the flag set into a filter specification
func findSpec() (filter.Spec, error) {
	spec := filter.Spec{
		Name:      findFlags.Name,
		NameRegex: findFlags.Regex,
	}

	if findFlags.Size != "" {
		if err := applySizeExpr(&spec, findFlags.Size); err != nil {
			return filter.Spec{}, err
		}
	}

	switch findFlags.Type {
	case "":
	case "f":
		spec.Kind = models.KindFile
	case "d":
		spec.Kind = models.KindDir
	case "l":
		spec.Kind = models.KindSymlink
	default:
		return filter.Spec{}, &models.ConfigurationError{
			Field: "type", Message: "must be 'f', 'd' or 'l'",
		}
	}

	if findFlags.NewerThan != "" {
		t, err := parseTimeRef(findFlags.NewerThan)
		if err != nil {
			return filter.Spec{}, err
		}
		spec.ModifiedAfter = &t
	}
	if findFlags.OlderThan != "" {
		t, err := parseTimeRef(findFlags.OlderThan)
		if err != nil {
			return filter.Spec{}, err
		}
		spec.ModifiedBefore = &t
	}
	return spec, nil
}

// parseTimeRef accepts a duration back from now or an absolute date
func parseTimeRef(s string) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(-d), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, &models.ConfigurationError{
		Field: "time filter", Message: fmt.Sprintf("cannot parse %q as duration or date", s),
	}
}
