package sync

import (
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evan70/fscommander/pkg/fsys"
	"github.com/evan70/fscommander/pkg/logging"
	"github.com/evan70/fscommander/pkg/models"
	"github.com/evan70/fscommander/pkg/output"
)

const defaultWorkers = 5

// Engine turns a tree diff into an executable plan and applies it to
// the destination. The engine is the only component that mutates the
// filesystem, and only for entries present in the plan it was given.
type Engine struct {
	source    fsys.FS
	dest      fsys.FS
	logger    logging.Logger
	formatter output.Formatter
	writer    io.Writer
}

// NewEngine creates a sync engine. Logger and formatter may be nil.
func NewEngine(source, dest fsys.FS, logger logging.Logger, formatter output.Formatter) *Engine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Engine{
		source:    source,
		dest:      dest,
		logger:    logger,
		formatter: formatter,
		writer:    os.Stdout,
	}
}

// SetWriter redirects formatter output. A nil writer silences it.
func (e *Engine) SetWriter(w io.Writer) {
	e.writer = w
}

// Plan resolves the conflict policy over the diff entries and orders
// the resulting actions for safe execution: replacements first, then
// directory creations shallow-first, then file copies, deletions last
// and deepest-first.
func (e *Engine) Plan(diffs []models.DiffEntry, opts models.SyncOptions) (*models.SyncPlan, error) {
	if opts.Policy == "" {
		opts.Policy = models.PolicyPreferSource
	}
	if opts.MaxWorkers == 0 {
		opts.MaxWorkers = defaultWorkers
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	plan := &models.SyncPlan{
		ID:        uuid.New().String(),
		Options:   opts,
		CreatedAt: time.Now(),
	}

	for _, d := range diffs {
		if !d.Actionable() {
			continue
		}
		plan.Entries = append(plan.Entries, resolve(d, opts))
	}

	sortEntries(plan.Entries)
	return plan, nil
}

// resolve maps one diff record to a concrete op under the given policy
func resolve(d models.DiffEntry, opts models.SyncOptions) models.PlanEntry {
	switch d.Classification {
	case models.ClassCreate:
		if d.Source.IsDir() {
			return models.PlanEntry{Diff: d, Op: models.OpMkdir, Reason: "missing in destination"}
		}
		return models.PlanEntry{Diff: d, Op: models.OpCopy, Reason: "missing in destination"}

	case models.ClassUpdate:
		switch opts.Policy {
		case models.PolicyPreferDest:
			return models.PlanEntry{Diff: d, Op: models.OpNone, Reason: "policy keeps destination"}
		case models.PolicyPreferNewer:
			if d.Dest != nil && d.Source != nil && d.Dest.ModTime.After(d.Source.ModTime) {
				return models.PlanEntry{Diff: d, Op: models.OpNone, Reason: "destination is newer"}
			}
		}
		if d.Source.IsSymlink() {
			// Symlinks cannot be rewritten in place, so they are replaced.
			return models.PlanEntry{Diff: d, Op: models.OpReplace, Reason: d.Reason}
		}
		return models.PlanEntry{Diff: d, Op: models.OpCopy, Reason: d.Reason}

	case models.ClassDelete:
		return models.PlanEntry{Diff: d, Op: models.OpDelete, Reason: "missing in source"}

	case models.ClassConflict:
		switch opts.Policy {
		case models.PolicyPreferSource:
			return models.PlanEntry{Diff: d, Op: models.OpReplace, Reason: d.Reason + "; source wins"}
		case models.PolicyPreferDest:
			return models.PlanEntry{Diff: d, Op: models.OpNone, Reason: d.Reason + "; destination kept"}
		case models.PolicyPreferNewer:
			if d.Dest != nil && d.Source != nil && d.Dest.ModTime.After(d.Source.ModTime) {
				return models.PlanEntry{Diff: d, Op: models.OpNone, Reason: d.Reason + "; destination is newer"}
			}
			return models.PlanEntry{Diff: d, Op: models.OpReplace, Reason: d.Reason + "; source wins"}
		default: // PolicyManual
			return models.PlanEntry{Diff: d, Op: models.OpNone, Reason: "manual resolution required"}
		}
	}

	return models.PlanEntry{Diff: d, Op: models.OpNone, Reason: "no action"}
}

// sortEntries orders plan entries for safe execution. Within a phase,
// shallow paths come first, except deletions which go deepest-first so
// children are removed before their parent directory.
func sortEntries(entries []models.PlanEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		pi, pj := phase(entries[i].Op), phase(entries[j].Op)
		if pi != pj {
			return pi < pj
		}

		di := strings.Count(entries[i].Diff.RelativePath, "/")
		dj := strings.Count(entries[j].Diff.RelativePath, "/")
		if di != dj {
			if entries[i].Op == models.OpDelete {
				return di > dj
			}
			return di < dj
		}

		return entries[i].Diff.RelativePath < entries[j].Diff.RelativePath
	})
}

func phase(op models.Op) int {
	switch op {
	case models.OpReplace:
		// Replacements go first: a destination file occupying a
		// conflicted path must be swapped out before directories and
		// files are created beneath it.
		return 1
	case models.OpMkdir:
		return 2
	case models.OpCopy:
		return 3
	case models.OpDelete:
		return 4
	default:
		return 5
	}
}
