package models

import (
	"time"
)

// ConflictPolicy defines how conflicting entries are resolved
type ConflictPolicy string

const (
	// PolicyPreferSource overwrites the destination unconditionally
	PolicyPreferSource ConflictPolicy = "prefer-source"
	// PolicyPreferDest keeps the destination version
	PolicyPreferDest ConflictPolicy = "prefer-dest"
	// PolicyPreferNewer lets the newer modification time win; equal times
	// fall back to PolicyPreferSource
	PolicyPreferNewer ConflictPolicy = "prefer-newer"
	// PolicyManual surfaces the conflict to the caller without acting
	PolicyManual ConflictPolicy = "manual"
)

// ParseConflictPolicy converts a user-supplied policy name
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(s) {
	case PolicyPreferSource, PolicyPreferDest, PolicyPreferNewer, PolicyManual:
		return ConflictPolicy(s), nil
	default:
		return "", &ConfigurationError{
			Field:   "on-conflict",
			Message: "unknown policy " + s + " (use: prefer-source, prefer-dest, prefer-newer, manual)",
		}
	}
}

// Op is the concrete mutation a plan entry performs against the destination
type Op string

const (
	// OpMkdir creates a directory
	OpMkdir Op = "mkdir"
	// OpCopy writes a new file or symlink
	OpCopy Op = "copy"
	// OpReplace removes the destination entry first, then copies the source
	// (kind mismatch resolution)
	OpReplace Op = "replace"
	// OpDelete removes the destination entry
	OpDelete Op = "delete"
	// OpNone performs no mutation (skipped or unresolved entries)
	OpNone Op = "none"
)

// SyncOptions holds the global options for one sync invocation
type SyncOptions struct {
	// DryRun computes outcomes without mutating the destination
	DryRun bool

	// DeleteExtraneous removes destination entries absent from the source
	DeleteExtraneous bool

	// Policy resolves conflicting entries
	Policy ConflictPolicy

	// MaxWorkers bounds concurrent file transfers
	MaxWorkers int
}

// Validate checks the options
func (o *SyncOptions) Validate() error {
	if _, err := ParseConflictPolicy(string(o.Policy)); err != nil {
		return err
	}
	if o.MaxWorkers < 1 {
		return &ValidationError{Field: "MaxWorkers", Message: "must be at least 1"}
	}
	return nil
}

// PlanEntry pairs a diff record with the mutation chosen for it
type PlanEntry struct {
	// Diff is the classified delta this entry acts on
	Diff DiffEntry

	// Op is the resolved mutation
	Op Op

	// Reason explains the chosen op (policy outcome, skip reason)
	Reason string
}

// SyncPlan is the ordered set of actions one sync invocation performs.
// Created once per invocation and discarded after execution.
type SyncPlan struct {
	// ID identifies the invocation in logs and reports
	ID string

	// Entries are ordered for safe execution: replacements, then mkdirs
	// shallow-first, then file copies, deletes last and deepest-first
	Entries []PlanEntry

	// Options are the global sync options the plan was built with
	Options SyncOptions

	// CreatedAt is when the plan was built
	CreatedAt time.Time
}

// Conflicts returns the unresolved conflict entries (manual policy)
func (p *SyncPlan) Conflicts() []PlanEntry {
	var out []PlanEntry
	for _, e := range p.Entries {
		if e.Diff.Classification == ClassConflict && e.Op == OpNone {
			out = append(out, e)
		}
	}
	return out
}
