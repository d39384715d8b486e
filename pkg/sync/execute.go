package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/evan70/fscommander/pkg/logging"
	"github.com/evan70/fscommander/pkg/models"
	"github.com/evan70/fscommander/pkg/output"
)

// Execute applies a plan against the destination and reports per-entry
// outcomes. A failing entry never cancels the batch: it is recorded in
// the result and execution moves on. Replacements and directory
// creations run first, file transfers run on a bounded worker pool,
// deletions run last. Cancellation is honored between entries, never
// mid-file.
func (e *Engine) Execute(ctx context.Context, plan *models.SyncPlan) (*models.SyncResult, error) {
	start := time.Now()
	result := &models.SyncResult{
		PlanID:    plan.ID,
		DryRun:    plan.Options.DryRun,
		StartTime: start,
	}

	e.logger.Info(ctx, "executing sync plan", logging.Fields{
		"plan_id": plan.ID,
		"entries": len(plan.Entries),
		"dry_run": plan.Options.DryRun,
		"policy":  string(plan.Options.Policy),
	})

	if e.formatter != nil {
		var totalBytes int64
		for _, entry := range plan.Entries {
			if entry.Op != models.OpCopy && entry.Op != models.OpReplace {
				continue
			}
			if entry.Diff.Source != nil && entry.Diff.Source.IsFile() {
				totalBytes += entry.Diff.Source.Size
			}
		}
		e.formatter.Start(e.writer, len(plan.Entries), totalBytes)
	}

	outcomes := make([]models.EntryOutcome, len(plan.Entries))

	if plan.Options.DryRun {
		e.executeDry(ctx, plan, outcomes)
	} else {
		e.executeReal(ctx, plan, outcomes)
	}

	for _, o := range outcomes {
		if o.Status == "" {
			// Entry was never reached (cancellation).
			continue
		}
		result.Record(o)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	e.logger.Info(ctx, "sync plan finished", logging.Fields{
		"plan_id":  plan.ID,
		"applied":  result.Applied,
		"skipped":  result.Skipped,
		"failed":   result.Failed,
		"bytes":    result.BytesTransferred,
		"duration": result.Duration.String(),
	})

	if e.formatter != nil {
		e.formatter.Complete(result)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// executeDry computes the outcome every entry would have, mutating nothing
func (e *Engine) executeDry(ctx context.Context, plan *models.SyncPlan, outcomes []models.EntryOutcome) {
	for i, entry := range plan.Entries {
		if ctx.Err() != nil {
			return
		}
		o := baseOutcome(&entry)
		if entry.Op == models.OpNone {
			o.Status = models.StatusSkipped
		} else {
			o.Status = models.StatusWouldApply
			if entry.Diff.Source != nil && entry.Diff.Source.IsFile() {
				o.BytesCopied = entry.Diff.Source.Size
			}
		}
		outcomes[i] = o
	}
}

func (e *Engine) executeReal(ctx context.Context, plan *models.SyncPlan, outcomes []models.EntryOutcome) {
	// Phase 1: replacements, serial. A replace can swap a destination
	// file for a directory that later mkdirs and copies land inside, so
	// these must settle before anything is created beneath them.
	for i, entry := range plan.Entries {
		if entry.Op != models.OpReplace {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		outcomes[i] = e.applyEntry(ctx, &plan.Entries[i], i, len(plan.Entries))
	}

	// Phase 2: directories, shallow-first. Cheap and idempotent, so
	// these stay serial.
	for i, entry := range plan.Entries {
		if entry.Op != models.OpMkdir {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		outcomes[i] = e.applyEntry(ctx, &plan.Entries[i], i, len(plan.Entries))
	}

	// Phase 3: copies on a bounded worker pool. Paths are unique within
	// a plan, so no two workers touch the same destination entry; parent
	// directories already exist.
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, plan.Options.MaxWorkers)
	for i, entry := range plan.Entries {
		switch entry.Op {
		case models.OpCopy:
		case models.OpNone:
			o := baseOutcome(&plan.Entries[i])
			o.Status = models.StatusSkipped
			outcomes[i] = o
			continue
		default:
			continue
		}

		if ctx.Err() != nil {
			break
		}
		semaphore <- struct{}{}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-semaphore }()
			outcomes[idx] = e.applyEntry(ctx, &plan.Entries[idx], idx, len(plan.Entries))
		}(i)
	}
	wg.Wait()

	// Phase 4: deletions, deepest-first, after all transfers settled.
	for i, entry := range plan.Entries {
		if entry.Op != models.OpDelete {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		outcomes[i] = e.applyEntry(ctx, &plan.Entries[i], i, len(plan.Entries))
	}
}

// applyEntry performs one mutation and reports its outcome
func (e *Engine) applyEntry(ctx context.Context, entry *models.PlanEntry, index, total int) models.EntryOutcome {
	start := time.Now()
	o := baseOutcome(entry)

	if e.formatter != nil {
		e.formatter.Progress(output.ProgressUpdate{
			Type:  "entry_start",
			Path:  entry.Diff.RelativePath,
			Op:    entry.Op,
			Index: index + 1,
			Total: total,
		})
	}

	bytes, err := e.apply(ctx, entry)
	o.Duration = time.Since(start)
	if err != nil {
		o.Status = models.StatusFailed
		o.Error = err.Error()
		e.logger.Error(ctx, "failed to apply sync entry", err, logging.Fields{
			"path": entry.Diff.RelativePath,
			"op":   string(entry.Op),
		})
		if e.formatter != nil {
			e.formatter.Progress(output.ProgressUpdate{
				Type:  "entry_error",
				Path:  entry.Diff.RelativePath,
				Op:    entry.Op,
				Index: index + 1,
				Total: total,
				Error: err,
			})
		}
		return o
	}

	o.Status = models.StatusApplied
	o.BytesCopied = bytes
	e.logger.Debug(ctx, "applied sync entry", logging.Fields{
		"path":  entry.Diff.RelativePath,
		"op":    string(entry.Op),
		"bytes": bytes,
	})
	if e.formatter != nil {
		e.formatter.Progress(output.ProgressUpdate{
			Type:         "entry_complete",
			Path:         entry.Diff.RelativePath,
			Op:           entry.Op,
			BytesWritten: bytes,
			Index:        index + 1,
			Total:        total,
		})
	}
	return o
}

// apply dispatches one op against the destination
func (e *Engine) apply(ctx context.Context, entry *models.PlanEntry) (int64, error) {
	path := entry.Diff.RelativePath

	switch entry.Op {
	case models.OpMkdir:
		return 0, e.dest.MkdirAll(path)

	case models.OpReplace:
		if err := e.dest.RemoveAll(path); err != nil {
			return 0, fmt.Errorf("failed to clear destination: %w", err)
		}
		return e.copyEntry(ctx, entry.Diff.Source)

	case models.OpCopy:
		return e.copyEntry(ctx, entry.Diff.Source)

	case models.OpDelete:
		return 0, e.dest.RemoveAll(path)
	}

	return 0, nil
}

// copyEntry materializes one source entry at the same relative path in
// the destination. Files are staged to a temporary file and renamed
// into place so a failure mid-write leaves any prior destination file
// intact.
func (e *Engine) copyEntry(ctx context.Context, src *models.Entry) (int64, error) {
	switch src.Kind {
	case models.KindDir:
		return 0, e.dest.MkdirAll(src.RelativePath)

	case models.KindSymlink:
		return 0, e.dest.Symlink(src.LinkTarget, src.RelativePath)

	default:
		reader, err := e.source.Open(src.RelativePath)
		if err != nil {
			return 0, fmt.Errorf("failed to read source: %w", err)
		}
		defer reader.Close()

		if err := e.dest.WriteFileAtomic(src.RelativePath, reader, src.ModTime); err != nil {
			return 0, err
		}
		return src.Size, nil
	}
}

func baseOutcome(entry *models.PlanEntry) models.EntryOutcome {
	return models.EntryOutcome{
		RelativePath:   entry.Diff.RelativePath,
		Classification: entry.Diff.Classification,
		Op:             entry.Op,
		Reason:         entry.Reason,
	}
}
