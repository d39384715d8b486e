package diff

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evan70/fscommander/pkg/filter"
	"github.com/evan70/fscommander/pkg/fsys"
	"github.com/evan70/fscommander/pkg/models"
	"github.com/evan70/fscommander/pkg/walker"
)

// Options configures a tree diff
type Options struct {
	// DeleteExtraneous includes Delete records for destination-only
	// entries. When false those entries are omitted entirely, keeping
	// the default sync conservative and additive-only.
	DeleteExtraneous bool

	// VerifyHash forces a content hash comparison for file pairs even
	// when size and modification time agree, trading performance for
	// certainty against clock skew or coarse timestamps.
	VerifyHash bool

	// Algorithm selects the content hash (default xxhash)
	Algorithm Algorithm

	// ModTimeTolerance treats timestamps within one reporting unit of
	// each other as equal. Defaults to one second, the coarsest common
	// filesystem resolution.
	ModTimeTolerance time.Duration

	// IncludeHidden walks dot-entries too
	IncludeHidden bool

	// FollowSymlinks resolves symlinks during both walks
	FollowSymlinks bool

	// Exclude drops matching relative paths from both sides
	Exclude []string
}

// Result is one completed diff pass. Entries never contains two records
// for the same relative path, and producing it never mutates either
// filesystem.
type Result struct {
	// Entries is the classified delta in walk order
	Entries []models.DiffEntry

	// SourceErrors and DestErrors are recovered traversal failures
	SourceErrors []walker.WalkError
	DestErrors   []walker.WalkError
}

// Tree walks both roots and produces the classified delta between them.
// Both walks emit sorted sequences, so the two streams are combined by
// a single linear merge instead of an n-squared comparison.
func Tree(ctx context.Context, source, dest fsys.FS, opts Options) (*Result, error) {
	if opts.ModTimeTolerance <= 0 {
		opts.ModTimeTolerance = time.Second
	}

	walkOpts := walker.Options{
		Order:          walker.DepthFirst,
		IncludeHidden:  opts.IncludeHidden,
		FollowSymlinks: opts.FollowSymlinks,
	}

	result := &Result{}
	hasher := NewHasher(opts.Algorithm)

	src := &stream{
		events:  walker.Walk(ctx, source, walkOpts),
		errs:    &result.SourceErrors,
		exclude: opts.Exclude,
	}
	dst := &stream{
		events:  walker.Walk(ctx, dest, walkOpts),
		errs:    &result.DestErrors,
		exclude: opts.Exclude,
	}

	se := src.next()
	de := dst.next()
	for se != nil || de != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		switch {
		case de == nil || (se != nil && pathLess(se.RelativePath, de.RelativePath)):
			result.Entries = append(result.Entries, models.DiffEntry{
				RelativePath:   se.RelativePath,
				Classification: models.ClassCreate,
				Source:         se,
			})
			se = src.next()

		case se == nil || pathLess(de.RelativePath, se.RelativePath):
			if opts.DeleteExtraneous {
				result.Entries = append(result.Entries, models.DiffEntry{
					RelativePath:   de.RelativePath,
					Classification: models.ClassDelete,
					Dest:           de,
				})
			}
			de = dst.next()

		default:
			entry, err := classifyPair(ctx, source, dest, hasher, se, de, &opts)
			if err != nil {
				return nil, err
			}
			result.Entries = append(result.Entries, entry)
			se = src.next()
			de = dst.next()
		}
	}

	return result, nil
}

// classifyPair compares one relative path present in both trees
func classifyPair(ctx context.Context, source, dest fsys.FS, hasher *Hasher, se, de *models.Entry, opts *Options) (models.DiffEntry, error) {
	entry := models.DiffEntry{
		RelativePath: se.RelativePath,
		Source:       se,
		Dest:         de,
	}

	if se.Kind != de.Kind {
		entry.Classification = models.ClassConflict
		entry.ConflictReason = models.ConflictKindMismatch
		entry.Reason = fmt.Sprintf("source is a %s, destination is a %s", se.Kind, de.Kind)
		return entry, nil
	}

	switch se.Kind {
	case models.KindDir:
		// Directories are compared by presence only, never by content.
		entry.Classification = models.ClassUnchanged

	case models.KindSymlink:
		if se.LinkTarget == de.LinkTarget {
			entry.Classification = models.ClassUnchanged
		} else {
			entry.Classification = models.ClassUpdate
			entry.Reason = "symlink target differs"
		}

	default:
		cheapEqual := se.Size == de.Size && timesEqual(se.ModTime, de.ModTime, opts.ModTimeTolerance)
		if !opts.VerifyHash {
			if cheapEqual {
				entry.Classification = models.ClassUnchanged
			} else {
				entry.Classification = models.ClassUpdate
				entry.Reason = updateReason(se, de)
			}
			return entry, nil
		}

		if se.Size != de.Size {
			entry.Classification = models.ClassUpdate
			entry.Reason = updateReason(se, de)
			return entry, nil
		}

		srcHash, err := hasher.Sum(ctx, source, se.RelativePath)
		if err != nil {
			if ctx.Err() != nil {
				return entry, ctx.Err()
			}
			// Unreadable content is treated as divergent rather than
			// aborting the whole pass.
			entry.Classification = models.ClassUpdate
			entry.Reason = "failed to hash source: " + err.Error()
			return entry, nil
		}
		dstHash, err := hasher.Sum(ctx, dest, de.RelativePath)
		if err != nil {
			if ctx.Err() != nil {
				return entry, ctx.Err()
			}
			entry.Classification = models.ClassUpdate
			entry.Reason = "failed to hash destination: " + err.Error()
			return entry, nil
		}
		se.Hash = srcHash
		de.Hash = dstHash

		if srcHash == dstHash {
			entry.Classification = models.ClassUnchanged
		} else {
			entry.Classification = models.ClassUpdate
			entry.Reason = "content hashes differ"
		}
	}

	return entry, nil
}

func updateReason(se, de *models.Entry) string {
	if se.Size != de.Size {
		return fmt.Sprintf("size differs (source: %d, dest: %d)", se.Size, de.Size)
	}
	return fmt.Sprintf("modification time differs (source: %s, dest: %s)",
		se.ModTime.Format(time.RFC3339), de.ModTime.Format(time.RFC3339))
}

// timesEqual treats timestamps within one tolerance unit as equal, so
// granularity-limited filesystems do not produce spurious updates.
func timesEqual(a, b time.Time, tolerance time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

// stream pulls entries from a walk, collecting recovered errors and
// dropping excluded paths.
type stream struct {
	events  <-chan walker.Event
	errs    *[]walker.WalkError
	exclude []string
}

func (s *stream) next() *models.Entry {
	for ev := range s.events {
		if ev.Err != nil {
			*s.errs = append(*s.errs, *ev.Err)
			continue
		}
		if filter.MatchesAny(s.exclude, ev.Entry.RelativePath) {
			continue
		}
		return ev.Entry
	}
	return nil
}

// pathLess orders relative paths the way a sorted pre-order walk emits
// them. Plain string comparison is wrong here: "a.txt" < "a/b" as
// strings, but the walk emits the whole "a" subtree before "a.txt".
// Comparing segment-wise restores the walk order.
func pathLess(a, b string) bool {
	for {
		ai := strings.IndexByte(a, '/')
		bi := strings.IndexByte(b, '/')

		asegment, bsegment := a, b
		if ai >= 0 {
			asegment = a[:ai]
		}
		if bi >= 0 {
			bsegment = b[:bi]
		}
		if asegment != bsegment {
			return asegment < bsegment
		}
		if ai < 0 || bi < 0 {
			return ai < 0 && bi >= 0
		}
		a = a[ai+1:]
		b = b[bi+1:]
	}
}
