package search

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"regexp"

	"github.com/evan70/fscommander/pkg/filter"
	"github.com/evan70/fscommander/pkg/fsys"
	"github.com/evan70/fscommander/pkg/models"
	"github.com/evan70/fscommander/pkg/walker"
)

const (
	// sniffSize is how much of a file is inspected for the null-byte
	// binary heuristic
	sniffSize = 8 * 1024
	// maxLineSize bounds memory per scanned line
	maxLineSize = 1024 * 1024
)

// Options configures a search
type Options struct {
	// Filter is the metadata predicate applied to every entry
	Filter filter.Spec

	// ContentPattern is a regular expression scanned for inside matching
	// regular files. Empty means metadata-only search.
	ContentPattern string

	// IgnoreCase makes the content pattern case-insensitive
	IgnoreCase bool

	// FilesOnly stops scanning a file at its first content match and
	// emits a single file-level record instead of per-line matches
	FilesOnly bool

	// IncludeHidden, FollowSymlinks and Exclude configure the traversal
	IncludeHidden  bool
	FollowSymlinks bool
	Exclude        []string
}

// Match is one structured search hit
type Match struct {
	// Entry is the matched filesystem entry
	Entry models.Entry

	// Line is the 1-based line number for content matches, 0 for
	// file-level records
	Line int

	// Text is the matching line, without its trailing newline
	Text string

	// Binary marks a file that passed the filter but was skipped by the
	// binary heuristic during content search
	Binary bool
}

// Result is one element of the lazy search sequence
type Result struct {
	Match *Match
	Err   *walker.WalkError
}

// Engine composes the walker and the path filter, optionally scanning
// matched file contents. Single-pass: each Search call re-walks.
type Engine struct {
	fsx    fsys.FS
	opts   Options
	filter *filter.Filter
	re     *regexp.Regexp
}

// New compiles the filter and content pattern. Compilation failure is a
// configuration error reported here, before any traversal begins.
func New(fsx fsys.FS, opts Options) (*Engine, error) {
	f, err := opts.Filter.Compile()
	if err != nil {
		return nil, err
	}

	var re *regexp.Regexp
	if opts.ContentPattern != "" {
		pattern := opts.ContentPattern
		if opts.IgnoreCase {
			pattern = "(?i)" + pattern
		}
		re, err = regexp.Compile(pattern)
		if err != nil {
			return nil, &models.ConfigurationError{Field: "content pattern", Message: err.Error()}
		}
	}

	return &Engine{fsx: fsx, opts: opts, filter: f, re: re}, nil
}

// Search lazily yields match records. The channel is closed when the
// traversal finishes or ctx is cancelled.
func (e *Engine) Search(ctx context.Context) <-chan Result {
	ch := make(chan Result)
	go func() {
		defer close(ch)

		events := walker.Walk(ctx, e.fsx, walker.Options{
			Order:          walker.DepthFirst,
			IncludeHidden:  e.opts.IncludeHidden,
			FollowSymlinks: e.opts.FollowSymlinks,
		})

		for ev := range events {
			if ev.Err != nil {
				if !send(ctx, ch, Result{Err: ev.Err}) {
					return
				}
				continue
			}
			entry := ev.Entry
			if filter.MatchesAny(e.opts.Exclude, entry.RelativePath) {
				continue
			}
			if !e.filter.Matches(entry) {
				continue
			}

			if e.re == nil {
				if !send(ctx, ch, Result{Match: &Match{Entry: *entry}}) {
					return
				}
				continue
			}

			// Content search applies to regular files only.
			if !entry.IsFile() {
				continue
			}
			if !e.scanFile(ctx, ch, entry) {
				return
			}
		}
	}()
	return ch
}

// scanFile streams one file through the content pattern. The file
// handle is released before the next entry is processed. Returns false
// when the search should stop.
func (e *Engine) scanFile(ctx context.Context, ch chan<- Result, entry *models.Entry) bool {
	f, err := e.fsx.Open(entry.RelativePath)
	if err != nil {
		return send(ctx, ch, Result{Err: &walker.WalkError{Path: entry.RelativePath, Err: err}})
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, sniffSize)
	head, err := reader.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return send(ctx, ch, Result{Err: &walker.WalkError{Path: entry.RelativePath, Err: err}})
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return send(ctx, ch, Result{Match: &Match{Entry: *entry, Binary: true}})
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if !e.re.MatchString(text) {
			continue
		}
		if e.opts.FilesOnly {
			// One hit is enough; stop reading the rest of the file.
			return send(ctx, ch, Result{Match: &Match{Entry: *entry}})
		}
		if !send(ctx, ch, Result{Match: &Match{Entry: *entry, Line: line, Text: text}}) {
			return false
		}
	}
	if err := scanner.Err(); err != nil {
		return send(ctx, ch, Result{Err: &walker.WalkError{Path: entry.RelativePath, Err: err}})
	}
	return true
}

func send(ctx context.Context, ch chan<- Result, r Result) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- r:
		return true
	}
}
