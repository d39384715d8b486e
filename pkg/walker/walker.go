package walker

import (
	"context"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/evan70/fscommander/pkg/fsys"
	"github.com/evan70/fscommander/pkg/models"
)

// Order selects the traversal strategy
type Order int

const (
	// DepthFirst is pre-order depth-first traversal (default)
	DepthFirst Order = iota
	// BreadthFirst visits all entries of a level before descending
	BreadthFirst
)

// Options configures a walk
type Options struct {
	// Order is the traversal order
	Order Order

	// IncludeHidden includes entries whose base name starts with a dot.
	// Hidden directories are not descended into when false.
	IncludeHidden bool

	// FollowSymlinks resolves symlinks to their targets and descends
	// into symlinked directories. A visited set guards against cycles.
	FollowSymlinks bool
}

// WalkError is a recovered per-entry traversal failure. The walk
// continues past it.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return "walk " + e.Path + ": " + e.Err.Error()
}

func (e *WalkError) Unwrap() error {
	return e.Err
}

// Event is one element of the walk sequence: either an entry or a
// recovered error, never both.
type Event struct {
	Entry *models.Entry
	Err   *WalkError
}

// Walk lazily produces the entries under the filesystem root. Entries
// within each directory are emitted in lexicographic name order, so
// repeated walks of an unmodified tree yield identical sequences. The
// root itself is not emitted. The returned channel is closed when the
// traversal finishes or ctx is cancelled.
func Walk(ctx context.Context, fsx fsys.FS, opts Options) <-chan Event {
	ch := make(chan Event)
	w := &walker{
		fsx:     fsx,
		opts:    opts,
		ch:      ch,
		visited: map[string]bool{".": true},
	}
	go func() {
		defer close(ch)
		if opts.Order == BreadthFirst {
			w.walkBreadth(ctx)
			return
		}
		w.walkDepth(ctx, dirFrame{rel: ".", canon: "."})
	}()
	return ch
}

// Collect drains a walk into entry and error slices. Convenience for
// callers that do not need streaming.
func Collect(ctx context.Context, fsx fsys.FS, opts Options) ([]models.Entry, []WalkError) {
	var entries []models.Entry
	var errs []WalkError
	for ev := range Walk(ctx, fsx, opts) {
		if ev.Err != nil {
			errs = append(errs, *ev.Err)
			continue
		}
		entries = append(entries, *ev.Entry)
	}
	return entries, errs
}

// dirFrame tracks one directory during traversal. canon is the
// symlink-resolved identity used by the cycle guard; it differs from
// rel only below a followed symlink.
type dirFrame struct {
	rel   string
	canon string
}

type walker struct {
	fsx     fsys.FS
	opts    Options
	ch      chan Event
	visited map[string]bool
}

// send delivers an event, honoring cancellation. Returns false when the
// walk should stop.
func (w *walker) send(ctx context.Context, ev Event) bool {
	select {
	case <-ctx.Done():
		return false
	case w.ch <- ev:
		return true
	}
}

func (w *walker) sendError(ctx context.Context, relPath string, err error) bool {
	return w.send(ctx, Event{Err: &WalkError{Path: relPath, Err: err}})
}

// child pairs an emitted entry with the frame needed to descend into it
type child struct {
	entry models.Entry
	frame dirFrame
	dir   bool
}

// readChildren lists a directory sorted by name, applying the hidden
// filter and building entry snapshots.
func (w *walker) readChildren(ctx context.Context, d dirFrame) ([]child, bool) {
	infos, err := w.fsx.ReadDir(d.rel)
	if err != nil {
		return nil, w.sendError(ctx, d.rel, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	children := make([]child, 0, len(infos))
	for _, info := range infos {
		if !w.opts.IncludeHidden && strings.HasPrefix(info.Name(), ".") {
			continue
		}
		rel := childPath(d.rel, info.Name())
		c, ok := w.snapshot(ctx, d, rel, info)
		if !ok {
			continue
		}
		children = append(children, c)
	}
	return children, true
}

// snapshot builds the immutable entry for one directory child. For
// symlinks under FollowSymlinks the target metadata is used instead,
// and the cycle guard decides whether the directory may be descended.
func (w *walker) snapshot(ctx context.Context, parent dirFrame, rel string, info os.FileInfo) (child, bool) {
	name := path.Base(rel)
	entry := models.Entry{
		Path:         joinRoot(w.fsx.Root(), rel),
		RelativePath: rel,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
	}
	canon := childPath(parent.canon, name)

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := w.fsx.Readlink(rel)
		if err == nil {
			entry.LinkTarget = target
		}
		if !w.opts.FollowSymlinks {
			entry.Kind = models.KindSymlink
			entry.Size = 0
			return child{entry: entry}, true
		}
		resolved, err := w.fsx.Stat(rel)
		if err != nil {
			w.sendError(ctx, rel, err)
			return child{}, false
		}
		entry.ModTime = resolved.ModTime()
		if !resolved.IsDir() {
			entry.Kind = models.KindFile
			entry.Size = resolved.Size()
			return child{entry: entry}, true
		}
		entry.Kind = models.KindDir
		entry.Size = 0
		canon = resolveTarget(parent.canon, entry.LinkTarget)
		if w.visited[canon] {
			if !w.send(ctx, Event{Entry: &entry}) {
				return child{}, false
			}
			w.sendError(ctx, rel, errCycle(entry.LinkTarget))
			return child{}, false
		}
		w.visited[canon] = true
		return child{entry: entry, frame: dirFrame{rel: rel, canon: canon}, dir: true}, true
	case info.IsDir():
		entry.Kind = models.KindDir
		entry.Size = 0
		w.visited[canon] = true
		return child{entry: entry, frame: dirFrame{rel: rel, canon: canon}, dir: true}, true
	default:
		entry.Kind = models.KindFile
		return child{entry: entry}, true
	}
}

func (w *walker) walkDepth(ctx context.Context, d dirFrame) bool {
	children, ok := w.readChildren(ctx, d)
	if !ok {
		return false
	}
	for i := range children {
		c := &children[i]
		if !w.send(ctx, Event{Entry: &c.entry}) {
			return false
		}
		if c.dir {
			if !w.walkDepth(ctx, c.frame) {
				return false
			}
		}
	}
	return true
}

func (w *walker) walkBreadth(ctx context.Context) {
	queue := []dirFrame{{rel: ".", canon: "."}}
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]

		children, ok := w.readChildren(ctx, d)
		if !ok {
			return
		}
		for i := range children {
			c := &children[i]
			if !w.send(ctx, Event{Entry: &c.entry}) {
				return
			}
			if c.dir {
				queue = append(queue, c.frame)
			}
		}
	}
}

func childPath(dir, name string) string {
	if dir == "." {
		return name
	}
	return dir + "/" + name
}

// resolveTarget canonicalizes a symlink target against the resolved
// parent directory so that two routes to the same directory collide in
// the visited set.
func resolveTarget(parentCanon, target string) string {
	if path.IsAbs(target) {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(parentCanon, target))
}

func joinRoot(root, rel string) string {
	return strings.TrimSuffix(root, "/") + "/" + rel
}

type errCycle string

func (e errCycle) Error() string {
	return "symlink loops back to a visited directory: " + string(e)
}
