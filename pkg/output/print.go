package output

import (
	"fmt"
	"io"
	"path"

	"github.com/fatih/color"

	"github.com/evan70/fscommander/pkg/models"
)

// Renderers for listing and search results. Shared by the CLI commands
// so their output stays consistent.

var (
	dirColor     = color.New(color.FgBlue, color.Bold)
	symlinkColor = color.New(color.FgCyan)
	matchColor   = color.New(color.FgMagenta)
)

// PrintEntry writes one entry, optionally with size and mtime columns
func PrintEntry(w io.Writer, e *models.Entry, long bool) {
	name := colorize(e.Kind, e.RelativePath)
	if !long {
		fmt.Fprintln(w, name)
		return
	}

	kind := "-"
	switch e.Kind {
	case models.KindDir:
		kind = "d"
	case models.KindSymlink:
		kind = "l"
	}
	fmt.Fprintf(w, "%s %10s  %s  %s", kind, FormatBytes(e.Size), e.ModTime.Format("2006-01-02 15:04"), name)
	if e.IsSymlink() && e.LinkTarget != "" {
		fmt.Fprintf(w, " -> %s", e.LinkTarget)
	}
	fmt.Fprintln(w)
}

// PrintMatch writes one search hit in grep-like form
func PrintMatch(w io.Writer, path string, line int, text string, binary bool) {
	switch {
	case binary:
		fmt.Fprintf(w, "%s: binary file matches filter, content skipped\n", matchColor.Sprint(path))
	case line > 0:
		fmt.Fprintf(w, "%s:%d: %s\n", matchColor.Sprint(path), line, text)
	default:
		fmt.Fprintln(w, matchColor.Sprint(path))
	}
}

// PrintTree renders entries produced by a depth-first traversal as an
// indented tree. The input order is trusted; entries must arrive parent
// before child.
func PrintTree(w io.Writer, root string, entries []models.Entry) {
	fmt.Fprintln(w, dirColor.Sprint(root))

	// Group children under their parent so each level knows which
	// sibling is last.
	children := make(map[string][]int)
	for i, e := range entries {
		children[parentOf(e.RelativePath)] = append(children[parentOf(e.RelativePath)], i)
	}

	var render func(parent, prefix string)
	render = func(parent, prefix string) {
		kids := children[parent]
		for n, idx := range kids {
			e := entries[idx]
			connector, childPrefix := "├── ", prefix+"│   "
			if n == len(kids)-1 {
				connector, childPrefix = "└── ", prefix+"    "
			}
			name := colorName(&e)
			if e.IsSymlink() && e.LinkTarget != "" {
				name += " -> " + e.LinkTarget
			}
			fmt.Fprintf(w, "%s%s%s\n", prefix, connector, name)
			if e.IsDir() {
				render(e.RelativePath, childPrefix)
			}
		}
	}
	render(".", "")
}

func colorName(e *models.Entry) string {
	return colorize(e.Kind, path.Base(e.RelativePath))
}

func colorize(kind models.Kind, text string) string {
	switch kind {
	case models.KindDir:
		return dirColor.Sprint(text)
	case models.KindSymlink:
		return symlinkColor.Sprint(text)
	default:
		return text
	}
}

func parentOf(rel string) string {
	return path.Dir(rel)
}
