package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evan70/fscommander/pkg/filter"
	"github.com/evan70/fscommander/pkg/fsys"
	"github.com/evan70/fscommander/pkg/models"
)

func buildFixture(t *testing.T) *fsys.Memory {
	t.Helper()

	m := fsys.NewMemory()
	mtime := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	files := map[string]string{
		"notes.txt":      "first line\nsecond line with TODO\nthird line",
		"docs/plan.md":   "TODO at the top\nplain text\nanother TODO here",
		"docs/done.md":   "nothing to see",
		"src/main.go":    "package main\n// TODO implement\n",
		"image.bin":      "header\x00binary payload",
		".hidden/secret": "TODO hidden",
	}
	for name, content := range files {
		if err := m.WriteFile(name, content, mtime); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}
	return m
}

func collect(t *testing.T, e *Engine) (matches []Match, errs []error) {
	t.Helper()
	for r := range e.Search(context.Background()) {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		matches = append(matches, *r.Match)
	}
	return matches, errs
}

func TestSearchContentWithLineNumbers(t *testing.T) {
	m := buildFixture(t)

	e, err := New(m, Options{ContentPattern: "TODO", Filter: filter.Spec{Name: "*.txt"}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	matches, errs := collect(t, e)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
	}
	m0 := matches[0]
	if m0.Entry.RelativePath != "notes.txt" {
		t.Errorf("match path = %s", m0.Entry.RelativePath)
	}
	if m0.Line != 2 {
		t.Errorf("match line = %d, want 2", m0.Line)
	}
	if m0.Text != "second line with TODO" {
		t.Errorf("match text = %q", m0.Text)
	}
}

func TestSearchMultipleMatchesPerFile(t *testing.T) {
	m := buildFixture(t)

	e, err := New(m, Options{ContentPattern: "TODO", Filter: filter.Spec{Name: "*.md"}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	matches, _ := collect(t, e)
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(matches), matches)
	}
	if matches[0].Line != 1 || matches[1].Line != 3 {
		t.Errorf("lines = %d, %d, want 1, 3", matches[0].Line, matches[1].Line)
	}
}

func TestSearchFilesOnly(t *testing.T) {
	m := buildFixture(t)

	e, err := New(m, Options{ContentPattern: "TODO", FilesOnly: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	matches, _ := collect(t, e)
	seen := map[string]int{}
	for _, match := range matches {
		if match.Binary {
			continue
		}
		seen[match.Entry.RelativePath]++
		if match.Line != 0 {
			t.Errorf("files-only match carries line %d", match.Line)
		}
	}
	for path, n := range seen {
		if n != 1 {
			t.Errorf("%s reported %d times, want 1", path, n)
		}
	}
	if len(seen) != 3 { // notes.txt, docs/plan.md, src/main.go
		t.Errorf("got %d matching files, want 3: %v", len(seen), seen)
	}
}

func TestSearchIgnoreCase(t *testing.T) {
	m := fsys.NewMemory()
	if err := m.WriteFile("f.txt", "Mixed CASE content", time.Now()); err != nil {
		t.Fatal(err)
	}

	e, err := New(m, Options{ContentPattern: "mixed case"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if matches, _ := collect(t, e); len(matches) != 0 {
		t.Error("case-sensitive search should not match")
	}

	e, err = New(m, Options{ContentPattern: "mixed case", IgnoreCase: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if matches, _ := collect(t, e); len(matches) != 1 {
		t.Error("case-insensitive search should match")
	}
}

func TestSearchSkipsBinaryFiles(t *testing.T) {
	m := buildFixture(t)

	e, err := New(m, Options{ContentPattern: "payload"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	matches, _ := collect(t, e)
	for _, match := range matches {
		if match.Entry.RelativePath == "image.bin" {
			if !match.Binary {
				t.Error("binary file matched by content instead of being flagged")
			}
			if match.Line != 0 || match.Text != "" {
				t.Errorf("binary match carries content: %+v", match)
			}
		}
	}
}

func TestSearchMetadataOnly(t *testing.T) {
	m := buildFixture(t)

	// No content pattern: every entry passing the filter is a match,
	// directories included.
	e, err := New(m, Options{Filter: filter.Spec{NameRegex: "^docs"}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	matches, _ := collect(t, e)
	want := map[string]bool{"docs": true, "docs/plan.md": true, "docs/done.md": true}
	if len(matches) != len(want) {
		t.Fatalf("got %d matches, want %d: %+v", len(matches), len(want), matches)
	}
	for _, match := range matches {
		if !want[match.Entry.RelativePath] {
			t.Errorf("unexpected match %s", match.Entry.RelativePath)
		}
	}
}

func TestSearchSkipsHiddenByDefault(t *testing.T) {
	m := buildFixture(t)

	e, err := New(m, Options{ContentPattern: "TODO"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	matches, _ := collect(t, e)
	for _, match := range matches {
		if match.Entry.RelativePath == ".hidden/secret" {
			t.Error("hidden file searched without IncludeHidden")
		}
	}

	e, err = New(m, Options{ContentPattern: "TODO", IncludeHidden: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	matches, _ = collect(t, e)
	found := false
	for _, match := range matches {
		if match.Entry.RelativePath == ".hidden/secret" {
			found = true
		}
	}
	if !found {
		t.Error("hidden file not searched with IncludeHidden")
	}
}

func TestSearchExclude(t *testing.T) {
	m := buildFixture(t)

	e, err := New(m, Options{ContentPattern: "TODO", Exclude: []string{"docs/**", "*.go"}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	matches, _ := collect(t, e)
	for _, match := range matches {
		if match.Binary {
			continue
		}
		if match.Entry.RelativePath != "notes.txt" {
			t.Errorf("excluded path matched: %s", match.Entry.RelativePath)
		}
	}
}

func TestSearchInvalidPatternFailsFast(t *testing.T) {
	m := fsys.NewMemory()

	_, err := New(m, Options{ContentPattern: "("})
	if err == nil {
		t.Fatal("invalid regex should fail at construction")
	}
	var cfgErr *models.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error type = %T, want *models.ConfigurationError", err)
	}

	_, err = New(m, Options{Filter: filter.Spec{Name: "[bad"}})
	if err == nil {
		t.Fatal("invalid filter glob should fail at construction")
	}
}
