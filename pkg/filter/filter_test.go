package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/evan70/fscommander/pkg/models"
)

func entry(rel string, kind models.Kind, size int64, mtime time.Time) *models.Entry {
	return &models.Entry{
		Path:         "/root/" + rel,
		RelativePath: rel,
		Kind:         kind,
		Size:         size,
		ModTime:      mtime,
	}
}

func int64p(v int64) *int64 { return &v }

func timep(t time.Time) *time.Time { return &t }

func TestZeroSpecMatchesEverything(t *testing.T) {
	f := MustCompile(Spec{})

	now := time.Now()
	cases := []*models.Entry{
		entry("file.txt", models.KindFile, 10, now),
		entry("dir", models.KindDir, 0, now),
		entry("link", models.KindSymlink, 0, now),
		entry("deep/nested/path.bin", models.KindFile, 1<<30, now),
	}
	for _, e := range cases {
		if !f.Matches(e) {
			t.Errorf("zero spec rejected %s", e.RelativePath)
		}
	}
}

func TestGlobAnchoring(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		pattern string
		rel     string
		want    bool
	}{
		{"base name match", "*.txt", "docs/notes.txt", true},
		{"base name mismatch", "*.txt", "docs/notes.md", false},
		{"base anchor ignores directories", "*.txt", "a.txt/file.md", false},
		{"path pattern", "docs/*.txt", "docs/notes.txt", true},
		{"path pattern wrong dir", "docs/*.txt", "src/notes.txt", false},
		{"doublestar", "**/*.go", "a/b/c/main.go", true},
		{"question mark", "file?.log", "file1.log", true},
		{"char class", "file[0-9].log", "filex.log", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := MustCompile(Spec{Name: tt.pattern})
			if got := f.Matches(entry(tt.rel, models.KindFile, 1, now)); got != tt.want {
				t.Errorf("pattern %q against %q = %v, want %v", tt.pattern, tt.rel, got, tt.want)
			}
		})
	}
}

func TestRegexMatchesRelativePath(t *testing.T) {
	f := MustCompile(Spec{NameRegex: `^src/.*\.go$`})

	now := time.Now()
	if !f.Matches(entry("src/main.go", models.KindFile, 1, now)) {
		t.Error("regex should match src/main.go")
	}
	if f.Matches(entry("docs/main.go", models.KindFile, 1, now)) {
		t.Error("regex should not match docs/main.go")
	}
}

func TestSizeBounds(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		spec Spec
		size int64
		want bool
	}{
		{"min inclusive at bound", Spec{MinSize: int64p(100)}, 100, true},
		{"min inclusive below", Spec{MinSize: int64p(100)}, 99, false},
		{"min exclusive at bound", Spec{MinSize: int64p(100), MinExclusive: true}, 100, false},
		{"min exclusive above", Spec{MinSize: int64p(100), MinExclusive: true}, 101, true},
		{"max inclusive at bound", Spec{MaxSize: int64p(100)}, 100, true},
		{"max inclusive above", Spec{MaxSize: int64p(100)}, 101, false},
		{"max exclusive at bound", Spec{MaxSize: int64p(100), MaxExclusive: true}, 100, false},
		{"range", Spec{MinSize: int64p(10), MaxSize: int64p(20)}, 15, true},
		{"negative size never matches a bound", Spec{MinSize: int64p(0)}, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := MustCompile(tt.spec)
			if got := f.Matches(entry("f", models.KindFile, tt.size, now)); got != tt.want {
				t.Errorf("size %d = %v, want %v", tt.size, got, tt.want)
			}
		})
	}
}

func TestTimeBounds(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	f := MustCompile(Spec{ModifiedAfter: timep(base)})
	if f.Matches(entry("f", models.KindFile, 1, base.Add(-time.Hour))) {
		t.Error("older entry matched ModifiedAfter")
	}
	if !f.Matches(entry("f", models.KindFile, 1, base)) {
		t.Error("boundary should be inclusive")
	}
	if !f.Matches(entry("f", models.KindFile, 1, base.Add(time.Hour))) {
		t.Error("newer entry should match ModifiedAfter")
	}

	f = MustCompile(Spec{ModifiedBefore: timep(base)})
	if f.Matches(entry("f", models.KindFile, 1, base.Add(time.Hour))) {
		t.Error("newer entry matched ModifiedBefore")
	}
	if !f.Matches(entry("f", models.KindFile, 1, base.Add(-time.Hour))) {
		t.Error("older entry should match ModifiedBefore")
	}
}

func TestKindClause(t *testing.T) {
	now := time.Now()
	f := MustCompile(Spec{Kind: models.KindDir})

	if !f.Matches(entry("d", models.KindDir, 0, now)) {
		t.Error("dir should match kind=dir")
	}
	if f.Matches(entry("f", models.KindFile, 0, now)) {
		t.Error("file should not match kind=dir")
	}
}

func TestClausesCombineWithAnd(t *testing.T) {
	now := time.Now()
	f := MustCompile(Spec{
		Name:    "*.log",
		MinSize: int64p(10),
		Kind:    models.KindFile,
	})

	if !f.Matches(entry("app.log", models.KindFile, 50, now)) {
		t.Error("entry satisfying all clauses should match")
	}
	if f.Matches(entry("app.log", models.KindFile, 5, now)) {
		t.Error("one failing clause should reject")
	}
	if f.Matches(entry("app.txt", models.KindFile, 50, now)) {
		t.Error("wrong name should reject")
	}
}

func TestCompileRejectsInvalidSpecs(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"malformed glob", Spec{Name: "[unclosed"}},
		{"malformed regex", Spec{NameRegex: "("}},
		{"inverted size bounds", Spec{MinSize: int64p(100), MaxSize: int64p(10)}},
		{"inverted time bounds", Spec{
			ModifiedAfter:  timep(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
			ModifiedBefore: timep(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		}},
		{"unknown kind", Spec{Kind: models.Kind("socket")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.Compile()
			if err == nil {
				t.Fatal("Compile should fail")
			}
			var cfgErr *models.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Errorf("error type = %T, want *models.ConfigurationError", err)
			}
		})
	}
}

func TestMatchesAny(t *testing.T) {
	patterns := []string{"*.tmp", ".git/**", "build/**"}

	tests := []struct {
		rel  string
		want bool
	}{
		{"scratch.tmp", true},
		{"deep/nested/scratch.tmp", true},
		{".git/config", true},
		{"build/out/app", true},
		{"src/main.go", false},
		{"gitignore", false},
	}
	for _, tt := range tests {
		if got := MatchesAny(patterns, tt.rel); got != tt.want {
			t.Errorf("MatchesAny(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}
