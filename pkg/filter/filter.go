package filter

import (
	"regexp"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/evan70/fscommander/pkg/models"
)

// Spec is a composable predicate over filesystem entries. The zero
// value matches everything; every supplied clause must match (logical
// AND). Specs are pure values: compiling one has no side effects and a
// compiled Filter never touches the filesystem.
type Spec struct {
	// Name is a glob pattern (*, ?, [...], **). It anchors on the final
	// path component unless it contains a path separator, in which case
	// it anchors on the whole relative path.
	Name string

	// NameRegex is a regular expression matched against the relative path
	NameRegex string

	// MinSize and MaxSize bound the entry size in bytes. Nil means
	// unbounded. Bounds are inclusive unless the matching Exclusive flag
	// is set.
	MinSize      *int64
	MaxSize      *int64
	MinExclusive bool
	MaxExclusive bool

	// ModifiedAfter and ModifiedBefore bound the modification time
	// (inclusive). Nil means unbounded.
	ModifiedAfter  *time.Time
	ModifiedBefore *time.Time

	// Kind restricts the entry type. Empty means any.
	Kind models.Kind
}

// Filter is a compiled, ready-to-evaluate Spec
type Filter struct {
	spec Spec
	re   *regexp.Regexp
}

// Compile validates the spec and prepares it for evaluation. Invalid
// patterns or inverted bounds are configuration errors, reported here
// so traversal never starts with a broken predicate.
func (s Spec) Compile() (*Filter, error) {
	if s.Name != "" && !doublestar.ValidatePattern(s.Name) {
		return nil, &models.ConfigurationError{Field: "name pattern", Message: "malformed glob " + s.Name}
	}

	var re *regexp.Regexp
	if s.NameRegex != "" {
		var err error
		re, err = regexp.Compile(s.NameRegex)
		if err != nil {
			return nil, &models.ConfigurationError{Field: "name regex", Message: err.Error()}
		}
	}

	if s.MinSize != nil && s.MaxSize != nil && *s.MinSize > *s.MaxSize {
		return nil, &models.ConfigurationError{Field: "size bounds", Message: "min exceeds max"}
	}
	if s.ModifiedAfter != nil && s.ModifiedBefore != nil && s.ModifiedAfter.After(*s.ModifiedBefore) {
		return nil, &models.ConfigurationError{Field: "time bounds", Message: "after exceeds before"}
	}

	switch s.Kind {
	case "", models.KindFile, models.KindDir, models.KindSymlink:
	default:
		return nil, &models.ConfigurationError{Field: "kind", Message: "unknown kind " + string(s.Kind)}
	}

	return &Filter{spec: s, re: re}, nil
}

// MustCompile is Compile for specs known to be valid, such as the zero
// spec. It panics on error.
func MustCompile(s Spec) *Filter {
	f, err := s.Compile()
	if err != nil {
		panic(err)
	}
	return f
}

// Matches evaluates the entry against every clause. Pure and total: it
// never errors, and unreadable metadata (negative size) is treated as
// non-matching rather than failing.
func (f *Filter) Matches(e *models.Entry) bool {
	s := &f.spec

	if s.Kind != "" && e.Kind != s.Kind {
		return false
	}

	if s.Name != "" && !matchGlob(s.Name, e.RelativePath) {
		return false
	}
	if f.re != nil && !f.re.MatchString(e.RelativePath) {
		return false
	}

	if s.MinSize != nil || s.MaxSize != nil {
		if e.Size < 0 {
			return false
		}
		if s.MinSize != nil {
			if e.Size < *s.MinSize || (s.MinExclusive && e.Size == *s.MinSize) {
				return false
			}
		}
		if s.MaxSize != nil {
			if e.Size > *s.MaxSize || (s.MaxExclusive && e.Size == *s.MaxSize) {
				return false
			}
		}
	}

	if s.ModifiedAfter != nil && e.ModTime.Before(*s.ModifiedAfter) {
		return false
	}
	if s.ModifiedBefore != nil && e.ModTime.After(*s.ModifiedBefore) {
		return false
	}

	return true
}

// matchGlob anchors on the base name unless the pattern spans path
// components. Pattern validity was checked at compile time, so the
// match error is ignored.
func matchGlob(pattern, relPath string) bool {
	subject := relPath
	if !strings.Contains(pattern, "/") {
		if i := strings.LastIndexByte(relPath, '/'); i >= 0 {
			subject = relPath[i+1:]
		}
	}
	ok, _ := doublestar.Match(pattern, subject)
	return ok
}

// MatchesAny reports whether the relative path matches any of the glob
// patterns, using the same anchoring rule as Spec.Name. Used for
// exclude lists.
func MatchesAny(patterns []string, relPath string) bool {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if matchGlob(p, relPath) {
			return true
		}
	}
	return false
}
