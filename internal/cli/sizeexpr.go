package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evan70/fscommander/pkg/filter"
)

// Size expressions combine a comparison operator with a value and unit,
// e.g. ">1MB", "<=100KB", ">0". A bare value means strictly greater.

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

// applySizeExpr parses expr and sets the size bounds on spec
func applySizeExpr(spec *filter.Spec, expr string) error {
	s := strings.TrimSpace(expr)
	if s == "" {
		return nil
	}

	op := ">"
	switch {
	case strings.HasPrefix(s, ">="):
		op, s = ">=", s[2:]
	case strings.HasPrefix(s, "<="):
		op, s = "<=", s[2:]
	case strings.HasPrefix(s, ">"):
		op, s = ">", s[1:]
	case strings.HasPrefix(s, "<"):
		op, s = "<", s[1:]
	}

	value, err := parseSize(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid size expression %q: %w", expr, err)
	}

	switch op {
	case ">":
		spec.MinSize, spec.MinExclusive = &value, true
	case ">=":
		spec.MinSize, spec.MinExclusive = &value, false
	case "<":
		spec.MaxSize, spec.MaxExclusive = &value, true
	case "<=":
		spec.MaxSize, spec.MaxExclusive = &value, false
	}
	return nil
}

// parseSize converts "10MB" style values to a byte count
func parseSize(s string) (int64, error) {
	upper := strings.ToUpper(s)
	unit := ""
	for u := range sizeUnits {
		if u != "" && strings.HasSuffix(upper, u) && len(u) > len(unit) {
			unit = u
		}
	}
	num := strings.TrimSpace(strings.TrimSuffix(upper, unit))
	if num == "" {
		return 0, fmt.Errorf("missing numeric value")
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", num)
	}
	if value < 0 {
		return 0, fmt.Errorf("size must not be negative")
	}
	return int64(value * float64(sizeUnits[unit])), nil
}
