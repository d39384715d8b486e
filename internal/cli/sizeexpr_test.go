package cli

import (
	"testing"

	"github.com/evan70/fscommander/pkg/filter"
)

func TestApplySizeExpr(t *testing.T) {
	tests := []struct {
		expr         string
		wantMin      int64
		minExclusive bool
		wantMax      int64
		maxExclusive bool
	}{
		{">1MB", 1 << 20, true, -1, false},
		{">=100KB", 100 << 10, false, -1, false},
		{"<5GB", -1, false, 5 << 30, true},
		{"<=2KB", -1, false, 2 << 10, false},
		{"1MB", 1 << 20, true, -1, false}, // bare value means strictly greater
		{">512", 512, true, -1, false},    // no unit means bytes
		{">1.5KB", 1536, true, -1, false},
		{">0", 0, true, -1, false},
		{">10B", 10, true, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			var spec filter.Spec
			if err := applySizeExpr(&spec, tt.expr); err != nil {
				t.Fatalf("applySizeExpr(%q) failed: %v", tt.expr, err)
			}

			if tt.wantMin >= 0 {
				if spec.MinSize == nil {
					t.Fatalf("min bound not set")
				}
				if *spec.MinSize != tt.wantMin || spec.MinExclusive != tt.minExclusive {
					t.Errorf("min = %d exclusive=%v, want %d exclusive=%v",
						*spec.MinSize, spec.MinExclusive, tt.wantMin, tt.minExclusive)
				}
			} else if spec.MinSize != nil {
				t.Errorf("unexpected min bound %d", *spec.MinSize)
			}

			if tt.wantMax >= 0 {
				if spec.MaxSize == nil {
					t.Fatalf("max bound not set")
				}
				if *spec.MaxSize != tt.wantMax || spec.MaxExclusive != tt.maxExclusive {
					t.Errorf("max = %d exclusive=%v, want %d exclusive=%v",
						*spec.MaxSize, spec.MaxExclusive, tt.wantMax, tt.maxExclusive)
				}
			} else if spec.MaxSize != nil {
				t.Errorf("unexpected max bound %d", *spec.MaxSize)
			}
		})
	}
}

func TestApplySizeExprErrors(t *testing.T) {
	for _, expr := range []string{">", ">abc", "<-5MB", ">12XB", ">>1MB"} {
		var spec filter.Spec
		if err := applySizeExpr(&spec, expr); err == nil {
			t.Errorf("applySizeExpr(%q) should fail", expr)
		}
	}
}
