package sync

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/evan70/fscommander/pkg/diff"
	"github.com/evan70/fscommander/pkg/fsys"
	"github.com/evan70/fscommander/pkg/models"
)

var stamp = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, m *fsys.Memory, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := m.WriteFile(name, content, stamp); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}
}

func runSync(t *testing.T, source, dest fsys.FS, opts models.SyncOptions) *models.SyncResult {
	t.Helper()

	r, err := diff.Tree(context.Background(), source, dest, diff.Options{
		DeleteExtraneous: opts.DeleteExtraneous,
	})
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}

	e := NewEngine(source, dest, nil, nil)
	plan, err := e.Plan(r.Entries, opts)
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	result, err := e.Execute(context.Background(), plan)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	return result
}

func TestSyncConvergence(t *testing.T) {
	source := fsys.NewMemory()
	dest := fsys.NewMemory()
	seed(t, source, map[string]string{
		"top.txt":            "root file",
		"docs/readme.md":     "# hello",
		"docs/deep/note.txt": "nested",
		"bin/tool":           "binary-ish",
	})

	result := runSync(t, source, dest, models.SyncOptions{})
	if result.Failed != 0 {
		t.Fatalf("%d entries failed: %+v", result.Failed, result.Outcomes)
	}

	// Content arrived.
	content, err := fsys.ReadFile(dest, "docs/deep/note.txt")
	if err != nil || string(content) != "nested" {
		t.Errorf("dest content = %q, %v", content, err)
	}

	// Modification times were preserved, so a second diff is all quiet.
	r, err := diff.Tree(context.Background(), source, dest, diff.Options{})
	if err != nil {
		t.Fatalf("re-diff failed: %v", err)
	}
	for _, e := range r.Entries {
		if e.Classification != models.ClassUnchanged {
			t.Errorf("after sync %s is %s (%s), want unchanged", e.RelativePath, e.Classification, e.Reason)
		}
	}

	// And a second sync plans nothing.
	e := NewEngine(source, dest, nil, nil)
	plan, err := e.Plan(r.Entries, models.SyncOptions{})
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	if len(plan.Entries) != 0 {
		t.Errorf("second sync planned %d entries, want 0", len(plan.Entries))
	}
}

func TestSyncDryRunMutatesNothing(t *testing.T) {
	source := fsys.NewMemory()
	dest := fsys.NewMemory()
	seed(t, source, map[string]string{"a.txt": "alpha", "d/b.txt": "beta"})
	seed(t, dest, map[string]string{"stale.txt": "old"})

	result := runSync(t, source, dest, models.SyncOptions{DryRun: true, DeleteExtraneous: true})

	if !result.DryRun {
		t.Error("result not marked as dry run")
	}
	wouldApply := 0
	for _, o := range result.Outcomes {
		if o.Status == models.StatusApplied {
			t.Errorf("dry run recorded %s as applied", o.RelativePath)
		}
		if o.Status == models.StatusWouldApply {
			wouldApply++
		}
	}
	if wouldApply != 4 { // mkdir d, copy a.txt, copy d/b.txt, delete stale.txt
		t.Errorf("would-apply = %d, want 4", wouldApply)
	}

	if _, err := dest.Stat("a.txt"); err == nil {
		t.Error("dry run created a file")
	}
	if _, err := dest.Stat("stale.txt"); err != nil {
		t.Error("dry run deleted a file")
	}
}

func TestSyncDeleteExtraneous(t *testing.T) {
	source := fsys.NewMemory()
	dest := fsys.NewMemory()
	seed(t, source, map[string]string{"keep.txt": "k"})
	seed(t, dest, map[string]string{"keep.txt": "k", "old/junk.txt": "j"})

	// Without the flag the extra entries survive.
	runSync(t, source, dest, models.SyncOptions{})
	if _, err := dest.Stat("old/junk.txt"); err != nil {
		t.Error("extraneous entry removed without DeleteExtraneous")
	}

	result := runSync(t, source, dest, models.SyncOptions{DeleteExtraneous: true})
	if result.Failed != 0 {
		t.Fatalf("%d entries failed: %+v", result.Failed, result.Outcomes)
	}
	if _, err := dest.Stat("old/junk.txt"); err == nil {
		t.Error("extraneous file survived")
	}
	if _, err := dest.Stat("old"); err == nil {
		t.Error("extraneous directory survived")
	}
	if _, err := dest.Stat("keep.txt"); err != nil {
		t.Error("shared file was removed")
	}
}

func TestSyncPreferNewerKeepsNewerDest(t *testing.T) {
	source := fsys.NewMemory()
	dest := fsys.NewMemory()
	if err := source.WriteFile("f.txt", "from source", stamp); err != nil {
		t.Fatal(err)
	}
	if err := dest.WriteFile("f.txt", "newer in dest", stamp.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	result := runSync(t, source, dest, models.SyncOptions{Policy: models.PolicyPreferNewer})
	if result.Applied != 0 {
		t.Errorf("applied %d entries, want 0", result.Applied)
	}

	content, err := fsys.ReadFile(dest, "f.txt")
	if err != nil || string(content) != "newer in dest" {
		t.Errorf("dest content = %q, %v", content, err)
	}
}

func TestSyncManualPolicySkipsConflicts(t *testing.T) {
	source := fsys.NewMemory()
	dest := fsys.NewMemory()
	seed(t, source, map[string]string{"thing/inner.txt": "x"})
	seed(t, dest, map[string]string{"thing": "i am a file"})

	result := runSync(t, source, dest, models.SyncOptions{Policy: models.PolicyManual})

	// The conflicting path is untouched.
	info, err := dest.Stat("thing")
	if err != nil {
		t.Fatalf("conflict path gone: %v", err)
	}
	if info.IsDir() {
		t.Error("manual policy replaced the destination entry")
	}
	for _, o := range result.Outcomes {
		if o.RelativePath == "thing" && o.Status != models.StatusSkipped {
			t.Errorf("conflict outcome = %s, want skipped", o.Status)
		}
	}
}

func TestSyncReplacesKindMismatch(t *testing.T) {
	source := fsys.NewMemory()
	dest := fsys.NewMemory()
	// The source subtree nests a directory and an empty directory under
	// the conflicted path, so their creations depend on the replacement
	// having cleared the destination file first.
	seed(t, source, map[string]string{
		"thing/inner.txt":     "x",
		"thing/sub/deep.txt":  "y",
		"thing/sub/other.txt": "z",
	})
	if err := source.MkdirAll("thing/empty"); err != nil {
		t.Fatal(err)
	}
	seed(t, dest, map[string]string{"thing": "i am a file"})

	result := runSync(t, source, dest, models.SyncOptions{Policy: models.PolicyPreferSource})
	if result.Failed != 0 {
		t.Fatalf("%d entries failed: %+v", result.Failed, result.Outcomes)
	}

	info, err := dest.Stat("thing")
	if err != nil {
		t.Fatalf("replaced path missing: %v", err)
	}
	if !info.IsDir() {
		t.Error("destination entry was not replaced by a directory")
	}
	content, err := fsys.ReadFile(dest, "thing/sub/deep.txt")
	if err != nil || string(content) != "y" {
		t.Errorf("nested content = %q, %v", content, err)
	}
	if info, err := dest.Stat("thing/empty"); err != nil || !info.IsDir() {
		t.Errorf("empty directory not recreated: %v", err)
	}

	// One pass converges: nothing is left to plan.
	r, err := diff.Tree(context.Background(), source, dest, diff.Options{})
	if err != nil {
		t.Fatalf("re-diff failed: %v", err)
	}
	for _, e := range r.Entries {
		if e.Classification != models.ClassUnchanged {
			t.Errorf("after sync %s is %s (%s), want unchanged", e.RelativePath, e.Classification, e.Reason)
		}
	}
}

// failingFS injects a write failure for one relative path
type failingFS struct {
	fsys.FS
	failPath string
}

func (f *failingFS) WriteFileAtomic(name string, r io.Reader, modTime time.Time) error {
	if name == f.failPath {
		return errors.New("injected write failure")
	}
	return f.FS.WriteFileAtomic(name, r, modTime)
}

func TestSyncErrorsDoNotCancelBatch(t *testing.T) {
	source := fsys.NewMemory()
	dest := fsys.NewMemory()
	seed(t, source, map[string]string{
		"a.txt": "alpha",
		"b.txt": "beta",
		"c.txt": "gamma",
	})

	result := runSync(t, source, &failingFS{FS: dest, failPath: "b.txt"}, models.SyncOptions{})

	if result.Failed != 1 {
		t.Fatalf("failed = %d, want 1", result.Failed)
	}
	if result.Applied != 2 {
		t.Errorf("applied = %d, want 2", result.Applied)
	}

	for _, o := range result.Outcomes {
		if o.RelativePath == "b.txt" {
			if o.Status != models.StatusFailed {
				t.Errorf("b.txt status = %s, want failed", o.Status)
			}
			if o.Error == "" {
				t.Error("failed outcome carries no error text")
			}
		}
	}

	// The healthy entries landed despite the failure.
	if _, err := dest.Stat("a.txt"); err != nil {
		t.Error("a.txt missing after partial failure")
	}
	if _, err := dest.Stat("c.txt"); err != nil {
		t.Error("c.txt missing after partial failure")
	}
}

func TestSyncBytesTransferred(t *testing.T) {
	source := fsys.NewMemory()
	dest := fsys.NewMemory()
	seed(t, source, map[string]string{"a.txt": "12345", "b.txt": "123"})

	result := runSync(t, source, dest, models.SyncOptions{})
	if result.BytesTransferred != 8 {
		t.Errorf("bytes transferred = %d, want 8", result.BytesTransferred)
	}
}
