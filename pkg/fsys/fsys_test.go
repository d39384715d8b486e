package fsys

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestMemoryWriteAndRead(t *testing.T) {
	m := NewMemory()

	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := m.WriteFile("docs/readme.txt", "hello", mtime); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	content, err := ReadFile(m, "docs/readme.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(content) != "hello" {
		t.Errorf("content = %q, want %q", content, "hello")
	}

	info, err := m.Stat("docs/readme.txt")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), mtime)
	}
	if info.Size() != 5 {
		t.Errorf("Size = %d, want 5", info.Size())
	}
}

func TestMemoryWriteCreatesParents(t *testing.T) {
	m := NewMemory()

	if err := m.WriteFile("a/b/c/file.txt", "x", time.Time{}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	info, err := m.Stat("a/b/c")
	if err != nil {
		t.Fatalf("Stat parent failed: %v", err)
	}
	if !info.IsDir() {
		t.Error("parent is not a directory")
	}
}

func TestMemoryReadDirOverlaysTimes(t *testing.T) {
	m := NewMemory()

	mtime := time.Date(2023, 6, 15, 8, 30, 0, 0, time.UTC)
	if err := m.WriteFile("dir/file.txt", "data", mtime); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	infos, err := m.ReadDir("dir")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("ReadDir returned %d entries, want 1", len(infos))
	}
	if !infos[0].ModTime().Equal(mtime) {
		t.Errorf("ModTime = %v, want %v", infos[0].ModTime(), mtime)
	}
}

func TestMemoryChtimes(t *testing.T) {
	m := NewMemory()

	if err := m.WriteFile("file.txt", "data", time.Time{}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	mtime := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := m.Chtimes("file.txt", mtime); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	info, err := m.Stat("file.txt")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), mtime)
	}

	if err := m.Chtimes("missing.txt", mtime); err == nil {
		t.Error("Chtimes on missing path should fail")
	}
}

func TestMemoryRemoveForgetsTimes(t *testing.T) {
	m := NewMemory()

	mtime := time.Date(2022, 2, 2, 0, 0, 0, 0, time.UTC)
	if err := m.WriteFile("dir/a.txt", "a", mtime); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := m.WriteFile("dir/b.txt", "b", mtime); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := m.RemoveAll("dir"); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if _, err := m.Stat("dir/a.txt"); err == nil {
		t.Error("file still present after RemoveAll")
	}

	// Recreating the path must not inherit the old timestamp.
	if err := m.WriteFile("dir/a.txt", "new", time.Time{}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	info, err := m.Stat("dir/a.txt")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.ModTime().Equal(mtime) {
		t.Error("recreated file inherited forgotten timestamp")
	}
}

func TestMemorySymlink(t *testing.T) {
	m := NewMemory()

	if err := m.WriteFile("target.txt", "data", time.Time{}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := m.Symlink("target.txt", "link.txt"); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	target, err := m.Readlink("link.txt")
	if err != nil {
		t.Fatalf("Readlink failed: %v", err)
	}
	if target != "target.txt" {
		t.Errorf("Readlink = %q, want %q", target, "target.txt")
	}
}

func TestLocalRoundTrip(t *testing.T) {
	dir := t.TempDir()

	l, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	if l.Root() != dir {
		t.Errorf("Root = %q, want %q", l.Root(), dir)
	}

	mtime := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	if err := l.WriteFileAtomic("sub/file.txt", strings.NewReader("payload"), mtime); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	content, err := ReadFile(l, "sub/file.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(content) != "payload" {
		t.Errorf("content = %q, want %q", content, "payload")
	}

	info, err := l.Stat("sub/file.txt")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), mtime)
	}

	// No temp file should survive the atomic write.
	infos, err := l.ReadDir("sub")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, fi := range infos {
		if strings.HasPrefix(fi.Name(), ".fscommander-tmp-") {
			t.Errorf("leftover temp file %s", fi.Name())
		}
	}
}

func TestNewLocalRejectsMissingRoot(t *testing.T) {
	if _, err := NewLocal("/does/not/exist"); err == nil {
		t.Error("NewLocal on missing path should fail")
	}

	file := t.TempDir() + "/file"
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := NewLocal(file); err == nil {
		t.Error("NewLocal on a file should fail")
	}
}

func TestNewLocalCreate(t *testing.T) {
	dir := t.TempDir() + "/nested/root"

	l, err := NewLocalCreate(dir)
	if err != nil {
		t.Fatalf("NewLocalCreate failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("root was not created: %v", err)
	}
	if err := l.WriteFileAtomic("f.txt", strings.NewReader("x"), time.Time{}); err != nil {
		t.Errorf("write into created root failed: %v", err)
	}
}
