package fsys

import (
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
)

// Memory is an in-memory filesystem used as a test double. It wraps
// go-billy's memfs and overlays modification times, which memfs does
// not track, so timestamp-sensitive logic (diff tolerance, preferNewer)
// is exercisable in tests.
type Memory struct {
	billyFS
	mu     sync.RWMutex
	mtimes map[string]time.Time
}

// NewMemory creates an empty in-memory filesystem
func NewMemory() *Memory {
	return &Memory{
		billyFS: billyFS{bfs: memfs.New()},
		mtimes:  make(map[string]time.Time),
	}
}

func normalize(p string) string {
	p = path.Clean(p)
	return strings.TrimPrefix(p, "./")
}

// Stat returns metadata with any overlaid modification time applied
func (m *Memory) Stat(p string) (os.FileInfo, error) {
	info, err := m.billyFS.Stat(p)
	if err != nil {
		return nil, err
	}
	return m.overlay(normalize(p), info), nil
}

// Lstat returns metadata without following symlinks
func (m *Memory) Lstat(p string) (os.FileInfo, error) {
	info, err := m.billyFS.Lstat(p)
	if err != nil {
		return nil, err
	}
	return m.overlay(normalize(p), info), nil
}

// ReadDir lists a directory with overlaid modification times
func (m *Memory) ReadDir(p string) ([]os.FileInfo, error) {
	infos, err := m.billyFS.ReadDir(p)
	if err != nil {
		return nil, err
	}
	dir := normalize(p)
	out := make([]os.FileInfo, 0, len(infos))
	for _, info := range infos {
		key := info.Name()
		if dir != "." && dir != "" {
			key = dir + "/" + info.Name()
		}
		out = append(out, m.overlay(key, info))
	}
	return out, nil
}

// WriteFileAtomic stages and renames, recording the modification time
func (m *Memory) WriteFileAtomic(name string, r io.Reader, modTime time.Time) error {
	if err := m.writeAtomic(name, r); err != nil {
		return err
	}
	if modTime.IsZero() {
		modTime = time.Now()
	}
	return m.Chtimes(name, modTime)
}

// WriteFile is a test fixture helper: it writes content and stamps the
// given modification time in one call.
func (m *Memory) WriteFile(name, content string, modTime time.Time) error {
	return m.WriteFileAtomic(name, strings.NewReader(content), modTime)
}

// Chtimes records the modification time of a path
func (m *Memory) Chtimes(p string, mtime time.Time) error {
	if _, err := m.billyFS.Lstat(p); err != nil {
		return err
	}
	m.mu.Lock()
	m.mtimes[normalize(p)] = mtime
	m.mu.Unlock()
	return nil
}

// Remove removes a path and its recorded time
func (m *Memory) Remove(p string) error {
	if err := m.billyFS.Remove(p); err != nil {
		return err
	}
	m.forget(normalize(p))
	return nil
}

// RemoveAll removes a path, its children, and their recorded times
func (m *Memory) RemoveAll(p string) error {
	if err := m.billyFS.RemoveAll(p); err != nil {
		return err
	}
	m.forget(normalize(p))
	return nil
}

// Root returns a fixed placeholder root
func (m *Memory) Root() string {
	return "mem://"
}

func (m *Memory) overlay(key string, info os.FileInfo) os.FileInfo {
	m.mu.RLock()
	mtime, ok := m.mtimes[key]
	m.mu.RUnlock()
	if !ok {
		return info
	}
	return &timedFileInfo{FileInfo: info, modTime: mtime}
}

func (m *Memory) forget(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.mtimes, key)
	prefix := key + "/"
	for k := range m.mtimes {
		if strings.HasPrefix(k, prefix) {
			delete(m.mtimes, k)
		}
	}
}

type timedFileInfo struct {
	os.FileInfo
	modTime time.Time
}

func (t *timedFileInfo) ModTime() time.Time {
	return t.modTime
}
