package fsys

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
)

// Local is the OS-backed filesystem, rooted at a directory. Every path
// handed to it is interpreted relative to that root.
type Local struct {
	billyFS
	root string
}

// NewLocal creates a filesystem rooted at rootPath, which must be an
// existing directory.
func NewLocal(rootPath string) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Local{
		billyFS: billyFS{bfs: osfs.New(absPath)},
		root:    absPath,
	}, nil
}

// NewLocalCreate is like NewLocal but creates the root directory first
// if it does not exist.
func NewLocalCreate(rootPath string) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return NewLocal(absPath)
}

// WriteFileAtomic stages and renames, then restores the modification time
func (l *Local) WriteFileAtomic(name string, r io.Reader, modTime time.Time) error {
	if err := l.writeAtomic(name, r); err != nil {
		return err
	}
	if !modTime.IsZero() {
		if err := l.Chtimes(name, modTime); err != nil {
			return err
		}
	}
	return nil
}

// Chtimes sets the modification time of a path
func (l *Local) Chtimes(name string, mtime time.Time) error {
	full := filepath.Join(l.root, filepath.FromSlash(name))
	if err := os.Chtimes(full, mtime, mtime); err != nil {
		return fmt.Errorf("failed to set modification time on %s: %w", name, err)
	}
	return nil
}

// Root returns the absolute root directory
func (l *Local) Root() string {
	return l.root
}
