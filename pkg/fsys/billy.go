package fsys

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

const tempPrefix = ".fscommander-tmp-"

// billyFS implements the parts of FS that are identical for every
// go-billy backed filesystem. Chtimes is backend-specific because billy
// has no timestamp API.
type billyFS struct {
	bfs billy.Filesystem
}

// ReadDir lists a directory
func (b *billyFS) ReadDir(p string) ([]os.FileInfo, error) {
	infos, err := b.bfs.ReadDir(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
	}
	return infos, nil
}

// Stat returns metadata, following symlinks
func (b *billyFS) Stat(p string) (os.FileInfo, error) {
	return b.bfs.Stat(p)
}

// Lstat returns metadata without following symlinks
func (b *billyFS) Lstat(p string) (os.FileInfo, error) {
	return b.bfs.Lstat(p)
}

// Readlink returns a symlink target
func (b *billyFS) Readlink(p string) (string, error) {
	return b.bfs.Readlink(p)
}

// Open opens a file for reading
func (b *billyFS) Open(p string) (io.ReadCloser, error) {
	f, err := b.bfs.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", p, err)
	}
	return f, nil
}

// Symlink creates a symbolic link
func (b *billyFS) Symlink(target, link string) error {
	if err := b.bfs.Symlink(target, link); err != nil {
		return fmt.Errorf("failed to create symlink %s: %w", link, err)
	}
	return nil
}

// MkdirAll creates a directory and all necessary parents
func (b *billyFS) MkdirAll(p string) error {
	if err := b.bfs.MkdirAll(p, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p, err)
	}
	return nil
}

// Remove removes a file, symlink, or empty directory
func (b *billyFS) Remove(p string) error {
	if err := b.bfs.Remove(p); err != nil {
		return fmt.Errorf("failed to remove %s: %w", p, err)
	}
	return nil
}

// RemoveAll removes a path and any children
func (b *billyFS) RemoveAll(p string) error {
	if err := util.RemoveAll(b.bfs, p); err != nil {
		return fmt.Errorf("failed to remove %s: %w", p, err)
	}
	return nil
}

// writeAtomic stages r into a temp file next to name and renames it into
// place. The caller applies its backend-specific Chtimes afterwards.
func (b *billyFS) writeAtomic(name string, r io.Reader) (err error) {
	dir := path.Dir(name)
	if dir != "." {
		if err := b.bfs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	tmp, err := b.bfs.TempFile(dir, tempPrefix)
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			b.bfs.Remove(tmpName)
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", name, err)
	}
	if err = b.bfs.Rename(tmpName, name); err != nil {
		err = fmt.Errorf("failed to commit %s: %w", name, err)
		b.bfs.Remove(tmpName)
		return err
	}
	return nil
}
