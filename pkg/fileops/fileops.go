package fileops

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/evan70/fscommander/pkg/fsys"
	"github.com/evan70/fscommander/pkg/models"
)

// Single-entry operations used by the CLI glue. They run over the same
// filesystem abstraction as the engines, so the in-memory double covers
// them too.

// CopyFile copies one file, preserving its modification time. The
// destination is staged and renamed into place. With overwrite false an
// existing destination is an error.
func CopyFile(fsx fsys.FS, src, dst string, overwrite bool) error {
	info, err := fsx.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to access source: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("source is a directory: %s", src)
	}
	if !overwrite {
		if _, err := fsx.Lstat(dst); err == nil {
			return fmt.Errorf("destination already exists: %s", dst)
		}
	}

	reader, err := fsx.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer reader.Close()

	return fsx.WriteFileAtomic(dst, reader, info.ModTime())
}

// MoveFile moves or renames a file: copy then remove the source
func MoveFile(fsx fsys.FS, src, dst string, overwrite bool) error {
	if err := CopyFile(fsx, src, dst, overwrite); err != nil {
		return err
	}
	return fsx.Remove(src)
}

// Rename renames an entry within its directory
func Rename(fsx fsys.FS, p, newName string) error {
	if strings.Contains(newName, "/") {
		return fmt.Errorf("new name must not contain a path separator: %s", newName)
	}
	return MoveFile(fsx, p, path.Join(path.Dir(p), newName), false)
}

// Remove deletes a file or directory. Directories require recursive
// unless empty. With force a missing path is not an error.
func Remove(fsx fsys.FS, p string, recursive, force bool) error {
	info, err := fsx.Lstat(p)
	if err != nil {
		if force && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access path: %w", err)
	}

	if info.IsDir() && recursive {
		return fsx.RemoveAll(p)
	}
	return fsx.Remove(p)
}

// CreateDir creates a directory. Without parents the parent must
// already exist.
func CreateDir(fsx fsys.FS, p string, parents bool) error {
	if !parents {
		parent := path.Dir(p)
		if parent != "." {
			info, err := fsx.Lstat(parent)
			if err != nil {
				return fmt.Errorf("parent does not exist: %s", parent)
			}
			if !info.IsDir() {
				return fmt.Errorf("parent is not a directory: %s", parent)
			}
		}
		if _, err := fsx.Lstat(p); err == nil {
			return fmt.Errorf("path already exists: %s", p)
		}
	}
	return fsx.MkdirAll(p)
}

// TreeSize walks a subtree and returns its total file size in bytes
// along with the number of files counted. Symlinks are counted by their
// link size, not their target's.
func TreeSize(fsx fsys.FS, p string) (int64, int, error) {
	infos, err := fsx.ReadDir(p)
	if err != nil {
		return 0, 0, err
	}

	var bytes int64
	var files int
	for _, info := range infos {
		child := info.Name()
		if p != "." && p != "" {
			child = path.Join(p, info.Name())
		}
		if info.IsDir() {
			b, f, err := TreeSize(fsx, child)
			if err != nil {
				return 0, 0, err
			}
			bytes += b
			files += f
			continue
		}
		bytes += info.Size()
		files++
	}
	return bytes, files, nil
}

// ListDir returns the direct children of a directory, directories
// first, each group sorted case-insensitively.
func ListDir(fsx fsys.FS, p string, showHidden bool) ([]models.Entry, error) {
	infos, err := fsx.ReadDir(p)
	if err != nil {
		return nil, err
	}

	entries := make([]models.Entry, 0, len(infos))
	for _, info := range infos {
		if !showHidden && strings.HasPrefix(info.Name(), ".") {
			continue
		}
		kind := models.KindFile
		switch {
		case info.Mode()&os.ModeSymlink != 0:
			kind = models.KindSymlink
		case info.IsDir():
			kind = models.KindDir
		}
		rel := info.Name()
		if p != "." && p != "" {
			rel = path.Join(p, info.Name())
		}
		entries = append(entries, models.Entry{
			Path:         rel,
			RelativePath: rel,
			Kind:         kind,
			Size:         info.Size(),
			ModTime:      info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		di, dj := entries[i].IsDir(), entries[j].IsDir()
		if di != dj {
			return di
		}
		return strings.ToLower(path.Base(entries[i].RelativePath)) < strings.ToLower(path.Base(entries[j].RelativePath))
	})
	return entries, nil
}
