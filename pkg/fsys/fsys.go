package fsys

import (
	"io"
	"os"
	"time"
)

// FS is the narrow filesystem capability surface the core operates on.
// All paths are slash-separated and relative to the filesystem root.
// Both the OS-backed implementation and the in-memory test double
// satisfy it, so every engine in this module can run against either.
type FS interface {
	// ReadDir lists the entries of a directory. Order is not guaranteed;
	// callers that need determinism sort the result.
	ReadDir(path string) ([]os.FileInfo, error)

	// Stat returns metadata, following symlinks
	Stat(path string) (os.FileInfo, error)

	// Lstat returns metadata without following symlinks
	Lstat(path string) (os.FileInfo, error)

	// Readlink returns the target of a symbolic link
	Readlink(path string) (string, error)

	// Open opens a file for reading
	Open(path string) (io.ReadCloser, error)

	// WriteFileAtomic stages content in a temporary file in the target
	// directory and renames it into place, so a failure mid-write never
	// leaves a partial file at path. The modification time is set to
	// modTime when non-zero.
	WriteFileAtomic(path string, r io.Reader, modTime time.Time) error

	// Symlink creates a symbolic link at link pointing to target
	Symlink(target, link string) error

	// MkdirAll creates a directory and any missing parents. Idempotent.
	MkdirAll(path string) error

	// Remove removes a file, symlink, or empty directory
	Remove(path string) error

	// RemoveAll removes a path and any children it contains
	RemoveAll(path string) error

	// Chtimes sets the modification time of a path
	Chtimes(path string, mtime time.Time) error

	// Root returns the absolute root the filesystem is bound to
	// (informational for the in-memory implementation)
	Root() string
}

// ReadFile reads the whole content of a file. Convenience for small
// reads; the engines stream through Open instead.
func ReadFile(fsx FS, path string) ([]byte, error) {
	f, err := fsx.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
