package models

import (
	"time"
)

// Kind identifies the type of a filesystem entry
type Kind string

const (
	// KindFile is a regular file
	KindFile Kind = "file"
	// KindDir is a directory
	KindDir Kind = "dir"
	// KindSymlink is a symbolic link (reported, not followed, by default)
	KindSymlink Kind = "symlink"
)

// Entry is an immutable snapshot of one filesystem object taken at walk
// time. It is never mutated after creation; the Hash field is the only
// lazily filled slot and is set at most once, before the entry is shared.
type Entry struct {
	// Path is the full path including the walk root
	Path string

	// RelativePath is the slash-separated path relative to the walk root.
	// Unique within a single walk.
	RelativePath string

	// Kind is the entry type
	Kind Kind

	// Size in bytes (0 for directories)
	Size int64

	// ModTime is the last modification time
	ModTime time.Time

	// LinkTarget is the symlink target, set only for KindSymlink
	LinkTarget string

	// Hash is the content hash, computed on demand during diffing.
	// Empty until needed.
	Hash string
}

// IsDir reports whether the entry is a directory
func (e *Entry) IsDir() bool {
	return e.Kind == KindDir
}

// IsFile reports whether the entry is a regular file
func (e *Entry) IsFile() bool {
	return e.Kind == KindFile
}

// IsSymlink reports whether the entry is a symbolic link
func (e *Entry) IsSymlink() bool {
	return e.Kind == KindSymlink
}
