package models

// Classification categorizes a single relative path compared across two trees
type Classification string

const (
	// ClassCreate indicates the entry exists only in the source tree
	ClassCreate Classification = "create"
	// ClassUpdate indicates the entry exists in both trees with different content
	ClassUpdate Classification = "update"
	// ClassDelete indicates the entry exists only in the destination tree
	ClassDelete Classification = "delete"
	// ClassUnchanged indicates both trees hold an equivalent entry
	ClassUnchanged Classification = "unchanged"
	// ClassConflict indicates the path diverges in a way that needs policy resolution
	ClassConflict Classification = "conflict"
)

// ConflictReason explains why a DiffEntry was classified as a conflict
type ConflictReason string

const (
	// ConflictKindMismatch indicates the path is a different kind on each side
	// (e.g. file vs directory)
	ConflictKindMismatch ConflictReason = "kind-mismatch"
	// ConflictDivergedContent indicates both sides are files whose content
	// diverged without a clear direction
	ConflictDivergedContent ConflictReason = "diverged-content"
)

// DiffEntry is one classified delta record produced by a tree diff.
// Produced once per relative path; consumed read-only by the sync engine.
type DiffEntry struct {
	// RelativePath is the slash-separated path the record describes
	RelativePath string

	// Classification is the computed delta class
	Classification Classification

	// Source is the source-side entry, nil when absent
	Source *Entry

	// Dest is the destination-side entry, nil when absent
	Dest *Entry

	// Reason describes the comparison outcome (set for Update and Conflict)
	Reason string

	// ConflictReason is set only when Classification is ClassConflict
	ConflictReason ConflictReason
}

// Actionable reports whether the entry requires a sync action
func (d *DiffEntry) Actionable() bool {
	switch d.Classification {
	case ClassCreate, ClassUpdate, ClassDelete, ClassConflict:
		return true
	default:
		return false
	}
}
