package models

import (
	"time"
)

// OutcomeStatus is the per-entry result of plan execution
type OutcomeStatus string

const (
	// StatusApplied indicates the mutation was performed
	StatusApplied OutcomeStatus = "applied"
	// StatusWouldApply indicates the mutation was computed under dry-run
	StatusWouldApply OutcomeStatus = "would-apply"
	// StatusSkipped indicates no mutation was required or policy kept the destination
	StatusSkipped OutcomeStatus = "skipped"
	// StatusFailed indicates the mutation was attempted and failed
	StatusFailed OutcomeStatus = "failed"
)

// EntryOutcome records what happened to a single plan entry
type EntryOutcome struct {
	// RelativePath is the destination-relative path
	RelativePath string `json:"relative_path"`

	// Classification is the diff class the entry carried
	Classification Classification `json:"classification"`

	// Op is the mutation that was (or would have been) performed
	Op Op `json:"op"`

	// Status is the execution result
	Status OutcomeStatus `json:"status"`

	// Reason explains skips and policy decisions
	Reason string `json:"reason,omitempty"`

	// Error holds the failure message for StatusFailed
	Error string `json:"error,omitempty"`

	// BytesCopied is the number of bytes written for copy ops
	BytesCopied int64 `json:"bytes_copied,omitempty"`

	// Duration is the time spent applying the entry
	Duration time.Duration `json:"duration,omitempty"`
}

// SyncResult is the aggregate outcome of one plan execution.
// Returned to the caller; never persisted.
type SyncResult struct {
	// PlanID identifies the executed plan
	PlanID string `json:"plan_id"`

	// DryRun mirrors the plan option
	DryRun bool `json:"dry_run"`

	// Outcomes holds one record per plan entry, in execution order
	Outcomes []EntryOutcome `json:"outcomes"`

	// Applied counts performed (or would-be-performed) mutations
	Applied int `json:"applied"`

	// Skipped counts entries left untouched
	Skipped int `json:"skipped"`

	// Failed counts entries whose mutation failed
	Failed int `json:"failed"`

	// BytesTransferred totals the bytes written by copy ops
	BytesTransferred int64 `json:"bytes_transferred"`

	// StartTime and EndTime bound the execution
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}

// Record appends an outcome and updates the aggregate counters
func (r *SyncResult) Record(o EntryOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusApplied, StatusWouldApply:
		r.Applied++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
	r.BytesTransferred += o.BytesCopied
}
