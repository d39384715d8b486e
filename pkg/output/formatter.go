package output

import (
	"io"

	"github.com/evan70/fscommander/pkg/models"
)

// ProgressUpdate represents a progress notification during sync execution
type ProgressUpdate struct {
	Type         string // "entry_start", "entry_complete", "entry_error"
	Path         string
	Op           models.Op
	BytesWritten int64
	Index        int
	Total        int
	Error        error
}

// Formatter defines the interface for sync output formatting.
// Implementations include human-readable and JSON formatters.
type Formatter interface {
	// Start initializes the formatter for a new sync run
	Start(writer io.Writer, totalEntries int, totalBytes int64) error

	// Progress reports progress while the plan executes
	Progress(update ProgressUpdate) error

	// Complete finalizes output and displays the result summary
	Complete(result *models.SyncResult) error

	// Error reports a run-level error
	Error(err error) error

	// Name returns the formatter name
	Name() string
}
