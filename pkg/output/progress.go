package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/evan70/fscommander/pkg/models"
)

// ProgressFormatter renders a live progress bar while the plan executes.
// Byte counts drive the bar; entries without payload (mkdir, delete)
// advance it by zero but still update the entry counter.
type ProgressFormatter struct {
	mu           sync.Mutex
	writer       io.Writer
	bar          *pb.ProgressBar
	totalEntries int
	done         int
}

// NewProgressFormatter creates a progress bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{}
}

// Start initializes the progress bar
func (f *ProgressFormatter) Start(writer io.Writer, totalEntries int, totalBytes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writer = writer
	f.totalEntries = totalEntries
	f.done = 0

	f.bar = pb.New64(totalBytes)
	f.bar.Set(pb.Bytes, true)
	f.bar.SetTemplateString(`{{counters . }} {{bar . }} {{percent . }} {{speed . }} {{string . "entries"}}`)
	if writer != nil {
		f.bar.SetWriter(writer)
	}
	f.bar.Set("entries", fmt.Sprintf("0/%d", totalEntries))
	f.bar.Start()
	return nil
}

// Progress advances the bar
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar == nil {
		return nil
	}

	switch update.Type {
	case "entry_complete":
		f.bar.Add64(update.BytesWritten)
		f.done++
	case "entry_error":
		f.done++
	}
	f.bar.Set("entries", fmt.Sprintf("%d/%d", f.done, f.totalEntries))
	return nil
}

// Complete stops the bar and prints the summary
func (f *ProgressFormatter) Complete(result *models.SyncResult) error {
	f.mu.Lock()
	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
	w := f.writer
	f.mu.Unlock()

	if w == nil {
		w = io.Discard
	}

	fmt.Fprintf(w, "\nSync completed in %s: %d applied, %d skipped, %d failed, %s transferred\n",
		result.Duration.Round(time.Millisecond),
		result.Applied, result.Skipped, result.Failed,
		FormatBytes(result.BytesTransferred))

	if result.Failed > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, o := range result.Outcomes {
			if o.Status != models.StatusFailed {
				continue
			}
			fmt.Fprintf(w, "  %s: %s\n", o.RelativePath, o.Error)
		}
	}
	return nil
}

// Error reports an error
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
