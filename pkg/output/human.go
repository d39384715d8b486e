package output

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/evan70/fscommander/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer       io.Writer
	totalEntries int
	totalBytes   int64
	startTime    time.Time

	okMark  *color.Color
	errMark *color.Color
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{
		okMark:  color.New(color.FgGreen),
		errMark: color.New(color.FgRed),
	}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, totalEntries int, totalBytes int64) error {
	f.writer = writer
	f.totalEntries = totalEntries
	f.totalBytes = totalBytes
	f.startTime = time.Now()

	if writer != nil {
		fmt.Fprintf(writer, "Starting sync: %d entries, %s total\n",
			totalEntries, FormatBytes(totalBytes))
	}

	return nil
}

// Progress reports progress during sync
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	if f.writer == nil {
		return nil
	}

	switch update.Type {
	case "entry_start":
		fmt.Fprintf(f.writer, "[%d/%d] %s %s...\n",
			update.Index, f.totalEntries, opVerb(update.Op), update.Path)

	case "entry_complete":
		fmt.Fprintf(f.writer, "[%d/%d] %s %s (%s)\n",
			update.Index, f.totalEntries,
			f.okMark.Sprint("✓"), update.Path, FormatBytes(update.BytesWritten))

	case "entry_error":
		fmt.Fprintf(f.writer, "[%d/%d] %s %s: %v\n",
			update.Index, f.totalEntries,
			f.errMark.Sprint("✗"), update.Path, update.Error)
	}

	return nil
}

// Complete finalizes output and displays summary
func (f *HumanFormatter) Complete(result *models.SyncResult) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	label := "Sync completed"
	if result.DryRun {
		label = "Dry run completed"
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "%s in %s\n", label, result.Duration.Round(time.Millisecond))
	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Summary:\n")
	fmt.Fprintf(f.writer, "  Applied:      %d\n", result.Applied)
	fmt.Fprintf(f.writer, "  Skipped:      %d\n", result.Skipped)
	fmt.Fprintf(f.writer, "  Failed:       %d\n", result.Failed)
	fmt.Fprintf(f.writer, "  Transferred:  %s\n", FormatBytes(result.BytesTransferred))

	if result.Duration.Seconds() > 0 && result.BytesTransferred > 0 {
		avgSpeed := float64(result.BytesTransferred) / result.Duration.Seconds()
		fmt.Fprintf(f.writer, "  Avg speed:    %s/s\n", FormatBytes(int64(avgSpeed)))
	}

	if result.DryRun {
		fmt.Fprintf(f.writer, "\nPlanned operations:\n")
		for _, o := range result.Outcomes {
			if o.Status != models.StatusWouldApply {
				continue
			}
			fmt.Fprintf(f.writer, "  %-8s %s\n", opVerb(o.Op), o.RelativePath)
		}
	}

	if result.Failed > 0 {
		fmt.Fprintf(f.writer, "\nErrors:\n")
		for _, o := range result.Outcomes {
			if o.Status != models.StatusFailed {
				continue
			}
			fmt.Fprintf(f.writer, "  %s %s: %s\n", f.errMark.Sprint("✗"), o.RelativePath, o.Error)
		}
	}

	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "%s %v\n", f.errMark.Sprint("Error:"), err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

func opVerb(op models.Op) string {
	switch op {
	case models.OpMkdir:
		return "mkdir"
	case models.OpCopy:
		return "copy"
	case models.OpReplace:
		return "replace"
	case models.OpDelete:
		return "delete"
	default:
		return "skip"
	}
}

// FormatBytes formats bytes in human-readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
