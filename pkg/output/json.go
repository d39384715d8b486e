package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/evan70/fscommander/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting.
// Progress updates are not streamed; the final report carries the full
// per-entry outcome list.
type JSONFormatter struct {
	writer io.Writer
}

// JSONReport is the top-level report document
type JSONReport struct {
	PlanID      string                `json:"plan_id"`
	DryRun      bool                  `json:"dry_run"`
	StartTime   time.Time             `json:"start_time"`
	Duration    string                `json:"duration"`
	DurationMs  int64                 `json:"duration_ms"`
	Applied     int                   `json:"applied"`
	Skipped     int                   `json:"skipped"`
	Failed      int                   `json:"failed"`
	Transferred int64                 `json:"bytes_transferred"`
	Outcomes    []models.EntryOutcome `json:"outcomes"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, totalEntries int, totalBytes int64) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	return nil
}

// Progress is a no-op; JSON output stays parseable as a single document
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete emits the final report as indented JSON
func (f *JSONFormatter) Complete(result *models.SyncResult) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	report := JSONReport{
		PlanID:      result.PlanID,
		DryRun:      result.DryRun,
		StartTime:   result.StartTime,
		Duration:    result.Duration.Round(time.Millisecond).String(),
		DurationMs:  result.Duration.Milliseconds(),
		Applied:     result.Applied,
		Skipped:     result.Skipped,
		Failed:      result.Failed,
		Transferred: result.BytesTransferred,
		Outcomes:    result.Outcomes,
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// Error emits a run-level error as a JSON object
func (f *JSONFormatter) Error(err error) error {
	if f.writer == nil {
		return nil
	}
	return json.NewEncoder(f.writer).Encode(map[string]string{"error": err.Error()})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

// NewFormatter returns the formatter registered under the given name
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "human", "":
		return NewHumanFormatter(), nil
	case "progress":
		return NewProgressFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, &models.ConfigurationError{Field: "output format", Message: "unknown format: " + name}
	}
}
