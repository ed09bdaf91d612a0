package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"netseg/internal/domain"
)

// exportedResult is one entry of a test results download
type exportedResult struct {
	Timestamp   string `json:"timestamp"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Duration    int    `json:"duration"`
	Details     string `json:"details"`
}

// ExportTestResults writes results as a JSON array with ISO-8601 timestamps.
// An empty list is written as [].
func ExportTestResults(results []domain.TestResult, w io.Writer) error {
	out := make([]exportedResult, 0, len(results))
	for _, r := range results {
		out = append(out, exportedResult{
			Timestamp:   r.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			Source:      r.Source,
			Destination: r.Destination,
			Type:        string(r.Type),
			Status:      string(r.Status),
			Duration:    r.Duration,
			Details:     r.Details,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode test results: %w", err)
	}
	return nil
}

// TestResultsFilename returns the download name for an export made at t,
// dated in UTC
func TestResultsFilename(t time.Time) string {
	return fmt.Sprintf("network-test-results-%s.json", t.UTC().Format("2006-01-02"))
}
