package sqlite

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Time Conversion Helpers
// ============================================================================

// timeToUnix stores times as Unix nanoseconds so ordering is numeric.
// The zero time is stored as 0.
func timeToUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

// unixToTime converts stored nanoseconds back to a UTC time
func unixToTime(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

// ============================================================================
// JSON Document Helpers
// ============================================================================

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanJSON scans a single JSON column into target.
// sql.ErrNoRows is returned unwrapped so callers can compare against it.
func scanJSON(row rowScanner, target interface{}) error {
	var data []byte
	if err := row.Scan(&data); err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
