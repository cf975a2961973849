package repository

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// parseNullableTime parses s with layout. NULL, empty or unparsable values
// yield nil.
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTimeToString returns SQL NULL for a nil or zero time.
func nullableTimeToString(t *time.Time, layout string) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC().Format(layout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
