package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResult reports that no record survived filtering. It is never
// returned from Process; callers receive empty outputs and may log it.
var ErrEmptyResult = errors.New("no reports survived filtering")

// SchemaError reports required columns missing entirely from the record
// stream's schema. It aborts the run.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema missing required columns: %s", strings.Join(e.Missing, ", "))
}

// TimestampError reports a surviving record whose timestamp cannot be parsed.
type TimestampError struct {
	MMSI  int64
	Value string
	Err   error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("mmsi %d: invalid timestamp %q: %v", e.MMSI, e.Value, e.Err)
}

func (e *TimestampError) Unwrap() error { return e.Err }
