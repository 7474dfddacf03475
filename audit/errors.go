/*
errors.go - Centralized error types for the audit engine

PURPOSE:
  All fatal error types in one place. Per-row data anomalies are never
  errors here; surfacing those is exactly what the rule engine is for.
  Errors cover structural failures only: a missing column, an unparseable
  date on the strict path, a snapshot with no usable as-of date.

ERROR CATEGORIES:
  1. Schema errors - required column missing from an input table
  2. Date errors   - strict-mode parse failure
  3. Value errors  - numeric cell that fails to parse (fatal in both modes)
  4. Input errors  - structurally unusable inputs

USAGE:
  Callers branch with errors.Is:

    if errors.Is(err, audit.ErrMissingColumns) {
        // report the table and columns, skip the run
    }

SEE ALSO:
  - schema.go: produces SchemaError
  - loader: produces DateParseError on the strict path
*/
package audit

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingColumns is returned when an input table lacks required columns.
	// Fatal before any rule runs; a missing column must never surface as a
	// downstream lookup failure.
	ErrMissingColumns = errors.New("missing required columns")

	// ErrUnparseableDate is returned when a strict-mode date fails to parse.
	// Fatal for the leakage path.
	ErrUnparseableDate = errors.New("unparseable date")

	// ErrUnparseableValue is returned when a numeric cell fails to parse.
	// Fatal in both modes: units and balances carry money, so a bad cell
	// must never degrade to zero.
	ErrUnparseableValue = errors.New("unparseable value")

	// ErrNoSnapshotDate is returned when the snapshot table yields no usable
	// as-of date, leaving the LSL state builder without a reference point.
	// An empty snapshot surfaces here too.
	ErrNoSnapshotDate = errors.New("snapshot has no parseable as_of_date")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// SchemaError reports the table and the sorted list of missing columns.
type SchemaError struct {
	Table   string
	Missing []string // sorted
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s missing required columns: %v", e.Table, e.Missing)
}

func (e *SchemaError) Unwrap() error {
	return ErrMissingColumns
}

// DateParseError reports where a strict-mode date parse failed.
type DateParseError struct {
	Table  string
	Column string
	Value  string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("%s: unparseable %s value %q", e.Table, e.Column, e.Value)
}

func (e *DateParseError) Unwrap() error {
	return ErrUnparseableDate
}

// ValueParseError reports where a numeric cell failed to parse.
type ValueParseError struct {
	Table  string
	Column string
	Value  string
}

func (e *ValueParseError) Error() string {
	return fmt.Sprintf("%s: unparseable %s value %q", e.Table, e.Column, e.Value)
}

func (e *ValueParseError) Unwrap() error {
	return ErrUnparseableValue
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsSchemaError reports whether err stems from a missing-column failure.
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrMissingColumns)
}

// IsDateError reports whether err stems from a strict-mode date failure.
func IsDateError(err error) bool {
	return errors.Is(err, ErrUnparseableDate)
}
