package audit

import (
	"sort"
)

// =============================================================================
// SCHEMA VALIDATION - Fails fast, before any parsing or rule evaluation
// =============================================================================

// Required column sets per input table. end_date (employees) and every
// pay_rates column beyond employee_id are optional by contract.
var (
	EmployeeColumns = []string{"employee_id", "employment_type", "fte", "start_date"}
	LedgerColumns   = []string{"employee_id", "leave_type", "event_date", "units", "event_type"}
	SnapshotColumns = []string{"employee_id", "leave_type", "as_of_date", "balance_units"}
	PayRateColumns  = []string{"employee_id"}
)

// RequireColumns checks that every required column appears in the header.
// On failure it returns a *SchemaError naming the table and the sorted
// missing columns. It has no side effects.
func RequireColumns(table string, header []string, required []string) error {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}

	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	sort.Strings(missing)
	return &SchemaError{Table: table, Missing: missing}
}
