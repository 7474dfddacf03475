/*
Package loader reads the four payroll input tables from a directory of CSV
files into the audit data model.

PURPOSE:
  One gateway between payroll exports and the engine. Schema validation
  runs before any parsing; dates follow the mode's policy; numeric cells
  are strict in both modes because they carry money.

INPUT FILES:
  employees.csv          required
  leave_ledger.csv       required in Strict mode, optional in Lenient
  balances_snapshot.csv  required
  pay_rates.csv          optional

MODES:
  Strict   (leakage path) an unparseable date aborts the load
  Lenient  (LSL path)     unparseable dates coerce to the zero date and
                          are counted per table/column in Warnings

  Empty date cells are absence, not failure: they coerce to the zero date
  in both modes. Lenient mode counts them for the columns the downstream
  computations depend on (start_date, as_of_date).

SEE ALSO:
  - audit: the data model and error types this package produces
  - sample.go: writes a self-contained demonstration dataset
*/
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-audit/audit"
)

// Input file names within a data directory.
const (
	FileEmployees = "employees.csv"
	FileLedger    = "leave_ledger.csv"
	FileSnapshot  = "balances_snapshot.csv"
	FilePayRates  = "pay_rates.csv"
)

// Mode selects the date-parsing policy.
type Mode int

const (
	// Strict aborts the load on the first unparseable date.
	Strict Mode = iota
	// Lenient coerces unparseable dates to the zero date and counts them.
	Lenient
)

// =============================================================================
// WARNINGS - Lenient-mode date quality counters
// =============================================================================

// Warnings aggregates per table/column counts of date cells that did not
// yield a usable date under the lenient policy.
type Warnings struct {
	counts map[string]int
}

func newWarnings() *Warnings {
	return &Warnings{counts: make(map[string]int)}
}

func (w *Warnings) add(table, column string) {
	w.counts[table+" "+column]++
}

// Count returns the number of affected rows for one table/column.
func (w *Warnings) Count(table, column string) int {
	return w.counts[table+" "+column]
}

// Empty reports whether the load raised no warnings.
func (w *Warnings) Empty() bool {
	return len(w.counts) == 0
}

// Lines renders one human-readable line per affected table/column, sorted.
func (w *Warnings) Lines() []string {
	keys := make([]string, 0, len(w.counts))
	for k := range w.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		table, column, _ := strings.Cut(k, " ")
		lines = append(lines, fmt.Sprintf("%s: %d unparseable %s row(s)", table, w.counts[k], column))
	}
	return lines
}

// =============================================================================
// LOADING
// =============================================================================

// LoadDataset reads the input tables under dir. The returned Warnings is
// never nil; it is empty for Strict loads.
func LoadDataset(dir string, mode Mode) (*audit.Dataset, *Warnings, error) {
	warnings := newWarnings()
	ds := &audit.Dataset{}

	employees, err := loadEmployees(filepath.Join(dir, FileEmployees), mode, warnings)
	if err != nil {
		return nil, nil, err
	}
	ds.Employees = employees

	ledger, err := loadLedger(filepath.Join(dir, FileLedger), mode, warnings)
	switch {
	case err == nil:
		ds.Ledger = ledger
	case errors.Is(err, fs.ErrNotExist) && mode == Lenient:
		// The LSL path runs off the register and the snapshot alone.
	default:
		return nil, nil, err
	}

	snapshot, err := loadSnapshot(filepath.Join(dir, FileSnapshot), mode, warnings)
	if err != nil {
		return nil, nil, err
	}
	ds.Snapshot = snapshot

	payRates, err := loadPayRates(filepath.Join(dir, FilePayRates), mode, warnings)
	switch {
	case err == nil:
		ds.PayRates = payRates
	case errors.Is(err, fs.ErrNotExist):
		// Pay rates only feed the dollar band; absence is fine.
	default:
		return nil, nil, err
	}

	return ds, warnings, nil
}

// =============================================================================
// PER-TABLE READERS
// =============================================================================

func loadEmployees(path string, mode Mode, w *Warnings) ([]audit.Employee, error) {
	t, err := readTable(path, FileEmployees, audit.EmployeeColumns)
	if err != nil {
		return nil, err
	}

	employees := make([]audit.Employee, 0, len(t.rows))
	for _, row := range t.rows {
		emp := audit.Employee{
			EmployeeID:     t.cell(row, "employee_id"),
			EmploymentType: t.cell(row, "employment_type"),
		}
		if raw := t.cell(row, "fte"); raw != "" {
			fte, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &audit.ValueParseError{Table: FileEmployees, Column: "fte", Value: raw}
			}
			emp.FTE = fte
		}
		emp.StartDate, err = parseDate(t.cell(row, "start_date"), FileEmployees, "start_date", mode, w, true)
		if err != nil {
			return nil, err
		}
		if t.has("end_date") {
			emp.EndDate, err = parseDate(t.cell(row, "end_date"), FileEmployees, "end_date", mode, w, false)
			if err != nil {
				return nil, err
			}
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

func loadLedger(path string, mode Mode, w *Warnings) ([]audit.LedgerEvent, error) {
	t, err := readTable(path, FileLedger, audit.LedgerColumns)
	if err != nil {
		return nil, err
	}

	events := make([]audit.LedgerEvent, 0, len(t.rows))
	for _, row := range t.rows {
		e := audit.LedgerEvent{
			EmployeeID: t.cell(row, "employee_id"),
			LeaveType:  t.cell(row, "leave_type"),
			EventType:  audit.EventType(t.cell(row, "event_type")),
		}
		e.EventDate, err = parseDate(t.cell(row, "event_date"), FileLedger, "event_date", mode, w, false)
		if err != nil {
			return nil, err
		}
		e.Units, err = parseRequiredDecimal(t.cell(row, "units"), FileLedger, "units")
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func loadSnapshot(path string, mode Mode, w *Warnings) ([]audit.SnapshotRow, error) {
	t, err := readTable(path, FileSnapshot, audit.SnapshotColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]audit.SnapshotRow, 0, len(t.rows))
	for _, raw := range t.rows {
		s := audit.SnapshotRow{
			EmployeeID: t.cell(raw, "employee_id"),
			LeaveType:  t.cell(raw, "leave_type"),
		}
		s.AsOfDate, err = parseDate(t.cell(raw, "as_of_date"), FileSnapshot, "as_of_date", mode, w, true)
		if err != nil {
			return nil, err
		}
		s.BalanceUnits, err = parseRequiredDecimal(t.cell(raw, "balance_units"), FileSnapshot, "balance_units")
		if err != nil {
			return nil, err
		}
		rows = append(rows, s)
	}
	return rows, nil
}

func loadPayRates(path string, mode Mode, w *Warnings) ([]audit.PayRate, error) {
	t, err := readTable(path, FilePayRates, audit.PayRateColumns)
	if err != nil {
		return nil, err
	}

	rates := make([]audit.PayRate, 0, len(t.rows))
	for _, row := range t.rows {
		r := audit.PayRate{EmployeeID: t.cell(row, "employee_id")}
		if t.has("hourly_rate") {
			r.HourlyRate, err = parseOptionalDecimal(t.cell(row, "hourly_rate"), FilePayRates, "hourly_rate")
			if err != nil {
				return nil, err
			}
		}
		if t.has("annual_salary") {
			r.AnnualSalary, err = parseOptionalDecimal(t.cell(row, "annual_salary"), FilePayRates, "annual_salary")
			if err != nil {
				return nil, err
			}
		}
		if t.has("as_of_date") {
			r.AsOfDate, err = parseDate(t.cell(row, "as_of_date"), FilePayRates, "as_of_date", mode, w, false)
			if err != nil {
				return nil, err
			}
		}
		rates = append(rates, r)
	}
	return rates, nil
}

// =============================================================================
// TABLE AND CELL PLUMBING
// =============================================================================

type table struct {
	name  string
	index map[string]int
	rows  [][]string
}

func readTable(path, name string, required []string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", name, err)
	}
	// Excel exports routinely prefix the first header cell with a BOM.
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")

	index := make(map[string]int, len(header))
	columns := make([]string, 0, len(header))
	for i, col := range header {
		col = strings.TrimSpace(col)
		index[col] = i
		columns = append(columns, col)
	}
	if err := audit.RequireColumns(name, columns, required); err != nil {
		return nil, err
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return &table{name: name, index: index, rows: rows}, nil
}

func (t *table) has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// cell returns the trimmed value of a column for one row, or the empty
// string for short rows and unknown columns.
func (t *table) cell(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseDate applies the mode's policy. warnEmpty marks columns whose empty
// cells are themselves a data quality problem worth counting in lenient
// mode; for the rest, empty is plain absence.
func parseDate(raw, tableName, column string, mode Mode, w *Warnings, warnEmpty bool) (audit.Date, error) {
	if raw == "" {
		if mode == Lenient && warnEmpty {
			w.add(tableName, column)
		}
		return audit.Date{}, nil
	}
	if mode == Lenient {
		d, ok := audit.ParseDateLenient(raw)
		if !ok {
			w.add(tableName, column)
		}
		return d, nil
	}
	d, err := audit.ParseDate(raw)
	if err != nil {
		return audit.Date{}, &audit.DateParseError{Table: tableName, Column: column, Value: raw}
	}
	return d, nil
}

func parseRequiredDecimal(raw, tableName, column string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, &audit.ValueParseError{Table: tableName, Column: column, Value: raw}
	}
	return d, nil
}

func parseOptionalDecimal(raw, tableName, column string) (decimal.NullDecimal, error) {
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, &audit.ValueParseError{Table: tableName, Column: column, Value: raw}
	}
	return decimal.NewNullDecimal(d), nil
}
