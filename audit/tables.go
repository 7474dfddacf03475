package audit

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUT TABLES - Immutable reference data for one run
// =============================================================================

// Employee is one row of the employees table. Loaded once, never mutated.
type Employee struct {
	EmployeeID     string
	EmploymentType string
	FTE            float64
	StartDate      Date
	EndDate        Date // zero = still employed
}

// LedgerEvent is one dated leave event. The ledger is an append-only,
// unordered sequence; the engine never mutates it.
type LedgerEvent struct {
	EmployeeID string
	LeaveType  string
	EventDate  Date
	Units      decimal.Decimal // signed: ACCRUAL >= 0, TAKEN <= 0 by policy
	EventType  EventType
}

// SnapshotRow is a point-in-time stated balance, independent of replay.
type SnapshotRow struct {
	EmployeeID   string
	LeaveType    string
	AsOfDate     Date
	BalanceUnits decimal.Decimal
}

// PayRate is one row of the optional pay_rates table. Either HourlyRate or
// AnnualSalary may be present; hourly wins when both are.
type PayRate struct {
	EmployeeID   string
	HourlyRate   decimal.NullDecimal
	AnnualSalary decimal.NullDecimal
	AsOfDate     Date // zero = undated rate
}

// Dataset bundles one organisation's extract for a single run.
type Dataset struct {
	Employees []Employee
	Ledger    []LedgerEvent
	Snapshot  []SnapshotRow
	PayRates  []PayRate
}

// EmployeeByID builds the employee lookup used by ledger-joining rules.
// Later duplicates win, mirroring a plain keyed load.
func (ds *Dataset) EmployeeByID() map[string]Employee {
	m := make(map[string]Employee, len(ds.Employees))
	for _, e := range ds.Employees {
		m[e.EmployeeID] = e
	}
	return m
}

// SnapshotDate returns the latest non-zero as_of_date across the snapshot
// table, the reference date for tenure computations.
func (ds *Dataset) SnapshotDate() (Date, error) {
	var max Date
	for _, row := range ds.Snapshot {
		if row.AsOfDate.IsZero() {
			continue
		}
		if max.IsZero() || row.AsOfDate.After(max) {
			max = row.AsOfDate
		}
	}
	if max.IsZero() {
		return Date{}, ErrNoSnapshotDate
	}
	return max, nil
}
