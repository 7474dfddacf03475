/*
recon.go - Ledger replay against snapshot rows

PURPOSE:
  The algorithmic core. For every snapshot row the engine replays all
  ledger events sharing (employee_id, leave_type) up to the row's
  as_of_date and compares the replayed balance to the stated one. This is
  a temporal event-sourcing replay bounded at an arbitrary cutoff: each
  snapshot date gets its own independent fold over the same event stream.

ROUNDING:
  diff_units is computed from the UNROUNDED ledger sum, then both
  ledger_balance_units and diff_units are rounded to 2 decimal places.
  Tolerance comparisons downstream happen post-rounding, so float noise
  below a cent of an hour never triggers a false mismatch.

EDGE CASES:
  - No matching events: ledger balance is 0.0, diff is the full stated balance.
  - Events with no date count toward the replay (only dated events after the
    cutoff are discarded). Strict loading prevents undated events on this path.
  - Multiple snapshot dates per (employee, leave_type) reconcile independently.

SEE ALSO:
  - engine.go: the BALANCE_MISMATCH rule consumes these rows
*/
package audit

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECONCILIATION ROW - Derived, recomputed fresh every run
// =============================================================================

type ReconciliationRow struct {
	EmployeeID         string
	LeaveType          string
	AsOfDate           Date
	BalanceUnits       decimal.Decimal
	LedgerBalanceUnits decimal.Decimal // replayed sum, rounded to 2dp
	DiffUnits          decimal.Decimal // stated - replayed, rounded to 2dp
	RiskFlag           bool
	RiskReason         string
}

// SnapshotKey identifies one stated-balance row.
type SnapshotKey struct {
	EmployeeID string
	LeaveType  string
	AsOfDate   Date
}

// =============================================================================
// RECONCILER
// =============================================================================

type Reconciler struct {
	params Params
}

func NewReconciler(params Params) *Reconciler {
	return &Reconciler{params: params}
}

type ledgerKey struct {
	employeeID string
	leaveType  string
}

// Reconcile replays the ledger against every snapshot row. Row order follows
// the snapshot table; each row is reconciled independently, so duplicate
// snapshot keys each compare against the same single-counted replay sum.
func (r *Reconciler) Reconcile(snapshot []SnapshotRow, ledger []LedgerEvent) []ReconciliationRow {
	groups := make(map[ledgerKey][]LedgerEvent)
	for _, e := range ledger {
		k := ledgerKey{employeeID: e.EmployeeID, leaveType: e.LeaveType}
		groups[k] = append(groups[k], e)
	}

	rows := make([]ReconciliationRow, 0, len(snapshot))
	for _, snap := range snapshot {
		sum := decimal.Zero
		for _, e := range groups[ledgerKey{employeeID: snap.EmployeeID, leaveType: snap.LeaveType}] {
			if !e.EventDate.IsZero() && e.EventDate.After(snap.AsOfDate) {
				continue
			}
			sum = sum.Add(e.Units)
		}

		diff := snap.BalanceUnits.Sub(sum).Round(2)
		row := ReconciliationRow{
			EmployeeID:         snap.EmployeeID,
			LeaveType:          snap.LeaveType,
			AsOfDate:           snap.AsOfDate,
			BalanceUnits:       snap.BalanceUnits,
			LedgerBalanceUnits: sum.Round(2),
			DiffUnits:          diff,
		}
		if diff.Abs().GreaterThan(r.params.RiskTolerance) {
			row.RiskFlag = true
			row.RiskReason = string(RuleBalanceMismatch)
		}
		rows = append(rows, row)
	}
	return rows
}

// DuplicateSnapshotKeys returns the snapshot keys that appear more than
// once, sorted, for the caller to surface as a data-quality warning.
// Downstream grouping assumes zero or one row per key.
func DuplicateSnapshotKeys(snapshot []SnapshotRow) []SnapshotKey {
	counts := make(map[SnapshotKey]int, len(snapshot))
	for _, row := range snapshot {
		counts[SnapshotKey{EmployeeID: row.EmployeeID, LeaveType: row.LeaveType, AsOfDate: row.AsOfDate}]++
	}

	var dups []SnapshotKey
	for k, n := range counts {
		if n > 1 {
			dups = append(dups, k)
		}
	}
	sort.Slice(dups, func(i, j int) bool {
		if dups[i].EmployeeID != dups[j].EmployeeID {
			return dups[i].EmployeeID < dups[j].EmployeeID
		}
		if dups[i].LeaveType != dups[j].LeaveType {
			return dups[i].LeaveType < dups[j].LeaveType
		}
		return dups[i].AsOfDate.Before(dups[j].AsOfDate)
	})
	return dups
}

// SortReconciliation orders rows by (employee_id, leave_type, as_of_date)
// for stable tabular output.
func SortReconciliation(rows []ReconciliationRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].EmployeeID != rows[j].EmployeeID {
			return rows[i].EmployeeID < rows[j].EmployeeID
		}
		if rows[i].LeaveType != rows[j].LeaveType {
			return rows[i].LeaveType < rows[j].LeaveType
		}
		return rows[i].AsOfDate.Before(rows[j].AsOfDate)
	})
}
