/*
Package leakage implements the leave leakage battery: five rules that
cross-check the employee register, the leave ledger, and the balance
snapshot for value leaking out of the payroll system.

PURPOSE:
  Leave liabilities move money. A negative balance, a mis-signed event,
  leave taken before employment began, accruals for casual staff, or a
  snapshot that disagrees with its own ledger history are all ways value
  leaks (or is fabricated) without anyone deciding it should.

RULES:
  NEGATIVE_BALANCE                      snapshot balance below zero
  EVENT_SIGN_ANOMALY                    ACCRUAL negative or TAKEN positive
  TAKEN_BEFORE_START_DATE               leave consumed before employment
  CASUAL_ACCRUAL_PRESENT                casual staff accruing ANNUAL/PERSONAL
  BALANCE_MISMATCH_LEDGER_VS_SNAPSHOT   replayed ledger vs snapshot balance

JOIN SEMANTICS:
  Rules joining ledger to employees look each event up by employee_id and
  skip events whose employee is unknown. An unmatched event is a data gap,
  not a rule violation, and must never abort the battery.

SEE ALSO:
  - audit: engine, finding identity, reconciliation
  - lsl: the long service leave battery
*/
package leakage

import (
	"github.com/warp/leave-audit/audit"
)

// Source table file names, as they appear in finding evidence.
const (
	sourceEmployees = "employees.csv"
	sourceLedger    = "leave_ledger.csv"
	sourceSnapshot  = "balances_snapshot.csv"
)

// Rules binds the battery to one run's data, in fixed presentation order.
func Rules(ds *audit.Dataset, recon []audit.ReconciliationRow, params audit.Params) []audit.Rule {
	employees := ds.EmployeeByID()
	return []audit.Rule{
		NegativeBalance{Snapshot: ds.Snapshot},
		EventSignAnomaly{Ledger: ds.Ledger},
		TakenBeforeStart{Ledger: ds.Ledger, Employees: employees},
		CasualAccrual{Ledger: ds.Ledger, Employees: employees},
		BalanceMismatch{Recon: recon, Tolerance: params.Tolerance},
	}
}
