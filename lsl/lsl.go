/*
Package lsl implements the long service leave battery: a per-employee
service state derived from the register and the snapshot, four rules over
that state, and an indicative exposure band in dollars.

PURPOSE:
  Long service leave accrues over many years and is easy to lose track
  of: an eligible employee with no LSL record, a negative balance, a
  zero balance after a decade, or a balance far below what tenure
  implies. These are provisioning risks, not payroll arithmetic errors,
  so the battery works off tenure rather than ledger replay.

STATE:
  One row per employee: service years to the snapshot date, the latest
  LSL snapshot balance (when one exists), and an hourly rate when pay
  data allows one to be derived.

RULES:
  LSL_MISSING_FOR_ELIGIBLE_EMPLOYEE   eligible tenure, no LSL row at all
  LSL_NEGATIVE_BALANCE                LSL balance below zero
  LSL_ZERO_BALANCE_FOR_LONG_TENURE    eligible tenure, balance exactly zero
  LSL_BALANCE_SUSPICIOUSLY_LOW        full tenure, positive balance below floor

EXPOSURE:
  The band is indicative sizing only, never a statutory entitlement
  calculation. It exists to rank the problem, not to book a provision.

SEE ALSO:
  - audit: engine, finding identity, shared parameters
  - leakage: the ledger/snapshot battery
*/
package lsl

import (
	"github.com/warp/leave-audit/audit"
)

const (
	leaveTypeLSL    = "LSL"
	sourceEmployees = "employees.csv"
	sourceSnapshot  = "balances_snapshot.csv"
)

// Rules binds the battery to one run's state, in fixed presentation order.
func Rules(states []State, params audit.Params) []audit.Rule {
	return []audit.Rule{
		MissingForEligible{States: states, EligibilityYears: params.EligibilityYears},
		NegativeBalance{States: states},
		ZeroBalanceLongTenure{States: states, EligibilityYears: params.EligibilityYears},
		SuspiciouslyLow{States: states, FullYears: params.FullYears, LowFloorUnits: params.LowFloorUnits},
	}
}
