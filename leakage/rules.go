/*
rules.go - The five leakage rules

Each rule is pure over the table slices bound at construction. Findings
carry a structured evidence payload; the explanation field states the
predicate that fired in source-table terms.
*/
package leakage

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-audit/audit"
)

// =============================================================================
// NEGATIVE_BALANCE
// =============================================================================

// NegativeBalance flags snapshot rows whose balance is below zero.
type NegativeBalance struct {
	Snapshot []audit.SnapshotRow
}

func (r NegativeBalance) Code() audit.RuleCode { return audit.RuleNegativeBalance }

func (r NegativeBalance) Evaluate() []audit.Finding {
	var findings []audit.Finding
	for _, row := range r.Snapshot {
		if !row.BalanceUnits.IsNegative() {
			continue
		}
		ev := audit.Evidence{
			Sources: []string{sourceSnapshot},
			PrimaryKeys: map[string]string{
				"employee_id": row.EmployeeID,
				"leave_type":  row.LeaveType,
				"as_of_date":  row.AsOfDate.String(),
			},
			Values:      map[string]any{"balance_units": row.BalanceUnits.InexactFloat64()},
			Thresholds:  map[string]any{"minimum_balance_units": 0.0},
			Explanation: "balances_snapshot.balance_units < 0",
		}
		findings = append(findings, audit.NewFinding(
			r.Code(), audit.SeverityHigh,
			row.EmployeeID, row.LeaveType, row.AsOfDate.String(),
			fmt.Sprintf("Snapshot balance is negative (%s).", row.BalanceUnits),
			ev,
			"Investigate how the balance went negative and correct the snapshot or the postings behind it.",
		))
	}
	return findings
}

// =============================================================================
// EVENT_SIGN_ANOMALY
// =============================================================================

// EventSignAnomaly flags ledger events whose sign contradicts their type:
// a negative ACCRUAL or a positive TAKEN.
type EventSignAnomaly struct {
	Ledger []audit.LedgerEvent
}

func (r EventSignAnomaly) Code() audit.RuleCode { return audit.RuleEventSignAnomaly }

func (r EventSignAnomaly) Evaluate() []audit.Finding {
	var findings []audit.Finding
	for _, e := range r.Ledger {
		accrualNegative := e.EventType == audit.EventAccrual && e.Units.IsNegative()
		takenPositive := e.EventType == audit.EventTaken && e.Units.IsPositive()
		if !accrualNegative && !takenPositive {
			continue
		}
		ev := audit.Evidence{
			Sources: []string{sourceLedger},
			PrimaryKeys: map[string]string{
				"employee_id": e.EmployeeID,
				"leave_type":  e.LeaveType,
				"event_date":  e.EventDate.String(),
			},
			Values: map[string]any{
				"event_type": string(e.EventType),
				"units":      e.Units.InexactFloat64(),
			},
			Thresholds:  map[string]any{},
			Explanation: "ledger.event_type vs ledger.units sign mismatch",
		}
		findings = append(findings, audit.NewFinding(
			r.Code(), audit.SeverityMedium,
			e.EmployeeID, e.LeaveType, e.EventDate.String(),
			fmt.Sprintf("%s event has unexpected sign (%s).", e.EventType, e.Units),
			ev,
			"Check the source payroll export for sign conventions and correct the event or the import mapping.",
		))
	}
	return findings
}

// =============================================================================
// TAKEN_BEFORE_START_DATE
// =============================================================================

// TakenBeforeStart flags TAKEN events dated before the employee's start
// date. The boundary is exclusive: taking leave on the start date itself is
// legitimate. Events for unknown employees or without a date are skipped.
type TakenBeforeStart struct {
	Ledger    []audit.LedgerEvent
	Employees map[string]audit.Employee
}

func (r TakenBeforeStart) Code() audit.RuleCode { return audit.RuleTakenBeforeStartDate }

func (r TakenBeforeStart) Evaluate() []audit.Finding {
	var findings []audit.Finding
	for _, e := range r.Ledger {
		if e.EventType != audit.EventTaken || e.EventDate.IsZero() {
			continue
		}
		emp, ok := r.Employees[e.EmployeeID]
		if !ok || emp.StartDate.IsZero() {
			continue
		}
		if !e.EventDate.Before(emp.StartDate) {
			continue
		}
		ev := audit.Evidence{
			Sources: []string{sourceLedger, sourceEmployees},
			PrimaryKeys: map[string]string{
				"employee_id": e.EmployeeID,
				"leave_type":  e.LeaveType,
				"event_date":  e.EventDate.String(),
			},
			Values: map[string]any{
				"event_type": string(audit.EventTaken),
				"event_date": e.EventDate.String(),
				"start_date": emp.StartDate.String(),
			},
			Thresholds:  map[string]any{},
			Explanation: "ledger.event_type == TAKEN and ledger.event_date < employees.start_date",
		}
		findings = append(findings, audit.NewFinding(
			r.Code(), audit.SeverityHigh,
			e.EmployeeID, e.LeaveType, e.EventDate.String(),
			fmt.Sprintf("Leave TAKEN on %s is before employee start date %s.", e.EventDate, emp.StartDate),
			ev,
			"Verify the employee start date and the leave event date; one of the two records is wrong.",
		))
	}
	return findings
}

// =============================================================================
// CASUAL_ACCRUAL_PRESENT
// =============================================================================

// CasualAccrual flags ANNUAL or PERSONAL accrual events posted to casual
// employees. Other leave types stay out of scope for this rule.
type CasualAccrual struct {
	Ledger    []audit.LedgerEvent
	Employees map[string]audit.Employee
}

func (r CasualAccrual) Code() audit.RuleCode { return audit.RuleCasualAccrualPresent }

func (r CasualAccrual) Evaluate() []audit.Finding {
	var findings []audit.Finding
	for _, e := range r.Ledger {
		if e.EventType != audit.EventAccrual {
			continue
		}
		if e.LeaveType != "ANNUAL" && e.LeaveType != "PERSONAL" {
			continue
		}
		emp, ok := r.Employees[e.EmployeeID]
		if !ok || emp.EmploymentType != audit.EmploymentCasual {
			continue
		}
		ev := audit.Evidence{
			Sources: []string{sourceLedger, sourceEmployees},
			PrimaryKeys: map[string]string{
				"employee_id": e.EmployeeID,
				"leave_type":  e.LeaveType,
				"event_date":  e.EventDate.String(),
			},
			Values: map[string]any{
				"employment_type": audit.EmploymentCasual,
				"event_type":      string(audit.EventAccrual),
				"units":           e.Units.InexactFloat64(),
			},
			Thresholds:  map[string]any{},
			Explanation: "employees.employment_type == CASUAL and ledger.event_type == ACCRUAL",
		}
		findings = append(findings, audit.NewFinding(
			r.Code(), audit.SeverityHigh,
			e.EmployeeID, e.LeaveType, e.EventDate.String(),
			"Casual employee has leave accrual event.",
			ev,
			"Confirm the employment type. Casual employees should not accrue annual or personal leave.",
		))
	}
	return findings
}

// =============================================================================
// BALANCE_MISMATCH_LEDGER_VS_SNAPSHOT
// =============================================================================

// BalanceMismatch flags reconciliation rows whose rounded difference
// exceeds the tolerance. The finding carries the signed difference.
type BalanceMismatch struct {
	Recon     []audit.ReconciliationRow
	Tolerance decimal.Decimal
}

func (r BalanceMismatch) Code() audit.RuleCode { return audit.RuleBalanceMismatch }

func (r BalanceMismatch) Evaluate() []audit.Finding {
	var findings []audit.Finding
	for _, row := range r.Recon {
		if !row.DiffUnits.Abs().GreaterThan(r.Tolerance) {
			continue
		}
		ev := audit.Evidence{
			Sources: []string{sourceLedger, sourceSnapshot},
			PrimaryKeys: map[string]string{
				"employee_id": row.EmployeeID,
				"leave_type":  row.LeaveType,
				"as_of_date":  row.AsOfDate.String(),
			},
			Values: map[string]any{
				"balance_units":        row.BalanceUnits.InexactFloat64(),
				"ledger_balance_units": row.LedgerBalanceUnits.InexactFloat64(),
				"diff_units":           row.DiffUnits.InexactFloat64(),
			},
			Thresholds:  map[string]any{"tolerance_units": r.Tolerance.InexactFloat64()},
			Explanation: "abs(ledger_balance_units - balance_units) > tolerance",
		}
		f := audit.NewFinding(
			r.Code(), audit.SeverityHigh,
			row.EmployeeID, row.LeaveType, row.AsOfDate.String(),
			fmt.Sprintf("Ledger-derived balance (%s) does not match snapshot balance (%s).",
				row.LedgerBalanceUnits, row.BalanceUnits),
			ev,
			"Reconcile the ledger history against the snapshot balance and correct whichever side is incomplete.",
		)
		f.DiffUnits = decimal.NewNullDecimal(row.DiffUnits)
		findings = append(findings, f)
	}
	return findings
}
