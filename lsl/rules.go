/*
rules.go - The four long service leave rules

All four read the per-employee state. MISSING is the only rule keyed on
the run snapshot date; the balance-level rules key on the balance row's
own date when it has one.
*/
package lsl

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-audit/audit"
)

// =============================================================================
// LSL_MISSING_FOR_ELIGIBLE_EMPLOYEE
// =============================================================================

// MissingForEligible flags employees past the eligibility milestone with no
// LSL balance row at all. A present zero balance is a different problem and
// belongs to ZeroBalanceLongTenure.
type MissingForEligible struct {
	States           []State
	EligibilityYears float64
}

func (r MissingForEligible) Code() audit.RuleCode { return audit.RuleLSLMissingForEligible }

func (r MissingForEligible) Evaluate() []audit.Finding {
	var findings []audit.Finding
	for _, st := range r.States {
		if st.ServiceYears < r.EligibilityYears || st.Balance.Valid {
			continue
		}
		asOf := st.SnapshotDate.String()
		ev := audit.Evidence{
			Sources: []string{sourceEmployees, sourceSnapshot},
			PrimaryKeys: map[string]string{
				"employee_id": st.EmployeeID,
				"leave_type":  leaveTypeLSL,
				"as_of_date":  asOf,
			},
			Values: map[string]any{
				"service_years":       st.ServiceYears,
				"lsl_balance_present": false,
			},
			Thresholds: map[string]any{"eligibility_years": r.EligibilityYears},
			Explanation: "Employee has reached the configured LSL eligibility milestone, " +
				"but no LSL balance record was found in the snapshot.",
		}
		findings = append(findings, audit.NewFinding(
			r.Code(), audit.SeverityHigh,
			st.EmployeeID, leaveTypeLSL, asOf,
			fmt.Sprintf("Employee has %.1f years of service but no LSL balance record.", st.ServiceYears),
			ev,
			"Confirm whether LSL is being tracked outside the payroll system. "+
				"If not, review historical service records and determine appropriate "+
				"LSL accruals/provisions.",
		))
	}
	return findings
}

// =============================================================================
// LSL_NEGATIVE_BALANCE
// =============================================================================

// NegativeBalance flags present LSL balances below zero regardless of tenure.
type NegativeBalance struct {
	States []State
}

func (r NegativeBalance) Code() audit.RuleCode { return audit.RuleLSLNegativeBalance }

func (r NegativeBalance) Evaluate() []audit.Finding {
	var findings []audit.Finding
	for _, st := range r.States {
		if !st.Balance.Valid || !st.Balance.Decimal.IsNegative() {
			continue
		}
		asOf := st.EffectiveAsOf().String()
		ev := audit.Evidence{
			Sources: []string{sourceSnapshot},
			PrimaryKeys: map[string]string{
				"employee_id": st.EmployeeID,
				"leave_type":  leaveTypeLSL,
				"as_of_date":  asOf,
			},
			Values: map[string]any{
				"lsl_balance_units": st.Balance.Decimal.InexactFloat64(),
				"service_years":     st.ServiceYears,
			},
			Thresholds:  map[string]any{"expected": "lsl_balance_units >= 0"},
			Explanation: "Negative LSL balances are usually invalid and indicate data or configuration issues.",
		}
		findings = append(findings, audit.NewFinding(
			r.Code(), audit.SeverityHigh,
			st.EmployeeID, leaveTypeLSL, asOf,
			fmt.Sprintf("LSL balance is negative (%s units).", st.Balance.Decimal.StringFixed(2)),
			ev,
			"Review LSL configuration and any manual adjustments. "+
				"Correct posting/mapping issues and re-run.",
		))
	}
	return findings
}

// =============================================================================
// LSL_ZERO_BALANCE_FOR_LONG_TENURE
// =============================================================================

// ZeroBalanceLongTenure flags eligible employees whose LSL row exists but
// holds exactly zero units.
type ZeroBalanceLongTenure struct {
	States           []State
	EligibilityYears float64
}

func (r ZeroBalanceLongTenure) Code() audit.RuleCode { return audit.RuleLSLZeroBalanceLongTenure }

func (r ZeroBalanceLongTenure) Evaluate() []audit.Finding {
	var findings []audit.Finding
	for _, st := range r.States {
		if st.ServiceYears < r.EligibilityYears || !st.Balance.Valid || !st.Balance.Decimal.IsZero() {
			continue
		}
		asOf := st.EffectiveAsOf().String()
		ev := audit.Evidence{
			Sources: []string{sourceEmployees, sourceSnapshot},
			PrimaryKeys: map[string]string{
				"employee_id": st.EmployeeID,
				"leave_type":  leaveTypeLSL,
				"as_of_date":  asOf,
			},
			Values: map[string]any{
				"service_years":     st.ServiceYears,
				"lsl_balance_units": st.Balance.Decimal.InexactFloat64(),
			},
			Thresholds: map[string]any{"eligibility_years": r.EligibilityYears},
			Explanation: "Eligible employees typically accrue some LSL over time; " +
				"a zero balance may indicate missing configuration or tracking.",
		}
		findings = append(findings, audit.NewFinding(
			r.Code(), audit.SeverityHigh,
			st.EmployeeID, leaveTypeLSL, asOf,
			fmt.Sprintf("Employee has %.1f years of service but an LSL balance of 0 units.", st.ServiceYears),
			ev,
			"Confirm whether LSL has been intentionally excluded or whether accruals "+
				"have not been configured correctly for this employee.",
		))
	}
	return findings
}

// =============================================================================
// LSL_BALANCE_SUSPICIOUSLY_LOW
// =============================================================================

// SuspiciouslyLow flags employees at or past the full entitlement milestone
// holding a positive balance below the floor. Strictly positive: zero and
// negative balances are the other rules' territory.
type SuspiciouslyLow struct {
	States        []State
	FullYears     float64
	LowFloorUnits decimal.Decimal
}

func (r SuspiciouslyLow) Code() audit.RuleCode { return audit.RuleLSLBalanceSuspiciouslyLow }

func (r SuspiciouslyLow) Evaluate() []audit.Finding {
	var findings []audit.Finding
	for _, st := range r.States {
		if st.ServiceYears < r.FullYears || !st.Balance.Valid {
			continue
		}
		units := st.Balance.Decimal
		if !units.IsPositive() || !units.LessThan(r.LowFloorUnits) {
			continue
		}
		asOf := st.EffectiveAsOf().String()
		ev := audit.Evidence{
			Sources: []string{sourceEmployees, sourceSnapshot},
			PrimaryKeys: map[string]string{
				"employee_id": st.EmployeeID,
				"leave_type":  leaveTypeLSL,
				"as_of_date":  asOf,
			},
			Values: map[string]any{
				"service_years":     st.ServiceYears,
				"lsl_balance_units": units.InexactFloat64(),
			},
			Thresholds: map[string]any{
				"full_entitlement_reference_years": r.FullYears,
				"low_balance_floor_units":          r.LowFloorUnits.InexactFloat64(),
			},
			Explanation: "Long-tenured employees usually hold more LSL. " +
				"A very low balance may indicate configuration or data issues.",
		}
		findings = append(findings, audit.NewFinding(
			r.Code(), audit.SeverityMedium,
			st.EmployeeID, leaveTypeLSL, asOf,
			fmt.Sprintf("Employee has %.1f years of service but only %s units of LSL.",
				st.ServiceYears, units.StringFixed(2)),
			ev,
			"Review LSL accrual rules and historical balances to confirm whether the "+
				"low LSL balance is expected for this employee.",
		))
	}
	return findings
}
