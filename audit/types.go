/*
Package audit provides the core payroll leave audit engine.

PURPOSE:
  This package contains the machinery shared by every audit module: the
  input table model, day-first date handling, schema validation, the
  cutoff-bounded ledger replay, the ordered rule runner, and the evidence
  and identity contract that makes findings diffable across runs.

KEY CONCEPTS IN THIS FILE (types.go):
  - Severity / RuleCode: the fixed classification vocabulary
  - Finding: one detected violation with evidence and a stable identity
  - EventType: ledger event polarity (ACCRUAL adds units, TAKEN consumes)

DESIGN PRINCIPLES:
  1. Immutability: input tables and findings are never mutated after load/build
  2. Precision: decimal.Decimal for unit arithmetic, 2dp rounding at the edges
  3. Determinism: identical inputs produce byte-identical finding IDs
  4. Explainability: every finding carries sources, keys, values, thresholds

USAGE:
  recon := audit.NewReconciler(audit.DefaultParams()).Reconcile(snapshot, ledger)
  engine := audit.NewEngine(leakage.Rules(ds, recon, params)...)
  findings := engine.Run()

SEE ALSO:
  - recon.go: ledger replay against snapshot rows
  - engine.go: rule registration and ordered evaluation
  - evidence.go: evidence payloads and finding identity
*/
package audit

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SEVERITY - Fixed three-level classification
// =============================================================================

type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Rank orders severities for presentation: HIGH sorts first, unknown last.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 99
	}
}

// =============================================================================
// RULE CODES - Fixed catalogue
// =============================================================================

type RuleCode string

const (
	RuleNegativeBalance      RuleCode = "NEGATIVE_BALANCE"
	RuleEventSignAnomaly     RuleCode = "EVENT_SIGN_ANOMALY"
	RuleTakenBeforeStartDate RuleCode = "TAKEN_BEFORE_START_DATE"
	RuleCasualAccrualPresent RuleCode = "CASUAL_ACCRUAL_PRESENT"
	RuleBalanceMismatch      RuleCode = "BALANCE_MISMATCH_LEDGER_VS_SNAPSHOT"

	RuleLSLMissingForEligible     RuleCode = "LSL_MISSING_FOR_ELIGIBLE_EMPLOYEE"
	RuleLSLNegativeBalance        RuleCode = "LSL_NEGATIVE_BALANCE"
	RuleLSLZeroBalanceLongTenure  RuleCode = "LSL_ZERO_BALANCE_FOR_LONG_TENURE"
	RuleLSLBalanceSuspiciouslyLow RuleCode = "LSL_BALANCE_SUSPICIOUSLY_LOW"
)

// =============================================================================
// EVENT TYPE - Ledger event polarity
// =============================================================================

type EventType string

const (
	EventAccrual EventType = "ACCRUAL" // expected units >= 0
	EventTaken   EventType = "TAKEN"   // expected units <= 0
)

// EmploymentCasual is the employment_type value that must not accrue
// ANNUAL or PERSONAL leave.
const EmploymentCasual = "CASUAL"

// =============================================================================
// FINDING - One detected rule violation
// =============================================================================

// Finding is the central output entity. It is created once per violation
// instance per run and never mutated afterwards. Equality across runs is
// governed by FindingID, not by struct identity.
type Finding struct {
	EmployeeID string
	LeaveType  string // empty = not applicable
	AsOfDate   string // ISO yyyy-mm-dd, empty = not applicable
	RuleCode   RuleCode
	Severity   Severity
	Message    string
	DiffUnits  decimal.NullDecimal
	Evidence   string // serialized evidence payload, see evidence.go
	FindingID  string // 12 hex chars, deterministic
	NextAction string
}

// MustDecimal parses s as a decimal, returning zero on failure.
// Intended for literals in seed data and tests.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
