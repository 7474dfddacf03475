package audit

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PARAMS - Rule and reconciliation thresholds
// =============================================================================

// Params carries every tunable threshold of the audit. Defaults reproduce
// the standing review configuration; config may override them per run.
type Params struct {
	// Tolerance is the post-rounding |diff_units| above which the
	// BALANCE_MISMATCH_LEDGER_VS_SNAPSHOT rule fires.
	Tolerance decimal.Decimal

	// RiskTolerance is the |diff_units| above which a reconciliation row is
	// risk-flagged in the report output. 0.25 hours = 15 minutes.
	RiskTolerance decimal.Decimal

	// EligibilityYears is the LSL eligibility milestone.
	EligibilityYears float64

	// FullYears is the LSL full-entitlement reference milestone.
	FullYears float64

	// HoursPerDay converts the heuristic week bands into hours.
	HoursPerDay float64

	// LowFloorUnits is the LSL balance below which a full-tenure employee
	// is flagged suspiciously low.
	LowFloorUnits decimal.Decimal

	// HoursPerYear converts annual_salary into an hourly rate (38h * 52w).
	HoursPerYear float64
}

func DefaultParams() Params {
	return Params{
		Tolerance:        decimal.NewFromFloat(0.01),
		RiskTolerance:    decimal.NewFromFloat(0.25),
		EligibilityYears: 7.0,
		FullYears:        10.0,
		HoursPerDay:      7.6,
		LowFloorUnits:    decimal.NewFromFloat(20.0),
		HoursPerYear:     38.0 * 52.0,
	}
}
