/*
exposure.go - Indicative exposure band in dollars

PURPOSE:
  Sizes the potential under-provision across the workforce as a low/high
  dollar band. The gap heuristic is assumption-based sizing, not a
  statutory entitlement calculation, and the band says "order of
  magnitude", not "book this".

HEURISTIC:
  below eligibility        no gap
  at or past full years    3 to 5 weeks of hours
  in between               1 to 3 weeks, scaled linearly across the span

  A present balance offsets the gap, floored at zero; employees without a
  derivable hourly rate contribute nothing to the band.
*/
package lsl

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-audit/audit"
)

// Band is a low/high dollar estimate of workforce-wide LSL exposure.
type Band struct {
	Low  decimal.Decimal
	High decimal.Decimal
}

// GapHours returns the indicative (low, high) hour gap for one employee's
// tenure. Both bounds are zero below the eligibility milestone.
func GapHours(serviceYears, eligibilityYears, fullYears, hoursPerDay float64) (float64, float64) {
	if serviceYears < eligibilityYears {
		return 0, 0
	}
	weekHours := hoursPerDay * 5

	if serviceYears >= fullYears {
		return weekHours * 3, weekHours * 5
	}

	span := fullYears - eligibilityYears
	if span <= 0 {
		return 0, 0
	}
	factor := (serviceYears - eligibilityYears) / span
	return weekHours * 1 * factor, weekHours * 3 * factor
}

// ExposureBand sums the per-employee gap valued at each employee's hourly
// rate. Existing balances offset the gap before valuation.
func ExposureBand(states []State, params audit.Params) Band {
	low := decimal.Zero
	high := decimal.Zero

	for _, st := range states {
		if !st.HourlyRate.Valid {
			continue
		}
		gapLow, gapHigh := GapHours(st.ServiceYears, params.EligibilityYears, params.FullYears, params.HoursPerDay)
		if st.Balance.Valid {
			units := st.Balance.Decimal.InexactFloat64()
			gapLow = math.Max(0, gapLow-units)
			gapHigh = math.Max(0, gapHigh-units)
		}
		hourly := st.HourlyRate.Decimal
		low = low.Add(decimal.NewFromFloat(gapLow).Mul(hourly))
		high = high.Add(decimal.NewFromFloat(gapHigh).Mul(hourly))
	}
	return Band{Low: low, High: high}
}
