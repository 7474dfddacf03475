/*
state.go - Per-employee long service leave state

PURPOSE:
  Joins the employee register, the LSL rows of the balance snapshot, and
  the pay rate table into one row per employee. Everything downstream
  (rules, exposure) reads this state and never the raw tables.

SERVICE YEARS:
  Calendar days from start date to the earlier of end date and snapshot
  date, floored at zero, divided by 365.25. An employee without a valid
  start date gets zero service years and therefore trips no tenure rule.

BALANCE SELECTION:
  LSL rows are snapshot rows whose leave type contains "LSL" (case
  insensitive), so "LSL" and "LSL_PRO_RATA" both match. Per employee the
  row with the latest valid as-of date wins; rows without a date lose to
  any dated row; among equals the last one in file order wins.
*/
package lsl

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-audit/audit"
)

const daysPerYear = 365.25

// State is one employee's long service leave position at the snapshot date.
// Balance is invalid when the snapshot has no LSL row for the employee;
// HourlyRate is invalid when pay data allows no rate to be derived.
type State struct {
	EmployeeID   string
	ServiceYears float64
	Balance      decimal.NullDecimal
	AsOfDate     audit.Date
	SnapshotDate audit.Date
	HourlyRate   decimal.NullDecimal
}

// EffectiveAsOf is the date findings against this state are keyed on: the
// balance row's own date when it has one, the run snapshot date otherwise.
func (s State) EffectiveAsOf() audit.Date {
	if s.AsOfDate.IsZero() {
		return s.SnapshotDate
	}
	return s.AsOfDate
}

// BuildState assembles per-employee state in register order.
func BuildState(ds *audit.Dataset, snapshotDate audit.Date, params audit.Params) []State {
	balances := latestLSLBalances(ds.Snapshot)
	rates := latestHourlyRates(ds.PayRates, params.HoursPerYear)

	states := make([]State, 0, len(ds.Employees))
	for _, emp := range ds.Employees {
		st := State{
			EmployeeID:   emp.EmployeeID,
			ServiceYears: serviceYears(emp, snapshotDate),
			SnapshotDate: snapshotDate,
		}
		if bal, ok := balances[emp.EmployeeID]; ok {
			st.Balance = decimal.NewNullDecimal(bal.units)
			st.AsOfDate = bal.asOf
		}
		if rate, ok := rates[emp.EmployeeID]; ok {
			st.HourlyRate = decimal.NewNullDecimal(rate)
		}
		states = append(states, st)
	}
	return states
}

func serviceYears(emp audit.Employee, snapshotDate audit.Date) float64 {
	if emp.StartDate.IsZero() {
		return 0
	}
	end := snapshotDate
	if !emp.EndDate.IsZero() && emp.EndDate.Before(snapshotDate) {
		end = emp.EndDate
	}
	days := audit.DaysBetween(emp.StartDate, end)
	if days < 0 {
		days = 0
	}
	return float64(days) / daysPerYear
}

type lslBalance struct {
	asOf  audit.Date
	units decimal.Decimal
}

func latestLSLBalances(snapshot []audit.SnapshotRow) map[string]lslBalance {
	latest := make(map[string]lslBalance)
	for _, row := range snapshot {
		if !strings.Contains(strings.ToUpper(row.LeaveType), leaveTypeLSL) {
			continue
		}
		candidate := lslBalance{asOf: row.AsOfDate, units: row.BalanceUnits}
		current, ok := latest[row.EmployeeID]
		if !ok || supersedes(candidate.asOf, current.asOf) {
			latest[row.EmployeeID] = candidate
		}
	}
	return latest
}

// supersedes reports whether a row dated candidate replaces one dated
// current. Valid dates beat missing ones; among valid dates the later or
// equal wins, so later file rows win ties.
func supersedes(candidate, current audit.Date) bool {
	if candidate.IsZero() {
		return current.IsZero()
	}
	if current.IsZero() {
		return true
	}
	return !candidate.Before(current)
}

func latestHourlyRates(payRates []audit.PayRate, hoursPerYear float64) map[string]decimal.Decimal {
	type rateRow struct {
		asOf audit.Date
		rate audit.PayRate
	}
	latest := make(map[string]rateRow)
	for _, row := range payRates {
		candidate := rateRow{asOf: row.AsOfDate, rate: row}
		current, ok := latest[row.EmployeeID]
		if !ok || supersedes(candidate.asOf, current.asOf) {
			latest[row.EmployeeID] = candidate
		}
	}

	hours := decimal.NewFromFloat(hoursPerYear)
	rates := make(map[string]decimal.Decimal, len(latest))
	for id, row := range latest {
		switch {
		case row.rate.HourlyRate.Valid:
			rates[id] = row.rate.HourlyRate.Decimal
		case row.rate.AnnualSalary.Valid && hours.IsPositive():
			rates[id] = row.rate.AnnualSalary.Decimal.Div(hours)
		}
	}
	return rates
}
