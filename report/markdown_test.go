package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-audit/report"
)

func reportTime() time.Time {
	return time.Date(2024, 6, 30, 14, 5, 0, 0, time.UTC)
}

func leakRow(emp, rule, sev string) report.Row {
	return report.Row{
		EmployeeID:   emp,
		LeaveType:    "ANNUAL",
		AsOfDate:     "2024-06-30",
		RuleCode:     rule,
		Severity:     sev,
		Message:      "Snapshot balance is negative (-3.5).",
		Evidence:     `{"sources":["balances_snapshot.csv"],"primary_keys":{"employee_id":"` + emp + `"},"values":{"balance_units":-3.5},"thresholds":{"a_floor":1.5,"minimum_balance_units":0.0},"explanation":"balances_snapshot.balance_units < 0"}`,
		NextAction:   "Investigate how the balance went negative.",
		SourceModule: report.ModuleLeakage,
	}
}

func TestBuildFindingsReport_EmptyRun(t *testing.T) {
	md := report.BuildFindingsReport(nil, reportTime())

	assert.Equal(t,
		"# Payroll Compliance Findings Report\n\n"+
			"_Generated: 2024-06-30 14:05_\n\n"+
			"No findings were produced for this run.\n",
		md)
}

func TestBuildFindingsReport_FullStructure(t *testing.T) {
	// GIVEN: Findings across both modules and two severities
	rows := []report.Row{
		leakRow("E008", "NEGATIVE_BALANCE", "HIGH"),
		leakRow("E009", "EVENT_SIGN_ANOMALY", "MEDIUM"),
		leakRow("E010", "EVENT_SIGN_ANOMALY", "MEDIUM"),
		{
			EmployeeID: "E004", LeaveType: "LSL", AsOfDate: "2024-06-30",
			RuleCode: "LSL_NEGATIVE_BALANCE", Severity: "HIGH",
			Message:      "LSL balance is negative (-12.50 units).",
			SourceModule: report.ModuleLSL,
		},
	}

	// WHEN: Building the report
	md := report.BuildFindingsReport(rows, reportTime())

	// THEN: Every section is present with rank-ordered counts
	assert.Contains(t, md, "# Payroll Compliance Findings Report")
	assert.Contains(t, md, "_Generated: 2024-06-30 14:05_")
	assert.Contains(t, md, "- Total findings: **4**")
	assert.Contains(t, md, "- Severity breakdown: **HIGH** 2, **MEDIUM** 2")
	assert.Contains(t, md, "- **Leave Leakage (Ledger vs Snapshot)**: HIGH 1, MEDIUM 2")
	assert.Contains(t, md, "- **Long Service Leave (LSL) Exposure**: HIGH 1")
	assert.Contains(t, md, "## Top risk drivers (by rule)")
	assert.Contains(t, md, "- **LSL_NEGATIVE_BALANCE** (HIGH): 1 finding(s)")
	assert.Contains(t, md, "- **EVENT_SIGN_ANOMALY** (MEDIUM): 2 finding(s)")
	assert.Contains(t, md, "## Recommended next actions (prioritised)")
	assert.Contains(t, md, "## Appendix A — Rule examples with evidence (sample)")

	// AND: HIGH rules lead the top drivers
	assert.Less(t,
		strings.Index(md, "- **LSL_NEGATIVE_BALANCE**"),
		strings.Index(md, "- **EVENT_SIGN_ANOMALY**"))
}

func TestBuildFindingsReport_AppendixRendersEvidence(t *testing.T) {
	// GIVEN: One finding with a full evidence payload
	rows := []report.Row{leakRow("E008", "NEGATIVE_BALANCE", "HIGH")}

	// WHEN: Building the report
	md := report.BuildFindingsReport(rows, reportTime())

	// THEN: The appendix carries the example with its evidence parts
	assert.Contains(t, md, "### NEGATIVE_BALANCE (HIGH) — Leave Leakage (Ledger vs Snapshot)")
	assert.Contains(t, md, "- **Employee:** `E008`  | **Leave type:** `ANNUAL`  | **As of:** `2024-06-30`")
	assert.Contains(t, md, "  - **Message:** Snapshot balance is negative (-3.5).")
	assert.Contains(t, md, "  - **Evidence:** balances_snapshot.balance_units < 0")
	assert.Contains(t, md, "  - **Sources:** `balances_snapshot.csv`")
	assert.Contains(t, md, "  - **Thresholds:** `a_floor=1.5`, `minimum_balance_units=0`")
	assert.Contains(t, md, "  - **Next action:** Investigate how the balance went negative.")
}

func TestBuildFindingsReport_AppendixCapsExamplesPerRule(t *testing.T) {
	// GIVEN: Five findings under one rule
	var rows []report.Row
	for _, emp := range []string{"E101", "E102", "E103", "E104", "E105"} {
		rows = append(rows, leakRow(emp, "NEGATIVE_BALANCE", "HIGH"))
	}

	// WHEN: Building the report
	md := report.BuildFindingsReport(rows, reportTime())

	// THEN: Only the first three employees appear as examples
	require.Contains(t, md, "`E101`")
	assert.Contains(t, md, "`E102`")
	assert.Contains(t, md, "`E103`")
	assert.NotContains(t, md, "- **Employee:** `E104`")
	assert.NotContains(t, md, "- **Employee:** `E105`")
}

func TestBuildFindingsReport_CountsUseThousandsSeparators(t *testing.T) {
	// GIVEN: More than a thousand findings
	rows := make([]report.Row, 0, 1200)
	for i := 0; i < 1200; i++ {
		rows = append(rows, leakRow("E008", "NEGATIVE_BALANCE", "HIGH"))
	}

	// WHEN: Building the report
	md := report.BuildFindingsReport(rows, reportTime())

	// THEN: The totals read with separators
	assert.Contains(t, md, "- Total findings: **1,200**")
	assert.Contains(t, md, "- Severity breakdown: **HIGH** 1,200")
}
