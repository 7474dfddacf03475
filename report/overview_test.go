package report_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-audit/report"
)

func TestLoadSeverityCounts_ReadsTheSummaryFile(t *testing.T) {
	// GIVEN: A summary-by-severity file as the leakage run writes it
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.csv")
	content := "severity,finding_count\nHIGH,3\nMEDIUM,2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// WHEN: Loading
	counts, err := report.LoadSeverityCounts(path)

	// THEN: Counts land on the matching severities
	require.NoError(t, err)
	assert.Equal(t, report.SevCounts{High: 3, Medium: 2}, counts)
	assert.Equal(t, 5, counts.Total())
}

func TestLoadSeverityCounts_ToleratesMissingOrForeignFiles(t *testing.T) {
	// Missing file reads as zero counts
	counts, err := report.LoadSeverityCounts(filepath.Join(t.TempDir(), "nope.csv"))
	require.NoError(t, err)
	assert.Zero(t, counts.Total())

	// A file without recognisable columns also reads as zero counts
	dir := t.TempDir()
	path := filepath.Join(dir, "other.csv")
	require.NoError(t, os.WriteFile(path, []byte("foo,bar\n1,2\n"), 0o644))
	counts, err = report.LoadSeverityCounts(path)
	require.NoError(t, err)
	assert.Zero(t, counts.Total())
}

func TestTopRules_OrdersByCountThenCode(t *testing.T) {
	rows := []report.Row{
		{RuleCode: "NEGATIVE_BALANCE"},
		{RuleCode: "EVENT_SIGN_ANOMALY"},
		{RuleCode: "EVENT_SIGN_ANOMALY"},
		{RuleCode: "CASUAL_ACCRUAL_PRESENT"},
		{RuleCode: "CASUAL_ACCRUAL_PRESENT"},
		{RuleCode: ""},
	}

	top := report.TopRules(rows, 3)

	require.Len(t, top, 3)
	assert.Equal(t, report.RuleTally{Rule: "CASUAL_ACCRUAL_PRESENT", Count: 2}, top[0])
	assert.Equal(t, report.RuleTally{Rule: "EVENT_SIGN_ANOMALY", Count: 2}, top[1])
	// NEGATIVE_BALANCE and UNSPECIFIED tie on count; the code decides
	// who makes the cut.
	assert.Equal(t, report.RuleTally{Rule: "NEGATIVE_BALANCE", Count: 1}, top[2])
}

func TestBuildCombinedOverview_SnapshotTableAndTopRules(t *testing.T) {
	leak := report.SevCounts{High: 2, Medium: 1}
	lsl := report.SevCounts{High: 1, Low: 1}
	leakTop := []report.RuleTally{{Rule: "NEGATIVE_BALANCE", Count: 2}}

	md := report.BuildCombinedOverview("Example Client Pty Ltd", "30 Jun 2024",
		leak, lsl, leakTop, nil, reportTime())

	assert.Contains(t, md, "# Combined Exposure Overview")
	assert.Contains(t, md, "**Organisation:** Example Client Pty Ltd")
	assert.Contains(t, md, "**Prepared as at:** 30 Jun 2024")
	assert.Contains(t, md, "| Leave & Entitlement Leakage | 2 | 1 | 0 | 3 |")
	assert.Contains(t, md, "| Long Service Leave (LSL) Exposure | 1 | 0 | 1 | 2 |")
	assert.Contains(t, md, "- `NEGATIVE_BALANCE` — 2")
	assert.Contains(t, md, "### Long Service Leave (LSL) Exposure (Top rules)\n- No findings available.")
}

func TestBuildCombinedOverview_DefaultsPreparedAsAtToTheReportDate(t *testing.T) {
	md := report.BuildCombinedOverview("Org", "", report.SevCounts{}, report.SevCounts{}, nil, nil, reportTime())

	assert.Contains(t, md, "**Prepared as at:** 30 Jun 2024")
	assert.Contains(t, md, "**Report date:** 30 Jun 2024")
}

func TestBuildOverviewFromOutputs_PrefersSummaryAndDedupesLSL(t *testing.T) {
	// GIVEN: A run directory where the leakage severity summary disagrees
	// with the findings file, and the LSL side carries a shadowed pair
	outDir := t.TempDir()
	modules := filepath.Join(outDir, "modules")
	require.NoError(t, os.MkdirAll(modules, 0o755))

	writeFile := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(modules, name), []byte(content), 0o644))
	}
	writeFile("leave_leakage_summary_by_severity.csv", "severity,finding_count\nHIGH,5\n")
	writeFile("leave_leakage_findings.csv",
		"employee_id,leave_type,as_of_date,rule_code,severity,message\n"+
			"E008,ANNUAL,2024-06-30,NEGATIVE_BALANCE,HIGH,negative\n")
	writeFile("lsl_findings.csv",
		"employee_id,leave_type,as_of_date,rule_code,severity,message\n"+
			"E005,LSL,2024-06-30,LSL_ZERO_BALANCE_FOR_LONG_TENURE,HIGH,zero\n"+
			"E005,LSL,2024-06-30,LSL_BALANCE_SUSPICIOUSLY_LOW,MEDIUM,low\n"+
			"E006,LSL,2024-06-30,LSL_BALANCE_SUSPICIOUSLY_LOW,MEDIUM,low\n")

	// WHEN: Building the overview off the finished outputs
	md, err := report.BuildOverviewFromOutputs(outDir, "Example Client Pty Ltd", "30 Jun 2024", reportTime())

	// THEN: The leakage row uses the summary's five, not the single
	// findings row, and the LSL row reflects the deduplicated counts
	require.NoError(t, err)
	assert.Contains(t, md, "| Leave & Entitlement Leakage | 5 | 0 | 0 | 5 |")
	assert.Contains(t, md, "| Long Service Leave (LSL) Exposure | 1 | 1 | 0 | 2 |")
	assert.Contains(t, md, "- `LSL_BALANCE_SUSPICIOUSLY_LOW` — 1")
	assert.Contains(t, md, "- `LSL_ZERO_BALANCE_FOR_LONG_TENURE` — 1")
}

func TestBuildOverviewFromOutputs_FallsBackToScanningFindings(t *testing.T) {
	// GIVEN: No severity summary, only a findings file
	outDir := t.TempDir()
	modules := filepath.Join(outDir, "modules")
	require.NoError(t, os.MkdirAll(modules, 0o755))
	content := "employee_id,leave_type,as_of_date,rule_code,severity,message\n" +
		"E008,ANNUAL,2024-06-30,NEGATIVE_BALANCE,HIGH,negative\n" +
		"E002,ANNUAL,2024-06-30,CASUAL_ACCRUAL_PRESENT,MEDIUM,casual\n"
	require.NoError(t, os.WriteFile(filepath.Join(modules, "leave_leakage_findings.csv"), []byte(content), 0o644))

	md, err := report.BuildOverviewFromOutputs(outDir, "Org", "", reportTime())

	require.NoError(t, err)
	assert.Contains(t, md, "| Leave & Entitlement Leakage | 1 | 1 | 0 | 2 |")
	assert.Contains(t, md, "| Long Service Leave (LSL) Exposure | 0 | 0 | 0 | 0 |")
}
