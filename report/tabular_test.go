package report_test

import (
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-audit/audit"
	"github.com/warp/leave-audit/lsl"
	"github.com/warp/leave-audit/report"
)

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteLeakageOutputs_WritesTheFullModuleSet(t *testing.T) {
	// GIVEN: Findings on two rules and a reconciliation pair
	outDir := t.TempDir()
	findings := []audit.Finding{
		sampleFinding("E008", audit.RuleNegativeBalance, audit.SeverityHigh),
		sampleFinding("E009", audit.RuleEventSignAnomaly, audit.SeverityMedium),
		sampleFinding("E009b", audit.RuleEventSignAnomaly, audit.SeverityMedium),
	}
	recon := []audit.ReconciliationRow{
		{
			EmployeeID:         "E010",
			LeaveType:          "ANNUAL",
			AsOfDate:           audit.NewDate(2024, time.June, 30),
			BalanceUnits:       decimal.NewFromInt(20),
			LedgerBalanceUnits: decimal.NewFromInt(10),
			DiffUnits:          decimal.NewFromInt(10),
			RiskFlag:           true,
			RiskReason:         "BALANCE_MISMATCH_LEDGER_VS_SNAPSHOT",
		},
		{
			EmployeeID:   "E001",
			LeaveType:    "ANNUAL",
			AsOfDate:     audit.NewDate(2024, time.June, 30),
			BalanceUnits: decimal.NewFromFloat(12.5),
		},
	}

	// WHEN: Writing the leakage outputs
	require.NoError(t, report.WriteLeakageOutputs(outDir, findings, recon))

	// THEN: The findings file loads back with every row
	p := report.NewPaths(outDir)
	rows, err := report.LoadFindings(p.LeakageFindings())
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	// AND: The rule summary ranks HIGH rules ahead of MEDIUM ones even
	// when the MEDIUM rule has more findings
	summary := readCSVFile(t, p.LeakageSummary())
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"rule_code", "severity", "finding_count"}, summary[0])
	assert.Equal(t, []string{"NEGATIVE_BALANCE", "HIGH", "1"}, summary[1])
	assert.Equal(t, []string{"EVENT_SIGN_ANOMALY", "MEDIUM", "2"}, summary[2])

	// AND: The severity summary orders by count, then rank
	severity := readCSVFile(t, p.LeakageSeveritySummary())
	require.Len(t, severity, 3)
	assert.Equal(t, []string{"severity", "finding_count"}, severity[0])
	assert.Equal(t, []string{"MEDIUM", "2"}, severity[1])
	assert.Equal(t, []string{"HIGH", "1"}, severity[2])

	// AND: Reconciliation detail is sorted by employee with lowercase
	// booleans in the risk column
	detail := readCSVFile(t, p.LeakageReport())
	require.Len(t, detail, 3)
	assert.Equal(t, []string{
		"employee_id", "leave_type", "as_of_date", "balance_units",
		"ledger_balance_units", "diff_units", "risk_flag", "risk_reason",
	}, detail[0])
	assert.Equal(t, []string{"E001", "ANNUAL", "2024-06-30", "12.5", "0", "0", "false", ""}, detail[1])
	assert.Equal(t, []string{"E010", "ANNUAL", "2024-06-30", "20", "10", "10", "true", "BALANCE_MISMATCH_LEDGER_VS_SNAPSHOT"}, detail[2])

	// AND: The loader round-trips the detail file
	loaded, err := report.LoadReconciliation(p.LeakageReport())
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "E010", loaded[1].EmployeeID)
	assert.True(t, loaded[1].RiskFlag)
	assert.True(t, loaded[1].DiffUnits.Equal(decimal.NewFromInt(10)))
	assert.False(t, loaded[0].RiskFlag)
}

func TestWriteLSLOutputs_ExposureSummaryCarriesBandAndNote(t *testing.T) {
	// GIVEN: One LSL finding and a non-trivial exposure band
	outDir := t.TempDir()
	findings := []audit.Finding{
		sampleFinding("E003", audit.RuleLSLMissingForEligible, audit.SeverityHigh),
	}
	band := lsl.Band{
		Low:  audit.MustDecimal("18300.48"),
		High: audit.MustDecimal("31158.173"),
	}

	// WHEN: Writing the LSL outputs
	require.NoError(t, report.WriteLSLOutputs(outDir, findings, band))

	// THEN: The exposure summary holds both bounds at two decimal
	// places plus the indicative note
	p := report.NewPaths(outDir)
	records := readCSVFile(t, p.LSLExposureSummary())
	require.Len(t, records, 4)
	assert.Equal(t, []string{"metric", "value", "currency"}, records[0])
	assert.Equal(t, []string{"estimated_exposure_low", "18300.48", "AUD"}, records[1])
	assert.Equal(t, []string{"estimated_exposure_high", "31158.17", "AUD"}, records[2])
	assert.Equal(t, "note", records[3][0])
	assert.Contains(t, records[3][1], "Indicative-only estimate")

	// AND: The loader reads the bounds back and skips the note
	entries, err := report.LoadExposureSummary(p.LSLExposureSummary())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 18300.48, entries[0].Amount)

	// AND: Findings and summaries exist alongside
	rows, err := report.LoadFindings(p.LSLFindings())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.FileExists(t, p.LSLSummary())
	assert.FileExists(t, p.LSLSeveritySummary())
}

func TestWriteLeakageOutputs_EmptyRunStillWritesHeaders(t *testing.T) {
	outDir := t.TempDir()

	require.NoError(t, report.WriteLeakageOutputs(outDir, nil, nil))

	p := report.NewPaths(outDir)
	for _, path := range []string{
		p.LeakageFindings(), p.LeakageSummary(),
		p.LeakageSeveritySummary(), p.LeakageReport(),
	} {
		records := readCSVFile(t, path)
		require.Len(t, records, 1, path)
	}
}
