package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-audit/audit"
	"github.com/warp/leave-audit/store/sqlite"
)

func testFinding(emp string, rule audit.RuleCode, sev audit.Severity) audit.Finding {
	ev := audit.Evidence{
		Sources:     []string{"balances_snapshot.csv"},
		PrimaryKeys: map[string]string{"employee_id": emp, "leave_type": "ANNUAL"},
		Values:      map[string]any{"balance_units": -3.5},
		Thresholds:  map[string]any{"minimum_balance_units": 0.0},
		Explanation: "balances_snapshot.balance_units < 0",
	}
	return audit.NewFinding(rule, sev, emp, "ANNUAL", "2024-06-30",
		"Snapshot balance is negative (-3.5).", ev,
		"Investigate how the balance went negative.")
}

func testRun(id string) sqlite.Run {
	started := time.Date(2024, time.June, 30, 14, 0, 0, 0, time.UTC)
	return sqlite.Run{
		ID:          id,
		DataDir:     "data/sample",
		OutDir:      "outputs",
		StartedAt:   started,
		CompletedAt: started.Add(2 * time.Second),
	}
}

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestExport_RoundTripsARun(t *testing.T) {
	// GIVEN: A store and one finished run
	st := openStore(t)

	withDiff := testFinding("E010", audit.RuleBalanceMismatch, audit.SeverityHigh)
	withDiff.DiffUnits = decimal.NewNullDecimal(decimal.NewFromInt(10))
	leakage := []audit.Finding{
		withDiff,
		testFinding("E008", audit.RuleNegativeBalance, audit.SeverityHigh),
	}
	lslFindings := []audit.Finding{
		testFinding("E003", audit.RuleLSLMissingForEligible, audit.SeverityHigh),
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

	// WHEN: Exporting and reading everything back
	ctx := context.Background()
	require.NoError(t, st.Export(ctx, testRun("run-1"), leakage, lslFindings, recon))

	// THEN: The run row carries the derived counts
	runs, err := st.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, 3, runs[0].FindingCount)
	assert.Equal(t, 2, runs[0].ReconciliationCount)
	assert.Equal(t, "data/sample", runs[0].DataDir)

	// AND: Findings come back in insertion order with modules stamped
	all, err := st.Findings(ctx, "run-1", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "leave_leakage", all[0].Module)
	assert.Equal(t, "E010", all[0].Finding.EmployeeID)
	require.True(t, all[0].Finding.DiffUnits.Valid)
	assert.True(t, all[0].Finding.DiffUnits.Decimal.Equal(decimal.NewFromInt(10)))
	assert.False(t, all[1].Finding.DiffUnits.Valid)
	assert.Equal(t, "lsl_exposure", all[2].Module)
	assert.Equal(t, leakage[0].FindingID, all[0].Finding.FindingID)
	assert.Equal(t, leakage[0].Evidence, all[0].Finding.Evidence)

	// AND: The module filter narrows the result
	lslOnly, err := st.Findings(ctx, "run-1", "lsl_exposure")
	require.NoError(t, err)
	require.Len(t, lslOnly, 1)
	assert.Equal(t, "E003", lslOnly[0].Finding.EmployeeID)

	// AND: Reconciliation rows survive with their decimals and flags
	got, err := st.Reconciliation(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].RiskFlag)
	assert.Equal(t, "BALANCE_MISMATCH_LEDGER_VS_SNAPSHOT", got[0].RiskReason)
	assert.True(t, got[0].BalanceUnits.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "2024-06-30", got[0].AsOfDate.String())
	assert.False(t, got[1].RiskFlag)
	assert.True(t, got[1].BalanceUnits.Equal(decimal.NewFromFloat(12.5)))
}

func TestExport_KeepsRunsSeparate(t *testing.T) {
	// GIVEN: Two exports into the same store
	st := openStore(t)

	ctx := context.Background()
	first := testRun("run-1")
	second := testRun("run-2")
	second.StartedAt = second.StartedAt.Add(time.Hour)
	require.NoError(t, st.Export(ctx, first,
		[]audit.Finding{testFinding("E008", audit.RuleNegativeBalance, audit.SeverityHigh)}, nil, nil))
	require.NoError(t, st.Export(ctx, second, nil,
		[]audit.Finding{testFinding("E004", audit.RuleLSLNegativeBalance, audit.SeverityHigh)}, nil))

	// THEN: Runs list oldest first and queries stay scoped
	runs, err := st.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, "run-2", runs[1].ID)

	found, err := st.Findings(ctx, "run-2", "")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "E004", found[0].Finding.EmployeeID)
}

func TestNew_CreatesTheDatabaseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	st, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, st.Export(context.Background(), testRun("run-1"), nil, nil, nil))
	require.NoError(t, st.Close())

	assert.FileExists(t, path)
}
