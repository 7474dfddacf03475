package audit_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-audit/audit"
)

func reconFixture() ([]audit.SnapshotRow, []audit.LedgerEvent) {
	snapshot := []audit.SnapshotRow{
		{
			EmployeeID:   "E001",
			LeaveType:    "ANNUAL",
			AsOfDate:     audit.NewDate(2024, time.June, 30),
			BalanceUnits: audit.MustDecimal("6"),
		},
	}
	ledger := []audit.LedgerEvent{
		{
			EmployeeID: "E001",
			LeaveType:  "ANNUAL",
			EventDate:  audit.NewDate(2024, time.June, 1),
			Units:      audit.MustDecimal("10"),
			EventType:  audit.EventAccrual,
		},
		{
			EmployeeID: "E001",
			LeaveType:  "ANNUAL",
			EventDate:  audit.NewDate(2024, time.June, 15),
			Units:      audit.MustDecimal("-4"),
			EventType:  audit.EventTaken,
		},
	}
	return snapshot, ledger
}

// =============================================================================
// REPLAY
// =============================================================================

func TestReconcile_ReplaysLedgerUpToSnapshotDate(t *testing.T) {
	// GIVEN: An accrual of 10 and a taken of -4, both before the snapshot date
	// WHEN: Reconciling against a snapshot balance of 6
	// THEN: The replayed balance matches and the difference is zero

	snapshot, ledger := reconFixture()
	rec := audit.NewReconciler(audit.DefaultParams())

	rows := rec.Reconcile(snapshot, ledger)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].LedgerBalanceUnits.Equal(audit.MustDecimal("6")),
		"got ledger balance %s", rows[0].LedgerBalanceUnits)
	assert.True(t, rows[0].DiffUnits.IsZero(), "got diff %s", rows[0].DiffUnits)
	assert.False(t, rows[0].RiskFlag)
}

func TestReconcile_ExcludesEventsAfterSnapshotDate(t *testing.T) {
	// GIVEN: A snapshot dated between the two ledger events
	// WHEN: Reconciling
	// THEN: Only the earlier event contributes to the replayed balance

	snapshot, ledger := reconFixture()
	snapshot[0].AsOfDate = audit.NewDate(2024, time.June, 10)
	rec := audit.NewReconciler(audit.DefaultParams())

	rows := rec.Reconcile(snapshot, ledger)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].LedgerBalanceUnits.Equal(audit.MustDecimal("10")))
	assert.True(t, rows[0].DiffUnits.Equal(audit.MustDecimal("-4")))
	assert.True(t, rows[0].RiskFlag)
	assert.Equal(t, string(audit.RuleBalanceMismatch), rows[0].RiskReason)
}

func TestReconcile_EventOnSnapshotDateCounts(t *testing.T) {
	snapshot, ledger := reconFixture()
	snapshot[0].AsOfDate = audit.NewDate(2024, time.June, 15)
	rec := audit.NewReconciler(audit.DefaultParams())

	rows := rec.Reconcile(snapshot, ledger)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].LedgerBalanceUnits.Equal(audit.MustDecimal("6")))
}

func TestReconcile_UndatedEventsAlwaysCount(t *testing.T) {
	snapshot, ledger := reconFixture()
	ledger = append(ledger, audit.LedgerEvent{
		EmployeeID: "E001",
		LeaveType:  "ANNUAL",
		Units:      audit.MustDecimal("2"),
		EventType:  audit.EventAccrual,
	})
	rec := audit.NewReconciler(audit.DefaultParams())

	rows := rec.Reconcile(snapshot, ledger)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].LedgerBalanceUnits.Equal(audit.MustDecimal("8")))
	assert.True(t, rows[0].DiffUnits.Equal(audit.MustDecimal("-2")))
}

func TestReconcile_NoHistoryReplaysToZero(t *testing.T) {
	snapshot := []audit.SnapshotRow{{
		EmployeeID:   "E009",
		LeaveType:    "PERSONAL",
		AsOfDate:     audit.NewDate(2024, time.June, 30),
		BalanceUnits: audit.MustDecimal("12.5"),
	}}
	rec := audit.NewReconciler(audit.DefaultParams())

	rows := rec.Reconcile(snapshot, nil)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].LedgerBalanceUnits.IsZero())
	assert.True(t, rows[0].DiffUnits.Equal(audit.MustDecimal("12.5")))
	assert.True(t, rows[0].RiskFlag)
}

func TestReconcile_LeaveTypesDoNotCrossContaminate(t *testing.T) {
	snapshot := []audit.SnapshotRow{
		{EmployeeID: "E001", LeaveType: "ANNUAL", AsOfDate: audit.NewDate(2024, time.June, 30), BalanceUnits: audit.MustDecimal("10")},
		{EmployeeID: "E001", LeaveType: "PERSONAL", AsOfDate: audit.NewDate(2024, time.June, 30), BalanceUnits: audit.MustDecimal("5")},
	}
	ledger := []audit.LedgerEvent{
		{EmployeeID: "E001", LeaveType: "ANNUAL", EventDate: audit.NewDate(2024, time.June, 1), Units: audit.MustDecimal("10"), EventType: audit.EventAccrual},
		{EmployeeID: "E001", LeaveType: "PERSONAL", EventDate: audit.NewDate(2024, time.June, 1), Units: audit.MustDecimal("5"), EventType: audit.EventAccrual},
	}
	rec := audit.NewReconciler(audit.DefaultParams())

	rows := rec.Reconcile(snapshot, ledger)
	audit.SortReconciliation(rows)

	require.Len(t, rows, 2)
	assert.True(t, rows[0].DiffUnits.IsZero())
	assert.True(t, rows[1].DiffUnits.IsZero())
}

// =============================================================================
// ROUNDING AND TOLERANCE
// =============================================================================

func TestReconcile_RoundsDiffBeforeFlagging(t *testing.T) {
	// GIVEN: A float-noise difference of 0.004 units
	// WHEN: Reconciling
	// THEN: The stored diff is rounded to zero and no risk is raised

	snapshot := []audit.SnapshotRow{{
		EmployeeID:   "E002",
		LeaveType:    "ANNUAL",
		AsOfDate:     audit.NewDate(2024, time.June, 30),
		BalanceUnits: audit.MustDecimal("10.004"),
	}}
	ledger := []audit.LedgerEvent{{
		EmployeeID: "E002",
		LeaveType:  "ANNUAL",
		EventDate:  audit.NewDate(2024, time.June, 1),
		Units:      audit.MustDecimal("10"),
		EventType:  audit.EventAccrual,
	}}
	rec := audit.NewReconciler(audit.DefaultParams())

	rows := rec.Reconcile(snapshot, ledger)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].DiffUnits.IsZero(), "got diff %s", rows[0].DiffUnits)
	assert.False(t, rows[0].RiskFlag)
}

func TestReconcile_RiskToleranceIsExclusive(t *testing.T) {
	rec := audit.NewReconciler(audit.DefaultParams())

	cases := []struct {
		name    string
		balance string
		flagged bool
	}{
		{"at tolerance", "10.25", false},
		{"just above tolerance", "10.26", true},
		{"negative just above", "9.74", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snapshot := []audit.SnapshotRow{{
				EmployeeID:   "E003",
				LeaveType:    "ANNUAL",
				AsOfDate:     audit.NewDate(2024, time.June, 30),
				BalanceUnits: audit.MustDecimal(tc.balance),
			}}
			ledger := []audit.LedgerEvent{{
				EmployeeID: "E003",
				LeaveType:  "ANNUAL",
				EventDate:  audit.NewDate(2024, time.June, 1),
				Units:      audit.MustDecimal("10"),
				EventType:  audit.EventAccrual,
			}}

			rows := rec.Reconcile(snapshot, ledger)

			require.Len(t, rows, 1)
			assert.Equal(t, tc.flagged, rows[0].RiskFlag)
		})
	}
}

// =============================================================================
// ORDERING AND DUPLICATES
// =============================================================================

func TestSortReconciliation_StableKeyOrder(t *testing.T) {
	rows := []audit.ReconciliationRow{
		{EmployeeID: "E002", LeaveType: "ANNUAL"},
		{EmployeeID: "E001", LeaveType: "PERSONAL"},
		{EmployeeID: "E001", LeaveType: "ANNUAL"},
	}

	audit.SortReconciliation(rows)

	assert.Equal(t, "E001", rows[0].EmployeeID)
	assert.Equal(t, "ANNUAL", rows[0].LeaveType)
	assert.Equal(t, "E001", rows[1].EmployeeID)
	assert.Equal(t, "PERSONAL", rows[1].LeaveType)
	assert.Equal(t, "E002", rows[2].EmployeeID)
}

func TestDuplicateSnapshotKeys_ReportsEachKeyOnce(t *testing.T) {
	snapshot := []audit.SnapshotRow{
		{EmployeeID: "E001", LeaveType: "ANNUAL", BalanceUnits: decimal.Zero},
		{EmployeeID: "E001", LeaveType: "ANNUAL", BalanceUnits: decimal.Zero},
		{EmployeeID: "E001", LeaveType: "ANNUAL", BalanceUnits: decimal.Zero},
		{EmployeeID: "E002", LeaveType: "ANNUAL", BalanceUnits: decimal.Zero},
	}

	dupes := audit.DuplicateSnapshotKeys(snapshot)

	require.Len(t, dupes, 1)
	assert.Equal(t, "E001", dupes[0].EmployeeID)
	assert.Equal(t, "ANNUAL", dupes[0].LeaveType)
}
