package loader_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-audit/audit"
	"github.com/warp/leave-audit/loader"
)

func TestWriteSampleData_LoadsInStrictMode(t *testing.T) {
	// GIVEN: The bundled demonstration dataset
	dir := t.TempDir()
	require.NoError(t, loader.WriteSampleData(dir))

	// WHEN: Loading it with the strict policy
	ds, warnings, err := loader.LoadDataset(dir, loader.Strict)

	// THEN: Every table parses and nothing needed coercion
	require.NoError(t, err)
	assert.Empty(t, warnings.Lines())
	assert.Len(t, ds.Employees, 11)
	assert.Len(t, ds.Ledger, 14)
	assert.Len(t, ds.Snapshot, 8)
	assert.Len(t, ds.PayRates, 6)

	// AND: The snapshot date is the latest as_of_date in the file
	asOf, err := ds.SnapshotDate()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-30", asOf.String())

	// AND: The day-first start date reads as 1 July, not 7 January
	byID := ds.EmployeeByID()
	casual, ok := byID["E002"]
	require.True(t, ok)
	assert.Equal(t, "2021-07-01", casual.StartDate.String())
}

func TestWriteSampleData_LoadsInLenientMode(t *testing.T) {
	// GIVEN: The bundled demonstration dataset
	dir := t.TempDir()
	require.NoError(t, loader.WriteSampleData(dir))

	// WHEN: Loading it with the lenient policy
	ds, warnings, err := loader.LoadDataset(dir, loader.Lenient)

	// THEN: The dataset is identical to the strict load with no coercions
	require.NoError(t, err)
	assert.Empty(t, warnings.Lines())
	assert.Len(t, ds.Employees, 11)
	assert.Len(t, ds.Ledger, 14)
}

func TestWriteSampleData_OnlyThePlantedMismatchTripsReconciliation(t *testing.T) {
	// GIVEN: The loaded demonstration dataset
	dir := t.TempDir()
	require.NoError(t, loader.WriteSampleData(dir))
	ds, _, err := loader.LoadDataset(dir, loader.Strict)
	require.NoError(t, err)

	// WHEN: Replaying the ledger against every snapshot row
	rows := audit.NewReconciler(audit.DefaultParams()).Reconcile(ds.Snapshot, ds.Ledger)

	// THEN: Exactly one row carries a risk flag, the seeded E010 gap
	var flagged []audit.ReconciliationRow
	for _, row := range rows {
		if row.RiskFlag {
			flagged = append(flagged, row)
		}
	}
	require.Len(t, flagged, 1)
	assert.Equal(t, "E010", flagged[0].EmployeeID)
	assert.Equal(t, "ANNUAL", flagged[0].LeaveType)
	assert.True(t, flagged[0].DiffUnits.Equal(decimal.NewFromInt(10)),
		"diff = snapshot - ledger = 20 - 10, got %s", flagged[0].DiffUnits)
}

func TestWriteSampleData_OverwritesExistingFiles(t *testing.T) {
	// GIVEN: A directory already holding a stale employees file
	dir := t.TempDir()
	require.NoError(t, loader.WriteSampleData(dir))
	require.NoError(t, loader.WriteSampleData(dir))

	// THEN: The second write leaves a loadable dataset behind
	ds, _, err := loader.LoadDataset(dir, loader.Strict)
	require.NoError(t, err)
	assert.Len(t, ds.Employees, 11)
}
