/*
Package sqlite persists finished audit runs into a SQLite file.

PURPOSE:
  The CSV outputs are the canonical artifacts; this store mirrors them into
  one queryable database so reviewers can slice findings without a
  spreadsheet. Rows are written once per run and never updated.

KEY TABLES:
  runs:            One row per pipeline run (id, directories, counts).
  findings:        Flat findings across modules, stamped with run_id and
                   source_module.
  reconciliation:  Ledger-vs-snapshot rows for the run.

WAL MODE:
  The database is opened with WAL so concurrent readers (sqlite3 CLI, BI
  tools) never block an export in progress.

USAGE:
  st, err := sqlite.New("outputs/audit.db")
  if err != nil { ... }
  defer st.Close()
  err = st.Export(ctx, run, leakage, lslFindings, recon)
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-audit/audit"
)

// Run is one row of the runs table.
type Run struct {
	ID                  string
	DataDir             string
	OutDir              string
	FindingCount        int
	ReconciliationCount int
	StartedAt           time.Time
	CompletedAt         time.Time
}

// ModuleFinding pairs a stored finding with the module that produced it.
type ModuleFinding struct {
	Module  string
	Finding audit.Finding
}

// Store writes and reads the flat export schema.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		data_dir TEXT NOT NULL,
		out_dir TEXT NOT NULL,
		finding_count INTEGER NOT NULL,
		reconciliation_count INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		completed_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS findings (
		run_id TEXT NOT NULL,
		source_module TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		leave_type TEXT,
		as_of_date TEXT,
		rule_code TEXT NOT NULL,
		severity TEXT NOT NULL,
		message TEXT NOT NULL,
		diff_units TEXT,
		evidence TEXT,
		finding_id TEXT NOT NULL,
		next_action TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_findings_run
		ON findings(run_id, source_module);
	CREATE INDEX IF NOT EXISTS idx_findings_rule
		ON findings(run_id, rule_code);
	CREATE INDEX IF NOT EXISTS idx_findings_severity
		ON findings(run_id, severity);
	CREATE INDEX IF NOT EXISTS idx_findings_identity
		ON findings(finding_id);

	CREATE TABLE IF NOT EXISTS reconciliation (
		run_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		as_of_date TEXT NOT NULL,
		balance_units TEXT NOT NULL,
		ledger_balance_units TEXT NOT NULL,
		diff_units TEXT NOT NULL,
		risk_flag INTEGER NOT NULL,
		risk_reason TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reconciliation_run
		ON reconciliation(run_id, risk_flag);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Export writes one finished run atomically: the run row, both modules'
// findings, and the reconciliation detail.
func (s *Store) Export(ctx context.Context, run Run, leakage, lsl []audit.Finding, recon []audit.ReconciliationRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin export: %w", err)
	}
	defer tx.Rollback()

	run.FindingCount = len(leakage) + len(lsl)
	run.ReconciliationCount = len(recon)
	if err := insertRun(ctx, tx, run); err != nil {
		return err
	}
	if err := insertFindings(ctx, tx, run.ID, "leave_leakage", leakage); err != nil {
		return err
	}
	if err := insertFindings(ctx, tx, run.ID, "lsl_exposure", lsl); err != nil {
		return err
	}
	if err := insertReconciliation(ctx, tx, run.ID, recon); err != nil {
		return err
	}

	return tx.Commit()
}

func insertRun(ctx context.Context, tx *sql.Tx, run Run) error {
	query := `
		INSERT INTO runs
		(id, data_dir, out_dir, finding_count, reconciliation_count, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(ctx, query,
		run.ID,
		run.DataDir,
		run.OutDir,
		run.FindingCount,
		run.ReconciliationCount,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.CompletedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

func insertFindings(ctx context.Context, tx *sql.Tx, runID, module string, findings []audit.Finding) error {
	if len(findings) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO findings
		(run_id, source_module, employee_id, leave_type, as_of_date, rule_code,
		 severity, message, diff_units, evidence, finding_id, next_action)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare finding insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range findings {
		var diff sql.NullString
		if f.DiffUnits.Valid {
			diff = sql.NullString{String: f.DiffUnits.Decimal.String(), Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			runID, module, f.EmployeeID, f.LeaveType, f.AsOfDate,
			string(f.RuleCode), string(f.Severity), f.Message,
			diff, f.Evidence, f.FindingID, f.NextAction,
		)
		if err != nil {
			return fmt.Errorf("failed to insert finding %s: %w", f.FindingID, err)
		}
	}
	return nil
}

func insertReconciliation(ctx context.Context, tx *sql.Tx, runID string, recon []audit.ReconciliationRow) error {
	if len(recon) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reconciliation
		(run_id, employee_id, leave_type, as_of_date, balance_units,
		 ledger_balance_units, diff_units, risk_flag, risk_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare reconciliation insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range recon {
		_, err := stmt.ExecContext(ctx,
			runID, row.EmployeeID, row.LeaveType, row.AsOfDate.String(),
			row.BalanceUnits.String(), row.LedgerBalanceUnits.String(),
			row.DiffUnits.String(), boolInt(row.RiskFlag), row.RiskReason,
		)
		if err != nil {
			return fmt.Errorf("failed to insert reconciliation row: %w", err)
		}
	}
	return nil
}

// Runs returns every recorded run, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, data_dir, out_dir, finding_count, reconciliation_count,
		       started_at, completed_at
		FROM runs
		ORDER BY started_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			started   string
			completed string
		)
		if err := rows.Scan(&run.ID, &run.DataDir, &run.OutDir,
			&run.FindingCount, &run.ReconciliationCount, &started, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339, started)
		run.CompletedAt, _ = time.Parse(time.RFC3339, completed)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Findings returns a run's findings, optionally filtered to one module.
// Rows come back in insertion order: leakage first, then LSL.
func (s *Store) Findings(ctx context.Context, runID, module string) ([]ModuleFinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT source_module, employee_id, leave_type, as_of_date, rule_code,
		       severity, message, diff_units, evidence, finding_id, next_action
		FROM findings
		WHERE run_id = ?
	`
	args := []any{runID}
	if module != "" {
		query += " AND source_module = ?"
		args = append(args, module)
	}
	query += " ORDER BY rowid ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	var findings []ModuleFinding
	for rows.Next() {
		mf, err := scanFinding(rows)
		if err != nil {
			return nil, err
		}
		findings = append(findings, mf)
	}
	return findings, rows.Err()
}

// Reconciliation returns a run's reconciliation rows in insertion order.
func (s *Store) Reconciliation(ctx context.Context, runID string) ([]audit.ReconciliationRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT employee_id, leave_type, as_of_date, balance_units,
		       ledger_balance_units, diff_units, risk_flag, risk_reason
		FROM reconciliation
		WHERE run_id = ?
		ORDER BY rowid ASC
	`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation: %w", err)
	}
	defer rows.Close()

	var recon []audit.ReconciliationRow
	for rows.Next() {
		var (
			row      audit.ReconciliationRow
			asOf     string
			balance  string
			ledger   string
			diff     string
			riskFlag int
			reason   sql.NullString
		)
		if err := rows.Scan(&row.EmployeeID, &row.LeaveType, &asOf,
			&balance, &ledger, &diff, &riskFlag, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation row: %w", err)
		}
		row.AsOfDate, _ = audit.ParseDate(asOf)
		row.BalanceUnits = mustDecimal(balance)
		row.LedgerBalanceUnits = mustDecimal(ledger)
		row.DiffUnits = mustDecimal(diff)
		row.RiskFlag = riskFlag != 0
		row.RiskReason = reason.String
		recon = append(recon, row)
	}
	return recon, rows.Err()
}

func scanFinding(rows *sql.Rows) (ModuleFinding, error) {
	var (
		mf   ModuleFinding
		diff sql.NullString
	)
	err := rows.Scan(
		&mf.Module, &mf.Finding.EmployeeID, &mf.Finding.LeaveType,
		&mf.Finding.AsOfDate, &mf.Finding.RuleCode, &mf.Finding.Severity,
		&mf.Finding.Message, &diff, &mf.Finding.Evidence,
		&mf.Finding.FindingID, &mf.Finding.NextAction,
	)
	if err != nil {
		return mf, fmt.Errorf("failed to scan finding: %w", err)
	}
	if diff.Valid {
		mf.Finding.DiffUnits = decimal.NullDecimal{Decimal: mustDecimal(diff.String), Valid: true}
	}
	return mf, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
