/*
Package pipeline orchestrates complete audit runs over a data directory.

STAGES:
  Leakage:  strict-date load, ledger-vs-snapshot reconciliation, five
            leakage rules, findings + summaries + reconciliation CSVs.
  LSL:      lenient-date load, per-employee service state, four LSL rules,
            findings + summaries + exposure band CSVs.
  Reports:  combined findings file, three Markdown reports with styled HTML
            and best-effort PDF renders, the XLSX workbook, and an optional
            SQLite export.

Each stage is callable on its own over existing files; RunAll chains all
three under a single run ID. Stages log through logrus with run_id and
stage fields. A stage that fails to load writes no partial findings.
*/
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/warp/leave-audit/audit"
	"github.com/warp/leave-audit/leakage"
	"github.com/warp/leave-audit/loader"
	"github.com/warp/leave-audit/lsl"
	"github.com/warp/leave-audit/report"
	"github.com/warp/leave-audit/store/sqlite"
)

// DefaultOrganisation labels reports when no organisation is configured.
const DefaultOrganisation = "Example Client Pty Ltd"

// Options configure a Runner. Zero values fall back to sensible
// defaults at construction, except DataDir and OutDir which callers
// must set.
type Options struct {
	DataDir      string
	OutDir       string
	Organisation string
	DBPath       string // empty disables the SQLite export
	Params       audit.Params
}

// Runner executes audit stages with shared configuration.
type Runner struct {
	log  *logrus.Logger
	opts Options
	now  func() time.Time
}

func New(log *logrus.Logger, opts Options) *Runner {
	if opts.Organisation == "" {
		opts.Organisation = DefaultOrganisation
	}
	return &Runner{log: log, opts: opts, now: time.Now}
}

// LeakageResult is what the leakage stage produced, for callers that
// want to log or diff beyond the files on disk.
type LeakageResult struct {
	RunID          string
	Findings       []audit.Finding
	Reconciliation []audit.ReconciliationRow
}

// LSLResult is the LSL stage's in-memory output.
type LSLResult struct {
	RunID        string
	SnapshotDate audit.Date
	Findings     []audit.Finding
	Band         lsl.Band
}

// RunLeakage executes the leave-leakage stage: strict load, reconcile,
// rules, tabular outputs.
func (r *Runner) RunLeakage(ctx context.Context) (*LeakageResult, error) {
	return r.runLeakage(ctx, uuid.New().String())
}

func (r *Runner) runLeakage(_ context.Context, runID string) (*LeakageResult, error) {
	log := r.log.WithFields(logrus.Fields{"run_id": runID, "stage": "leakage"})
	log.WithField("data_dir", r.opts.DataDir).Info("loading dataset")

	ds, _, err := loader.LoadDataset(r.opts.DataDir, loader.Strict)
	if err != nil {
		return nil, fmt.Errorf("leakage run: %w", err)
	}
	log.WithFields(logrus.Fields{
		"employees": len(ds.Employees),
		"ledger":    len(ds.Ledger),
		"snapshot":  len(ds.Snapshot),
	}).Info("dataset loaded")

	if dups := audit.DuplicateSnapshotKeys(ds.Snapshot); len(dups) > 0 {
		log.WithField("duplicate_keys", len(dups)).
			Warn("snapshot contains duplicate (employee, leave_type, as_of) keys; each row reconciles independently")
	}

	recon := audit.NewReconciler(r.opts.Params).Reconcile(ds.Snapshot, ds.Ledger)
	findings := audit.NewEngine(leakage.Rules(ds, recon, r.opts.Params)...).Run()

	if err := report.WriteLeakageOutputs(r.opts.OutDir, findings, recon); err != nil {
		return nil, fmt.Errorf("leakage run: %w", err)
	}

	log.WithFields(logrus.Fields{
		"findings":       len(findings),
		"reconciliation": len(recon),
	}).Info("leakage stage complete")
	return &LeakageResult{RunID: runID, Findings: findings, Reconciliation: recon}, nil
}

// RunLSL executes the long-service-leave stage: lenient load, state
// build, rules, exposure band, tabular outputs.
func (r *Runner) RunLSL(ctx context.Context) (*LSLResult, error) {
	return r.runLSL(ctx, uuid.New().String())
}

func (r *Runner) runLSL(_ context.Context, runID string) (*LSLResult, error) {
	log := r.log.WithFields(logrus.Fields{"run_id": runID, "stage": "lsl"})
	log.WithField("data_dir", r.opts.DataDir).Info("loading dataset")

	ds, warnings, err := loader.LoadDataset(r.opts.DataDir, loader.Lenient)
	if err != nil {
		return nil, fmt.Errorf("lsl run: %w", err)
	}
	for _, line := range warnings.Lines() {
		log.Warn(line)
	}

	snapshotDate, err := ds.SnapshotDate()
	if err != nil {
		return nil, fmt.Errorf("lsl run: %w", err)
	}

	states := lsl.BuildState(ds, snapshotDate, r.opts.Params)
	findings := audit.NewEngine(lsl.Rules(states, r.opts.Params)...).Run()
	band := lsl.ExposureBand(states, r.opts.Params)

	if err := report.WriteLSLOutputs(r.opts.OutDir, findings, band); err != nil {
		return nil, fmt.Errorf("lsl run: %w", err)
	}

	log.WithFields(logrus.Fields{
		"snapshot_date": snapshotDate.String(),
		"employees":     len(states),
		"findings":      len(findings),
		"exposure_low":  band.Low.StringFixed(2),
		"exposure_high": band.High.StringFixed(2),
	}).Info("lsl stage complete")
	return &LSLResult{RunID: runID, SnapshotDate: snapshotDate, Findings: findings, Band: band}, nil
}

// RunReports builds every reading-facing artifact from the module CSVs
// already on disk: the combined findings file, the three reports in
// Markdown/HTML/PDF, the workbook, and the SQLite export when a
// database path is configured. PDF rendering is best-effort; a render
// failure is logged and the run continues.
func (r *Runner) RunReports(ctx context.Context) error {
	return r.runReports(ctx, uuid.New().String(), r.now())
}

func (r *Runner) runReports(ctx context.Context, runID string, startedAt time.Time) error {
	log := r.log.WithFields(logrus.Fields{"run_id": runID, "stage": "reports"})
	p := report.NewPaths(r.opts.OutDir)
	now := r.now()

	if err := report.CombineFindings([]report.ModuleInput{
		{Module: report.ModuleLeakage, Path: p.LeakageFindings()},
		{Module: report.ModuleLSL, Path: p.LSLFindings()},
	}, p.CombinedFindings()); err != nil {
		return fmt.Errorf("reports: %w", err)
	}

	combined, err := report.LoadCombined(p.CombinedFindings())
	if err != nil {
		return fmt.Errorf("reports: %w", err)
	}
	reportDate := latestAsOf(combined, now)

	// Findings report.
	findingsMD := report.BuildFindingsReport(combined, now)
	if err := r.writeReport(log, findingsMD,
		p.FindingsReportMD(), p.FindingsReportHTML(), p.FindingsReportPDF(),
		"Leave & Entitlement Leakage Review"); err != nil {
		return err
	}

	// LSL exposure review, over the deduplicated LSL findings.
	lslRows, err := report.LoadFindings(p.LSLFindings())
	if err != nil {
		return fmt.Errorf("reports: %w", err)
	}
	lslRows = report.DedupeLSL(lslRows)
	exposure, err := report.LoadExposureSummary(p.LSLExposureSummary())
	if err != nil {
		return fmt.Errorf("reports: %w", err)
	}
	reviewPeriod := "Report prepared as at " + reportDate
	lslMD := report.BuildLSLReport(lslRows, exposure, r.opts.Organisation, reviewPeriod, now)
	if err := r.writeReport(log, lslMD,
		p.LSLReportMD(), p.LSLReportHTML(), p.LSLReportPDF(),
		"Long Service Leave (LSL) Exposure Review"); err != nil {
		return err
	}

	// Combined overview.
	overviewMD, err := report.BuildOverviewFromOutputs(r.opts.OutDir, r.opts.Organisation, reportDate, now)
	if err != nil {
		return fmt.Errorf("reports: %w", err)
	}
	if err := r.writeReport(log, overviewMD,
		p.OverviewMD(), p.OverviewHTML(), p.OverviewPDF(),
		"Combined Exposure Overview"); err != nil {
		return err
	}

	// Workbook over the combined findings and the reconciliation detail.
	recon, err := report.LoadReconciliation(p.LeakageReport())
	if err != nil {
		return fmt.Errorf("reports: %w", err)
	}
	if err := report.WriteWorkbook(p.Workbook(), combined, recon); err != nil {
		return fmt.Errorf("reports: %w", err)
	}

	if r.opts.DBPath != "" {
		if err := r.exportDatabase(ctx, runID, startedAt, combined, recon); err != nil {
			return fmt.Errorf("reports: %w", err)
		}
	}

	log.WithField("out_dir", r.opts.OutDir).Info("reports stage complete")
	return nil
}

// RunAll chains leakage, LSL and reporting under one run ID.
func (r *Runner) RunAll(ctx context.Context) error {
	runID := uuid.New().String()
	startedAt := r.now()
	if _, err := r.runLeakage(ctx, runID); err != nil {
		return err
	}
	if _, err := r.runLSL(ctx, runID); err != nil {
		return err
	}
	return r.runReports(ctx, runID, startedAt)
}

// writeReport writes one report's Markdown, its HTML render, and a
// best-effort PDF.
func (r *Runner) writeReport(log *logrus.Entry, markdown, mdPath, htmlPath, pdfPath, pageTitle string) error {
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("reports: %w", err)
	}
	if err := report.WriteHTML(mdPath, htmlPath, pageTitle); err != nil {
		return fmt.Errorf("reports: %w", err)
	}
	if err := report.WritePDF(markdown, pdfPath); err != nil {
		log.WithError(err).WithField("path", pdfPath).Warn("pdf render failed")
	}
	return nil
}

func (r *Runner) exportDatabase(ctx context.Context, runID string, startedAt time.Time, combined []report.Row, recon []audit.ReconciliationRow) error {
	st, err := sqlite.New(r.opts.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	var leakageFindings, lslFindings []audit.Finding
	for _, row := range combined {
		if row.SourceModule == report.ModuleLSL {
			lslFindings = append(lslFindings, row.Finding())
		} else {
			leakageFindings = append(leakageFindings, row.Finding())
		}
	}

	run := sqlite.Run{
		ID:          runID,
		DataDir:     r.opts.DataDir,
		OutDir:      r.opts.OutDir,
		StartedAt:   startedAt,
		CompletedAt: r.now(),
	}
	return st.Export(ctx, run, leakageFindings, lslFindings, recon)
}

// latestAsOf picks the newest as_of_date across the findings for the
// report headers, falling back to the run time when no row carries one.
func latestAsOf(rows []report.Row, now time.Time) string {
	var latest audit.Date
	for _, row := range rows {
		if d, ok := audit.ParseDateLenient(row.AsOfDate); ok && d.After(latest) {
			latest = d
		}
	}
	if latest.IsZero() {
		return now.Format("02 Jan 2006")
	}
	return latest.Time().Format("02 Jan 2006")
}
