/*
main.go - Application entry point

PURPOSE:
  Runs the payroll leave audit from the command line. Subcommands cover
  the two audit runs, the reporting stage, run diffing, sample data, and
  a read-only HTTP server over the outputs.

SUBCOMMANDS:
  run      Leave leakage audit (strict dates)
  lsl      Long service leave audit (lenient dates)
  all      Both audits plus reports, workbook, and SQLite export
  report   Reporting stage over existing module outputs
  diff     Compare two findings CSVs by finding ID
  sample   Write the bundled sample dataset
  serve    Read-only HTTP API over an output directory

COMMAND-LINE FLAGS:
  -data    input data directory (run, lsl, all; target for sample)
  -out     output directory, or the diff CSV path for diff
  -org     organisation name printed on reports
  -db      SQLite export path, empty disables the export
  -port    serve: HTTP port, overrides AUDIT_ADDR
  -before  diff: previous findings CSV
  -after   diff: current findings CSV

GRACEFUL SHUTDOWN:
  serve stops accepting connections on SIGINT/SIGTERM and waits up to
  30s for active requests before exiting.

EXAMPLES:
  # Write the sample dataset and audit it end to end
  ./auditor sample
  ./auditor all -db=outputs/audit.db

  # Leakage audit over a client extract
  ./auditor run -data=./extracts/2024-06 -out=./outputs/2024-06

  # Compare against last month's findings
  ./auditor diff -before=may/leakage_findings.csv -after=june/leakage_findings.csv

  # Serve the results
  ./auditor serve -out=./outputs/2024-06 -port=3000

ENVIRONMENT:
  Every flag has an environment default via config (.env supported).
  See config/config.go for the full variable list.

SEE ALSO:
  - pipeline/pipeline.go: Stage orchestration
  - api/server.go: Router configuration
  - config/config.go: Environment configuration
*/
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/leave-audit/api"
	"github.com/warp/leave-audit/audit"
	"github.com/warp/leave-audit/config"
	"github.com/warp/leave-audit/loader"
	"github.com/warp/leave-audit/pipeline"
	"github.com/warp/leave-audit/report"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage()
		if len(args) == 0 {
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg)

	if err := dispatch(args[0], args[1:], cfg, log); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func dispatch(cmd string, args []string, cfg config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "run":
		_, err := pipeline.New(log, pipelineOptions("run", args, cfg)).RunLeakage(ctx)
		return err
	case "lsl":
		_, err := pipeline.New(log, pipelineOptions("lsl", args, cfg)).RunLSL(ctx)
		return err
	case "all":
		return pipeline.New(log, pipelineOptions("all", args, cfg)).RunAll(ctx)
	case "report":
		return pipeline.New(log, pipelineOptions("report", args, cfg)).RunReports(ctx)
	case "diff":
		return runDiff(args)
	case "sample":
		return runSample(args, cfg, log)
	case "serve":
		return runServe(ctx, args, cfg, log)
	default:
		usage()
		return fmt.Errorf("unknown subcommand %q", cmd)
	}
}

// pipelineOptions parses the flags shared by the pipeline subcommands.
// Defaults come from the environment-derived Config.
func pipelineOptions(name string, args []string, cfg config.Config) pipeline.Options {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	data := fs.String("data", cfg.DataDir, "input data directory")
	out := fs.String("out", cfg.OutDir, "output directory")
	org := fs.String("org", pipeline.DefaultOrganisation, "organisation name printed on reports")
	db := fs.String("db", cfg.DBPath, "SQLite export path (empty disables)")
	fs.Parse(args)

	return pipeline.Options{
		DataDir:      *data,
		OutDir:       *out,
		Organisation: *org,
		DBPath:       *db,
		Params:       cfg.Params(),
	}
}

// =============================================================================
// DIFF
// =============================================================================

func runDiff(args []string) error {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	before := fs.String("before", "", "previous findings CSV")
	after := fs.String("after", "", "current findings CSV")
	out := fs.String("out", "", "optional CSV path for the classified rows")
	fs.Parse(args)

	if *before == "" || *after == "" {
		return errors.New("diff requires -before and -after findings files")
	}

	prev, err := loadFindingsFile(*before)
	if err != nil {
		return err
	}
	curr, err := loadFindingsFile(*after)
	if err != nil {
		return err
	}

	d := audit.DiffFindings(prev, curr)

	fmt.Printf("findings diff: %s -> %s\n", *before, *after)
	fmt.Printf("  new:       %d\n", len(d.New))
	fmt.Printf("  persisted: %d\n", len(d.Persisted))
	fmt.Printf("  resolved:  %d\n", len(d.Resolved))
	printBucket("NEW", d.New)
	printBucket("RESOLVED", d.Resolved)

	if *out != "" {
		if err := writeDiffCSV(*out, d); err != nil {
			return err
		}
		fmt.Printf("\nclassified rows written to %s\n", *out)
	}
	return nil
}

// loadFindingsFile reads a findings CSV into engine findings. Unlike the
// pipeline loaders, a missing file is an error here: the user named it.
func loadFindingsFile(path string) ([]audit.Finding, error) {
	rows, err := report.LoadFindings(path)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return nil, fmt.Errorf("no findings file at %s", path)
	}
	findings := make([]audit.Finding, 0, len(rows))
	for _, row := range rows {
		findings = append(findings, row.Finding())
	}
	return findings, nil
}

func printBucket(status string, findings []audit.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Println()
	for _, f := range findings {
		fmt.Printf("%-10s %-40s %-8s %s\n", status, f.RuleCode, f.EmployeeID, f.FindingID)
	}
}

func writeDiffCSV(path string, d audit.Diff) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"status", "rule_code", "severity", "employee_id", "leave_type", "as_of_date", "finding_id", "message"}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, bucket := range []struct {
		status   string
		findings []audit.Finding
	}{
		{"NEW", d.New},
		{"PERSISTED", d.Persisted},
		{"RESOLVED", d.Resolved},
	} {
		for _, fd := range bucket.findings {
			rec := []string{bucket.status, string(fd.RuleCode), string(fd.Severity), fd.EmployeeID, fd.LeaveType, fd.AsOfDate, fd.FindingID, fd.Message}
			if err := w.Write(rec); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// =============================================================================
// SAMPLE
// =============================================================================

func runSample(args []string, cfg config.Config, log *logrus.Logger) error {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	dir := fs.String("data", cfg.DataDir, "directory to write the sample dataset into")
	fs.Parse(args)

	if err := loader.WriteSampleData(*dir); err != nil {
		return err
	}
	log.WithField("dir", *dir).Info("sample dataset written")
	return nil
}

// =============================================================================
// SERVE
// =============================================================================

func runServe(ctx context.Context, args []string, cfg config.Config, log *logrus.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	out := fs.String("out", cfg.OutDir, "output directory to serve")
	port := fs.Int("port", 0, "HTTP port (overrides AUDIT_ADDR)")
	fs.Parse(args)

	addr := cfg.Addr
	if *port != 0 {
		addr = fmt.Sprintf(":%d", *port)
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(api.NewHandler(*out, log)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "out_dir": *out}).Info("results API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// =============================================================================
// USAGE
// =============================================================================

func usage() {
	fmt.Fprint(os.Stderr, `Usage: auditor <command> [flags]

Commands:
  run      Leave leakage audit: load, reconcile, rules, CSV outputs
  lsl      Long service leave audit: state, rules, exposure, CSV outputs
  all      Full pipeline: both audits, reports, workbook, SQLite export
  report   Reporting stage over existing module outputs
  diff     Compare two findings CSVs by finding ID
  sample   Write the bundled sample dataset
  serve    Read-only HTTP API over an output directory

Run "auditor <command> -h" for command flags.
`)
}
