/*
Package report turns finished audit runs into the files people actually
read: the per-module CSVs, the combined findings file, three Markdown
reports with styled HTML and best-effort PDF renders, and an XLSX
workbook.

LAYOUT (under the output directory):

	modules/leave_leakage_findings.csv        per-module machine output
	modules/leave_leakage_summary.csv
	modules/leave_leakage_summary_by_severity.csv
	modules/lsl_findings.csv
	modules/lsl_summary.csv
	modules/lsl_summary_by_severity.csv
	modules/lsl_exposure_summary.csv
	leakage_report.csv                        reconciliation detail
	combined_findings.csv                     canonical cross-module file
	report.md / .html / .pdf                  findings report
	lsl_report.md / .html / .pdf              LSL exposure review
	combined_overview.md / .html / .pdf       executive overview
	audit_workbook.xlsx

CSV loaders in this package resolve header synonyms once, at load time,
through fixed ordered candidate lists. Builders are pure: rows in,
Markdown out. Writers own directory creation.
*/
package report

import "path/filepath"

// Module identifiers stamped into the source_module column of the
// combined findings file.
const (
	ModuleLeakage = "leave_leakage"
	ModuleLSL     = "lsl_exposure"
)

// ModuleDisplayName maps module identifiers to the names used in the
// reports. Unknown identifiers pass through unchanged.
func ModuleDisplayName(module string) string {
	switch module {
	case ModuleLeakage:
		return "Leave Leakage (Ledger vs Snapshot)"
	case ModuleLSL:
		return "Long Service Leave (LSL) Exposure"
	default:
		return module
	}
}

// Paths resolves every output file from one output directory, so the
// layout lives in exactly one place.
type Paths struct {
	OutDir string
}

func NewPaths(outDir string) Paths {
	return Paths{OutDir: outDir}
}

func (p Paths) ModulesDir() string { return filepath.Join(p.OutDir, "modules") }

func (p Paths) LeakageFindings() string {
	return filepath.Join(p.ModulesDir(), "leave_leakage_findings.csv")
}

func (p Paths) LeakageSummary() string {
	return filepath.Join(p.ModulesDir(), "leave_leakage_summary.csv")
}

func (p Paths) LeakageSeveritySummary() string {
	return filepath.Join(p.ModulesDir(), "leave_leakage_summary_by_severity.csv")
}

func (p Paths) LeakageReport() string { return filepath.Join(p.OutDir, "leakage_report.csv") }

func (p Paths) LSLFindings() string { return filepath.Join(p.ModulesDir(), "lsl_findings.csv") }

func (p Paths) LSLSummary() string { return filepath.Join(p.ModulesDir(), "lsl_summary.csv") }

func (p Paths) LSLSeveritySummary() string {
	return filepath.Join(p.ModulesDir(), "lsl_summary_by_severity.csv")
}

func (p Paths) LSLExposureSummary() string {
	return filepath.Join(p.ModulesDir(), "lsl_exposure_summary.csv")
}

func (p Paths) CombinedFindings() string { return filepath.Join(p.OutDir, "combined_findings.csv") }

func (p Paths) FindingsReportMD() string { return filepath.Join(p.OutDir, "report.md") }

func (p Paths) FindingsReportHTML() string { return filepath.Join(p.OutDir, "report.html") }

func (p Paths) FindingsReportPDF() string { return filepath.Join(p.OutDir, "report.pdf") }

func (p Paths) LSLReportMD() string { return filepath.Join(p.OutDir, "lsl_report.md") }

func (p Paths) LSLReportHTML() string { return filepath.Join(p.OutDir, "lsl_report.html") }

func (p Paths) LSLReportPDF() string { return filepath.Join(p.OutDir, "lsl_report.pdf") }

func (p Paths) OverviewMD() string { return filepath.Join(p.OutDir, "combined_overview.md") }

func (p Paths) OverviewHTML() string { return filepath.Join(p.OutDir, "combined_overview.html") }

func (p Paths) OverviewPDF() string { return filepath.Join(p.OutDir, "combined_overview.pdf") }

func (p Paths) Workbook() string { return filepath.Join(p.OutDir, "audit_workbook.xlsx") }

func (p Paths) Database() string { return filepath.Join(p.OutDir, "audit.db") }
