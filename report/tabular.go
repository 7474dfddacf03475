package report

import (
	"errors"
	"io/fs"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/warp/leave-audit/audit"
	"github.com/warp/leave-audit/lsl"
)

// exposureNote labels the heuristic exposure figures in every file that
// carries them.
const exposureNote = "Indicative-only estimate based on heuristics, not statutory entitlement calculations."

// WriteLeakageOutputs writes the leakage module's tabular outputs:
// findings, both summaries, and the reconciliation detail file.
func WriteLeakageOutputs(outDir string, findings []audit.Finding, recon []audit.ReconciliationRow) error {
	p := NewPaths(outDir)
	if err := WriteFindings(p.LeakageFindings(), findings); err != nil {
		return err
	}
	if err := writeRuleSummary(p.LeakageSummary(), findings); err != nil {
		return err
	}
	if err := writeSeveritySummary(p.LeakageSeveritySummary(), findings); err != nil {
		return err
	}
	return writeReconciliation(p.LeakageReport(), recon)
}

// WriteLSLOutputs writes the LSL module's tabular outputs: findings,
// both summaries, and the exposure band summary.
func WriteLSLOutputs(outDir string, findings []audit.Finding, band lsl.Band) error {
	p := NewPaths(outDir)
	if err := WriteFindings(p.LSLFindings(), findings); err != nil {
		return err
	}
	if err := writeRuleSummary(p.LSLSummary(), findings); err != nil {
		return err
	}
	if err := writeSeveritySummary(p.LSLSeveritySummary(), findings); err != nil {
		return err
	}
	return writeExposureSummary(p.LSLExposureSummary(), band)
}

func writeRuleSummary(path string, findings []audit.Finding) error {
	header := []string{"rule_code", "severity", "finding_count"}
	var records [][]string
	for _, rc := range audit.SummarizeByRule(findings) {
		records = append(records, []string{
			string(rc.RuleCode), string(rc.Severity), strconv.Itoa(rc.Count),
		})
	}
	return writeCSV(path, header, records)
}

func writeSeveritySummary(path string, findings []audit.Finding) error {
	header := []string{"severity", "finding_count"}
	var records [][]string
	for _, sc := range audit.SummarizeBySeverity(findings) {
		records = append(records, []string{string(sc.Severity), strconv.Itoa(sc.Count)})
	}
	return writeCSV(path, header, records)
}

func writeReconciliation(path string, recon []audit.ReconciliationRow) error {
	rows := append([]audit.ReconciliationRow{}, recon...)
	audit.SortReconciliation(rows)

	header := []string{
		"employee_id", "leave_type", "as_of_date", "balance_units",
		"ledger_balance_units", "diff_units", "risk_flag", "risk_reason",
	}
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.EmployeeID, row.LeaveType, row.AsOfDate.String(),
			row.BalanceUnits.String(), row.LedgerBalanceUnits.String(),
			row.DiffUnits.String(), strconv.FormatBool(row.RiskFlag),
			row.RiskReason,
		})
	}
	return writeCSV(path, header, records)
}

func writeExposureSummary(path string, band lsl.Band) error {
	header := []string{"metric", "value", "currency"}
	records := [][]string{
		{"estimated_exposure_low", band.Low.StringFixed(2), "AUD"},
		{"estimated_exposure_high", band.High.StringFixed(2), "AUD"},
		{"note", exposureNote, ""},
	}
	return writeCSV(path, header, records)
}

// LoadReconciliation reads the reconciliation detail file back. Rows
// whose numeric cells fail to parse are skipped; a missing file reads
// as no rows.
func LoadReconciliation(path string) ([]audit.ReconciliationRow, error) {
	header, records, err := readCSV(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	col := columnIndex(header)
	var rows []audit.ReconciliationRow
	for _, rec := range records {
		asOf, ok := audit.ParseDateLenient(field(rec, col.index("as_of_date")))
		if !ok {
			continue
		}
		balance, err1 := decimal.NewFromString(field(rec, col.index("balance_units")))
		ledger, err2 := decimal.NewFromString(field(rec, col.index("ledger_balance_units")))
		diff, err3 := decimal.NewFromString(field(rec, col.index("diff_units")))
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		risk, _ := strconv.ParseBool(field(rec, col.index("risk_flag")))
		rows = append(rows, audit.ReconciliationRow{
			EmployeeID:         field(rec, col.index("employee_id")),
			LeaveType:          field(rec, col.index("leave_type")),
			AsOfDate:           asOf,
			BalanceUnits:       balance,
			LedgerBalanceUnits: ledger,
			DiffUnits:          diff,
			RiskFlag:           risk,
			RiskReason:         field(rec, col.index("risk_reason")),
		})
	}
	return rows, nil
}
