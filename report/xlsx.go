package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/warp/leave-audit/audit"
)

// Workbook sheet names.
const (
	sheetFindings       = "Findings"
	sheetReconciliation = "Reconciliation"
	sheetSummary        = "Summary"
)

// WriteWorkbook writes the audit workbook: the combined findings, the
// reconciliation detail, and a per-rule summary, one sheet each.
// Numeric columns land as numbers so the sheets filter and sum cleanly.
func WriteWorkbook(path string, combined []Row, recon []audit.ReconciliationRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetFindings); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetReconciliation); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}

	if err := writeFindingsSheet(f, combined); err != nil {
		return err
	}
	if err := writeReconciliationSheet(f, recon); err != nil {
		return err
	}
	if err := writeSummarySheet(f, combined); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func writeFindingsSheet(f *excelize.File, rows []Row) error {
	headers := append(append([]string{}, findingColumns...), "source_module")
	if err := writeHeaderRow(f, sheetFindings, headers); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeSheetRow(f, sheetFindings, i+2, []any{
			row.EmployeeID, row.LeaveType, row.AsOfDate, row.RuleCode,
			row.Severity, row.Message, row.DiffUnits, row.Evidence,
			row.FindingID, row.NextAction, row.SourceModule,
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeReconciliationSheet(f *excelize.File, recon []audit.ReconciliationRow) error {
	rows := append([]audit.ReconciliationRow{}, recon...)
	audit.SortReconciliation(rows)

	headers := []string{
		"employee_id", "leave_type", "as_of_date", "balance_units",
		"ledger_balance_units", "diff_units", "risk_flag", "risk_reason",
	}
	if err := writeHeaderRow(f, sheetReconciliation, headers); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeSheetRow(f, sheetReconciliation, i+2, []any{
			row.EmployeeID, row.LeaveType, row.AsOfDate.String(),
			row.BalanceUnits.InexactFloat64(),
			row.LedgerBalanceUnits.InexactFloat64(),
			row.DiffUnits.InexactFloat64(),
			row.RiskFlag, row.RiskReason,
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, rows []Row) error {
	headers := []string{"rule_code", "severity", "finding_count"}
	if err := writeHeaderRow(f, sheetSummary, headers); err != nil {
		return err
	}
	for i, rc := range topRuleCounts(rows, len(rows)) {
		if err := writeSheetRow(f, sheetSummary, i+2, []any{
			rc.rule, rc.severity, rc.count,
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	return writeSheetRow(f, sheet, 1, values)
}

func writeSheetRow(f *excelize.File, sheet string, rowNum int, values []any) error {
	for j, v := range values {
		cell := fmt.Sprintf("%c%d", 'A'+j, rowNum)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
