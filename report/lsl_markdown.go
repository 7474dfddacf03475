package report

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"
)

// ExposureEntry is one parsed line of the exposure summary file.
type ExposureEntry struct {
	Label  string
	Amount float64
}

// exposure loader synonyms, in resolution order.
var (
	exposureLabelSynonyms  = []string{"metric", "label", "bucket", "rule_code"}
	exposureAmountSynonyms = []string{"estimated_exposure", "exposure_amount", "lsl_liability", "amount", "value"}
)

// LoadExposureSummary reads exposure rows from the LSL exposure summary
// file. Rows whose amount candidates are absent or non-numeric are
// skipped, which also drops the trailing note row. A missing file reads
// as no entries.
func LoadExposureSummary(path string) ([]ExposureEntry, error) {
	header, records, err := readCSV(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	col := columnIndex(header)
	labelCol := resolve(col, exposureLabelSynonyms)

	var entries []ExposureEntry
	for _, rec := range records {
		amount, ok := firstNumeric(rec, col)
		if !ok {
			continue
		}
		entries = append(entries, ExposureEntry{
			Label:  field(rec, labelCol),
			Amount: amount,
		})
	}
	return entries, nil
}

func firstNumeric(rec []string, col columns) (float64, bool) {
	for _, name := range exposureAmountSynonyms {
		i := col.index(name)
		if i < 0 {
			continue
		}
		cell := field(rec, i)
		if cell == "" {
			continue
		}
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// BuildLSLReport renders the Long Service Leave Exposure Review.
// Callers pass findings already deduplicated via DedupeLSL.
func BuildLSLReport(findings []Row, exposure []ExposureEntry, organisation, reviewPeriod string, now time.Time) string {
	parts := []string{
		lslHeader(organisation, reviewPeriod, now),
		lslExecutiveSummary(findings),
		lslScopeAndMethodology(),
		lslKeyFindingsOverview(findings),
		lslDetailedFindings(findings),
		lslExposureSection(exposure),
		lslLimitations(),
		lslNextSteps(),
		lslAppendices(),
	}
	return strings.Join(parts, "\n")
}

func lslSeverityCounts(findings []Row) (high, medium, low int) {
	for _, f := range findings {
		switch f.Severity {
		case "HIGH":
			high++
		case "MEDIUM":
			medium++
		case "LOW":
			low++
		}
	}
	return high, medium, low
}

func lslHeader(organisation, reviewPeriod string, now time.Time) string {
	return fmt.Sprintf(`# Long Service Leave (LSL) Exposure Review

**Organisation:** %s
**Review period:** %s
**Report date:** %s

> This review provides an indicative view of Long Service Leave (LSL) exposure based on the data provided. It highlights potential areas of risk and imbalance but does not constitute legal, accounting or industrial relations advice.

---
`, organisation, reviewPeriod, now.Format("02 Jan 2006"))
}

func lslExecutiveSummary(findings []Row) string {
	high, medium, low := lslSeverityCounts(findings)

	employees := make(map[string]bool)
	for _, f := range findings {
		if f.EmployeeID != "" {
			employees[f.EmployeeID] = true
		}
	}

	paragraph := fmt.Sprintf(
		"This review analysed Long Service Leave balances and related employee data to "+
			"identify potential areas of exposure and imbalance. A total of %d "+
			"potential issues were identified across approximately %d employees. "+
			"These findings range from likely LSL under- or over-provisioning risk through to "+
			"data and configuration issues that may affect the reliability of reported LSL liabilities.",
		len(findings), len(employees))

	return fmt.Sprintf(`## 1. Executive Summary

%s

**Summary of findings**

- High severity: %d — likely LSL exposure or provision risk
- Medium severity: %d — material inconsistency or configuration issue
- Low severity: %d — data quality or minor process issue

This report is intended to support payroll and finance teams in understanding LSL exposure, prioritising review efforts and informing internal discussions. It highlights areas requiring further investigation rather than providing definitive accounting or legal conclusions.

---
`, paragraph, high, medium, low)
}

func lslScopeAndMethodology() string {
	return `## 2. Scope & Methodology

**Data reviewed**

- LSL balance records
- Employee service dates and employment status
- Other LSL-related data supplied by the organisation

**Checks performed**

- Rule-based checks over LSL balances and service history
- Identification of unusual or inconsistent LSL balances
- Flags for employees with long service and low or zero LSL balances
- Checks for negative or unusually high LSL balances

**Out of scope**

- Interpretation of awards, enterprise agreements or contracts
- Detailed accounting treatment of LSL under relevant standards
- Validation of external actuarial or provisioning calculations

---
`
}

func lslKeyFindingsOverview(findings []Row) string {
	high, medium, low := lslSeverityCounts(findings)
	return fmt.Sprintf(`## 3. Key Findings Overview

The automated checks identified the following potential issues in LSL balances and related data:

| Severity | Count | Description |
|---------|-------|-------------|
| High    | %d   | Likely LSL exposure or provision risk |
| Medium  | %d   | Material inconsistency or configuration issue |
| Low     | %d   | Data quality or minor process issue |

---
`, high, medium, low)
}

func lslDetailedFindings(findings []Row) string {
	if len(findings) == 0 {
		return `## 4. Detailed Findings

No LSL-related findings were identified for the supplied data.

---
`
	}

	lines := []string{
		"## 4. Detailed Findings",
		"",
		"Each finding below follows a consistent **Finding → Evidence → Impact / Risk → Recommended Action** pattern.",
		"",
	}

	for i, f := range findings {
		rule := f.RuleCode
		if rule == "" {
			rule = "UNSPECIFIED RULE"
		}
		severity := f.Severity
		if severity == "" {
			severity = "UNSPECIFIED"
		}
		message := f.Message
		if message == "" {
			message = "No description provided."
		}

		lines = append(lines,
			fmt.Sprintf("### Finding %d: %s", i+1, rule),
			fmt.Sprintf("**Severity:** %s", severity),
			"",
			"**Finding**",
			message,
			"",
			"**Evidence**",
		)
		if f.EmployeeID != "" {
			lines = append(lines, fmt.Sprintf("- Employee ID: `%s`", f.EmployeeID))
		} else {
			lines = append(lines, "- Not specified in the source data.")
		}
		lines = append(lines,
			"",
			"**Impact / Risk**",
			"Potential misstatement of Long Service Leave entitlements or provisions. "+
				"Depending on the nature of the issue, this may result in incorrect LSL balances for individual employees, "+
				"and potentially an understatement or overstatement of overall LSL exposure.",
			"",
			"**Recommended Action**",
			"- Review the underlying LSL balance, service history and entitlement settings for the affected employee(s).\n"+
				"- Confirm whether the balance aligns with applicable legislation, awards or agreements.\n"+
				"- Correct any confirmed configuration or data issues and assess whether broader remediation is required.",
			"",
		)
	}

	lines = append(lines, "---", "")
	return strings.Join(lines, "\n")
}

func lslExposureSection(exposure []ExposureEntry) string {
	if len(exposure) == 0 {
		return `## 5. Financial Exposure (Indicative)

No LSL exposure estimates were available from the current data extract. If required, aggregated LSL exposure figures can be added to this section in future runs.

---
`
	}

	var total float64
	for _, e := range exposure {
		total += e.Amount
	}

	lines := []string{
		"## 5. Financial Exposure (Indicative)",
		"",
		fmt.Sprintf("- Number of exposure rows: %d", len(exposure)),
		fmt.Sprintf("- Indicative total LSL exposure (all categories): %s", fmtMoney(total)),
		"",
		"> These figures are indicative only and rely on the provided data and simplifying assumptions. " +
			"They do not replace formal actuarial or accounting assessments.",
		"",
		"---",
		"",
	}
	return strings.Join(lines, "\n")
}

func lslLimitations() string {
	return `## 6. Limitations & Assumptions

This review is subject to the following limitations:

- Calculations assume that LSL balances and service dates are correctly recorded in the source systems.
- The review does not interpret awards, enterprise agreements or employment contracts, and does not provide accounting advice.
- Findings are generated using automated, rule-based checks and may require contextual validation.
- Data quality issues such as missing start dates, inconsistent identifiers or historical changes in conditions may affect the completeness or accuracy of results.

This report is intended to support internal review and prioritisation and should be used in conjunction with professional payroll, legal, accounting or industrial relations advice where required.

---
`
}

func lslNextSteps() string {
	return `## 7. Recommended Next Steps

1. Prioritise review of **High** severity findings affecting LSL balances or exposure.
2. Validate affected employee records, including service history and entitlement calculations.
3. Correct any identified configuration or data issues in payroll and HR systems.
4. Engage internal or external advisors where significant LSL exposure or provision changes are indicated.
5. Re-run the review after corrections to confirm that LSL exposure has been addressed.

---
`
}

func lslAppendices() string {
	return `## 8. Appendix A – Rule Definitions

This review used a set of automated rules to flag potential LSL exposure and imbalance. Examples include:

- Eligible employees with no LSL balance record at all
- Employees with long service and low or zero LSL balances
- Negative LSL balances

(The exact rules can be expanded over time to match your LSL rule definitions.)

---

## 9. Appendix B – Data Fields Used

Key fields used in this analysis include:

- ` + "`employee_id`" + `
- ` + "`employment_type`" + `
- ` + "`start_date`" + ` / ` + "`end_date`" + `
- ` + "`leave_type`" + ` and ` + "`balance_units`" + ` from the balances snapshot
- ` + "`hourly_rate`" + ` / ` + "`annual_salary`" + ` where a pay rates file is supplied

(Additional fields from the supplied CSV files may also be used.)

---

## 10. Appendix C – Full Findings Table

A complete machine-readable version of the LSL findings is available in:

- ` + "`outputs/modules/lsl_findings.csv`" + `
- ` + "`outputs/modules/lsl_exposure_summary.csv`" + `
`
}

// fmtMoney renders an amount with thousands separators and two decimal
// places.
func fmtMoney(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	dot := strings.IndexByte(s, '.')
	return fmtIntString(s[:dot]) + s[dot:]
}

func fmtIntString(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
