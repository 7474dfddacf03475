package report

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SevCounts aggregates finding counts by severity for one module.
type SevCounts struct {
	High   int
	Medium int
	Low    int
}

func (c SevCounts) Total() int { return c.High + c.Medium + c.Low }

// RuleTally pairs a rule code with its finding count.
type RuleTally struct {
	Rule  string
	Count int
}

// severity-summary loader synonyms, in resolution order.
var (
	severityColSynonyms = []string{"severity", "Severity"}
	countColSynonyms    = []string{"finding_count", "count", "Count", "n", "N", "value", "Value"}
)

// LoadSeverityCounts reads a summary-by-severity CSV. A missing file or
// an unrecognisable header reads as zero counts; callers fall back to
// scanning the findings file.
func LoadSeverityCounts(path string) (SevCounts, error) {
	header, records, err := readCSV(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return SevCounts{}, nil
		}
		return SevCounts{}, err
	}

	col := columnIndex(header)
	sevCol := resolve(col, severityColSynonyms)
	countCol := resolve(col, countColSynonyms)
	if sevCol < 0 || countCol < 0 {
		return SevCounts{}, nil
	}

	var counts SevCounts
	for _, rec := range records {
		n, err := strconv.ParseFloat(field(rec, countCol), 64)
		if err != nil {
			continue
		}
		switch strings.ToUpper(field(rec, sevCol)) {
		case "HIGH":
			counts.High += int(n)
		case "MEDIUM":
			counts.Medium += int(n)
		case "LOW":
			counts.Low += int(n)
		}
	}
	return counts, nil
}

// CountsFromRows tallies severities straight off findings rows.
func CountsFromRows(rows []Row) SevCounts {
	var counts SevCounts
	for _, r := range rows {
		switch r.Severity {
		case "HIGH":
			counts.High++
		case "MEDIUM":
			counts.Medium++
		case "LOW":
			counts.Low++
		}
	}
	return counts
}

// TopRules returns the n most frequent rule codes, count descending,
// code ascending on ties. Rows without a rule code tally as UNSPECIFIED.
func TopRules(rows []Row, n int) []RuleTally {
	counts := make(map[string]int)
	for _, r := range rows {
		rule := r.RuleCode
		if rule == "" {
			rule = "UNSPECIFIED"
		}
		counts[rule]++
	}

	out := make([]RuleTally, 0, len(counts))
	for rule, c := range counts {
		out = append(out, RuleTally{Rule: rule, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Rule < out[j].Rule
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// BuildOverviewFromOutputs assembles the combined overview from a
// finished run's files. Leakage counts prefer the severity summary and
// fall back to scanning findings; the LSL side reuses the report's
// deduplication so the two documents never disagree on counts.
func BuildOverviewFromOutputs(outDir, organisation, preparedAsAt string, now time.Time) (string, error) {
	p := NewPaths(outDir)

	leakCounts, err := LoadSeverityCounts(p.LeakageSeveritySummary())
	if err != nil {
		return "", err
	}
	leakRows, err := LoadFindings(p.LeakageFindings())
	if err != nil {
		return "", err
	}
	if leakCounts.Total() == 0 {
		leakCounts = CountsFromRows(leakRows)
	}

	lslRows, err := LoadFindings(p.LSLFindings())
	if err != nil {
		return "", err
	}
	lslRows = DedupeLSL(lslRows)

	return BuildCombinedOverview(
		organisation, preparedAsAt,
		leakCounts, CountsFromRows(lslRows),
		TopRules(leakRows, 3), TopRules(lslRows, 3),
		now,
	), nil
}

// BuildCombinedOverview renders the executive overview document.
func BuildCombinedOverview(organisation, preparedAsAt string, leak, lsl SevCounts, leakTop, lslTop []RuleTally, now time.Time) string {
	if preparedAsAt == "" {
		preparedAsAt = now.Format("02 Jan 2006")
	}

	return fmt.Sprintf(`# Combined Exposure Overview

**Organisation:** %s
**Prepared as at:** %s
**Report date:** %s

> This overview summarises key exposure signals identified across payroll compliance modules. It is intended to support prioritisation and internal discussion. It does not constitute legal, accounting, or industrial relations advice.

---

## 1. Executive Summary

This document provides a consolidated, high-level view of exposure identified across:

- **Leave & Entitlement Leakage Review** (operational payroll accuracy and entitlement consistency)
- **Long Service Leave (LSL) Exposure Review** (long-horizon entitlement and provision risk)

Use this overview to support prioritisation of follow-up work. Refer to the detailed module reports for full evidence and recommended actions.

---

## 2. Exposure Snapshot

| Module | High | Medium | Low | Total |
|---|---:|---:|---:|---:|
| Leave & Entitlement Leakage | %d | %d | %d | %d |
| Long Service Leave (LSL) Exposure | %d | %d | %d | %d |

**Severity meaning**

- **High** — likely compliance breach / underpayment risk (leave) OR likely exposure / provision risk (LSL)
- **Medium** — material inconsistency or configuration issue
- **Low** — data quality or minor process issue

---

## 3. Key Themes (Top signals)

### Leave & Entitlement Leakage (Top rules)
%s

### Long Service Leave (LSL) Exposure (Top rules)
%s

---

## 4. Recommended Next Steps

1. Prioritise review of **High** severity findings across both modules.
2. For confirmed issues, identify root causes (configuration, process, data, policy).
3. Implement corrections and re-run modules to confirm risk reduction.
4. Where significant exposure is indicated, engage appropriate internal stakeholders (Payroll, HR, Finance) and external advisors if required.

---

## 5. Detailed Reports

Full detail, evidence and recommended actions are available in:

- `+"`outputs/report.html`"+` (Leave & Entitlement Leakage Review)
- `+"`outputs/lsl_report.html`"+` (Long Service Leave Exposure Review)

PDF copies are written alongside these files where PDF rendering is available.

---
`,
		organisation, preparedAsAt, now.Format("02 Jan 2006"),
		leak.High, leak.Medium, leak.Low, leak.Total(),
		lsl.High, lsl.Medium, lsl.Low, lsl.Total(),
		formatTopRules(leakTop), formatTopRules(lslTop),
	)
}

func formatTopRules(items []RuleTally) string {
	if len(items) == 0 {
		return "- No findings available."
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- `%s` — %d", item.Rule, item.Count))
	}
	return strings.Join(lines, "\n")
}
