package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/warp/leave-audit/audit"
)

// BuildFindingsReport renders the Payroll Compliance Findings Report
// over the combined findings. The layout is fixed: executive summary,
// per-module counts, top risk drivers, a prioritised action list, and
// an appendix of worked examples per rule with their evidence.
func BuildFindingsReport(rows []Row, now time.Time) string {
	generated := now.Format("2006-01-02 15:04")

	if len(rows) == 0 {
		return "# Payroll Compliance Findings Report\n\n" +
			fmt.Sprintf("_Generated: %s_\n\n", generated) +
			"No findings were produced for this run.\n"
	}

	var lines []string
	lines = append(lines,
		"# Payroll Compliance Findings Report",
		"",
		fmt.Sprintf("_Generated: %s_", generated),
		"",
		"## Executive summary",
		"",
		fmt.Sprintf("- Total findings: **%s**", fmtInt(len(rows))),
	)

	sevParts := make([]string, 0, 3)
	for _, sc := range severityBreakdown(rows) {
		sevParts = append(sevParts, fmt.Sprintf("**%s** %s", sc.severity, fmtInt(sc.count)))
	}
	lines = append(lines,
		"- Severity breakdown: "+strings.Join(sevParts, ", "),
		"",
		"**What this report is:** A structured set of compliance risk flags with evidence and next actions.",
		"**What this report is not:** Legal advice or a statutory entitlement calculation.",
		"",
		"## Findings by module",
		"",
	)

	for _, mod := range moduleBreakdown(rows) {
		parts := make([]string, 0, len(mod.counts))
		for _, sc := range mod.counts {
			parts = append(parts, fmt.Sprintf("%s %s", sc.severity, fmtInt(sc.count)))
		}
		lines = append(lines, fmt.Sprintf("- **%s**: %s", ModuleDisplayName(mod.module), strings.Join(parts, ", ")))
	}

	lines = append(lines, "", "## Top risk drivers (by rule)", "")
	top := topRuleCounts(rows, 12)
	if len(top) == 0 {
		lines = append(lines, "_No rule-level breakdown available._")
	} else {
		for _, rc := range top {
			lines = append(lines, fmt.Sprintf("- **%s** (%s): %s finding(s)", rc.rule, rc.severity, fmtInt(rc.count)))
		}
	}

	lines = append(lines,
		"",
		"## Recommended next actions (prioritised)",
		"",
		"1. **Address HIGH severity findings first** (data errors, negative balances, eligibility issues).",
		"2. **Confirm rule intent vs business context** for MEDIUM findings (heuristic flags, policy-specific scenarios).",
		"3. **Re-run after remediation** to confirm closure and prevent recurrence.",
		"",
		"## Appendix A — Rule examples with evidence (sample)",
		"",
	)

	for _, rule := range rulesBySeverity(rows) {
		examples := exampleRows(rows, rule, 3)
		if len(examples) == 0 {
			continue
		}
		first := examples[0]
		lines = append(lines, fmt.Sprintf("### %s (%s) — %s", rule, first.Severity, ModuleDisplayName(first.SourceModule)), "")

		for _, row := range examples {
			lines = append(lines, fmt.Sprintf("- **Employee:** `%s`  | **Leave type:** `%s`  | **As of:** `%s`",
				row.EmployeeID, row.LeaveType, row.AsOfDate))
			lines = append(lines, fmt.Sprintf("  - **Message:** %s", row.Message))

			ev := decodeEvidence(row.Evidence)
			if ev.Explanation != "" {
				lines = append(lines, fmt.Sprintf("  - **Evidence:** %s", ev.Explanation))
			}
			if len(ev.Sources) > 0 {
				quoted := make([]string, len(ev.Sources))
				for i, s := range ev.Sources {
					quoted[i] = fmt.Sprintf("`%s`", s)
				}
				lines = append(lines, fmt.Sprintf("  - **Sources:** %s", strings.Join(quoted, ", ")))
			}
			if len(ev.Thresholds) > 0 {
				lines = append(lines, fmt.Sprintf("  - **Thresholds:** %s", formatThresholds(ev.Thresholds)))
			}
			if row.NextAction != "" {
				lines = append(lines, fmt.Sprintf("  - **Next action:** %s", row.NextAction))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines,
		"---",
		"### Notes",
		"- Findings are designed to be explainable and auditable (each includes evidence and recommended next actions).",
		"- LSL exposure estimates (if present) are indicative only and depend on available pay-rate inputs.",
		"",
	)
	return strings.Join(lines, "\n")
}

// =============================================================================
// Aggregation helpers
// =============================================================================

type sevCount struct {
	severity string
	count    int
}

type moduleCounts struct {
	module string
	counts []sevCount
}

type ruleCount struct {
	rule     string
	severity string
	count    int
}

func sevRank(severity string) int {
	return audit.Severity(strings.ToUpper(severity)).Rank()
}

// severityBreakdown counts rows per severity, ordered by severity rank.
func severityBreakdown(rows []Row) []sevCount {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.Severity]++
	}
	out := make([]sevCount, 0, len(counts))
	for sev, n := range counts {
		out = append(out, sevCount{severity: sev, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if sevRank(out[i].severity) != sevRank(out[j].severity) {
			return sevRank(out[i].severity) < sevRank(out[j].severity)
		}
		return out[i].severity < out[j].severity
	})
	return out
}

// moduleBreakdown counts rows per (module, severity), modules in
// ascending identifier order, severities by rank within a module.
func moduleBreakdown(rows []Row) []moduleCounts {
	perModule := make(map[string]map[string]int)
	for _, r := range rows {
		if perModule[r.SourceModule] == nil {
			perModule[r.SourceModule] = make(map[string]int)
		}
		perModule[r.SourceModule][r.Severity]++
	}

	modules := make([]string, 0, len(perModule))
	for mod := range perModule {
		modules = append(modules, mod)
	}
	sort.Strings(modules)

	out := make([]moduleCounts, 0, len(modules))
	for _, mod := range modules {
		counts := make([]sevCount, 0, len(perModule[mod]))
		for sev, n := range perModule[mod] {
			counts = append(counts, sevCount{severity: sev, count: n})
		}
		sort.Slice(counts, func(i, j int) bool {
			return sevRank(counts[i].severity) < sevRank(counts[j].severity)
		})
		out = append(out, moduleCounts{module: mod, counts: counts})
	}
	return out
}

// topRuleCounts returns the n largest (rule, severity) groups ordered by
// severity rank, then count descending, then rule code.
func topRuleCounts(rows []Row, n int) []ruleCount {
	type key struct{ rule, sev string }
	counts := make(map[key]int)
	for _, r := range rows {
		counts[key{rule: r.RuleCode, sev: r.Severity}]++
	}
	out := make([]ruleCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, ruleCount{rule: k.rule, severity: k.sev, count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if sevRank(out[i].severity) != sevRank(out[j].severity) {
			return sevRank(out[i].severity) < sevRank(out[j].severity)
		}
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].rule < out[j].rule
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// rulesBySeverity returns distinct rule codes ordered by their best
// severity rank, then code.
func rulesBySeverity(rows []Row) []string {
	best := make(map[string]int)
	for _, r := range rows {
		rank := sevRank(r.Severity)
		if have, ok := best[r.RuleCode]; !ok || rank < have {
			best[r.RuleCode] = rank
		}
	}
	rules := make([]string, 0, len(best))
	for rule := range best {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		if best[rules[i]] != best[rules[j]] {
			return best[rules[i]] < best[rules[j]]
		}
		return rules[i] < rules[j]
	})
	return rules
}

// exampleRows picks up to max examples of one rule, ordered by severity
// rank, then employee, then leave type.
func exampleRows(rows []Row, rule string, max int) []Row {
	var sub []Row
	for _, r := range rows {
		if r.RuleCode == rule {
			sub = append(sub, r)
		}
	}
	sort.SliceStable(sub, func(i, j int) bool {
		if sevRank(sub[i].Severity) != sevRank(sub[j].Severity) {
			return sevRank(sub[i].Severity) < sevRank(sub[j].Severity)
		}
		if sub[i].EmployeeID != sub[j].EmployeeID {
			return sub[i].EmployeeID < sub[j].EmployeeID
		}
		return sub[i].LeaveType < sub[j].LeaveType
	})
	if len(sub) > max {
		sub = sub[:max]
	}
	return sub
}

// =============================================================================
// Evidence and formatting helpers
// =============================================================================

// rowEvidence is the slice of the evidence payload the reports surface.
type rowEvidence struct {
	Sources     []string       `json:"sources"`
	Thresholds  map[string]any `json:"thresholds"`
	Explanation string         `json:"explanation"`
}

// decodeEvidence parses a serialized evidence payload; malformed
// payloads decode to the zero value rather than failing the report.
func decodeEvidence(raw string) rowEvidence {
	var ev rowEvidence
	if raw == "" {
		return ev
	}
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		return rowEvidence{}
	}
	return ev
}

func formatThresholds(thresholds map[string]any) string {
	keys := make([]string, 0, len(thresholds))
	for k := range thresholds {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("`%s=%s`", k, formatJSONValue(thresholds[k])))
	}
	return strings.Join(parts, ", ")
}

func formatJSONValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// fmtInt renders n with thousands separators.
func fmtInt(n int) string {
	return fmtIntString(strconv.Itoa(n))
}
