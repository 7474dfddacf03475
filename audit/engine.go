/*
engine.go - Ordered rule evaluation

PURPOSE:
  Runs a fixed battery of independent rules and concatenates their
  findings. Rules are pure over data bound at construction; the engine
  adds nothing but ordering, which exists for presentation only - the
  rules are evaluable in any order without changing what they emit.

SEE ALSO:
  - leakage: the five ledger/snapshot rules
  - lsl: the four long-service-leave rules
*/
package audit

import (
	"sort"
)

// =============================================================================
// RULE - One pure check emitting zero or more findings
// =============================================================================

// Rule is one business check. Implementations hold the tables they scan;
// Evaluate reads them and emits findings, never errors - per-row anomalies
// are exactly what findings exist to report.
type Rule interface {
	Code() RuleCode
	Evaluate() []Finding
}

// =============================================================================
// ENGINE - Registration-ordered evaluation
// =============================================================================

type Engine struct {
	rules []Rule
}

func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

func (e *Engine) Register(r Rule) {
	e.rules = append(e.rules, r)
}

// Run evaluates every registered rule in registration order and returns the
// concatenated findings table for the run.
func (e *Engine) Run() []Finding {
	var findings []Finding
	for _, r := range e.rules {
		findings = append(findings, r.Evaluate()...)
	}
	return findings
}

// =============================================================================
// SUMMARIES - Counts by rule and by severity
// =============================================================================

type RuleCount struct {
	RuleCode RuleCode
	Severity Severity
	Count    int
}

type SeverityCount struct {
	Severity Severity
	Count    int
}

// SummarizeByRule counts findings per (rule_code, severity), ordered by
// severity rank, then count descending, then rule code.
func SummarizeByRule(findings []Finding) []RuleCount {
	type key struct {
		code RuleCode
		sev  Severity
	}
	counts := make(map[key]int)
	for _, f := range findings {
		counts[key{code: f.RuleCode, sev: f.Severity}]++
	}

	out := make([]RuleCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, RuleCount{RuleCode: k.code, Severity: k.sev, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Severity.Rank() != out[j].Severity.Rank() {
			return out[i].Severity.Rank() < out[j].Severity.Rank()
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].RuleCode < out[j].RuleCode
	})
	return out
}

// SummarizeBySeverity counts findings per severity, ordered by count
// descending, then severity rank.
func SummarizeBySeverity(findings []Finding) []SeverityCount {
	counts := make(map[Severity]int)
	for _, f := range findings {
		counts[f.Severity]++
	}

	out := make([]SeverityCount, 0, len(counts))
	for sev, n := range counts {
		out = append(out, SeverityCount{Severity: sev, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Severity.Rank() < out[j].Severity.Rank()
	})
	return out
}
