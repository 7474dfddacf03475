package audit

import (
	"sort"
)

// =============================================================================
// RUN DIFFING - What the stable identity contract buys
// =============================================================================

// Diff classifies two runs' findings by finding_id. Persisted and New carry
// the current run's rows; Resolved carries the previous run's.
type Diff struct {
	Persisted []Finding
	Resolved  []Finding
	New       []Finding
}

// DiffFindings compares a previous and a current findings table. Identity
// governs equality: duplicate IDs within one run collapse to the first
// occurrence. Each bucket is sorted by (rule_code, finding_id) for stable
// presentation.
func DiffFindings(previous, current []Finding) Diff {
	prevByID := dedupeByID(previous)
	currByID := dedupeByID(current)

	var d Diff
	for id, f := range currByID {
		if _, ok := prevByID[id]; ok {
			d.Persisted = append(d.Persisted, f)
		} else {
			d.New = append(d.New, f)
		}
	}
	for id, f := range prevByID {
		if _, ok := currByID[id]; !ok {
			d.Resolved = append(d.Resolved, f)
		}
	}

	sortFindings(d.Persisted)
	sortFindings(d.Resolved)
	sortFindings(d.New)
	return d
}

func dedupeByID(findings []Finding) map[string]Finding {
	m := make(map[string]Finding, len(findings))
	for _, f := range findings {
		if _, ok := m[f.FindingID]; !ok {
			m[f.FindingID] = f
		}
	}
	return m
}

func sortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].RuleCode != findings[j].RuleCode {
			return findings[i].RuleCode < findings[j].RuleCode
		}
		return findings[i].FindingID < findings[j].FindingID
	})
}
