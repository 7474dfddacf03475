package report

import "github.com/warp/leave-audit/audit"

// DedupeLSL removes MEDIUM suspiciously-low LSL findings for employees
// that already carry a HIGH zero-balance finding. The higher-severity
// message covers the same condition; keeping both doubles the noise
// without adding signal.
func DedupeLSL(rows []Row) []Row {
	covered := make(map[string]bool)
	for _, r := range rows {
		if r.RuleCode == string(audit.RuleLSLZeroBalanceLongTenure) &&
			r.Severity == string(audit.SeverityHigh) && r.EmployeeID != "" {
			covered[r.EmployeeID] = true
		}
	}

	deduped := make([]Row, 0, len(rows))
	for _, r := range rows {
		if covered[r.EmployeeID] &&
			r.RuleCode == string(audit.RuleLSLBalanceSuspiciouslyLow) &&
			r.Severity == string(audit.SeverityMedium) {
			continue
		}
		deduped = append(deduped, r)
	}
	return deduped
}
