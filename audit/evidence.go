/*
evidence.go - Evidence payloads and deterministic finding identity

PURPOSE:
  Every finding carries a structured evidence payload and a short stable
  identifier derived from it. The identifier is what makes two runs
  comparable: an issue that persists keeps its ID, a fixed issue's ID
  disappears, a new issue's ID appears.

IDENTITY CONTRACT:
  finding_id = hex(sha1(rule_code | k1=v1 | k2=v2 | ...))[:12]
  where the k=v pairs are the evidence primary_keys sorted by key name.
  For fixed inputs the ID is byte-identical across runs. If the evidence
  payload cannot be parsed, primary_keys degrades to empty - identity
  degrades in uniqueness but computation never fails the run.

SEE ALSO:
  - diff.go: classifies two runs' findings by ID
*/
package audit

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// EVIDENCE - Structured payload attached to every finding
// =============================================================================

// Evidence is serialized to JSON and stored on the finding. PrimaryKeys
// locates the offending record(s); Values holds the observations that fired
// the rule; Thresholds holds the parameters compared against.
type Evidence struct {
	Sources     []string          `json:"sources"`
	PrimaryKeys map[string]string `json:"primary_keys"`
	Values      map[string]any    `json:"values"`
	Thresholds  map[string]any    `json:"thresholds"`
	Explanation string            `json:"explanation"`
}

// Encode serializes the payload. Explanations carry comparison operators
// ("balance_units < 0"), so HTML escaping is off: the stored form keeps the
// literal characters. A serialization failure returns the empty string rather
// than an error: downstream identity computation degrades to the rule code
// alone and the run continues.
func (e Evidence) Encode() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}

// =============================================================================
// FINDING IDENTITY
// =============================================================================

// FindingID computes the deterministic identifier for a rule violation from
// the serialized evidence. The payload is parsed back rather than taken from
// a live struct so that a malformed payload degrades instead of diverging:
// unparseable evidence means empty primary keys, never a failure.
func FindingID(rule RuleCode, evidenceJSON string) string {
	primaryKeys := map[string]any{}
	if evidenceJSON != "" {
		var payload struct {
			PrimaryKeys map[string]any `json:"primary_keys"`
		}
		if err := json.Unmarshal([]byte(evidenceJSON), &payload); err == nil && payload.PrimaryKeys != nil {
			primaryKeys = payload.PrimaryKeys
		}
	}

	keys := make([]string, 0, len(primaryKeys))
	for k := range primaryKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	parts = append(parts, string(rule))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, primaryKeys[k]))
	}

	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:12]
}

// NewFinding assembles a finding with its evidence serialized and its
// identity computed. Rule packages call this; nothing else should mint
// finding IDs.
func NewFinding(rule RuleCode, severity Severity, employeeID, leaveType, asOfDate, message string, ev Evidence, nextAction string) Finding {
	encoded := ev.Encode()
	return Finding{
		EmployeeID: employeeID,
		LeaveType:  leaveType,
		AsOfDate:   asOfDate,
		RuleCode:   rule,
		Severity:   severity,
		Message:    message,
		Evidence:   encoded,
		FindingID:  FindingID(rule, encoded),
		NextAction: nextAction,
	}
}
