/*
dto.go - JSON shapes for the read-only results API

PURPOSE:
  Defines the JSON structures returned to API clients. These types
  decouple the CSV output contract from the HTTP contract, so output
  columns can evolve without breaking clients.

NAMING CONVENTION:
  - *DTO: Response types returned to clients

TYPES:
  Findings:
    FindingDTO

  Aggregates:
    SummaryDTO, ModuleSummaryDTO, RuleCountDTO

  Reconciliation:
    ReconciliationRowDTO

  Exposure:
    ExposureEntryDTO

  Misc:
    HealthDTO, ErrorResponse

SEE ALSO:
  - handlers.go: Builds these from the run outputs
  - server.go: Route wiring
*/
package api

import (
	"encoding/json"

	"github.com/warp/leave-audit/audit"
	"github.com/warp/leave-audit/report"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// FindingDTO represents one finding in API responses. Evidence passes
// through as raw JSON when it parses, so clients receive the original
// object rather than a double-encoded string.
type FindingDTO struct {
	Module     string          `json:"module"`
	EmployeeID string          `json:"employee_id"`
	LeaveType  string          `json:"leave_type"`
	AsOfDate   string          `json:"as_of_date"`
	RuleCode   string          `json:"rule_code"`
	Severity   string          `json:"severity"`
	Message    string          `json:"message"`
	DiffUnits  string          `json:"diff_units,omitempty"`
	Evidence   json.RawMessage `json:"evidence,omitempty"`
	FindingID  string          `json:"finding_id"`
	NextAction string          `json:"next_action,omitempty"`
}

// RuleCountDTO is one rule's finding count within a module.
type RuleCountDTO struct {
	RuleCode string `json:"rule_code"`
	Count    int    `json:"count"`
}

// ModuleSummaryDTO aggregates one module's findings by severity and rule.
type ModuleSummaryDTO struct {
	Module      string         `json:"module"`
	DisplayName string         `json:"display_name"`
	High        int            `json:"high"`
	Medium      int            `json:"medium"`
	Low         int            `json:"low"`
	Total       int            `json:"total"`
	Rules       []RuleCountDTO `json:"rules"`
}

// SummaryDTO is the /api/summary response.
type SummaryDTO struct {
	TotalFindings int                `json:"total_findings"`
	Modules       []ModuleSummaryDTO `json:"modules"`
}

// ReconciliationRowDTO is one ledger-vs-snapshot comparison row. Unit
// columns stay as strings so trailing precision survives intact.
type ReconciliationRowDTO struct {
	EmployeeID         string `json:"employee_id"`
	LeaveType          string `json:"leave_type"`
	AsOfDate           string `json:"as_of_date"`
	BalanceUnits       string `json:"balance_units"`
	LedgerBalanceUnits string `json:"ledger_balance_units"`
	DiffUnits          string `json:"diff_units"`
	RiskFlag           bool   `json:"risk_flag"`
	RiskReason         string `json:"risk_reason,omitempty"`
}

// ExposureEntryDTO is one row of the indicative LSL exposure estimate.
type ExposureEntryDTO struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// HealthDTO reports server status and which run outputs exist yet.
type HealthDTO struct {
	Status  string          `json:"status"`
	OutDir  string          `json:"out_dir"`
	Outputs map[string]bool `json:"outputs"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

// toFindingDTO maps a findings-CSV row onto the API shape.
func toFindingDTO(row report.Row) FindingDTO {
	dto := FindingDTO{
		Module:     row.SourceModule,
		EmployeeID: row.EmployeeID,
		LeaveType:  row.LeaveType,
		AsOfDate:   row.AsOfDate,
		RuleCode:   row.RuleCode,
		Severity:   row.Severity,
		Message:    row.Message,
		DiffUnits:  row.DiffUnits,
		FindingID:  row.FindingID,
		NextAction: row.NextAction,
	}
	switch {
	case row.Evidence == "":
	case json.Valid([]byte(row.Evidence)):
		dto.Evidence = json.RawMessage(row.Evidence)
	default:
		quoted, _ := json.Marshal(row.Evidence)
		dto.Evidence = quoted
	}
	return dto
}

// toReconciliationDTO maps an engine reconciliation row onto the API shape.
func toReconciliationDTO(row audit.ReconciliationRow) ReconciliationRowDTO {
	return ReconciliationRowDTO{
		EmployeeID:         row.EmployeeID,
		LeaveType:          row.LeaveType,
		AsOfDate:           row.AsOfDate.String(),
		BalanceUnits:       row.BalanceUnits.String(),
		LedgerBalanceUnits: row.LedgerBalanceUnits.String(),
		DiffUnits:          row.DiffUnits.String(),
		RiskFlag:           row.RiskFlag,
		RiskReason:         row.RiskReason,
	}
}
