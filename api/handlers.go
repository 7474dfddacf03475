/*
handlers.go - HTTP handlers for the audit results API

PURPOSE:
  Exposes the outputs of an audit run via a read-only REST API. Handlers
  load the CSV outputs on every request, so re-running the audit against
  the same output directory refreshes the API without a restart.

ENDPOINTS:
  Findings:
    GET /api/findings          List findings (filters: module, rule, severity, employee)
    GET /api/findings/{id}     Get one finding by its stable ID

  Aggregates:
    GET /api/summary           Per-module severity and rule counts
    GET /api/reconciliation    Ledger vs snapshot rows (?risk=true for flagged only)
    GET /api/exposure          Indicative LSL exposure estimate

  Misc:
    GET /api/health            Server status and output inventory

ARCHITECTURE:
  Handler holds the resolved output paths and a logger. There is no
  write path: the CLI produces the outputs, the API only serves them.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid query parameters
  - 404: Unknown finding ID
  - 500: Unreadable output files

SEE ALSO:
  - dto.go: Response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/warp/leave-audit/report"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Paths report.Paths
	Log   *logrus.Logger
}

// NewHandler creates a handler serving the given output directory.
func NewHandler(outDir string, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{Paths: report.NewPaths(outDir), Log: log}
}

// loadFindings reads the combined findings file, falling back to the
// per-module files when a run stopped before the reporting stage.
func (h *Handler) loadFindings() ([]report.Row, error) {
	rows, err := report.LoadCombined(h.Paths.CombinedFindings())
	if err != nil || len(rows) > 0 {
		return rows, err
	}

	leak, err := report.LoadFindings(h.Paths.LeakageFindings())
	if err != nil {
		return nil, err
	}
	for i := range leak {
		leak[i].SourceModule = report.ModuleLeakage
	}

	lslRows, err := report.LoadFindings(h.Paths.LSLFindings())
	if err != nil {
		return nil, err
	}
	for i := range lslRows {
		lslRows[i].SourceModule = report.ModuleLSL
	}

	return append(leak, lslRows...), nil
}

// =============================================================================
// FINDING ENDPOINTS
// =============================================================================

// ListFindings returns findings from the run outputs.
// GET /api/findings?module=&rule=&severity=&employee=
func (h *Handler) ListFindings(w http.ResponseWriter, r *http.Request) {
	rows, err := h.loadFindings()
	if err != nil {
		h.Log.WithError(err).Error("loading findings failed")
		writeError(w, http.StatusInternalServerError, "failed to load findings", err)
		return
	}

	q := r.URL.Query()
	module := strings.TrimSpace(q.Get("module"))
	rule := strings.ToUpper(strings.TrimSpace(q.Get("rule")))
	severity := strings.ToUpper(strings.TrimSpace(q.Get("severity")))
	employee := strings.TrimSpace(q.Get("employee"))

	dtos := make([]FindingDTO, 0, len(rows))
	for _, row := range rows {
		if module != "" && !strings.EqualFold(row.SourceModule, module) {
			continue
		}
		if rule != "" && strings.ToUpper(row.RuleCode) != rule {
			continue
		}
		if severity != "" && row.Severity != severity {
			continue
		}
		if employee != "" && row.EmployeeID != employee {
			continue
		}
		dtos = append(dtos, toFindingDTO(row))
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetFinding returns a single finding by its stable ID.
// GET /api/findings/{id}
func (h *Handler) GetFinding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rows, err := h.loadFindings()
	if err != nil {
		h.Log.WithError(err).Error("loading findings failed")
		writeError(w, http.StatusInternalServerError, "failed to load findings", err)
		return
	}

	for _, row := range rows {
		if row.FindingID != "" && strings.EqualFold(row.FindingID, id) {
			writeJSON(w, http.StatusOK, toFindingDTO(row))
			return
		}
	}

	writeError(w, http.StatusNotFound, "finding not found", nil)
}

// =============================================================================
// AGGREGATE ENDPOINTS
// =============================================================================

// GetSummary aggregates findings per module by severity and rule.
// GET /api/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.loadFindings()
	if err != nil {
		h.Log.WithError(err).Error("loading findings failed")
		writeError(w, http.StatusInternalServerError, "failed to load findings", err)
		return
	}

	byModule := make(map[string][]report.Row)
	for _, row := range rows {
		byModule[row.SourceModule] = append(byModule[row.SourceModule], row)
	}

	// Known modules first, anything else in name order after them.
	order := []string{report.ModuleLeakage, report.ModuleLSL}
	var extra []string
	for module := range byModule {
		if module != report.ModuleLeakage && module != report.ModuleLSL {
			extra = append(extra, module)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	summary := SummaryDTO{Modules: make([]ModuleSummaryDTO, 0, len(byModule))}
	for _, module := range order {
		moduleRows, ok := byModule[module]
		if !ok {
			continue
		}
		counts := report.CountsFromRows(moduleRows)
		m := ModuleSummaryDTO{
			Module:      module,
			DisplayName: report.ModuleDisplayName(module),
			High:        counts.High,
			Medium:      counts.Medium,
			Low:         counts.Low,
			Total:       counts.Total(),
			Rules:       make([]RuleCountDTO, 0),
		}
		for _, tally := range report.TopRules(moduleRows, len(moduleRows)) {
			m.Rules = append(m.Rules, RuleCountDTO{RuleCode: tally.Rule, Count: tally.Count})
		}
		summary.TotalFindings += m.Total
		summary.Modules = append(summary.Modules, m)
	}

	writeJSON(w, http.StatusOK, summary)
}

// GetReconciliation returns the ledger-vs-snapshot comparison.
// GET /api/reconciliation?risk=true
func (h *Handler) GetReconciliation(w http.ResponseWriter, r *http.Request) {
	riskOnly := false
	if raw := r.URL.Query().Get("risk"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid risk parameter", err)
			return
		}
		riskOnly = parsed
	}

	rows, err := report.LoadReconciliation(h.Paths.LeakageReport())
	if err != nil {
		h.Log.WithError(err).Error("loading reconciliation failed")
		writeError(w, http.StatusInternalServerError, "failed to load reconciliation", err)
		return
	}

	dtos := make([]ReconciliationRowDTO, 0, len(rows))
	for _, row := range rows {
		if riskOnly && !row.RiskFlag {
			continue
		}
		dtos = append(dtos, toReconciliationDTO(row))
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetExposure returns the indicative LSL exposure estimate.
// GET /api/exposure
func (h *Handler) GetExposure(w http.ResponseWriter, r *http.Request) {
	entries, err := report.LoadExposureSummary(h.Paths.LSLExposureSummary())
	if err != nil {
		h.Log.WithError(err).Error("loading exposure summary failed")
		writeError(w, http.StatusInternalServerError, "failed to load exposure summary", err)
		return
	}

	dtos := make([]ExposureEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, ExposureEntryDTO{Label: e.Label, Amount: e.Amount})
	}

	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// MISC ENDPOINTS
// =============================================================================

// Health reports server status and which run outputs exist yet.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	outputs := map[string]bool{
		"combined_findings": fileExists(h.Paths.CombinedFindings()),
		"reconciliation":    fileExists(h.Paths.LeakageReport()),
		"exposure_summary":  fileExists(h.Paths.LSLExposureSummary()),
		"findings_report":   fileExists(h.Paths.FindingsReportHTML()),
		"lsl_report":        fileExists(h.Paths.LSLReportHTML()),
		"overview":          fileExists(h.Paths.OverviewHTML()),
		"workbook":          fileExists(h.Paths.Workbook()),
	}
	writeJSON(w, http.StatusOK, HealthDTO{Status: "ok", OutDir: h.Paths.OutDir, Outputs: outputs})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
