package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/leave-audit/audit"
)

// findingColumns is the canonical column order of every findings CSV.
// The combined file appends source_module.
var findingColumns = []string{
	"employee_id", "leave_type", "as_of_date", "rule_code", "severity",
	"message", "diff_units", "evidence", "finding_id", "next_action",
}

// Row is one findings-CSV line in string form, after synonym resolution.
// Builders consume Rows so they work identically over freshly written
// files and over files produced by older runs with variant headers.
type Row struct {
	EmployeeID   string
	LeaveType    string
	AsOfDate     string
	RuleCode     string
	Severity     string
	Message      string
	DiffUnits    string
	Evidence     string
	FindingID    string
	NextAction   string
	SourceModule string
}

// Ordered header candidates, resolved once per file at load time.
var (
	ruleCodeSynonyms = []string{"rule_code", "rule_id"}
	messageSynonyms  = []string{"message", "description"}
)

// LoadFindings reads a findings CSV into Rows. A missing file reads as
// no findings. Severities are trimmed and upper-cased on the way in.
func LoadFindings(path string) ([]Row, error) {
	header, records, err := readCSV(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	col := columnIndex(header)
	ruleCol := resolve(col, ruleCodeSynonyms)
	messageCol := resolve(col, messageSynonyms)

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Row{
			EmployeeID:   field(rec, col.index("employee_id")),
			LeaveType:    field(rec, col.index("leave_type")),
			AsOfDate:     field(rec, col.index("as_of_date")),
			RuleCode:     field(rec, ruleCol),
			Severity:     strings.ToUpper(field(rec, col.index("severity"))),
			Message:      field(rec, messageCol),
			DiffUnits:    field(rec, col.index("diff_units")),
			Evidence:     rawField(rec, col.index("evidence")),
			FindingID:    field(rec, col.index("finding_id")),
			NextAction:   field(rec, col.index("next_action")),
			SourceModule: field(rec, col.index("source_module")),
		})
	}
	return rows, nil
}

// WriteFindings writes module findings in the canonical column order.
func WriteFindings(path string, findings []audit.Finding) error {
	records := make([][]string, 0, len(findings))
	for _, f := range findings {
		records = append(records, findingRecord(f))
	}
	return writeCSV(path, findingColumns, records)
}

func findingRecord(f audit.Finding) []string {
	diff := ""
	if f.DiffUnits.Valid {
		diff = f.DiffUnits.Decimal.String()
	}
	return []string{
		f.EmployeeID, f.LeaveType, f.AsOfDate, string(f.RuleCode),
		string(f.Severity), f.Message, diff, f.Evidence, f.FindingID,
		f.NextAction,
	}
}

func (r Row) record() []string {
	return []string{
		r.EmployeeID, r.LeaveType, r.AsOfDate, r.RuleCode, r.Severity,
		r.Message, r.DiffUnits, r.Evidence, r.FindingID, r.NextAction,
		r.SourceModule,
	}
}

// Finding converts a loaded row back into the engine's finding type.
// A blank or malformed diff cell reads as no diff.
func (r Row) Finding() audit.Finding {
	f := audit.Finding{
		EmployeeID: r.EmployeeID,
		LeaveType:  r.LeaveType,
		AsOfDate:   r.AsOfDate,
		RuleCode:   audit.RuleCode(r.RuleCode),
		Severity:   audit.Severity(r.Severity),
		Message:    r.Message,
		Evidence:   r.Evidence,
		FindingID:  r.FindingID,
		NextAction: r.NextAction,
	}
	if r.DiffUnits != "" {
		if d, err := decimal.NewFromString(r.DiffUnits); err == nil {
			f.DiffUnits = decimal.NewNullDecimal(d)
		}
	}
	return f
}

// =============================================================================
// CSV plumbing
// =============================================================================

func readCSV(path string) (header []string, records [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	header = all[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	return header, all[1:], nil
}

func writeCSV(path string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// columns maps header names to positions; absent names resolve to -1.
type columns map[string]int

func columnIndex(header []string) columns {
	col := make(columns, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	return col
}

func (c columns) index(name string) int {
	if i, ok := c[name]; ok {
		return i
	}
	return -1
}

// resolve walks the ordered candidates and returns the first present
// column, or -1 when none match.
func resolve(col columns, candidates []string) int {
	for _, name := range candidates {
		if i, ok := col[name]; ok {
			return i
		}
	}
	return -1
}

func field(rec []string, i int) string {
	return strings.TrimSpace(rawField(rec, i))
}

// rawField keeps leading/trailing whitespace; evidence payloads stay
// byte-exact.
func rawField(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}
