package report

import (
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders report Markdown into an A4 PDF at path. The renderer
// understands the subset of Markdown the builders in this package emit:
// headings, bullet and numbered lists, pipe tables, blockquotes,
// horizontal rules and plain paragraphs. Inline emphasis markers are
// stripped rather than styled.
func WritePDF(markdown, path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 16, 18)
	pdf.SetAutoPageBreak(true, 16)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	body := func() { pdf.SetFont("Helvetica", "", 10.5) }
	body()

	for _, raw := range strings.Split(markdown, "\n") {
		line := strings.TrimRight(raw, " ")
		switch {
		case line == "":
			pdf.Ln(2)

		case strings.HasPrefix(line, "### "):
			pdf.SetFont("Helvetica", "B", 11.5)
			pdf.MultiCell(0, 6, tr(plainText(line[4:])), "", "L", false)
			body()

		case strings.HasPrefix(line, "## "):
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", 13)
			pdf.MultiCell(0, 7, tr(plainText(line[3:])), "", "L", false)
			pdf.Ln(1)
			body()

		case strings.HasPrefix(line, "# "):
			pdf.SetFont("Helvetica", "B", 16)
			pdf.MultiCell(0, 9, tr(plainText(line[2:])), "", "L", false)
			pdf.Ln(2)
			body()

		case isHorizontalRule(line):
			y := pdf.GetY() + 2
			pdf.SetDrawColor(229, 231, 235)
			pdf.Line(18, y, 192, y)
			pdf.Ln(5)

		case strings.HasPrefix(line, "> "):
			pdf.SetFont("Helvetica", "I", 10)
			pdf.SetTextColor(75, 85, 99)
			pdf.MultiCell(0, 5, tr(plainText(line[2:])), "", "L", false)
			pdf.SetTextColor(31, 41, 51)
			body()

		case strings.HasPrefix(line, "|"):
			if isTableSeparator(line) {
				continue
			}
			pdf.SetFont("Courier", "", 8.5)
			pdf.MultiCell(0, 4.5, tr(plainText(tableRowText(line))), "", "L", false)
			body()

		default:
			pdf.MultiCell(0, 5, tr(plainText(bulletText(line))), "", "L", false)
		}
	}
	return pdf.OutputFileAndClose(path)
}

// plainText strips the inline Markdown the PDF does not style.
func plainText(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "`", "")
	s = strings.ReplaceAll(s, "→", "->")
	if strings.HasPrefix(s, "_") && strings.HasSuffix(s, "_") && len(s) > 1 {
		s = s[1 : len(s)-1]
	}
	return s
}

// bulletText swaps a leading list dash for a bullet glyph, keeping any
// indent so nested items still read as nested.
func bulletText(s string) string {
	trimmed := strings.TrimLeft(s, " ")
	if !strings.HasPrefix(trimmed, "- ") {
		return s
	}
	indent := s[:len(s)-len(trimmed)]
	return indent + "• " + trimmed[2:]
}

func isHorizontalRule(line string) bool {
	if len(line) < 3 {
		return false
	}
	return strings.Trim(line, "-") == ""
}

func isTableSeparator(line string) bool {
	return strings.Trim(line, "|:- ") == ""
}

func tableRowText(line string) string {
	cells := strings.Split(strings.Trim(line, "|"), "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return strings.Join(cells, " | ")
}
