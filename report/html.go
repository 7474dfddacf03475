package report

import (
	"html"
	"os"
	"strings"

	"github.com/russross/blackfriday/v2"
)

// htmlShell wraps rendered report content in a self-contained styled
// page. Placeholders: __TITLE__ and __CONTENT__.
const htmlShell = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>__TITLE__</title>
  <style>
    /* Base layout */
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", system-ui, sans-serif;
      margin: 0;
      padding: 32px;
      background: #f3f4f6;
      color: #1f2933;
      line-height: 1.5;
      font-size: 11pt;
    }

    .report-container {
      max-width: 900px;
      margin: 0 auto;
      background: #ffffff;
      padding: 28px 32px;
      border-radius: 10px;
      box-shadow: 0 10px 25px rgba(15, 23, 42, 0.08);
    }

    /* Headings */
    h1, h2, h3 {
      margin-top: 1.6em;
      margin-bottom: 0.6em;
      font-weight: 600;
      color: #111827;
    }

    h1 {
      font-size: 20pt;
      margin-top: 0;
      border-bottom: 2px solid #e5e7eb;
      padding-bottom: 8px;
    }

    h2 {
      font-size: 14pt;
      border-bottom: 1px solid #e5e7eb;
      padding-bottom: 4px;
    }

    h3 {
      font-size: 12pt;
    }

    p {
      margin: 0.4em 0 0.9em 0;
    }

    ul, ol {
      margin: 0.4em 0 0.9em 1.2em;
    }

    /* Tables */
    table {
      border-collapse: collapse;
      width: 100%;
      margin: 1em 0 1.4em 0;
      font-size: 10pt;
    }

    th, td {
      border: 1px solid #e5e7eb;
      padding: 6px 8px;
      vertical-align: top;
    }

    th {
      background: #f9fafb;
      font-weight: 600;
    }

    /* Inline code / IDs */
    code {
      font-family: "JetBrains Mono", "Fira Code", Consolas, monospace;
      font-size: 90%;
      background: #f3f4f6;
      padding: 1px 3px;
      border-radius: 3px;
    }

    /* Blockquotes / disclaimer style */
    blockquote {
      margin: 0.8em 0 1.2em 0;
      padding: 0.6em 1em;
      border-left: 3px solid #d1d5db;
      color: #4b5563;
      background: #f9fafb;
    }

    hr {
      border: none;
      border-top: 1px solid #e5e7eb;
      margin: 1.6em 0;
    }

    /* Print tweaks */
    @media print {
      body {
        background: #ffffff;
        padding: 0;
      }
      .report-container {
        box-shadow: none;
        border-radius: 0;
        margin: 0;
        max-width: 100%;
      }
    }
  </style>
</head>
<body>
  <div class="report-container">
__CONTENT__
  </div>
</body>
</html>
`

// RenderHTML converts report Markdown into a styled standalone page.
// Tables in the Markdown become real table elements.
func RenderHTML(markdown []byte, pageTitle string) []byte {
	content := blackfriday.Run(markdown)
	page := strings.NewReplacer(
		"__TITLE__", html.EscapeString(pageTitle),
		"__CONTENT__", string(content),
	).Replace(htmlShell)
	return []byte(page)
}

// WriteHTML renders mdPath into a styled page at htmlPath.
func WriteHTML(mdPath, htmlPath, pageTitle string) error {
	md, err := os.ReadFile(mdPath)
	if err != nil {
		return err
	}
	return os.WriteFile(htmlPath, RenderHTML(md, pageTitle), 0o644)
}
