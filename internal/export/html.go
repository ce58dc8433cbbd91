// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/coursechat-tui/internal/render"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports transcripts to a standalone HTML page with embedded
// CSS. Answers go through render.HTMLFormatter.
type HTMLExporter struct {
	options   *Options
	formatter *render.HTMLFormatter
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{
		options:   opts,
		formatter: render.NewHTMLFormatter(opts.CodeStyle),
	}
}

// Export converts a transcript to HTML.
func (e *HTMLExporter) Export(t *Transcript) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}
	title := html.EscapeString(t.Title())

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", title)
	sb.WriteString("    <meta name=\"generator\" content=\"coursechat\">\n")
	fmt.Fprintf(&sb, "    <meta name=\"date\" content=\"%s\">\n", t.ExportedAt.Format(time.RFC3339))
	sb.WriteString(css)
	sb.WriteString("</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s-theme\">\n", theme)
	sb.WriteString("    <div class=\"container\">\n")

	sb.WriteString("        <header class=\"header\">\n")
	fmt.Fprintf(&sb, "            <h1>%s</h1>\n", title)
	if e.options.IncludeMetadata {
		sb.WriteString("            <div class=\"metadata\">\n")
		fmt.Fprintf(&sb, "                <span class=\"meta-item\"><strong>Course:</strong> %s</span>\n", html.EscapeString(t.CourseID))
		fmt.Fprintf(&sb, "                <span class=\"meta-item\"><strong>Questions:</strong> %d</span>\n", len(t.Turns))
		sb.WriteString("            </div>\n")
	}
	sb.WriteString("        </header>\n")

	sb.WriteString("        <main class=\"conversation\">\n")
	for i, turn := range t.Turns {
		answer, err := render.Render(e.formatter, turn.Assistant)
		if err != nil {
			return nil, fmt.Errorf("render answer %d: %w", i+1, err)
		}
		question := strings.ReplaceAll(html.EscapeString(render.Sanitize(turn.User)), "\n", "<br>\n")

		sb.WriteString("            <div class=\"turn\">\n")
		fmt.Fprintf(&sb, "                <div class=\"message user-message\"><span class=\"role-label\">You</span><p>%s</p></div>\n", question)
		fmt.Fprintf(&sb, "                <div class=\"message assistant-message\"><span class=\"role-label\">Answer</span>\n%s\n                </div>\n", answer)
		sb.WriteString("            </div>\n")
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	fmt.Fprintf(&sb, "            <p>Exported from <strong>coursechat</strong> on %s</p>\n",
		t.ExportedAt.Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

const css = `    <style>
        :root { --radius: 8px; }
        .dark-theme { --bg: #1e1e2e; --surface: #313244; --text: #cdd6f4; --muted: #a6adc8; --user: #1d4ed8; --accent: #a78bfa; }
        .light-theme { --bg: #ffffff; --surface: #f5f3ff; --text: #1f2937; --muted: #6b7280; --user: #dbeafe; --accent: #7c3aed; }
        body { margin: 0; background: var(--bg); color: var(--text); font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; line-height: 1.6; }
        .container { max-width: 860px; margin: 0 auto; padding: 2rem 1rem; }
        .header h1 { color: var(--accent); margin-bottom: 0.25rem; }
        .metadata { color: var(--muted); font-size: 0.9rem; display: flex; gap: 1.5rem; }
        .turn { margin: 1.5rem 0; }
        .message { padding: 0.75rem 1rem; border-radius: var(--radius); margin: 0.5rem 0; }
        .user-message { background: var(--user); }
        .assistant-message { background: var(--surface); }
        .role-label { font-weight: 600; font-size: 0.8rem; text-transform: uppercase; color: var(--muted); }
        pre { padding: 0.75rem; border-radius: var(--radius); overflow-x: auto; }
        code { font-family: "JetBrains Mono", Menlo, Consolas, monospace; font-size: 0.9em; }
        table { border-collapse: collapse; }
        th, td { border: 1px solid var(--muted); padding: 0.25rem 0.5rem; }
        .footer { color: var(--muted); font-size: 0.8rem; text-align: center; margin-top: 3rem; }
    </style>
`
