// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/coursechat-tui/internal/render"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown. Answers are already
// markdown and are kept as such after sanitizing.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a transcript to Markdown.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", escapeYAML(t.Title()))
		fmt.Fprintf(&sb, "course_id: %s\n", escapeYAML(t.CourseID))
		fmt.Fprintf(&sb, "exported: %s\n", t.ExportedAt.Format(time.RFC3339))
		fmt.Fprintf(&sb, "turns: %d\n", len(t.Turns))
		sb.WriteString("generator: coursechat\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(t.Title()))

	for i, turn := range t.Turns {
		fmt.Fprintf(&sb, "## Question %d\n\n", i+1)
		sb.WriteString(quote(render.Sanitize(turn.User)))
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimSpace(render.Sanitize(turn.Assistant)))
		sb.WriteString("\n\n")
		if i < len(t.Turns)-1 {
			sb.WriteString("---\n\n")
		}
	}

	fmt.Fprintf(&sb, "*Exported from coursechat on %s*\n", formatTimestamp(t.ExportedAt))
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// quote renders s as a markdown blockquote.
func quote(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}

// escapeMarkdown escapes characters that would start markdown syntax in a
// heading.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		"*", `\*`,
		"_", `\_`,
		"`", "\\`",
		"#", `\#`,
		"[", `\[`,
		"]", `\]`,
	)
	return replacer.Replace(s)
}

// escapeYAML quotes s when it contains characters YAML would interpret.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#'\"\n[]{}&*!|>%@`") || strings.TrimSpace(s) != s {
		return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s) + `"`
	}
	return s
}
