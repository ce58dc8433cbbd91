// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// Formatter converts sanitized markdown into displayable text.
type Formatter interface {
	// Name identifies the formatter and its settings. Two formatters with
	// the same name must produce the same output for the same input.
	Name() string

	Format(markdown string) (string, error)
}

// Render sanitizes raw and formats it with f.
func Render(f Formatter, raw string) (string, error) {
	return f.Format(Sanitize(raw))
}

// =============================================================================
// PLAIN
// =============================================================================

// PlainFormatter returns its input unchanged. Used when output is not a
// terminal.
type PlainFormatter struct{}

func (PlainFormatter) Name() string { return "plain" }

func (PlainFormatter) Format(markdown string) (string, error) {
	return markdown, nil
}

// =============================================================================
// TERMINAL
// =============================================================================

// TerminalFormatter renders markdown with glamour for ANSI terminals.
type TerminalFormatter struct {
	renderer *glamour.TermRenderer
	style    string
	width    int
}

// NewTerminalFormatter creates a formatter for the given theme ("auto",
// "dark", "light" or "notty") and wrap width. A width <= 0 disables
// wrapping.
func NewTerminalFormatter(theme string, width int) (*TerminalFormatter, error) {
	style := ResolveStyle(theme)
	if width < 0 {
		width = 0
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return &TerminalFormatter{renderer: r, style: style, width: width}, nil
}

// ResolveStyle maps a theme setting to a glamour standard style name.
// "auto" probes the terminal background through termenv.
func ResolveStyle(theme string) string {
	switch strings.ToLower(theme) {
	case "dark":
		return "dark"
	case "light":
		return "light"
	case "notty":
		return "notty"
	default:
		if !termenv.HasDarkBackground() {
			return "light"
		}
		return "dark"
	}
}

func (f *TerminalFormatter) Name() string {
	return fmt.Sprintf("terminal:%s:%d", f.style, f.width)
}

// Width returns the wrap width.
func (f *TerminalFormatter) Width() int {
	return f.width
}

// Format renders markdown. Glamour's leading and trailing blank lines are
// trimmed so callers control spacing.
func (f *TerminalFormatter) Format(markdown string) (string, error) {
	out, err := f.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.Trim(out, "\n"), nil
}
