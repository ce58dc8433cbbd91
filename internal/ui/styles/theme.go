// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components of the dashboard.
type Theme struct {
	Mode         string
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout
	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	PaneTitle   lipgloss.Style

	// Course list
	CourseItem     lipgloss.Style
	CourseSelected lipgloss.Style
	CourseDeleting lipgloss.Style
	EmptyHint      lipgloss.Style

	// Chat
	ChatHeader lipgloss.Style
	Question   lipgloss.Style
	Answer     lipgloss.Style
	Pending    lipgloss.Style

	// Dialogs and input
	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style
	InputPrompt lipgloss.Style
	Uploading   lipgloss.Style

	// Footer
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// Notifications
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	InfoStyle    lipgloss.Style
}

// NewTheme creates a theme for mode. "dark" and "light" force the
// background, "notty" drops all color, anything else detects the terminal.
func NewTheme(mode string) *Theme {
	t := &Theme{Mode: mode}

	switch mode {
	case "dark":
		t.IsDark = true
		t.ColorProfile = termenv.ColorProfile()
		lipgloss.SetHasDarkBackground(true)
	case "light":
		t.IsDark = false
		t.ColorProfile = termenv.ColorProfile()
		lipgloss.SetHasDarkBackground(false)
	case "notty":
		t.ColorProfile = termenv.Ascii
	default:
		t.IsDark = termenv.HasDarkBackground()
		t.ColorProfile = termenv.ColorProfile()
	}

	if t.ColorProfile == termenv.Ascii {
		t.initPlainStyles()
	} else {
		t.initStyles()
	}
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderBrand = lipgloss.NewStyle().Bold(true).Foreground(Purple)

	t.Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.PaneFocused = t.Pane.BorderForeground(Purple)
	t.PaneTitle = lipgloss.NewStyle().Bold(true).Foreground(Cyan)

	t.CourseItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.CourseSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		Background(SelectionBg)
	t.CourseDeleting = lipgloss.NewStyle().Foreground(TextMuted).Strikethrough(true)
	t.EmptyHint = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.ChatHeader = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.Question = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.Answer = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Pending = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.Dialog = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(1, 2)
	t.DialogTitle = lipgloss.NewStyle().Bold(true).Foreground(Rose)
	t.InputPrompt = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.Uploading = lipgloss.NewStyle().Foreground(Amber)

	t.StatusBar = lipgloss.NewStyle().Foreground(TextSecondary).Background(SurfaceDim)
	t.ShortcutKey = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)

	t.SuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(Emerald)
	t.ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(Rose)
	t.InfoStyle = lipgloss.NewStyle().Foreground(Cyan)
}

// initPlainStyles keeps borders and padding so the layout is unchanged.
func (t *Theme) initPlainStyles() {
	plain := lipgloss.NewStyle()
	t.Header = plain.Padding(0, 1)
	t.HeaderBrand = plain
	t.Pane = plain.BorderStyle(lipgloss.NormalBorder()).Padding(0, 1)
	t.PaneFocused = t.Pane
	t.PaneTitle = plain
	t.CourseItem = plain
	t.CourseSelected = plain.Reverse(true)
	t.CourseDeleting = plain
	t.EmptyHint = plain
	t.ChatHeader = plain
	t.Question = plain
	t.Answer = plain
	t.Pending = plain
	t.Dialog = plain.BorderStyle(lipgloss.NormalBorder()).Padding(1, 2)
	t.DialogTitle = plain
	t.InputPrompt = plain
	t.Uploading = plain
	t.StatusBar = plain
	t.ShortcutKey = plain
	t.ShortcutDesc = plain
	t.SuccessStyle = plain
	t.ErrorStyle = plain
	t.InfoStyle = plain
}

// RenderStatus renders a message with its indicator and status color.
func (t *Theme) RenderStatus(success bool, message string) string {
	if success {
		return t.SuccessStyle.Render(StatusIndicators.Success + " " + message)
	}
	return t.ErrorStyle.Render(StatusIndicators.Error + " " + message)
}
