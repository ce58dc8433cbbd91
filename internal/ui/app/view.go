// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/coursechat-tui/internal/course"
	"github.com/jeranaias/coursechat-tui/internal/session"
	"github.com/jeranaias/coursechat-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var body string
	if c, ok := m.registry.Confirming(); ok {
		body = m.placeInBody(m.renderConfirm(c.Name))
	} else if m.showHelp {
		body = m.placeInBody(m.renderHelp())
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderCourseColumn(), m.renderChatPane())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatusBar(),
	)
}

func (m Model) placeInBody(content string) string {
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, content)
}

// =============================================================================
// HEADER AND STATUS BAR
// =============================================================================

func (m Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("coursechat")
	api := m.theme.ShortcutDesc.Render(m.cfg.API.BaseURL)
	line := brand + "  " + api
	return m.theme.Header.Width(m.width).MaxHeight(headerHeight).Render(util.TruncateWidth(line, m.width-2))
}

func (m Model) renderStatusBar() string {
	var bindings []key.Binding
	switch {
	case m.isConfirming():
		bindings = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	case m.focus == FocusUpload:
		bindings = []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "upload")),
			m.keys.Cancel,
		}
	case m.focus == FocusChat:
		bindings = []key.Binding{m.keys.Submit, m.keys.PageUp, m.keys.PageDown, m.keys.SwitchPane}
	default:
		bindings = m.keys.ShortHelp()
	}

	var b strings.Builder
	for i, binding := range bindings {
		if i > 0 {
			b.WriteString("  ")
		}
		h := binding.Help()
		b.WriteString(m.theme.ShortcutKey.Render(h.Key))
		b.WriteString(" ")
		b.WriteString(m.theme.ShortcutDesc.Render(h.Desc))
	}
	return m.theme.StatusBar.Width(m.width).MaxHeight(statusBarHeight).Render(util.TruncateWidth(b.String(), m.width))
}

func (m Model) isConfirming() bool {
	_, ok := m.registry.Confirming()
	return ok
}

func (m Model) renderHelp() string {
	m.help.ShowAll = true
	m.help.Width = m.width - 8
	title := m.theme.PaneTitle.Render("Keys")
	return m.theme.Pane.Render(title + "\n\n" + m.help.View(m.keys))
}

func (m Model) renderConfirm(name string) string {
	width := min(m.width-4, 60)
	title := m.theme.DialogTitle.Render("Delete Course")
	prompt := lipgloss.NewStyle().Width(width - 6).Render(course.ConfirmPrompt(name))
	hint := m.theme.ShortcutKey.Render("y") + " " + m.theme.ShortcutDesc.Render("delete") + "   " +
		m.theme.ShortcutKey.Render("n") + " " + m.theme.ShortcutDesc.Render("cancel")
	return m.theme.Dialog.Render(title + "\n\n" + prompt + "\n\n" + hint)
}

// =============================================================================
// COURSE PANE
// =============================================================================

// renderCourseColumn renders the course pane with the toast stack below it.
func (m Model) renderCourseColumn() string {
	width := m.coursePaneWidth()
	toasts := m.toasts.View(m.theme, width)
	toastHeight := 0
	if toasts != "" {
		toastHeight = lipgloss.Height(toasts)
	}

	paneHeight := m.bodyHeight() - toastHeight
	if paneHeight < paneBorder+3 {
		// Too short for both; keep the pane.
		toasts = ""
		paneHeight = m.bodyHeight()
	}

	pane := m.renderCoursePane(width, paneHeight)
	if toasts == "" {
		return pane
	}
	return lipgloss.JoinVertical(lipgloss.Left, pane, toasts)
}

func (m Model) renderCoursePane(width, height int) string {
	innerW := width - paneBorder - paneHPadding
	innerH := height - paneBorder

	lines := []string{
		m.theme.PaneTitle.Render(util.TruncateWidth("Courses ("+strconv.Itoa(len(m.registry.Courses()))+")", innerW)),
		"",
	}

	footer := m.renderUploadArea(innerW)
	rows := innerH - len(lines)
	if footer != "" {
		rows -= 2
	}

	lines = append(lines, m.renderCourseList(innerW, rows)...)
	for len(lines) < innerH-2 && footer != "" {
		lines = append(lines, "")
	}
	if footer != "" {
		lines = append(lines, "", footer)
	}

	style := m.theme.Pane
	if m.focus != FocusChat {
		style = m.theme.PaneFocused
	}
	return style.
		Width(width - paneBorder).
		Height(innerH).
		MaxHeight(height).
		Render(strings.Join(lines, "\n"))
}

// renderCourseList renders at most rows entries, scrolled so the cursor is
// visible.
func (m Model) renderCourseList(width, rows int) []string {
	courses := m.registry.Courses()

	switch {
	case m.registry.Status() == course.StatusLoading && len(courses) == 0:
		return []string{m.theme.EmptyHint.Render(m.spinner.View() + " Loading courses...")}
	case m.registry.Status() == course.StatusError && len(courses) == 0:
		return []string{m.theme.ErrorStyle.Render(util.TruncateWidth("Could not load courses", width)),
			m.theme.EmptyHint.Render(util.TruncateWidth("Press r to retry", width))}
	case len(courses) == 0:
		return []string{m.theme.EmptyHint.Render(util.TruncateWidth("No courses yet. Press u to upload a video.", width))}
	}

	if rows < 1 {
		rows = 1
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(start+rows, len(courses))

	selected, _ := m.registry.Selected()
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		c := courses[i]
		marker := "  "
		if i == m.cursor && m.focus != FocusChat {
			marker = "> "
		}
		name := util.SingleLine(c.Name)
		if name == "" {
			name = c.ID
		}
		if m.registry.Deleting(c.ID) {
			name += " (deleting)"
		}
		label := util.PadRight(util.TruncateWidth(marker+name, width), width)

		switch {
		case m.registry.Deleting(c.ID):
			lines = append(lines, m.theme.CourseDeleting.Render(label))
		case c.ID == selected.ID:
			lines = append(lines, m.theme.CourseSelected.Render(label))
		default:
			lines = append(lines, m.theme.CourseItem.Render(label))
		}
	}
	return lines
}

func (m Model) renderUploadArea(width int) string {
	switch {
	case m.registry.Uploading():
		file := filepath.Base(m.registry.UploadFile())
		return m.theme.Uploading.Render(util.TruncateWidth(m.spinner.View()+" "+UploadingText+" "+file, width))
	case m.focus == FocusUpload:
		return m.path.View()
	}
	return ""
}

// =============================================================================
// CHAT PANE
// =============================================================================

func (m Model) renderChatPane() string {
	width := m.chatPaneWidth()
	innerW := m.chatInnerWidth()

	var title string
	if c := m.session.Course(); m.session.HasCourse() {
		title = m.theme.ChatHeader.Render(util.TruncateWidth("Chat about: "+util.SingleLine(c.Name), innerW))
	} else {
		title = m.theme.EmptyHint.Render(util.TruncateWidth("Select a course to start chatting", innerW))
	}

	var input, status string
	switch {
	case !m.session.HasCourse():
		input = ""
	default:
		input = m.question.View()
	}
	switch {
	case m.session.Pending():
		status = m.theme.Pending.Render(m.spinner.View() + " Waiting for the answer...")
	case m.session.Revealing():
		status = m.theme.Pending.Render("Answering...")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.viewport.View(),
		util.TruncateWidth(input, innerW),
		util.TruncateWidth(status, innerW),
	)

	style := m.theme.Pane
	if m.focus == FocusChat {
		style = m.theme.PaneFocused
	}
	return style.
		Width(width - paneBorder).
		Height(m.bodyHeight() - paneBorder).
		MaxHeight(m.bodyHeight()).
		Render(content)
}

// refreshTranscript rebuilds the viewport content from the session.
func (m *Model) refreshTranscript() {
	width := m.chatInnerWidth()
	wrap := lipgloss.NewStyle().Width(width)
	turns := m.session.Turns()

	var b strings.Builder
	if len(turns) == 0 && m.session.HasCourse() {
		b.WriteString(m.theme.EmptyHint.Render("No questions yet."))
	}
	for i := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(wrap.Render(m.theme.Question.Render("You: ") + m.session.QuestionView(i)))
		b.WriteString("\n")

		answer := m.session.AnswerView(i)
		if answer == session.PendingReply {
			b.WriteString(m.theme.Pending.Render(answer))
		} else {
			b.WriteString(wrap.Render(answer))
		}
	}

	follow := m.viewport.AtBottom() || len(turns) != m.transcriptTurns || m.session.Revealing()
	m.transcript = b.String()
	m.viewport.SetContent(m.transcript)
	if follow {
		m.viewport.GotoBottom()
	}
	m.transcriptTurns = len(turns)
}

// Transcript returns the full transcript as displayed, before scrolling.
func (m Model) Transcript() string {
	return m.transcript
}
