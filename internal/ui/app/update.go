// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/coursechat-tui/internal/backend"
	"github.com/jeranaias/coursechat-tui/internal/course"
	"github.com/jeranaias/coursechat-tui/internal/reveal"
	"github.com/jeranaias/coursechat-tui/internal/session"
	"github.com/jeranaias/coursechat-tui/internal/ui/components"
	"github.com/jeranaias/coursechat-tui/internal/ui/styles"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all messages for the dashboard.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case course.ListMsg, course.UploadMsg, course.DeleteMsg:
		cmd := m.registry.Update(msg)
		m.syncSelection()
		m.clampCursor()
		return m, tea.Batch(cmd, m.toasts.Watch())

	case session.AnswerMsg, reveal.TickMsg:
		cmd := m.session.Update(msg)
		m.refreshTranscript()
		return m, cmd

	case components.ToastTickMsg:
		return m, m.toasts.Tick(msg.Time)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ConfigReloadedMsg:
		m.applyConfig(msg)
		return m, m.toasts.Watch()
	}

	return m, nil
}

// syncSelection makes the chat session follow the registry selection. It
// runs after every registry update so a deleted or vanished course never
// leaves a live session behind.
func (m *Model) syncSelection() {
	selected, ok := m.registry.Selected()
	switch {
	case !ok && m.session.HasCourse():
		m.session.Reset(backend.Course{})
	case ok && selected.ID != m.session.Course().ID:
		m.session.Reset(selected)
	default:
		return
	}
	m.question.Reset()
	if !ok && m.focus == FocusChat {
		m.focus = FocusCourses
		m.question.Blur()
	}
	m.refreshTranscript()
}

func (m *Model) clampCursor() {
	n := len(m.registry.Courses())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// applyConfig applies the hot-reloadable sections of a reloaded config.
func (m *Model) applyConfig(msg ConfigReloadedMsg) {
	if msg.Err != nil {
		m.logger.Warn("config reload rejected", zap.Error(msg.Err))
		m.toasts.Error("Config Not Reloaded", msg.Err.Error())
		return
	}

	cfg := *m.cfg
	cfg.Reveal = msg.Config.Reveal
	cfg.UI = msg.Config.UI
	m.cfg = &cfg

	delay, step := pace(m.cfg)
	m.session.SetPace(delay, step)
	m.toasts.SetDuration(m.cfg.NotifyDuration())
	m.theme = styles.NewTheme(m.cfg.UI.Theme)
	m.cache.Flush()
	m.applyFormatter(m.chatInnerWidth())
	m.refreshTranscript()

	m.logger.Info("config reloaded",
		zap.Bool("reveal", m.cfg.Reveal.Enabled),
		zap.String("theme", m.cfg.UI.Theme))
	m.toasts.Info("Config Reloaded", "Reveal and display settings updated")
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	if _, ok := m.registry.Confirming(); ok {
		return m.handleConfirmKey(msg)
	}

	switch m.focus {
	case FocusUpload:
		return m.handleUploadKey(msg)
	case FocusChat:
		return m.handleChatKey(msg)
	default:
		return m.handleCoursesKey(msg)
	}
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		cmd := m.registry.ConfirmDelete()
		return m, cmd
	case key.Matches(msg, m.keys.Cancel):
		m.registry.CancelDelete()
	}
	return m, nil
}

func (m Model) handleCoursesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	courses := m.registry.Courses()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(courses)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Select):
		if m.cursor >= len(courses) {
			return m, nil
		}
		m.registry.Select(courses[m.cursor].ID)
		m.syncSelection()
		return m, m.focusChat()

	case key.Matches(msg, m.keys.SwitchPane):
		if m.session.HasCourse() {
			return m, m.focusChat()
		}

	case key.Matches(msg, m.keys.Upload):
		if m.registry.Uploading() {
			return m, nil
		}
		m.focus = FocusUpload
		m.path.Reset()
		return m, m.path.Focus()

	case key.Matches(msg, m.keys.Delete):
		if m.cursor < len(courses) {
			m.registry.RequestDelete(courses[m.cursor].ID)
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.registry.Refresh()

	case key.Matches(msg, m.keys.DismissToast):
		m.toasts.Dismiss()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Model) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.focus = FocusCourses
		m.path.Blur()
		return m, nil
	case tea.KeyEnter:
		cmd := m.registry.Upload(m.path.Value())
		m.focus = FocusCourses
		m.path.Blur()
		return m, tea.Batch(cmd, m.toasts.Watch())
	}

	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc, key.Matches(msg, m.keys.SwitchPane):
		m.focus = FocusCourses
		m.question.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		m.session.SetDraft(m.question.Value())
		cmd := m.session.SubmitDraft()
		m.question.SetValue(m.session.Draft())
		m.refreshTranscript()
		return m, cmd

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.question, cmd = m.question.Update(msg)
	m.session.SetDraft(m.question.Value())
	return m, cmd
}

func (m *Model) focusChat() tea.Cmd {
	if !m.session.HasCourse() {
		return nil
	}
	m.focus = FocusChat
	m.question.SetValue(m.session.Draft())
	return tea.Batch(m.question.Focus(), textinput.Blink)
}
