// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/coursechat-tui/internal/ui/styles"
	"github.com/jeranaias/coursechat-tui/internal/util"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	ToastKindInfo ToastKind = iota
	ToastKindSuccess
	ToastKindError
)

// DefaultToastDuration is used when no lifetime is configured.
const DefaultToastDuration = 5 * time.Second

// maxToasts is the number of toasts kept on screen at once.
const maxToasts = 4

// toastTickInterval is how often expired toasts are pruned.
const toastTickInterval = 100 * time.Millisecond

// Toast is a single notification.
type Toast struct {
	ID        int
	Kind      ToastKind
	Title     string
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// Expired reports whether the toast should be dismissed at now.
func (t Toast) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// Remaining returns the time left before auto-dismiss.
func (t Toast) Remaining(now time.Time) time.Duration {
	remaining := t.Duration - now.Sub(t.CreatedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// =============================================================================
// TOAST STACK
// =============================================================================

// Toasts holds the visible notifications, newest first. It is only touched
// from the Bubble Tea event loop.
type Toasts struct {
	items    []Toast
	nextID   int
	duration time.Duration
	now      func() time.Time
	ticking  bool
}

// NewToasts creates an empty stack whose toasts live for duration.
func NewToasts(duration time.Duration) *Toasts {
	if duration <= 0 {
		duration = DefaultToastDuration
	}
	return &Toasts{nextID: 1, duration: duration, now: time.Now}
}

// SetDuration changes the lifetime of toasts added from now on.
func (m *Toasts) SetDuration(d time.Duration) {
	if d > 0 {
		m.duration = d
	}
}

// Duration returns the lifetime given to new toasts.
func (m *Toasts) Duration() time.Duration { return m.duration }

// Success adds a success toast.
func (m *Toasts) Success(title, message string) {
	m.add(ToastKindSuccess, title, message)
}

// Error adds an error toast. Errors stay twice as long as other toasts.
func (m *Toasts) Error(title, message string) {
	m.add(ToastKindError, title, message)
}

// Info adds an informational toast.
func (m *Toasts) Info(title, message string) {
	m.add(ToastKindInfo, title, message)
}

func (m *Toasts) add(kind ToastKind, title, message string) {
	d := m.duration
	if kind == ToastKindError {
		d *= 2
	}
	toast := Toast{
		ID:        m.nextID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: m.now(),
		Duration:  d,
	}
	m.nextID++

	m.items = append([]Toast{toast}, m.items...)
	if len(m.items) > maxToasts {
		m.items = m.items[:maxToasts]
	}
}

// Dismiss removes the newest toast.
func (m *Toasts) Dismiss() {
	if len(m.items) > 0 {
		m.items = m.items[1:]
	}
}

// Items returns a copy of the visible toasts, newest first.
func (m *Toasts) Items() []Toast {
	out := make([]Toast, len(m.items))
	copy(out, m.items)
	return out
}

// Len returns the number of visible toasts.
func (m *Toasts) Len() int { return len(m.items) }

// =============================================================================
// TICKING
// =============================================================================

// ToastTickMsg is sent periodically while toasts are visible.
type ToastTickMsg struct {
	Time time.Time
}

// Watch starts the tick loop if toasts are visible and no loop is running.
// Call it after anything that may have added a toast.
func (m *Toasts) Watch() tea.Cmd {
	if m.ticking || len(m.items) == 0 {
		return nil
	}
	m.ticking = true
	return toastTick()
}

// Tick prunes expired toasts and keeps ticking while any remain.
func (m *Toasts) Tick(now time.Time) tea.Cmd {
	active := m.items[:0]
	for _, t := range m.items {
		if !t.Expired(now) {
			active = append(active, t)
		}
	}
	m.items = active

	if len(m.items) == 0 {
		m.ticking = false
		return nil
	}
	return toastTick()
}

func toastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// RENDERING
// =============================================================================

// RenderToast renders a single toast no wider than width.
func RenderToast(theme *styles.Theme, toast Toast, width int) string {
	maxWidth := 50
	if width > 0 && width-4 < maxWidth {
		maxWidth = width - 4
	}
	if maxWidth < 20 {
		maxWidth = 20
	}

	var titleStyle lipgloss.Style
	var border lipgloss.AdaptiveColor
	var icon string
	switch toast.Kind {
	case ToastKindError:
		titleStyle, border, icon = theme.ErrorStyle, styles.Rose, styles.StatusIndicators.Error
	case ToastKindSuccess:
		titleStyle, border, icon = theme.SuccessStyle, styles.Emerald, styles.StatusIndicators.Success
	default:
		titleStyle, border, icon = theme.InfoStyle, styles.Cyan, styles.StatusIndicators.Info
	}

	inner := maxWidth - 4
	content := titleStyle.Render(util.TruncateWidth(icon+" "+toast.Title, inner))
	if toast.Message != "" {
		content += "\n" + lipgloss.NewStyle().Width(inner).Render(toast.Message)
	}
	if secs := int(toast.Remaining(time.Now()).Seconds()); secs > 0 {
		content += "\n" + theme.ShortcutDesc.Render("[x] dismiss  "+strconv.Itoa(secs)+"s")
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		MaxWidth(maxWidth)
	if theme.Mode == "notty" {
		box = box.BorderStyle(lipgloss.NormalBorder()).UnsetBorderForeground()
	}
	return box.Render(content)
}

// View renders the stack, newest at the bottom, right-aligned.
func (m *Toasts) View(theme *styles.Theme, width int) string {
	if len(m.items) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(m.items))
	for i := len(m.items) - 1; i >= 0; i-- {
		rendered = append(rendered, RenderToast(theme, m.items[i], width))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
	}
	return stack
}
