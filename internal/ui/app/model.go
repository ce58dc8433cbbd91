// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/coursechat-tui/internal/backend"
	"github.com/jeranaias/coursechat-tui/internal/config"
	"github.com/jeranaias/coursechat-tui/internal/course"
	"github.com/jeranaias/coursechat-tui/internal/render"
	"github.com/jeranaias/coursechat-tui/internal/session"
	"github.com/jeranaias/coursechat-tui/internal/ui/components"
	"github.com/jeranaias/coursechat-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// Focus identifies which part of the dashboard receives key presses.
type Focus int

const (
	FocusCourses Focus = iota
	FocusChat
	FocusUpload
)

// String returns the focus name.
func (f Focus) String() string {
	switch f {
	case FocusCourses:
		return "Courses"
	case FocusChat:
		return "Chat"
	case FocusUpload:
		return "Upload"
	default:
		return "Unknown"
	}
}

// Placeholder texts shown in empty inputs.
const (
	QuestionPlaceholder = "Ask a question about the course..."
	UploadPlaceholder   = "/path/to/lecture.mp4"
	UploadingText       = "Processing video..."
)

// =============================================================================
// MODEL
// =============================================================================

// Options configures a dashboard.
type Options struct {
	Backend backend.Backend
	Config  *config.Config
	Logger  *zap.Logger

	// Context bounds every backend request the dashboard issues.
	Context context.Context
}

// Model is the Bubble Tea model of the dashboard.
type Model struct {
	registry *course.Registry
	session  *session.Session
	toasts   *components.Toasts
	cache    *render.Cache
	theme    *styles.Theme
	cfg      *config.Config
	logger   *zap.Logger
	keys     KeyMap

	focus    Focus
	cursor   int
	showHelp bool
	quitting bool

	question textinput.Model
	path     textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model

	width  int
	height int

	transcript string

	// transcriptTurns tracks the turn count of the last viewport refresh so
	// new turns scroll the transcript to the bottom.
	transcriptTurns int
}

// New creates the dashboard. A nil Config uses defaults.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	toasts := components.NewToasts(cfg.NotifyDuration())
	cache := render.NewCache(0)
	delay, step := pace(cfg)

	registry := course.NewRegistry(opts.Backend, toasts,
		course.WithLogger(logger.Named("course")),
		course.WithContext(ctx))
	sess := session.New(opts.Backend,
		session.WithLogger(logger.Named("session")),
		session.WithCache(cache),
		session.WithPace(delay, step),
		session.WithContext(ctx))

	question := textinput.New()
	question.Placeholder = QuestionPlaceholder
	question.Prompt = "> "
	question.CharLimit = 4000

	path := textinput.New()
	path.Placeholder = UploadPlaceholder
	path.Prompt = "Video: "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		registry: registry,
		session:  sess,
		toasts:   toasts,
		cache:    cache,
		theme:    styles.NewTheme(cfg.UI.Theme),
		cfg:      cfg,
		logger:   logger,
		keys:     DefaultKeyMap(),
		focus:    FocusCourses,
		question: question,
		path:     path,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		help:     help.New(),
	}
	m.applyFormatter(0)
	return m
}

// pace converts the [reveal] section into controller settings. A disabled
// reveal shows answers at once.
func pace(cfg *config.Config) (time.Duration, int) {
	if !cfg.Reveal.Enabled {
		return cfg.FrameDelay(), -1
	}
	return cfg.FrameDelay(), cfg.Reveal.RunesPerFrame
}

// Init starts the initial course fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.registry.Init(), m.spinner.Tick)
}

// Registry returns the course view-model.
func (m Model) Registry() *course.Registry { return m.registry }

// Session returns the chat view-model.
func (m Model) Session() *session.Session { return m.session }

// Toasts returns the notification stack.
func (m Model) Toasts() *components.Toasts { return m.toasts }

// Focus returns the focused part of the dashboard.
func (m Model) Focus() Focus { return m.focus }

// Cursor returns the index of the highlighted course.
func (m Model) Cursor() int { return m.cursor }

// Quitting reports whether the dashboard is shutting down.
func (m Model) Quitting() bool { return m.quitting }

// =============================================================================
// LAYOUT
// =============================================================================

// Heights of the fixed rows around the panes. They must match view.go.
const (
	headerHeight    = 1
	statusBarHeight = 1
	paneBorder      = 2
	paneHPadding    = 2
	chatTitleHeight = 1
	inputAreaHeight = 2
)

const (
	minCoursePaneWidth = 24
	maxCoursePaneWidth = 40
	minChatWidth       = 20
)

func (m Model) coursePaneWidth() int {
	w := m.width / 3
	if w < minCoursePaneWidth {
		w = minCoursePaneWidth
	}
	if w > maxCoursePaneWidth {
		w = maxCoursePaneWidth
	}
	return w
}

func (m Model) chatPaneWidth() int {
	return max(m.width-m.coursePaneWidth(), minChatWidth+paneBorder+paneHPadding)
}

func (m Model) bodyHeight() int {
	return max(m.height-headerHeight-statusBarHeight, paneBorder+chatTitleHeight+inputAreaHeight+1)
}

// chatInnerWidth is the usable width inside the chat pane.
func (m Model) chatInnerWidth() int {
	return m.chatPaneWidth() - paneBorder - paneHPadding
}

// resize recomputes component sizes after a terminal resize.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	inner := m.chatInnerWidth()
	m.viewport.Width = inner
	m.viewport.Height = m.bodyHeight() - paneBorder - chatTitleHeight - inputAreaHeight
	m.question.Width = inner - len(m.question.Prompt) - 1
	m.path.Width = m.coursePaneWidth() - paneBorder - paneHPadding - len(m.path.Prompt) - 1

	m.applyFormatter(inner)
	m.refreshTranscript()
}

// applyFormatter installs a terminal formatter for the given pane width.
// A configured word_wrap takes precedence over the pane width.
func (m *Model) applyFormatter(paneWidth int) {
	width := paneWidth
	if m.cfg.UI.WordWrap > 0 {
		width = m.cfg.UI.WordWrap
	}
	if m.cfg.UI.Theme == "notty" {
		m.session.SetFormatter(render.PlainFormatter{})
		return
	}
	f, err := render.NewTerminalFormatter(m.cfg.UI.Theme, width)
	if err != nil {
		m.logger.Warn("terminal formatter unavailable, using plain text", zap.Error(err))
		m.session.SetFormatter(render.PlainFormatter{})
		return
	}
	m.session.SetFormatter(f)
}
