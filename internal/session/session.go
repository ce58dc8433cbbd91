// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/coursechat-tui/internal/backend"
	"github.com/jeranaias/coursechat-tui/internal/render"
	"github.com/jeranaias/coursechat-tui/internal/reveal"
	"github.com/jeranaias/coursechat-tui/internal/util"
)

const (
	// PendingReply is the assistant text of a turn awaiting its answer.
	PendingReply = "..."

	// ErrorReply replaces PendingReply when the request fails.
	ErrorReply = "Error: Failed to get response"
)

// =============================================================================
// MESSAGES
// =============================================================================

// requestToken identifies the turn a chat request was issued for.
type requestToken struct {
	courseID   string
	turn       int
	generation int
}

// AnswerMsg carries the outcome of a chat request back to the event loop.
type AnswerMsg struct {
	token    requestToken
	Response string
	Err      error
}

// =============================================================================
// SESSION
// =============================================================================

// Option customizes a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFormatter sets the formatter used to display answers. Defaults to
// render.PlainFormatter.
func WithFormatter(f render.Formatter) Option {
	return func(s *Session) {
		if f != nil {
			s.formatter = f
		}
	}
}

// WithCache shares a render cache between sessions.
func WithCache(c *render.Cache) Option {
	return func(s *Session) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithPace sets the reveal pacing. A step < 0 disables the animation; the
// reveal then completes on the first tick.
func WithPace(delay time.Duration, step int) Option {
	return func(s *Session) {
		s.reveal.SetPace(delay, step)
	}
}

// WithContext sets the parent context of chat requests.
func WithContext(ctx context.Context) Option {
	return func(s *Session) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}

// Session is the chat view-model for one selected course.
type Session struct {
	backend   backend.Backend
	logger    *zap.Logger
	formatter render.Formatter
	cache     *render.Cache
	reveal    *reveal.Controller
	ctx       context.Context

	course     backend.Course
	turns      []backend.ChatTurn
	pending    bool
	revealing  bool
	draft      string
	generation int
}

// New creates a session with no course selected.
func New(b backend.Backend, opts ...Option) *Session {
	s := &Session{
		backend:   b,
		logger:    zap.NewNop(),
		formatter: render.PlainFormatter{},
		cache:     render.NewCache(0),
		reveal:    reveal.NewController(reveal.DefaultDelay, reveal.DefaultStep),
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// STATE ACCESS
// =============================================================================

// Course returns the selected course; its ID is empty when none is selected.
func (s *Session) Course() backend.Course {
	return s.course
}

// HasCourse reports whether a course is selected.
func (s *Session) HasCourse() bool {
	return s.course.ID != ""
}

// Turns returns a copy of the transcript, including a pending turn.
func (s *Session) Turns() []backend.ChatTurn {
	return append([]backend.ChatTurn(nil), s.turns...)
}

// Completed returns the turns that have an answer, omitting a pending one.
func (s *Session) Completed() []backend.ChatTurn {
	n := len(s.turns)
	if s.pending {
		n--
	}
	return append([]backend.ChatTurn(nil), s.turns[:n]...)
}

// Pending reports whether a question is awaiting its answer.
func (s *Session) Pending() bool {
	return s.pending
}

// Revealing reports whether the newest answer is still being revealed.
func (s *Session) Revealing() bool {
	return s.revealing
}

// Draft returns the unsent input text.
func (s *Session) Draft() string {
	return s.draft
}

// SetDraft replaces the unsent input text.
func (s *Session) SetDraft(text string) {
	s.draft = text
}

// SetFormatter changes how answers are displayed, e.g. after a resize or a
// theme change. A reveal in progress keeps its already formatted text.
func (s *Session) SetFormatter(f render.Formatter) {
	if f != nil {
		s.formatter = f
	}
}

// SetPace changes the reveal pacing for subsequent answers.
func (s *Session) SetPace(delay time.Duration, step int) {
	s.reveal.SetPace(delay, step)
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Reset switches the session to course, discarding the transcript, the
// draft and any reveal. Answers to requests issued before the reset are
// dropped when they arrive. Pass the zero Course to clear the selection.
func (s *Session) Reset(course backend.Course) {
	s.generation++
	s.course = course
	s.turns = nil
	s.pending = false
	s.revealing = false
	s.draft = ""
	s.reveal.Cancel()
}

// SubmitDraft submits the current draft.
func (s *Session) SubmitDraft() tea.Cmd {
	return s.Submit(s.draft)
}

// Submit asks a question about the selected course. It does nothing and
// returns nil when the question is blank, no course is selected, or a
// previous question is still pending.
//
// Otherwise the question is appended with PendingReply, the draft is
// cleared, and the returned command performs the request.
func (s *Session) Submit(text string) tea.Cmd {
	if strings.TrimSpace(text) == "" || !s.HasCourse() || s.pending {
		return nil
	}

	history := s.Turns()
	if s.revealing {
		s.reveal.Cancel()
		s.revealing = false
	}
	s.turns = append(s.turns, backend.ChatTurn{User: text, Assistant: PendingReply})
	s.pending = true
	s.draft = ""

	token := requestToken{
		courseID:   s.course.ID,
		turn:       len(s.turns) - 1,
		generation: s.generation,
	}
	s.logger.Info("question submitted",
		zap.String("course_id", token.courseID),
		zap.Int("turn", token.turn),
		zap.String("question", util.TruncateRunes(text, 80)))

	b, ctx := s.backend, s.ctx
	return func() tea.Msg {
		resp, err := b.SendChatMessage(ctx, text, token.courseID, history)
		if err != nil {
			return AnswerMsg{token: token, Err: err}
		}
		return AnswerMsg{token: token, Response: resp.Response}
	}
}

// Update handles answers and reveal ticks. Other messages are ignored.
func (s *Session) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case AnswerMsg:
		return s.handleAnswer(msg)
	case reveal.TickMsg:
		cmd, done := s.reveal.Update(msg)
		if done {
			s.revealing = false
		}
		return cmd
	}
	return nil
}

func (s *Session) handleAnswer(msg AnswerMsg) tea.Cmd {
	if !s.accepts(msg.token) {
		s.logger.Debug("dropping stale answer",
			zap.String("course_id", msg.token.courseID),
			zap.Int("turn", msg.token.turn))
		return nil
	}

	last := &s.turns[len(s.turns)-1]
	if msg.Err != nil {
		s.logger.Warn("chat request failed",
			zap.String("course_id", msg.token.courseID),
			zap.Int("turn", msg.token.turn),
			zap.String("kind", backend.KindOf(msg.Err).String()),
			zap.Error(msg.Err))
		last.Assistant = ErrorReply
	} else {
		last.Assistant = msg.Response
	}
	s.pending = false
	s.revealing = true

	return s.reveal.Start(s.format(last.Assistant))
}

// accepts reports whether token belongs to the pending turn of the current
// transcript.
func (s *Session) accepts(token requestToken) bool {
	return s.pending &&
		token.generation == s.generation &&
		token.courseID == s.course.ID &&
		token.turn == len(s.turns)-1
}

// =============================================================================
// DISPLAY
// =============================================================================

// AnswerView returns the assistant text of turn i as it should be shown:
// the current reveal frame for the newest answer while it is revealing,
// the placeholder for a pending turn, and the fully formatted answer
// otherwise.
func (s *Session) AnswerView(i int) string {
	if i < 0 || i >= len(s.turns) {
		return ""
	}
	last := i == len(s.turns)-1
	switch {
	case last && s.pending:
		return PendingReply
	case last && s.revealing:
		return s.reveal.Frame()
	default:
		return s.format(s.turns[i].Assistant)
	}
}

// QuestionView returns the sanitized question of turn i.
func (s *Session) QuestionView(i int) string {
	if i < 0 || i >= len(s.turns) {
		return ""
	}
	return render.Sanitize(s.turns[i].User)
}

func (s *Session) format(text string) string {
	out, err := s.cache.Render(s.formatter, text)
	if err != nil {
		s.logger.Warn("formatting answer failed", zap.String("formatter", s.formatter.Name()), zap.Error(err))
		return render.Sanitize(text)
	}
	return out
}
