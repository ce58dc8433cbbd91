// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package course

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/jeranaias/coursechat-tui/internal/backend"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the state of the course list.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// Notifier receives user-facing notifications.
type Notifier interface {
	Success(title, message string)
	Error(title, message string)
}

// Notification titles and messages.
const (
	TitleFetchError    = "Fetching Courses"
	TitleDeleted       = "Course Deleted"
	TitleDeleteError   = "Error: Course Deleted"
	TitleUploaded      = "Course Uploaded"
	TitleUploadError   = "Error: Course Uploaded"
	TitleInvalidUpload = "Invalid File"

	MsgDeleted     = "The course has been successfully deleted."
	MsgDeleteError = "Failed to delete course. Please try again."
	MsgUploaded    = "The course has been successfully uploaded."
	MsgUploadError = "The course upload has been failed."
)

type nopNotifier struct{}

func (nopNotifier) Success(string, string) {}
func (nopNotifier) Error(string, string)   {}

// =============================================================================
// MESSAGES
// =============================================================================

// ListMsg carries the result of a course list fetch.
type ListMsg struct {
	seq     int
	Courses []backend.Course
	Err     error
}

// UploadMsg carries the result of an upload.
type UploadMsg struct {
	Course backend.Course
	Err    error
}

// DeleteMsg carries the result of a delete.
type DeleteMsg struct {
	CourseID string
	Err      error
}

// =============================================================================
// REGISTRY
// =============================================================================

// Option customizes a Registry.
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock replaces time.Now for course id generation.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithContext sets the parent context of backend requests.
func WithContext(ctx context.Context) Option {
	return func(r *Registry) {
		if ctx != nil {
			r.ctx = ctx
		}
	}
}

// Registry is the course list view-model.
type Registry struct {
	backend  backend.Backend
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	ctx      context.Context

	status   Status
	courses  []backend.Course
	selected string

	issuedSeq  int
	appliedSeq int

	uploading  bool
	uploadFile string

	confirmID string
	deleting  map[string]bool
}

// NewRegistry creates a registry. A nil notifier discards notifications.
func NewRegistry(b backend.Backend, notifier Notifier, opts ...Option) *Registry {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	r := &Registry{
		backend:  b,
		notifier: notifier,
		logger:   zap.NewNop(),
		now:      time.Now,
		ctx:      context.Background(),
		deleting: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Status returns the list status.
func (r *Registry) Status() Status { return r.status }

// Courses returns a copy of the course list.
func (r *Registry) Courses() []backend.Course {
	return append([]backend.Course(nil), r.courses...)
}

// Find returns the course with the given id.
func (r *Registry) Find(id string) (backend.Course, bool) {
	for _, c := range r.courses {
		if c.ID == id {
			return c, true
		}
	}
	return backend.Course{}, false
}

// Selected returns the selected course, if any.
func (r *Registry) Selected() (backend.Course, bool) {
	if r.selected == "" {
		return backend.Course{}, false
	}
	return r.Find(r.selected)
}

// Uploading reports whether an upload is in flight.
func (r *Registry) Uploading() bool { return r.uploading }

// UploadFile returns the path being uploaded, or "".
func (r *Registry) UploadFile() string { return r.uploadFile }

// Deleting reports whether a delete request for id is in flight.
func (r *Registry) Deleting(id string) bool { return r.deleting[id] }

// Confirming returns the course awaiting delete confirmation, if any.
func (r *Registry) Confirming() (backend.Course, bool) {
	if r.confirmID == "" {
		return backend.Course{}, false
	}
	return r.Find(r.confirmID)
}

// =============================================================================
// FETCH
// =============================================================================

// Init starts the initial fetch. It returns nil if a fetch has already been
// started.
func (r *Registry) Init() tea.Cmd {
	if r.status != StatusIdle {
		return nil
	}
	r.status = StatusLoading
	return r.fetch()
}

// Refresh re-fetches the course list. The current list stays visible while
// the request is in flight.
func (r *Registry) Refresh() tea.Cmd {
	if r.status == StatusIdle || r.status == StatusError {
		r.status = StatusLoading
	}
	return r.fetch()
}

func (r *Registry) fetch() tea.Cmd {
	r.issuedSeq++
	seq := r.issuedSeq
	b, ctx := r.backend, r.ctx
	return func() tea.Msg {
		courses, err := b.ListCourses(ctx)
		return ListMsg{seq: seq, Courses: courses, Err: err}
	}
}

func (r *Registry) handleList(msg ListMsg) tea.Cmd {
	if msg.seq <= r.appliedSeq {
		r.logger.Debug("dropping superseded course list", zap.Int("seq", msg.seq))
		return nil
	}
	r.appliedSeq = msg.seq

	if msg.Err != nil {
		r.logger.Error("fetching courses failed", zap.Error(msg.Err))
		if r.status == StatusLoading {
			r.status = StatusError
		}
		r.notifier.Error(TitleFetchError, "Error fetching courses: "+msg.Err.Error())
		return nil
	}

	r.courses = dedupe(msg.Courses)
	r.status = StatusLoaded
	if _, ok := r.Find(r.selected); r.selected != "" && !ok {
		r.logger.Info("selected course no longer listed", zap.String("course_id", r.selected))
		r.selected = ""
	}
	if _, ok := r.Find(r.confirmID); r.confirmID != "" && !ok {
		r.confirmID = ""
	}
	r.logger.Debug("course list applied", zap.Int("seq", msg.seq), zap.Int("count", len(r.courses)))
	return nil
}

// dedupe keeps the first occurrence of every course id.
func dedupe(courses []backend.Course) []backend.Course {
	seen := make(map[string]bool, len(courses))
	out := make([]backend.Course, 0, len(courses))
	for _, c := range courses {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// =============================================================================
// SELECTION
// =============================================================================

// Select makes id the selected course and reports whether the selection
// changed. Selecting an unknown id does nothing; selecting "" clears the
// selection.
func (r *Registry) Select(id string) bool {
	if id == r.selected {
		return false
	}
	if id != "" {
		if _, ok := r.Find(id); !ok {
			return false
		}
	}
	r.selected = id
	return true
}

// =============================================================================
// UPLOAD
// =============================================================================

// Upload sends the video at path to the backend as a new course. It returns
// nil while another upload is in flight, and when the file is missing or
// not a video (after notifying the user).
func (r *Registry) Upload(path string) tea.Cmd {
	path = strings.TrimSpace(path)
	if r.uploading || path == "" {
		return nil
	}

	contentType, err := detectVideo(path)
	if err != nil {
		r.logger.Warn("rejected upload", zap.String("path", path), zap.Error(err))
		r.notifier.Error(TitleInvalidUpload, err.Error())
		return nil
	}

	c := backend.Course{ID: NewCourseID(r.now()), Name: NameFromFile(path)}
	r.uploading = true
	r.uploadFile = path
	r.logger.Info("uploading course",
		zap.String("course_id", c.ID),
		zap.String("course_name", c.Name),
		zap.String("content_type", contentType))

	b, ctx := r.backend, r.ctx
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return UploadMsg{Course: c, Err: err}
		}
		defer f.Close()

		err = b.UploadCourse(ctx, backend.Upload{
			FileName:    path,
			ContentType: contentType,
			Body:        f,
			CourseID:    c.ID,
			CourseName:  c.Name,
		})
		return UploadMsg{Course: c, Err: err}
	}
}

// detectVideo checks that path is a regular file whose content sniffs as
// video and returns its media type.
func detectVideo(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "video/") {
			mediaType, _, _ := strings.Cut(m.String(), ";")
			return mediaType, nil
		}
	}
	return "", fmt.Errorf("%s is not a video file (detected %s)", info.Name(), mt.String())
}

func (r *Registry) handleUpload(msg UploadMsg) tea.Cmd {
	r.uploading = false
	r.uploadFile = ""

	if msg.Err != nil {
		r.logger.Error("upload failed", zap.String("course_id", msg.Course.ID), zap.Error(msg.Err))
		r.notifier.Error(TitleUploadError, MsgUploadError)
		return nil
	}

	r.logger.Info("upload complete", zap.String("course_id", msg.Course.ID))
	r.notifier.Success(TitleUploaded, MsgUploaded)
	return r.Refresh()
}

// =============================================================================
// DELETE
// =============================================================================

// RequestDelete asks for confirmation before deleting id. It reports
// whether a confirmation is now open.
func (r *Registry) RequestDelete(id string) bool {
	if _, ok := r.Find(id); !ok || r.deleting[id] {
		return false
	}
	r.confirmID = id
	return true
}

// CancelDelete closes the confirmation without deleting.
func (r *Registry) CancelDelete() {
	r.confirmID = ""
}

// ConfirmDelete issues the delete for the course awaiting confirmation.
// The course stays listed until the backend confirms the delete.
func (r *Registry) ConfirmDelete() tea.Cmd {
	id := r.confirmID
	r.confirmID = ""
	if id == "" || r.deleting[id] {
		return nil
	}
	r.deleting[id] = true
	r.logger.Info("deleting course", zap.String("course_id", id))

	b, ctx := r.backend, r.ctx
	return func() tea.Msg {
		return DeleteMsg{CourseID: id, Err: b.DeleteCourse(ctx, id)}
	}
}

func (r *Registry) handleDelete(msg DeleteMsg) tea.Cmd {
	delete(r.deleting, msg.CourseID)

	if msg.Err != nil {
		r.logger.Error("delete failed", zap.String("course_id", msg.CourseID), zap.Error(msg.Err))
		r.notifier.Error(TitleDeleteError, MsgDeleteError)
		return nil
	}

	kept := r.courses[:0]
	for _, c := range r.courses {
		if c.ID != msg.CourseID {
			kept = append(kept, c)
		}
	}
	r.courses = kept
	if r.selected == msg.CourseID {
		r.selected = ""
	}
	r.notifier.Success(TitleDeleted, MsgDeleted)
	return nil
}

// =============================================================================
// UPDATE
// =============================================================================

// Update applies backend results. Other messages are ignored.
func (r *Registry) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ListMsg:
		return r.handleList(msg)
	case UploadMsg:
		return r.handleUpload(msg)
	case DeleteMsg:
		return r.handleDelete(msg)
	}
	return nil
}
