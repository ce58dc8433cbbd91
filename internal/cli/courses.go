// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/coursechat-tui/internal/backend"
	"github.com/jeranaias/coursechat-tui/internal/course"
	"github.com/jeranaias/coursechat-tui/internal/session"
	"github.com/jeranaias/coursechat-tui/internal/util"
)

// =============================================================================
// COMMAND DRIVER
// =============================================================================

// drive runs cmd and feeds each resulting message to update until no
// command is left. It returns the first error a message carried.
func drive(cmd tea.Cmd, update func(tea.Msg) tea.Cmd) error {
	var first error
	for cmd != nil {
		msg := cmd()
		if err := msgErr(msg); err != nil && first == nil {
			first = err
		}
		cmd = update(msg)
	}
	return first
}

func msgErr(msg tea.Msg) error {
	switch msg := msg.(type) {
	case course.ListMsg:
		return msg.Err
	case course.UploadMsg:
		return msg.Err
	case course.DeleteMsg:
		return msg.Err
	case session.AnswerMsg:
		return msg.Err
	}
	return nil
}

// registryNotifier prints registry successes. Errors are kept so the
// command can fail with them.
type registryNotifier struct {
	env *Env
	err error
}

func (n *registryNotifier) Success(title, message string) {
	fmt.Fprintln(n.env.Stdout, n.env.Theme.RenderStatus(true, title+": "+message))
}

func (n *registryNotifier) Error(_, message string) {
	if n.err == nil {
		n.err = errors.New(message)
	}
}

func newRegistry(env *Env) (*course.Registry, *registryNotifier) {
	note := &registryNotifier{env: env}
	reg := course.NewRegistry(env.Backend, note,
		course.WithLogger(env.Logger.Named("course")),
		course.WithContext(env.ctx()),
		course.WithClock(env.now))
	return reg, note
}

// loadCourses fetches the course list into a new registry.
func loadCourses(env *Env) (*course.Registry, *registryNotifier, error) {
	reg, note := newRegistry(env)
	if err := drive(reg.Init(), reg.Update); err != nil {
		return nil, nil, fmt.Errorf("list courses: %w", err)
	}
	return reg, note, nil
}

// findCourse looks id up on the backend.
func findCourse(env *Env, id string) (backend.Course, error) {
	reg, _, err := loadCourses(env)
	if err != nil {
		return backend.Course{}, err
	}
	c, ok := reg.Find(id)
	if !ok {
		return backend.Course{}, fmt.Errorf("course %q not found", id)
	}
	return c, nil
}

func displayName(c backend.Course) string {
	if c.Name == "" {
		return c.ID
	}
	return c.Name
}

// =============================================================================
// COURSES
// =============================================================================

// HandleCourses lists the courses known to the backend.
func HandleCourses(env *Env, args Args) error {
	reg, _, err := loadCourses(env)
	if err != nil {
		return err
	}
	courses := reg.Courses()

	if args.JSON {
		if courses == nil {
			courses = []backend.Course{}
		}
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(courses)
	}

	if len(courses) == 0 {
		fmt.Fprintln(env.Stdout, "No courses yet. Upload one with: coursechat upload FILE")
		return nil
	}

	idWidth := len("ID")
	for _, c := range courses {
		idWidth = max(idWidth, util.StringWidth(c.ID))
	}
	fmt.Fprintln(env.Stdout, env.Theme.PaneTitle.Render(util.PadRight("ID", idWidth)+"  NAME"))
	for _, c := range courses {
		fmt.Fprintf(env.Stdout, "%s  %s\n", util.PadRight(c.ID, idWidth), util.SingleLine(c.Name))
	}
	return nil
}

// =============================================================================
// UPLOAD
// =============================================================================

// HandleUpload uploads a course video and waits for the backend to finish
// processing it.
func HandleUpload(env *Env, args Args) error {
	reg, note := newRegistry(env)

	cmd := reg.Upload(args.File)
	if cmd == nil {
		if note.err != nil {
			return note.err
		}
		return usageErrorf("upload requires a video file")
	}

	fmt.Fprintf(env.Stdout, "Uploading %s as %q. Processing may take several minutes...\n",
		filepath.Base(args.File), course.NameFromFile(args.File))

	msg := cmd()
	// The follow-up refresh only matters to the dashboard.
	reg.Update(msg)
	up, _ := msg.(course.UploadMsg)
	if up.Err != nil {
		return fmt.Errorf("upload %s: %w", filepath.Base(args.File), up.Err)
	}
	fmt.Fprintf(env.Stdout, "Course id: %s\n", up.Course.ID)
	return nil
}

// =============================================================================
// DELETE
// =============================================================================

// HandleDelete deletes a course after confirmation.
func HandleDelete(env *Env, args Args) error {
	reg, _, err := loadCourses(env)
	if err != nil {
		return err
	}
	c, ok := reg.Find(args.CourseID)
	if !ok || !reg.RequestDelete(c.ID) {
		return fmt.Errorf("course %q not found", args.CourseID)
	}

	confirmed, err := RequireConfirmation(env.Stdin, env.Stdout, course.ConfirmPrompt(displayName(c)),
		ConfirmationOptions{Yes: args.Yes, Interactive: env.Interactive})
	if err != nil || !confirmed {
		reg.CancelDelete()
		if err == nil {
			fmt.Fprintln(env.Stdout, "Cancelled.")
		}
		return err
	}

	if err := drive(reg.ConfirmDelete(), reg.Update); err != nil {
		return fmt.Errorf("delete %s: %w", c.ID, err)
	}
	return nil
}
