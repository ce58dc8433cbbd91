// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"time"

	"github.com/jeranaias/coursechat-tui/internal/backend"
	"github.com/jeranaias/coursechat-tui/internal/session"
)

// ErrNoCourse is returned when exporting a session with no selected course.
var ErrNoCourse = errors.New("no course selected")

// ErrEmptyTranscript is returned when there is nothing to export.
var ErrEmptyTranscript = errors.New("transcript has no completed turns")

// Transcript is an exportable snapshot of a chat session.
type Transcript struct {
	CourseID   string             `json:"course_id"`
	CourseName string             `json:"course_name"`
	ExportedAt time.Time          `json:"exported_at"`
	Turns      []backend.ChatTurn `json:"turns"`
}

// FromSession snapshots the completed turns of s. A pending question is
// left out because it has no answer yet.
func FromSession(s *session.Session, now time.Time) (*Transcript, error) {
	if !s.HasCourse() {
		return nil, ErrNoCourse
	}
	c := s.Course()
	return &Transcript{
		CourseID:   c.ID,
		CourseName: c.Name,
		ExportedAt: now,
		Turns:      s.Completed(),
	}, nil
}

// Title returns the heading used by document formats.
func (t *Transcript) Title() string {
	name := t.CourseName
	if name == "" {
		name = t.CourseID
	}
	return "Chat about: " + name
}

func (t *Transcript) validate() error {
	if t == nil {
		return errors.New("transcript is nil")
	}
	if t.CourseID == "" {
		return ErrNoCourse
	}
	if len(t.Turns) == 0 {
		return ErrEmptyTranscript
	}
	return nil
}
