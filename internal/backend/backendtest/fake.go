// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backendtest provides an in-memory backend.Backend for tests.
package backendtest

import (
	"context"
	"io"
	"sync"

	"github.com/jeranaias/coursechat-tui/internal/backend"
)

// ChatCall records one SendChatMessage invocation.
type ChatCall struct {
	Question string
	CourseID string
	History  []backend.ChatTurn
}

// UploadCall records one UploadCourse invocation. Body holds the bytes read
// from the upload.
type UploadCall struct {
	FileName    string
	ContentType string
	CourseID    string
	CourseName  string
	Body        []byte
}

// Fake is a scriptable backend. Nil hooks fall back to simple in-memory
// behaviour over Courses. Safe for concurrent use.
type Fake struct {
	mu sync.Mutex

	Courses []backend.Course

	ListFunc   func(ctx context.Context) ([]backend.Course, error)
	DeleteFunc func(ctx context.Context, courseID string) error
	UploadFunc func(ctx context.Context, upload backend.Upload) error
	ChatFunc   func(ctx context.Context, question, courseID string, history []backend.ChatTurn) (*backend.ChatResponse, error)

	ListCalls   int
	DeleteCalls []string
	UploadCalls []UploadCall
	ChatCalls   []ChatCall
}

var _ backend.Backend = (*Fake)(nil)

func (f *Fake) ListCourses(ctx context.Context) ([]backend.Course, error) {
	f.mu.Lock()
	f.ListCalls++
	fn := f.ListFunc
	courses := append([]backend.Course{}, f.Courses...)
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return courses, nil
}

func (f *Fake) DeleteCourse(ctx context.Context, courseID string) error {
	f.mu.Lock()
	f.DeleteCalls = append(f.DeleteCalls, courseID)
	fn := f.DeleteFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, courseID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.Courses[:0]
	for _, c := range f.Courses {
		if c.ID != courseID {
			kept = append(kept, c)
		}
	}
	f.Courses = kept
	return nil
}

func (f *Fake) UploadCourse(ctx context.Context, upload backend.Upload) error {
	var body []byte
	if upload.Body != nil {
		body, _ = io.ReadAll(upload.Body)
	}

	f.mu.Lock()
	f.UploadCalls = append(f.UploadCalls, UploadCall{
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		CourseID:    upload.CourseID,
		CourseName:  upload.CourseName,
		Body:        body,
	})
	fn := f.UploadFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, upload)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Courses = append(f.Courses, backend.Course{ID: upload.CourseID, Name: upload.CourseName})
	return nil
}

func (f *Fake) SendChatMessage(ctx context.Context, question, courseID string, history []backend.ChatTurn) (*backend.ChatResponse, error) {
	f.mu.Lock()
	f.ChatCalls = append(f.ChatCalls, ChatCall{
		Question: question,
		CourseID: courseID,
		History:  append([]backend.ChatTurn{}, history...),
	})
	fn := f.ChatFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, question, courseID, history)
	}
	return &backend.ChatResponse{Response: "answer: " + question}, nil
}

// Chats returns a copy of the recorded chat calls.
func (f *Fake) Chats() []ChatCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ChatCall{}, f.ChatCalls...)
}

// Deletes returns a copy of the recorded delete calls.
func (f *Fake) Deletes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.DeleteCalls...)
}

// Uploads returns a copy of the recorded upload calls.
func (f *Fake) Uploads() []UploadCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]UploadCall{}, f.UploadCalls...)
}
