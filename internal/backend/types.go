// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"io"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// Course is a processed course video known to the backend.
type Course struct {
	ID   string `json:"course_id"`
	Name string `json:"course_name"`
}

// ChatTurn is one question and its answer.
type ChatTurn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// ChatRequest is the body of POST chat.
type ChatRequest struct {
	Question    string     `json:"question"`
	CourseID    string     `json:"course_id"`
	ChatHistory []ChatTurn `json:"chat_history"`
}

// ChatResponse is the validated answer to a ChatRequest.
type ChatResponse struct {
	Response string `json:"response"`
}

// Upload describes one course video upload.
type Upload struct {
	// FileName is sent as the multipart file name.
	FileName string
	// ContentType of the file part; defaults to application/octet-stream.
	ContentType string
	// Body is read once, streamed straight into the request.
	Body io.Reader

	CourseID   string
	CourseName string
}

// Pointer fields let decoding tell a missing field from an empty one.
type listCoursesResponse struct {
	Courses *[]Course `json:"courses"`
}

type chatResponseWire struct {
	Response *string `json:"response"`
}

// errorBody matches the {"detail": ...} bodies the backend sends on failure.
type errorBody struct {
	Detail any `json:"detail"`
}

// =============================================================================
// BACKEND INTERFACE
// =============================================================================

// Backend is the transport surface consumed by the course registry and the
// chat session. Client implements it; tests substitute fakes.
type Backend interface {
	ListCourses(ctx context.Context) ([]Course, error)
	DeleteCourse(ctx context.Context, courseID string) error
	UploadCourse(ctx context.Context, upload Upload) error
	SendChatMessage(ctx context.Context, question, courseID string, history []ChatTurn) (*ChatResponse, error)
}

var _ Backend = (*Client)(nil)
