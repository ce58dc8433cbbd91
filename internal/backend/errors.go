// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// ErrorKind categorizes client errors for handling.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindNetwork: the request never reached the backend or never came back.
	KindNetwork
	// KindServer: the backend answered with a non-2xx status.
	KindServer
	// KindInvalidResponse: a 2xx body that does not have the expected shape.
	KindInvalidResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindInvalidResponse:
		return "invalid response"
	default:
		return "unknown"
	}
}

// ErrEmptyCourseID is returned before any request is made.
var ErrEmptyCourseID = errors.New("course id is required")

// maxErrorBody bounds how much of a failed response is read for the message.
const maxErrorBody = 4 << 10

// Error is a classified failure of one backend operation.
type Error struct {
	Kind    ErrorKind
	Op      string // "list courses", "delete course", ...
	Status  int    // HTTP status for KindServer
	Message string
	Cause   error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf returns the kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	return KindOf(err) == KindNetwork
}

// IsServer reports whether err is a non-success status from the backend.
func IsServer(err error) bool {
	return KindOf(err) == KindServer
}

func networkError(op string, err error) *Error {
	msg := "could not reach backend"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "request timed out"
	} else if errors.Is(err, context.Canceled) {
		msg = "request canceled"
	}
	return &Error{Kind: KindNetwork, Op: op, Message: msg, Cause: err}
}

func invalidResponse(op, msg string, cause error) *Error {
	return &Error{Kind: KindInvalidResponse, Op: op, Message: msg, Cause: cause}
}

// serverError builds a KindServer error, surfacing the backend's detail
// message when the body carries one.
func serverError(op string, resp *http.Response) *Error {
	msg := "server returned " + resp.Status
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if detail := parseDetail(data); detail != "" {
		msg += ": " + detail
	}
	return &Error{Kind: KindServer, Op: op, Status: resp.StatusCode, Message: msg}
}

func parseDetail(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Detail == nil {
		return ""
	}
	if s, ok := body.Detail.(string); ok {
		return s
	}
	// Validation failures carry a list of objects.
	raw, err := json.Marshal(body.Detail)
	if err != nil {
		return ""
	}
	return string(raw)
}
