// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the course chat backend.
//
// The backend owns everything interesting: it transcribes uploaded videos,
// indexes them and answers questions about a course. This package only
// speaks its REST surface and turns the responses into typed values.
//
// # Key Types
//
//   - Backend: the four operations the view-models depend on
//   - Client: net/http implementation of Backend
//   - Course, ChatTurn, ChatResponse: wire types
//   - Error: classified failure (network, server, invalid response)
//
// # Usage
//
//	client := backend.NewClient(&backend.ClientConfig{BaseURL: "http://127.0.0.1:8000"})
//	courses, err := client.ListCourses(ctx)
//	if backend.IsNetwork(err) {
//	    // backend unreachable
//	}
//
// Every call is single-shot: there is no retry and no backoff. A failure is
// reported once and the caller decides whether to try again.
package backend
