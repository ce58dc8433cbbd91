// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the chat transcript for the selected course.
//
// A Session is a Bubble Tea view-model: it is mutated only from the event
// loop, and every network call it makes is returned as a tea.Cmd whose
// result comes back through Update.
//
// # Key Types
//
//   - Session: Ordered turns, the single pending question and reveal state
//   - AnswerMsg: Result of a chat request
//
// # Turn Lifecycle
//
// A submitted question is appended immediately with the assistant text
// PendingReply. When the answer arrives the placeholder is replaced, once,
// by the answer or by ErrorReply, and the answer is revealed incrementally.
// Only the newest answer is ever animated.
//
// # Usage
//
//	s := session.New(client, session.WithLogger(logger))
//	s.Reset(course)
//	cmd := s.Submit("What is covered in week 2?")
//	...
//	cmd = s.Update(msg)
package session
