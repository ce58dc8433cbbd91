// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app implements the coursechat dashboard.
//
// The dashboard composes the course registry and the chat session
// view-models with a two pane layout: the course list on the left and the
// chat about the selected course on the right. Both view-models only change
// inside Update, so selection changes and the session reset they imply
// always land in the same frame.
//
// # Panes and Modes
//
//   - Courses: navigate, select, refresh, start an upload or a delete
//   - Chat: type a question, scroll the transcript
//   - Upload: a path prompt in the course pane
//   - Confirm: the delete confirmation dialog
//
// Config hot reload arrives as ConfigReloadedMsg; the [reveal] and [ui]
// sections take effect immediately.
package app
