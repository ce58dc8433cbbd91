// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package course manages the list of courses known to the backend.
//
// The Registry is a Bubble Tea view-model. It fetches the course list,
// uploads new course videos, deletes courses after confirmation and tracks
// which course is selected. Outcomes the user should hear about are
// reported through a Notifier.
//
// # Key Types
//
//   - Registry: Course list state machine and selection
//   - Status: Idle, Loading, Loaded or Error
//   - Notifier: Receives success and error notifications
//
// # Usage
//
//	reg := course.NewRegistry(client, toasts, course.WithLogger(logger))
//	cmd := reg.Init()
//	...
//	cmd = reg.Update(msg)
package course
