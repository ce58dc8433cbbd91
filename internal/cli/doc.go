// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the coursechat command line.
//
// # Commands
//
//   - (none): start the dashboard
//   - courses: list courses, optionally as JSON
//   - upload FILE: upload a course video
//   - delete ID: delete a course after confirmation
//   - chat --course ID: interactive chat with line editing and history
//   - ask --course ID QUESTION: one question, typewriter output
//   - export --course ID: ask questions read from stdin, export the transcript
//   - config [show|path|init]: configuration management
//   - version, help
//
// Every handler takes an *Env holding the loaded configuration, the backend
// and the standard streams, and returns an error. main prints the error as
// "Error: ..." and exits 1.
package cli
