// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the coursechat packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth, PadRight: Cell-width aware fitting for table rows
//   - TruncateRunes: UTF-8 safe truncation for log previews
//   - SingleLine: Collapse whitespace so text fits one row
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	row := util.PadRight(util.SingleLine(course.Name), 30)
//	err := util.AtomicWriteFile(path, data, 0644)
package util
