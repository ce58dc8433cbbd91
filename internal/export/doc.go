// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes chat transcripts to files.
//
// Transcripts live only in memory for the lifetime of a session; exporting
// is the one way to keep them.
//
// # Key Types
//
//   - Transcript: a course and its completed question/answer turns
//   - Format: md, html or json
//   - Exporter: converts a transcript into one format
//   - Options: output directory, metadata, HTML theme
//
// # Supported Formats
//
//   - Markdown: answers kept as the markdown the backend returned
//   - HTML: answers rendered with goldmark, code highlighted with chroma,
//     output passed through a bluemonday policy
//   - JSON: the transcript structure, for scripts
//
// # Usage
//
//	t, err := export.FromSession(sess, time.Now())
//	if err != nil {
//	    return err
//	}
//	exporter, err := export.New(export.FormatHTML, nil)
//	if err != nil {
//	    return err
//	}
//	path, err := export.ToDir(t, exporter, export.DefaultOptions())
package export
