// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns backend answers into text that is safe to display.
//
// Answers are untrusted: they may contain HTML, terminal escape sequences or
// control characters. Sanitize removes all of those. Formatters then turn the
// sanitized markdown into terminal output (glamour) or into an HTML fragment
// (goldmark with chroma highlighting, cleaned again by bluemonday).
//
// # Key Types
//
//   - Formatter: Converts sanitized markdown into displayable text
//   - TerminalFormatter: ANSI output for the dashboard and CLI
//   - HTMLFormatter: HTML fragments for transcript export
//   - PlainFormatter: Pass-through for pipes and --no-color output
//   - Cache: Memoizes formatted output of historical turns
//
// # Usage
//
//	f, err := render.NewTerminalFormatter("auto", 80)
//	if err != nil {
//	    return err
//	}
//	cache := render.NewCache(10 * time.Minute)
//	out, err := cache.Render(f, answer)
package render
