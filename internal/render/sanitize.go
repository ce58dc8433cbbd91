// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// strictPolicy removes every element; script and style lose their content.
var strictPolicy = bluemonday.StrictPolicy()

// Sanitize returns raw with everything that could alter the terminal or
// inject markup removed. It has no side effects.
//
// The text is NFC-normalized, terminal escape sequences and control
// characters other than newline and tab are dropped, and HTML elements are
// stripped outside fenced code blocks. Code blocks keep their content
// verbatim so answers containing HTML snippets remain readable.
func Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	text := stripControls(norm.NFC.String(raw))

	var out strings.Builder
	out.Grow(len(text))
	var prose []string
	flush := func() {
		if len(prose) == 0 {
			return
		}
		out.WriteString(stripMarkup(strings.Join(prose, "")))
		prose = prose[:0]
	}

	fence := ""
	for _, line := range strings.SplitAfter(text, "\n") {
		marker := fenceMarker(line)
		switch {
		case fence == "" && marker != "":
			flush()
			fence = marker
			out.WriteString(line)
		case fence != "":
			if marker != "" && strings.HasPrefix(marker, fence) && isClosingFence(line) {
				fence = ""
			}
			out.WriteString(line)
		default:
			prose = append(prose, line)
		}
	}
	flush()
	return out.String()
}

// maxMarkupPasses bounds how many layers of entity encoding are peeled off
// before the remaining text is left escaped.
const maxMarkupPasses = 4

// stripMarkup removes HTML from prose, then restores the entities the
// policy escaped so markdown punctuation such as > and & survives.
// Restoring entities can reveal new markup (&lt;script&gt;) or control
// characters (&#27;), so the pass repeats until the text is stable and
// controls are dropped again at the end.
func stripMarkup(s string) string {
	for pass := 0; pass < maxMarkupPasses; pass++ {
		if !strings.ContainsAny(s, "<&") {
			return s
		}
		clean := strictPolicy.Sanitize(s)
		next := stripControls(html.UnescapeString(clean))
		if next == s {
			return s
		}
		s = next
	}
	// Still encoded: leave the entities escaped so they display literally.
	return stripControls(strictPolicy.Sanitize(s))
}

// fenceMarker returns the ``` or ~~~ run opening line, or "" if line is not
// a code fence. Up to three leading spaces are allowed.
func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) < 3 {
		return ""
	}
	ch := trimmed[0]
	if ch != '`' && ch != '~' {
		return ""
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == ch {
		n++
	}
	if n < 3 {
		return ""
	}
	// A backtick fence cannot carry a backtick in its info string.
	if ch == '`' && strings.ContainsRune(trimmed[n:], '`') {
		return ""
	}
	return trimmed[:n]
}

func isClosingFence(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.Trim(trimmed, trimmed[:1]) == ""
}

// stripControls drops escape sequences and C0/C1 control characters,
// keeping newline and tab. Carriage returns are dropped, which turns CRLF
// line endings into LF.
func stripControls(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r == 0x1b:
			i = skipEscape(runes, i)
		case r == 0x9b:
			// 8-bit CSI
			i = skipCSI(runes, i+1)
		case r == 0x9d:
			// 8-bit OSC
			i = skipString(runes, i+1)
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// skipEscape returns the index of the last rune of the escape sequence
// starting at runes[i] (which is ESC).
func skipEscape(runes []rune, i int) int {
	if i+1 >= len(runes) {
		return i
	}
	switch runes[i+1] {
	case '[':
		return skipCSI(runes, i+2)
	case ']', 'P', '_', '^', 'X':
		return skipString(runes, i+2)
	default:
		// Two-character sequence such as ESC c or ESC 7.
		return i + 1
	}
}

// skipCSI consumes parameter and intermediate bytes up to the final byte.
func skipCSI(runes []rune, i int) int {
	for ; i < len(runes); i++ {
		if runes[i] >= 0x40 && runes[i] <= 0x7e {
			return i
		}
	}
	return len(runes) - 1
}

// skipString consumes an OSC/DCS style string terminated by BEL or ST.
func skipString(runes []rune, i int) int {
	for ; i < len(runes); i++ {
		switch {
		case runes[i] == 0x07 || runes[i] == 0x9c:
			return i
		case runes[i] == 0x1b && i+1 < len(runes) && runes[i+1] == '\\':
			return i + 1
		}
	}
	return len(runes) - 1
}
