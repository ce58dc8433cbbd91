// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"strings"
	"unicode/utf8"
)

// ResetSGR ends every partial frame that contains an escape sequence, so
// styling opened in the visible prefix does not leak past it.
const ResetSGR = "\x1b[0m"

// Sequence yields growing prefixes of a string. Each step reveals a fixed
// number of visible runes; ANSI escape sequences are never split and do not
// count toward the step. The last frame is always the complete text.
//
// A Sequence is single-use: once exhausted it cannot be restarted. It is
// not safe for concurrent use.
type Sequence struct {
	text    string
	step    int
	pos     int
	prev    int
	started bool
	styled  bool
}

// NewSequence creates a sequence over text revealing step runes per frame.
// A step <= 0 reveals the whole text in one frame.
func NewSequence(text string, step int) *Sequence {
	if step <= 0 {
		step = len(text) + 1
	}
	return &Sequence{text: text, step: step}
}

// Text returns the complete text being revealed.
func (s *Sequence) Text() string {
	return s.text
}

// Done reports whether the final frame has been returned.
func (s *Sequence) Done() bool {
	return s.started && s.pos >= len(s.text)
}

// Next advances the sequence and returns the new frame. ok is false once the
// sequence is exhausted. An empty text yields a single empty frame.
func (s *Sequence) Next() (frame string, ok bool) {
	if s.Done() {
		return "", false
	}
	s.started = true
	s.prev = s.pos

	for visible := 0; s.pos < len(s.text) && visible < s.step; {
		if n := escapeLen(s.text[s.pos:]); n > 0 {
			s.pos += n
			s.styled = true
			continue
		}
		_, size := utf8.DecodeRuneInString(s.text[s.pos:])
		s.pos += size
		visible++
	}
	// Trailing escapes belong to the frame that precedes them.
	for s.pos < len(s.text) {
		n := escapeLen(s.text[s.pos:])
		if n == 0 {
			break
		}
		s.pos += n
		s.styled = true
	}

	if s.pos >= len(s.text) || !s.styled {
		return s.text[:s.pos], true
	}
	return s.text[:s.pos] + ResetSGR, true
}

// Chunk returns the raw text added by the most recent call to Next,
// without any trailing reset. Concatenating every chunk reproduces the
// complete text.
func (s *Sequence) Chunk() string {
	return s.text[s.prev:s.pos]
}

// escapeLen returns the byte length of the escape sequence at the start of
// s, or 0 if s does not start with one.
func escapeLen(s string) int {
	if len(s) < 2 || s[0] != 0x1b {
		return 0
	}
	switch s[1] {
	case '[':
		for i := 2; i < len(s); i++ {
			if s[i] >= 0x40 && s[i] <= 0x7e {
				return i + 1
			}
		}
		return len(s)
	case ']':
		if i := strings.IndexAny(s[2:], "\x07\x1b"); i >= 0 {
			end := 2 + i
			if s[end] == 0x1b && end+1 < len(s) && s[end+1] == '\\' {
				return end + 2
			}
			return end + 1
		}
		return len(s)
	default:
		return 2
	}
}
