// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package course

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var idClock struct {
	mu   sync.Mutex
	last int64
}

// NewCourseID returns "course-<unix millis>" for now. IDs are strictly
// increasing within the process: a second call in the same millisecond
// gets the next millisecond.
func NewCourseID(now time.Time) string {
	ms := now.UnixMilli()

	idClock.mu.Lock()
	if ms <= idClock.last {
		ms = idClock.last + 1
	}
	idClock.last = ms
	idClock.mu.Unlock()

	return fmt.Sprintf("course-%d", ms)
}

// NameFromFile derives a course name from a video path: the file name up to
// its first dot. Names of dotfiles fall back to the whole file name.
func NameFromFile(path string) string {
	base := filepath.Base(path)
	name, _, _ := strings.Cut(base, ".")
	if name == "" {
		return base
	}
	return name
}

// ConfirmPrompt is the question asked before deleting a course.
func ConfirmPrompt(name string) string {
	return fmt.Sprintf("Are you sure you want to delete %q? This action cannot be undone.", name)
}
