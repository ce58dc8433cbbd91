// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitError indicates any failure, including bad usage
	ExitError = 1
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports a malformed command line.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func usageErrorf(format string, a ...any) error {
	return &UsageError{Message: fmt.Sprintf(format, a...)}
}

// IsUsageError reports whether err is a UsageError.
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// Report writes err to w in the "Error: ..." form and returns the exit
// code for it. Usage errors also point at the help command.
func Report(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	if IsUsageError(err) {
		fmt.Fprintln(w, "Run 'coursechat help' for usage.")
	}
	return ExitError
}
