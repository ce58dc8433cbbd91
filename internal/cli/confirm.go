// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotInteractive is returned when a confirmation is needed but stdin
// cannot answer it.
var ErrNotInteractive = errors.New("confirmation required: pass --yes when stdin is not a terminal")

// =============================================================================
// CONFIRMATION
// =============================================================================

// ConfirmationOptions controls RequireConfirmation.
type ConfirmationOptions struct {
	// Yes indicates --yes was passed (skip the prompt).
	Yes bool
	// Interactive indicates stdin is a terminal.
	Interactive bool
}

// RequireConfirmation asks prompt on out and reads the answer from in.
//
// Confirmation flow:
//  1. If opts.Yes is true, return true immediately
//  2. If stdin is not interactive, return ErrNotInteractive
//  3. Otherwise, prompt and accept y or yes
func RequireConfirmation(in io.Reader, out io.Writer, prompt string, opts ConfirmationOptions) (bool, error) {
	if opts.Yes {
		return true, nil
	}
	if !opts.Interactive {
		return false, ErrNotInteractive
	}
	return PromptYesNo(in, out, prompt)
}

// PromptYesNo writes prompt followed by " [y/N]: " and reports whether the
// answer was y or yes. End of input counts as no.
func PromptYesNo(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
