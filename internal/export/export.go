// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jeranaias/coursechat-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a transcript into one file format.
type Exporter interface {
	// Export returns the file content.
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the extension including the dot, e.g. ".md".
	FileExtension() string

	// MimeType returns the media type of the content.
	MimeType() string
}

// Format names an export format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name as typed by a user.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown export format %q (want md, html or json)", s)
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where ToDir writes files. Default: current directory.
	OutputDir string

	// Open opens the written file in the default application.
	Open bool

	// IncludeMetadata adds front matter (markdown) or a header (HTML).
	IncludeMetadata bool

	// Theme for HTML export, "light" or "dark".
	Theme string

	// CodeStyle is the chroma style for highlighted code in HTML.
	CodeStyle string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       ".",
		IncludeMetadata: true,
		Theme:           "dark",
		CodeStyle:       "monokai",
	}
}

// New returns the exporter for format.
func New(format Format, opts *Options) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownExporter(opts), nil
	case FormatHTML:
		return NewHTMLExporter(opts), nil
	case FormatJSON:
		return NewJSONExporter(), nil
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ToFile writes the exported transcript to path atomically.
func ToFile(t *Transcript, exporter Exporter, path string) error {
	content, err := exporter.Export(t)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ToDir writes the exported transcript into opts.OutputDir under a name
// derived from the course and export time, and returns the path.
func ToDir(t *Transcript, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := t.validate(); err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, FileName(t, exporter))
	if err := ToFile(t, exporter, path); err != nil {
		return "", err
	}

	if opts.Open {
		if err := OpenFile(path); err != nil {
			return path, fmt.Errorf("exported to %s but could not open it: %w", path, err)
		}
	}
	return path, nil
}

// FileName returns the default file name for an export.
func FileName(t *Transcript, exporter Exporter) string {
	name := t.CourseName
	if name == "" {
		name = t.CourseID
	}
	return fmt.Sprintf("chat_%s_%s%s",
		sanitizeFilename(name),
		t.ExportedAt.Format("20060102_150405"),
		exporter.FileExtension())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in file names on
// common platforms.
func sanitizeFilename(s string) string {
	s = util.TruncateRunes(s, 50)

	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune('_')
		case r < 32 || r == 127:
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "course"
	}
	return b.String()
}

// OpenFile opens a file in the default application for the OS.
func OpenFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux", "freebsd", "openbsd":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
