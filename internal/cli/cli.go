// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"
)

// Version information (set at build time).
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMANDS
// =============================================================================

// Command identifies the subcommand to run.
type Command int

const (
	CmdDashboard Command = iota
	CmdCourses
	CmdUpload
	CmdDelete
	CmdChat
	CmdAsk
	CmdExport
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdDashboard:
		return "dashboard"
	case CmdCourses:
		return "courses"
	case CmdUpload:
		return "upload"
	case CmdDelete:
		return "delete"
	case CmdChat:
		return "chat"
	case CmdAsk:
		return "ask"
	case CmdExport:
		return "export"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds the parsed command line.
type Args struct {
	// Global flags
	APIURL     string
	ConfigPath string
	NoReveal   bool
	Verbose    bool

	// Command flags
	CourseID string
	Format   string
	Output   string
	JSON     bool
	Yes      bool
	Force    bool
	Open     bool

	// Subcommand of config (show, path, init).
	Subcommand string

	// File is the video for upload.
	File string

	// Query is the question for ask.
	Query string

	// Questions are the positional questions for export.
	Questions []string

	// Raw holds the arguments after the command name.
	Raw []string
}

const usageText = `coursechat - chat with your course videos

Usage:
  coursechat                              Start the dashboard (default)
  coursechat courses [--json]             List courses
  coursechat upload FILE                  Upload a course video
  coursechat delete COURSE_ID [--yes]     Delete a course
  coursechat chat --course ID             Interactive chat
  coursechat ask --course ID "question"   Ask a single question
  coursechat export --course ID [--format md|html|json] [--out FILE] [--open] [questions...]
                                          Ask questions (arguments, or one per
                                          line on stdin) and export the transcript
  coursechat config [show|path|init]      Configuration
  coursechat version                      Show version
  coursechat help                         Show this help

Global flags:
  --api URL          Backend base URL (overrides config)
  --config PATH      Config file (default ~/.coursechat/config.toml)
  --no-reveal        Print answers at once instead of typing them out
  -v, --verbose      Log to stderr as well as the log file

Chat commands:
  /help              Show chat commands
  /history           Show the conversation so far
  /clear             Start over with the same course
  /export [FORMAT] [FILE]
                     Export the conversation (md, html or json)
  /quit              Leave (Ctrl+D works too)

Environment:
  COURSECHAT_HOME, COURSECHAT_API_URL, COURSECHAT_TIMEOUT,
  COURSECHAT_LOG_LEVEL, COURSECHAT_THEME, COURSECHAT_NO_REVEAL

Version: %s
`

// PrintUsage writes the usage text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "coursechat version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses the arguments following the program name.
func Parse(argv []string) (Command, Args, error) {
	remaining, args, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, args, err
	}
	if len(remaining) == 0 {
		return CmdDashboard, args, nil
	}

	name := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch name {
	case "dashboard", "tui":
		return CmdDashboard, args, nil

	case "courses", "list", "ls":
		p := NewArgParser(remaining, "json")
		args.JSON = p.BoolFlag("json")
		return CmdCourses, args, nil

	case "upload":
		p := NewArgParser(remaining)
		args.File = p.Positional(0)
		if args.File == "" {
			return CmdUpload, args, usageErrorf("upload requires a video file")
		}
		return CmdUpload, args, nil

	case "delete", "rm":
		p := NewArgParser(remaining, "yes", "y")
		args.CourseID = p.Positional(0)
		args.Yes = p.BoolFlag("yes", "y")
		if args.CourseID == "" {
			return CmdDelete, args, usageErrorf("delete requires a course id")
		}
		return CmdDelete, args, nil

	case "chat":
		p := NewArgParser(remaining)
		args.CourseID = p.Flag("course", "c")
		if args.CourseID == "" {
			return CmdChat, args, usageErrorf("chat requires --course")
		}
		return CmdChat, args, nil

	case "ask":
		p := NewArgParser(remaining)
		args.CourseID = p.Flag("course", "c")
		args.Query = strings.Join(p.PositionalFrom(0), " ")
		if args.CourseID == "" {
			return CmdAsk, args, usageErrorf("ask requires --course")
		}
		if strings.TrimSpace(args.Query) == "" {
			return CmdAsk, args, usageErrorf("ask requires a question")
		}
		return CmdAsk, args, nil

	case "export":
		p := NewArgParser(remaining, "open")
		args.CourseID = p.Flag("course", "c")
		args.Format = p.FlagOrDefault("format", "md")
		args.Output = p.Flag("out", "o")
		args.Open = p.BoolFlag("open")
		args.Questions = p.PositionalFrom(0)
		if args.CourseID == "" {
			return CmdExport, args, usageErrorf("export requires --course")
		}
		return CmdExport, args, nil

	case "config":
		p := NewArgParser(remaining, "force")
		args.Subcommand = strings.ToLower(p.Subcommand())
		if args.Subcommand == "" {
			args.Subcommand = "show"
		}
		args.Force = p.BoolFlag("force")
		switch args.Subcommand {
		case "show", "path", "init":
			return CmdConfig, args, nil
		}
		return CmdConfig, args, usageErrorf("unknown config subcommand %q", args.Subcommand)

	case "version", "--version":
		return CmdVersion, args, nil

	case "help", "-h", "--help":
		return CmdHelp, args, nil
	}

	return CmdHelp, args, usageErrorf("unknown command %q", name)
}

// parseGlobalFlags extracts global flags, which may appear anywhere.
func parseGlobalFlags(argv []string) ([]string, Args, error) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		name, value, hasValue := strings.Cut(arg, "=")

		switch name {
		case "--no-reveal":
			args.NoReveal = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--api", "--config":
			if !hasValue {
				if i+1 >= len(argv) {
					return nil, args, usageErrorf("%s requires a value", name)
				}
				i++
				value = argv[i]
			}
			if name == "--api" {
				args.APIURL = value
			} else {
				args.ConfigPath = value
			}
		default:
			remaining = append(remaining, arg)
		}
	}

	return remaining, args, nil
}
