// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeranaias/coursechat-tui/internal/backend"
	"github.com/jeranaias/coursechat-tui/internal/backend/backendtest"
	"github.com/jeranaias/coursechat-tui/internal/config"
	"github.com/jeranaias/coursechat-tui/internal/course"
	"github.com/jeranaias/coursechat-tui/internal/export"
	"github.com/jeranaias/coursechat-tui/internal/render"
	"github.com/jeranaias/coursechat-tui/internal/session"
	"github.com/jeranaias/coursechat-tui/internal/ui/styles"
)

var testNow = time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

type testIO struct {
	out *bytes.Buffer
	err *bytes.Buffer
}

func newTestEnv(t *testing.T, fake *backendtest.Fake, stdin string) (*Env, testIO) {
	t.Helper()
	cfg := config.Default()
	cfg.Reveal.Enabled = false

	tio := testIO{out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	return &Env{
		Config:     cfg,
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Backend:    fake,
		Logger:     zap.NewNop(),
		Theme:      styles.NewTheme("notty"),
		Formatter:  render.PlainFormatter{},
		Stdin:      strings.NewReader(stdin),
		Stdout:     tio.out,
		Stderr:     tio.err,
		Context:    context.Background(),
		Now:        func() time.Time { return testNow },
	}, tio
}

func twoCourses() *backendtest.Fake {
	return &backendtest.Fake{Courses: []backend.Course{
		{ID: "c1", Name: "Intro"},
		{ID: "course-1700000000000", Name: "Advanced Topics"},
	}}
}

// mp4Header is enough of an ISO base media file for content sniffing.
var mp4Header = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom\x00\x00\x00\x08free")

// =============================================================================
// ARG PARSER TESTS
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		bools    []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "subcommand with flag",
			args:    []string{"show", "--lines", "50"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "50", p.Flag("lines"))
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"--format=html", "q1"},
			wantSub: "q1",
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "html", p.Flag("format"))
			},
		},
		{
			name:    "declared boolean keeps the next positional",
			args:    []string{"--yes", "c1"},
			bools:   []string{"yes"},
			wantSub: "c1",
			validate: func(t *testing.T, p *ArgParser) {
				assert.True(t, p.BoolFlag("yes"))
				assert.Equal(t, 1, p.PositionalCount())
			},
		},
		{
			name:    "undeclared trailing flag is boolean",
			args:    []string{"list", "--json"},
			wantSub: "list",
			validate: func(t *testing.T, p *ArgParser) {
				assert.True(t, p.BoolFlag("json"))
				assert.True(t, p.HasFlag("--json"))
			},
		},
		{
			name:    "short flag alias",
			args:    []string{"-c", "c1", "what", "is", "x"},
			wantSub: "what",
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "c1", p.Flag("course", "c"))
				assert.Equal(t, []string{"what", "is", "x"}, p.PositionalFrom(0))
			},
		},
		{
			name:    "double dash ends flags",
			args:    []string{"--", "--not-a-flag", "x"},
			wantSub: "--not-a-flag",
			validate: func(t *testing.T, p *ArgParser) {
				assert.False(t, p.HasFlag("not-a-flag"))
				assert.Equal(t, "x", p.Positional(1))
			},
		},
		{
			name:    "explicit false",
			args:    []string{"--open=false"},
			bools:   []string{"open"},
			wantSub: "",
			validate: func(t *testing.T, p *ArgParser) {
				assert.False(t, p.BoolFlag("open"))
				assert.True(t, p.HasFlag("open"))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewArgParser(tc.args, tc.bools...)
			assert.Equal(t, tc.wantSub, p.Subcommand())
			assert.Equal(t, tc.args, p.Raw())
			if tc.validate != nil {
				tc.validate(t, p)
			}
		})
	}
}

func TestArgParser_Defaults(t *testing.T) {
	p := NewArgParser(nil)
	assert.Equal(t, "", p.Flag("x"))
	assert.Equal(t, "md", p.FlagOrDefault("format", "md"))
	assert.Equal(t, "", p.Positional(3))
	assert.Empty(t, p.PositionalFrom(1))
}

// =============================================================================
// PARSE TESTS
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		argv  []string
		cmd   Command
		check func(*testing.T, Args)
	}{
		{"no args", nil, CmdDashboard, nil},
		{"courses json", []string{"courses", "--json"}, CmdCourses, func(t *testing.T, a Args) {
			assert.True(t, a.JSON)
		}},
		{"global flags anywhere", []string{"courses", "--api", "http://h:9000", "-v", "--no-reveal"}, CmdCourses, func(t *testing.T, a Args) {
			assert.Equal(t, "http://h:9000", a.APIURL)
			assert.True(t, a.Verbose)
			assert.True(t, a.NoReveal)
		}},
		{"config flag with equals", []string{"--config=/tmp/c.toml", "config", "path"}, CmdConfig, func(t *testing.T, a Args) {
			assert.Equal(t, "/tmp/c.toml", a.ConfigPath)
			assert.Equal(t, "path", a.Subcommand)
		}},
		{"upload", []string{"upload", "lecture.mp4"}, CmdUpload, func(t *testing.T, a Args) {
			assert.Equal(t, "lecture.mp4", a.File)
		}},
		{"delete yes before id", []string{"delete", "--yes", "c1"}, CmdDelete, func(t *testing.T, a Args) {
			assert.Equal(t, "c1", a.CourseID)
			assert.True(t, a.Yes)
		}},
		{"chat", []string{"chat", "--course", "c1"}, CmdChat, func(t *testing.T, a Args) {
			assert.Equal(t, "c1", a.CourseID)
		}},
		{"ask joins words", []string{"ask", "-c", "c1", "what", "is", "x?"}, CmdAsk, func(t *testing.T, a Args) {
			assert.Equal(t, "c1", a.CourseID)
			assert.Equal(t, "what is x?", a.Query)
		}},
		{"export defaults to markdown", []string{"export", "--course", "c1"}, CmdExport, func(t *testing.T, a Args) {
			assert.Equal(t, "md", a.Format)
			assert.Empty(t, a.Questions)
		}},
		{"export with questions", []string{"export", "--course", "c1", "--format=json", "--out", "t.json", "--open", "q1", "q2"}, CmdExport, func(t *testing.T, a Args) {
			assert.Equal(t, "json", a.Format)
			assert.Equal(t, "t.json", a.Output)
			assert.True(t, a.Open)
			assert.Equal(t, []string{"q1", "q2"}, a.Questions)
		}},
		{"config defaults to show", []string{"config"}, CmdConfig, func(t *testing.T, a Args) {
			assert.Equal(t, "show", a.Subcommand)
		}},
		{"config init force", []string{"config", "init", "--force"}, CmdConfig, func(t *testing.T, a Args) {
			assert.True(t, a.Force)
		}},
		{"version", []string{"version"}, CmdVersion, nil},
		{"help flag", []string{"--help"}, CmdHelp, nil},
		{"command is case insensitive", []string{"COURSES"}, CmdCourses, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd, args, err := Parse(tc.argv)
			require.NoError(t, err)
			assert.Equal(t, tc.cmd, cmd)
			if tc.check != nil {
				tc.check(t, args)
			}
		})
	}
}

func TestParse_UsageErrors(t *testing.T) {
	tests := []struct {
		argv []string
		want string
	}{
		{[]string{"upload"}, "video file"},
		{[]string{"delete"}, "course id"},
		{[]string{"chat"}, "--course"},
		{[]string{"ask", "question"}, "--course"},
		{[]string{"ask", "--course", "c1"}, "question"},
		{[]string{"export"}, "--course"},
		{[]string{"config", "edit"}, "edit"},
		{[]string{"frobnicate"}, "frobnicate"},
		{[]string{"--api"}, "requires a value"},
	}
	for _, tc := range tests {
		t.Run(strings.Join(tc.argv, " "), func(t *testing.T) {
			_, _, err := Parse(tc.argv)
			require.Error(t, err)
			assert.True(t, IsUsageError(err))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "dashboard", CmdDashboard.String())
	assert.Equal(t, "export", CmdExport.String())
	assert.Equal(t, "unknown", Command(99).String())
}

func TestPrintUsageAndVersion(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf)
	assert.Contains(t, buf.String(), "coursechat chat --course ID")
	assert.Contains(t, buf.String(), Version)

	buf.Reset()
	PrintVersion(&buf)
	assert.True(t, strings.HasPrefix(buf.String(), "coursechat version "))
}

// =============================================================================
// ERROR REPORTING TESTS
// =============================================================================

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, ExitSuccess, Report(&buf, nil))
	assert.Empty(t, buf.String())

	assert.Equal(t, ExitError, Report(&buf, errors.New("boom")))
	assert.Equal(t, "Error: boom\n", buf.String())

	buf.Reset()
	assert.Equal(t, ExitError, Report(&buf, usageErrorf("bad flag")))
	assert.Contains(t, buf.String(), "Error: bad flag")
	assert.Contains(t, buf.String(), "coursechat help")
}

// =============================================================================
// CONFIRMATION TESTS
// =============================================================================

func TestPromptYesNo(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tc := range tests {
		var out bytes.Buffer
		got, err := PromptYesNo(strings.NewReader(tc.input), &out, "Proceed?")
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
		assert.Equal(t, "Proceed? [y/N]: ", out.String())
	}
}

func TestRequireConfirmation(t *testing.T) {
	var out bytes.Buffer

	ok, err := RequireConfirmation(strings.NewReader(""), &out, "Delete?", ConfirmationOptions{Yes: true})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, out.String())

	_, err = RequireConfirmation(strings.NewReader("y\n"), &out, "Delete?", ConfirmationOptions{})
	assert.ErrorIs(t, err, ErrNotInteractive)

	ok, err = RequireConfirmation(strings.NewReader("y\n"), &out, "Delete?", ConfirmationOptions{Interactive: true})
	require.NoError(t, err)
	assert.True(t, ok)
}

// =============================================================================
// CONFIG LOADING TESTS
// =============================================================================

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	t.Setenv("COURSECHAT_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nbase_url = \"http://from-file:8000\"\n"), 0600))

	cfg, gotPath, err := loadConfig(Args{ConfigPath: path, APIURL: "http://from-flag:9000", NoReveal: true})
	require.NoError(t, err)
	assert.Equal(t, path, gotPath)
	assert.Equal(t, "http://from-flag:9000", cfg.API.BaseURL)
	assert.False(t, cfg.Reveal.Enabled)
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	t.Setenv("COURSECHAT_HOME", t.TempDir())

	_, _, err := loadConfig(Args{APIURL: "ftp://nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url")
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, _, err := loadConfig(Args{ConfigPath: filepath.Join(t.TempDir(), "missing.toml")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOutputStyle_PlainWhenNotATerminal(t *testing.T) {
	theme, f := outputStyle(config.Default(), false, 80, zap.NewNop())
	assert.Equal(t, "notty", theme.Mode)
	assert.Equal(t, "plain", f.Name())

	cfg := config.Default()
	cfg.UI.Theme = "notty"
	_, f = outputStyle(cfg, true, 80, zap.NewNop())
	assert.Equal(t, "plain", f.Name())
}

// =============================================================================
// COURSES TESTS
// =============================================================================

func TestHandleCourses_Table(t *testing.T) {
	env, tio := newTestEnv(t, twoCourses(), "")

	require.NoError(t, HandleCourses(env, Args{}))

	lines := strings.Split(strings.TrimRight(tio.out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[0], "NAME")
	assert.Equal(t, "c1                    Intro", lines[1])
	assert.Equal(t, "course-1700000000000  Advanced Topics", lines[2])
}

func TestHandleCourses_JSON(t *testing.T) {
	fake := twoCourses()
	fake.Courses = append(fake.Courses, backend.Course{ID: "c1", Name: "Duplicate"})
	env, tio := newTestEnv(t, fake, "")

	require.NoError(t, HandleCourses(env, Args{JSON: true}))

	var got []backend.Course
	require.NoError(t, json.Unmarshal(tio.out.Bytes(), &got))
	assert.Equal(t, twoCourses().Courses, got)
}

func TestHandleCourses_EmptyJSONIsArray(t *testing.T) {
	env, tio := newTestEnv(t, &backendtest.Fake{}, "")

	require.NoError(t, HandleCourses(env, Args{JSON: true}))
	assert.Equal(t, "[]\n", tio.out.String())
}

func TestHandleCourses_Empty(t *testing.T) {
	env, tio := newTestEnv(t, &backendtest.Fake{}, "")

	require.NoError(t, HandleCourses(env, Args{}))
	assert.Contains(t, tio.out.String(), "No courses yet")
}

func TestHandleCourses_FetchError(t *testing.T) {
	fake := &backendtest.Fake{ListFunc: func(context.Context) ([]backend.Course, error) {
		return nil, errors.New("connection refused")
	}}
	env, _ := newTestEnv(t, fake, "")

	err := HandleCourses(env, Args{})
	require.Error(t, err)
	assert.Equal(t, "list courses: connection refused", err.Error())
}

// =============================================================================
// UPLOAD TESTS
// =============================================================================

func TestHandleUpload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "week1.intro.mp4")
	require.NoError(t, os.WriteFile(path, mp4Header, 0644))

	fake := &backendtest.Fake{}
	env, tio := newTestEnv(t, fake, "")

	require.NoError(t, HandleUpload(env, Args{File: path}))

	uploads := fake.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, "week1", uploads[0].CourseName)
	assert.True(t, strings.HasPrefix(uploads[0].CourseID, "course-"))
	assert.Equal(t, "video/mp4", uploads[0].ContentType)

	out := tio.out.String()
	assert.Contains(t, out, `Uploading week1.intro.mp4 as "week1"`)
	assert.Contains(t, out, course.TitleUploaded)
	assert.Contains(t, out, "Course id: "+uploads[0].CourseID)
}

func TestHandleUpload_RejectsNonVideo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just some notes\n"), 0644))

	fake := &backendtest.Fake{}
	env, _ := newTestEnv(t, fake, "")

	err := HandleUpload(env, Args{File: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a video file")
	assert.Empty(t, fake.Uploads())
}

func TestHandleUpload_BackendFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lecture.mp4")
	require.NoError(t, os.WriteFile(path, mp4Header, 0644))

	fake := &backendtest.Fake{UploadFunc: func(context.Context, backend.Upload) error {
		return errors.New("already processed")
	}}
	env, tio := newTestEnv(t, fake, "")

	err := HandleUpload(env, Args{File: path})
	require.Error(t, err)
	assert.Equal(t, "upload lecture.mp4: already processed", err.Error())
	assert.NotContains(t, tio.out.String(), course.TitleUploaded)
}

// =============================================================================
// DELETE TESTS
// =============================================================================

func TestHandleDelete_WithYes(t *testing.T) {
	fake := twoCourses()
	env, tio := newTestEnv(t, fake, "")

	require.NoError(t, HandleDelete(env, Args{CourseID: "c1", Yes: true}))
	assert.Equal(t, []string{"c1"}, fake.Deletes())
	assert.Contains(t, tio.out.String(), course.TitleDeleted)
}

func TestHandleDelete_PromptAccepted(t *testing.T) {
	fake := twoCourses()
	env, tio := newTestEnv(t, fake, "y\n")
	env.Interactive = true

	require.NoError(t, HandleDelete(env, Args{CourseID: "c1"}))
	assert.Contains(t, tio.out.String(), course.ConfirmPrompt("Intro")+" [y/N]: ")
	assert.Equal(t, []string{"c1"}, fake.Deletes())
}

func TestHandleDelete_PromptDeclined(t *testing.T) {
	fake := twoCourses()
	env, tio := newTestEnv(t, fake, "n\n")
	env.Interactive = true

	require.NoError(t, HandleDelete(env, Args{CourseID: "c1"}))
	assert.Contains(t, tio.out.String(), "Cancelled.")
	assert.Empty(t, fake.Deletes())
}

func TestHandleDelete_NeedsYesWhenPiped(t *testing.T) {
	fake := twoCourses()
	env, _ := newTestEnv(t, fake, "y\n")

	err := HandleDelete(env, Args{CourseID: "c1"})
	assert.ErrorIs(t, err, ErrNotInteractive)
	assert.Empty(t, fake.Deletes())
}

func TestHandleDelete_UnknownCourse(t *testing.T) {
	fake := twoCourses()
	env, _ := newTestEnv(t, fake, "")

	err := HandleDelete(env, Args{CourseID: "nope", Yes: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"nope" not found`)
	assert.Empty(t, fake.Deletes())
}

func TestHandleDelete_BackendFailure(t *testing.T) {
	fake := twoCourses()
	fake.DeleteFunc = func(context.Context, string) error { return errors.New("locked") }
	env, tio := newTestEnv(t, fake, "")

	err := HandleDelete(env, Args{CourseID: "c1", Yes: true})
	require.Error(t, err)
	assert.Equal(t, "delete c1: locked", err.Error())
	assert.NotContains(t, tio.out.String(), course.TitleDeleted)
}

// =============================================================================
// ASK TESTS
// =============================================================================

func TestHandleAsk(t *testing.T) {
	fake := twoCourses()
	env, tio := newTestEnv(t, fake, "")

	require.NoError(t, HandleAsk(env, Args{CourseID: "c1", Query: "What is X?"}))
	assert.Equal(t, "answer: What is X?\n", tio.out.String())

	chats := fake.Chats()
	require.Len(t, chats, 1)
	assert.Equal(t, "c1", chats[0].CourseID)
	assert.Empty(t, chats[0].History)
}

func TestHandleAsk_TypewriterOutputIsComplete(t *testing.T) {
	fake := twoCourses()
	fake.ChatFunc = func(_ context.Context, q, _ string, _ []backend.ChatTurn) (*backend.ChatResponse, error) {
		return &backend.ChatResponse{Response: strings.Repeat("word ", 20) + "end"}, nil
	}
	env, tio := newTestEnv(t, fake, "")
	env.Config.Reveal.Enabled = true
	env.Config.Reveal.FrameMillis = 1
	env.Config.Reveal.RunesPerFrame = 7

	require.NoError(t, HandleAsk(env, Args{CourseID: "c1", Query: "q"}))
	assert.Equal(t, strings.Repeat("word ", 20)+"end\n", tio.out.String())
}

func TestHandleAsk_Failure(t *testing.T) {
	fake := twoCourses()
	fake.ChatFunc = func(context.Context, string, string, []backend.ChatTurn) (*backend.ChatResponse, error) {
		return nil, errors.New("model overloaded")
	}
	env, tio := newTestEnv(t, fake, "")

	err := HandleAsk(env, Args{CourseID: "c1", Query: "q"})
	require.Error(t, err)
	assert.Equal(t, "ask: model overloaded", err.Error())
	assert.Empty(t, tio.out.String())
}

func TestHandleAsk_UnknownCourse(t *testing.T) {
	fake := twoCourses()
	env, _ := newTestEnv(t, fake, "")

	err := HandleAsk(env, Args{CourseID: "missing", Query: "q"})
	require.Error(t, err)
	assert.Empty(t, fake.Chats())
}

// =============================================================================
// CHAT REPL TESTS
// =============================================================================

func TestHandleChat_PipedConversation(t *testing.T) {
	fake := twoCourses()
	env, tio := newTestEnv(t, fake, "first question\n\nsecond question\n/history\n/quit\nnever asked\n")

	require.NoError(t, HandleChat(env, Args{CourseID: "c1"}))

	out := tio.out.String()
	assert.Contains(t, out, "Chat about: Intro")
	assert.Contains(t, out, "You> first question")
	assert.Contains(t, out, "answer: first question")
	assert.Contains(t, out, "You: second question")

	chats := fake.Chats()
	require.Len(t, chats, 2)
	assert.Equal(t, []backend.ChatTurn{{User: "first question", Assistant: "answer: first question"}}, chats[1].History)
}

func TestHandleChat_FailureIsInline(t *testing.T) {
	fake := twoCourses()
	calls := 0
	fake.ChatFunc = func(_ context.Context, q, _ string, _ []backend.ChatTurn) (*backend.ChatResponse, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("timeout")
		}
		return &backend.ChatResponse{Response: "ok"}, nil
	}
	env, tio := newTestEnv(t, fake, "q1\nq2\n")

	require.NoError(t, HandleChat(env, Args{CourseID: "c1"}))

	out := tio.out.String()
	assert.Contains(t, out, session.ErrorReply)
	assert.Contains(t, out, "ok")

	chats := fake.Chats()
	require.Len(t, chats, 2)
	assert.Equal(t, []backend.ChatTurn{{User: "q1", Assistant: session.ErrorReply}}, chats[1].History)
}

func TestHandleChat_ClearAndUnknownCommand(t *testing.T) {
	fake := twoCourses()
	env, tio := newTestEnv(t, fake, "q1\n/clear\n/bogus\nq2\n")

	require.NoError(t, HandleChat(env, Args{CourseID: "c1"}))

	assert.Contains(t, tio.out.String(), "Conversation cleared.")
	assert.Contains(t, tio.err.String(), "unknown command /bogus")

	chats := fake.Chats()
	require.Len(t, chats, 2)
	assert.Empty(t, chats[1].History)
}

func TestHandleChat_Export(t *testing.T) {
	fake := twoCourses()
	out := filepath.Join(t.TempDir(), "chat.json")
	env, tio := newTestEnv(t, fake, "What is X?\n/export json "+out+"\n")

	require.NoError(t, HandleChat(env, Args{CourseID: "c1"}))
	assert.Contains(t, tio.out.String(), "Exported to "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var tr export.Transcript
	require.NoError(t, json.Unmarshal(data, &tr))
	assert.Equal(t, "c1", tr.CourseID)
	assert.Equal(t, []backend.ChatTurn{{User: "What is X?", Assistant: "answer: What is X?"}}, tr.Turns)
}

func TestHandleChat_ExportEmptyTranscript(t *testing.T) {
	env, tio := newTestEnv(t, twoCourses(), "/export md "+filepath.Join(t.TempDir(), "x.md")+"\n")

	require.NoError(t, HandleChat(env, Args{CourseID: "c1"}))
	assert.Contains(t, tio.err.String(), export.ErrEmptyTranscript.Error())
}

// =============================================================================
// EXPORT TESTS
// =============================================================================

func TestHandleExport_QuestionsFromStdin(t *testing.T) {
	fake := twoCourses()
	out := filepath.Join(t.TempDir(), "transcript.json")
	env, tio := newTestEnv(t, fake, "q1\n\nq2\n")

	require.NoError(t, HandleExport(env, Args{CourseID: "c1", Format: "json", Output: out}))
	assert.Contains(t, tio.out.String(), "Exported 2 turns to "+out)
	assert.Contains(t, tio.err.String(), "[2/2] q2")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var tr export.Transcript
	require.NoError(t, json.Unmarshal(data, &tr))
	assert.Equal(t, "Intro", tr.CourseName)
	assert.True(t, tr.ExportedAt.Equal(testNow))
	require.Len(t, tr.Turns, 2)
	assert.Equal(t, "answer: q2", tr.Turns[1].Assistant)
}

func TestHandleExport_MarkdownIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	env, tio := newTestEnv(t, twoCourses(), "")

	require.NoError(t, HandleExport(env, Args{CourseID: "c1", Format: "md", Output: dir, Questions: []string{"What is X?"}}))

	path := filepath.Join(dir, "chat_Intro_20250301_123000.md")
	assert.Contains(t, tio.out.String(), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Chat about: Intro")
	assert.Contains(t, string(data), "> What is X?")
}

func TestHandleExport_FailedQuestionStillExported(t *testing.T) {
	fake := twoCourses()
	fake.ChatFunc = func(_ context.Context, q, _ string, _ []backend.ChatTurn) (*backend.ChatResponse, error) {
		if q == "bad" {
			return nil, errors.New("boom")
		}
		return &backend.ChatResponse{Response: "fine"}, nil
	}
	out := filepath.Join(t.TempDir(), "t.json")
	env, _ := newTestEnv(t, fake, "")

	err := HandleExport(env, Args{CourseID: "c1", Format: "json", Output: out, Questions: []string{"good", "bad"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 questions failed")

	data, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	var tr export.Transcript
	require.NoError(t, json.Unmarshal(data, &tr))
	require.Len(t, tr.Turns, 2)
	assert.Equal(t, session.ErrorReply, tr.Turns[1].Assistant)
}

func TestHandleExport_Validation(t *testing.T) {
	env, _ := newTestEnv(t, twoCourses(), "")

	err := HandleExport(env, Args{CourseID: "c1", Format: "pdf", Questions: []string{"q"}})
	assert.True(t, IsUsageError(err))

	err = HandleExport(env, Args{CourseID: "c1", Format: "md"})
	assert.True(t, IsUsageError(err))
}

// =============================================================================
// CONFIG COMMAND TESTS
// =============================================================================

func TestHandleConfig_Show(t *testing.T) {
	env, tio := newTestEnv(t, &backendtest.Fake{}, "")
	env.Config.API.BaseURL = "http://backend:8000"

	require.NoError(t, HandleConfig(env, Args{Subcommand: "show"}))
	assert.Contains(t, tio.out.String(), "[api]")
	assert.Contains(t, tio.out.String(), `base_url = "http://backend:8000"`)
}

func TestHandleConfig_Path(t *testing.T) {
	env, tio := newTestEnv(t, &backendtest.Fake{}, "")

	require.NoError(t, HandleConfig(env, Args{Subcommand: "path"}))
	assert.Equal(t, env.ConfigPath+"\n", tio.out.String())
}

func TestHandleConfig_Init(t *testing.T) {
	t.Setenv("COURSECHAT_HOME", t.TempDir())
	env, _ := newTestEnv(t, &backendtest.Fake{}, "")

	require.NoError(t, HandleConfig(env, Args{Subcommand: "init"}))
	cfg, err := config.LoadFromPath(env.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, config.Default().API, cfg.API)

	err = HandleConfig(env, Args{Subcommand: "init"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, HandleConfig(env, Args{Subcommand: "init", Force: true}))
}
