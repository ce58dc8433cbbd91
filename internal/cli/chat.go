// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/coursechat-tui/internal/backend"
	"github.com/jeranaias/coursechat-tui/internal/config"
	"github.com/jeranaias/coursechat-tui/internal/export"
	"github.com/jeranaias/coursechat-tui/internal/reveal"
	"github.com/jeranaias/coursechat-tui/internal/session"
)

const chatPrompt = "You> "

const chatHelp = `Chat commands:
  /help                     Show this help
  /history                  Show the conversation so far
  /clear                    Start over with the same course
  /export [FORMAT] [FILE]   Export the conversation (md, html or json)
  /quit                     Leave (Ctrl+D works too)`

// =============================================================================
// LINE INPUT
// =============================================================================

// lineReader reads one line of user input per call.
type lineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// linerReader provides line editing and persistent history on a terminal.
type linerReader struct {
	line        *liner.State
	historyFile string
}

func newLinerReader(historyFile string) *linerReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &linerReader{line: line, historyFile: historyFile}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *linerReader) Prompt(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history with owner-only permissions and restores the
// terminal.
func (r *linerReader) Close() error {
	defer r.line.Close()

	if r.historyFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.historyFile), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = r.line.WriteHistory(f)
	return err
}

// scanReader reads piped input without prompting.
type scanReader struct {
	sc *bufio.Scanner
}

func newScanReader(in io.Reader) *scanReader {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &scanReader{sc: sc}
}

func (r *scanReader) Prompt(string) (string, error) {
	if r.sc.Scan() {
		return r.sc.Text(), nil
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (r *scanReader) Close() error { return nil }

// readLines returns the non-blank lines of in.
func readLines(in io.Reader) ([]string, error) {
	r := newScanReader(in)
	var lines []string
	for {
		line, err := r.Prompt("")
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
}

// =============================================================================
// QUESTIONS
// =============================================================================

// newSession creates a chat session for c. Its reveal is instant; the CLI
// paces output itself with reveal.Play.
func newSession(env *Env, c backend.Course) *session.Session {
	s := session.New(env.Backend,
		session.WithLogger(env.Logger.Named("session")),
		session.WithFormatter(env.Formatter),
		session.WithPace(0, -1),
		session.WithContext(env.ctx()))
	s.Reset(c)
	return s
}

// askQuestion submits q and waits for the answer. It returns the formatted
// answer, or session.ErrorReply with the request error.
func askQuestion(env *Env, s *session.Session, q string) (string, error) {
	cmd := s.Submit(q)
	if cmd == nil {
		return "", errors.New("question is empty")
	}
	err := drive(cmd, s.Update)
	return s.AnswerView(len(s.Turns()) - 1), err
}

// typeOut prints text with the configured typewriter pacing.
func (e *Env) typeOut(text string) error {
	delay, step := e.pace()
	if step < 0 {
		fmt.Fprintln(e.Stdout, text)
		return nil
	}

	err := reveal.Play(e.ctx(), reveal.NewSequence(text, step), delay, func(chunk string) {
		io.WriteString(e.Stdout, chunk)
	})
	if err != nil {
		// Leave the terminal unstyled after an interrupted reveal.
		io.WriteString(e.Stdout, reveal.ResetSGR)
	}
	fmt.Fprintln(e.Stdout)
	return err
}

// HandleAsk asks a single question and prints the answer.
func HandleAsk(env *Env, args Args) error {
	c, err := findCourse(env, args.CourseID)
	if err != nil {
		return err
	}

	s := newSession(env, c)
	answer, err := askQuestion(env, s, args.Query)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	return env.typeOut(answer)
}

// =============================================================================
// CHAT REPL
// =============================================================================

// HandleChat runs the interactive chat for one course. On a terminal the
// input has line editing and history; piped input is read line by line.
func HandleChat(env *Env, args Args) error {
	c, err := findCourse(env, args.CourseID)
	if err != nil {
		return err
	}

	var in lineReader
	if env.Interactive {
		historyFile, err := config.HistoryPath()
		if err != nil {
			env.Logger.Warn("chat history disabled", zap.Error(err))
		}
		in = newLinerReader(historyFile)
	} else {
		in = newScanReader(env.Stdin)
	}
	defer func() {
		if err := in.Close(); err != nil {
			env.Logger.Warn("saving chat history failed", zap.Error(err))
		}
	}()

	r := &chatREPL{env: env, course: c, session: newSession(env, c)}
	return r.run(in)
}

type chatREPL struct {
	env     *Env
	course  backend.Course
	session *session.Session
}

func (r *chatREPL) run(in lineReader) error {
	env := r.env
	fmt.Fprintln(env.Stdout, env.Theme.ChatHeader.Render("Chat about: "+displayName(r.course)))
	if env.Interactive {
		fmt.Fprintln(env.Stdout, env.Theme.EmptyHint.Render("Type /help for commands, Ctrl+D to leave."))
	}

	for {
		line, err := in.Prompt(chatPrompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			fmt.Fprintln(env.Stdout, "^C")
			continue
		case errors.Is(err, io.EOF):
			if env.Interactive {
				fmt.Fprintln(env.Stdout)
			}
			return nil
		case err != nil:
			return fmt.Errorf("read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := r.command(line)
			if err != nil {
				fmt.Fprintln(env.Stderr, env.Theme.RenderStatus(false, err.Error()))
			}
			if quit {
				return nil
			}
			continue
		}

		if err := r.ask(line); err != nil {
			return err
		}
	}
}

// ask sends one question. A failed request becomes an inline error turn;
// only an interrupt ends the loop.
func (r *chatREPL) ask(q string) error {
	env := r.env
	if !env.Interactive {
		fmt.Fprintln(env.Stdout, env.Theme.Question.Render(chatPrompt+q))
	}

	answer, err := askQuestion(env, r.session, q)
	if errCancelled(err) {
		return err
	}
	if err != nil {
		env.Logger.Warn("chat request failed", zap.String("course_id", r.course.ID), zap.Error(err))
		fmt.Fprintln(env.Stdout, env.Theme.ErrorStyle.Render(answer))
		return nil
	}

	fmt.Fprintln(env.Stdout, env.Theme.ChatHeader.Render("Assistant:"))
	if err := env.typeOut(answer); errCancelled(err) {
		return err
	}
	return nil
}

// command runs a slash command and reports whether the REPL should end.
func (r *chatREPL) command(line string) (bool, error) {
	env := r.env
	fields := strings.Fields(line)
	name, rest := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "/quit", "/exit", "/q":
		return true, nil

	case "/help", "/h", "/?":
		fmt.Fprintln(env.Stdout, chatHelp)

	case "/history":
		turns := r.session.Completed()
		if len(turns) == 0 {
			fmt.Fprintln(env.Stdout, env.Theme.EmptyHint.Render("No questions yet."))
			return false, nil
		}
		for i := range turns {
			fmt.Fprintln(env.Stdout, env.Theme.Question.Render("You: "+r.session.QuestionView(i)))
			fmt.Fprintln(env.Stdout, r.session.AnswerView(i))
			fmt.Fprintln(env.Stdout)
		}

	case "/clear", "/c":
		r.session.Reset(r.course)
		fmt.Fprintln(env.Stdout, env.Theme.RenderStatus(true, "Conversation cleared."))

	case "/export":
		format, out := "", ""
		if len(rest) > 0 {
			format = rest[0]
		}
		if len(rest) > 1 {
			out = rest[1]
		}
		path, err := exportSession(env, r.session, format, out, false)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(env.Stdout, env.Theme.RenderStatus(true, "Exported to "+path))

	default:
		return false, fmt.Errorf("unknown command %s (try /help)", name)
	}
	return false, nil
}

// =============================================================================
// EXPORT
// =============================================================================

// exportSession writes the completed turns of s. An empty out picks a
// file name in the current directory; an existing directory receives the
// generated name.
func exportSession(env *Env, s *session.Session, formatName, out string, open bool) (string, error) {
	if formatName == "" {
		formatName = string(export.FormatMarkdown)
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return "", err
	}
	t, err := export.FromSession(s, env.now())
	if err != nil {
		return "", err
	}

	opts := export.DefaultOptions()
	opts.Open = open
	if env.Theme.Mode != "notty" && !env.Theme.IsDark {
		opts.Theme = "light"
	}
	exporter, err := export.New(format, opts)
	if err != nil {
		return "", err
	}

	if out == "" {
		return export.ToDir(t, exporter, opts)
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		opts.OutputDir = out
		return export.ToDir(t, exporter, opts)
	}
	if len(t.Turns) == 0 {
		return "", fmt.Errorf("export failed: %w", export.ErrEmptyTranscript)
	}
	if err := export.ToFile(t, exporter, out); err != nil {
		return "", err
	}
	if open {
		if err := export.OpenFile(out); err != nil {
			return out, fmt.Errorf("exported to %s but could not open it: %w", out, err)
		}
	}
	return out, nil
}

// HandleExport asks every question in order, then exports the transcript.
// Questions come from the arguments, or one per line on stdin.
func HandleExport(env *Env, args Args) error {
	if args.Format != "" {
		if _, err := export.ParseFormat(args.Format); err != nil {
			return usageErrorf("%v", err)
		}
	}

	questions := args.Questions
	if len(questions) == 0 {
		lines, err := readLines(env.Stdin)
		if err != nil {
			return fmt.Errorf("read questions: %w", err)
		}
		questions = lines
	}
	if len(questions) == 0 {
		return usageErrorf("export needs questions as arguments or on stdin")
	}

	c, err := findCourse(env, args.CourseID)
	if err != nil {
		return err
	}
	s := newSession(env, c)

	failed := 0
	for i, q := range questions {
		fmt.Fprintf(env.Stderr, "[%d/%d] %s\n", i+1, len(questions), q)
		if _, err := askQuestion(env, s, q); err != nil {
			if errCancelled(err) {
				return err
			}
			failed++
			env.Logger.Warn("chat request failed", zap.Int("question", i+1), zap.Error(err))
		}
	}

	path, err := exportSession(env, s, args.Format, args.Output, args.Open)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "Exported %d turns to %s\n", len(questions), path)
	if failed > 0 {
		return fmt.Errorf("%d of %d questions failed; their turns hold %q", failed, len(questions), session.ErrorReply)
	}
	return nil
}
