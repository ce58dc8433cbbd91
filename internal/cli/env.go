// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/coursechat-tui/internal/backend"
	"github.com/jeranaias/coursechat-tui/internal/config"
	"github.com/jeranaias/coursechat-tui/internal/logging"
	"github.com/jeranaias/coursechat-tui/internal/render"
	"github.com/jeranaias/coursechat-tui/internal/ui/styles"
)

// =============================================================================
// ENVIRONMENT
// =============================================================================

// Env is what every command handler runs against.
type Env struct {
	Config *config.Config
	// ConfigPath is the config file in effect, whether or not it exists.
	ConfigPath string

	Backend backend.Backend
	Logger  *zap.Logger

	// Theme styles prompts and labels; Formatter renders answers.
	Theme     *styles.Theme
	Formatter render.Formatter

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive is true when stdin is a terminal.
	Interactive bool

	Context context.Context
	Now     func() time.Time

	// noReveal survives config reloads.
	noReveal bool
}

// NewEnv loads the configuration, applies the global flags and connects
// the logger and the backend client to the process streams.
func NewEnv(ctx context.Context, args Args) (*Env, error) {
	cfg, path, err := loadConfig(args)
	if err != nil {
		return nil, err
	}

	logOpts := logging.Options{
		Path:       cfg.Log.Path,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}
	if args.Verbose {
		logOpts.Console = os.Stderr
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	client := backend.NewClient(&backend.ClientConfig{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.APITimeout(),
		UploadTimeout:     cfg.UploadTimeout(),
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
		UserAgent:         "coursechat/" + Version,
	}, backend.WithLogger(logger.Named("backend")))

	color := IsStdoutTTY()
	env := &Env{
		Config:      cfg,
		ConfigPath:  path,
		Backend:     client,
		Logger:      logger,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: IsTTY(),
		Context:     ctx,
		Now:         time.Now,
		noReveal:    args.NoReveal,
	}
	env.Theme, env.Formatter = outputStyle(cfg, color, GetTerminalWidth(os.Stdout), logger)

	logger.Debug("environment ready",
		zap.String("config", path),
		zap.String("api", cfg.API.BaseURL),
		zap.Bool("reveal", cfg.Reveal.Enabled),
		zap.Bool("color", color))
	return env, nil
}

// loadConfig loads the file named by --config, or the default file when it
// exists, then applies --api and --no-reveal.
func loadConfig(args Args) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if args.ConfigPath != "" {
		path = args.ConfigPath
		cfg, err = config.LoadFromPath(path)
	} else {
		if path, err = config.ConfigPath(); err != nil {
			return nil, "", err
		}
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, path, fmt.Errorf("config: %w", err)
	}

	if args.APIURL != "" {
		cfg.API.BaseURL = args.APIURL
	}
	if args.NoReveal {
		cfg.Reveal.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("config: %w", err)
	}
	return cfg, path, nil
}

// outputStyle picks the theme and answer formatter for the CLI. Output
// that is not a terminal gets plain text.
func outputStyle(cfg *config.Config, color bool, width int, logger *zap.Logger) (*styles.Theme, render.Formatter) {
	if !color || cfg.UI.Theme == "notty" {
		return styles.NewTheme("notty"), render.PlainFormatter{}
	}

	if cfg.UI.WordWrap > 0 {
		width = cfg.UI.WordWrap
	}
	theme := styles.NewTheme(cfg.UI.Theme)
	f, err := render.NewTerminalFormatter(cfg.UI.Theme, width)
	if err != nil {
		logger.Warn("terminal formatter unavailable, using plain text", zap.Error(err))
		return theme, render.PlainFormatter{}
	}
	return theme, f
}

// Close flushes the logger.
func (e *Env) Close() {
	// Sync fails on some consoles; nothing useful can be done about it.
	_ = e.Logger.Sync()
}

// pace returns the reveal delay and step; a disabled reveal is instant.
func (e *Env) pace() (time.Duration, int) {
	if !e.Config.Reveal.Enabled {
		return 0, -1
	}
	return e.Config.FrameDelay(), e.Config.Reveal.RunesPerFrame
}

func (e *Env) ctx() context.Context {
	if e.Context == nil {
		return context.Background()
	}
	return e.Context
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// errCancelled reports whether err is the result of the user interrupting.
func errCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
