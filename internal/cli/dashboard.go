// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/coursechat-tui/internal/config"
	"github.com/jeranaias/coursechat-tui/internal/ui/app"
)

// RunDashboard runs the full-screen dashboard until the user quits. Edits
// to the config file are applied while it runs.
func RunDashboard(env *Env) error {
	ctx, cancel := context.WithCancel(env.ctx())
	defer cancel()

	model := app.New(app.Options{
		Backend: env.Backend,
		Config:  env.Config,
		Logger:  env.Logger.Named("app"),
		Context: ctx,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if err := watchConfig(ctx, env, p.Send); err != nil {
		env.Logger.Warn("config hot reload disabled", zap.String("path", env.ConfigPath), zap.Error(err))
	}

	env.Logger.Info("dashboard started", zap.String("api", env.Config.API.BaseURL))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard: %w", err)
	}
	env.Logger.Info("dashboard stopped")
	return nil
}

// watchConfig delivers config reloads to send until ctx is done. A missing
// config file is not watched.
func watchConfig(ctx context.Context, env *Env, send func(tea.Msg)) error {
	if env.ConfigPath == "" {
		return nil
	}
	if _, err := os.Stat(env.ConfigPath); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	w, err := config.NewWatcher(env.ConfigPath, 0)
	if err != nil {
		return err
	}
	go func() {
		defer w.Close()
		err := w.Run(ctx, func(cfg *config.Config, err error) {
			if err == nil && env.noReveal {
				cfg.Reveal.Enabled = false
			}
			send(app.ConfigReloadedMsg{Config: cfg, Err: err})
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			env.Logger.Warn("config watcher stopped", zap.Error(err))
		}
	}()
	return nil
}
