// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for coursechat.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Backend URL, timeouts and client-side rate limit
//   - RevealConfig: Typewriter pacing for answers
//   - UIConfig: Theme, wrap width and notification lifetime
//   - LogConfig: Rotated log file settings
//   - Watcher: Debounced hot reload of the config file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (COURSECHAT_*), including those from ./.env
//   - ~/.coursechat/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client := backend.NewClient(&backend.ClientConfig{
//	    BaseURL: cfg.API.BaseURL,
//	    Timeout: cfg.APITimeout(),
//	})
package config
