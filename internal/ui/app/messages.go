// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import "github.com/jeranaias/coursechat-tui/internal/config"

// ConfigReloadedMsg carries the result of a config file reload. Err is set
// when the edited file could not be loaded; the running config is kept.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}
