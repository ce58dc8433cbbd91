// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/coursechat-tui/internal/config"
)

// HandleConfig shows the effective configuration, prints the config file
// path, or writes a default config file.
func HandleConfig(env *Env, args Args) error {
	switch args.Subcommand {
	case "", "show":
		enc := toml.NewEncoder(env.Stdout)
		enc.Indent = ""
		if err := enc.Encode(env.Config); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		return nil

	case "path":
		fmt.Fprintln(env.Stdout, env.ConfigPath)
		return nil

	case "init":
		return initConfig(env, args.Force)
	}
	return usageErrorf("unknown config subcommand %q", args.Subcommand)
}

// initConfig writes the default configuration. An existing file is only
// replaced with --force.
func initConfig(env *Env, force bool) error {
	path := env.ConfigPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	_, err := os.Stat(path)
	switch {
	case err == nil && !force:
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return err
	}

	if err := config.SaveTOML(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, env.Theme.RenderStatus(true, "Wrote "+path))
	return nil
}
