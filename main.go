// coursechat - a terminal client for chatting with course videos.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/coursechat-tui/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	cmd, args, err := cli.Parse(argv)
	if err != nil {
		return cli.Report(os.Stderr, err)
	}

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
		return cli.ExitSuccess
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := cli.NewEnv(ctx, args)
	if err != nil {
		return cli.Report(os.Stderr, err)
	}
	defer env.Close()

	switch cmd {
	case cli.CmdDashboard:
		err = cli.RunDashboard(env)
	case cli.CmdCourses:
		err = cli.HandleCourses(env, args)
	case cli.CmdUpload:
		err = cli.HandleUpload(env, args)
	case cli.CmdDelete:
		err = cli.HandleDelete(env, args)
	case cli.CmdChat:
		err = cli.HandleChat(env, args)
	case cli.CmdAsk:
		err = cli.HandleAsk(env, args)
	case cli.CmdExport:
		err = cli.HandleExport(env, args)
	case cli.CmdConfig:
		err = cli.HandleConfig(env, args)
	}
	return cli.Report(os.Stderr, err)
}
