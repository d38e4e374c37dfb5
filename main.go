// mediq - a terminal interface for the MedIQ medical question assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	"github.com/openmedix/mediq-tui/internal/cli"
	"github.com/openmedix/mediq-tui/internal/config"
)

// Version information (set at build time)
var (
	Version   = "0.3.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	// Load config up front so every command sees the same settings.
	// A broken config file falls back to defaults with a warning
	// rather than locking the user out of the tool.
	if config.Global() == nil {
		fmt.Fprintln(os.Stderr, "warning: invalid config file, using defaults")
		config.SetGlobal(config.Default())
	}

	os.Exit(cli.Run(cmd, args))
}
