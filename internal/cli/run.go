// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// run.go - command dispatch.
package cli

import (
	"fmt"
	"os"

	"github.com/openmedix/mediq-tui/internal/ui/styles"
)

// Run dispatches a parsed command and returns the process exit code.
func Run(cmd Command, args Args) int {
	switch cmd {
	case CmdTUI:
		return HandleTUI(args)
	case CmdAsk:
		return HandleAsk(args)
	case CmdChat:
		return HandleChat(args)
	case CmdSources:
		return HandleSources(args)
	case CmdTools:
		return HandleTools(args)
	case CmdValidate:
		return HandleValidate(args)
	case CmdConfig:
		return HandleConfig(args)
	case CmdVersion:
		PrintVersion()
		return 0
	case CmdHelp:
		PrintUsage()
		return 0
	default:
		fmt.Fprintln(os.Stderr, styles.RenderError("unknown command; run 'mediq help'"))
		return 1
	}
}
