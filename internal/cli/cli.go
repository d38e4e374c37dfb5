// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - command parsing and dispatch for mediq.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.3.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSources
	CmdTools
	CmdValidate
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// Args carries parsed global flags plus the per-command parser.
type Args struct {
	Gateway string
	UserID  string
	Quiet   bool
	Verbose bool
	JSON    bool

	Parser *ArgParser
}

const usageText = `mediq - medical question answering in your terminal

Usage:
  mediq                             Start the TUI
  mediq ask "question"              Ask a single question and exit
  mediq chat                        Interactive REPL chat
  mediq sources                     List knowledge sources
  mediq sources select id,id        Choose sources for future questions
  mediq tools                       List MCP tools
  mediq tools select id,id          Choose tools for future questions
  mediq validate <url>              Validate an MCP endpoint
  mediq config show                 Show configuration
  mediq config get <key>            Read one setting
  mediq config set <key> <value>    Change one setting
  mediq config path                 Print config file location
  mediq version                     Print version information

Ask flags:
  --plain                           Disable markdown rendering
  --no-refs                         Hide references and entities
  --json                            Emit the final message as JSON
  --sources id,id                   Override source selection
  --tools id,id                     Override tool selection

Global flags:
  --gateway URL                     Override the backend gateway URL
  --user ID                         Override the user id sent upstream
  -q, --quiet                       Minimal output
  -v, --verbose                     Debug output

Environment:
  MEDIQ_GATEWAY_URL, MEDIQ_USER_ID, MEDIQ_THEME, MEDIQ_DB

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("mediq version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments into a command and its args.
func Parse() (Command, Args) {
	return parseFrom(os.Args[1:])
}

func parseFrom(raw []string) (Command, Args) {
	remaining, args := parseGlobalFlags(raw)

	if len(remaining) == 0 {
		args.Parser = NewArgParser(nil)
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	args.Parser = NewArgParser(remaining[1:])

	switch cmd {
	case "tui":
		return CmdTUI, args
	case "ask":
		return CmdAsk, args
	case "chat":
		return CmdChat, args
	case "sources", "source":
		return CmdSources, args
	case "tools", "tool", "mcp":
		return CmdTools, args
	case "validate":
		return CmdValidate, args
	case "config":
		return CmdConfig, args
	case "version", "--version", "-V":
		return CmdVersion, args
	case "help", "--help", "-h":
		return CmdHelp, args
	default:
		return CmdUnknown, args
	}
}

// parseGlobalFlags extracts flags that apply to every command. The first
// non-flag argument ends global parsing so command flags pass through.
func parseGlobalFlags(raw []string) ([]string, Args) {
	var args Args

	i := 0
	for i < len(raw) {
		switch raw[i] {
		case "--gateway":
			if i+1 < len(raw) {
				args.Gateway = raw[i+1]
				i += 2
				continue
			}
			i++
		case "--user":
			if i+1 < len(raw) {
				args.UserID = raw[i+1]
				i += 2
				continue
			}
			i++
		case "-q", "--quiet":
			args.Quiet = true
			i++
		case "-v", "--verbose":
			args.Verbose = true
			i++
		case "--json":
			args.JSON = true
			i++
		default:
			return raw[i:], args
		}
	}
	return nil, args
}
