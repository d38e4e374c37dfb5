// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the mediq command line: argument parsing, the
// one-shot ask command, the interactive REPL, catalog listing, MCP
// endpoint validation, and configuration management. The default
// invocation with no command launches the full-screen TUI.
package cli
