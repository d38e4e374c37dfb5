// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sources.go - catalog listing, selection, and MCP endpoint validation.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/openmedix/mediq-tui/internal/ui/styles"
)

// =============================================================================
// SOURCES COMMAND
// =============================================================================

// HandleSources lists or selects the knowledge source catalog.
//
//	mediq sources                 list sources, selected ones marked
//	mediq sources select id,id    persist a new selection
func HandleSources(args Args) int {
	app := NewApp(args)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.LoadCatalogs(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
		return 1
	}

	if args.Parser.Subcommand() == "select" {
		ids := splitCSV(strings.Join(args.Parser.PositionalFrom(1), ","))
		if len(ids) == 0 {
			fmt.Fprintln(os.Stderr, styles.RenderError("usage: mediq sources select id,id"))
			return 1
		}
		app.SaveSelection(app.Selection.RestoreSources(ids))
		fmt.Println(styles.RenderSuccess("Selection saved: " + app.Selection.Summary()))
		return 0
	}

	if args.JSON {
		return printJSON(app.Selection.Sources)
	}

	for _, src := range app.Selection.Sources {
		marker := styles.StatusIndicators.Pending
		if app.Selection.SourceSelected(src.ID) {
			marker = styles.StatusIndicators.Active
		}
		line := fmt.Sprintf("%s %s (%s)", marker, src.Name, src.ID)
		if src.Description != "" && !args.Quiet {
			line += "\n    " + src.Description
		}
		fmt.Println(line)
	}
	if !app.Online {
		fmt.Println(styles.RenderWarning("offline: catalog from local cache"))
	}
	return 0
}

// =============================================================================
// TOOLS COMMAND
// =============================================================================

// HandleTools lists or selects the MCP tool catalog.
func HandleTools(args Args) int {
	app := NewApp(args)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.LoadCatalogs(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
		return 1
	}

	if args.Parser.Subcommand() == "select" {
		ids := splitCSV(strings.Join(args.Parser.PositionalFrom(1), ","))
		if len(ids) == 0 {
			fmt.Fprintln(os.Stderr, styles.RenderError("usage: mediq tools select id,id"))
			return 1
		}
		app.SaveSelection(app.Selection.RestoreTools(ids))
		fmt.Println(styles.RenderSuccess("Selection saved: " + app.Selection.Summary()))
		return 0
	}

	if args.JSON {
		return printJSON(app.Selection.Tools)
	}

	if len(app.Selection.Tools) == 0 {
		fmt.Println("No MCP tools configured on the gateway.")
		return 0
	}
	for _, tool := range app.Selection.Tools {
		marker := styles.StatusIndicators.Pending
		if app.Selection.ToolSelected(tool.ID) {
			marker = styles.StatusIndicators.Active
		}
		line := fmt.Sprintf("%s %s (%s)", marker, tool.Name, tool.ID)
		if tool.URL != "" && !args.Quiet {
			line += "\n    " + tool.URL
		}
		fmt.Println(line)
	}
	return 0
}

// =============================================================================
// VALIDATE COMMAND
// =============================================================================

// HandleValidate probes an MCP endpoint through the gateway and records
// successful probes locally.
func HandleValidate(args Args) int {
	endpoint := args.Parser.Positional(0)
	if endpoint == "" {
		fmt.Fprintln(os.Stderr, styles.RenderError("usage: mediq validate <url>"))
		return 1
	}

	app := NewApp(args)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := app.Client.ValidateTool(ctx, endpoint)
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.RenderError("validation failed: "+err.Error()))
		return 1
	}

	if args.JSON {
		return printJSON(result)
	}

	if !result.Valid() {
		msg := result.Message
		if msg == "" {
			msg = "endpoint rejected"
		}
		fmt.Println(styles.RenderError(msg))
		return 1
	}

	fmt.Println(styles.RenderSuccess("endpoint valid"))
	for _, tool := range result.Tools {
		fmt.Println("  - " + tool)
	}

	if app.Storage != nil {
		if err := app.Storage.RecordValidation(endpoint, result.Tools); err == nil {
			fmt.Println(infoStyle.Render("Recorded in local history."))
		}
	}
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
		return 1
	}
	return 0
}
