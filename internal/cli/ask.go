// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - single question command handler.
//
// Streams the answer to stdout as it arrives. Tool progress goes to
// stderr so piped output stays clean; references and linked entities
// print after the answer unless --no-refs is given.
//
// Examples:
//   mediq ask "What is the maximum daily dose of ibuprofen?"
//   mediq ask --sources pubmed,drugbank "Interactions of warfarin?"
//   mediq ask --json "What causes migraines?" > answer.json
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/openmedix/mediq-tui/internal/agent"
	"github.com/openmedix/mediq-tui/internal/model"
	"github.com/openmedix/mediq-tui/internal/ui/styles"
)

// =============================================================================
// MARKDOWN OUTPUT
// =============================================================================

// renderMarkdown renders the finished answer for terminal display.
// Returns the raw content when rendering is unavailable.
func renderMarkdown(content string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// =============================================================================
// ASK COMMAND
// =============================================================================

// HandleAsk runs a single question against the gateway.
func HandleAsk(args Args) int {
	question := strings.Join(args.Parser.PositionalFrom(0), " ")
	if strings.TrimSpace(question) == "" {
		fmt.Fprintln(os.Stderr, styles.RenderError("usage: mediq ask \"your question\""))
		return 1
	}

	app := NewApp(args)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.LoadCatalogs(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
		return 1
	}

	sourceIDs := app.Selection.SelectedSourceIDs()
	toolIDs := app.Selection.SelectedToolIDs()
	if override := args.Parser.Flag("sources"); override != "" {
		sourceIDs = splitCSV(override)
	}
	if override := args.Parser.Flag("tools"); override != "" {
		toolIDs = splitCSV(override)
	}

	req := agent.ChatRequest{
		Messages: []agent.ChatTurn{{Role: "user", Content: question}},
		Sources:  sourceIDs,
		Tools:    toolIDs,
	}

	answer := model.NewAgentMessage()
	markdownOut := !args.Parser.BoolFlag("plain") &&
		app.Config.Chat.MarkdownRendering && stdoutIsTerminal() && !args.JSON

	// Stream plain text live; markdown and JSON modes buffer and render
	// the finished message.
	live := !markdownOut && !args.JSON

	err := app.Client.ChatStream(ctx, req, func(patches []model.Patch) {
		for _, p := range patches {
			if live {
				if tp, ok := p.(model.TextPatch); ok {
					fmt.Print(tp.Text)
				}
			}
			if ts, ok := p.(model.ThoughtPatch); ok && !args.Quiet {
				printToolProgress(ts)
			}
			answer = model.Apply(answer, p)
		}
	})
	if err != nil {
		if live && answer.Content != "" {
			fmt.Println()
		}
		fmt.Fprintln(os.Stderr, styles.RenderError("stream failed: "+err.Error()))
		if answer.Content == "" {
			return 1
		}
	}

	if args.JSON {
		return printAnswerJSON(answer)
	}

	if markdownOut {
		fmt.Println(renderMarkdown(answer.Content))
	} else if live {
		fmt.Println()
	}

	if !args.Parser.BoolFlag("no-refs") && !args.Quiet {
		printEntities(answer.Entities)
		printReferences(answer.References)
	}
	return 0
}

func printToolProgress(patch model.ThoughtPatch) {
	for _, tool := range patch.Tools {
		marker := styles.StatusIndicators.Pending
		if tool.Status == model.StatusDone {
			marker = styles.StatusIndicators.Success
		}
		fmt.Fprintf(os.Stderr, "%s %s\n", marker, tool.Display)
	}
}

func printEntities(entities []model.EntityResult) {
	if len(entities) == 0 {
		return
	}
	fmt.Println("\nLinked entities:")
	for _, e := range entities {
		line := fmt.Sprintf("  - %s [%s]", e.Name, e.Category)
		if e.Description != "" {
			line += ": " + truncateLine(e.Description, 100)
		}
		fmt.Println(line)
	}
}

func printReferences(groups []model.ReferenceGroup) {
	if len(groups) == 0 {
		return
	}
	fmt.Println("\nReferences:")
	for _, group := range groups {
		fmt.Printf("  %s:\n", group.Name)
		for _, ref := range group.Refs {
			line := "    - " + ref.Title
			if ref.URL != "" {
				line += " <" + ref.URL + ">"
			}
			fmt.Println(line)
		}
	}
}

func printAnswerJSON(answer model.Message) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(answer); err != nil {
		fmt.Fprintln(os.Stderr, styles.RenderError("encoding answer failed: "+err.Error()))
		return 1
	}
	return 0
}

// =============================================================================
// SMALL HELPERS
// =============================================================================

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func truncateLine(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
