// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - interactive REPL chat command handler.
//
// Provides a line-oriented chat loop with history and in-session
// commands. For the full-screen experience use the default TUI; the
// REPL exists for SSH sessions and scripted use.
//
// Interactive commands:
//   /help               Show available commands
//   /clear              Start a new conversation
//   /sources            Show the active source selection
//   /tools              Show the active tool selection
//   /refs               Toggle reference output
//   /quit               Exit chat (also Ctrl+D)
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/openmedix/mediq-tui/internal/agent"
	"github.com/openmedix/mediq-tui/internal/config"
	"github.com/openmedix/mediq-tui/internal/model"
	"github.com/openmedix/mediq-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle  = lipgloss.NewStyle().Foreground(styles.Teal).Bold(true)
	welcomeStyle = lipgloss.NewStyle().Foreground(styles.Teal).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(styles.TextSecondary)
	commandStyle = lipgloss.NewStyle().Foreground(styles.Emerald)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// replInput wraps liner with persistent history.
type replInput struct {
	line        *liner.State
	historyFile string
}

func newREPLInput() *replInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	in := &replInput{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
	return in
}

func (in *replInput) close() {
	if f, err := os.Create(in.historyFile); err == nil {
		in.line.WriteHistory(f)
		f.Close()
	}
	in.line.Close()
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// HandleChat runs the interactive REPL.
func HandleChat(args Args) int {
	app := NewApp(args)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := app.LoadCatalogs(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
		return 1
	}

	input := newREPLInput()
	defer input.close()

	showRefs := app.Config.Chat.ShowReferences
	var history []agent.ChatTurn

	printWelcome(app)

	for {
		text, err := input.line.Prompt(promptStyle.Render("you> "))
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			fmt.Println()
			return 0
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
			return 1
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		input.line.AppendHistory(text)

		if strings.HasPrefix(text, "/") {
			if handleREPLCommand(app, text, &history, &showRefs) == replQuit {
				return 0
			}
			continue
		}

		history = append(history, agent.ChatTurn{Role: "user", Content: text})
		answer, ok := streamAnswer(app, history, showRefs, args.Quiet)
		if ok {
			history = append(history, agent.ChatTurn{
				Role:    model.RoleAgent.WireRole(),
				Content: answer.Content,
			})
		}
	}
}

// streamAnswer runs one question and prints the streamed answer.
// Ctrl+C during a stream cancels that answer only.
func streamAnswer(app *App, history []agent.ChatTurn, showRefs, quiet bool) (model.Message, bool) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	req := agent.ChatRequest{
		Messages: history,
		Sources:  app.Selection.SelectedSourceIDs(),
		Tools:    app.Selection.SelectedToolIDs(),
	}

	answer := model.NewAgentMessage()
	fmt.Print(welcomeStyle.Render("mediq> "))

	err := app.Client.ChatStream(ctx, req, func(patches []model.Patch) {
		for _, p := range patches {
			if tp, ok := p.(model.TextPatch); ok {
				fmt.Print(tp.Text)
			}
			if ts, ok := p.(model.ThoughtPatch); ok && !quiet {
				printToolProgress(ts)
			}
			answer = model.Apply(answer, p)
		}
	})
	fmt.Println()

	if err != nil {
		if ctx.Err() != nil {
			fmt.Println(infoStyle.Render("(answer interrupted)"))
		} else {
			fmt.Fprintln(os.Stderr, styles.RenderError("stream failed: "+err.Error()))
		}
		return answer, answer.Content != ""
	}

	if showRefs && !quiet {
		printEntities(answer.Entities)
		printReferences(answer.References)
	}
	return answer, true
}

// =============================================================================
// REPL COMMANDS
// =============================================================================

type replResult int

const (
	replHandled replResult = iota
	replQuit
)

func handleREPLCommand(app *App, text string, history *[]agent.ChatTurn, showRefs *bool) replResult {
	switch strings.Fields(text)[0] {
	case "/quit", "/q", "/exit":
		return replQuit

	case "/clear", "/c":
		*history = nil
		fmt.Println(infoStyle.Render("Conversation cleared."))

	case "/sources":
		for _, src := range app.Selection.Sources {
			marker := styles.StatusIndicators.Pending
			if app.Selection.SourceSelected(src.ID) {
				marker = styles.StatusIndicators.Active
			}
			fmt.Printf("  %s %s (%s)\n", marker, src.Name, src.ID)
		}

	case "/tools":
		if len(app.Selection.Tools) == 0 {
			fmt.Println(infoStyle.Render("No MCP tools configured."))
			break
		}
		for _, tool := range app.Selection.Tools {
			marker := styles.StatusIndicators.Pending
			if app.Selection.ToolSelected(tool.ID) {
				marker = styles.StatusIndicators.Active
			}
			fmt.Printf("  %s %s (%s)\n", marker, tool.Name, tool.ID)
		}

	case "/refs":
		*showRefs = !*showRefs
		if *showRefs {
			fmt.Println(infoStyle.Render("References on."))
		} else {
			fmt.Println(infoStyle.Render("References off."))
		}

	case "/help", "/h":
		printREPLHelp()

	default:
		fmt.Println(infoStyle.Render("Unknown command. Type /help for commands."))
	}
	return replHandled
}

func printWelcome(app *App) {
	fmt.Println(welcomeStyle.Render("mediq chat"))
	fmt.Println(infoStyle.Render("Selection: " + app.Selection.Summary() +
		". Type /help for commands, Ctrl+D to exit."))
	if !app.Online {
		fmt.Println(styles.RenderWarning("offline: using cached catalogs"))
	}
	fmt.Println()
}

func printREPLHelp() {
	rows := []struct{ cmd, desc string }{
		{"/clear", "start a new conversation"},
		{"/sources", "show the source selection"},
		{"/tools", "show the tool selection"},
		{"/refs", "toggle reference output"},
		{"/quit", "exit chat"},
	}
	for _, row := range rows {
		fmt.Printf("  %s  %s\n", commandStyle.Render(row.cmd), row.desc)
	}
}
