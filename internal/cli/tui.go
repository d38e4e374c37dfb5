// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - full-screen TUI launcher.
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/openmedix/mediq-tui/internal/config"
	"github.com/openmedix/mediq-tui/internal/selection"
	"github.com/openmedix/mediq-tui/internal/store"
	"github.com/openmedix/mediq-tui/internal/ui/chat"
	"github.com/openmedix/mediq-tui/internal/ui/styles"
)

// HandleTUI starts the full-screen chat interface.
func HandleTUI(args Args) int {
	app := NewApp(args)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.LoadCatalogs(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
		return 1
	}

	st := store.New(app.Client)
	defer st.Stop()
	st.SetSelection(app.Selection.SelectedSourceIDs(), app.Selection.SelectedToolIDs())

	view := chat.New(st, app.Selection, app.Config)
	view.SetSelectionCallback(func(sel selection.State) {
		app.SaveSelection(sel)
		st.SetSelection(sel.SelectedSourceIDs(), sel.SelectedToolIDs())
	})

	program := tea.NewProgram(view, tea.WithAltScreen())

	// Hot-reload config edits while the TUI runs. Reloads update the
	// global config; the view gets a notice so the user knows.
	watcher, err := config.NewWatcher(func(*config.Config) {
		program.Send(chat.NoticeMsg{Text: "configuration reloaded"})
	})
	if err == nil {
		if werr := watcher.Watch(); werr == nil {
			defer watcher.Close()
		}
	} else if args.Verbose {
		log.Printf("[mediq] config watcher unavailable: %v", err)
	}

	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, styles.RenderError("TUI failed: "+err.Error()))
		return 1
	}
	return 0
}
