// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/openmedix/mediq-tui/internal/config"
	"github.com/openmedix/mediq-tui/internal/selection"
	"github.com/openmedix/mediq-tui/internal/store"
	"github.com/openmedix/mediq-tui/internal/ui/components"
	"github.com/openmedix/mediq-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS STATE
// =============================================================================

// focusTarget is where key input is routed.
type focusTarget int

const (
	focusInput focusTarget = iota
	focusSidebar
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Conversation state (snapshots from the store)
	store        *store.Store
	conversation store.Conversation

	// Styling
	theme    *styles.Theme
	markdown *components.MarkdownRenderer

	// Dimensions
	width  int
	height int

	// UI components
	viewport  viewport.Model
	input     textinput.Model
	spinner   components.Spinner
	statusbar components.StatusBar
	header    components.Header
	sidebar   Sidebar

	// View state
	focus          focusTarget
	sidebarVisible bool
	thoughtsOpen   bool
	ready          bool

	// Display toggles from config
	showReasoning bool
	showThoughts  bool
	showRefs      bool

	keyMap KeyMap

	// onSelectionChange persists new selections; set by the CLI layer.
	onSelectionChange func(sel selection.State)
}

// New creates the chat view over a store and the selection catalogs.
func New(st *store.Store, sel selection.State, cfg *config.Config) Model {
	theme := styles.NewTheme()

	input := textinput.New()
	input.Placeholder = "Ask a medical question..."
	input.Prompt = "> "
	input.CharLimit = 4000
	input.Focus()

	var markdown *components.MarkdownRenderer
	if cfg.Chat.MarkdownRendering {
		markdown = components.NewMarkdownRenderer(theme.IsDark)
	}

	statusbar := components.NewStatusBar(theme)
	statusbar.Selection = sel.Summary()

	m := Model{
		store:          st,
		conversation:   st.Conversation(),
		theme:          theme,
		markdown:       markdown,
		input:          input,
		spinner:        components.NewAnsweringSpinner(theme),
		statusbar:      statusbar,
		header:         components.NewHeader(theme),
		sidebar:        NewSidebar(sel, theme),
		sidebarVisible: cfg.UI.SidebarVisible,
		showReasoning:  cfg.Chat.ShowReasoning,
		showThoughts:   cfg.Chat.ShowThoughts,
		showRefs:       cfg.Chat.ShowReferences,
		keyMap:         DefaultKeyMap(),
	}
	m.header.Subtitle = "medical question answering"
	return m
}

// SetSelectionCallback registers a hook invoked after sidebar toggles.
func (m *Model) SetSelectionCallback(fn func(sel selection.State)) {
	m.onSelectionChange = fn
}

// Init starts the snapshot subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		waitForSnapshot(m.store.Updates()),
	)
}

// send submits the input line to the store.
func (m *Model) send() tea.Cmd {
	text := m.input.Value()
	m.input.Reset()

	return func() tea.Msg {
		if err := m.store.Send(context.Background(), text); err != nil {
			return SendFailedMsg{Err: err}
		}
		return nil
	}
}

// pushSelection forwards the sidebar's selection to the store and the
// persistence hook.
func (m *Model) pushSelection() {
	sel := m.sidebar.Selection
	m.store.SetSelection(sel.SelectedSourceIDs(), sel.SelectedToolIDs())
	m.statusbar.Selection = sel.Summary()
	if m.onSelectionChange != nil {
		m.onSelectionChange(sel)
	}
}
