// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/openmedix/mediq-tui/internal/ui/components"
)

// noticeDuration is how long a transient status notice stays visible.
const noticeDuration = 4 * time.Second

// minSidebarWidth keeps the sidebar usable on narrow terminals.
const minSidebarWidth = 28

// Update is the Bubble Tea update loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SnapshotMsg:
		m.conversation = msg.Conversation
		m.refreshTranscript()
		if m.conversation.IsStreaming() {
			if !m.spinner.IsActive() {
				cmds = append(cmds, m.spinner.Start())
			}
			m.statusbar.Status = components.StatusStreaming
		} else {
			m.spinner.Stop()
			m.statusbar.Status = components.StatusReady
		}
		cmds = append(cmds, waitForSnapshot(m.store.Updates()))
		return m, tea.Batch(cmds...)

	case SnapshotClosedMsg:
		return m, tea.Quit

	case SendFailedMsg:
		m.statusbar.Status = components.StatusError
		m.statusbar.Notice = msg.Err.Error()
		return m, clearNoticeAfter()

	case NoticeMsg:
		m.statusbar.Notice = msg.Text
		return m, clearNoticeAfter()

	case clearNoticeMsg:
		m.statusbar.Notice = ""
		if m.statusbar.Status == components.StatusError {
			m.statusbar.Status = components.StatusReady
		}
		return m, nil
	}

	// Animation ticks and everything else flow to the components.
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	if m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleKey routes key presses by focus.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.store.Stop()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.ToggleSidebar):
		m.sidebarVisible = !m.sidebarVisible
		if m.sidebarVisible {
			m.focus = focusSidebar
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		m.resize(m.width, m.height)
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleThought):
		m.thoughtsOpen = !m.thoughtsOpen
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, m.keyMap.NewChat):
		m.store.Reset()
		return m, nil

	case key.Matches(msg, m.keyMap.Stop):
		if m.conversation.IsStreaming() {
			m.store.Stop()
			return m, nil
		}
		if m.focus == focusSidebar {
			m.focus = focusInput
			m.sidebarVisible = false
			m.input.Focus()
			m.resize(m.width, m.height)
		}
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Send):
		if strings.TrimSpace(m.input.Value()) == "" {
			return m, nil
		}
		return m, m.send()

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.SidebarUp):
		m.sidebar.MoveCursor(-1)

	case key.Matches(msg, m.keyMap.SidebarDown):
		m.sidebar.MoveCursor(1)

	case key.Matches(msg, m.keyMap.SidebarTab):
		m.sidebar.SwitchPanel()

	case key.Matches(msg, m.keyMap.SidebarToggle):
		m.sidebar.Toggle()
		m.pushSelection()
	}
	return m, nil
}

// resize recomputes the layout after a terminal or sidebar change.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	sidebarWidth := 0
	if m.sidebarVisible {
		sidebarWidth = minSidebarWidth
		if width/4 > sidebarWidth {
			sidebarWidth = width / 4
		}
	}

	// Header, status bar, and input each take one line plus borders.
	chromeHeight := 5
	viewportWidth := width - sidebarWidth
	viewportHeight := height - chromeHeight
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(viewportWidth, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = viewportWidth
		m.viewport.Height = viewportHeight
	}

	m.input.Width = viewportWidth - 6
	m.statusbar.Width = width
	m.header.Width = width
	m.sidebar.SetSize(sidebarWidth, viewportHeight)

	m.refreshTranscript()
}

func clearNoticeAfter() tea.Cmd {
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return clearNoticeMsg{}
	})
}
