// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openmedix/mediq-tui/internal/ui/components"
)

// View renders the full chat screen.
func (m Model) View() string {
	if !m.ready {
		return "Starting mediq..."
	}

	transcript := m.viewport.View()
	if m.sidebarVisible {
		transcript = lipgloss.JoinHorizontal(lipgloss.Top, transcript, m.sidebar.View())
	}

	inputLine := m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
	if spin := m.spinner.View(); spin != "" {
		inputLine = spin + "\n" + inputLine
	}

	return strings.Join([]string{
		m.header.View(),
		transcript,
		inputLine,
		m.statusbar.View(),
	}, "\n")
}

// refreshTranscript re-renders the conversation into the viewport and
// keeps it pinned to the bottom while streaming.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}

	wasAtBottom := m.viewport.AtBottom()

	var blocks []string
	for _, msg := range m.conversation.Messages {
		bubble := components.NewMessageBubble(msg, m.theme, m.markdown)
		bubble.Width = m.viewport.Width
		bubble.ShowReasoning = m.showReasoning
		bubble.ShowThoughts = m.showThoughts
		bubble.ShowRefs = m.showRefs
		bubble.ThoughtsOpen = m.thoughtsOpen
		blocks = append(blocks, bubble.View())
	}

	if len(blocks) == 0 {
		m.viewport.SetContent(m.welcome())
		return
	}

	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
	if wasAtBottom || m.conversation.IsStreaming() {
		m.viewport.GotoBottom()
	}
}

func (m Model) welcome() string {
	lines := []string{
		"",
		m.theme.HeaderTitle.Render("  mediq"),
		m.theme.HeaderSubtitle.Render("  medical question answering, in your terminal"),
		"",
		m.theme.ShortcutDesc.Render("  Type a question and press enter."),
		m.theme.ShortcutDesc.Render("  tab toggles the source sidebar, ctrl+c quits."),
		"",
		m.theme.ThinkingText.Render("  Not a substitute for professional medical advice."),
	}
	return strings.Join(lines, "\n")
}
