// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/openmedix/mediq-tui/internal/store"
)

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// SnapshotMsg carries a fresh conversation snapshot from the store.
type SnapshotMsg struct {
	Conversation store.Conversation
}

// SnapshotClosedMsg signals that the store's update channel closed.
type SnapshotClosedMsg struct{}

// SendFailedMsg reports a question the store rejected before streaming.
type SendFailedMsg struct {
	Err error
}

// NoticeMsg sets a transient status bar notice.
type NoticeMsg struct {
	Text string
}

// clearNoticeMsg removes an expired notice.
type clearNoticeMsg struct{}

// waitForSnapshot blocks on the store's update channel and converts the
// next snapshot into a Bubble Tea message. The returned command is
// re-issued after every snapshot to keep the subscription alive.
func waitForSnapshot(updates <-chan store.Conversation) tea.Cmd {
	return func() tea.Msg {
		conv, ok := <-updates
		if !ok {
			return SnapshotClosedMsg{}
		}
		return SnapshotMsg{Conversation: conv}
	}
}
