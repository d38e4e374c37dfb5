// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/openmedix/mediq-tui/internal/agent"
	"github.com/openmedix/mediq-tui/internal/config"
	"github.com/openmedix/mediq-tui/internal/model"
	"github.com/openmedix/mediq-tui/internal/store"
)

type nopStreamer struct{}

func (nopStreamer) ChatStream(context.Context, agent.ChatRequest, agent.PatchCallback) error {
	return nil
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	st := store.New(nopStreamer{})
	t.Cleanup(st.Stop)
	return New(st, testSelection(), config.Default())
}

func TestWindowSizePreparesViewport(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)

	if !m.ready {
		t.Fatal("model not ready after window size")
	}
	if m.width != 100 || m.height != 40 {
		t.Errorf("size not recorded: %dx%d", m.width, m.height)
	}
	if !strings.Contains(m.View(), "mediq") {
		t.Error("welcome screen missing from initial view")
	}
}

func TestSnapshotUpdatesTranscript(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)

	conv := store.NewConversation()
	conv.Messages = []model.Message{model.NewUserMessage("What causes migraines?")}

	updated, cmd := m.Update(SnapshotMsg{Conversation: conv})
	m = updated.(Model)

	if cmd == nil {
		t.Error("snapshot handling must re-arm the subscription")
	}
	if !strings.Contains(m.View(), "What causes migraines?") {
		t.Error("transcript missing the question")
	}
}

func TestSendFailedShowsNotice(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)

	updated, _ = m.Update(SendFailedMsg{Err: agent.ErrBadRequest})
	m = updated.(Model)

	if m.statusbar.Notice == "" {
		t.Error("expected a status notice after a failed send")
	}
}

func TestSidebarToggleKey(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)

	if !m.sidebarVisible {
		t.Fatal("tab should open the sidebar")
	}
	if m.focus != focusSidebar {
		t.Error("focus should follow the sidebar")
	}
	if !strings.Contains(m.View(), "Sources") {
		t.Error("sidebar content missing from view")
	}
}
