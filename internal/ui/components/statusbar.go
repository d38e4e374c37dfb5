// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openmedix/mediq-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status is the application-level state shown on the status bar.
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusStreaming:
		return "Answering..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// StatusBar is the bottom bar: connection state, selection summary,
// transient notices, and key hints.
type StatusBar struct {
	Width int

	Status    Status
	Online    bool
	Selection string
	Notice    string

	theme *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) StatusBar {
	return StatusBar{
		Width:  80,
		Online: true,
		theme:  theme,
	}
}

// View renders the bar at the configured width.
func (s StatusBar) View() string {
	left := s.renderLeft()
	right := s.renderHints()

	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return s.theme.StatusBar.Width(s.Width).Render(
		left + strings.Repeat(" ", gap) + right)
}

func (s StatusBar) renderLeft() string {
	var parts []string

	if s.Online {
		parts = append(parts, s.theme.StatusOnline.Render(styles.StatusIndicators.Active+" online"))
	} else {
		parts = append(parts, s.theme.StatusOffline.Render(styles.StatusIndicators.Error+" offline"))
	}

	parts = append(parts, s.Status.String())

	if s.Selection != "" {
		parts = append(parts, s.Selection)
	}
	if s.Notice != "" {
		parts = append(parts, s.theme.ThinkingText.Render(s.Notice))
	}

	return strings.Join(parts, "  ")
}

func (s StatusBar) renderHints() string {
	hints := []struct{ key, desc string }{
		{"tab", "sidebar"},
		{"ctrl+t", "thoughts"},
		{"esc", "stop"},
		{"ctrl+c", "quit"},
	}

	var parts []string
	for _, h := range hints {
		parts = append(parts,
			s.theme.ShortcutKey.Render(h.key)+" "+s.theme.ShortcutDesc.Render(h.desc))
	}
	return strings.Join(parts, "  ")
}

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header renders the top application bar.
type Header struct {
	Width    int
	Title    string
	Subtitle string

	theme *styles.Theme
}

// NewHeader creates the application header.
func NewHeader(theme *styles.Theme) Header {
	return Header{
		Width: 80,
		Title: "mediq",
		theme: theme,
	}
}

// View renders the header line.
func (h Header) View() string {
	title := h.theme.HeaderTitle.Render(h.Title)
	if h.Subtitle != "" {
		title += "  " + h.theme.HeaderSubtitle.Render(h.Subtitle)
	}
	return h.theme.Header.Width(h.Width).Render(title)
}
