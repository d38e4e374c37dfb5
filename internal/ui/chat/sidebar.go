// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/openmedix/mediq-tui/internal/selection"
	"github.com/openmedix/mediq-tui/internal/ui/styles"
)

// =============================================================================
// SIDEBAR
// =============================================================================

// sidebarPanel selects which catalog the cursor moves through.
type sidebarPanel int

const (
	panelSources sidebarPanel = iota
	panelTools
)

// Sidebar is the source/tool selection panel. Cursor state lives here;
// the selection itself lives in selection.State so the chat model can
// push chosen ids into the store.
type Sidebar struct {
	Selection selection.State

	panel  sidebarPanel
	cursor int
	width  int
	height int

	theme *styles.Theme
}

// NewSidebar creates a sidebar over the given catalogs.
func NewSidebar(sel selection.State, theme *styles.Theme) Sidebar {
	return Sidebar{
		Selection: sel,
		width:     32,
		theme:     theme,
	}
}

// SetSize updates the sidebar layout.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// SwitchPanel flips between the source and tool lists.
func (s *Sidebar) SwitchPanel() {
	if s.panel == panelSources {
		s.panel = panelTools
	} else {
		s.panel = panelSources
	}
	s.cursor = 0
}

// MoveCursor moves the cursor by delta, clamped to the active list.
func (s *Sidebar) MoveCursor(delta int) {
	s.cursor += delta
	if s.cursor < 0 {
		s.cursor = 0
	}
	if max := s.activeLen() - 1; s.cursor > max {
		s.cursor = max
		if s.cursor < 0 {
			s.cursor = 0
		}
	}
}

// Toggle flips the item under the cursor and returns the new selection.
func (s *Sidebar) Toggle() selection.State {
	switch s.panel {
	case panelSources:
		if s.cursor < len(s.Selection.Sources) {
			s.Selection = s.Selection.ToggleSource(s.Selection.Sources[s.cursor].ID)
		}
	case panelTools:
		if s.cursor < len(s.Selection.Tools) {
			s.Selection = s.Selection.ToggleTool(s.Selection.Tools[s.cursor].ID)
		}
	}
	return s.Selection
}

func (s Sidebar) activeLen() int {
	if s.panel == panelSources {
		return len(s.Selection.Sources)
	}
	return len(s.Selection.Tools)
}

// View renders the sidebar.
func (s Sidebar) View() string {
	var lines []string

	lines = append(lines, s.panelTitle("Sources", panelSources))
	for i, src := range s.Selection.Sources {
		lines = append(lines, s.renderItem(
			src.Name, s.Selection.SourceSelected(src.ID),
			s.panel == panelSources && i == s.cursor))
	}

	lines = append(lines, "")
	lines = append(lines, s.panelTitle("MCP tools", panelTools))
	if len(s.Selection.Tools) == 0 {
		lines = append(lines, s.theme.ToggleOff.Render("  none configured"))
	}
	for i, tool := range s.Selection.Tools {
		lines = append(lines, s.renderItem(
			tool.Name, s.Selection.ToolSelected(tool.ID),
			s.panel == panelTools && i == s.cursor))
	}

	return s.theme.Sidebar.Width(s.width).Height(s.height).
		Render(strings.Join(lines, "\n"))
}

func (s Sidebar) panelTitle(title string, panel sidebarPanel) string {
	if s.panel == panel {
		return s.theme.SidebarTitle.Render(title)
	}
	return s.theme.SidebarItem.Render(title)
}

func (s Sidebar) renderItem(name string, selected, underCursor bool) string {
	marker := s.theme.ToggleOff.Render("[ ]")
	if selected {
		marker = s.theme.ToggleOn.Render("[x]")
	}

	label := name
	maxName := s.width - 8
	if maxName > 0 && len([]rune(label)) > maxName {
		label = string([]rune(label)[:maxName-3]) + "..."
	}

	line := marker + " " + label
	if underCursor {
		return s.theme.SidebarSelected.Render("> " + line)
	}
	return "  " + line
}
