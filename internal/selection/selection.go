// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package selection

import (
	"strconv"

	"github.com/openmedix/mediq-tui/internal/agent"
)

// State holds the source and tool catalogs plus the user's current picks.
// The zero value is usable: empty catalogs, nothing selected.
type State struct {
	Sources []agent.DataSource
	Tools   []agent.ToolConfig

	selectedSources map[string]bool
	selectedTools   map[string]bool
}

// New creates a selection state from fetched catalogs. Tools whose config
// is already enabled server-side start selected.
func New(sources []agent.DataSource, tools []agent.ToolConfig) State {
	s := State{
		Sources:         sources,
		Tools:           tools,
		selectedSources: make(map[string]bool, len(sources)),
		selectedTools:   make(map[string]bool, len(tools)),
	}
	for _, t := range tools {
		if t.Enabled {
			s.selectedTools[t.ID] = true
		}
	}
	return s
}

// clone gives State value semantics despite its internal maps.
func (s State) clone() State {
	out := s
	out.selectedSources = make(map[string]bool, len(s.selectedSources))
	for k, v := range s.selectedSources {
		out.selectedSources[k] = v
	}
	out.selectedTools = make(map[string]bool, len(s.selectedTools))
	for k, v := range s.selectedTools {
		out.selectedTools[k] = v
	}
	return out
}

func (s State) hasSource(id string) bool {
	_, ok := s.SourceByID(id)
	return ok
}

func (s State) hasTool(id string) bool {
	_, ok := s.ToolByID(id)
	return ok
}

// ToggleSource flips one source and returns the new state. Unknown ids are
// a no-op.
func (s State) ToggleSource(id string) State {
	if !s.hasSource(id) {
		return s
	}
	out := s.clone()
	if out.selectedSources[id] {
		delete(out.selectedSources, id)
	} else {
		out.selectedSources[id] = true
	}
	return out
}

// ToggleTool flips one tool and returns the new state. Unknown ids are a
// no-op.
func (s State) ToggleTool(id string) State {
	if !s.hasTool(id) {
		return s
	}
	out := s.clone()
	if out.selectedTools[id] {
		delete(out.selectedTools, id)
	} else {
		out.selectedTools[id] = true
	}
	return out
}

// SourceSelected reports whether the source is enabled.
func (s State) SourceSelected(id string) bool {
	return s.selectedSources[id]
}

// ToolSelected reports whether the tool is enabled.
func (s State) ToolSelected(id string) bool {
	return s.selectedTools[id]
}

// SelectedSourceIDs returns the enabled source ids in catalog order.
func (s State) SelectedSourceIDs() []string {
	var ids []string
	for _, src := range s.Sources {
		if s.selectedSources[src.ID] {
			ids = append(ids, src.ID)
		}
	}
	return ids
}

// SelectedToolIDs returns the enabled tool ids in catalog order.
func (s State) SelectedToolIDs() []string {
	var ids []string
	for _, t := range s.Tools {
		if s.selectedTools[t.ID] {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// RestoreSources re-applies a saved set of source ids, ignoring ids the
// catalog no longer carries.
func (s State) RestoreSources(ids []string) State {
	out := s.clone()
	for _, id := range ids {
		if out.hasSource(id) {
			out.selectedSources[id] = true
		}
	}
	return out
}

// RestoreTools re-applies a saved set of tool ids, ignoring ids the catalog
// no longer carries.
func (s State) RestoreTools(ids []string) State {
	out := s.clone()
	for _, id := range ids {
		if out.hasTool(id) {
			out.selectedTools[id] = true
		}
	}
	return out
}

// SourceByID looks up a catalog entry.
func (s State) SourceByID(id string) (agent.DataSource, bool) {
	for _, src := range s.Sources {
		if src.ID == id {
			return src, true
		}
	}
	return agent.DataSource{}, false
}

// ToolByID looks up a catalog entry.
func (s State) ToolByID(id string) (agent.ToolConfig, bool) {
	for _, t := range s.Tools {
		if t.ID == id {
			return t, true
		}
	}
	return agent.ToolConfig{}, false
}

// Summary returns a short description of the active picks for the status
// bar, like "2 sources, 1 tool".
func (s State) Summary() string {
	nSrc := len(s.SelectedSourceIDs())
	nTool := len(s.SelectedToolIDs())
	return plural(nSrc, "source") + ", " + plural(nTool, "tool")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
