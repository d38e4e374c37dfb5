// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/openmedix/mediq-tui/internal/model"
	"github.com/openmedix/mediq-tui/internal/ui/styles"
)

// =============================================================================
// REFERENCE PANEL
// =============================================================================

// ReferencePanel renders the citation groups attached to an answer.
type ReferencePanel struct {
	Groups []model.ReferenceGroup
	Width  int

	theme *styles.Theme
}

// NewReferencePanel creates a panel for a message's reference groups.
func NewReferencePanel(groups []model.ReferenceGroup, theme *styles.Theme) ReferencePanel {
	return ReferencePanel{
		Groups: groups,
		Width:  80,
		theme:  theme,
	}
}

// View renders all groups. Empty group lists render nothing.
func (p ReferencePanel) View() string {
	if len(p.Groups) == 0 {
		return ""
	}

	var sections []string
	for _, group := range p.Groups {
		sections = append(sections, p.renderGroup(group))
	}

	title := p.theme.ReferenceGroup.Render("References")
	body := strings.Join(sections, "\n")
	return p.theme.ReferencePanel.MaxWidth(p.Width).Render(title + "\n" + body)
}

func (p ReferencePanel) renderGroup(group model.ReferenceGroup) string {
	name := group.Name
	if group.Globalization != "" {
		name = group.Globalization
	}

	var lines []string
	lines = append(lines, p.theme.ReferenceGroup.Render(name+" ("+plural(len(group.Refs), "hit")+")"))

	for _, ref := range group.Refs {
		lines = append(lines, "  "+p.renderReference(ref))
	}
	return strings.Join(lines, "\n")
}

func (p ReferencePanel) renderReference(ref model.Reference) string {
	line := p.theme.ReferenceTitle.Render(ref.Title)
	if ref.URL != "" {
		line += " " + p.theme.ReferenceURL.Render(ref.URL)
	}

	if sentence := p.renderMatchSentence(ref); sentence != "" {
		line += "\n    " + sentence
	}
	return line
}

// renderMatchSentence renders the matched sentence with the matching
// fragments highlighted. Falls back to the plain sentence when no match
// spans were provided.
func (p ReferencePanel) renderMatchSentence(ref model.Reference) string {
	if len(ref.Matches) == 0 {
		if ref.MatchSentence == "" {
			return ""
		}
		return p.theme.Timestamp.Render(ref.MatchSentence)
	}

	var sb strings.Builder
	for _, match := range ref.Matches {
		sb.WriteString(p.theme.Timestamp.Render(match.Prefix))
		sb.WriteString(p.theme.ReferenceMatch.Render(match.Match))
		sb.WriteString(p.theme.Timestamp.Render(match.Suffix))
	}
	return sb.String()
}

// Count returns the total number of references across all groups.
func (p ReferencePanel) Count() int {
	n := 0
	for _, group := range p.Groups {
		n += len(group.Refs)
	}
	return n
}

// =============================================================================
// ENTITY PANEL
// =============================================================================

// EntityPanel renders the linked medical entities extracted from an
// answer: diseases, drugs, and symptoms.
type EntityPanel struct {
	Entities []model.EntityResult
	Width    int

	theme *styles.Theme
}

// NewEntityPanel creates a panel for a message's entities.
func NewEntityPanel(entities []model.EntityResult, theme *styles.Theme) EntityPanel {
	return EntityPanel{
		Entities: entities,
		Width:    80,
		theme:    theme,
	}
}

// View renders the entity list grouped by category.
func (p EntityPanel) View() string {
	if len(p.Entities) == 0 {
		return ""
	}

	var lines []string
	lines = append(lines, p.theme.ReferenceGroup.Render("Linked entities"))

	for _, entity := range p.Entities {
		lines = append(lines, "  "+p.renderEntity(entity))
	}
	return p.theme.EntityPanel.MaxWidth(p.Width).Render(strings.Join(lines, "\n"))
}

func (p EntityPanel) renderEntity(entity model.EntityResult) string {
	nameStyle := p.theme.EntityStyle(string(entity.Category))
	line := nameStyle.Render(entity.Name) + " " +
		p.theme.Timestamp.Render("["+string(entity.Category)+"]")

	if entity.Description != "" {
		desc := entity.Description
		descWidth := p.Width - 10
		if descWidth < 20 {
			descWidth = 20
		}
		runes := []rune(desc)
		if len(runes) > descWidth {
			desc = string(runes[:descWidth-3]) + "..."
		}
		line += "\n    " + p.theme.EntityDetail.Render(desc)
	}
	return line
}
