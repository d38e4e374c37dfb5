// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/openmedix/mediq-tui/internal/model"
	"github.com/openmedix/mediq-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one chat turn: the question or the answer with
// its reasoning trace, thought cards, references, and entities.
type MessageBubble struct {
	Message       model.Message
	Width         int
	ShowTimestamp bool
	ShowReasoning bool
	ShowThoughts  bool
	ShowRefs      bool
	ThoughtsOpen  bool

	theme    *styles.Theme
	markdown *MarkdownRenderer
}

// NewMessageBubble creates a bubble for a message snapshot. A nil
// markdown renderer selects the plain-text answer path.
func NewMessageBubble(msg model.Message, theme *styles.Theme, markdown *MarkdownRenderer) MessageBubble {
	return MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		ShowReasoning: true,
		ShowThoughts:  true,
		ShowRefs:      true,
		theme:         theme,
		markdown:      markdown,
	}
}

// View renders the message bubble.
func (b MessageBubble) View() string {
	switch b.Message.Role {
	case model.RoleUser:
		return b.renderUser()
	case model.RoleAgent:
		return b.renderAgent()
	default:
		return b.renderUser()
	}
}

func (b MessageBubble) renderUser() string {
	content := b.Message.Content
	if content == "" {
		content = "..."
	}

	maxContent := b.Width - 12
	if maxContent < 20 {
		maxContent = 20
	}
	wrapped := wordWrap(content, maxContent)
	contentWidth := minInt(maxLineWidth(wrapped)+4, b.Width-8)

	bubble := b.theme.UserBubble.Width(contentWidth).Render(wrapped)
	header := b.theme.Timestamp.Render("You")
	if b.ShowTimestamp {
		header += " " + b.theme.Timestamp.Render(b.Message.Timestamp.Format("15:04"))
	}
	return header + "\n" + bubble
}

func (b MessageBubble) renderAgent() string {
	var sections []string

	header := b.theme.HeaderTitle.Render("MedIQ")
	if b.ShowTimestamp {
		header += " " + b.theme.Timestamp.Render(b.Message.Timestamp.Format("15:04"))
	}
	sections = append(sections, header)

	if b.ShowReasoning && b.Message.Reasoning != "" {
		sections = append(sections, b.renderReasoning())
	}

	if b.ShowThoughts && len(b.Message.Thoughts) > 0 {
		trace := NewThoughtTrace(b.Message.Thoughts, b.theme)
		trace.Width = b.Width - 4
		trace.Expanded = b.ThoughtsOpen
		sections = append(sections, trace.View())
	}

	if body := b.renderBody(); body != "" {
		sections = append(sections, body)
	} else if b.Message.Streaming {
		sections = append(sections, b.theme.ThinkingText.Render("..."))
	}

	if b.ShowRefs {
		if len(b.Message.Entities) > 0 {
			panel := NewEntityPanel(b.Message.Entities, b.theme)
			panel.Width = b.Width - 4
			sections = append(sections, panel.View())
		}
		if len(b.Message.References) > 0 {
			panel := NewReferencePanel(b.Message.References, b.theme)
			panel.Width = b.Width - 4
			sections = append(sections, panel.View())
		}
	}

	return strings.Join(sections, "\n")
}

func (b MessageBubble) renderReasoning() string {
	maxContent := b.Width - 8
	if maxContent < 20 {
		maxContent = 20
	}
	label := b.theme.ReasoningLabel.Render("Reasoning")
	body := wordWrap(b.Message.Reasoning, maxContent)
	return b.theme.ReasoningBlock.Render(label + "\n" + body)
}

// renderBody renders the answer content, through glamour when markdown
// rendering is on, with entity names highlighted inline on the plain path.
func (b MessageBubble) renderBody() string {
	content := b.Message.Content
	if content == "" {
		return ""
	}

	maxContent := b.Width - 8
	if maxContent < 20 {
		maxContent = 20
	}

	var body string
	if b.markdown != nil {
		body = b.markdown.Render(content, maxContent)
	} else {
		body = RenderFencedBlocks(wordWrap(content, maxContent), maxContent)
		body = b.highlightEntities(body)
	}

	width := minInt(maxLineWidth(body)+4, b.Width-4)
	return b.theme.AgentBubble.Width(width).Render(body)
}

// highlightEntities colors linked entity names where they appear in the
// answer text. Match words from the backend take priority over the
// canonical name.
func (b MessageBubble) highlightEntities(text string) string {
	for _, entity := range b.Message.Entities {
		style := b.theme.EntityStyle(string(entity.Category))

		word := entity.Name
		if mw, ok := entity.Properties["match_word"].(string); ok && mw != "" {
			word = mw
		}
		if word == "" {
			continue
		}
		text = strings.ReplaceAll(text, word, style.Render(word))
	}
	return text
}
