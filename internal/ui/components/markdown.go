// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// MarkdownRenderer renders answer markdown for terminal display. Renderers
// are cached per wrap width; glamour renderer construction is expensive.
type MarkdownRenderer struct {
	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
	dark      bool
}

// NewMarkdownRenderer creates a renderer for the given background.
func NewMarkdownRenderer(dark bool) *MarkdownRenderer {
	return &MarkdownRenderer{
		renderers: make(map[int]*glamour.TermRenderer),
		dark:      dark,
	}
}

// Render renders markdown wrapped to width. On any renderer failure the
// raw text is returned unchanged so answers are never lost to styling.
func (r *MarkdownRenderer) Render(markdown string, width int) string {
	if width < 20 {
		width = 20
	}

	renderer, err := r.rendererFor(width)
	if err != nil {
		return markdown
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}

	// Glamour pads with a leading and trailing blank line.
	return strings.Trim(out, "\n")
}

func (r *MarkdownRenderer) rendererFor(width int) (*glamour.TermRenderer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if renderer, ok := r.renderers[width]; ok {
		return renderer, nil
	}

	style := "light"
	if r.dark {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r.renderers[width] = renderer
	return renderer, nil
}
