// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/openmedix/mediq-tui/internal/model"
	"github.com/openmedix/mediq-tui/internal/ui/styles"
)

// =============================================================================
// THOUGHT TRACE
// =============================================================================

// maxOutputPreview caps how much of a tool's raw output is shown inline.
const maxOutputPreview = 200

// ThoughtTrace renders the agent's disclosed reasoning steps and tool
// calls as a card above the answer.
type ThoughtTrace struct {
	Steps    []model.ThoughtStep
	Width    int
	Expanded bool

	theme *styles.Theme
}

// NewThoughtTrace creates a trace renderer for a message's steps.
func NewThoughtTrace(steps []model.ThoughtStep, theme *styles.Theme) ThoughtTrace {
	return ThoughtTrace{
		Steps: steps,
		Width: 80,
		theme: theme,
	}
}

// View renders the trace. Empty step lists render nothing.
func (t ThoughtTrace) View() string {
	if len(t.Steps) == 0 {
		return ""
	}

	var lines []string
	for _, step := range t.Steps {
		lines = append(lines, t.renderStep(step))
	}

	card := strings.Join(lines, "\n")
	return t.theme.ThoughtCard.MaxWidth(t.Width).Render(card)
}

func (t ThoughtTrace) renderStep(step model.ThoughtStep) string {
	marker := t.statusMarker(step.Status)

	label := step.Content
	if label == "" {
		label = step.FuncName
	}

	line := marker + " " + label
	if step.Globalization != "" {
		line += " " + t.theme.ThoughtOutput.Render("["+step.Globalization+"]")
	}
	if step.Status == model.StatusDone && step.Output != "" && t.Expanded {
		preview := step.Output
		if len(preview) > maxOutputPreview {
			preview = preview[:maxOutputPreview] + "..."
		}
		line += "\n  " + t.theme.ThoughtOutput.Render(preview)
	}
	return line
}

func (t ThoughtTrace) statusMarker(status model.StepStatus) string {
	switch status {
	case model.StatusDone:
		return t.theme.ThoughtDone.Render(styles.StatusIndicators.Success)
	case model.StatusWorking:
		return t.theme.ThoughtRunning.Render(styles.StatusIndicators.Pending)
	default:
		return t.theme.ThoughtOutput.Render(styles.StatusIndicators.Active)
	}
}

// Summary returns a one-line digest for collapsed display, such as
// "2 steps, 1 running".
func (t ThoughtTrace) Summary() string {
	if len(t.Steps) == 0 {
		return ""
	}
	running := 0
	for _, step := range t.Steps {
		if step.Status == model.StatusWorking {
			running++
		}
	}
	out := plural(len(t.Steps), "step")
	if running > 0 {
		out += ", " + toStr(running) + " running"
	}
	return out
}
