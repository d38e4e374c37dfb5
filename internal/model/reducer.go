// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// REDUCER
// =============================================================================

// Apply folds one patch into a message and returns the new snapshot.
// The input message is never mutated: slices that change are reallocated,
// so callers may safely keep references to prior snapshots.
//
// Finalized messages (Streaming == false) ignore every patch. The store
// stops routing patches once a message is finalized, but a late patch
// arriving anyway must not resurrect it.
func Apply(m Message, p Patch) Message {
	if !m.Streaming {
		return m
	}

	switch patch := p.(type) {
	case TextPatch:
		m.Content += patch.Text

	case ReasoningPatch:
		m.Reasoning += patch.Text

	case EntityPatch:
		m.Entities = patch.Entities

	case ReferencePatch:
		m.References = patch.Groups

	case ThoughtPatch:
		m.Thoughts = upsertSteps(m.Thoughts, patch.Tools)

	case FinalizePatch:
		m.Streaming = false

	case ErrorPatch:
		m.Content += patch.Notice
		m.Streaming = false
	}

	return m
}

// upsertSteps merges tool-status records into the step list. Existing steps
// keep their list position and first-seen timestamp; only the mutable fields
// are replaced. New ids append in record order.
func upsertSteps(steps []ThoughtStep, tools []ToolStatus) []ThoughtStep {
	// Copy-on-write: the caller may hold the prior snapshot's slice.
	out := make([]ThoughtStep, len(steps), len(steps)+len(tools))
	copy(out, steps)

	for _, tool := range tools {
		if i := indexOfStep(out, tool.ID); i >= 0 {
			out[i].Content = tool.Display
			out[i].Status = tool.Status
			if tool.Output != "" {
				out[i].Output = tool.Output
			}
			continue
		}
		out = append(out, ThoughtStep{
			ID:            tool.ID,
			Kind:          StepTool,
			Content:       tool.Display,
			Name:          tool.Name,
			Globalization: tool.Globalization,
			FuncName:      tool.FuncName,
			Status:        tool.Status,
			Output:        tool.Output,
			Timestamp:     time.Now(),
		})
	}

	return out
}

func indexOfStep(steps []ThoughtStep, id string) int {
	for i := range steps {
		if steps[i].ID == id {
			return i
		}
	}
	return -1
}
