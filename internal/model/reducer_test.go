// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEXT PATCHES
// =============================================================================

func TestApply_TextAppend(t *testing.T) {
	msg := NewAgentMessage()

	msg = Apply(msg, TextPatch{Text: "Aspirin is "})
	msg = Apply(msg, TextPatch{Text: "a medication."})

	assert.Equal(t, "Aspirin is a medication.", msg.Content)
	assert.True(t, msg.Streaming)
}

func TestApply_ReasoningSideChannel(t *testing.T) {
	msg := NewAgentMessage()

	msg = Apply(msg, ReasoningPatch{Text: "Considering NSAID class..."})
	msg = Apply(msg, TextPatch{Text: "Aspirin"})

	assert.Equal(t, "Considering NSAID class...", msg.Reasoning)
	assert.Equal(t, "Aspirin", msg.Content)
}

func TestApply_DoesNotMutatePriorSnapshot(t *testing.T) {
	first := NewAgentMessage()
	second := Apply(first, TextPatch{Text: "hello"})

	assert.Empty(t, first.Content)
	assert.Equal(t, "hello", second.Content)
}

// =============================================================================
// THOUGHT UPSERT
// =============================================================================

func TestApply_ThoughtUpsertKeepsPosition(t *testing.T) {
	msg := NewAgentMessage()

	msg = Apply(msg, ThoughtPatch{Tools: []ToolStatus{
		{ID: "t1", Display: "Searching literature\n", Name: "Literature", Status: StatusWorking},
		{ID: "t2", Display: "Searching guidelines\n", Name: "Guidelines", Status: StatusWorking},
	}})
	msg = Apply(msg, ThoughtPatch{Tools: []ToolStatus{
		{ID: "t1", Display: "Literature search complete\n", Name: "Literature", Status: StatusDone, Output: `[{"title":"x"}]`},
	}})

	require.Len(t, msg.Thoughts, 2)
	assert.Equal(t, "t1", msg.Thoughts[0].ID)
	assert.Equal(t, StatusDone, msg.Thoughts[0].Status)
	assert.Equal(t, "Literature search complete\n", msg.Thoughts[0].Content)
	assert.Equal(t, `[{"title":"x"}]`, msg.Thoughts[0].Output)
	assert.Equal(t, StatusWorking, msg.Thoughts[1].Status)
}

func TestApply_ThoughtUpsertPreservesTimestamp(t *testing.T) {
	msg := NewAgentMessage()

	msg = Apply(msg, ThoughtPatch{Tools: []ToolStatus{
		{ID: "t1", Display: "working", Status: StatusWorking},
	}})
	firstSeen := msg.Thoughts[0].Timestamp

	msg = Apply(msg, ThoughtPatch{Tools: []ToolStatus{
		{ID: "t1", Display: "done", Status: StatusDone},
	}})

	assert.Equal(t, firstSeen, msg.Thoughts[0].Timestamp)
}

func TestApply_ThoughtUpsertSnapshotIsolation(t *testing.T) {
	msg := NewAgentMessage()
	msg = Apply(msg, ThoughtPatch{Tools: []ToolStatus{
		{ID: "t1", Display: "working", Status: StatusWorking},
	}})

	before := msg
	after := Apply(msg, ThoughtPatch{Tools: []ToolStatus{
		{ID: "t1", Display: "done", Status: StatusDone},
	}})

	// The earlier snapshot must still show the earlier status.
	assert.Equal(t, StatusWorking, before.Thoughts[0].Status)
	assert.Equal(t, StatusDone, after.Thoughts[0].Status)
}

// =============================================================================
// WHOLESALE REPLACEMENTS
// =============================================================================

func TestApply_ReferenceReplaceIsIdempotent(t *testing.T) {
	groups := []ReferenceGroup{
		{Name: "Literature", Refs: []Reference{{ID: "1", Title: "Aspirin Monograph"}}},
	}

	msg := NewAgentMessage()
	msg = Apply(msg, ReferencePatch{Groups: groups})
	msg = Apply(msg, ReferencePatch{Groups: groups})

	require.Len(t, msg.References, 1)
	require.Len(t, msg.References[0].Refs, 1)
}

func TestApply_EntityReplaceIsWholesale(t *testing.T) {
	msg := NewAgentMessage()
	msg = Apply(msg, EntityPatch{Entities: []EntityResult{
		{ID: "1", Category: EntityDrug, Name: "Aspirin"},
		{ID: "2", Category: EntityDisease, Name: "Influenza"},
	}})
	msg = Apply(msg, EntityPatch{Entities: []EntityResult{
		{ID: "3", Category: EntitySymptom, Name: "Fever"},
	}})

	require.Len(t, msg.Entities, 1)
	assert.Equal(t, EntitySymptom, msg.Entities[0].Category)
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestApply_Finalize(t *testing.T) {
	msg := NewAgentMessage()
	msg = Apply(msg, TextPatch{Text: "done."})
	msg = Apply(msg, FinalizePatch{})

	assert.False(t, msg.Streaming)
}

func TestApply_ErrorKeepsPartialContent(t *testing.T) {
	msg := NewAgentMessage()
	msg = Apply(msg, TextPatch{Text: "Aspirin is "})
	msg = Apply(msg, ErrorPatch{Notice: "\n\n[connection lost]"})

	assert.Equal(t, "Aspirin is \n\n[connection lost]", msg.Content)
	assert.False(t, msg.Streaming)
}

func TestApply_FinalizedMessageIgnoresLatePatches(t *testing.T) {
	msg := NewAgentMessage()
	msg = Apply(msg, TextPatch{Text: "answer"})
	msg = Apply(msg, FinalizePatch{})

	late := Apply(msg, TextPatch{Text: " extra"})

	assert.Equal(t, "answer", late.Content)
}
