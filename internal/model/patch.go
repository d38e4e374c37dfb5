// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// PATCH TYPES
// =============================================================================

// Patch is one discrete state change decoded from a stream frame. The
// classifier produces patches; the reducer applies them in strict arrival
// order, which is what makes upsert-by-id correct without locking.
type Patch interface {
	isPatch()
}

// TextPatch appends answer text to the in-flight message.
type TextPatch struct {
	Text string
}

// ReasoningPatch appends to the reasoning side-channel.
type ReasoningPatch struct {
	Text string
}

// EntityPatch replaces the message's entity list wholesale. The backend
// sends complete snapshots, never deltas.
type EntityPatch struct {
	Entities []EntityResult
}

// ReferencePatch replaces the message's reference groups wholesale.
type ReferencePatch struct {
	Groups []ReferenceGroup
}

// ToolStatus is one tool-status record from a type-5 frame.
type ToolStatus struct {
	ID            string
	Display       string
	Name          string
	Globalization string
	FuncName      string
	Status        StepStatus
	Output        string
}

// ThoughtPatch upserts tool-status records into the thought-step list:
// a known id updates the existing step in place, an unknown id appends.
type ThoughtPatch struct {
	Tools []ToolStatus
}

// FinalizePatch clears the streaming flag. Applied once, when the stream
// ends normally.
type FinalizePatch struct{}

// ErrorPatch appends a user-visible error notice and clears the streaming
// flag. Content already accumulated is kept.
type ErrorPatch struct {
	Notice string
}

func (TextPatch) isPatch()      {}
func (ReasoningPatch) isPatch() {}
func (EntityPatch) isPatch()    {}
func (ReferencePatch) isPatch() {}
func (ThoughtPatch) isPatch()   {}
func (FinalizePatch) isPatch()  {}
func (ErrorPatch) isPatch()     {}
