// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the medical Q&A chat.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAgent:
		return "Assistant"
	default:
		return string(r)
	}
}

// WireRole returns the role string the backend expects in the history
// payload. The backend uses "ai" rather than "agent" for assistant turns.
func (r Role) WireRole() string {
	if r == RoleAgent {
		return "ai"
	}
	return string(r)
}

// =============================================================================
// THOUGHT STEPS
// =============================================================================

// StepKind categorizes a thought step in the agent's disclosed trace.
type StepKind string

const (
	StepQuery     StepKind = "query"
	StepReasoning StepKind = "reasoning"
	StepSynthesis StepKind = "synthesis"
	StepTool      StepKind = "tool"
)

// StepStatus is the live status of a tool-backed thought step.
type StepStatus string

const (
	StatusWorking StepStatus = "Working"
	StatusDone    StepStatus = "Done"
)

// ThoughtStep is one unit of the agent's reasoning/tool-use trace.
// Steps are identified by backend-assigned ids; a later stream event carrying
// a known id updates the existing step in place instead of appending.
type ThoughtStep struct {
	ID      string   `json:"id"`
	Kind    StepKind `json:"type"`
	Content string   `json:"content"`

	// Tool metadata (StepTool only)
	Name          string     `json:"name,omitempty"`
	Globalization string     `json:"globalization,omitempty"`
	FuncName      string     `json:"func_name,omitempty"`
	Status        StepStatus `json:"status,omitempty"`
	Output        string     `json:"func_output,omitempty"`

	References []Reference `json:"references,omitempty"`

	// Timestamp is client-assigned at first sight; it is preserved across
	// subsequent updates to the same step.
	Timestamp time.Time `json:"timestamp"`
}

// =============================================================================
// REFERENCES
// =============================================================================

// SentenceMatch is a sub-sentence span with the matched fragment isolated
// so the UI can highlight it.
type SentenceMatch struct {
	Prefix string `json:"prefix"`
	Match  string `json:"match"`
	Suffix string `json:"suffix"`
}

// Reference is a single citation entry.
type Reference struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	URL           string          `json:"url,omitempty"`
	MatchSentence string          `json:"match_sentence,omitempty"`
	Matches       []SentenceMatch `json:"matches,omitempty"`
}

// ReferenceGroup is a named source (corpus or tool) with its citations.
type ReferenceGroup struct {
	Name          string      `json:"name"`
	Globalization string      `json:"globalization,omitempty"`
	Refs          []Reference `json:"data"`
}

// =============================================================================
// ENTITIES
// =============================================================================

// EntityCategory classifies an extracted medical entity.
type EntityCategory string

const (
	EntityDrug    EntityCategory = "drug"
	EntityDisease EntityCategory = "disease"
	EntitySymptom EntityCategory = "symptom"
)

// EntityResult is one linked medical entity extracted from the answer.
// Property values are scalars or string lists depending on the field.
type EntityResult struct {
	ID          string         `json:"id"`
	Category    EntityCategory `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Properties  map[string]any `json:"properties,omitempty"`
	References  []Reference    `json:"references,omitempty"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single chat turn. It is a value type: the reducer returns a
// fresh snapshot for every applied patch, and a finalized message is never
// touched again.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content. Reasoning is the side-channel text carried separately from
	// the answer body by the stream protocol.
	Content   string `json:"content"`
	Reasoning string `json:"reasoning,omitempty"`

	Thoughts   []ThoughtStep    `json:"thoughts,omitempty"`
	References []ReferenceGroup `json:"references,omitempty"`
	Entities   []EntityResult   `json:"entities,omitempty"`

	// Streaming is true from creation until the stream ends or errors.
	Streaming bool `json:"streaming,omitempty"`
}

// NewUserMessage creates a finalized user message.
func NewUserMessage(content string) Message {
	return Message{
		ID:        generateID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAgentMessage creates an empty streaming agent message. It is mutated
// exclusively by the reducer until the stream finishes.
func NewAgentMessage() Message {
	return Message{
		ID:        generateID(),
		Role:      RoleAgent,
		Timestamp: time.Now(),
		Streaming: true,
	}
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// StepByID returns the thought step with the given id, or nil.
func (m *Message) StepByID(id string) *ThoughtStep {
	for i := range m.Thoughts {
		if m.Thoughts[i].ID == id {
			return &m.Thoughts[i]
		}
	}
	return nil
}

// IsEmpty returns true if the message has no visible content yet.
func (m *Message) IsEmpty() bool {
	return m.Content == "" && m.Reasoning == "" && len(m.Thoughts) == 0
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
