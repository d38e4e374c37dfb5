// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/openmedix/mediq-tui/internal/agent"
	"github.com/openmedix/mediq-tui/internal/model"
	"github.com/openmedix/mediq-tui/internal/util"
)

// titleMaxLen bounds derived conversation titles.
const titleMaxLen = 60

// Conversation is an ordered list of message snapshots. It is a value type:
// the store hands out copies and callers never mutate through one.
type Conversation struct {
	ID        string
	Title     string
	CreatedAt time.Time
	Messages  []model.Message
}

// NewConversation creates an empty conversation.
func NewConversation() Conversation {
	return Conversation{
		ID:        generateConversationID(),
		Title:     "New conversation",
		CreatedAt: time.Now(),
	}
}

// MessageByID finds a message snapshot by id.
func (c Conversation) MessageByID(id string) (model.Message, bool) {
	for _, m := range c.Messages {
		if m.ID == id {
			return m, true
		}
	}
	return model.Message{}, false
}

// Last returns the most recent message, if any.
func (c Conversation) Last() (model.Message, bool) {
	if len(c.Messages) == 0 {
		return model.Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// IsStreaming reports whether any message is still receiving patches.
func (c Conversation) IsStreaming() bool {
	for _, m := range c.Messages {
		if m.Streaming {
			return true
		}
	}
	return false
}

// History converts the finished turns to wire form for the next request.
// The still-streaming placeholder, if present, is excluded.
func (c Conversation) History() []agent.ChatTurn {
	turns := make([]agent.ChatTurn, 0, len(c.Messages))
	for _, m := range c.Messages {
		if m.Streaming {
			continue
		}
		turns = append(turns, agent.NewChatTurn(m))
	}
	return turns
}

// withMessage returns a copy with one more message appended. The slice is
// reallocated so earlier snapshots stay untouched.
func (c Conversation) withMessage(m model.Message) Conversation {
	out := c
	out.Messages = make([]model.Message, len(c.Messages)+1)
	copy(out.Messages, c.Messages)
	out.Messages[len(c.Messages)] = m

	if out.Title == "New conversation" && m.Role == model.RoleUser {
		out.Title = util.TruncateRunes(m.Content, titleMaxLen)
	}
	return out
}

// withUpdated returns a copy with the message of the same id replaced.
// If the id is absent the conversation is returned unchanged.
func (c Conversation) withUpdated(m model.Message) Conversation {
	for i, existing := range c.Messages {
		if existing.ID == m.ID {
			out := c
			out.Messages = make([]model.Message, len(c.Messages))
			copy(out.Messages, c.Messages)
			out.Messages[i] = m
			return out
		}
	}
	return c
}

func generateConversationID() string {
	return "conv_" + uuid.NewString()
}
