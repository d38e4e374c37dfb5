// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/openmedix/mediq-tui/internal/agent"
	"github.com/openmedix/mediq-tui/internal/model"
)

// =============================================================================
// STREAMER
// =============================================================================

// Streamer is the slice of the gateway client the store needs. Tests supply
// a scripted implementation.
type Streamer interface {
	ChatStream(ctx context.Context, req agent.ChatRequest, callback agent.PatchCallback) error
}

// =============================================================================
// STORE
// =============================================================================

// Store owns the active conversation and drives one stream at a time.
type Store struct {
	mu sync.Mutex

	client Streamer
	conv   Conversation

	// Current selection, attached to each chat request.
	sourceIDs []string
	toolIDs   []string

	// cancel aborts the in-flight stream; nil when idle. generation tells
	// a finishing stream goroutine whether the slot is still its own.
	cancel     context.CancelFunc
	generation uint64
	streamWG   sync.WaitGroup

	updates chan Conversation
}

// New creates a store with an empty conversation.
func New(client Streamer) *Store {
	return &Store{
		client:  client,
		conv:    NewConversation(),
		updates: make(chan Conversation, 64),
	}
}

// Updates is the snapshot feed. Every applied patch batch publishes the
// full conversation value; when the consumer lags, the oldest snapshot is
// dropped since only the newest matters for rendering.
func (s *Store) Updates() <-chan Conversation {
	return s.updates
}

// Conversation returns the current snapshot.
func (s *Store) Conversation() Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv
}

// SetSelection records the source and tool ids sent with the next question.
func (s *Store) SetSelection(sourceIDs, toolIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sourceIDs = append([]string(nil), sourceIDs...)
	s.toolIDs = append([]string(nil), toolIDs...)
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Send appends the user's question plus a streaming placeholder, then
// starts the stream on its own goroutine. A still-streaming previous
// question is cancelled first; its remaining patches target a finalized
// message and are ignored.
func (s *Store) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("empty question")
	}

	s.mu.Lock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.finalizeStreamingLocked()
	}

	userMsg := model.NewUserMessage(text)
	agentMsg := model.NewAgentMessage()

	s.conv = s.conv.withMessage(userMsg)
	req := agent.ChatRequest{
		Messages: s.conv.History(),
		Sources:  s.sourceIDs,
		Tools:    s.toolIDs,
	}
	s.conv = s.conv.withMessage(agentMsg)

	streamCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.generation++
	gen := s.generation
	targetID := agentMsg.ID

	s.publishLocked()
	s.mu.Unlock()

	s.streamWG.Add(1)
	go func() {
		defer s.streamWG.Done()
		err := s.client.ChatStream(streamCtx, req, func(patches []model.Patch) {
			s.apply(targetID, patches)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.apply(targetID, []model.Patch{model.ErrorPatch{Notice: streamNotice(err)}})
		} else {
			s.apply(targetID, []model.Patch{model.FinalizePatch{}})
		}
		s.clearCancel(gen)
	}()

	return nil
}

// Reset abandons the current conversation and starts a fresh one. Any
// in-flight stream is cancelled.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.conv = NewConversation()
	s.publishLocked()
}

// Stop cancels any in-flight stream and waits for its goroutine to finish.
func (s *Store) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.streamWG.Wait()
}

// =============================================================================
// PATCH APPLICATION
// =============================================================================

// apply routes a patch batch to its target message. An absent target id
// means the conversation moved on; the batch is dropped.
func (s *Store) apply(targetID string, patches []model.Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.conv.MessageByID(targetID)
	if !ok {
		return
	}
	for _, p := range patches {
		msg = model.Apply(msg, p)
	}
	s.conv = s.conv.withUpdated(msg)
	s.publishLocked()
}

// finalizeStreamingLocked force-finalizes any still-streaming message so a
// cancelled stream's leftovers cannot land.
func (s *Store) finalizeStreamingLocked() {
	for _, m := range s.conv.Messages {
		if m.Streaming {
			s.conv = s.conv.withUpdated(model.Apply(m, model.FinalizePatch{}))
		}
	}
}

// clearCancel resets the cancel slot, but only if it still belongs to this
// stream. A newer Send may have installed its own.
func (s *Store) clearCancel(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.cancel = nil
	}
}

// publishLocked pushes the current snapshot, dropping the oldest queued
// snapshot when the consumer is behind.
func (s *Store) publishLocked() {
	for {
		select {
		case s.updates <- s.conv:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

func streamNotice(err error) string {
	var se *agent.StreamError
	if errors.As(err, &se) {
		return "connection lost, answer may be incomplete"
	}
	return "request failed: " + err.Error()
}
