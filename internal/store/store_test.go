// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmedix/mediq-tui/internal/agent"
	"github.com/openmedix/mediq-tui/internal/model"
)

// scriptedStreamer replays fixed patch batches, then returns its err.
type scriptedStreamer struct {
	batches [][]model.Patch
	err     error

	gotReq agent.ChatRequest
	block  chan struct{} // when non-nil, wait here before returning
}

func (f *scriptedStreamer) ChatStream(ctx context.Context, req agent.ChatRequest, cb agent.PatchCallback) error {
	f.gotReq = req
	for _, b := range f.batches {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		cb(b)
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

// waitIdle blocks until the store's stream goroutine has finished.
func waitIdle(t *testing.T, s *Store) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not finish")
	}
}

func TestSend_FullAnswerFlow(t *testing.T) {
	streamer := &scriptedStreamer{
		batches: [][]model.Patch{
			{model.ThoughtPatch{Tools: []model.ToolStatus{
				{ID: "t1", Display: "Searching drug corpus", Status: model.StatusWorking},
			}}},
			{model.TextPatch{Text: "Aspirin is "}},
			{model.TextPatch{Text: "an NSAID."}},
			{model.ThoughtPatch{Tools: []model.ToolStatus{
				{ID: "t1", Status: model.StatusDone, Output: "3 hits"},
			}}},
			{model.EntityPatch{Entities: []model.EntityResult{
				{ID: "d1", Category: model.EntityDrug, Name: "Aspirin"},
			}}},
			{model.ReferencePatch{Groups: []model.ReferenceGroup{
				{Name: "PubMed", Refs: []model.Reference{{ID: "r1", Title: "Aspirin therapy"}}},
			}}},
		},
	}

	s := New(streamer)
	require.NoError(t, s.Send(context.Background(), "What is aspirin?"))
	waitIdle(t, s)

	conv := s.Conversation()
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "What is aspirin?", conv.Title)

	answer := conv.Messages[1]
	assert.Equal(t, model.RoleAgent, answer.Role)
	assert.False(t, answer.Streaming)
	assert.Equal(t, "Aspirin is an NSAID.", answer.Content)

	require.Len(t, answer.Thoughts, 1)
	assert.Equal(t, model.StatusDone, answer.Thoughts[0].Status)
	assert.Equal(t, "3 hits", answer.Thoughts[0].Output)
	assert.Equal(t, "Searching drug corpus", answer.Thoughts[0].Content)

	require.Len(t, answer.Entities, 1)
	assert.Equal(t, "Aspirin", answer.Entities[0].Name)
	require.Len(t, answer.References, 1)
	assert.Equal(t, "PubMed", answer.References[0].Name)
}

func TestSend_RequestCarriesHistoryAndSelection(t *testing.T) {
	streamer := &scriptedStreamer{
		batches: [][]model.Patch{{model.TextPatch{Text: "first answer"}}},
	}
	s := New(streamer)
	s.SetSelection([]string{"pubmed"}, []string{"interactions"})

	require.NoError(t, s.Send(context.Background(), "first question"))
	waitIdle(t, s)

	require.NoError(t, s.Send(context.Background(), "second question"))
	waitIdle(t, s)

	req := streamer.gotReq
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "first question", req.Messages[0].Content)
	assert.Equal(t, "ai", req.Messages[1].Role)
	assert.Equal(t, "first answer", req.Messages[1].Content)
	assert.Equal(t, "second question", req.Messages[2].Content)
	assert.Equal(t, []string{"pubmed"}, req.Sources)
	assert.Equal(t, []string{"interactions"}, req.Tools)
}

func TestSend_TransportErrorKeepsPartialContent(t *testing.T) {
	streamer := &scriptedStreamer{
		batches: [][]model.Patch{{model.TextPatch{Text: "partial answer"}}},
		err:     &agent.StreamError{Partial: "partial answer", Err: errors.New("connection reset")},
	}
	s := New(streamer)
	require.NoError(t, s.Send(context.Background(), "q"))
	waitIdle(t, s)

	answer := s.Conversation().Messages[1]
	assert.False(t, answer.Streaming)
	assert.Contains(t, answer.Content, "partial answer")
	assert.Contains(t, answer.Content, "connection lost")
}

func TestSend_EmptyQuestionRejected(t *testing.T) {
	s := New(&scriptedStreamer{})
	assert.Error(t, s.Send(context.Background(), "   "))
}

func TestReset_CancelsInFlightStream(t *testing.T) {
	streamer := &scriptedStreamer{
		batches: [][]model.Patch{{model.TextPatch{Text: "will be abandoned"}}},
		block:   make(chan struct{}),
	}
	s := New(streamer)
	require.NoError(t, s.Send(context.Background(), "q"))

	// Give the stream a moment to deliver its first batch.
	deadline := time.After(2 * time.Second)
	for {
		if m, ok := s.Conversation().Last(); ok && m.Content != "" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first batch never arrived")
		case <-time.After(5 * time.Millisecond):
		}
	}

	s.Reset()
	waitIdle(t, s)

	conv := s.Conversation()
	assert.Empty(t, conv.Messages)
	assert.Equal(t, "New conversation", conv.Title)
}

func TestSend_SecondQuestionFinalizesFirst(t *testing.T) {
	blocked := &scriptedStreamer{
		batches: [][]model.Patch{{model.TextPatch{Text: "slow answer"}}},
		block:   make(chan struct{}),
	}
	s := New(blocked)
	require.NoError(t, s.Send(context.Background(), "first"))

	deadline := time.After(2 * time.Second)
	for {
		if m, ok := s.Conversation().Last(); ok && m.Content != "" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first batch never arrived")
		case <-time.After(5 * time.Millisecond):
		}
	}

	require.NoError(t, s.Send(context.Background(), "second"))
	waitIdle(t, s)

	conv := s.Conversation()
	require.Len(t, conv.Messages, 4)
	first := conv.Messages[1]
	assert.False(t, first.Streaming, "interrupted answer must be finalized")
	assert.Equal(t, "slow answer", first.Content)
}

func TestApply_UnknownTargetIsNoOp(t *testing.T) {
	s := New(&scriptedStreamer{})
	before := s.Conversation()
	s.apply("msg_gone", []model.Patch{model.TextPatch{Text: "ghost"}})
	assert.Equal(t, before.Messages, s.Conversation().Messages)
}

func TestUpdates_PublishesSnapshots(t *testing.T) {
	streamer := &scriptedStreamer{
		batches: [][]model.Patch{{model.TextPatch{Text: "hi"}}},
	}
	s := New(streamer)
	require.NoError(t, s.Send(context.Background(), "q"))
	waitIdle(t, s)

	var last Conversation
	for {
		select {
		case snap := <-s.Updates():
			last = snap
			continue
		default:
		}
		break
	}
	require.Len(t, last.Messages, 2)
	assert.Equal(t, "hi", last.Messages[1].Content)
	assert.False(t, last.Messages[1].Streaming)
}
