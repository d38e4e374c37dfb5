// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmedix/mediq-tui/internal/model"
)

// sseHandler streams the given lines as an SSE response, flushing per line
// so the client sees realistic chunk boundaries.
func sseHandler(t *testing.T, lines []string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)

		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		for _, line := range lines {
			_, err := w.Write([]byte(line + "\n"))
			require.NoError(t, err)
			flusher.Flush()
		}
	}
}

func dataLine(t *testing.T, env Envelope) string {
	t.Helper()
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return "data: " + string(b)
}

// Envelope mirrors the wire envelope so test bodies stay readable.
type Envelope struct {
	Type    int    `json:"type"`
	Message string `json:"message"`
}

func TestChatStream_TextFrames(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, []string{
		dataLine(t, Envelope{Type: 4, Message: "Aspirin "}),
		dataLine(t, Envelope{Type: 4, Message: "is an NSAID."}),
		"data: [stop]",
		"event: end",
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tester")
	var text strings.Builder
	err := client.ChatStream(context.Background(), ChatRequest{
		Messages: []ChatTurn{{Role: "user", Content: "What is aspirin?"}},
	}, func(patches []model.Patch) {
		for _, p := range patches {
			if tp, ok := p.(model.TextPatch); ok {
				text.WriteString(tp.Text)
			}
		}
	})
	require.NoError(t, err)
	assert.Equal(t, "Aspirin is an NSAID.", text.String())
}

func TestChatStream_MalformedFrameSkipped(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, []string{
		dataLine(t, Envelope{Type: 4, Message: "before "}),
		"data: {not json",
		dataLine(t, Envelope{Type: 4, Message: "after"}),
		"event: end",
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tester")
	var text strings.Builder
	err := client.ChatStream(context.Background(), ChatRequest{
		Messages: []ChatTurn{{Role: "user", Content: "q"}},
	}, func(patches []model.Patch) {
		for _, p := range patches {
			if tp, ok := p.(model.TextPatch); ok {
				text.WriteString(tp.Text)
			}
		}
	})
	require.NoError(t, err)
	assert.Equal(t, "before after", text.String())
}

func TestChatStream_EmptyMessages(t *testing.T) {
	client := NewClient("http://unused.local", "tester")
	err := client.ChatStream(context.Background(), ChatRequest{}, func([]model.Patch) {})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestChatStream_UserIDDefaulted(t *testing.T) {
	var gotUserID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotUserID = req.UserID
		w.Write([]byte("event: end\n"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "dr-jones")
	err := client.ChatStream(context.Background(), ChatRequest{
		Messages: []ChatTurn{{Role: "user", Content: "q"}},
	}, func([]model.Patch) {})
	require.NoError(t, err)
	assert.Equal(t, "dr-jones", gotUserID)
}

func TestChatStream_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Invalid JSON payload."}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tester")
	err := client.ChatStream(context.Background(), ChatRequest{
		Messages: []ChatTurn{{Role: "user", Content: "q"}},
	}, func([]model.Patch) {})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestChatStream_Cancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(srv.URL, "tester")

	done := make(chan error, 1)
	go func() {
		done <- client.ChatStream(ctx, ChatRequest{
			Messages: []ChatTurn{{Role: "user", Content: "q"}},
		}, func([]model.Patch) {})
	}()

	cancel()
	err := <-done
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled) || isStreamAbort(err))
}

// isStreamAbort matches the transport-level shapes a cancelled body read
// can surface as.
func isStreamAbort(err error) bool {
	var se *StreamError
	if errors.As(err, &se) {
		return true
	}
	return strings.Contains(err.Error(), "context canceled")
}

func TestChatStream_EOFWithoutEndFrame(t *testing.T) {
	// Connection drop after partial content: no end frame, plain EOF.
	srv := httptest.NewServer(sseHandler(t, []string{
		dataLine(t, Envelope{Type: 4, Message: "partial answer"}),
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tester")
	var text strings.Builder
	err := client.ChatStream(context.Background(), ChatRequest{
		Messages: []ChatTurn{{Role: "user", Content: "q"}},
	}, func(patches []model.Patch) {
		for _, p := range patches {
			if tp, ok := p.(model.TextPatch); ok {
				text.WriteString(tp.Text)
			}
		}
	})
	require.NoError(t, err)
	assert.Equal(t, "partial answer", text.String())
}

func TestChatStreamChan(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, []string{
		dataLine(t, Envelope{Type: 4, Message: "hello"}),
		"event: end",
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tester")
	events := client.ChatStreamChan(context.Background(), ChatRequest{
		Messages: []ChatTurn{{Role: "user", Content: "q"}},
	})

	var text strings.Builder
	for ev := range events {
		require.NoError(t, ev.Err)
		for _, p := range ev.Patches {
			if tp, ok := p.(model.TextPatch); ok {
				text.WriteString(tp.Text)
			}
		}
	}
	assert.Equal(t, "hello", text.String())
}
