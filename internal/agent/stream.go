// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/openmedix/mediq-tui/internal/model"
	"github.com/openmedix/mediq-tui/internal/protocol"
)

// =============================================================================
// STREAMING TYPES
// =============================================================================

// streamReadSize is the transport read granularity. Frame boundaries never
// align with it; the protocol scanner's carry buffer absorbs the splits.
const streamReadSize = 4 * 1024

// PatchCallback receives each batch of patches decoded from one data frame.
// It is called from the goroutine driving the stream, in frame order.
type PatchCallback func(patches []model.Patch)

// StreamError is a transport failure mid-stream. The text accumulated
// before the failure is preserved so the caller can keep what arrived.
type StreamError struct {
	Partial string
	Err     error
}

func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChatStream posts the conversation to the gateway and pumps the SSE
// response through the protocol decoder, invoking callback for every frame
// that yields patches. It returns when the stream ends, the context is
// cancelled, or the transport fails.
//
// Malformed frames are logged and skipped; only transport failures abort.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest, callback PatchCallback) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	if len(req.Messages) == 0 {
		return fmt.Errorf("%w: empty message list", ErrBadRequest)
	}
	if req.UserID == "" {
		req.UserID = c.userID
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return c.handleErrorResponse(resp.StatusCode, body)
	}

	return c.processStream(ctx, resp.Body, callback)
}

// processStream reads raw chunks, scans them into frames, classifies each
// data frame, and forwards the patches.
func (c *Client) processStream(ctx context.Context, body io.Reader, callback PatchCallback) error {
	scanner := protocol.NewFrameScanner()
	var partial bytes.Buffer
	buf := make([]byte, streamReadSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			frames := scanner.Push(string(buf[:n]))
			if done := c.dispatchFrames(frames, callback, &partial); done {
				return nil
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				frames := scanner.Flush()
				c.dispatchFrames(frames, callback, &partial)
				return nil
			}
			if errors.Is(readErr, context.Canceled) || errors.Is(readErr, context.DeadlineExceeded) {
				return readErr
			}
			return &StreamError{Partial: partial.String(), Err: readErr}
		}
	}
}

// dispatchFrames classifies and forwards a batch of frames. It reports true
// once the end frame has been seen.
func (c *Client) dispatchFrames(frames []protocol.Frame, callback PatchCallback, partial *bytes.Buffer) bool {
	for _, frame := range frames {
		if frame.Kind == protocol.FrameEnd {
			return true
		}

		patches, err := protocol.Classify(frame.Raw)
		if err != nil {
			log.Printf("gateway: skipping frame: %v", err)
			continue
		}
		if len(patches) == 0 {
			continue
		}

		for _, p := range patches {
			if tp, ok := p.(model.TextPatch); ok {
				partial.WriteString(tp.Text)
			}
		}
		callback(patches)
	}
	return false
}

// =============================================================================
// CHANNEL-BASED STREAMING
// =============================================================================

// StreamEvent is one delivery on the channel-based stream API: a patch
// batch, or a terminal error.
type StreamEvent struct {
	Patches []model.Patch
	Err     error
}

// ChatStreamChan runs ChatStream on a goroutine and delivers patch batches
// over a channel. The channel closes when the stream finishes; a terminal
// error arrives as the final event.
func (c *Client) ChatStreamChan(ctx context.Context, req ChatRequest) <-chan StreamEvent {
	events := make(chan StreamEvent, 64)

	go func() {
		defer close(events)

		err := c.ChatStream(ctx, req, func(patches []model.Patch) {
			select {
			case events <- StreamEvent{Patches: patches}:
			case <-ctx.Done():
			}
		})
		if err != nil {
			select {
			case events <- StreamEvent{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return events
}
