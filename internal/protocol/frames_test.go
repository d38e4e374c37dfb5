// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameScanner_SingleFrame(t *testing.T) {
	s := NewFrameScanner()
	frames := s.Push("data: {\"type\":4,\"message\":\"hi\"}\n")
	require.Len(t, frames, 1)
	assert.Equal(t, FrameData, frames[0].Kind)
	assert.Equal(t, `{"type":4,"message":"hi"}`, frames[0].Raw)
}

func TestFrameScanner_SplitAcrossChunks(t *testing.T) {
	s := NewFrameScanner()
	assert.Empty(t, s.Push("data: {\"type\":4,"))
	assert.Empty(t, s.Push("\"message\":\"hel"))
	frames := s.Push("lo\"}\ndata: x\n")
	require.Len(t, frames, 2)
	assert.Equal(t, `{"type":4,"message":"hello"}`, frames[0].Raw)
	assert.Equal(t, "x", frames[1].Raw)
}

// Byte-at-a-time delivery must produce the same frames as one big chunk.
func TestFrameScanner_ChunkSplitInvariance(t *testing.T) {
	input := "data: one\r\ndata: two\n\ndata: three\nevent: end\n"

	whole := NewFrameScanner()
	want := whole.Push(input)
	want = append(want, whole.Flush()...)

	byBytes := NewFrameScanner()
	var got []Frame
	for i := 0; i < len(input); i++ {
		got = append(got, byBytes.Push(input[i:i+1])...)
	}
	got = append(got, byBytes.Flush()...)

	assert.Equal(t, want, got)
}

func TestFrameScanner_StopSentinelDiscarded(t *testing.T) {
	s := NewFrameScanner()
	frames := s.Push("data: before\ndata: [stop]\ndata: after\n")
	require.Len(t, frames, 2)
	assert.Equal(t, "before", frames[0].Raw)
	assert.Equal(t, "after", frames[1].Raw)
}

func TestFrameScanner_EndMarkerStopsInput(t *testing.T) {
	s := NewFrameScanner()
	frames := s.Push("data: a\nevent: end\ndata: late\n")
	require.Len(t, frames, 2)
	assert.Equal(t, FrameData, frames[0].Kind)
	assert.Equal(t, FrameEnd, frames[1].Kind)
	assert.True(t, s.Ended())

	assert.Empty(t, s.Push("data: more\n"))
}

func TestFrameScanner_BlankAndUnknownLinesSkipped(t *testing.T) {
	s := NewFrameScanner()
	frames := s.Push("\n: comment\nretry: 3000\ndata: keep\n\n")
	require.Len(t, frames, 1)
	assert.Equal(t, "keep", frames[0].Raw)
}

func TestFrameScanner_FlushEmitsTrailingLine(t *testing.T) {
	s := NewFrameScanner()
	assert.Empty(t, s.Push("data: tail"))
	frames := s.Flush()
	require.Len(t, frames, 1)
	assert.Equal(t, "tail", frames[0].Raw)

	// Flush is terminal.
	assert.Empty(t, s.Flush())
}

func TestFrameScanner_EmptyPayloadDiscarded(t *testing.T) {
	s := NewFrameScanner()
	assert.Empty(t, s.Push("data:\ndata:   \n"))
}
