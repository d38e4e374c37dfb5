// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import "strings"

// =============================================================================
// FRAME TYPES
// =============================================================================

// FrameKind discriminates the two frame shapes the stream can carry.
type FrameKind int

const (
	// FrameData is a "data:" record whose payload goes to the classifier.
	FrameData FrameKind = iota
	// FrameEnd is the stream-termination marker.
	FrameEnd
)

// Frame is one parsed unit of the stream protocol.
type Frame struct {
	Kind FrameKind
	// Raw is the data payload with the "data:" prefix stripped and
	// surrounding whitespace trimmed. Empty for FrameEnd.
	Raw string
}

// Protocol markers.
const (
	dataPrefix = "data:"
	endMarker  = "event: end"

	// StopSentinel marks a data frame that signals generation stop at the
	// payload level. It is discarded by the scanner: it is not content and
	// it is not the termination frame.
	StopSentinel = "[stop]"
)

// =============================================================================
// FRAME SCANNER
// =============================================================================

// FrameScanner splits an unbounded sequence of text chunks into frames.
// The transport may cut lines anywhere; the scanner keeps the trailing
// partial line in a carry buffer so the emitted frame sequence is identical
// for every chunk splitting of the same stream.
//
// The zero value is ready to use.
type FrameScanner struct {
	carry string
	ended bool
}

// NewFrameScanner creates a scanner with an empty carry buffer.
func NewFrameScanner() *FrameScanner {
	return &FrameScanner{}
}

// Push feeds the next chunk and returns every frame completed by it.
// After an end frame has been seen, further input is ignored.
func (s *FrameScanner) Push(chunk string) []Frame {
	if s.ended {
		return nil
	}

	s.carry += chunk

	var frames []Frame
	for {
		nl := strings.IndexByte(s.carry, '\n')
		if nl < 0 {
			break
		}
		line := s.carry[:nl]
		s.carry = s.carry[nl+1:]

		frame, ok := s.scanLine(line)
		if !ok {
			continue
		}
		frames = append(frames, frame)
		if frame.Kind == FrameEnd {
			s.ended = true
			s.carry = ""
			break
		}
	}
	return frames
}

// Flush processes the trailing partial line when the transport signals EOF.
// A stream that ends without a final newline still yields its last frame.
func (s *FrameScanner) Flush() []Frame {
	if s.ended || s.carry == "" {
		return nil
	}
	line := s.carry
	s.carry = ""

	frame, ok := s.scanLine(line)
	if !ok {
		return nil
	}
	if frame.Kind == FrameEnd {
		s.ended = true
	}
	return []Frame{frame}
}

// Ended reports whether the termination frame has been observed.
func (s *FrameScanner) Ended() bool {
	return s.ended
}

// scanLine classifies a single complete line. Lines that are neither data
// records nor the end marker are dropped silently, as are data records
// carrying the stop sentinel.
func (s *FrameScanner) scanLine(line string) (Frame, bool) {
	line = strings.TrimRight(line, "\r")

	if strings.HasPrefix(line, endMarker) {
		return Frame{Kind: FrameEnd}, true
	}

	if !strings.HasPrefix(line, dataPrefix) {
		return Frame{}, false
	}

	payload := strings.TrimSpace(line[len(dataPrefix):])
	if payload == "" {
		return Frame{}, false
	}

	// A payload-level stop is a distinct signal from the end frame; it is
	// never handed to the classifier as content.
	if strings.Contains(payload, StopSentinel) {
		return Frame{}, false
	}

	return Frame{Kind: FrameData, Raw: payload}, true
}
