// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol implements the wire protocol of the Q&A backend's answer
// stream: newline-delimited SSE-style frames carrying a {type, message}
// JSON envelope per chunk.
//
// The package has two layers. The frame scanner splits arbitrarily-chunked
// text into discrete frames without caring what they contain; the classifier
// decodes one frame's envelope into the patch the message reducer applies.
// Both layers are pure and never abort the stream on a bad frame.
package protocol
