// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store owns conversation state. All mutation funnels through the
// store: the stream goroutine applies patches here, the UI reads immutable
// snapshots from the update channel, and nothing else holds message state.
//
// Starting a new question or a new conversation cancels any in-flight
// stream; patches from a cancelled stream target a message id the current
// conversation no longer streams, so they fall through as no-ops.
package store
