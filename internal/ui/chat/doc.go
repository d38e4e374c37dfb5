// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for mediq.
//
// The view does not own conversation state. The store is the single
// writer: key input turns into store calls (Send, Reset, Stop), and the
// view re-renders from immutable conversation snapshots delivered on the
// store's update channel. A snapshot subscription command bridges the
// channel into the Bubble Tea message loop.
//
// Layout is a scrollable transcript viewport over an input line, with an
// optional sidebar for toggling knowledge sources and MCP tools. Sidebar
// toggles feed back into the store's selection so the next question
// carries them.
package chat
