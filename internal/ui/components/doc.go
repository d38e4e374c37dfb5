// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the mediq TUI.
//
// Each component renders one slice of a chat message: the question and
// answer bubbles, the reasoning trace, the tool thought cards, the
// reference panel with highlighted match sentences, and the linked
// medical entity panel. Components are pure renderers: they take a
// message snapshot and a theme and return styled text, with no state of
// their own beyond layout width.
package components
