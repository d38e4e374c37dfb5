// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles defines the mediq color palette and lipgloss styles.
//
// Colors are adaptive pairs that resolve against the detected terminal
// background, so the same palette works on light and dark terminals.
// Theme bundles every style the chat view, sidebar, and panels use; a
// single Theme is built at startup and threaded through the UI.
//
// Entity highlight hues are keyed by kind ("disease", "drug", "symptom")
// via Theme.EntityStyle so answer text, the entity panel, and the
// reference panel stay visually consistent.
package styles
