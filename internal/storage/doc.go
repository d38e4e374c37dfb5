// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists small local state in a SQLite database:
// the user's saved source/tool selections, a cache of the gateway's
// catalogs for offline startup, and MCP endpoints that passed validation.
//
// Conversation content is never stored; only preferences and catalog
// metadata live here.
package storage
