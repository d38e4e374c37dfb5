// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package selection tracks which data sources and MCP tools the user has
// enabled for the next question. The state is a plain value: snapshots are
// cheap to copy and the UI renders from a copy while the store owns the
// authoritative one.
package selection
