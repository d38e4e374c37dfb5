// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent is the HTTP client for the MedIQ backend gateway.
//
// The gateway exposes a streaming chat endpoint plus small JSON catalogs for
// data sources and MCP tool endpoints. Chat responses arrive as Server-Sent
// Events; this package pumps the raw stream through the protocol scanner and
// classifier and hands the resulting patches to the caller, who owns all
// message state.
package agent
