// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the medical Q&A chat:
// messages, thought steps, reference groups, extracted entities, and the
// reducer that folds stream patches into immutable message snapshots.
//
// The reducer is pure: Apply never mutates its input, so the UI can hold
// references to historical snapshots while the stream keeps arriving.
package model
