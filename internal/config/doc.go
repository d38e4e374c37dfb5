// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - GatewayConfig: Backend gateway address and request limits
//   - ChatConfig: Chat presentation behavior
//   - SelectionConfig: Default source/tool picks
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (MEDIQ_*)
//   - ~/.mediq/config.toml
//   - ~/.mediq/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Watch for edits while the TUI runs:
//
//	w, _ := config.NewWatcher(func(cfg *config.Config) { ... })
//	w.Watch()
//	defer w.Close()
package config
