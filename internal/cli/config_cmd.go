// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - configuration command handler.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/openmedix/mediq-tui/internal/config"
	"github.com/openmedix/mediq-tui/internal/ui/styles"
)

// HandleConfig implements the config subcommands.
//
//	mediq config show              print every key and its value
//	mediq config get <key>         print one value
//	mediq config set <key> <val>   change and save one value
//	mediq config path              print the config file location
//	mediq config reset             rewrite the file with defaults
func HandleConfig(args Args) int {
	cfg := config.Global()

	switch args.Parser.Subcommand() {
	case "", "show":
		for _, key := range config.GetAllKeys() {
			value, err := cfg.Get(key)
			if err != nil {
				continue
			}
			fmt.Printf("%-28s = %v\n", key, value)
		}
		return 0

	case "get":
		key := args.Parser.Positional(1)
		if key == "" {
			fmt.Fprintln(os.Stderr, styles.RenderError("usage: mediq config get <key>"))
			return 1
		}
		value, err := cfg.Get(key)
		if err != nil {
			fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
			return 1
		}
		fmt.Printf("%v\n", value)
		return 0

	case "set":
		key := args.Parser.Positional(1)
		value := args.Parser.Positional(2)
		if key == "" || value == "" {
			fmt.Fprintln(os.Stderr, styles.RenderError("usage: mediq config set <key> <value>"))
			return 1
		}
		if err := cfg.Set(key, value); err != nil {
			fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
			return 1
		}
		if err := config.Save(cfg); err != nil {
			fmt.Fprintln(os.Stderr, styles.RenderError("saving failed: "+err.Error()))
			return 1
		}
		fmt.Println(styles.RenderSuccess(key + " updated"))
		return 0

	case "path":
		dir, err := config.ConfigDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
			return 1
		}
		fmt.Println(filepath.Join(dir, "config.toml"))
		return 0

	case "reset":
		defaults := config.Default()
		if err := config.Save(defaults); err != nil {
			fmt.Fprintln(os.Stderr, styles.RenderError("reset failed: "+err.Error()))
			return 1
		}
		config.SetGlobal(defaults)
		fmt.Println(styles.RenderSuccess("configuration reset to defaults"))
		return 0

	default:
		fmt.Fprintln(os.Stderr, styles.RenderError("unknown config subcommand: "+args.Parser.Subcommand()))
		return 1
	}
}
