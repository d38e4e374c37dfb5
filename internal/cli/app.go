// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - shared command runtime: config, gateway client, local storage,
// and the catalog/selection bootstrap every command needs.
package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/openmedix/mediq-tui/internal/agent"
	"github.com/openmedix/mediq-tui/internal/config"
	"github.com/openmedix/mediq-tui/internal/selection"
	"github.com/openmedix/mediq-tui/internal/storage"
)

// catalogTimeout bounds the catalog fetch at startup so a dead gateway
// cannot hang the CLI.
const catalogTimeout = 10 * time.Second

// App bundles the dependencies shared by every command.
type App struct {
	Config    *config.Config
	Client    *agent.Client
	Storage   *storage.Store
	Selection selection.State

	// Online is false when the catalogs came from the local cache.
	Online bool

	quiet   bool
	verbose bool
}

// NewApp builds the command runtime. Local storage failures degrade to
// cache-less operation rather than aborting.
func NewApp(args Args) *App {
	cfg := config.Global()

	baseURL := cfg.Gateway.BaseURL
	if args.Gateway != "" {
		baseURL = args.Gateway
	}
	userID := cfg.Gateway.UserID
	if args.UserID != "" {
		userID = args.UserID
	}
	if userID == "" {
		// First run: mint a stable id and keep it in the config file so
		// the gateway sees the same user across sessions.
		userID = "user_" + uuid.NewString()
		cfg.Gateway.UserID = userID
		if err := config.Save(cfg); err != nil && args.Verbose {
			log.Printf("[mediq] could not persist generated user id: %v", err)
		}
	}

	client := agent.NewClient(baseURL, userID).
		WithTimeout(time.Duration(cfg.Gateway.TimeoutSecs) * time.Second).
		WithMaxRetries(cfg.Gateway.MaxRetries)

	app := &App{
		Config:  cfg,
		Client:  client,
		Online:  true,
		quiet:   args.Quiet,
		verbose: args.Verbose,
	}

	path, err := cfg.StoragePath()
	if err == nil {
		if store, serr := storage.Open(path); serr == nil {
			app.Storage = store
		} else if args.Verbose {
			log.Printf("[mediq] local storage unavailable: %v", serr)
		}
	}

	return app
}

// Close releases the app's resources.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
	}
}

// LoadCatalogs fetches the source and tool catalogs from the gateway,
// falling back to the local cache when the gateway is unreachable. The
// resulting selection is seeded from saved preferences.
func (a *App) LoadCatalogs(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, catalogTimeout)
	defer cancel()

	sources, srcErr := a.Client.FetchDataSources(ctx)
	tools, toolErr := a.Client.FetchToolConfigs(ctx)

	if srcErr == nil && toolErr == nil {
		a.cacheCatalogs(sources, tools)
	} else {
		cached, ok := a.cachedCatalogs()
		if !ok {
			if srcErr != nil {
				return fmt.Errorf("gateway unreachable and no cached catalogs: %w", srcErr)
			}
			return fmt.Errorf("gateway unreachable and no cached catalogs: %w", toolErr)
		}
		sources, tools = cached.sources, cached.tools
		a.Online = false
		if !a.quiet {
			log.Printf("[mediq] gateway unreachable, using cached catalogs")
		}
	}

	a.Selection = selection.New(sources, tools)
	a.restoreSelection()
	return nil
}

func (a *App) cacheCatalogs(sources []agent.DataSource, tools []agent.ToolConfig) {
	if a.Storage == nil {
		return
	}
	if err := a.Storage.CacheDataSources(sources); err != nil && a.verbose {
		log.Printf("[mediq] caching sources failed: %v", err)
	}
	if err := a.Storage.CacheToolConfigs(tools); err != nil && a.verbose {
		log.Printf("[mediq] caching tools failed: %v", err)
	}
}

type cachedCatalogSet struct {
	sources []agent.DataSource
	tools   []agent.ToolConfig
}

func (a *App) cachedCatalogs() (cachedCatalogSet, bool) {
	if a.Storage == nil {
		return cachedCatalogSet{}, false
	}

	maxAge := time.Duration(a.Config.Storage.CatalogCacheHours) * time.Hour
	sources, okS, _ := a.Storage.CachedDataSources(maxAge)
	tools, okT, _ := a.Storage.CachedToolConfigs(maxAge)
	if !okS {
		return cachedCatalogSet{}, false
	}
	if !okT {
		tools = nil
	}
	return cachedCatalogSet{sources: sources, tools: tools}, true
}

// restoreSelection applies saved ids, then config-file ids on top when
// nothing was saved. Stale ids are dropped by the selection layer.
func (a *App) restoreSelection() {
	var savedSources, savedTools []string
	if a.Storage != nil {
		savedSources, savedTools, _ = a.Storage.LoadSelection()
	}
	if len(savedSources) == 0 {
		savedSources = a.Config.Selection.Sources
	}
	if len(savedTools) == 0 {
		savedTools = a.Config.Selection.Tools
	}

	if len(savedSources) > 0 {
		a.Selection = a.Selection.RestoreSources(savedSources)
	}
	if len(savedTools) > 0 {
		a.Selection = a.Selection.RestoreTools(savedTools)
	}
}

// SaveSelection persists the current selection.
func (a *App) SaveSelection(sel selection.State) {
	a.Selection = sel
	if a.Storage == nil {
		return
	}
	err := a.Storage.SaveSelection(sel.SelectedSourceIDs(), sel.SelectedToolIDs())
	if err != nil && a.verbose {
		log.Printf("[mediq] saving selection failed: %v", err)
	}
}
