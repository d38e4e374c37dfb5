// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/openmedix/mediq-tui/internal/agent"
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS preferences (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS catalog_cache (
	kind       TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	fetched_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS validated_endpoints (
	url          TEXT PRIMARY KEY,
	tools        TEXT NOT NULL,
	validated_at INTEGER NOT NULL
);
`

// Preference keys.
const (
	prefSelectedSources = "selected_sources"
	prefSelectedTools   = "selected_tools"
)

// Catalog cache kinds.
const (
	kindDataSources = "datasources"
	kindToolConfigs = "mcp_configs"
)

// =============================================================================
// STORE
// =============================================================================

// Store is the local SQLite-backed preference store. Safe for concurrent
// use; database/sql serializes access.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// SELECTION PREFERENCES
// =============================================================================

// SaveSelection stores the enabled source and tool ids.
func (s *Store) SaveSelection(sourceIDs, toolIDs []string) error {
	if err := s.putJSON(prefSelectedSources, sourceIDs); err != nil {
		return err
	}
	return s.putJSON(prefSelectedTools, toolIDs)
}

// LoadSelection returns the saved source and tool ids. Missing keys yield
// nil slices, not errors.
func (s *Store) LoadSelection() (sourceIDs, toolIDs []string, err error) {
	if err := s.getJSON(prefSelectedSources, &sourceIDs); err != nil {
		return nil, nil, err
	}
	if err := s.getJSON(prefSelectedTools, &toolIDs); err != nil {
		return nil, nil, err
	}
	return sourceIDs, toolIDs, nil
}

func (s *Store) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(data))
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (s *Store) getJSON(key string, out any) error {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// =============================================================================
// CATALOG CACHE
// =============================================================================

// CacheDataSources stores the fetched data source catalog.
func (s *Store) CacheDataSources(sources []agent.DataSource) error {
	return s.cachePut(kindDataSources, sources)
}

// CachedDataSources returns the cached catalog if it is younger than
// maxAge. A stale or missing cache yields (nil, false).
func (s *Store) CachedDataSources(maxAge time.Duration) ([]agent.DataSource, bool, error) {
	var sources []agent.DataSource
	ok, err := s.cacheGet(kindDataSources, maxAge, &sources)
	return sources, ok, err
}

// CacheToolConfigs stores the fetched MCP tool catalog.
func (s *Store) CacheToolConfigs(configs []agent.ToolConfig) error {
	return s.cachePut(kindToolConfigs, configs)
}

// CachedToolConfigs returns the cached catalog if fresh enough.
func (s *Store) CachedToolConfigs(maxAge time.Duration) ([]agent.ToolConfig, bool, error) {
	var configs []agent.ToolConfig
	ok, err := s.cacheGet(kindToolConfigs, maxAge, &configs)
	return configs, ok, err
}

func (s *Store) cachePut(kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s catalog: %w", kind, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO catalog_cache (kind, payload, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(kind) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		kind, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to cache %s catalog: %w", kind, err)
	}
	return nil
}

func (s *Store) cacheGet(kind string, maxAge time.Duration, out any) (bool, error) {
	var payload string
	var fetchedAt int64
	err := s.db.QueryRow(
		`SELECT payload, fetched_at FROM catalog_cache WHERE kind = ?`, kind).
		Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s catalog: %w", kind, err)
	}

	if maxAge > 0 && time.Since(time.Unix(fetchedAt, 0)) > maxAge {
		return false, nil
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false, fmt.Errorf("failed to decode %s catalog: %w", kind, err)
	}
	return true, nil
}

// =============================================================================
// VALIDATED ENDPOINTS
// =============================================================================

// ValidatedEndpoint is an MCP endpoint that passed a gateway probe.
type ValidatedEndpoint struct {
	URL         string
	Tools       []string
	ValidatedAt time.Time
}

// RecordValidation stores a successful MCP endpoint probe.
func (s *Store) RecordValidation(url string, tools []string) error {
	data, err := json.Marshal(tools)
	if err != nil {
		return fmt.Errorf("failed to encode tool list: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO validated_endpoints (url, tools, validated_at) VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET tools = excluded.tools, validated_at = excluded.validated_at`,
		url, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record validation: %w", err)
	}
	return nil
}

// ValidatedEndpoints lists recorded probes, most recent first.
func (s *Store) ValidatedEndpoints() ([]ValidatedEndpoint, error) {
	rows, err := s.db.Query(
		`SELECT url, tools, validated_at FROM validated_endpoints ORDER BY validated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list validated endpoints: %w", err)
	}
	defer rows.Close()

	var out []ValidatedEndpoint
	for rows.Next() {
		var ep ValidatedEndpoint
		var tools string
		var validatedAt int64
		if err := rows.Scan(&ep.URL, &tools, &validatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan endpoint row: %w", err)
		}
		if err := json.Unmarshal([]byte(tools), &ep.Tools); err != nil {
			return nil, fmt.Errorf("failed to decode tool list: %w", err)
		}
		ep.ValidatedAt = time.Unix(validatedAt, 0)
		out = append(out, ep)
	}
	return out, rows.Err()
}

// ForgetValidation removes a recorded endpoint.
func (s *Store) ForgetValidation(url string) error {
	_, err := s.db.Exec(`DELETE FROM validated_endpoints WHERE url = ?`, url)
	if err != nil {
		return fmt.Errorf("failed to forget endpoint: %w", err)
	}
	return nil
}
