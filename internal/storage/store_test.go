// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/openmedix/mediq-tui/internal/agent"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "mediq.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSelectionRoundTrip(t *testing.T) {
	store := openTestStore(t)

	sources, tools, err := store.LoadSelection()
	if err != nil {
		t.Fatalf("LoadSelection on empty store failed: %v", err)
	}
	if sources != nil || tools != nil {
		t.Errorf("expected nil selections on empty store, got %v / %v", sources, tools)
	}

	if err := store.SaveSelection([]string{"pubmed", "drugbank"}, []string{"calc"}); err != nil {
		t.Fatalf("SaveSelection failed: %v", err)
	}

	sources, tools, err = store.LoadSelection()
	if err != nil {
		t.Fatalf("LoadSelection failed: %v", err)
	}
	if len(sources) != 2 || sources[0] != "pubmed" || sources[1] != "drugbank" {
		t.Errorf("unexpected sources: %v", sources)
	}
	if len(tools) != 1 || tools[0] != "calc" {
		t.Errorf("unexpected tools: %v", tools)
	}

	// Overwrite replaces, not appends.
	if err := store.SaveSelection([]string{"pubmed"}, nil); err != nil {
		t.Fatalf("SaveSelection overwrite failed: %v", err)
	}
	sources, tools, err = store.LoadSelection()
	if err != nil {
		t.Fatalf("LoadSelection after overwrite failed: %v", err)
	}
	if len(sources) != 1 || sources[0] != "pubmed" {
		t.Errorf("unexpected sources after overwrite: %v", sources)
	}
	if len(tools) != 0 {
		t.Errorf("expected empty tools after overwrite, got %v", tools)
	}
}

func TestSelectionSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediq.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.SaveSelection([]string{"icd10"}, []string{"dosage"}); err != nil {
		t.Fatalf("SaveSelection failed: %v", err)
	}
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	sources, tools, err := store.LoadSelection()
	if err != nil {
		t.Fatalf("LoadSelection failed: %v", err)
	}
	if len(sources) != 1 || sources[0] != "icd10" {
		t.Errorf("unexpected sources: %v", sources)
	}
	if len(tools) != 1 || tools[0] != "dosage" {
		t.Errorf("unexpected tools: %v", tools)
	}
}

func TestCatalogCacheRoundTrip(t *testing.T) {
	store := openTestStore(t)

	_, ok, err := store.CachedDataSources(time.Hour)
	if err != nil {
		t.Fatalf("CachedDataSources on empty store failed: %v", err)
	}
	if ok {
		t.Error("expected cache miss on empty store")
	}

	in := []agent.DataSource{
		{ID: "pubmed", Name: "PubMed", Description: "Biomedical literature", Type: "literature"},
		{ID: "drugbank", Name: "DrugBank", Type: "drugs"},
	}
	if err := store.CacheDataSources(in); err != nil {
		t.Fatalf("CacheDataSources failed: %v", err)
	}

	out, ok, err := store.CachedDataSources(time.Hour)
	if err != nil {
		t.Fatalf("CachedDataSources failed: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(out) != 2 || out[0].ID != "pubmed" || out[1].Name != "DrugBank" {
		t.Errorf("unexpected cached sources: %+v", out)
	}
}

func TestCatalogCacheFreshness(t *testing.T) {
	store := openTestStore(t)

	if err := store.CacheToolConfigs([]agent.ToolConfig{{ID: "calc", Name: "Calculator"}}); err != nil {
		t.Fatalf("CacheToolConfigs failed: %v", err)
	}

	// Zero maxAge disables the freshness check.
	out, ok, err := store.CachedToolConfigs(0)
	if err != nil {
		t.Fatalf("CachedToolConfigs failed: %v", err)
	}
	if !ok || len(out) != 1 {
		t.Errorf("expected hit with freshness disabled, got ok=%v %+v", ok, out)
	}

	// A fetched_at in the future of any positive window is still fresh;
	// force staleness by backdating the row.
	if _, err := store.db.Exec(
		`UPDATE catalog_cache SET fetched_at = ? WHERE kind = ?`,
		time.Now().Add(-2*time.Hour).Unix(), kindToolConfigs); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}

	_, ok, err = store.CachedToolConfigs(time.Hour)
	if err != nil {
		t.Fatalf("CachedToolConfigs after backdate failed: %v", err)
	}
	if ok {
		t.Error("expected stale cache miss")
	}
}

func TestValidatedEndpoints(t *testing.T) {
	store := openTestStore(t)

	eps, err := store.ValidatedEndpoints()
	if err != nil {
		t.Fatalf("ValidatedEndpoints on empty store failed: %v", err)
	}
	if len(eps) != 0 {
		t.Errorf("expected no endpoints, got %+v", eps)
	}

	if err := store.RecordValidation("http://localhost:7000/mcp", []string{"lookup", "convert"}); err != nil {
		t.Fatalf("RecordValidation failed: %v", err)
	}
	// Re-recording the same URL updates in place.
	if err := store.RecordValidation("http://localhost:7000/mcp", []string{"lookup"}); err != nil {
		t.Fatalf("RecordValidation update failed: %v", err)
	}

	eps, err = store.ValidatedEndpoints()
	if err != nil {
		t.Fatalf("ValidatedEndpoints failed: %v", err)
	}
	if len(eps) != 1 {
		t.Fatalf("expected 1 endpoint, got %d", len(eps))
	}
	if eps[0].URL != "http://localhost:7000/mcp" {
		t.Errorf("unexpected URL: %s", eps[0].URL)
	}
	if len(eps[0].Tools) != 1 || eps[0].Tools[0] != "lookup" {
		t.Errorf("unexpected tools: %v", eps[0].Tools)
	}
	if eps[0].ValidatedAt.IsZero() {
		t.Error("expected non-zero validation time")
	}

	if err := store.ForgetValidation("http://localhost:7000/mcp"); err != nil {
		t.Fatalf("ForgetValidation failed: %v", err)
	}
	eps, err = store.ValidatedEndpoints()
	if err != nil {
		t.Fatalf("ValidatedEndpoints after forget failed: %v", err)
	}
	if len(eps) != 0 {
		t.Errorf("expected no endpoints after forget, got %+v", eps)
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "mediq.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open with missing parent failed: %v", err)
	}
	store.Close()
}
