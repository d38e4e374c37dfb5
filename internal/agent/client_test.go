// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDataSources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/datasources", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"pubmed","name":"PubMed","description":"Biomedical literature","type":"literature"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tester")
	sources, err := client.FetchDataSources(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "pubmed", sources[0].ID)
	assert.Equal(t, "literature", sources[0].Type)
}

func TestFetchToolConfigs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mcp/configs", r.URL.Path)
		w.Write([]byte(`[{"id":"interactions","name":"Drug interactions","description":"","enabled":true}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tester")
	configs, err := client.FetchToolConfigs(context.Background())
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.True(t, configs[0].Enabled)
}

func TestCatalogRetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tester")
	_, err := client.FetchDataSources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCatalogDoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Messages list cannot be empty."}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tester")
	_, err := client.FetchDataSources(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.Contains(t, err.Error(), "Messages list cannot be empty")
	assert.Equal(t, int32(1), calls.Load())
}

func TestServiceUnavailableMapsToErrUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail":"Could not connect to message broker."}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tester").WithMaxRetries(1)
	_, err := client.FetchDataSources(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestValidateTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/mcp/validate", r.URL.Path)
		w.Write([]byte(`{"status":"ok","message":"endpoint reachable","tools":["search","lookup"]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tester")
	result, err := client.ValidateTool(context.Background(), "https://mcp.example.org")
	require.NoError(t, err)
	assert.True(t, result.Valid())
	assert.Equal(t, []string{"search", "lookup"}, result.Tools)
}

func TestValidateToolBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"detail":"endpoint unreachable"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tester")
	_, err := client.ValidateTool(context.Background(), "https://down.example.org")
	require.Error(t, err)

	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusBadGateway, be.Status)
	assert.Equal(t, "endpoint unreachable", be.Message)
}

func TestClientDefaults(t *testing.T) {
	client := NewClient("", "")
	assert.Equal(t, DefaultBaseURL, client.BaseURL())
	assert.Equal(t, "anonymous", client.UserID())
	assert.True(t, client.IsConfigured())
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	client := NewClient("http://gw.local:9800/", "u")
	assert.Equal(t, "http://gw.local:9800", client.BaseURL())
}
