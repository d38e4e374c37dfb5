// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/openmedix/mediq-tui/internal/model"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

const (
	// DefaultBaseURL is the local gateway address used when no endpoint is
	// configured.
	DefaultBaseURL = "http://localhost:9800"

	// DefaultTimeout bounds non-streaming catalog requests.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the retry budget for transient catalog failures.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps the backoff growth.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize bounds catalog response bodies.
	MaxResponseSize = 10 * 1024 * 1024

	// validateRateLimit throttles MCP endpoint probes: the gateway forwards
	// each probe to a third-party server, so bursts are capped client-side.
	validateRateLimit = rate.Limit(1)
	validateRateBurst = 3
)

var (
	// sharedHTTPClient serves catalog requests with connection pooling.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient serves chat streams. No client timeout: stream
	// lifetime is controlled by the request context.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConfigured indicates the client has no gateway URL.
	ErrNotConfigured = errors.New("gateway URL not configured")

	// ErrUnavailable indicates the gateway could not reach its broker.
	ErrUnavailable = errors.New("gateway unavailable")

	// ErrBadRequest indicates the gateway rejected the request payload.
	ErrBadRequest = errors.New("gateway rejected request")
)

// BackendError is a non-2xx response from the gateway.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("gateway error (HTTP %d)", e.Status)
}

// apiErrorResponse is the gateway's {"detail": "..."} error body.
type apiErrorResponse struct {
	Detail string `json:"detail"`
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatTurn is one prior turn sent to the gateway. The wire role for agent
// turns is "ai", matching the backend's conversation format.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewChatTurn converts a message snapshot to its wire form.
func NewChatTurn(m model.Message) ChatTurn {
	return ChatTurn{Role: m.Role.WireRole(), Content: m.Content}
}

// ChatRequest is the POST /chat body.
type ChatRequest struct {
	UserID   string     `json:"userId"`
	Messages []ChatTurn `json:"messages"`
	Sources  []string   `json:"sources,omitempty"`
	Tools    []string   `json:"tools,omitempty"`
}

// DataSource is one selectable retrieval corpus from GET /datasources.
type DataSource struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// ToolConfig is one MCP tool endpoint from GET /mcp/configs.
type ToolConfig struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
	URL         string `json:"url,omitempty"`
}

// ValidateResult is the gateway's verdict on a probed MCP endpoint.
type ValidateResult struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Tools   []string `json:"tools,omitempty"`
}

// Valid reports whether the probe succeeded.
func (r ValidateResult) Valid() bool {
	return strings.EqualFold(r.Status, "ok") || strings.EqualFold(r.Status, "valid")
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the MedIQ gateway. Methods are safe for concurrent use
// once construction and With* configuration are done.
type Client struct {
	baseURL    string
	userID     string
	maxRetries int

	httpClient   *http.Client
	streamClient *http.Client

	// validateLimiter throttles POST /mcp/validate probes.
	validateLimiter *rate.Limiter
}

// NewClient creates a gateway client.
func NewClient(baseURL, userID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userID == "" {
		userID = "anonymous"
	}
	return &Client{
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		userID:          userID,
		maxRetries:      DefaultMaxRetries,
		httpClient:      sharedHTTPClient,
		streamClient:    sharedStreamingClient,
		validateLimiter: rate.NewLimiter(validateRateLimit, validateRateBurst),
	}
}

// WithTimeout sets the catalog request timeout. It replaces the shared
// pooled client with a private one so the shared pool keeps its default.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	private := *sharedHTTPClient
	private.Timeout = timeout
	c.httpClient = &private
	return c
}

// WithMaxRetries sets the retry budget for catalog requests.
func (c *Client) WithMaxRetries(n int) *Client {
	c.maxRetries = n
	return c
}

// BaseURL returns the configured gateway address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UserID returns the identity attached to chat requests.
func (c *Client) UserID() string {
	return c.userID
}

// IsConfigured reports whether a gateway URL is set.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// =============================================================================
// CATALOG ENDPOINTS
// =============================================================================

// FetchDataSources retrieves the selectable retrieval corpora.
func (c *Client) FetchDataSources(ctx context.Context) ([]DataSource, error) {
	var sources []DataSource
	if err := c.getJSON(ctx, "/datasources", &sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// FetchToolConfigs retrieves the registered MCP tool endpoints.
func (c *Client) FetchToolConfigs(ctx context.Context) ([]ToolConfig, error) {
	var configs []ToolConfig
	if err := c.getJSON(ctx, "/mcp/configs", &configs); err != nil {
		return nil, err
	}
	return configs, nil
}

// ValidateTool asks the gateway to probe an MCP endpoint URL. Probes are
// rate limited client-side; the call blocks until a token is available or
// the context is done.
func (c *Client) ValidateTool(ctx context.Context, endpointURL string) (*ValidateResult, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if err := c.validateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{"url": endpointURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mcp/validate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, respBody)
	}

	var result ValidateResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// getJSON fetches a catalog path with retry and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.calculateBackoff(attempt)):
			}
		}

		err := c.doGet(ctx, path, out)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doGet(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	c.logResponse(req, resp, time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// setHeaders sets the headers common to every gateway request.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "mediq/0.3.0")
}

// logResponse logs status and duration only; bodies may hold medical text.
func (c *Client) logResponse(req *http.Request, resp *http.Response, duration time.Duration) {
	log.Printf("gateway: %s %s -> %d (%v)", req.Method, req.URL.Path, resp.StatusCode, duration)
}

// readResponse reads a body with a hard size cap.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts a non-2xx gateway response to a typed error.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	detail := ""
	if err := json.Unmarshal(body, &apiErr); err == nil {
		detail = apiErr.Detail
	}
	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}

	switch statusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, detail)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", ErrUnavailable, detail)
	default:
		return &BackendError{Status: statusCode, Message: detail}
	}
}

// isRetryable reports whether a catalog error is worth another attempt.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrBadRequest) {
		return false
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be.Status >= 500
	}
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	// Plain transport errors.
	return true
}

// calculateBackoff returns the delay before the next retry attempt.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
