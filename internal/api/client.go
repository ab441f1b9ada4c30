// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the Parley server.
//
// The server owns conversation state, slash commands, agents, and
// authentication; this client wraps its REST surface. Requests are
// retried with exponential backoff on rate limiting and server errors,
// response bodies are size limited, and every request carries a unique
// X-Request-ID for correlation with server logs.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parley-chat/parley-tui/internal/agents"
	"github.com/parley-chat/parley-tui/internal/auth"
	"github.com/parley-chat/parley-tui/internal/commands"
	"github.com/parley-chat/parley-tui/internal/todo"
	"github.com/parley-chat/parley-tui/internal/update"
)

// Configuration constants for the Parley API.
const (
	// DefaultBaseURL is the base URL for the hosted service.
	DefaultBaseURL = "https://api.parley.chat/api/v1"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for
	// transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// userAgent identifies this client to the server.
	userAgent = "parley-tui/0.3.0"
)

// sharedHTTPClient pools connections across all API requests. TLS 1.2 is
// the floor; verification is never skipped.
var sharedHTTPClient = &http.Client{
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

// Sentinel errors for common API failures.
var (
	// ErrNotConfigured indicates the access token is not set.
	ErrNotConfigured = errors.New("access token not configured")

	// ErrAuthFailed indicates the token was rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrResponseTooLarge indicates the body exceeded MaxResponseSize.
	ErrResponseTooLarge = errors.New("response exceeded maximum size")
)

// APIError is a non-sentinel error response from the server.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("api error (HTTP %d): %s", e.Status, e.Message)
}

// Client talks to the Parley server.
type Client struct {
	token      string
	baseURL    string
	maxRetries int
	log        *zap.Logger
}

// NewClient creates a client with the given bearer token. An empty token
// is allowed; requests will fail with ErrNotConfigured.
func NewClient(token string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		token:      strings.TrimSpace(token),
		baseURL:    DefaultBaseURL,
		maxRetries: DefaultMaxRetries,
		log:        log,
	}
}

// WithBaseURL sets a custom base URL, e.g. for self-hosted servers.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// WithMaxRetries sets the maximum number of retry attempts.
func (c *Client) WithMaxRetries(n int) *Client {
	c.maxRetries = n
	return c
}

// IsConfigured reports whether an access token is set.
func (c *Client) IsConfigured() bool {
	return c.token != ""
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// setHeaders sets the required headers for API requests. Every request
// carries a fresh request ID so failures can be matched to server logs.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
}

// readResponse reads the body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, ErrResponseTooLarge
	}
	return body, nil
}

// do performs one request with retry and backoff, decoding a successful
// JSON response into out (which may be nil for endpoints with no body).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	requestURL := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(calculateBackoff(attempt)):
			}
		}

		err := c.doOnce(ctx, method, requestURL, payload, out)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
		c.log.Debug("retrying request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doOnce performs a single HTTP round trip.
func (c *Client) doOnce(ctx context.Context, method, requestURL string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := readResponse(resp)
	if err != nil {
		return err
	}

	c.log.Debug("api response",
		zap.String("method", method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// decodeError converts an HTTP error response to a Go error, preferring
// the server's structured error envelope when it parses.
func decodeError(statusCode int, body []byte) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr := &APIError{
			Code:    envelope.Error.Code,
			Message: envelope.Error.Message,
			Status:  statusCode,
		}
		switch statusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrAuthFailed, apiErr.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		default:
			return apiErr
		}
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthFailed
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &APIError{Message: strings.TrimSpace(string(body)), Status: statusCode}
	}
}

// isRetryable reports whether an error should trigger a retry. Rate
// limits and 5xx responses are retryable; context cancellation and all
// other client errors are not.
func isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 && apiErr.Status < 600
	}
	return false
}

// calculateBackoff returns the delay before the next retry: 500ms,
// 1000ms, 2000ms, capped at retryMaxDelay.
func calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// =============================================================================
// COMMANDS
// =============================================================================

// ListCommands fetches the slash commands available in a scope. It
// implements the command fetcher's Lister.
func (c *Client) ListCommands(ctx context.Context, scopeID string) ([]commands.Command, error) {
	var resp struct {
		Commands []commands.Command `json:"commands"`
	}
	path := "/commands"
	if scopeID != "" {
		path += "?scope=" + url.QueryEscape(scopeID)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Commands, nil
}

// =============================================================================
// HEALTH
// =============================================================================

// Ping checks server health and returns the round-trip latency. It
// implements the connection monitor's Pinger.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return 0, err
	}
	if resp.Status != "ok" {
		return 0, fmt.Errorf("server unhealthy: %q", resp.Status)
	}
	return time.Since(start), nil
}

// =============================================================================
// RELEASES
// =============================================================================

// LatestRelease fetches the newest published client build. It implements
// the update checker's Source.
func (c *Client) LatestRelease(ctx context.Context) (update.Release, error) {
	var rel update.Release
	if err := c.do(ctx, http.MethodGet, "/releases/latest", nil, &rel); err != nil {
		return update.Release{}, err
	}
	return rel, nil
}

// =============================================================================
// AGENTS
// =============================================================================

// ListAgents fetches the server-side agent definitions.
func (c *Client) ListAgents(ctx context.Context) ([]agents.Agent, error) {
	var resp struct {
		Agents []agents.Agent `json:"agents"`
	}
	if err := c.do(ctx, http.MethodGet, "/agents", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Agents, nil
}

// SaveAgent creates or replaces an agent definition on the server.
func (c *Client) SaveAgent(ctx context.Context, a agents.Agent) error {
	return c.do(ctx, http.MethodPut, "/agents/"+url.PathEscape(a.Name), a, nil)
}

// DeleteAgent removes an agent definition from the server.
func (c *Client) DeleteAgent(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/agents/"+url.PathEscape(name), nil, nil)
}

// =============================================================================
// TWO-FACTOR
// =============================================================================

// BeginTOTP starts two-factor enrollment. It implements the enrollment
// flow's Service, together with ConfirmTOTP and DisableTOTP.
func (c *Client) BeginTOTP(ctx context.Context) (auth.Enrollment, error) {
	var enr auth.Enrollment
	if err := c.do(ctx, http.MethodPost, "/auth/totp/begin", nil, &enr); err != nil {
		return auth.Enrollment{}, err
	}
	return enr, nil
}

// ConfirmTOTP submits the first code and returns the recovery codes.
func (c *Client) ConfirmTOTP(ctx context.Context, code string) ([]string, error) {
	var resp struct {
		RecoveryCodes []string `json:"recovery_codes"`
	}
	req := struct {
		Code string `json:"code"`
	}{Code: code}
	if err := c.do(ctx, http.MethodPost, "/auth/totp/confirm", req, &resp); err != nil {
		return nil, err
	}
	return resp.RecoveryCodes, nil
}

// DisableTOTP turns two-factor off; a current code is required.
func (c *Client) DisableTOTP(ctx context.Context, code string) error {
	req := struct {
		Code string `json:"code"`
	}{Code: code}
	return c.do(ctx, http.MethodDelete, "/auth/totp", req, nil)
}

// =============================================================================
// TODOS
// =============================================================================

// Todos fetches the current task list for a conversation.
func (c *Client) Todos(ctx context.Context, conversationID string) ([]todo.Item, error) {
	var resp struct {
		Todos []todo.Item `json:"todos"`
	}
	path := "/conversations/" + url.PathEscape(conversationID) + "/todos"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Todos, nil
}
