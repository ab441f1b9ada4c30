// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-chat/parley-tui/internal/agents"
)

// newTestClient points a configured client at a test server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("tok-test", nil).WithBaseURL(server.URL)
}

func TestListCommands(t *testing.T) {
	var gotPath, gotAuth, gotReqID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"commands":[
			{"name":"commit","description":"Create a commit"},
			{"name":"review","description":"Review changes"}
		]}`))
	})

	cmds, err := c.ListCommands(context.Background(), "proj 1")
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, "commit", cmds[0].Name)
	assert.Equal(t, "/commands?scope=proj+1", gotPath)
	assert.Equal(t, "Bearer tok-test", gotAuth)
	assert.NotEmpty(t, gotReqID)
}

func TestListCommandsNoScope(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		w.Write([]byte(`{"commands":[]}`))
	})

	_, err := c.ListCommands(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "/commands", gotPath)
}

func TestNotConfigured(t *testing.T) {
	c := NewClient("", nil)
	_, err := c.ListCommands(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"commands":[]}`))
	})

	_, err := c.ListCommands(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.ListCommands(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(DefaultMaxRetries), calls.Load())
}

func TestNoRetryOnAuthFailure(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.ListCommands(context.Background(), "")
	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDecodesErrorEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"agent_missing","message":"no such agent"}}`))
	})

	err := c.DeleteAgent(context.Background(), "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "no such agent")
}

func TestUnstructuredErrorBecomesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("conflict"))
	})

	err := c.SaveAgent(context.Background(), agents.Agent{Name: "dup"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "conflict", apiErr.Message)
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"status":"ok"}`))
	})

	latency, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Greater(t, latency.Nanoseconds(), int64(0))
}

func TestPingUnhealthy(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"draining"}`))
	})

	_, err := c.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "draining")
}

func TestLatestRelease(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/releases/latest", r.URL.Path)
		w.Write([]byte(`{"version":"1.4.2","url":"https://parley.chat/dl"}`))
	})

	rel, err := c.LatestRelease(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", rel.Version)
}

func TestSaveAgentEscapesName(t *testing.T) {
	var gotPath, gotMethod string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.SaveAgent(context.Background(), agents.Agent{Name: "code-reviewer"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/agents/code-reviewer", gotPath)
}

func TestConfirmTOTP(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/totp/confirm", r.URL.Path)
		w.Write([]byte(`{"recovery_codes":["aaaa-bbbb","cccc-dddd"]}`))
	})

	codes, err := c.ConfirmTOTP(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa-bbbb", "cccc-dddd"}, codes)
}

func TestTodos(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations/conv-9/todos", r.URL.Path)
		w.Write([]byte(`{"todos":[
			{"content":"Write tests","status":"in_progress","active_form":"Writing tests"},
			{"content":"Ship","status":"pending"}
		]}`))
	})

	items, err := c.Todos(context.Background(), "conv-9")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Writing tests", items[0].Label())
}

func TestResponseSizeLimit(t *testing.T) {
	// A body at exactly the cap is rejected as potentially truncated.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, MaxResponseSize))
	})

	_, err := c.ListCommands(context.Background(), "")
	assert.ErrorIs(t, err, ErrResponseTooLarge)
}
