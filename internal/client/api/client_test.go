package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alert-monitor/internal/config"
	"alert-monitor/internal/model"
)

// setupTestServer creates a test server and API client for testing.
func setupTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.APIConfig{
		BaseURL: server.URL + "/api",
		Token:   "test-token",
	}
	retryCfg := &config.RetryConfig{
		MaxRetries: 2,
		BaseDelay:  10 * time.Millisecond,
	}
	return NewClient(cfg, retryCfg, "client-1", zerolog.Nop())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Basic Functionality Tests
// =============================================================================

func TestNewClient(t *testing.T) {
	client := NewClient(&config.APIConfig{BaseURL: "http://localhost:3001/api"}, nil, "", zerolog.Nop())

	require.NotNil(t, client)
	assert.NotEmpty(t, client.ClientID(), "a client id is generated when none is given")
	assert.Equal(t, 3, client.retry.MaxRetries)
	assert.Equal(t, time.Duration(0), client.timeout)
	assert.NotNil(t, client.httpClient)
}

func TestListAlerts_Success(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/alerts", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "client-1", r.Header.Get("X-Client-ID"))

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"alerts": []map[string]any{
				{"id": "a1", "type": "cpu_high", "severity": "critical", "title": "CPU", "message": "high",
					"plugin_id": "p1", "current_value": 95.5, "threshold_value": 90, "timestamp": "2026-01-02T10:00:00Z", "resolved": false},
				{"id": "a2", "type": "offline", "severity": "warning", "title": "Offline", "message": "down",
					"timestamp": "2026-01-02T09:00:00Z", "resolved": true, "resolved_at": "2026-01-02T09:30:00Z"},
			},
		})
	})

	alerts, err := client.ListAlerts(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	assert.Equal(t, "a1", alerts[0].ID)
	assert.Equal(t, model.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, "p1", alerts[0].SourceID)
	require.NotNil(t, alerts[0].CurrentValue)
	assert.Equal(t, 95.5, *alerts[0].CurrentValue)
	assert.True(t, alerts[1].Resolved)
	require.NotNil(t, alerts[1].ResolvedAt)
	assert.True(t, alerts[1].IsSystemWide())
}

func TestGetStatistics_Success(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/alerts/statistics", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"statistics": map[string]any{
				"total": 3, "active": 2, "resolved": 1,
				"by_severity": map[string]int{"critical": 1, "warning": 2},
				"by_type":     map[string]int{"cpu_high": 3},
				"recent_24h":  2,
			},
		})
	})

	stats, err := client.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 2, stats.BySeverity[model.SeverityWarning])
	assert.Equal(t, 2, stats.Last24Hours)
}

func TestResolveAlert_Success(t *testing.T) {
	var calls int32
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/alerts/a1/resolve", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	require.NoError(t, client.ResolveAlert(context.Background(), "a1"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestBulkResolve_Success(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/alerts/bulk-resolve", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req BulkResolveRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, []string{"a1", "a2"}, req.AlertIDs)

		writeJSON(w, http.StatusOK, map[string]any{"success": true, "resolved_count": 2})
	})

	count, err := client.BulkResolve(context.Background(), []string{"a1", "a2"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPlugins_Success(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/plugins":
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"plugins": []map[string]any{{"id": "p1", "name": "Payments", "status": "active"}},
			})
		case "/api/plugins/metrics":
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"data": map[string]any{
					"p1": map[string]any{"cpu_usage": 12.5, "memory_usage": 40, "response_time": 0.2,
						"error_count": 1, "request_count": 10, "status": "active", "uptime": 3600},
				},
			})
		case "/api/plugins/p1/activate", "/api/plugins/p1/deactivate":
			assert.Equal(t, http.MethodPost, r.Method)
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()

	plugins, err := client.ListPlugins(ctx)
	require.NoError(t, err)
	require.Len(t, plugins, 1)
	assert.Equal(t, model.PluginStatusActive, plugins[0].Status)

	metrics, err := client.GetPluginMetrics(ctx)
	require.NoError(t, err)
	require.Contains(t, metrics, "p1")
	assert.Equal(t, 12.5, metrics["p1"].CPUUsage)
	assert.Equal(t, 3600.0, metrics["p1"].UptimeSeconds)

	assert.NoError(t, client.ActivatePlugin(ctx, "p1"))
	assert.NoError(t, client.DeactivatePlugin(ctx, "p1"))
}

func TestGetNotificationConfig(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/notifications/config", r.URL.Path)
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"config":  map[string]any{"enabled": true, "min_severity": "error", "channels": []string{"toast"}},
			})
		})

		cfg, err := client.GetNotificationConfig(context.Background())
		require.NoError(t, err)
		assert.Equal(t, model.SeverityError, cfg.MinSeverity)
		assert.Equal(t, []string{"toast"}, cfg.Channels)
	})

	t.Run("missing config yields defaults", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		})

		cfg, err := client.GetNotificationConfig(context.Background())
		require.NoError(t, err)
		assert.Equal(t, model.DefaultNotificationConfig(), *cfg)
	})
}

// =============================================================================
// Error Handling Tests
// =============================================================================

func TestEnvelopeFailure(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    map[string]any
		wantMsg string
	}{
		{"success false with error", http.StatusOK, map[string]any{"success": false, "error": "alert not found"}, "alert not found"},
		{"success false with message", http.StatusOK, map[string]any{"success": false, "message": "already resolved"}, "already resolved"},
		{"4xx with envelope", http.StatusNotFound, map[string]any{"success": false, "error": "no such alert"}, "no such alert"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			err := client.ResolveAlert(context.Background(), "a1")
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, "resolve alert", apiErr.Op)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRetry_GetRetriedOn5xx(t *testing.T) {
	var calls int32
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "error": "busy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "alerts": []any{}})
	})

	alerts, err := client.ListAlerts(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, alerts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRetry_MutationNotRetried(t *testing.T) {
	var calls int32
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "boom"})
	})

	_, err := client.BulkResolve(context.Background(), []string{"a1"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetry_4xxNotRetried(t *testing.T) {
	var calls int32
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "bad limit"})
	})

	_, err := client.ListAlerts(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(&config.APIConfig{BaseURL: url}, &config.RetryConfig{MaxRetries: 0}, "c", zerolog.Nop())

	err := client.ResolveAlert(context.Background(), "a1")
	require.Error(t, err)

	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr), "transport failures are not server-declared")
}

func TestError_Error(t *testing.T) {
	err := &Error{Op: "resolve alert", StatusCode: 404}
	assert.Equal(t, "resolve alert: server returned status 404", err.Error())

	err.Message = "not found"
	assert.Equal(t, "resolve alert: server returned status 404: not found", err.Error())
}
