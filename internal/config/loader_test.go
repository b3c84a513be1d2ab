package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeTempConfig writes content to a temporary YAML file and returns its path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

const minimalConfig = `
api:
  base_url: "http://localhost:3001/api"
  token: "test-token"
stream:
  url: "ws://localhost:3001/ws"
`

func TestLoad_Success(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify required values
	if cfg.API.BaseURL != "http://localhost:3001/api" {
		t.Errorf("BaseURL = %v, want http://localhost:3001/api", cfg.API.BaseURL)
	}
	if cfg.API.Token != "test-token" {
		t.Errorf("Token = %v, want test-token", cfg.API.Token)
	}

	// Verify defaults
	if cfg.API.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0 (no timeout)", cfg.API.Timeout)
	}
	if cfg.Stream.Transport != TransportWebSocket {
		t.Errorf("Transport = %v, want websocket", cfg.Stream.Transport)
	}
	if cfg.Stream.ReconnectDelay != 5*time.Second {
		t.Errorf("ReconnectDelay = %v, want 5s", cfg.Stream.ReconnectDelay)
	}
	if !cfg.Stream.RequestAlerts || !cfg.Stream.RequestMetrics {
		t.Errorf("RequestAlerts/RequestMetrics should default to true")
	}
	if cfg.Session.AlertLimit != 100 {
		t.Errorf("AlertLimit = %v, want 100", cfg.Session.AlertLimit)
	}
	if cfg.Session.HistoryCapacity != 50 {
		t.Errorf("HistoryCapacity = %v, want 50", cfg.Session.HistoryCapacity)
	}
	if cfg.Mutation.Channel != ChannelREST {
		t.Errorf("Channel = %v, want rest", cfg.Mutation.Channel)
	}
	if cfg.HTTP.Retry.MaxRetries != 3 {
		t.Errorf("MaxRetries = %v, want 3", cfg.HTTP.Retry.MaxRetries)
	}
	if cfg.Report.Timezone != "Asia/Shanghai" {
		t.Errorf("Timezone = %v, want Asia/Shanghai", cfg.Report.Timezone)
	}
}

func TestLoad_SSETransport(t *testing.T) {
	content := `
api:
  base_url: "http://localhost:3001/api"
stream:
  transport: sse
  url: "http://localhost:3001/api/plugins/stream"
  reconnect_delay: 2s
session:
  refresh_interval: 0s
`
	cfg, err := Load(writeTempConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Stream.Transport != TransportSSE {
		t.Errorf("Transport = %v, want sse", cfg.Stream.Transport)
	}
	if cfg.Stream.ReconnectDelay != 2*time.Second {
		t.Errorf("ReconnectDelay = %v, want 2s", cfg.Stream.ReconnectDelay)
	}
	if cfg.Session.RefreshInterval != 0 {
		t.Errorf("RefreshInterval = %v, want 0", cfg.Session.RefreshInterval)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
api:
  base_url: "http://localhost:3001/api"
stream:
  transport: sse
  url: "http://localhost:3001/api/plugins/stream"
mutation:
  channel: stream
`
	_, err := Load(writeTempConfig(t, content))
	if err == nil {
		t.Fatal("Load() should reject the stream mutation channel over sse")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := Load("")
	if err == nil {
		t.Error("Load() should return error for empty path")
	}
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	path := writeTempConfig(t, minimalConfig)

	t.Setenv("ALERTMON_API_TOKEN", "env-token")
	t.Setenv("ALERTMON_IDENTITY_ROLE", "admin")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Environment variable should override file value
	if cfg.API.Token != "env-token" {
		t.Errorf("Token = %v, want env-token (env override)", cfg.API.Token)
	}
	if cfg.Identity.Role != "admin" {
		t.Errorf("Role = %v, want admin (env override)", cfg.Identity.Role)
	}
}
