package config

import (
	"strings"
	"testing"
	"time"
)

// newValidConfig creates a valid configuration for testing.
func newValidConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:3001/api",
			Token:   "test-token",
		},
		Stream: StreamConfig{
			Transport:      TransportWebSocket,
			URL:            "ws://localhost:3001/ws",
			ReconnectDelay: 5 * time.Second,
			RequestAlerts:  true,
			RequestMetrics: true,
		},
		Identity: IdentityConfig{
			UserID: "u-1",
			Role:   "admin",
		},
		Session: SessionConfig{
			AlertLimit:      100,
			HistoryCapacity: 50,
			RefreshInterval: time.Minute,
		},
		Mutation: MutationConfig{
			Channel: ChannelREST,
		},
		Report: ReportConfig{
			OutputDir:        "./reports",
			Formats:          []string{"excel", "html"},
			FilenameTemplate: "alert_report_{{.Date}}",
			Timezone:         "Asia/Shanghai",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		HTTP: HTTPConfig{
			Retry: RetryConfig{
				MaxRetries: 3,
				BaseDelay:  1 * time.Second,
			},
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := newValidConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Validate() error = %v, want nil for valid config", err)
	}
}

func TestValidate_MissingBaseURL(t *testing.T) {
	cfg := newValidConfig()
	cfg.API.BaseURL = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for missing base URL")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "api.baseurl") {
		t.Errorf("error should mention field 'api.baseurl', got: %s", errStr)
	}
	if !strings.Contains(errStr, "required") {
		t.Errorf("error should mention 'required', got: %s", errStr)
	}
}

func TestValidate_InvalidURLFormat(t *testing.T) {
	cfg := newValidConfig()
	cfg.API.BaseURL = "not-a-valid-url"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for invalid URL format")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "URL") {
		t.Errorf("error should mention 'URL', got: %s", errStr)
	}
}

func TestValidate_InvalidTransport(t *testing.T) {
	cfg := newValidConfig()
	cfg.Stream.Transport = "polling"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for unknown transport")
	}
	if !strings.Contains(err.Error(), "websocket sse") {
		t.Errorf("error should list allowed transports, got: %s", err.Error())
	}
}

func TestValidate_StreamURLScheme(t *testing.T) {
	tests := []struct {
		name      string
		transport string
		url       string
		wantErr   bool
	}{
		{"websocket ws", TransportWebSocket, "ws://localhost/ws", false},
		{"websocket wss", TransportWebSocket, "wss://example.com/ws", false},
		{"websocket http", TransportWebSocket, "http://localhost/ws", true},
		{"sse http", TransportSSE, "http://localhost/stream", false},
		{"sse https", TransportSSE, "https://example.com/stream", false},
		{"sse ws", TransportSSE, "ws://localhost/stream", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newValidConfig()
			cfg.Stream.Transport = tt.transport
			cfg.Stream.URL = tt.url

			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReconnectDelayMustBePositive(t *testing.T) {
	cfg := newValidConfig()
	cfg.Stream.ReconnectDelay = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for zero reconnect delay")
	}
	if !strings.Contains(err.Error(), "stream.reconnect_delay") {
		t.Errorf("error should mention 'stream.reconnect_delay', got: %s", err.Error())
	}
}

func TestValidate_StreamChannelRequiresWebSocket(t *testing.T) {
	cfg := newValidConfig()
	cfg.Stream.Transport = TransportSSE
	cfg.Stream.URL = "http://localhost:3001/api/plugins/stream"
	cfg.Mutation.Channel = ChannelStream

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should reject stream mutations over sse")
	}
	if !strings.Contains(err.Error(), "mutation.channel") {
		t.Errorf("error should mention 'mutation.channel', got: %s", err.Error())
	}

	cfg = newValidConfig()
	cfg.Mutation.Channel = ChannelStream
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() should allow stream mutations over websocket, got: %v", err)
	}
}

func TestValidate_NegativeDurations(t *testing.T) {
	cfg := newValidConfig()
	cfg.Session.RefreshInterval = -time.Second
	cfg.API.Timeout = -time.Second

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for negative durations")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "session.refresh_interval") {
		t.Errorf("error should mention 'session.refresh_interval', got: %s", errStr)
	}
	if !strings.Contains(errStr, "api.timeout") {
		t.Errorf("error should mention 'api.timeout', got: %s", errStr)
	}
}

func TestValidate_SessionLimits(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		capacity int
		wantErr  bool
	}{
		{"defaults", 100, 50, false},
		{"minimum", 1, 1, false},
		{"zero limit", 0, 50, true},
		{"zero capacity", 100, 0, true},
		{"limit too high", 10001, 50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newValidConfig()
			cfg.Session.AlertLimit = tt.limit
			cfg.Session.HistoryCapacity = tt.capacity

			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_InvalidReportFormat(t *testing.T) {
	cfg := newValidConfig()
	cfg.Report.Formats = []string{"excel", "pdf"}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for invalid report format")
	}
	if !strings.Contains(err.Error(), "excel html") {
		t.Errorf("error should list allowed formats, got: %s", err.Error())
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := newValidConfig()
	cfg.Logging.Level = "verbose"

	if err := Validate(cfg); err == nil {
		t.Fatal("Validate() should return error for invalid log level")
	}
}

func TestValidate_InvalidTimezone(t *testing.T) {
	cfg := newValidConfig()
	cfg.Report.Timezone = "Invalid/Timezone"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for invalid timezone")
	}
	if !strings.Contains(err.Error(), "report.timezone") {
		t.Errorf("error should mention 'report.timezone', got: %s", err.Error())
	}
}

func TestValidate_EmptyTimezone(t *testing.T) {
	cfg := newValidConfig()
	cfg.Report.Timezone = ""

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() should allow empty timezone, got error: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := newValidConfig()
	cfg.API.BaseURL = ""               // Error 1
	cfg.Stream.ReconnectDelay = 0      // Error 2
	cfg.Report.Timezone = "Mars/Olymp" // Error 3

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for multiple validation failures")
	}

	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("Validate() error type = %T, want ValidationErrors", err)
	}
	if len(verrs) != 3 {
		t.Errorf("len(errors) = %d, want 3: %s", len(verrs), err)
	}
}

func TestValidate_RetryMaxRetriesRange(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		wantErr    bool
	}{
		{"zero retries", 0, false},
		{"valid retries", 5, false},
		{"max retries", 10, false},
		{"too many retries", 11, true},
		{"negative retries", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newValidConfig()
			cfg.HTTP.Retry.MaxRetries = tt.maxRetries

			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errors := ValidationErrors{
		{Field: "field1", Message: "error1"},
		{Field: "field2", Message: "error2"},
	}

	errStr := errors.Error()
	if !strings.Contains(errStr, "config validation failed") {
		t.Errorf("ValidationErrors.Error() should contain header, got: %s", errStr)
	}
	if !strings.Contains(errStr, "field1") || !strings.Contains(errStr, "error2") {
		t.Errorf("ValidationErrors.Error() should contain both errors, got: %s", errStr)
	}
}

func TestValidationErrors_Empty(t *testing.T) {
	errors := ValidationErrors{}
	if errors.Error() != "" {
		t.Errorf("Empty ValidationErrors.Error() should return empty string, got: %s", errors.Error())
	}
}
