// Package config provides configuration management for the alert monitor.
package config

import "time"

// Config is the root configuration structure for the alert monitor.
type Config struct {
	API      APIConfig      `mapstructure:"api" validate:"required"`
	Stream   StreamConfig   `mapstructure:"stream" validate:"required"`
	Identity IdentityConfig `mapstructure:"identity"`
	Session  SessionConfig  `mapstructure:"session"`
	Mutation MutationConfig `mapstructure:"mutation"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Report   ReportConfig   `mapstructure:"report"`
}

// APIConfig contains configuration for the REST boundary.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Token   string        `mapstructure:"token"`   // Bearer token (optional)
	Timeout time.Duration `mapstructure:"timeout"` // 0 = no request timeout
}

// Stream transports.
const (
	TransportWebSocket = "websocket"
	TransportSSE       = "sse"
)

// StreamConfig contains configuration for the push connection.
type StreamConfig struct {
	Transport      string        `mapstructure:"transport" validate:"oneof=websocket sse"`
	URL            string        `mapstructure:"url" validate:"required,url"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	RequestAlerts  bool          `mapstructure:"request_alerts"`  // Send get_active_alerts after auth
	RequestMetrics bool          `mapstructure:"request_metrics"` // Send get_all_metrics after auth (plugin monitoring)
}

// IdentityConfig identifies the user in the auth frame.
type IdentityConfig struct {
	UserID string `mapstructure:"user_id"`
	Role   string `mapstructure:"role"`
}

// SessionConfig contains configurations for a monitoring session.
type SessionConfig struct {
	AlertLimit      int           `mapstructure:"alert_limit" validate:"gte=1,lte=10000"`
	HistoryCapacity int           `mapstructure:"history_capacity" validate:"gte=1,lte=10000"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"` // 0 disables background refresh
	AlertTypesFile  string        `mapstructure:"alert_types_file"`
}

// Mutation channels.
const (
	ChannelREST   = "rest"
	ChannelStream = "stream"
)

// MutationConfig selects how resolve requests reach the server.
type MutationConfig struct {
	Channel string `mapstructure:"channel" validate:"oneof=rest stream"`
}

// HTTPConfig contains HTTP client configurations including retry settings.
type HTTPConfig struct {
	Retry RetryConfig `mapstructure:"retry"`
}

// RetryConfig defines retry behavior for idempotent HTTP requests.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

// LoggingConfig contains configurations for logging.
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	File       string `mapstructure:"file"`                          // Rotated log file (optional)
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`  // 单个日志文件大小上限（MB）
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`  // 保留的备份数
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"` // 保留天数
	Compress   bool   `mapstructure:"compress"`                      // 是否压缩备份
}

// ReportConfig contains configurations for snapshot export.
type ReportConfig struct {
	OutputDir        string   `mapstructure:"output_dir"`
	Formats          []string `mapstructure:"formats" validate:"dive,oneof=excel html"`
	FilenameTemplate string   `mapstructure:"filename_template"`
	Timezone         string   `mapstructure:"timezone"`
}
