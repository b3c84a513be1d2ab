// Package config provides configuration management for the alert monitor.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified YAML file and environment variables.
// Environment variables take precedence over file values.
// Environment variable format: ALERTMON_<SECTION>_<KEY> (e.g., ALERTMON_API_TOKEN)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults first
	setDefaults(v)

	// Configure environment variable binding
	v.SetEnvPrefix("ALERTMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// REST boundary: no request timeout unless configured
	v.SetDefault("api.timeout", 0)

	// Stream defaults
	v.SetDefault("stream.transport", TransportWebSocket)
	v.SetDefault("stream.reconnect_delay", 5*time.Second)
	v.SetDefault("stream.request_alerts", true)
	v.SetDefault("stream.request_metrics", true)

	// Identity defaults
	v.SetDefault("identity.user_id", "anonymous")
	v.SetDefault("identity.role", "viewer")

	// Session defaults
	v.SetDefault("session.alert_limit", 100)
	v.SetDefault("session.history_capacity", 50)
	v.SetDefault("session.refresh_interval", 60*time.Second)

	// Mutation defaults
	v.SetDefault("mutation.channel", ChannelREST)

	// HTTP retry defaults
	v.SetDefault("http.retry.max_retries", 3)
	v.SetDefault("http.retry.base_delay", 1*time.Second)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)

	// Report defaults
	v.SetDefault("report.output_dir", "./reports")
	v.SetDefault("report.formats", []string{"excel", "html"})
	v.SetDefault("report.filename_template", "alert_report_{{.Date}}")
	v.SetDefault("report.timezone", "Asia/Shanghai")
}
