package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"alert-monitor/internal/client/api"
	"alert-monitor/internal/config"
	"alert-monitor/internal/model"
	"alert-monitor/internal/report"
	"alert-monitor/internal/service"
)

// app bundles what every command needs once the configuration is loaded.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	catalog  *model.AlertTypeCatalog
	timezone *time.Location
	client   *api.Client
	logFile  io.Closer
}

// loadApp loads configuration, logging, the alert type table and the REST client.
// Failures are printed and terminate the process.
func loadApp() *app {
	configPath := GetConfigFile()
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// Command line --log-level overrides config file setting
	if lvl := GetLogLevel(); lvl != "" {
		cfg.Logging.Level = lvl
	}

	tz, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		tz = time.Local
	}

	logger, logFile, err := setupLogger(cfg.Logging, os.Stderr, tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().
		Str("config_path", configPath).
		Str("log_level", cfg.Logging.Level).
		Str("transport", cfg.Stream.Transport).
		Msg("configuration loaded successfully")

	catalog, err := config.LoadAlertTypes(cfg.Session.AlertTypesFile)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.Session.AlertTypesFile).Msg("failed to load alert types, using built-in table")
		catalog = model.DefaultAlertTypeCatalog()
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		catalog:  catalog,
		timezone: tz,
		client:   api.NewClient(&cfg.API, &cfg.HTTP.Retry, "", logger),
		logFile:  logFile,
	}
}

// Close releases the log file.
func (a *app) Close() {
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// newSession builds a session over the app's REST client.
func (a *app) newSession(opts ...service.SessionOption) *service.Session {
	base := []service.SessionOption{
		service.WithClientID(a.client.ClientID()),
		service.WithSessionVersion(Version),
	}
	return service.NewSession(a.cfg, a.client, a.logger, append(base, opts...)...)
}

// newOneShotSession builds a session for a command that never opens the push
// stream. Mutations therefore always go over REST.
func (a *app) newOneShotSession() *service.Session {
	if a.cfg.Mutation.Channel != config.ChannelREST {
		a.logger.Debug().Str("configured", a.cfg.Mutation.Channel).Msg("one-shot command uses the REST mutation channel")
		a.cfg.Mutation.Channel = config.ChannelREST
	}
	return a.newSession()
}

// newExporter builds a report exporter. Flag values override the config file.
func (a *app) newExporter(outputDir string) *report.Exporter {
	if outputDir == "" {
		outputDir = a.cfg.Report.OutputDir
	}
	if outputDir == "" {
		outputDir = "./reports"
	}
	registry := report.NewRegistry(a.timezone, a.catalog, "")
	return report.NewExporter(registry, outputDir, a.cfg.Report.FilenameTemplate, a.timezone, a.logger)
}

// resolveFormats determines the export formats to use.
// Command line flags take precedence over config file.
func (a *app) resolveFormats(flagFormats []string) []string {
	if len(flagFormats) > 0 {
		return flagFormats
	}
	if len(a.cfg.Report.Formats) > 0 {
		return a.cfg.Report.Formats
	}
	return []string{"excel", "html"}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// fail prints a user-facing error and exits.
func (a *app) fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "❌ "+format+"\n", args...)
	a.Close()
	os.Exit(1)
}
