package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"alert-monitor/internal/config"
)

// setupLogger creates a zerolog logger from the logging configuration.
// Timestamps use tz. When a log file is configured, every entry is also written
// as JSON to a rotated file; the returned closer releases it.
func setupLogger(cfg config.LoggingConfig, console io.Writer, tz *time.Location) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if tz == nil {
		tz = time.Local
	}
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().In(tz)
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = console
	} else {
		output = zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: "15:04:05",
		}
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		output = zerolog.MultiLevelWriter(output, rotated)
		closer = rotated
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger(), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
