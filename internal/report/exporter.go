package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"alert-monitor/internal/model"
)

// DefaultFilenameTemplate is used when no filename template is configured.
const DefaultFilenameTemplate = "alert_report_{{.Date}}"

// Exporter writes a snapshot in several formats into one directory.
type Exporter struct {
	registry         *Registry
	outputDir        string
	filenameTemplate string
	timezone         *time.Location
	logger           zerolog.Logger
}

// NewExporter creates an exporter writing into outputDir.
func NewExporter(registry *Registry, outputDir, filenameTemplate string, timezone *time.Location, logger zerolog.Logger) *Exporter {
	if timezone == nil {
		timezone = time.UTC
	}
	if outputDir == "" {
		outputDir = "."
	}
	return &Exporter{
		registry:         registry,
		outputDir:        outputDir,
		filenameTemplate: filenameTemplate,
		timezone:         timezone,
		logger:           logger.With().Str("component", "report").Logger(),
	}
}

// Export writes the snapshot once per format and returns the written paths.
// Every format is attempted; the first failure is returned after the loop.
func (e *Exporter) Export(snapshot *model.SessionSnapshot, formats []string) ([]string, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	base := GenerateFilename(e.filenameTemplate, snapshot.TakenAt, e.timezone)

	var (
		paths    []string
		firstErr error
	)
	for _, format := range formats {
		writer, err := e.registry.Get(format)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		path := filepath.Join(e.outputDir, base+Extension(writer.Format()))
		if err := writer.Write(snapshot, path); err != nil {
			e.logger.Error().Err(err).Str("format", writer.Format()).Str("path", path).Msg("failed to write report")
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to write %s report: %w", writer.Format(), err)
			}
			continue
		}

		e.logger.Info().Str("format", writer.Format()).Str("path", path).Msg("report written")
		paths = append(paths, path)
	}

	return paths, firstErr
}

// Extension returns the file extension for a format.
func Extension(format string) string {
	if normalize(format) == "excel" {
		return ".xlsx"
	}
	return "." + normalize(format)
}

// GenerateFilename creates a filename from the template.
// Supports the {{.Date}} and {{.Time}} placeholders, rendered in tz.
func GenerateFilename(template string, at time.Time, tz *time.Location) string {
	if template == "" {
		template = DefaultFilenameTemplate
	}
	if tz == nil {
		tz = time.UTC
	}

	local := at.In(tz)
	date := local.Format("2006-01-02")
	clock := local.Format("150405")

	r := strings.NewReplacer(
		"{{.Date}}", date,
		"{{ .Date }}", date,
		"{{.Time}}", clock,
		"{{ .Time }}", clock,
	)
	return r.Replace(template)
}
