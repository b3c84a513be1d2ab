// Package report provides snapshot export for the alert monitor.
// It defines the ReportWriter interface and a registry for managing
// the supported formats (Excel, HTML).
package report

import (
	"alert-monitor/internal/model"
)

// ReportWriter defines the interface for exporting a session snapshot.
// Implementations write the snapshot to a file in their specific format.
type ReportWriter interface {
	// Write renders the snapshot and saves it to outputPath.
	// A missing format extension is appended.
	Write(snapshot *model.SessionSnapshot, outputPath string) error

	// Format returns the format identifier for this writer ("excel", "html").
	Format() string
}
