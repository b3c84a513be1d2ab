package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"alert-monitor/internal/model"
	"alert-monitor/internal/report/excel"
	"alert-monitor/internal/report/html"
)

// Registry manages report writers for different formats.
type Registry struct {
	writers map[string]ReportWriter
}

// NewRegistry creates a registry with the Excel and HTML writers registered.
// If timezone is nil, defaults to Asia/Shanghai. A nil catalog uses the built-in
// alert type names. htmlTemplatePath is optional; if empty, the embedded template is used.
func NewRegistry(timezone *time.Location, catalog *model.AlertTypeCatalog, htmlTemplatePath string) *Registry {
	if timezone == nil {
		timezone, _ = time.LoadLocation("Asia/Shanghai")
	}
	if catalog == nil {
		catalog = model.DefaultAlertTypeCatalog()
	}

	r := &Registry{
		writers: make(map[string]ReportWriter),
	}
	r.Register(excel.NewWriter(timezone, catalog))
	r.Register(html.NewWriter(timezone, catalog, htmlTemplatePath))

	return r
}

// Register adds or replaces the writer for its Format().
func (r *Registry) Register(w ReportWriter) {
	r.writers[strings.ToLower(w.Format())] = w
}

// Get returns a writer for the specified format.
// Format names are case-insensitive.
func (r *Registry) Get(format string) (ReportWriter, error) {
	writer, ok := r.writers[normalize(format)]
	if !ok {
		return nil, fmt.Errorf("unsupported report format %q, supported formats: %s",
			format, strings.Join(r.GetAll(), ", "))
	}
	return writer, nil
}

// GetAll returns all supported format names in sorted order.
func (r *Registry) GetAll() []string {
	formats := make([]string, 0, len(r.writers))
	for format := range r.writers {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Has checks if the specified format is supported.
func (r *Registry) Has(format string) bool {
	_, ok := r.writers[normalize(format)]
	return ok
}

func normalize(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}
