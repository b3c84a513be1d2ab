// Package html provides HTML export for the alert monitor.
// It implements the report.ReportWriter interface to generate a single
// self-contained .html page from a session snapshot.
package html

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"alert-monitor/internal/model"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

const (
	defaultTemplate = "report.html"
	timeLayout      = "2006-01-02 15:04:05"
)

// Writer implements report.ReportWriter for HTML format.
type Writer struct {
	timezone     *time.Location
	catalog      *model.AlertTypeCatalog
	templatePath string // User-defined template path (optional)
}

// TemplateData holds all data passed to the HTML template.
type TemplateData struct {
	Title            string
	TakenAt          string
	ClientID         string
	ConnectionID     string
	ConnectionStatus string
	ConnectionClass  string
	Statistics       model.AlertStatistics
	SeverityCounts   []*SeverityCount
	PluginSummary    model.PluginSummary
	Alerts           []*AlertData
	Plugins          []*PluginData
	History          []*HistoryData
	Version          string
	GeneratedAt      string
}

// SeverityCount is one row of the per-severity breakdown.
type SeverityCount struct {
	Label string
	Class string
	Count int
}

// AlertData represents an alert formatted for template rendering.
type AlertData struct {
	ID         string
	Severity   string
	LevelClass string
	TypeName   string
	Title      string
	Message    string
	Source     string
	Current    string
	Threshold  string
	Timestamp  string
	Resolved   bool
	ResolvedAt string
}

// PluginData represents a plugin formatted for template rendering.
type PluginData struct {
	ID          string
	Name        string
	Status      string
	StatusClass string
	HasMetrics  bool
	CPU         string
	Memory      string
	Response    string
	Requests    int64
	Errors      int64
	ErrorRate   string
}

// HistoryData summarizes the buffered history of one plugin.
type HistoryData struct {
	PluginID string
	Points   int
	First    string
	Last     string
	MinCPU   string
	MaxCPU   string
	LastCPU  string
}

// NewWriter creates a new HTML report writer.
// If timezone is nil, it defaults to Asia/Shanghai.
// If templatePath is empty, the embedded default template will be used.
func NewWriter(timezone *time.Location, catalog *model.AlertTypeCatalog, templatePath string) *Writer {
	if timezone == nil {
		timezone, _ = time.LoadLocation("Asia/Shanghai")
	}
	if catalog == nil {
		catalog = model.DefaultAlertTypeCatalog()
	}
	return &Writer{
		timezone:     timezone,
		catalog:      catalog,
		templatePath: templatePath,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "html"
}

// Write generates an HTML report from the snapshot.
func (w *Writer) Write(snapshot *model.SessionSnapshot, outputPath string) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}

	if !strings.HasSuffix(strings.ToLower(outputPath), ".html") {
		outputPath = outputPath + ".html"
	}

	tmpl, err := w.loadTemplate()
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	data := w.prepareTemplateData(snapshot)

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := tmpl.Execute(file, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

// loadTemplate loads the user-defined template if it exists, else the embedded default.
func (w *Writer) loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"percent": formatPercent,
	}

	if w.templatePath != "" {
		if _, err := os.Stat(w.templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(w.templatePath)).Funcs(funcMap).ParseFiles(w.templatePath)
			if err != nil {
				return nil, fmt.Errorf("failed to parse user template: %w", err)
			}
			return tmpl, nil
		}
	}

	tmpl, err := template.New(defaultTemplate).Funcs(funcMap).ParseFS(embeddedTemplates, "templates/"+defaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// prepareTemplateData converts a snapshot to TemplateData.
func (w *Writer) prepareTemplateData(s *model.SessionSnapshot) *TemplateData {
	data := &TemplateData{
		Title:            "告警监控快照",
		TakenAt:          w.formatTime(s.TakenAt),
		ClientID:         s.ClientID,
		ConnectionID:     s.ConnectionID,
		ConnectionStatus: connectionText(s.Status),
		ConnectionClass:  string(s.Status),
		Statistics:       s.Statistics,
		PluginSummary:    s.PluginSummary,
		Alerts:           w.convertAlerts(s.Alerts),
		Plugins:          convertPlugins(s.Plugins),
		History:          w.convertHistory(s.History),
		Version:          s.Version,
		GeneratedAt:      w.formatTime(time.Now()),
	}

	for i := len(model.AllSeverities) - 1; i >= 0; i-- {
		sev := model.AllSeverities[i]
		data.SeverityCounts = append(data.SeverityCounts, &SeverityCount{
			Label: severityText(sev),
			Class: string(sev),
			Count: s.Statistics.BySeverity[sev],
		})
	}

	return data
}

// convertAlerts sorts alerts most severe first and formats them.
func (w *Writer) convertAlerts(alerts []model.Alert) []*AlertData {
	sorted := make([]model.Alert, len(alerts))
	copy(sorted, alerts)
	model.SortAlerts(sorted)

	result := make([]*AlertData, 0, len(sorted))
	for _, a := range sorted {
		unit := w.catalog.Unit(a.Type)
		source := a.SourceName
		if source == "" {
			source = a.SourceID
		}
		if a.IsSystemWide() {
			source = "系统"
		}

		d := &AlertData{
			ID:         a.ID,
			Severity:   severityText(a.Severity),
			LevelClass: string(a.Severity),
			TypeName:   w.catalog.DisplayName(a.Type),
			Title:      a.Title,
			Message:    a.Message,
			Source:     source,
			Current:    formatOptional(a.CurrentValue, unit),
			Threshold:  formatOptional(a.ThresholdValue, unit),
			Timestamp:  w.formatTime(a.Timestamp),
			Resolved:   a.Resolved,
		}
		if a.ResolvedAt != nil {
			d.ResolvedAt = w.formatTime(*a.ResolvedAt)
		}
		result = append(result, d)
	}
	return result
}

func convertPlugins(plugins []model.PluginState) []*PluginData {
	result := make([]*PluginData, 0, len(plugins))
	for _, p := range plugins {
		d := &PluginData{
			ID:          p.ID,
			Name:        p.Name,
			Status:      pluginStatusText(p.Status),
			StatusClass: string(p.Status),
		}
		if m := p.Latest; m != nil {
			d.HasMetrics = true
			d.CPU = formatPercent(m.CPUUsage)
			d.Memory = formatPercent(m.MemoryUsage)
			d.Response = fmt.Sprintf("%.0fms", m.ResponseTimeSeconds*1000)
			d.Requests = m.RequestCount
			d.Errors = m.ErrorCount
			d.ErrorRate = formatPercent(m.ErrorRate())
		}
		result = append(result, d)
	}
	return result
}

// convertHistory summarizes each plugin's series, ordered by plugin id.
func (w *Writer) convertHistory(history map[string][]model.HistoryPoint) []*HistoryData {
	ids := make([]string, 0, len(history))
	for id := range history {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make([]*HistoryData, 0, len(ids))
	for _, id := range ids {
		series := history[id]
		if len(series) == 0 {
			continue
		}
		minCPU, maxCPU := series[0].CPUUsage, series[0].CPUUsage
		for _, p := range series[1:] {
			if p.CPUUsage < minCPU {
				minCPU = p.CPUUsage
			}
			if p.CPUUsage > maxCPU {
				maxCPU = p.CPUUsage
			}
		}
		last := series[len(series)-1]
		result = append(result, &HistoryData{
			PluginID: id,
			Points:   len(series),
			First:    w.formatTime(series[0].Timestamp),
			Last:     w.formatTime(last.Timestamp),
			MinCPU:   formatPercent(minCPU),
			MaxCPU:   formatPercent(maxCPU),
			LastCPU:  formatPercent(last.CPUUsage),
		})
	}
	return result
}

func (w *Writer) formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(w.timezone).Format(timeLayout)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func formatOptional(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + unit
}

// severityText converts a severity to Chinese text.
func severityText(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "严重"
	case model.SeverityError:
		return "错误"
	case model.SeverityWarning:
		return "警告"
	case model.SeverityInfo:
		return "提示"
	default:
		return "未知"
	}
}

func pluginStatusText(s model.PluginStatus) string {
	switch s {
	case model.PluginStatusActive:
		return "运行中"
	case model.PluginStatusWarning:
		return "异常"
	case model.PluginStatusInactive:
		return "已停用"
	default:
		return "未知"
	}
}

func connectionText(s model.ConnectionStatus) string {
	switch s {
	case model.ConnectionConnected:
		return "已连接"
	case model.ConnectionConnecting:
		return "连接中"
	case model.ConnectionDisconnected:
		return "已断开"
	default:
		return "未连接"
	}
}
