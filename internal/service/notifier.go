package service

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"alert-monitor/internal/model"
)

// Notifier shows a transient notification for a newly pushed alert.
type Notifier interface {
	Notify(alert model.Alert)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(alert model.Alert)

// Notify implements Notifier.
func (f NotifierFunc) Notify(alert model.Alert) {
	f(alert)
}

// severityLabels maps severity to its console label.
var severityLabels = map[model.Severity]string{
	model.SeverityInfo:     "提示",
	model.SeverityWarning:  "警告",
	model.SeverityError:    "错误",
	model.SeverityCritical: "严重",
}

// ConsoleNotifier writes one line per notification.
type ConsoleNotifier struct {
	mu       sync.Mutex
	w        io.Writer
	catalog  *model.AlertTypeCatalog
	timezone *time.Location
}

// NewConsoleNotifier creates a ConsoleNotifier. A nil catalog uses the built-in one.
func NewConsoleNotifier(w io.Writer, catalog *model.AlertTypeCatalog, timezone *time.Location) *ConsoleNotifier {
	if catalog == nil {
		catalog = model.DefaultAlertTypeCatalog()
	}
	if timezone == nil {
		timezone = time.Local
	}
	return &ConsoleNotifier{w: w, catalog: catalog, timezone: timezone}
}

// Notify implements Notifier.
func (n *ConsoleNotifier) Notify(alert model.Alert) {
	line := n.format(alert)

	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.w, line)
}

// format renders e.g. "[15:04:05] 严重 CPU 使用率过高 | Payments: cpu at 95% (95.5% / 阈值 90%)".
func (n *ConsoleNotifier) format(alert model.Alert) string {
	var sb strings.Builder

	ts := alert.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	sb.WriteString("[" + ts.In(n.timezone).Format("15:04:05") + "] ")

	label, ok := severityLabels[alert.Severity]
	if !ok {
		label = string(alert.Severity)
	}
	sb.WriteString(label + " ")

	title := alert.Title
	if title == "" {
		title = n.catalog.DisplayName(alert.Type)
	}
	sb.WriteString(title)

	if !alert.IsSystemWide() {
		source := alert.SourceName
		if source == "" {
			source = alert.SourceID
		}
		sb.WriteString(" | " + source)
	}
	if alert.Message != "" {
		sb.WriteString(": " + alert.Message)
	}
	if alert.HasThreshold() {
		unit := n.catalog.Unit(alert.Type)
		sb.WriteString(fmt.Sprintf(" (%s%s / 阈值 %s%s)",
			formatValue(*alert.CurrentValue), unit, formatValue(*alert.ThresholdValue), unit))
	}

	return sb.String()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
