package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"alert-monitor/internal/model"
)

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
		return string(s)
	}
}

func connectionText(s model.ConnectionStatus) string {
	switch s {
	case model.ConnectionConnected:
		return "🟢 已连接"
	case model.ConnectionConnecting:
		return "🟡 连接中"
	default:
		return "🔴 已断开"
	}
}

// filterAlerts keeps alerts at or above minSeverity; resolved ones only when includeResolved.
func filterAlerts(alerts []model.Alert, minSeverity model.Severity, includeResolved bool) []model.Alert {
	var out []model.Alert
	for _, a := range alerts {
		if a.Resolved && !includeResolved {
			continue
		}
		if minSeverity != "" && !a.Severity.AtLeast(minSeverity) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// parseSeverity validates a --severity flag value. Empty means no filter.
func parseSeverity(s string) (model.Severity, error) {
	if s == "" {
		return "", nil
	}
	sev := model.Severity(strings.ToLower(strings.TrimSpace(s)))
	if !sev.IsValid() {
		return "", fmt.Errorf("unknown severity %q (info, warning, error, critical)", s)
	}
	return sev, nil
}

// alertRows formats alerts as table rows.
func alertRows(alerts []model.Alert, catalog *model.AlertTypeCatalog, tz *time.Location) [][]string {
	rows := make([][]string, 0, len(alerts))
	for _, a := range alerts {
		source := a.SourceName
		if source == "" {
			source = a.SourceID
		}
		if a.IsSystemWide() {
			source = "系统"
		}
		value := "-"
		if a.HasThreshold() {
			unit := catalog.Unit(a.Type)
			value = strconv.FormatFloat(*a.CurrentValue, 'f', -1, 64) + unit + " / " +
				strconv.FormatFloat(*a.ThresholdValue, 'f', -1, 64) + unit
		}
		state := "未解决"
		if a.Resolved {
			state = "已解决"
		}
		rows = append(rows, []string{
			a.ID,
			severityText(a.Severity),
			catalog.DisplayName(a.Type),
			a.Title,
			source,
			value,
			a.Timestamp.In(tz).Format("01-02 15:04:05"),
			state,
		})
	}
	return rows
}

// pluginRows formats plugin states as table rows.
func pluginRows(plugins []model.PluginState) [][]string {
	rows := make([][]string, 0, len(plugins))
	for _, p := range plugins {
		row := []string{p.ID, p.Name, pluginStatusText(p.Status), "N/A", "N/A", "N/A", "N/A"}
		if m := p.Latest; m != nil {
			row[3] = fmt.Sprintf("%.1f%%", m.CPUUsage)
			row[4] = fmt.Sprintf("%.1f%%", m.MemoryUsage)
			row[5] = fmt.Sprintf("%.0fms", m.ResponseTimeSeconds*1000)
			row[6] = fmt.Sprintf("%.2f%%", m.ErrorRate())
		}
		rows = append(rows, row)
	}
	return rows
}

// sortedCounts renders a count map as "k=v" pairs in key order.
func sortedCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, " ")
}

// renderTable prints rows under headers.
func renderTable(headers []string, rows [][]string) error {
	if len(rows) == 0 {
		pterm.Info.Println("无数据")
		return nil
	}

	data := pterm.TableData{headers}
	data = append(data, rows...)
	if err := pterm.DefaultTable.WithHasHeader(true).WithData(data).Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
