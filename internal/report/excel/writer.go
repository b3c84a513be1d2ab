// Package excel provides Excel export for the alert monitor.
// It implements the report.ReportWriter interface to generate .xlsx files
// with a summary, the alert list, plugin states and metric history.
package excel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"alert-monitor/internal/model"
)

const (
	// Sheet names
	sheetSummary = "告警概览"
	sheetAlerts  = "告警列表"
	sheetPlugins = "插件状态"
	sheetHistory = "指标历史"

	// Default sheet to remove
	defaultSheet = "Sheet1"

	// Colors for conditional formatting (RGB without #)
	colorInfoBg     = "DDEBF7" // Light blue background for info
	colorInfoFg     = "1F4E78" // Dark blue text for info
	colorWarningBg  = "FFEB9C" // Yellow background for warning
	colorWarningFg  = "9C6500" // Dark yellow text for warning
	colorErrorBg    = "F8CBAD" // Orange background for error
	colorErrorFg    = "843C0C" // Dark orange text for error
	colorCriticalBg = "FFC7CE" // Red background for critical
	colorCriticalFg = "9C0006" // Dark red text for critical
	colorHeaderBg   = "4472C4" // Blue background for header
	colorHeaderFg   = "FFFFFF" // White text for header
	colorNormalBg   = "C6EFCE" // Green background for normal
	colorNormalFg   = "006100" // Dark green text for normal
	colorMutedFg    = "808080" // Grey text for resolved rows

	timeLayout = "2006-01-02 15:04:05"
)

// Writer implements report.ReportWriter for Excel format.
type Writer struct {
	timezone *time.Location
	catalog  *model.AlertTypeCatalog
}

// NewWriter creates a new Excel report writer.
// If timezone is nil, it defaults to Asia/Shanghai.
func NewWriter(timezone *time.Location, catalog *model.AlertTypeCatalog) *Writer {
	if timezone == nil {
		timezone, _ = time.LoadLocation("Asia/Shanghai")
	}
	if catalog == nil {
		catalog = model.DefaultAlertTypeCatalog()
	}
	return &Writer{
		timezone: timezone,
		catalog:  catalog,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "excel"
}

// styles holds the style ids shared by all sheets of one workbook.
type styles struct {
	header   int
	title    int
	value    int
	muted    int
	severity map[model.Severity]int
	status   map[model.PluginStatus]int
}

// Write generates an Excel workbook from the snapshot.
func (w *Writer) Write(snapshot *model.SessionSnapshot, outputPath string) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}

	f := excelize.NewFile()
	defer f.Close()

	st, err := w.createStyles(f)
	if err != nil {
		return fmt.Errorf("failed to create styles: %w", err)
	}

	if err := w.createSummarySheet(f, snapshot, st); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := w.createAlertsSheet(f, snapshot, st); err != nil {
		return fmt.Errorf("failed to create alerts sheet: %w", err)
	}
	if err := w.createPluginsSheet(f, snapshot, st); err != nil {
		return fmt.Errorf("failed to create plugins sheet: %w", err)
	}
	if err := w.createHistorySheet(f, snapshot, st); err != nil {
		return fmt.Errorf("failed to create history sheet: %w", err)
	}

	// Sheet1 always exists in a new file
	_ = f.DeleteSheet(defaultSheet)

	idx, _ := f.GetSheetIndex(sheetSummary)
	f.SetActiveSheet(idx)

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	return nil
}

// ============================================================================
// Sheets
// ============================================================================

// createSummarySheet writes session info, alert statistics and the plugin summary.
func (w *Writer) createSummarySheet(f *excelize.File, s *model.SessionSnapshot, st *styles) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}

	f.SetColWidth(sheetSummary, "A", "A", 20)
	f.SetColWidth(sheetSummary, "B", "B", 36)

	f.MergeCell(sheetSummary, "A1", "B1")
	f.SetCellValue(sheetSummary, "A1", "告警监控快照")
	f.SetCellStyle(sheetSummary, "A1", "B1", st.title)
	f.SetRowHeight(sheetSummary, 1, 30)

	type item struct {
		label string
		value interface{}
	}
	items := []item{
		{"快照时间", s.TakenAt.In(w.timezone).Format(timeLayout)},
		{"连接状态", connectionText(s.Status)},
		{"客户端 ID", s.ClientID},
	}
	if s.ConnectionID != "" {
		items = append(items, item{"连接 ID", s.ConnectionID})
	}
	items = append(items,
		item{"告警总数", s.Statistics.Total},
		item{"未解决", s.Statistics.Active},
		item{"已解决", s.Statistics.Resolved},
		item{"最近 24 小时", s.Statistics.Last24Hours},
	)
	for i := len(model.AllSeverities) - 1; i >= 0; i-- {
		sev := model.AllSeverities[i]
		items = append(items, item{severityText(sev) + "告警", s.Statistics.BySeverity[sev]})
	}
	items = append(items,
		item{"插件总数", s.PluginSummary.Total},
		item{"运行中插件", s.PluginSummary.Active},
		item{"异常插件", s.PluginSummary.Warning},
		item{"停用插件", s.PluginSummary.Inactive},
		item{"平均 CPU", formatPercent(s.PluginSummary.AvgCPUUsage)},
		item{"平均内存", formatPercent(s.PluginSummary.AvgMemoryUsage)},
	)
	if s.Version != "" {
		items = append(items, item{"工具版本", s.Version})
	}

	for i, it := range items {
		row := i + 3
		a, b := fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row)
		f.SetCellValue(sheetSummary, a, it.label)
		f.SetCellValue(sheetSummary, b, it.value)
		f.SetCellStyle(sheetSummary, a, a, st.header)
		f.SetCellStyle(sheetSummary, b, b, st.value)
		f.SetRowHeight(sheetSummary, row, 22)
	}

	return nil
}

// createAlertsSheet writes one row per alert, most severe first.
func (w *Writer) createAlertsSheet(f *excelize.File, s *model.SessionSnapshot, st *styles) error {
	if _, err := f.NewSheet(sheetAlerts); err != nil {
		return err
	}

	headers := []string{"告警 ID", "级别", "类型", "标题", "来源", "当前值", "阈值", "告警时间", "状态", "解决时间", "告警消息"}
	widths := []float64{16, 10, 18, 28, 18, 12, 12, 20, 10, 20, 50}
	w.writeHeader(f, sheetAlerts, headers, widths, st.header)

	alerts := make([]model.Alert, len(s.Alerts))
	copy(alerts, s.Alerts)
	model.SortAlerts(alerts)

	for i, alert := range alerts {
		row := strconv.Itoa(i + 2)
		unit := w.catalog.Unit(alert.Type)

		source := alert.SourceName
		if source == "" {
			source = alert.SourceID
		}
		if alert.IsSystemWide() {
			source = "系统"
		}

		f.SetCellValue(sheetAlerts, "A"+row, alert.ID)
		f.SetCellValue(sheetAlerts, "B"+row, severityText(alert.Severity))
		f.SetCellValue(sheetAlerts, "C"+row, w.catalog.DisplayName(alert.Type))
		f.SetCellValue(sheetAlerts, "D"+row, alert.Title)
		f.SetCellValue(sheetAlerts, "E"+row, source)
		f.SetCellValue(sheetAlerts, "F"+row, formatOptional(alert.CurrentValue, unit))
		f.SetCellValue(sheetAlerts, "G"+row, formatOptional(alert.ThresholdValue, unit))
		f.SetCellValue(sheetAlerts, "H"+row, w.formatTime(alert.Timestamp))
		f.SetCellValue(sheetAlerts, "I"+row, resolvedText(alert.Resolved))
		if alert.ResolvedAt != nil {
			f.SetCellValue(sheetAlerts, "J"+row, w.formatTime(*alert.ResolvedAt))
		}
		f.SetCellValue(sheetAlerts, "K"+row, alert.Message)

		if alert.Resolved {
			f.SetCellStyle(sheetAlerts, "A"+row, "K"+row, st.muted)
			continue
		}
		if style, ok := st.severity[alert.Severity]; ok {
			f.SetCellStyle(sheetAlerts, "B"+row, "B"+row, style)
		}
	}

	return nil
}

// createPluginsSheet writes the latest known state of every plugin.
func (w *Writer) createPluginsSheet(f *excelize.File, s *model.SessionSnapshot, st *styles) error {
	if _, err := f.NewSheet(sheetPlugins); err != nil {
		return err
	}

	headers := []string{"插件 ID", "插件名称", "状态", "CPU", "内存", "响应时间", "请求数", "错误数", "错误率", "运行时长", "最后活动"}
	widths := []float64{16, 22, 10, 10, 10, 12, 12, 10, 10, 14, 20}
	w.writeHeader(f, sheetPlugins, headers, widths, st.header)

	for i, p := range s.Plugins {
		row := strconv.Itoa(i + 2)

		f.SetCellValue(sheetPlugins, "A"+row, p.ID)
		f.SetCellValue(sheetPlugins, "B"+row, p.Name)
		f.SetCellValue(sheetPlugins, "C"+row, pluginStatusText(p.Status))
		if style, ok := st.status[p.Status]; ok {
			f.SetCellStyle(sheetPlugins, "C"+row, "C"+row, style)
		}

		if p.Latest == nil {
			f.SetCellValue(sheetPlugins, "D"+row, "N/A")
			continue
		}
		m := p.Latest
		f.SetCellValue(sheetPlugins, "D"+row, formatPercent(m.CPUUsage))
		f.SetCellValue(sheetPlugins, "E"+row, formatPercent(m.MemoryUsage))
		f.SetCellValue(sheetPlugins, "F"+row, formatSeconds(m.ResponseTimeSeconds))
		f.SetCellValue(sheetPlugins, "G"+row, m.RequestCount)
		f.SetCellValue(sheetPlugins, "H"+row, m.ErrorCount)
		f.SetCellValue(sheetPlugins, "I"+row, formatPercent(m.ErrorRate()))
		f.SetCellValue(sheetPlugins, "J"+row, formatDuration(time.Duration(m.UptimeSeconds*float64(time.Second))))
		if !m.LastActivity.IsZero() {
			f.SetCellValue(sheetPlugins, "K"+row, w.formatTime(m.LastActivity))
		}
	}

	return nil
}

// createHistorySheet writes every buffered history point, grouped by plugin, oldest first.
func (w *Writer) createHistorySheet(f *excelize.File, s *model.SessionSnapshot, st *styles) error {
	if _, err := f.NewSheet(sheetHistory); err != nil {
		return err
	}

	headers := []string{"插件 ID", "采样时间", "CPU", "内存", "响应时间", "请求数", "错误数"}
	widths := []float64{16, 20, 10, 10, 12, 12, 10}
	w.writeHeader(f, sheetHistory, headers, widths, st.header)

	ids := make([]string, 0, len(s.History))
	for id := range s.History {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	row := 2
	for _, id := range ids {
		for _, p := range s.History[id] {
			r := strconv.Itoa(row)
			f.SetCellValue(sheetHistory, "A"+r, id)
			f.SetCellValue(sheetHistory, "B"+r, w.formatTime(p.Timestamp))
			f.SetCellValue(sheetHistory, "C"+r, p.CPUUsage)
			f.SetCellValue(sheetHistory, "D"+r, p.MemoryUsage)
			f.SetCellValue(sheetHistory, "E"+r, p.ResponseTimeSeconds)
			f.SetCellValue(sheetHistory, "F"+r, p.RequestCount)
			f.SetCellValue(sheetHistory, "G"+r, p.ErrorCount)
			row++
		}
	}

	return nil
}

// writeHeader writes a styled, frozen header row and sets column widths.
func (w *Writer) writeHeader(f *excelize.File, sheet string, headers []string, widths []float64, style int) {
	for i, width := range widths {
		col := columnName(i + 1)
		f.SetColWidth(sheet, col, col, width)
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", columnName(i+1))
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, style)
	}
	f.SetRowHeight(sheet, 1, 25)

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// ============================================================================
// Styles
// ============================================================================

func (w *Writer) createStyles(f *excelize.File) (*styles, error) {
	st := &styles{
		severity: make(map[model.Severity]int),
		status:   make(map[model.PluginStatus]int),
	}

	var err error
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: colorHeaderFg},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{colorHeaderBg}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return nil, err
	}
	if st.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 18},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return nil, err
	}
	if st.value, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return nil, err
	}
	if st.muted, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: colorMutedFg},
	}); err != nil {
		return nil, err
	}

	severityColors := map[model.Severity][2]string{
		model.SeverityInfo:     {colorInfoFg, colorInfoBg},
		model.SeverityWarning:  {colorWarningFg, colorWarningBg},
		model.SeverityError:    {colorErrorFg, colorErrorBg},
		model.SeverityCritical: {colorCriticalFg, colorCriticalBg},
	}
	for sev, c := range severityColors {
		if st.severity[sev], err = fillStyle(f, c[0], c[1]); err != nil {
			return nil, err
		}
	}

	statusColors := map[model.PluginStatus][2]string{
		model.PluginStatusActive:   {colorNormalFg, colorNormalBg},
		model.PluginStatusWarning:  {colorWarningFg, colorWarningBg},
		model.PluginStatusInactive: {colorMutedFg, "EDEDED"},
	}
	for status, c := range statusColors {
		if st.status[status], err = fillStyle(f, c[0], c[1]); err != nil {
			return nil, err
		}
	}

	return st, nil
}

func fillStyle(f *excelize.File, fg, bg string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: fg},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{bg}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

// ============================================================================
// Formatting helpers
// ============================================================================

func (w *Writer) formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(w.timezone).Format(timeLayout)
}

// columnName converts a 1-based column index to Excel column name (A, B, ..., Z, AA, AB, ...).
func columnName(index int) string {
	result := ""
	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}

// formatDuration formats a duration in a human-readable format.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0f秒", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1f分钟", d.Minutes())
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%.1f小时", d.Hours())
	}
	return fmt.Sprintf("%.1f天", d.Hours()/24)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func formatSeconds(v float64) string {
	if v < 1 {
		return fmt.Sprintf("%.0fms", v*1000)
	}
	return fmt.Sprintf("%.2fs", v)
}

// formatOptional renders an optional threshold value with its unit, or "-" when absent.
func formatOptional(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + unit
}

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

func resolvedText(resolved bool) string {
	if resolved {
		return "已解决"
	}
	return "未解决"
}
