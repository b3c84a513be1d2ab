//go:build ignore
// +build ignore

// This script generates sample snapshot reports for manual verification.
// Run with: go run scripts/verify_excel.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"alert-monitor/internal/model"
	"alert-monitor/internal/report"
)

func main() {
	tz, _ := time.LoadLocation("Asia/Shanghai")
	snapshot := createSampleSnapshot()

	registry := report.NewRegistry(tz, nil, "")
	exporter := report.NewExporter(registry, ".", "sample_alert_snapshot", tz, zerolog.Nop())

	paths, err := exporter.Export(snapshot, []string{"excel", "html"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	for _, p := range paths {
		fmt.Printf("✅ Report generated: %s\n", p)
	}
	fmt.Println("\nPlease open the files to verify:")
	fmt.Println("  - Times are in Asia/Shanghai timezone")
	fmt.Println("  - Alerts are sorted (critical first), resolved rows are grey")
	fmt.Println("  - Severity cells are colored (critical red, error orange, warning yellow, info blue)")
	fmt.Println("  - History sheet holds at most 50 points per plugin")
}

func ptr(v float64) *float64 { return &v }

func createSampleSnapshot() *model.SessionSnapshot {
	now := time.Now()
	resolvedAt := now.Add(-20 * time.Minute)

	alerts := []model.Alert{
		{ID: "alert-001", Type: "cpu_high", Severity: model.SeverityCritical, Title: "CPU 持续过高",
			Message: "payments CPU 使用率 96%", SourceID: "payments", SourceName: "支付插件",
			CurrentValue: ptr(96), ThresholdValue: ptr(90), Timestamp: now.Add(-3 * time.Minute)},
		{ID: "alert-002", Type: "response_time_high", Severity: model.SeverityWarning, Title: "响应变慢",
			Message: "平均响应时间 2.4s", SourceID: "orders", SourceName: "订单插件",
			CurrentValue: ptr(2.4), ThresholdValue: ptr(2), Timestamp: now.Add(-10 * time.Minute)},
		{ID: "alert-003", Type: "offline", Severity: model.SeverityError, Title: "插件离线",
			Message: "kitchen-display 心跳超时", SourceID: "kds", SourceName: "后厨显示",
			Timestamp: now.Add(-40 * time.Minute), Resolved: true, ResolvedAt: &resolvedAt},
		{ID: "alert-004", Type: "maintenance", Severity: model.SeverityInfo, Title: "计划维护",
			Message: "今晚 23:00 数据库维护", Timestamp: now.Add(-2 * time.Hour)},
	}

	plugins := []model.PluginState{
		{ID: "payments", Name: "支付插件", Status: model.PluginStatusWarning, Latest: &model.PluginMetricSample{
			CPUUsage: 96, MemoryUsage: 71.5, ResponseTimeSeconds: 0.35, ErrorCount: 12, RequestCount: 4810,
			Status: model.PluginStatusWarning, UptimeSeconds: 86400 * 3, LastActivity: now,
		}},
		{ID: "orders", Name: "订单插件", Status: model.PluginStatusActive, Latest: &model.PluginMetricSample{
			CPUUsage: 42, MemoryUsage: 55, ResponseTimeSeconds: 2.4, ErrorCount: 3, RequestCount: 12093,
			Status: model.PluginStatusActive, UptimeSeconds: 7200, LastActivity: now,
		}},
		{ID: "kds", Name: "后厨显示", Status: model.PluginStatusInactive},
	}

	history := make(map[string][]model.HistoryPoint)
	for _, id := range []string{"payments", "orders"} {
		for i := 0; i < 50; i++ {
			history[id] = append(history[id], model.HistoryPoint{
				Timestamp:   now.Add(time.Duration(i-50) * 5 * time.Second),
				CPUUsage:    float64(30 + i),
				MemoryUsage: float64(40 + i/2),
			})
		}
	}

	return &model.SessionSnapshot{
		ClientID:      "sample-client",
		ConnectionID:  "conn-sample",
		Status:        model.ConnectionConnected,
		Version:       "sample",
		Alerts:        alerts,
		Statistics:    model.ComputeStatistics(alerts, now),
		Plugins:       plugins,
		PluginSummary: model.NewPluginSummary(plugins),
		History:       history,
		TakenAt:       now,
	}
}
