// Package model provides data models for the alert monitor.
package model

import "time"

// PluginStatus represents the run state of a monitored entity.
type PluginStatus string

const (
	PluginStatusActive   PluginStatus = "active"   // 运行中
	PluginStatusInactive PluginStatus = "inactive" // 已停用
	PluginStatusWarning  PluginStatus = "warning"  // 运行异常
)

// IsRunning returns true if the entity is enabled (active or degraded).
func (s PluginStatus) IsRunning() bool {
	return s == PluginStatusActive || s == PluginStatusWarning
}

// PluginMetricSample is one observation for one monitored entity.
// ErrorCount and RequestCount are monotonic counters since entity start.
type PluginMetricSample struct {
	CPUUsage            float64      `json:"cpu_usage"`     // CPU 使用率（0-100）
	MemoryUsage         float64      `json:"memory_usage"`  // 内存使用率（0-100）
	ResponseTimeSeconds float64      `json:"response_time"` // 响应时间（秒）
	ErrorCount          int64        `json:"error_count"`   // 错误次数
	RequestCount        int64        `json:"request_count"` // 请求次数
	LastActivity        time.Time    `json:"last_activity"` // 最后活动时间
	Status              PluginStatus `json:"status"`        // 运行状态
	UptimeSeconds       float64      `json:"uptime"`        // 运行时长（秒）
}

// ErrorRate returns errors per request in percent, or 0 when no request was seen.
func (s *PluginMetricSample) ErrorRate() float64 {
	if s.RequestCount <= 0 {
		return 0
	}
	return float64(s.ErrorCount) / float64(s.RequestCount) * 100
}

// HistoryPoint is one entry of a per-entity time series.
type HistoryPoint struct {
	Timestamp           time.Time `json:"timestamp"`     // 采样时间
	CPUUsage            float64   `json:"cpu_usage"`     // CPU 使用率
	MemoryUsage         float64   `json:"memory_usage"`  // 内存使用率
	ResponseTimeSeconds float64   `json:"response_time"` // 响应时间（秒）
	ErrorCount          int64     `json:"error_count"`   // 错误次数
	RequestCount        int64     `json:"request_count"` // 请求次数
}

// NewHistoryPoint builds a HistoryPoint from a sample observed at ts.
func NewHistoryPoint(sample PluginMetricSample, ts time.Time) HistoryPoint {
	return HistoryPoint{
		Timestamp:           ts,
		CPUUsage:            sample.CPUUsage,
		MemoryUsage:         sample.MemoryUsage,
		ResponseTimeSeconds: sample.ResponseTimeSeconds,
		ErrorCount:          sample.ErrorCount,
		RequestCount:        sample.RequestCount,
	}
}

// PluginInfo is the REST listing record for a monitored entity.
type PluginInfo struct {
	ID     string       `json:"id"`     // 插件 ID
	Name   string       `json:"name"`   // 插件名称
	Status PluginStatus `json:"status"` // 运行状态
}

// PluginState is the locally known state of a monitored entity.
type PluginState struct {
	ID     string              `json:"id"`               // 插件 ID
	Name   string              `json:"name"`             // 插件名称
	Status PluginStatus        `json:"status"`           // 运行状态
	Latest *PluginMetricSample `json:"latest,omitempty"` // 最新指标
}

// PluginSummary provides aggregated entity statistics.
type PluginSummary struct {
	Total          int     `json:"total"`            // 插件总数
	Active         int     `json:"active"`           // 运行中数量
	Inactive       int     `json:"inactive"`         // 停用数量
	Warning        int     `json:"warning"`          // 异常数量
	AvgCPUUsage    float64 `json:"avg_cpu_usage"`    // 平均 CPU 使用率
	AvgMemoryUsage float64 `json:"avg_memory_usage"` // 平均内存使用率
	TotalErrors    int64   `json:"total_errors"`     // 错误总数
	TotalRequests  int64   `json:"total_requests"`   // 请求总数
}

// NewPluginSummary creates a PluginSummary from a list of entity states.
// Averages only include entities that have reported at least one sample.
func NewPluginSummary(plugins []PluginState) PluginSummary {
	var summary PluginSummary
	var sampled int
	for _, p := range plugins {
		summary.Total++
		switch p.Status {
		case PluginStatusActive:
			summary.Active++
		case PluginStatusInactive:
			summary.Inactive++
		case PluginStatusWarning:
			summary.Warning++
		}
		if p.Latest == nil {
			continue
		}
		sampled++
		summary.AvgCPUUsage += p.Latest.CPUUsage
		summary.AvgMemoryUsage += p.Latest.MemoryUsage
		summary.TotalErrors += p.Latest.ErrorCount
		summary.TotalRequests += p.Latest.RequestCount
	}
	if sampled > 0 {
		summary.AvgCPUUsage /= float64(sampled)
		summary.AvgMemoryUsage /= float64(sampled)
	}
	return summary
}
