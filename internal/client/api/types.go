// Package api provides a client for the dashboard REST API.
package api

import (
	"fmt"

	"alert-monitor/internal/model"
)

// Envelope is the common wrapper of every REST response.
// A response with success=false carries the reason in error or message.
type Envelope struct {
	Success bool   `json:"success"`           // 是否成功
	Error   string `json:"error,omitempty"`   // 错误信息
	Message string `json:"message,omitempty"` // 提示信息（部分接口用于错误说明）
}

func (e *Envelope) envelope() *Envelope { return e }

// reason returns the server-declared failure reason.
func (e *Envelope) reason() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// enveloped is implemented by every response type through the embedded Envelope.
type enveloped interface {
	envelope() *Envelope
}

// AlertsResponse represents the response of GET /alerts.
type AlertsResponse struct {
	Envelope
	Alerts []model.Alert `json:"alerts"` // 告警列表
}

// StatisticsResponse represents the response of GET /alerts/statistics.
type StatisticsResponse struct {
	Envelope
	Statistics model.AlertStatistics `json:"statistics"` // 告警统计
}

// BulkResolveRequest is the body of POST /alerts/bulk-resolve.
type BulkResolveRequest struct {
	AlertIDs []string `json:"alert_ids"` // 待解决告警 ID 列表
}

// BulkResolveResponse represents the response of POST /alerts/bulk-resolve.
type BulkResolveResponse struct {
	Envelope
	ResolvedCount int `json:"resolved_count"` // 实际解决数量
}

// PluginsResponse represents the response of GET /plugins.
type PluginsResponse struct {
	Envelope
	Plugins []model.PluginInfo `json:"plugins"` // 插件列表
}

// PluginMetricsResponse represents the response of GET /plugins/metrics.
type PluginMetricsResponse struct {
	Envelope
	Data map[string]model.PluginMetricSample `json:"data"` // 插件 ID → 指标
}

// NotificationConfigResponse represents the response of GET /notifications/config.
type NotificationConfigResponse struct {
	Envelope
	Config *model.NotificationConfig `json:"config"` // 通知配置
}

// Error is a failure declared by the server, either through a non-2xx status
// or through success=false in the response envelope.
type Error struct {
	Op         string // Operation that failed (e.g., "resolve alert")
	StatusCode int    // HTTP status code
	Message    string // Server-provided reason
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: server returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: server returned status %d: %s", e.Op, e.StatusCode, e.Message)
}
