// Package model provides data models for the alert monitor.
package model

import "time"

// ConnectionStatus represents the state of the streaming connection.
type ConnectionStatus string

const (
	ConnectionConnecting   ConnectionStatus = "connecting"   // 连接中
	ConnectionConnected    ConnectionStatus = "connected"    // 已连接
	ConnectionDisconnected ConnectionStatus = "disconnected" // 已断开
)

// NotificationConfig is the server-side notification preference for toasts.
type NotificationConfig struct {
	Enabled     bool     `json:"enabled"`      // 是否启用通知
	MinSeverity Severity `json:"min_severity"` // 最低通知级别
	Channels    []string `json:"channels"`     // 通知渠道
}

// DefaultNotificationConfig returns the preference used when the server has none.
func DefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		Enabled:     true,
		MinSeverity: SeverityInfo,
	}
}

// ShouldNotify returns true if a toast should be shown for the alert.
func (c NotificationConfig) ShouldNotify(alert Alert) bool {
	if !c.Enabled || alert.Resolved {
		return false
	}
	if !c.MinSeverity.IsValid() {
		return true
	}
	return alert.Severity.AtLeast(c.MinSeverity)
}

// SessionSnapshot is the read model handed to presentation and export.
// It is a copy; mutating it has no effect on the session.
type SessionSnapshot struct {
	// 会话信息
	ClientID     string           `json:"client_id"`               // 客户端会话 ID
	ConnectionID string           `json:"connection_id,omitempty"` // 服务端连接 ID
	Status       ConnectionStatus `json:"status"`                  // 连接状态
	Version      string           `json:"version"`                 // 工具版本

	// 告警数据
	Alerts     []Alert         `json:"alerts"`     // 告警列表（按严重级别排序）
	Statistics AlertStatistics `json:"statistics"` // 告警统计

	// 插件数据
	Plugins       []PluginState             `json:"plugins"`           // 插件列表
	PluginSummary PluginSummary             `json:"plugin_summary"`    // 插件统计
	History       map[string][]HistoryPoint `json:"history,omitempty"` // 插件指标历史，key = 插件 ID

	// 时间信息
	TakenAt time.Time `json:"taken_at"` // 快照时间
}

// ActiveAlerts returns the unresolved alerts of the snapshot, in snapshot order.
func (s *SessionSnapshot) ActiveAlerts() []Alert {
	var active []Alert
	for _, a := range s.Alerts {
		if !a.Resolved {
			active = append(active, a)
		}
	}
	return active
}
