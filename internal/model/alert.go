// Package model provides data models for the alert monitor.
package model

import (
	"sort"
	"time"
)

// Severity represents the severity level of an alert.
// It drives styling and sort priority only, never control flow.
type Severity string

const (
	SeverityInfo     Severity = "info"     // 提示
	SeverityWarning  Severity = "warning"  // 警告
	SeverityError    Severity = "error"    // 错误
	SeverityCritical Severity = "critical" // 严重
)

// AllSeverities lists every known severity in ascending order.
var AllSeverities = []Severity{SeverityInfo, SeverityWarning, SeverityError, SeverityCritical}

// Rank returns the ordinal of the severity (info=1 .. critical=4).
// Unknown severities rank 0, below info.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityError:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as min or more.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// IsValid returns true if the severity is one of the known values.
func (s Severity) IsValid() bool {
	return s.Rank() > 0
}

// Alert represents one detected condition pushed by the server.
type Alert struct {
	ID             string         `json:"id"`                        // 告警唯一标识
	Type           string         `json:"type"`                      // 告警类型（resource_high、offline 等）
	Severity       Severity       `json:"severity"`                  // 严重级别
	Title          string         `json:"title"`                     // 标题
	Message        string         `json:"message"`                   // 告警消息
	SourceID       string         `json:"plugin_id,omitempty"`       // 关联实体 ID（空表示系统级）
	SourceName     string         `json:"plugin_name,omitempty"`     // 关联实体名称
	CurrentValue   *float64       `json:"current_value,omitempty"`   // 当前值（阈值类告警）
	ThresholdValue *float64       `json:"threshold_value,omitempty"` // 阈值（阈值类告警）
	Timestamp      time.Time      `json:"timestamp"`                 // 创建时间
	Resolved       bool           `json:"resolved"`                  // 是否已解决
	ResolvedAt     *time.Time     `json:"resolved_at,omitempty"`     // 解决时间（仅 resolved=true 时存在）
	Metadata       map[string]any `json:"metadata,omitempty"`        // 扩展信息（客户端不解析）
}

// IsSystemWide returns true if the alert does not concern a specific entity.
func (a *Alert) IsSystemWide() bool {
	return a.SourceID == ""
}

// HasThreshold returns true if the alert carries a current/threshold value pair.
func (a *Alert) HasThreshold() bool {
	return a.CurrentValue != nil && a.ThresholdValue != nil
}

// Normalize enforces the ResolvedAt/Resolved invariant on an inbound record.
// A resolved alert without a resolution time is stamped with receivedAt;
// an unresolved alert never keeps a resolution time.
func (a *Alert) Normalize(receivedAt time.Time) {
	if a.Resolved && a.ResolvedAt == nil {
		t := receivedAt
		a.ResolvedAt = &t
	}
	if !a.Resolved {
		a.ResolvedAt = nil
	}
}

// Resolve marks the alert resolved at the given time.
// It returns false without changing anything if the alert is already resolved.
func (a *Alert) Resolve(at time.Time) bool {
	if a.Resolved {
		return false
	}
	a.Resolved = true
	t := at
	a.ResolvedAt = &t
	return true
}

// Clone returns a copy of the alert that shares no pointers with the original.
func (a Alert) Clone() Alert {
	c := a
	if a.CurrentValue != nil {
		v := *a.CurrentValue
		c.CurrentValue = &v
	}
	if a.ThresholdValue != nil {
		v := *a.ThresholdValue
		c.ThresholdValue = &v
	}
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		c.ResolvedAt = &t
	}
	if a.Metadata != nil {
		c.Metadata = make(map[string]any, len(a.Metadata))
		for k, v := range a.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}

// SortAlerts orders alerts by severity (most severe first), then newest first,
// then by ID so the order is total.
func SortAlerts(alerts []Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := alerts[i].Severity.Rank(), alerts[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		if !alerts[i].Timestamp.Equal(alerts[j].Timestamp) {
			return alerts[i].Timestamp.After(alerts[j].Timestamp)
		}
		return alerts[i].ID < alerts[j].ID
	})
}

// AlertStatistics provides aggregated alert statistics.
// It is always derived from an alert collection, never stored on its own.
type AlertStatistics struct {
	Total       int              `json:"total"`       // 告警总数
	Active      int              `json:"active"`      // 未解决数量
	Resolved    int              `json:"resolved"`    // 已解决数量
	BySeverity  map[Severity]int `json:"by_severity"` // 按严重级别统计
	ByType      map[string]int   `json:"by_type"`     // 按类型统计
	Last24Hours int              `json:"recent_24h"`  // 最近 24 小时新增
}

// StatisticsWindow is the rolling window used for AlertStatistics.Last24Hours.
const StatisticsWindow = 24 * time.Hour

// ComputeStatistics derives AlertStatistics from an alert collection.
// The result depends only on the set of alerts and now, not on their order.
func ComputeStatistics(alerts []Alert, now time.Time) AlertStatistics {
	stats := AlertStatistics{
		BySeverity: make(map[Severity]int),
		ByType:     make(map[string]int),
	}
	cutoff := now.Add(-StatisticsWindow)

	for _, alert := range alerts {
		stats.Total++
		if alert.Resolved {
			stats.Resolved++
		} else {
			stats.Active++
		}
		stats.BySeverity[alert.Severity]++
		stats.ByType[alert.Type]++
		// Server clocks may run ahead, so future timestamps count as recent
		if alert.Timestamp.After(cutoff) {
			stats.Last24Hours++
		}
	}

	return stats
}
