// Package model provides data models for the alert monitor.
package model

import "strings"

// AlertTypeDefinition defines display metadata for an alert type, loaded from alert-types.yaml.
type AlertTypeDefinition struct {
	Type        string `yaml:"type" json:"type"`                                   // 告警类型标识
	DisplayName string `yaml:"display_name" json:"display_name"`                   // 显示名称
	Description string `yaml:"description,omitempty" json:"description,omitempty"` // 说明
	Unit        string `yaml:"unit,omitempty" json:"unit,omitempty"`               // 阈值单位（%、s 等）
}

// AlertTypesConfig represents the root structure of alert-types.yaml file.
type AlertTypesConfig struct {
	AlertTypes []*AlertTypeDefinition `yaml:"alert_types" json:"alert_types"` // 告警类型列表
}

// AlertTypeCatalog is the type → display text lookup table.
// It is used for rendering only.
type AlertTypeCatalog struct {
	defs map[string]*AlertTypeDefinition
}

// NewAlertTypeCatalog creates a catalog from definitions. Later entries win on duplicates.
func NewAlertTypeCatalog(defs []*AlertTypeDefinition) *AlertTypeCatalog {
	c := &AlertTypeCatalog{defs: make(map[string]*AlertTypeDefinition, len(defs))}
	for _, d := range defs {
		if d == nil || d.Type == "" {
			continue
		}
		c.defs[d.Type] = d
	}
	return c
}

// DefaultAlertTypeCatalog returns the built-in catalog used when no file is configured.
func DefaultAlertTypeCatalog() *AlertTypeCatalog {
	return NewAlertTypeCatalog([]*AlertTypeDefinition{
		{Type: "cpu_high", DisplayName: "CPU 使用率过高", Unit: "%"},
		{Type: "memory_high", DisplayName: "内存使用率过高", Unit: "%"},
		{Type: "resource_high", DisplayName: "资源使用率过高", Unit: "%"},
		{Type: "response_time_high", DisplayName: "响应时间过长", Unit: "s"},
		{Type: "error_rate_high", DisplayName: "错误率过高", Unit: "%"},
		{Type: "offline", DisplayName: "插件离线"},
		{Type: "error", DisplayName: "插件错误"},
	})
}

// DisplayName returns the display text for an alert type.
// Unknown types fall back to a title-cased form of the identifier.
func (c *AlertTypeCatalog) DisplayName(alertType string) string {
	if c != nil {
		if d, ok := c.defs[alertType]; ok && d.DisplayName != "" {
			return d.DisplayName
		}
	}
	return humanize(alertType)
}

// Unit returns the threshold unit for an alert type, or "" if none is defined.
func (c *AlertTypeCatalog) Unit(alertType string) string {
	if c == nil {
		return ""
	}
	if d, ok := c.defs[alertType]; ok {
		return d.Unit
	}
	return ""
}

// Len returns the number of definitions in the catalog.
func (c *AlertTypeCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.defs)
}

// humanize turns "error_rate_high" into "Error Rate High".
func humanize(s string) string {
	if s == "" {
		return "Unknown"
	}
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
