// Package config provides configuration management for the alert monitor.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"alert-monitor/internal/model"
)

// LoadAlertTypes reads alert type display definitions from the specified YAML file.
// An empty path returns the built-in catalog.
func LoadAlertTypes(path string) (*model.AlertTypeCatalog, error) {
	if path == "" {
		return model.DefaultAlertTypeCatalog(), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("alert types file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alert types file: %w", err)
	}

	var cfg model.AlertTypesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse alert types file: %w", err)
	}

	if len(cfg.AlertTypes) == 0 {
		return nil, fmt.Errorf("no alert types defined in file: %s", path)
	}

	for i, d := range cfg.AlertTypes {
		if d == nil || d.Type == "" {
			return nil, fmt.Errorf("alert type at index %d has no type", i)
		}
		if d.DisplayName == "" {
			return nil, fmt.Errorf("alert type %q has no display_name", d.Type)
		}
	}

	return model.NewAlertTypeCatalog(cfg.AlertTypes), nil
}
