package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if len(cfg.Displays) != 4 {
		t.Fatalf("expected 4 default displays, got %d", len(cfg.Displays))
	}
	if !cfg.GetBorderless() || !cfg.GetHideTitlebar() {
		t.Fatalf("borderless and hide_titlebar should default to true")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ControlPort != 5000 {
		t.Fatalf("expected default control_port 5000, got %d", cfg.ControlPort)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("# empty\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.DefaultOrder; len(got) != 4 || got[0] != 4 {
		t.Fatalf("expected default order [4 2 3 1], got %v", got)
	}
}

func TestLoadFromPath_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := strings.Join([]string{
		"control_port: 8080",
		"borderless: false",
		"default_order: [1, 2, 3, 4]",
		"display: \":1\"",
		"detection:",
		"  timeout_seconds: 120",
		"  poll_interval_ms: 250",
		"  settle_delay_ms: 1000",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ControlPort != 8080 {
		t.Fatalf("control_port = %d, want 8080", cfg.ControlPort)
	}
	if cfg.GetBorderless() {
		t.Fatalf("borderless should be false")
	}
	if cfg.GetHideTitlebar() {
		// hide_titlebar untouched, keeps its default
		t.Log("hide_titlebar kept default true")
	}
	if cfg.Detection.TimeoutSeconds != 120 {
		t.Fatalf("timeout = %d, want 120", cfg.Detection.TimeoutSeconds)
	}
	if cfg.Display != ":1" {
		t.Fatalf("display = %q, want :1", cfg.Display)
	}
}

func TestLoadFromPath_GridReplacesDefaultDisplays(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := strings.Join([]string{
		"grid:",
		"  x: 0",
		"  y: 0",
		"  width: 1920",
		"  height: 1080",
		"  columns: 4",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Displays) != 0 {
		t.Fatalf("grid config should clear default displays, got %v", cfg.Displays)
	}
	if cfg.Grid == nil || cfg.Grid.Columns != 4 {
		t.Fatalf("grid not loaded: %+v", cfg.Grid)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"three displays", func(c *Config) { c.Displays = c.Displays[:3] }},
		{"no displays no grid", func(c *Config) { c.Displays = nil }},
		{"zero-size display", func(c *Config) { c.Displays[1].Width = 0 }},
		{"short order", func(c *Config) { c.DefaultOrder = []int{1, 2, 3} }},
		{"duplicate order", func(c *Config) { c.DefaultOrder = []int{1, 2, 2, 3} }},
		{"order out of range", func(c *Config) { c.DefaultOrder = []int{1, 2, 3, 5} }},
		{"bad port", func(c *Config) { c.ControlPort = 0 }},
		{"bad timeout", func(c *Config) { c.Detection.TimeoutSeconds = 0 }},
		{"bad poll interval", func(c *Config) { c.Detection.PollIntervalMS = -1 }},
		{"bad retries", func(c *Config) { c.Placement.Retries = 0 }},
		{"negative tolerance", func(c *Config) { c.Placement.Tolerance = -1 }},
		{"wrong grid columns", func(c *Config) {
			c.Displays = nil
			c.Grid = &Grid{Width: 1920, Height: 1080, Columns: 3}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
