package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"flowrpg/internal/platform/config"
)

func TestNewWithoutSettingsUsesDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.StatePath != filepath.Join(dir, "state.json") {
		t.Fatalf("unexpected state path: %s", cfg.StatePath)
	}
	if cfg.Settings != config.DefaultSettings() {
		t.Fatalf("expected default settings, got %+v", cfg.Settings)
	}
	if !cfg.Settings.AutoStartOnSwitch {
		t.Fatalf("auto start on switch must default to true")
	}
}

func TestNewReadsSettingsAndRepairsInvalidValues(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	raw := "auto_start_on_switch: false\nstory_tail: -2\nlog_level: LOUD\nseed: 99\n"
	if err := os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Settings.AutoStartOnSwitch {
		t.Fatalf("expected auto start disabled")
	}
	if cfg.Settings.StoryTail != 6 || cfg.Settings.LogLevel != "info" || cfg.Settings.Seed != 99 {
		t.Fatalf("unexpected settings: %+v", cfg.Settings)
	}
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte("volume: 11\n"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	if _, err := config.New(dir); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestNewRequiresDataPath(t *testing.T) {
	t.Parallel()
	if _, err := config.New(""); err == nil {
		t.Fatalf("expected error for empty data path")
	}
}
