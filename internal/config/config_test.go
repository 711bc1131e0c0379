package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromDefaults(t *testing.T) {
	dir := t.TempDir()
	s, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if s.DataDir != dir {
		t.Errorf("expected data dir %s, got %s", dir, s.DataDir)
	}
	if s.DebounceDelay != 1500*time.Millisecond {
		t.Errorf("expected default debounce 1.5s, got %s", s.DebounceDelay)
	}
	if s.SyncInterval != 60*time.Second {
		t.Errorf("expected default interval 60s, got %s", s.SyncInterval)
	}
	if got := s.DatabasePath(); got != filepath.Join(dir, "rackline.db") {
		t.Errorf("unexpected database path %s", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "debounce_delay: 500ms\nsync_interval: 10s\nlog_file: /tmp/rackline.log\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	s, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if s.DebounceDelay != 500*time.Millisecond {
		t.Errorf("expected 500ms debounce, got %s", s.DebounceDelay)
	}
	if s.SyncInterval != 10*time.Second {
		t.Errorf("expected 10s interval, got %s", s.SyncInterval)
	}
	if s.LogFile != "/tmp/rackline.log" {
		t.Errorf("unexpected log file %s", s.LogFile)
	}
}

func TestLoadFromRejectsBadDurations(t *testing.T) {
	dir := t.TempDir()
	yaml := "debounce_delay: -5s\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadFrom(dir); err == nil {
		t.Fatal("expected negative debounce to be rejected")
	}
}
