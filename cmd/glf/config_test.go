package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFile(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := []byte("output_dir: /tmp/sweeps\npalette: amber\nlog_level: debug\nserver_address: 0.0.0.0:9000\n")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		cfg := loadConfigFile(path)
		if cfg.OutputDir != "/tmp/sweeps" {
			t.Fatalf("unexpected output_dir: got %q", cfg.OutputDir)
		}
		if cfg.Palette != "amber" {
			t.Fatalf("unexpected palette: got %q", cfg.Palette)
		}
		if cfg.LogLevel != "debug" {
			t.Fatalf("unexpected log_level: got %q", cfg.LogLevel)
		}
		if cfg.ServerAddress != "0.0.0.0:9000" {
			t.Fatalf("unexpected server_address: got %q", cfg.ServerAddress)
		}
		if cfg.LogFormat != "" {
			t.Fatalf("expected log_format to stay empty, got %q", cfg.LogFormat)
		}
	})

	t.Run("missing file yields zero config", func(t *testing.T) {
		cfg := loadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if cfg != (Config{}) {
			t.Fatalf("expected zero config, got %+v", cfg)
		}
	})

	t.Run("malformed yaml yields zero config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("palette: [unclosed"), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		cfg := loadConfigFile(path)
		if cfg != (Config{}) {
			t.Fatalf("expected zero config, got %+v", cfg)
		}
	})
}
