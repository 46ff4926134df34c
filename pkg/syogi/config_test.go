package syogi_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"syogi/pkg/syogi"
)

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"handicap":"角落ち","try_rule":true}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := syogi.LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.TryRule || cfg.Workers != 1 || cfg.LogLevel != "info" {
		t.Fatalf("config = %+v", cfg)
	}
	h, side, err := cfg.GameSetup()
	if err != nil || h != syogi.KakuOchi || side != syogi.White {
		t.Fatalf("setup = %s %s %v", h, side, err)
	}
}

func TestLoadConfigRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"workers":`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := syogi.LoadConfig(path); err == nil {
		t.Fatal("truncated json accepted")
	}
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"", "debug", "warn"} {
		logger, err := syogi.NewLogger(level)
		if err != nil {
			t.Fatalf("NewLogger(%q): %v", level, err)
		}
		_ = logger.Sync()
	}
	if _, err := syogi.NewLogger("loud"); err == nil {
		t.Fatal("unknown level accepted")
	}
}

func TestNewLoggerToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syogi.log")
	logger, err := syogi.NewLogger("info", path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("archive written")
	_ = logger.Sync()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "archive written") {
		t.Fatalf("log file = %q", data)
	}
}
