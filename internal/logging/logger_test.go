package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"merakireboot/internal/config"
	"merakireboot/internal/logging"
	"merakireboot/internal/services"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "info"
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "merakireboot.log")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("device list fetched", "devices", 3)

	content := readLog(t, cfg.Logging.File)
	if !strings.Contains(content, "INFO device list fetched") || !strings.Contains(content, "devices=3") {
		t.Fatalf("unexpected log content %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	if content := readLog(t, logPath); strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	if content := readLog(t, logPath); !strings.Contains(content, "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerFiltersBelowLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("visible")

	content := readLog(t, logPath)
	if strings.Contains(content, "hidden") {
		t.Fatalf("expected info line to be filtered, got %q", content)
	}
	if !strings.Contains(content, "WARN visible") {
		t.Fatalf("expected warn line, got %q", content)
	}
}

func TestConsoleLoggerRendersComponentAndColor(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "component.log")
	color := true
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}, Color: &color})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "dashboard").Warn("shard lookup failed", "org_id", "1", "reason", "status 404")

	content := readLog(t, logPath)
	if !strings.Contains(content, "\x1b[33mWARN\x1b[0m dashboard: shard lookup failed") {
		t.Fatalf("expected coloured component line, got %q", content)
	}
	if !strings.Contains(content, `reason="status 404"`) {
		t.Fatalf("expected quoted value, got %q", content)
	}
}

func TestConsoleLoggerBoundAttrsAndGroups(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "groups.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.With(logging.FieldRunID, "run-1").WithGroup("device").Info("reboot dispatched", "serial", "Q2AB-1111", "status", 200)

	content := readLog(t, logPath)
	if !strings.Contains(content, "INFO reboot dispatched run_id=run-1 device.serial=Q2AB-1111 device.status=200") {
		t.Fatalf("unexpected grouped line %q", content)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithNetworkID(ctx, "N_1")
	logging.WithContext(ctx, logger).Info("reboot dispatched", logging.FieldSerial, "Q2AB-1111")

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["level"] != "info" || entry["msg"] != "reboot dispatched" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
	if entry[logging.FieldRunID] != "run-1" || entry[logging.FieldNetworkID] != "N_1" || entry[logging.FieldSerial] != "Q2AB-1111" {
		t.Fatalf("expected context fields, got %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 100) {
		t.Fatal("expected nop logger to be disabled at every level")
	}
	logging.WithContext(context.Background(), nil).Error("ignored")
}
