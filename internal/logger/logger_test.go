package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToFile(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "terragen.log")

	if err := InitWithFileConfig("debug", DefaultFileConfig(logPath), false); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	Info("hello from test")
	Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing message, got: %s", data)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "debug"},
		{"warn", "warn"},
		{"error", "error"},
		{"info", "info"},
		{"bogus", "info"}, // unknown defaults to info
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in).String(); got != tt.want {
			t.Errorf("parseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "filtered.log")

	if err := InitWithFileConfig("error", DefaultFileConfig(logPath), false); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	Debug("should not appear")
	Error("should appear")
	Sync()

	data, _ := os.ReadFile(logPath)
	if strings.Contains(string(data), "should not appear") {
		t.Error("debug message leaked through error level")
	}
	if !strings.Contains(string(data), "should appear") {
		t.Error("error message missing")
	}
}
