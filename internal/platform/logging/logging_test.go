package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatTag(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		message  string
		expected string
	}{
		{"plain message", "BOOT", "server started", "[BOOT] server started"},
		{"empty tag", "", "server started", "server started"},
		{"already tagged", "BOOT", "[HTTP] request handled", "[HTTP] request handled"},
		{"whitespace trimmed", " LLM ", " dispatching ", "[LLM] dispatching"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTag(tt.tag, tt.message); got != tt.expected {
				t.Errorf("FormatTag() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{Level: "info", Dir: dir, Filename: "server.log"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer logger.Close()

	logger.InfoTag("HTTP", "request %s -> %d", "/api/analyze", 200)

	data, err := os.ReadFile(filepath.Join(dir, "server.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "[HTTP] request /api/analyze -> 200") {
		t.Errorf("log file missing formatted entry, got: %s", data)
	}
}

func TestDebugSuppressedAtInfoLevel(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{Level: "info", Dir: dir, Filename: "server.log"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer logger.Close()

	logger.Debug("should not appear")

	data, _ := os.ReadFile(filepath.Join(dir, "server.log"))
	if strings.Contains(string(data), "should not appear") {
		t.Error("debug entry written despite info level")
	}
}
