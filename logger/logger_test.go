package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	if err := InitLogger(Options{File: path, Level: "info"}); err != nil {
		t.Fatalf("InitLogger failed: %v", err)
	}
	Log.Infow("hello", "key", "value")
	Log.Debugw("not written at info level")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("Expected log line, got %q", data)
	}
	if strings.Contains(string(data), "not written") {
		t.Errorf("Debug line should be filtered, got %q", data)
	}
}

func TestInitLoggerBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "test.log")
	if err := InitLogger(Options{File: path}); err == nil {
		t.Error("Expected error for unwritable log path")
	}
}
