package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLevel_Constants(t *testing.T) {
	if LevelDebug != 0 {
		t.Errorf("LevelDebug = %d, want 0", LevelDebug)
	}
	if LevelError != 3 {
		t.Errorf("LevelError = %d, want 3", LevelError)
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	logger := New("test-service")

	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.Name() != "test-service" {
		t.Errorf("Name() = %v, want test-service", logger.Name())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"invalid", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewWithConfig_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(LoggerConfig{
		ServiceName: "diktat",
		Level:       "debug",
		Format:      "json",
		Output:      &buf,
	})

	logger.Info("recording stopped", "samples", 96000, "mode", "deep")

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "recording stopped" {
		t.Errorf("msg = %v, want recording stopped", entry["msg"])
	}
	if entry["mode"] != "deep" {
		t.Errorf("mode = %v, want deep", entry["mode"])
	}
	if entry["logger"] != "diktat" {
		t.Errorf("logger = %v, want diktat", entry["logger"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(LoggerConfig{Level: "warn", Format: "text", Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("entries below warn should be dropped, got %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn entry missing from %q", out)
	}
}

func TestLogger_WithLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(LoggerConfig{Level: "debug", Output: &buf}).WithLevel(LevelError)

	logger.Warn("dropped")
	if buf.Len() != 0 {
		t.Errorf("WithLevel(LevelError) should drop warnings, got %q", buf.String())
	}
}

func TestLogger_OddKeyValues(t *testing.T) {
	logger := Nop()

	// Should not panic with odd number of key-values or non-string keys
	logger.Info("message", "key1", "value1", "orphan")
	logger.Info("message", 123, "value")
	logger.With("job", "abc").Named("child").Error("message")
}

func TestToFields(t *testing.T) {
	if fields := toFields(); fields != nil {
		t.Error("toFields() with no args should return nil")
	}

	fields := toFields("key1", "value1", "key2", 42, "orphan")
	if len(fields) != 4 {
		t.Fatalf("len(fields) = %d, want 4", len(fields))
	}
	if fields[0] != "key1" || fields[3] != 42 {
		t.Errorf("fields = %v", fields)
	}

	if fields := toFields(123, "value"); len(fields) != 0 {
		t.Errorf("Non-string key should be skipped, got %v fields", len(fields))
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := Nop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", "iteration", i)
	}
}
