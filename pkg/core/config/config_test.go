package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"hours", "2h", 2 * time.Hour, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"seconds", 30 * time.Second, "30s"},
		{"minutes", 5 * time.Minute, "5m0s"},
		{"hours", 2 * time.Hour, "2h0m0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Duration{tt.duration}
			result, err := d.MarshalText()

			if err != nil {
				t.Errorf("MarshalText() error = %v", err)
				return
			}

			if string(result) != tt.expected {
				t.Errorf("MarshalText() = %v, want %v", string(result), tt.expected)
			}
		})
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	var v struct {
		Timeout Duration `yaml:"timeout"`
	}
	if err := yaml.Unmarshal([]byte("timeout: 90s\n"), &v); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if v.Timeout.Duration != 90*time.Second {
		t.Errorf("Timeout = %v, want 1m30s", v.Timeout.Duration)
	}
}

func TestConfig_applyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	// General defaults
	if cfg.General.LogLevel != "info" {
		t.Errorf("General.LogLevel = %v, want info", cfg.General.LogLevel)
	}
	if cfg.General.Mode != "deep" {
		t.Errorf("General.Mode = %v, want deep", cfg.General.Mode)
	}

	// Audio defaults
	if cfg.Audio.SampleRate != 48000 {
		t.Errorf("Audio.SampleRate = %v, want 48000", cfg.Audio.SampleRate)
	}

	// Transcription defaults
	if cfg.Transcription.ChunkLength != 30 {
		t.Errorf("Transcription.ChunkLength = %v, want 30", cfg.Transcription.ChunkLength)
	}
	if cfg.Transcription.StrideLength != 5 {
		t.Errorf("Transcription.StrideLength = %v, want 5", cfg.Transcription.StrideLength)
	}
	if cfg.Transcription.DeepEngine != "whisper-cli" {
		t.Errorf("Transcription.DeepEngine = %v, want whisper-cli", cfg.Transcription.DeepEngine)
	}
	if cfg.Transcription.FastEngine != "" {
		t.Errorf("Transcription.FastEngine = %v, want empty", cfg.Transcription.FastEngine)
	}

	// Summarization defaults
	if cfg.Summarization.Threshold != 1500 {
		t.Errorf("Summarization.Threshold = %v, want 1500", cfg.Summarization.Threshold)
	}
	if cfg.Summarization.MaxLength != 150 {
		t.Errorf("Summarization.MaxLength = %v, want 150", cfg.Summarization.MaxLength)
	}
	if cfg.Summarization.MinLength != 30 {
		t.Errorf("Summarization.MinLength = %v, want 30", cfg.Summarization.MinLength)
	}
	if cfg.Summarization.Model != "mistral:7b" {
		t.Errorf("Summarization.Model = %v, want mistral:7b", cfg.Summarization.Model)
	}

	// History defaults
	if cfg.History.Backend != "sqlite" {
		t.Errorf("History.Backend = %v, want sqlite", cfg.History.Backend)
	}
	if cfg.History.Key != "transcription_history" {
		t.Errorf("History.Key = %v, want transcription_history", cfg.History.Key)
	}

	// Server defaults
	if cfg.Server.Port != 8765 {
		t.Errorf("Server.Port = %v, want 8765", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout.Duration != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout.Duration)
	}
}

func TestConfig_modelDefaultsPerEngine(t *testing.T) {
	tests := []struct {
		engine   string
		expected string
	}{
		{"ollama", "mistral:7b"},
		{"openai", "gpt-4o-mini"},
		{"gemini", "gemini-2.0-flash"},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			cfg := &Config{Summarization: SummarizationConfig{Engine: tt.engine}}
			cfg.applyDefaults()
			if cfg.Summarization.Model != tt.expected {
				t.Errorf("Summarization.Model = %v, want %v", cfg.Summarization.Model, tt.expected)
			}
		})
	}
}

func TestConfig_ServerAddress(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if got := cfg.ServerAddress(); got != "127.0.0.1:8765" {
		t.Errorf("ServerAddress() = %v, want 127.0.0.1:8765", got)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("Load() expected error for non-existent file")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	// Create temp config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "diktat.toml")

	configContent := `
[general]
data_dir = "/var/lib/diktat"
mode = "fast"

[transcription]
fast_engine = "whisper-cli"
timeout = "45s"

[server]
port = 9999
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.Mode != "fast" {
		t.Errorf("General.Mode = %v, want fast", cfg.General.Mode)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %v, want 9999", cfg.Server.Port)
	}
	if cfg.Transcription.Timeout.Duration != 45*time.Second {
		t.Errorf("Transcription.Timeout = %v, want 45s", cfg.Transcription.Timeout.Duration)
	}
	if cfg.History.Path != "/var/lib/diktat/history.db" {
		t.Errorf("History.Path = %v, want /var/lib/diktat/history.db", cfg.History.Path)
	}

	// Check defaults were applied for missing values
	if cfg.Summarization.Threshold != 1500 {
		t.Errorf("Summarization.Threshold = %v, want 1500 (default)", cfg.Summarization.Threshold)
	}
}

func TestLoad_YAMLConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "diktat.yaml")

	configContent := `
summarization:
  engine: gemini
  threshold: 2000
history:
  backend: file
  path: /tmp/h.json
server:
  write_timeout: 2m
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Summarization.Engine != "gemini" {
		t.Errorf("Summarization.Engine = %v, want gemini", cfg.Summarization.Engine)
	}
	if cfg.Summarization.Threshold != 2000 {
		t.Errorf("Summarization.Threshold = %v, want 2000", cfg.Summarization.Threshold)
	}
	if cfg.Summarization.Model != "gemini-2.0-flash" {
		t.Errorf("Summarization.Model = %v, want gemini-2.0-flash", cfg.Summarization.Model)
	}
	if cfg.History.Backend != "file" {
		t.Errorf("History.Backend = %v, want file", cfg.History.Backend)
	}
	if cfg.Server.WriteTimeout.Duration != 2*time.Minute {
		t.Errorf("Server.WriteTimeout = %v, want 2m", cfg.Server.WriteTimeout.Duration)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "broken.toml")
	if err := os.WriteFile(configPath, []byte("[general\nmode = "), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected error for malformed file")
	}
}

func TestConfig_expandEnvVars(t *testing.T) {
	t.Setenv("TEST_API_KEY", "secret-key-123")

	cfg := &Config{
		General: GeneralConfig{DataDir: "/data"},
		Transcription: TranscriptionConfig{
			OpenAIAPIKey: "$TEST_API_KEY",
			WhisperModel: "${DIKTAT_DATA}/models/small.bin",
		},
	}

	cfg.expandEnvVars()

	if cfg.Transcription.OpenAIAPIKey != "secret-key-123" {
		t.Errorf("OpenAIAPIKey = %v, want secret-key-123", cfg.Transcription.OpenAIAPIKey)
	}
	if cfg.Transcription.WhisperModel != "/data/models/small.bin" {
		t.Errorf("WhisperModel = %v, want /data/models/small.bin", cfg.Transcription.WhisperModel)
	}
}

func TestLoadFromEnv_NoConfigFound(t *testing.T) {
	t.Setenv("DIKTAT_CONFIG", "")
	t.Setenv("HOME", t.TempDir())

	// Change to a temp directory without config files
	originalWd, _ := os.Getwd()
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	defer os.Chdir(originalWd)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Summarization.Threshold != 1500 {
		t.Errorf("Summarization.Threshold = %v, want 1500", cfg.Summarization.Threshold)
	}
}

func TestLoadFromEnv_DotEnv(t *testing.T) {
	t.Setenv("DIKTAT_CONFIG", "")
	t.Setenv("HOME", t.TempDir())
	os.Unsetenv("DIKTAT_TEST_SECRET")
	defer os.Unsetenv("DIKTAT_TEST_SECRET")

	originalWd, _ := os.Getwd()
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	defer os.Chdir(originalWd)

	if err := os.WriteFile(".env", []byte("DIKTAT_TEST_SECRET=from-dotenv\n"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	configContent := "[server]\njwt_secret = \"${DIKTAT_TEST_SECRET}\"\n"
	if err := os.WriteFile("diktat.toml", []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Server.JWTSecret != "from-dotenv" {
		t.Errorf("Server.JWTSecret = %v, want from-dotenv", cfg.Server.JWTSecret)
	}
}
