// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     config
// Description: Configuration loading from TOML, YAML and environment
// Created:     2026-09-21
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	General       GeneralConfig       `toml:"general" yaml:"general"`
	Audio         AudioConfig         `toml:"audio" yaml:"audio"`
	Transcription TranscriptionConfig `toml:"transcription" yaml:"transcription"`
	Summarization SummarizationConfig `toml:"summarization" yaml:"summarization"`
	History       HistoryConfig       `toml:"history" yaml:"history"`
	Server        ServerConfig        `toml:"server" yaml:"server"`
	VAD           VADConfig           `toml:"vad" yaml:"vad"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	DataDir   string `toml:"data_dir" yaml:"data_dir"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
	Mode      string `toml:"mode" yaml:"mode"` // "deep" or "fast"
}

// AudioConfig holds capture settings
type AudioConfig struct {
	Source          string `toml:"source" yaml:"source"` // "portaudio" or "websocket"
	SampleRate      int    `toml:"sample_rate" yaml:"sample_rate"`
	FramesPerBuffer int    `toml:"frames_per_buffer" yaml:"frames_per_buffer"`
	Device          string `toml:"device" yaml:"device"`
}

// TranscriptionConfig holds speech-to-text settings
type TranscriptionConfig struct {
	DeepEngine       string   `toml:"deep_engine" yaml:"deep_engine"` // whisper-cli, whisper-http, openai, google
	FastEngine       string   `toml:"fast_engine" yaml:"fast_engine"` // empty disables fast mode
	Language         string   `toml:"language" yaml:"language"`
	ChunkLength      float64  `toml:"chunk_length_s" yaml:"chunk_length_s"`
	StrideLength     float64  `toml:"stride_length_s" yaml:"stride_length_s"`
	WhisperBinary    string   `toml:"whisper_binary" yaml:"whisper_binary"`
	WhisperModel     string   `toml:"whisper_model" yaml:"whisper_model"`
	FastWhisperModel string   `toml:"fast_whisper_model" yaml:"fast_whisper_model"`
	WhisperURL       string   `toml:"whisper_url" yaml:"whisper_url"`
	OpenAIModel      string   `toml:"openai_model" yaml:"openai_model"`
	OpenAIAPIKey     string   `toml:"openai_api_key" yaml:"openai_api_key"`
	Timeout          Duration `toml:"timeout" yaml:"timeout"`
}

// SummarizationConfig holds summarizer settings
type SummarizationConfig struct {
	Engine       string   `toml:"engine" yaml:"engine"` // ollama, openai, gemini; empty disables
	Threshold    int      `toml:"threshold" yaml:"threshold"`
	MaxLength    int      `toml:"max_length" yaml:"max_length"`
	MinLength    int      `toml:"min_length" yaml:"min_length"`
	Model        string   `toml:"model" yaml:"model"`
	OllamaURL    string   `toml:"ollama_url" yaml:"ollama_url"`
	OpenAIAPIKey string   `toml:"openai_api_key" yaml:"openai_api_key"`
	GeminiAPIKey string   `toml:"gemini_api_key" yaml:"gemini_api_key"`
	Timeout      Duration `toml:"timeout" yaml:"timeout"`
}

// HistoryConfig holds persistence settings
type HistoryConfig struct {
	Backend         string `toml:"backend" yaml:"backend"` // sqlite, mongo, file
	Path            string `toml:"path" yaml:"path"`
	Key             string `toml:"key" yaml:"key"`
	MongoURI        string `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database" yaml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection" yaml:"mongo_collection"`
}

// ServerConfig holds HTTP control surface settings
type ServerConfig struct {
	Host         string   `toml:"host" yaml:"host"`
	Port         int      `toml:"port" yaml:"port"`
	ReadTimeout  Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout" yaml:"write_timeout"`
	JWTSecret    string   `toml:"jwt_secret" yaml:"jwt_secret"`
}

// VADConfig holds speech activity annotation settings
type VADConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
	Mode    int  `toml:"mode" yaml:"mode"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.expandEnvVars()
	return cfg
}

// Load loads configuration from a TOML or YAML file
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Apply defaults
	cfg.applyDefaults()

	// Expand environment variables in sensitive fields
	cfg.expandEnvVars()

	return &cfg, nil
}

// LoadFromEnv loads .env files and then the configuration named by DIKTAT_CONFIG.
// Without DIKTAT_CONFIG the default locations are tried; if none exists the
// defaults are returned.
func LoadFromEnv() (*Config, error) {
	loadDotEnv()

	path := os.Getenv("DIKTAT_CONFIG")
	if path == "" {
		for _, p := range DefaultPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return Default(), nil
	}

	return Load(path)
}

// LoadFile loads .env files and the given configuration file, falling back to
// LoadFromEnv when path is empty
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromEnv()
	}
	loadDotEnv()
	return Load(path)
}

// DefaultPaths lists the configuration locations tried by LoadFromEnv
func DefaultPaths() []string {
	paths := []string{
		"./configs/diktat.toml",
		"./diktat.toml",
		"./diktat.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "diktat", "diktat.toml"))
	}
	return paths
}

// loadDotEnv loads ./.env if present; existing variables win
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.DataDir == "" {
		c.General.DataDir = "${HOME}/.local/share/diktat"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}
	if c.General.Mode == "" {
		c.General.Mode = "deep"
	}

	// Audio
	if c.Audio.Source == "" {
		c.Audio.Source = "portaudio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 48000
	}
	if c.Audio.FramesPerBuffer == 0 {
		c.Audio.FramesPerBuffer = 512
	}

	// Transcription
	if c.Transcription.DeepEngine == "" {
		c.Transcription.DeepEngine = "whisper-cli"
	}
	if c.Transcription.Language == "" {
		c.Transcription.Language = "es"
	}
	if c.Transcription.ChunkLength == 0 {
		c.Transcription.ChunkLength = 30
	}
	if c.Transcription.StrideLength == 0 {
		c.Transcription.StrideLength = 5
	}
	if c.Transcription.WhisperModel == "" {
		c.Transcription.WhisperModel = "${DIKTAT_DATA}/models/ggml-small.bin"
	}
	if c.Transcription.FastWhisperModel == "" {
		c.Transcription.FastWhisperModel = "${DIKTAT_DATA}/models/ggml-tiny.bin"
	}
	if c.Transcription.WhisperURL == "" {
		c.Transcription.WhisperURL = "http://localhost:8000"
	}
	if c.Transcription.OpenAIModel == "" {
		c.Transcription.OpenAIModel = "whisper-1"
	}
	if c.Transcription.OpenAIAPIKey == "" {
		c.Transcription.OpenAIAPIKey = "${OPENAI_API_KEY}"
	}
	if c.Transcription.Timeout.Duration == 0 {
		c.Transcription.Timeout.Duration = 5 * time.Minute
	}

	// Summarization
	if c.Summarization.Threshold == 0 {
		c.Summarization.Threshold = 1500
	}
	if c.Summarization.MaxLength == 0 {
		c.Summarization.MaxLength = 150
	}
	if c.Summarization.MinLength == 0 {
		c.Summarization.MinLength = 30
	}
	if c.Summarization.OllamaURL == "" {
		c.Summarization.OllamaURL = "http://localhost:11434"
	}
	if c.Summarization.Model == "" {
		switch c.Summarization.Engine {
		case "openai":
			c.Summarization.Model = "gpt-4o-mini"
		case "gemini":
			c.Summarization.Model = "gemini-2.0-flash"
		default:
			c.Summarization.Model = "mistral:7b"
		}
	}
	if c.Summarization.OpenAIAPIKey == "" {
		c.Summarization.OpenAIAPIKey = "${OPENAI_API_KEY}"
	}
	if c.Summarization.GeminiAPIKey == "" {
		c.Summarization.GeminiAPIKey = "${GEMINI_API_KEY}"
	}
	if c.Summarization.Timeout.Duration == 0 {
		c.Summarization.Timeout.Duration = 2 * time.Minute
	}

	// History
	if c.History.Backend == "" {
		c.History.Backend = "sqlite"
	}
	if c.History.Path == "" {
		if c.History.Backend == "file" {
			c.History.Path = "${DIKTAT_DATA}/history.json"
		} else {
			c.History.Path = "${DIKTAT_DATA}/history.db"
		}
	}
	if c.History.Key == "" {
		c.History.Key = "transcription_history"
	}
	if c.History.MongoURI == "" {
		c.History.MongoURI = "mongodb://localhost:27017"
	}
	if c.History.MongoDatabase == "" {
		c.History.MongoDatabase = "diktat"
	}
	if c.History.MongoCollection == "" {
		c.History.MongoCollection = "kv"
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8765
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 30 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 10 * time.Minute
	}
	if c.Server.JWTSecret == "" {
		c.Server.JWTSecret = "${DIKTAT_JWT_SECRET}"
	}

	// VAD
	if c.VAD.Mode == 0 {
		c.VAD.Mode = 2
	}
}

// expandEnvVars expands environment variables in configuration values.
// ${DIKTAT_DATA} resolves to the data directory.
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)

	expand := func(s string) string {
		return os.Expand(s, func(key string) string {
			if key == "DIKTAT_DATA" {
				return c.General.DataDir
			}
			return os.Getenv(key)
		})
	}

	c.Transcription.WhisperModel = expand(c.Transcription.WhisperModel)
	c.Transcription.FastWhisperModel = expand(c.Transcription.FastWhisperModel)
	c.Transcription.WhisperBinary = expand(c.Transcription.WhisperBinary)
	c.Transcription.OpenAIAPIKey = expand(c.Transcription.OpenAIAPIKey)
	c.Summarization.OpenAIAPIKey = expand(c.Summarization.OpenAIAPIKey)
	c.Summarization.GeminiAPIKey = expand(c.Summarization.GeminiAPIKey)
	c.History.Path = expand(c.History.Path)
	c.History.MongoURI = expand(c.History.MongoURI)
	c.Server.JWTSecret = expand(c.Server.JWTSecret)
}

// ServerAddress returns the listen address of the HTTP control surface
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
