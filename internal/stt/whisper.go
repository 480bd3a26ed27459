// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     stt
// Description: whisper.cpp CLI and HTTP server engines
// Created:     2026-09-21
// License:     MIT
// ============================================================================

package stt

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/msto63/diktat/internal/audio"
)

// WhisperConfig holds whisper.cpp CLI configuration
type WhisperConfig struct {
	// BinaryPath overrides the whisper binary lookup
	BinaryPath string

	// ModelPath is the path to the ggml model file
	ModelPath string

	// Language is the target language (e.g., "es", "de", "auto")
	Language string

	// Threads is passed as --threads when positive
	Threads int
}

// WhisperCLI implements speech-to-text using the whisper.cpp CLI
type WhisperCLI struct {
	binaryPath string
	modelPath  string
	language   string
	threads    int
	tempDir    string
}

// NewWhisperCLI creates a new Whisper CLI engine
func NewWhisperCLI(cfg WhisperConfig) (*WhisperCLI, error) {
	binaryPath := cfg.BinaryPath
	if binaryPath == "" {
		binaryPath = findWhisperBinary()
	}
	if binaryPath == "" {
		return nil, fmt.Errorf("whisper binary not found")
	}

	// Verify model exists
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("model path is required")
	}
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	tempDir, err := os.MkdirTemp("", "diktat-whisper-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	language := cfg.Language
	if language == "" {
		language = "auto"
	}

	return &WhisperCLI{
		binaryPath: binaryPath,
		modelPath:  cfg.ModelPath,
		language:   language,
		threads:    cfg.Threads,
		tempDir:    tempDir,
	}, nil
}

// findWhisperBinary finds the whisper binary
func findWhisperBinary() string {
	// PATH first, whisper-cli before the legacy name
	for _, name := range []string{"whisper-cli", "whisper"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	locations := []string{
		"/opt/homebrew/bin/whisper-cli",
		"/opt/homebrew/bin/whisper",
		"/usr/local/bin/whisper-cli",
		"/usr/local/bin/whisper",
		"/usr/bin/whisper",
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Name implements Engine
func (w *WhisperCLI) Name() string {
	return "whisper-cli"
}

// Transcribe writes the window to a temp WAV file and runs whisper on it
func (w *WhisperCLI) Transcribe(ctx context.Context, samples []float32) (string, error) {
	wavPath := filepath.Join(w.tempDir, fmt.Sprintf("audio_%d.wav", time.Now().UnixNano()))
	if err := audio.WriteWAVFile(wavPath, samples, audio.TargetSampleRate); err != nil {
		return "", fmt.Errorf("failed to write WAV file: %w", err)
	}
	defer os.Remove(wavPath)

	args := []string{
		"-m", w.modelPath,
		"-l", w.language,
		"-np", // no prints
		"-nt", // no timestamps
	}
	if w.threads > 0 {
		args = append(args, "-t", fmt.Sprint(w.threads))
	}
	args = append(args, wavPath)

	cmd := exec.CommandContext(ctx, w.binaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("whisper failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	return cleanWhisperOutput(stdout.String()), nil
}

// cleanWhisperOutput strips timestamp prefixes
// ([00:00:00.000 --> 00:00:05.000] text) and joins the lines
func cleanWhisperOutput(out string) string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") && strings.Contains(line, "-->") {
			if idx := strings.Index(line, "]"); idx != -1 {
				line = strings.TrimSpace(line[idx+1:])
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}

// Close removes the temp directory
func (w *WhisperCLI) Close() error {
	if w.tempDir != "" {
		return os.RemoveAll(w.tempDir)
	}
	return nil
}
