// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     cmd
// Description: Wiring of config, engines, session and health checks
// Created:     2026-09-23
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/msto63/diktat/internal/audio"
	"github.com/msto63/diktat/internal/history"
	"github.com/msto63/diktat/internal/metrics"
	"github.com/msto63/diktat/internal/session"
	"github.com/msto63/diktat/internal/stt"
	"github.com/msto63/diktat/internal/summarize"
	"github.com/msto63/diktat/internal/vad"
	"github.com/msto63/diktat/pkg/core/cache"
	"github.com/msto63/diktat/pkg/core/config"
	"github.com/msto63/diktat/pkg/core/health"
	"github.com/msto63/diktat/pkg/core/logging"
	"github.com/msto63/diktat/pkg/core/version"
)

// app bundles everything one command needs
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	session *session.Session
	history *history.Store
	gate    *summarize.Gate
	cache   *cache.Cache[string]
	metrics *metrics.Metrics
	health  *health.Registry
	logFile *os.File
}

// appOptions selects optional parts of the app
type appOptions struct {
	// Source overrides the capture source from the config
	Source audio.Source

	// LogToFile writes logs to <data_dir>/diktat.log instead of stderr
	LogToFile bool
}

func newLogger(cfg *config.Config, out io.Writer) *logging.Logger {
	return logging.NewWithConfig(logging.LoggerConfig{
		ServiceName: "diktat",
		Level:       cfg.General.LogLevel,
		Format:      cfg.General.LogFormat,
		Output:      out,
	})
}

// newApp wires config into a ready-to-boot session
func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	a := &app{cfg: cfg, metrics: metrics.New()}

	var out io.Writer = os.Stderr
	if opts.LogToFile {
		if err := os.MkdirAll(cfg.General.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(cfg.General.DataDir, "diktat.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		out = f
	}
	a.logger = newLogger(cfg, out)

	store, err := history.Open(ctx, cfg.History)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.history = store

	a.gate = summarize.NewGate(
		cfg.Summarization.Threshold,
		summarize.Options{MaxLength: cfg.Summarization.MaxLength, MinLength: cfg.Summarization.MinLength},
		summarize.LoaderFor(cfg.Summarization),
		a.logger.Named("summarize"),
	)
	a.cache = cache.New[string](cache.DefaultConfig())
	a.gate.UseCache(a.cache)

	deep := stt.NewOrchestrator(stt.ModeDeep, stt.LoaderFor(cfg.Transcription, stt.ModeDeep), a.logger.Named("stt"))
	var fast *stt.Orchestrator
	if load := stt.LoaderFor(cfg.Transcription, stt.ModeFast); load != nil {
		fast = stt.NewOrchestrator(stt.ModeFast, load, a.logger.Named("stt"))
	}

	var analyzer vad.Analyzer
	if cfg.VAD.Enabled {
		vcfg := vad.DefaultConfig()
		vcfg.Mode = cfg.VAD.Mode
		vcfg.SampleRate = audio.TargetSampleRate
		v, err := vad.NewWebRTCVAD(vcfg)
		if err != nil {
			a.logger.Warn("Speech activity annotation disabled", "error", err)
		} else {
			analyzer = v
		}
	}

	source := opts.Source
	if source == nil {
		source = audio.NewPortAudioSource(audio.PortAudioConfig{
			SampleRate:      cfg.Audio.SampleRate,
			FramesPerBuffer: cfg.Audio.FramesPerBuffer,
			DeviceName:      cfg.Audio.Device,
			Logger:          a.logger.Named("audio"),
		})
	}

	mode, err := stt.ParseMode(cfg.General.Mode)
	if err != nil {
		mode = stt.ModeDeep
	}
	if mode == stt.ModeFast && fast == nil {
		a.logger.Warn("Fast mode has no engine configured, using deep mode")
		mode = stt.ModeDeep
	}

	a.session, err = session.New(session.Config{
		Source:  source,
		Deep:    deep,
		Fast:    fast,
		Gate:    a.gate,
		History: store,
		VAD:     analyzer,
		Metrics: a.metrics,
		Logger:  a.logger.Named("session"),
		Options: stt.Options{
			ChunkLengthSeconds:  cfg.Transcription.ChunkLength,
			StrideLengthSeconds: cfg.Transcription.StrideLength,
		},
		Mode: mode,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.health = health.NewRegistry("diktat", version.Version)
	a.health.Register(health.ReadyCheck("transcriber", a.session.Ready))
	a.health.Register(health.ReadyCheck("summarizer", a.gate.Loaded))
	a.health.Register(health.ErrorCheck("history", store.Ping))
	if cfg.Summarization.Engine == "ollama" {
		a.health.Register(health.HTTPCheck("ollama", cfg.Summarization.OllamaURL+"/api/tags", 2*time.Second))
	}

	return a, nil
}

// boot loads the engines and prints status lines to w
func (a *app) boot(ctx context.Context, w io.Writer) error {
	if w != nil {
		a.session.AddStatusListener(func(text string) {
			fmt.Fprintln(w, text)
		})
	}
	return a.session.Boot(ctx)
}

// Close releases the session, the store and the log file
func (a *app) Close() {
	if a.session != nil {
		if err := a.session.Close(); err != nil {
			a.logger.Warn("Failed to close session", "error", err)
		}
	}
	if a.history != nil {
		a.history.Close()
	}
	if a.cache != nil {
		a.cache.Close()
	}
	if a.logger != nil {
		a.logger.Sync()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}
