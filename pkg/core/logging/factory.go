// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     logging
// Description: Factory functions for zap-backed loggers
// Created:     2026-09-21
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (debug, info, warn, error)
	Level string

	// Output format
	Format string // "json" or "text" (default: json)

	// Output writer (default: stderr)
	Output io.Writer

	// Additional outputs (besides Output)
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "json",
	}
}

// NewLogger creates a zap logger from the configuration
func NewLogger(cfg LoggerConfig) *zap.Logger {
	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}
	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "text" {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(output), parseLevel(cfg.Level))
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	if cfg.ServiceName != "" {
		logger = logger.Named(cfg.ServiceName)
	}
	return logger
}

// NewSimpleLogger creates a logger with the default configuration
func NewSimpleLogger(serviceName string) *zap.Logger {
	return NewLogger(DefaultLoggerConfig(serviceName))
}

// parseLevel converts a string level to a zap level
func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug", "trace":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger is the key/value logging facade used throughout the code base
type Logger struct {
	sugar *zap.SugaredLogger
	base  *zap.Logger
	name  string
}

// New creates a new logger with default configuration
func New(name string) *Logger {
	return Wrap(NewSimpleLogger(name), name)
}

// NewWithConfig creates a new logger from a configuration
func NewWithConfig(cfg LoggerConfig) *Logger {
	return Wrap(NewLogger(cfg), cfg.ServiceName)
}

// Wrap adapts an existing zap logger
func Wrap(l *zap.Logger, name string) *Logger {
	return &Logger{sugar: l.Sugar(), base: l, name: name}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return Wrap(zap.NewNop(), "nop")
}

// Name returns the logger name
func (l *Logger) Name() string {
	return l.name
}

// Zap returns the underlying zap logger
func (l *Logger) Zap() *zap.Logger {
	return l.base
}

// WithLevel returns a new logger that only emits entries at or above level
func (l *Logger) WithLevel(level Level) *Logger {
	leveled := l.base.WithOptions(zap.IncreaseLevel(level.zapLevel()))
	return &Logger{sugar: leveled.Sugar(), base: leveled, name: l.name}
}

// With returns a child logger carrying the given key-value pairs
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	child := l.sugar.With(toFields(keysAndValues...)...)
	return &Logger{sugar: child, base: child.Desugar(), name: l.name}
}

// Named returns a child logger with a sub-name
func (l *Logger) Named(name string) *Logger {
	child := l.base.Named(name)
	return &Logger{sugar: child.Sugar(), base: child, name: l.name + "." + name}
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, toFields(keysAndValues...)...)
}

// Info logs an info message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, toFields(keysAndValues...)...)
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, toFields(keysAndValues...)...)
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, toFields(keysAndValues...)...)
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.base.Sync()
}

// toFields drops pairs whose key is not a string and a trailing orphan value
func toFields(keysAndValues ...interface{}) []interface{} {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make([]interface{}, 0, len(keysAndValues))
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, key, keysAndValues[i+1])
	}
	return fields
}
