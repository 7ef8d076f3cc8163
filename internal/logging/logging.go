// Package logging wraps zap with the small key-value surface the rest of
// corkboard uses. Every sink writes to stderr: in stdio mode stdout carries
// the wire protocol and must stay clean.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Modes accepted by New.
const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// Logger is a thin wrapper over zap's sugared logger.
type Logger struct {
	*zap.SugaredLogger
}

// New builds a logger for the given mode ("production" or "development")
// and minimum level ("debug", "info", "warn", "error"; empty means info).
func New(mode, level string) (*Logger, error) {
	var cfg zap.Config
	switch mode {
	case ModeDevelopment:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		cfg = zap.NewProductionConfig()
	}

	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("logging: parse level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	return &Logger{base.Sugar()}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

// With returns a child logger with the given key-value pairs attached.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.SugaredLogger.With(args...)}
}

func (l *Logger) Debug(msg string, kv ...any) { l.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.Errorw(msg, kv...) }
func (l *Logger) Fatal(msg string, kv ...any) { l.Fatalw(msg, kv...) }
