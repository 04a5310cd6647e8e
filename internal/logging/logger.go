// Package logging builds the zap logger used for pkgctl diagnostics.
//
// Diagnostics go to stderr and are separate from user-facing command output,
// which commands write directly to their cobra writers.
package logging

import (
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures the logger.
type Config struct {
	// Level is the minimum level: "debug", "info", "warn", or "error". Default: "warn".
	Level string
	// Format is "console" (human readable, coloured levels) or "json". Default: "console".
	Format string
	// Version is attached to every entry when set.
	Version string
}

var (
	mu       sync.RWMutex
	instance = zap.NewNop()
)

// Init replaces the process logger with one built from cfg, writing to w.
func Init(cfg Config, w io.Writer) *zap.Logger {
	l := New(cfg, w)
	mu.Lock()
	instance = l
	mu.Unlock()
	return l
}

// New builds a logger from cfg that writes to w.
func New(cfg Config, w io.Writer) *zap.Logger {
	var encoder zapcore.Encoder
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		encCfg.EncodeCaller = zapcore.ShortCallerEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(ParseLevel(cfg.Level)))
	l := zap.New(core)
	if cfg.Version != "" {
		l = l.With(zap.String("version", cfg.Version))
	}
	return l
}

// L returns the process logger. It is a no-op logger until Init is called.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// Named returns the process logger scoped to a component name.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync flushes buffered entries.
func Sync() error {
	return L().Sync()
}

// ParseLevel converts a level name to a zapcore.Level, defaulting to warn.
func ParseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// ValidLevel reports whether lvl names a level accepted in config.
func ValidLevel(lvl string) bool {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "", "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
