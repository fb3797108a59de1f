// Package logging provides config-driven categorized logging for notebook.
// Logs are written as JSON lines to <dir>/notebook.log because the interactive
// UI owns the terminal. Logging is controlled by logging.debug_mode - when
// false, every logger is a no-op.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup and configuration
	CategorySession  Category = "session"  // Credential gate, intake, conversation
	CategoryAPI      Category = "api"      // Backend HTTP calls
	CategoryFeedback Category = "feedback" // Audio cue playback
	CategoryUI       Category = "ui"       // TUI events
	CategoryStub     Category = "stub"     // Local stub backend
)

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	DebugMode  bool
	Level      string
	Dir        string
	Categories map[string]bool
}

const logFileName = "notebook.log"

var (
	mu      sync.RWMutex
	opts    Options
	root    = zap.NewNop()
	loggers = make(map[Category]*zap.Logger)
	file    *os.File
)

// Initialize sets up the log file. Calling it again replaces the previous
// configuration. With debug mode off it is a silent no-op.
func Initialize(o Options) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	opts = o

	if !o.DebugMode {
		return nil
	}
	if o.Dir == "" {
		return fmt.Errorf("log directory required")
	}
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(o.Dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	file = f

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), ParseLevel(o.Level))
	root = zap.New(core)

	root.Named(string(CategoryBoot)).Info("logging initialized", zap.String("dir", o.Dir))
	return nil
}

// Use installs an existing logger as the root, replacing any file logger.
// CLI subcommands use it to log to stderr; tests use it with an observer core.
func Use(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	opts = Options{DebugMode: true}
	root = l
}

// ParseLevel maps a config level string to a zap level; unknown values mean info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabledLocked(category)
}

func categoryEnabledLocked(category Category) bool {
	if !opts.DebugMode {
		return false
	}
	if opts.Categories == nil {
		return true
	}
	enabled, exists := opts.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) the logger for a category.
// Disabled categories get a no-op logger.
func Get(category Category) *zap.Logger {
	mu.RLock()
	if !categoryEnabledLocked(category) {
		mu.RUnlock()
		return zap.NewNop()
	}
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := root.Named(string(category))
	loggers[category] = l
	return l
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}

// CloseAll flushes and closes the log file and resets to no-op logging.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	opts = Options{}
}

func closeLocked() {
	_ = root.Sync()
	if file != nil {
		_ = file.Close()
		file = nil
	}
	root = zap.NewNop()
	loggers = make(map[Category]*zap.Logger)
}

// Boot logs to the boot category
func Boot(msg string, fields ...zap.Field) {
	Get(CategoryBoot).Info(msg, fields...)
}

// Session logs to the session category
func Session(msg string, fields ...zap.Field) {
	Get(CategorySession).Info(msg, fields...)
}

// SessionDebug logs debug to the session category
func SessionDebug(msg string, fields ...zap.Field) {
	Get(CategorySession).Debug(msg, fields...)
}

// API logs to the api category
func API(msg string, fields ...zap.Field) {
	Get(CategoryAPI).Info(msg, fields...)
}

// APIError logs errors to the api category
func APIError(msg string, fields ...zap.Field) {
	Get(CategoryAPI).Error(msg, fields...)
}

// UIDebug logs debug to the ui category
func UIDebug(msg string, fields ...zap.Field) {
	Get(CategoryUI).Debug(msg, fields...)
}
