// Package logger provides a shared logging facade for the application,
// backed by zap. Initialize must be called once at startup; the package-level
// helpers are safe to use before that and fall back to a production logger.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  *zap.SugaredLogger
	once sync.Once
)

// Initialize sets up the global logger. When debug is true, logs are
// human-readable and include debug level; otherwise JSON at info level.
func Initialize(debug bool) {
	once.Do(func() {
		log = newLogger(debug)
	})
}

func newLogger(debug bool) *zap.SugaredLogger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Fall back to a bare logger writing to stderr
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(os.Stderr),
			zapcore.InfoLevel,
		)
		l = zap.New(core)
	}
	return l.Sugar()
}

func get() *zap.SugaredLogger {
	if log == nil {
		Initialize(false)
	}
	return log
}

// Sync flushes any buffered log entries.
func Sync() error {
	return get().Sync()
}

// Debug logs a message at debug level.
func Debug(args ...any) { get().Debug(args...) }

// Info logs a message at info level.
func Info(args ...any) { get().Info(args...) }

// Warn logs a message at warn level.
func Warn(args ...any) { get().Warn(args...) }

// Error logs a message at error level.
func Error(args ...any) { get().Error(args...) }

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...any) { get().Debugf(format, args...) }

// Infof logs a formatted message at info level.
func Infof(format string, args ...any) { get().Infof(format, args...) }

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...any) { get().Warnf(format, args...) }

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...any) { get().Errorf(format, args...) }

// Fatalf logs a formatted message and exits.
func Fatalf(format string, args ...any) { get().Fatalf(format, args...) }

// Debugw logs a message with structured key-value pairs at debug level.
func Debugw(msg string, keysAndValues ...any) { get().Debugw(msg, keysAndValues...) }

// Infow logs a message with structured key-value pairs at info level.
func Infow(msg string, keysAndValues ...any) { get().Infow(msg, keysAndValues...) }

// Warnw logs a message with structured key-value pairs at warn level.
func Warnw(msg string, keysAndValues ...any) { get().Warnw(msg, keysAndValues...) }

// Errorw logs a message with structured key-value pairs at error level.
func Errorw(msg string, keysAndValues ...any) { get().Errorw(msg, keysAndValues...) }
