package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "BLEGW_LOG_LEVEL"

// maskedSecret replaces credential values in log output.
const maskedSecret = "********"

// Initialize creates a new logger with the specified level.
// If level is empty, it checks BLEGW_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(level)),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	built, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = built

	return nil
}

// InitializeFromEnv initializes the logger from the BLEGW_LOG_LEVEL
// environment variable.
func InitializeFromEnv() error {
	return Initialize("")
}

// parseLevel maps a level name to a zap level. Unknown names mean info.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetLogger replaces the global logger. Passing nil restores the silent logger.
// It returns the previous logger so callers (mostly tests) can restore it.
func SetLogger(l *zap.Logger) *zap.Logger {
	prev := GetLogger()
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
	return prev
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// Named returns a child logger tagged with a component name.
func Named(component string) *zap.Logger {
	return GetLogger().Named(component)
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// LogKeyDefault records that a config key was absent and the compiled
// default was used instead.
func LogKeyDefault(key string) {
	Warn("Config key not found, using default value", zap.String("key", key))
}

// LogKeyUnchanged records that a config key was absent and the previous
// value was kept.
func LogKeyUnchanged(key string) {
	Info("Config key not found, leaving previous value unchanged", zap.String("key", key))
}

// LogUnknownValue records an unrecognized enum text and the value used instead.
func LogUnknownValue(key, got, used string) {
	Warn("Unknown config value, using fallback",
		zap.String("key", key),
		zap.String("value", got),
		zap.String("fallback", used),
	)
}

// LogStorageEvent logs a persistent store operation.
func LogStorageEvent(namespace, op, key string, err error) {
	if err != nil {
		Error("Storage operation failed",
			zap.String("namespace", namespace),
			zap.String("op", op),
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	Debug("Storage operation",
		zap.String("namespace", namespace),
		zap.String("op", op),
		zap.String("key", key),
	)
}

// LogModeChange logs a connectivity mode transition.
func LogModeChange(from, to, reason string) {
	Info("Network mode changed",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("reason", reason),
	)
}

// LogHTTPRequest logs a request to the LAN server.
func LogHTTPRequest(remoteAddr, method, path string, status int) {
	Info("HTTP request",
		zap.String("remote_addr", remoteAddr),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
	)
}

// Secret returns a field that never carries the secret itself, only
// whether it is set.
func Secret(key, value string) zap.Field {
	if value == "" {
		return zap.String(key, "")
	}
	return zap.String(key, maskedSecret)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
