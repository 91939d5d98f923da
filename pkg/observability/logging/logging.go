// Package logging wraps zap behind a small package-level API so callers do
// not carry logger handles through every constructor.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration.
type Config struct {
	// Level is one of: debug, info, warn, error, fatal
	Level string
	// Encoding is one of: json, console
	Encoding string
	// Development enables dev-friendly logging (stacktraces on error, etc.)
	Development bool
}

// InitLogger initializes a global zap logger using the provided config.
// It also redirects the standard library logger to zap.
func InitLogger(cfg Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Level)) {
	case "", "info":
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "debug":
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn", "warning":
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	case "fatal":
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.FatalLevel)
	default:
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	if strings.EqualFold(cfg.Encoding, "console") {
		zcfg.Encoding = "console"
	} else {
		zcfg.Encoding = "json"
	}

	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05")
	zcfg.EncoderConfig.MessageKey = "msg"
	zcfg.EncoderConfig.LevelKey = "level"
	zcfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}

	zap.ReplaceGlobals(logger)
	_ = zap.RedirectStdLog(logger)

	return logger, nil
}

// FromEnv overlays the logging environment variables on base. Set variables
// win over base values, so the env acts as an override for file-provided
// configuration. Supported env vars:
//
//	WHY_LOG_LEVEL       (debug|info|warn|error|fatal)
//	WHY_LOG_ENCODING    (json|console)
//	WHY_LOG_DEVELOPMENT (true|false)
func FromEnv(base Config) Config {
	if v := os.Getenv("WHY_LOG_LEVEL"); v != "" {
		base.Level = v
	}
	if v := os.Getenv("WHY_LOG_ENCODING"); v != "" {
		base.Encoding = v
	}
	if v := os.Getenv("WHY_LOG_DEVELOPMENT"); v != "" {
		base.Development = strings.EqualFold(v, "true")
	}
	return base
}

// InitLoggerFromEnv builds a logger from the environment alone, defaulting
// to info-level json output.
func InitLoggerFromEnv() (*zap.Logger, error) {
	return InitLogger(FromEnv(Config{Level: "info", Encoding: "json"}))
}

// Sugared helpers over the global logger.
func Infof(format string, args ...interface{})  { zap.S().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { zap.S().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { zap.S().Errorf(format, args...) }
func Debugf(format string, args ...interface{}) { zap.S().Debugf(format, args...) }
func Fatalf(format string, args ...interface{}) { zap.S().Fatalf(format, args...) }
