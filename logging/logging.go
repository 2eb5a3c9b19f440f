// Package logging provides configurable zap logger creation for figaf pipelines.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Style selects the log output format.
type Style string

const (
	StyleTerminal Style = "terminal"
	StyleJson     Style = "json"
	StyleNoop     Style = "noop"
)

// Config controls logger construction.
type Config struct {
	// Style is the output format: terminal, json, or noop.
	Style Style

	// Level is a zap level name: debug, info, warn, error.
	// Empty defaults to info.
	Level string
}

// NewLogger creates a zap logger based on the Config settings.
// If config is nil or has empty values, defaults to terminal style with info level.
func NewLogger(c *Config) (*zap.Logger, error) {
	loggingStyle := StyleTerminal
	logLevel := zapcore.InfoLevel

	if c != nil {
		if c.Style != "" {
			loggingStyle = c.Style
		}
		if c.Level != "" {
			lvl, err := zapcore.ParseLevel(c.Level)
			if err != nil {
				return nil, fmt.Errorf("parsing log level %q: %w", c.Level, err)
			}
			logLevel = lvl
		}
	}

	switch loggingStyle {
	case StyleNoop:
		return zap.NewNop(), nil
	case StyleJson:
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(logLevel)
		logger, err := cfg.Build(
			zap.AddCaller(),
			zap.AddStacktrace(zap.ErrorLevel),
		)
		if err != nil {
			return nil, fmt.Errorf("building json logger: %w", err)
		}
		return logger, nil
	case StyleTerminal:
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(logLevel)
		logger, err := cfg.Build(
			zap.AddCaller(),
			zap.AddStacktrace(zap.ErrorLevel),
		)
		if err != nil {
			return nil, fmt.Errorf("building terminal logger: %w", err)
		}
		return logger, nil
	default:
		return nil, fmt.Errorf("invalid logging style %q: must be one of: terminal, json, noop", loggingStyle)
	}
}
