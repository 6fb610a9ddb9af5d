// Package logging builds the zap loggers used by the client and the server.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/omochice/socket-draughts/internal/config"
)

// New returns a sugared logger for the given settings. Logs go to stderr
// unless a file is configured.
func New(cfg config.Logging) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(level)
	logConfig.Development = false
	logConfig.OutputPaths = []string{"stderr"}
	if cfg.File != "" {
		logConfig.OutputPaths = []string{cfg.File}
	}
	logConfig.DisableCaller = !cfg.Caller
	logConfig.DisableStacktrace = true

	logConfig.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	logConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	logger, err := logConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	return logger.Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
