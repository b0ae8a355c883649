// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"log/slog"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gogpu/cts/config"
)

// newLogger builds the zap logger selected by cfg.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if strings.EqualFold(cfg.LogFormat, "console") {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		// slog.LevelDebug reaches zapr as zap level -4, below zap.DebugLevel.
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.Level(slog.LevelDebug))
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return zapCfg.Build()
}

// slogFor bridges a zap logger to the slog logger the library packages use.
func slogFor(l *zap.Logger) *slog.Logger {
	return slog.New(logr.ToSlogHandler(zapr.NewLogger(l)))
}
