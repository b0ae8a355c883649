// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cts

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discard drops every record. Enabled reports false, so callers never
// build the attributes.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }

var (
	silent = slog.New(discard{})
	active atomic.Pointer[slog.Logger]
)

func init() { active.Store(silent) }

// SetLogger routes harness diagnostics to l. A nil l silences them again,
// which is also the initial state. It may be called while cases run.
//
// Levels:
//   - Debug: case lifecycle, device reservations, stream clients
//   - Info: adapter selection
//   - Warn: abandoned cases, late async expectations, uncaptured GPU errors
//
// Failure messages and stacks of a case go to its recorder, not here.
//
//	cts.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	active.Store(l)
}

// Logger returns the logger set by SetLogger. The runner, device pool,
// gpu and server packages all log through it.
func Logger() *slog.Logger {
	return active.Load()
}
