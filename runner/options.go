// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package runner

import (
	"time"

	"github.com/gogpu/cts/logging"
	"github.com/gogpu/cts/report"
)

// Sink receives each case result as soon as the case finishes. Sinks are
// called one at a time, in completion order.
type Sink func(report.CaseResult)

// Options configures a Runner.
type Options struct {
	// Parallelism is the number of top-level cases run at once.
	Parallelism int
	// CaseTimeout bounds one top-level case including its subcases.
	// Zero means no limit.
	CaseTimeout time.Duration
	// Debug keeps debug log entries in results.
	Debug bool
	// Clock times cases; nil means the wall clock.
	Clock logging.Clock
	// RunID names the run; empty means a random uuid.
	RunID string

	Sinks        []Sink
	Expectations []report.Expectation
}

// Option configures a Runner.
type Option func(*Options)

// WithParallelism sets how many top-level cases run at once.
func WithParallelism(n int) Option {
	return func(o *Options) { o.Parallelism = n }
}

// WithCaseTimeout sets the per-case deadline.
func WithCaseTimeout(d time.Duration) Option {
	return func(o *Options) { o.CaseTimeout = d }
}

// WithDebug keeps debug entries.
func WithDebug(debug bool) Option {
	return func(o *Options) { o.Debug = debug }
}

// WithClock replaces the clock used to time cases.
func WithClock(c logging.Clock) Option {
	return func(o *Options) { o.Clock = c }
}

// WithSink adds a result callback.
func WithSink(s Sink) Option {
	return func(o *Options) { o.Sinks = append(o.Sinks, s) }
}

// WithExpectations marks results that match an expectation's query and
// status as expected. Expected results keep only the first line of each
// log entry.
func WithExpectations(e []report.Expectation) Option {
	return func(o *Options) { o.Expectations = append(o.Expectations, e...) }
}

// WithRunID sets the run identifier.
func WithRunID(id string) Option {
	return func(o *Options) { o.RunID = id }
}
