// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package logging

import (
	"errors"
	"maps"
	"slices"
	"sync"
	"time"
)

// Lifecycle errors. Recorder methods panic with these; they indicate a
// harness bug, never a test failure.
var (
	ErrAlreadyStarted = errors.New("logging: recorder already started")
	ErrNotStarted     = errors.New("logging: recorder not started")
	ErrFinished       = errors.New("logging: recorder already finished")
)

// Clock supplies the current time. Tests substitute a fake.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithDebug keeps debug entries. Without it Debug calls are dropped.
func WithDebug(debug bool) RecorderOption {
	return func(r *Recorder) { r.debug = debug }
}

// WithClock replaces the wall clock used for elapsed time.
func WithClock(c Clock) RecorderOption {
	return func(r *Recorder) { r.clock = c }
}

type recorderState uint8

const (
	stateNew recorderState = iota
	stateRunning
	stateFinished
)

// Recorder tracks one executing case.
type Recorder struct {
	mu    sync.Mutex
	debug bool
	clock Clock

	state    recorderState
	start    time.Time
	status   Status
	logs     []LogEntry
	injected Patch
}

// NewRecorder returns a Recorder that has not been started.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{clock: systemClock{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins timing. A Recorder can be started only once.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != stateNew {
		panic(ErrAlreadyStarted)
	}
	r.state = stateRunning
	r.start = r.clock.Now()
}

// DebugEnabled reports whether debug entries are kept.
func (r *Recorder) DebugEnabled() bool {
	return r.debug
}

// Debug records a debug entry when debugging is enabled.
func (r *Recorder) Debug(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mustRun()
	if !r.debug {
		return
	}
	r.logs = append(r.logs, NewEntry(SeverityDebug, err))
}

// Warn records a warning and raises the status to at least warn.
func (r *Recorder) Warn(err error) {
	r.record(SeverityWarn, StatusWarn, err)
}

// Fail records a failure and raises the status to fail.
func (r *Recorder) Fail(err error) {
	r.record(SeverityFail, StatusFail, err)
}

// Skipped records a skip and raises the status to at least skip.
func (r *Recorder) Skipped(err error) {
	r.record(SeveritySkip, StatusSkip, err)
}

// Threw records an error that escaped the test body. A SkipError is
// treated as Skipped; anything else fails the case with an exception entry.
func (r *Recorder) Threw(err error) {
	if IsSkip(err) {
		r.Skipped(err)
		return
	}
	r.record(SeverityException, StatusFail, err)
}

func (r *Recorder) record(sev Severity, st Status, err error) {
	e := NewEntry(sev, err)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mustRun()
	r.logs = append(r.logs, e)
	r.status = max(r.status, st)
}

// InjectResult overrides parts of the final result. Injected fields win
// over anything the Recorder computes, including status escalation.
func (r *Recorder) InjectResult(p Patch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mustRun()
	if p.Status != nil {
		r.injected.Status = p.Status
	}
	if p.TimeMS != nil {
		r.injected.TimeMS = p.TimeMS
	}
	if p.Logs != nil {
		r.injected.Logs = slices.Clone(p.Logs)
	}
	if p.Metadata != nil {
		if r.injected.Metadata == nil {
			r.injected.Metadata = make(map[string]any, len(p.Metadata))
		}
		maps.Copy(r.injected.Metadata, p.Metadata)
	}
}

// Status returns the current status.
func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Finished reports whether Finish has been called.
func (r *Recorder) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == stateFinished
}

// Finish stops timing and returns the result. The result does not share
// memory with the Recorder. Elapsed time is rounded up
// to whole microseconds and reported in milliseconds.
func (r *Recorder) Finish() Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mustRun()
	r.state = stateFinished

	elapsed := r.clock.Now().Sub(r.start)
	us := (elapsed + time.Microsecond - 1) / time.Microsecond
	res := Result{
		Status: r.status,
		TimeMS: float64(us) / 1000,
		Logs:   slices.Clone(r.logs),
	}
	if r.injected.Status != nil {
		res.Status = *r.injected.Status
	}
	if r.injected.TimeMS != nil {
		res.TimeMS = *r.injected.TimeMS
	}
	if r.injected.Logs != nil {
		res.Logs = slices.Clone(r.injected.Logs)
	}
	res.Metadata = maps.Clone(r.injected.Metadata)
	return res
}

func (r *Recorder) mustRun() {
	switch r.state {
	case stateNew:
		panic(ErrNotStarted)
	case stateFinished:
		panic(ErrFinished)
	}
}
