// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fixture

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/gogpu/cts"
	"github.com/gogpu/cts/devicepool"
	"github.com/gogpu/cts/gpu"
	"github.com/gogpu/cts/logging"
)

// ErrCaseFinished is returned by Fixture.Device after the runner has
// closed the case, typically from a body abandoned on timeout.
var ErrCaseFinished = errors.New("fixture: case finished")

// State is shared by every invocation belonging to one top-level case: the
// BeforeAllSubcases hook and each subcase. It owns the case's Recorder, its
// device reservation and its outstanding async expectations.
//
// The runner creates a State per top-level case and must call Close before
// finishing the Recorder.
type State struct {
	rec  *logging.Recorder
	pool *devicepool.Pool

	mu      sync.Mutex
	closed  bool
	req     gpu.Requirements
	device  *gpu.Device
	devErr  error
	pending []*Future
}

// NewState returns the shared state for one top-level case. The Recorder
// must already be started. pool may be nil for suites that never call
// Fixture.Device.
func NewState(rec *logging.Recorder, pool *devicepool.Pool) *State {
	return &State{rec: rec, pool: pool}
}

// Recorder returns the case's Recorder.
func (s *State) Recorder() *logging.Recorder { return s.rec }

// log hands err to the Recorder unless the case has already been closed.
// Late entries are dropped with a warning rather than panicking in a
// goroutine the runner has abandoned.
func (s *State) log(fn func(*logging.Recorder, error), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		cts.Logger().Warn("fixture: log entry after case finished", "error", err)
		return
	}
	fn(s.rec, err)
}

func (s *State) debugEnabled() bool { return s.rec.DebugEnabled() }

// selectDevice widens the requirements for the device not yet reserved.
func (s *State) selectDevice(req gpu.Requirements) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device != nil || s.devErr != nil {
		return errors.New("fixture: SelectDevice after the device was acquired")
	}
	s.req = s.req.Union(req)
	return nil
}

// acquire reserves the case's device on first use. Later calls return the
// same device, or the same error. Once the case is closed nothing is
// reserved, so an abandoned body cannot hold a device the runner never
// releases.
func (s *State) acquire(ctx context.Context) (*gpu.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrCaseFinished
	}
	if s.device != nil || s.devErr != nil {
		return s.device, s.devErr
	}
	if s.pool == nil {
		s.devErr = errors.New("fixture: no device pool configured")
		return nil, s.devErr
	}
	d, err := s.pool.Reserve(ctx, s.req)
	switch {
	case errors.Is(err, devicepool.ErrUnsupported):
		s.devErr = logging.Skipf("device requirements not supported: %s", s.req)
	case err != nil:
		s.devErr = errors.Wrap(err, "fixture: reserve device")
	default:
		s.device = d
		cts.Logger().Debug("fixture: device reserved", "device", d.Label(), "features", s.req.String())
	}
	return s.device, s.devErr
}

// track registers an async expectation with the case.
func (s *State) track(fu *Future) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.pending = append(s.pending, fu)
	return true
}

// complete marks fu finished and records its outcome, if any, in one step
// so that Close never sees a finished expectation without its entry.
func (s *State) complete(fu *Future, fn func(*logging.Recorder, error), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fu.ok.Store(true)
	if fn == nil {
		return
	}
	if s.closed {
		cts.Logger().Warn("fixture: async expectation finished after case", "expectation", fu.desc, "error", err)
		return
	}
	fn(s.rec, err)
}

// wait blocks until every async expectation started so far, including ones
// started while waiting, has completed or ctx is done.
func (s *State) wait(ctx context.Context) {
	for i := 0; ; i++ {
		s.mu.Lock()
		if i >= len(s.pending) {
			s.mu.Unlock()
			return
		}
		fu := s.pending[i]
		s.mu.Unlock()
		select {
		case <-fu.done:
		case <-ctx.Done():
			return
		}
	}
}

// Close joins outstanding async expectations, checks the device for errors
// no scope captured, and releases the device back to the pool. Expectations
// still running when ctx is done are recorded as failures. After Close no
// further entries reach the Recorder, which the caller may then finish.
func (s *State) Close(ctx context.Context) {
	s.wait(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, fu := range s.pending {
		if !fu.completed() {
			s.rec.Fail(errors.Errorf("async expectation did not complete: %s", fu.desc))
		}
	}
	s.pending = nil
	if s.device != nil {
		for _, e := range s.device.UncapturedErrors() {
			s.rec.Fail(errors.Wrap(e, "uncaptured GPU error"))
		}
		s.pool.Release(s.device)
		s.device = nil
	}
	s.closed = true
}

// Threw records an error that escaped a test body or hook.
func (s *State) Threw(err error) { s.log((*logging.Recorder).Threw, err) }

// Skipped records a skip for the whole case.
func (s *State) Skipped(err error) { s.log((*logging.Recorder).Skipped, err) }

// Fail records a case-level failure, such as a timeout.
func (s *State) Fail(err error) { s.log((*logging.Recorder).Fail, err) }

// Debug records a debug entry.
func (s *State) Debug(err error) { s.log((*logging.Recorder).Debug, err) }
