// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package fixture provides the handle passed to test bodies.
//
// A Fixture is created for every subcase invocation. Subcases of the same
// top-level case share a State: one Recorder, one lazily reserved device
// and one set of async expectations. Failures are recorded, not returned;
// the body keeps running after an expectation fails. To skip, return the
// error from logging.Skip or SkipIf.
package fixture

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/gogpu/cts/gpu"
	"github.com/gogpu/cts/logging"
	"github.com/gogpu/cts/params"
)

// Fixture is the per-invocation handle of a test body.
type Fixture struct {
	ctx     context.Context
	state   *State
	params  params.Case
	subcase params.Case
	prefix  string
}

// New returns the fixture for one invocation. full is the merged top-level
// and subcase record; subcase holds only the subcase keys and is used to
// prefix log entries. Pass an empty Case for BeforeAllSubcases hooks.
func New(ctx context.Context, s *State, full, subcase params.Case) *Fixture {
	f := &Fixture{ctx: ctx, state: s, params: full, subcase: subcase}
	if subcase.Len() > 0 {
		f.prefix = "subcase " + subcase.String()
	}
	return f
}

// Params returns the full parameter record of this invocation.
func (f *Fixture) Params() params.Case { return f.params }

// Subcase returns only the subcase parameters.
func (f *Fixture) Subcase() params.Case { return f.subcase }

// Context is cancelled when the case times out or the run is cancelled.
func (f *Fixture) Context() context.Context { return f.ctx }

// annotate prefixes err with the subcase params, keeping its stack.
func (f *Fixture) annotate(err error) error {
	if f.prefix == "" {
		return err
	}
	return errors.WithMessage(err, f.prefix)
}

// Debug records a debug entry. The message is not formatted when the
// Recorder drops debug entries.
func (f *Fixture) Debug(format string, args ...any) {
	if !f.state.debugEnabled() {
		return
	}
	f.state.log((*logging.Recorder).Debug, f.annotate(errors.Errorf(format, args...)))
}

// Warn records a warning.
func (f *Fixture) Warn(format string, args ...any) {
	f.state.log((*logging.Recorder).Warn, f.annotate(errors.Errorf(format, args...)))
}

// Fail records a failure. The body continues.
func (f *Fixture) Fail(format string, args ...any) {
	f.state.log((*logging.Recorder).Fail, f.annotate(errors.Errorf(format, args...)))
}

// Expect records a failure when cond is false and reports cond.
func (f *Fixture) Expect(cond bool, format string, args ...any) bool {
	if !cond {
		f.state.log((*logging.Recorder).Fail, f.annotate(errors.Errorf(format, args...)))
	}
	return cond
}

// ExpectOK records a failure when err is non-nil and reports err == nil.
func (f *Fixture) ExpectOK(err error) bool {
	if err != nil {
		f.state.log((*logging.Recorder).Fail, f.annotate(errors.Wrap(err, "unexpected error")))
		return false
	}
	return true
}

// ShouldReject records a failure when err is nil; an error is expected.
func (f *Fixture) ShouldReject(err error) bool {
	if err == nil {
		f.state.log((*logging.Recorder).Fail, f.annotate(errors.New("expected an error, got none")))
		return false
	}
	f.Debug("rejected as expected: %v", err)
	return true
}

// SkipIf returns a skip error when cond holds, nil otherwise. The result is
// meant to be returned from the body:
//
//	if err := t.SkipIf(!ok, "format %s not supported", format); err != nil {
//		return err
//	}
func (f *Fixture) SkipIf(cond bool, format string, args ...any) error {
	if !cond {
		return nil
	}
	return logging.Skip(fmt.Sprintf(format, args...))
}

// SelectDevice adds requirements for the device of this case. It must be
// called before the first Device call, typically from a BeforeAllSubcases
// hook.
func (f *Fixture) SelectDevice(req gpu.Requirements) error {
	return f.state.selectDevice(req)
}

// Device returns the device of this case, reserving it on first use. All
// subcases share it; the runner releases it when the case ends. When the
// pool cannot satisfy the requirements the error is a skip, so bodies can
// return it unchanged.
func (f *Fixture) Device() (*gpu.Device, error) {
	return f.state.acquire(f.ctx)
}

// ExpectValidationError runs fn inside a validation error scope on the
// case's device and records a failure unless a validation error was raised
// exactly when shouldError is true.
func (f *Fixture) ExpectValidationError(shouldError bool, fn func()) {
	dev, err := f.Device()
	if logging.IsSkip(err) {
		f.state.log((*logging.Recorder).Skipped, err)
		return
	}
	if err != nil {
		f.ExpectOK(err)
		return
	}
	if err := dev.PushErrorScope(gpu.ErrorFilterValidation); err != nil {
		f.ExpectOK(err)
		return
	}
	fn()
	gpuErr, err := dev.PopErrorScope()
	switch {
	case err != nil:
		f.ExpectOK(err)
	case shouldError && gpuErr == nil:
		f.Fail("expected a validation error")
	case !shouldError && gpuErr != nil:
		f.Fail("unexpected validation error: %v", gpuErr)
	case gpuErr != nil:
		f.Debug("got expected validation error: %v", gpuErr)
	}
}
