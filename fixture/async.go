// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fixture

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/gogpu/cts/logging"
)

// Future is an async expectation started with Fixture.Eventually.
type Future struct {
	desc string
	done chan struct{}
	ok   atomic.Bool
	err  error
}

// Done is closed when the expectation's function has returned.
func (fu *Future) Done() <-chan struct{} { return fu.done }

// Err returns the expectation's error. It is valid after Done is closed.
func (fu *Future) Err() error { return fu.err }

func (fu *Future) completed() bool { return fu.ok.Load() }

// Eventually runs fn on its own goroutine with the case context and records
// a failure if it returns an error. A skip error records a skip. The case
// is not finished until fn returns or the case context is done; in the
// latter case the expectation fails.
func (f *Fixture) Eventually(desc string, fn func(ctx context.Context) error) *Future {
	fu := &Future{desc: desc, done: make(chan struct{})}
	if !f.state.track(fu) {
		fu.err = errors.New("fixture: case already finished")
		close(fu.done)
		return fu
	}
	go func() {
		defer close(fu.done)
		fu.err = fn(f.ctx)
		switch {
		case fu.err == nil:
			f.state.complete(fu, nil, nil)
		case logging.IsSkip(fu.err):
			f.state.complete(fu, (*logging.Recorder).Skipped, fu.err)
		default:
			f.state.complete(fu, (*logging.Recorder).Fail, f.annotate(errors.Wrap(fu.err, desc)))
		}
	}()
	return fu
}

// Wait blocks until every async expectation of the case started so far has
// completed, or the case context is done.
func (f *Fixture) Wait() {
	f.state.wait(f.ctx)
}
