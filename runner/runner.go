// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package runner expands registered tests into cases and runs them.
//
// Every top-level case gets its own Recorder and runs its subcases in
// order on one goroutine. Top-level cases run in parallel on a worker
// pool; results come back in registration and expansion order whatever
// the parallelism.
package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/gogpu/cts"
	"github.com/gogpu/cts/devicepool"
	"github.com/gogpu/cts/fixture"
	"github.com/gogpu/cts/internal/parallel"
	"github.com/gogpu/cts/logging"
	"github.com/gogpu/cts/params"
	"github.com/gogpu/cts/query"
	"github.com/gogpu/cts/report"
	"github.com/gogpu/cts/testgroup"
)

// Runner runs the tests of a registry.
type Runner struct {
	reg  *testgroup.Registry
	pool *devicepool.Pool
	opts Options

	sinkMu sync.Mutex
}

// New returns a Runner. pool may be nil when no test uses a device.
func New(reg *testgroup.Registry, pool *devicepool.Pool, opts ...Option) *Runner {
	o := Options{Parallelism: 1}
	for _, opt := range opts {
		opt(&o)
	}
	o.Parallelism = max(o.Parallelism, 1)
	return &Runner{reg: reg, pool: pool, opts: o}
}

// Run runs every case matched by qs; with no queries it runs everything.
// A registration error aborts the run before any case starts. When ctx is
// cancelled mid-run the cases not yet started are reported incomplete and
// the context error is returned with the partial run.
func (r *Runner) Run(ctx context.Context, qs ...query.Query) (*report.Run, error) {
	var specs []testgroup.CaseSpec
	for cs, err := range r.reg.Cases(qs...) {
		if err != nil {
			return nil, err
		}
		specs = append(specs, cs)
	}

	run := report.NewRun()
	if r.opts.RunID != "" {
		run.RunID = r.opts.RunID
	}
	log := cts.Logger()
	log.Info("runner: run started", "run", run.RunID, "cases", len(specs), "parallelism", r.opts.Parallelism)

	results := make([]report.CaseResult, len(specs))
	workers := parallel.New(r.opts.Parallelism)
	defer workers.Close()
	workers.ForEach(len(specs), func(i int) {
		if err := ctx.Err(); err != nil {
			results[i] = report.Incomplete(specs[i].ID.String(), err.Error())
			r.emit(results[i])
			return
		}
		results[i] = r.RunCase(ctx, specs[i])
	})

	run.Results = results
	run.Duration = time.Since(run.Start)
	s := run.Summary()
	log.Info("runner: run finished", "run", run.RunID, "pass", s.Pass, "fail", s.Fail,
		"skip", s.Skip, "warn", s.Warn, "duration", run.Duration)
	if err := ctx.Err(); err != nil {
		return run, errors.Wrap(err, "runner: run interrupted")
	}
	return run, nil
}

// RunCase runs one top-level case and its subcases.
func (r *Runner) RunCase(ctx context.Context, spec testgroup.CaseSpec) report.CaseResult {
	rec := logging.NewRecorder(r.recorderOptions()...)
	rec.Start()
	state := fixture.NewState(rec, r.pool)
	name := spec.ID.String()

	caseCtx, cancel := r.caseContext(ctx)
	defer cancel()

	var ran atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		runSubcases(caseCtx, state, spec, &ran)
	}()

	select {
	case <-done:
	case <-caseCtx.Done():
		select {
		case <-done:
		default:
			r.abandon(caseCtx, state, name)
		}
	}

	state.Close(caseCtx)
	res := report.CaseResult{Query: name, Result: rec.Finish(), Subcases: int(ran.Load())}
	r.applyExpectations(spec.ID, &res)
	cts.Logger().Debug("runner: case finished", "case", name, "status", res.Status, "timems", res.TimeMS)
	r.emit(res)
	return res
}

// abandon fails a case whose body is still running when its context ends.
// The body goroutine is left behind; anything it logs later is dropped.
func (r *Runner) abandon(ctx context.Context, state *fixture.State, name string) {
	cause := context.Cause(ctx)
	if errors.Is(cause, context.DeadlineExceeded) {
		state.Fail(errors.Errorf("case timed out after %v", r.opts.CaseTimeout))
	} else {
		state.Fail(errors.Wrap(cause, "case cancelled"))
	}
	cts.Logger().Warn("runner: case abandoned", "case", name, "cause", cause)
}

func (r *Runner) recorderOptions() []logging.RecorderOption {
	opts := []logging.RecorderOption{logging.WithDebug(r.opts.Debug)}
	if r.opts.Clock != nil {
		opts = append(opts, logging.WithClock(r.opts.Clock))
	}
	return opts
}

func (r *Runner) caseContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.CaseTimeout > 0 {
		return context.WithTimeout(ctx, r.opts.CaseTimeout)
	}
	return context.WithCancel(ctx)
}

func (r *Runner) emit(res report.CaseResult) {
	if len(r.opts.Sinks) == 0 {
		return
	}
	r.sinkMu.Lock()
	defer r.sinkMu.Unlock()
	for _, s := range r.opts.Sinks {
		s(res)
	}
}

func (r *Runner) applyExpectations(id query.TestCaseID, res *report.CaseResult) {
	if res.Status == logging.StatusPass {
		return
	}
	for _, e := range r.opts.Expectations {
		if e.Status != res.Status || !e.Query.Matches(id) {
			continue
		}
		res.Expected = true
		logs := make([]logging.LogEntry, len(res.Logs))
		for i, l := range res.Logs {
			logs[i] = l.FirstLine()
		}
		res.Logs = logs
		return
	}
}

// runSubcases runs the BeforeAllSubcases hook and then each subcase of
// spec in order, counting invocations in ran.
func runSubcases(ctx context.Context, state *fixture.State, spec testgroup.CaseSpec, ran *atomic.Int32) {
	t := spec.Test
	if t.IsUnimplemented() {
		state.Skipped(logging.Skip(testgroup.ErrUnimplemented.Error()))
		return
	}
	if before := t.BeforeAll(); before != nil {
		if err := call(before, fixture.New(ctx, state, spec.Params, params.Case{})); err != nil {
			state.Threw(errors.WithMessage(err, "BeforeAllSubcases"))
			return
		}
	}

	split := t.Builder().HasSubcases()
	var skipped int32
	for sub, err := range t.Builder().Subcases(spec.Params) {
		if err != nil {
			state.Threw(err)
			return
		}
		if ctx.Err() != nil {
			return
		}
		ran.Add(1)
		subParams := sub.Tail(spec.Params.Len())
		err := call(t.Body(), fixture.New(ctx, state, sub, subParams))
		switch {
		case err == nil:
		case split && logging.IsSkip(err):
			skipped++
			state.Debug(errors.WithMessagef(err, "subcase %s skipped", subParams))
		case split:
			state.Threw(errors.WithMessagef(err, "subcase %s", subParams))
		default:
			state.Threw(err)
		}
	}

	switch n := ran.Load(); {
	case n == 0:
		state.Skipped(logging.Skip("no subcases"))
	case split && skipped == n:
		state.Skipped(logging.Skipf("all %d subcases skipped", n))
	}
}

// call runs a body, turning a panic into an error. The error's stack is
// captured while the panicking frames are still on the goroutine.
func call(fn testgroup.Body, f *fixture.Fixture) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = errors.Wrap(e, "panic")
				return
			}
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return fn(f)
}
