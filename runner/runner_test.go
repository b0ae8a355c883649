// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package runner_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/cts/devicepool"
	"github.com/gogpu/cts/fixture"
	"github.com/gogpu/cts/logging"
	"github.com/gogpu/cts/params"
	"github.com/gogpu/cts/query"
	"github.com/gogpu/cts/report"
	"github.com/gogpu/cts/runner"
	"github.com/gogpu/cts/testgroup"
)

// oneTest registers a single test s:f:t and returns its registry.
func oneTest(b params.Builder, body testgroup.Body) *testgroup.Registry {
	reg := testgroup.NewRegistry()
	reg.Group("s", "f").Test("t").Params(b).Fn(body)
	return reg
}

func runAll(t *testing.T, r *runner.Runner) []report.CaseResult {
	t.Helper()
	run, err := r.Run(context.Background())
	require.NoError(t, err)
	return run.Results
}

func messages(res report.CaseResult) []string {
	var out []string
	for _, e := range res.Logs {
		out = append(out, e.Severity.String()+": "+e.Message)
	}
	return out
}

// stepClock advances by a fixed step on every reading.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// ---------------------------------------------------------------------------
// Expansion and ordering
// ---------------------------------------------------------------------------

func TestRunNestsSubcases(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	b := params.New().Combine("x", 1, 2).BeginSubcases().Combine("y", "a", "b")
	reg := oneTest(b, func(f *fixture.Fixture) error {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, f.Params().String()+" | "+f.Subcase().String())
		return nil
	})

	results := runAll(t, runner.New(reg, nil))

	assert.Equal(t, []string{
		`x=1;y="a" | y="a"`,
		`x=1;y="b" | y="b"`,
		`x=2;y="a" | y="a"`,
		`x=2;y="b" | y="b"`,
	}, calls)
	require.Len(t, results, 2)
	for i, want := range []string{"s:f:t:x=1", "s:f:t:x=2"} {
		assert.Equal(t, want, results[i].Query)
		assert.Equal(t, logging.StatusPass, results[i].Status)
		assert.Equal(t, 2, results[i].Subcases)
	}
}

func TestResultOrderIndependentOfParallelism(t *testing.T) {
	values := make([]any, 40)
	for i := range values {
		values[i] = i
	}
	reg := oneTest(params.New().Combine("i", values...), func(*fixture.Fixture) error {
		time.Sleep(time.Duration(rand.IntN(500)) * time.Microsecond)
		return nil
	})

	sequential := runAll(t, runner.New(reg, nil))
	parallel := runAll(t, runner.New(reg, nil, runner.WithParallelism(8)))
	require.Len(t, parallel, 40)
	for i := range sequential {
		assert.Equal(t, sequential[i].Query, parallel[i].Query)
	}
}

func TestRunQueries(t *testing.T) {
	reg := testgroup.NewRegistry()
	g := reg.Group("s", "f")
	g.Test("a").Params(params.New().Combine("x", 1, 2)).Fn(func(*fixture.Fixture) error { return nil })
	g.Test("b").Fn(func(*fixture.Fixture) error { return nil })

	run, err := runner.New(reg, nil).Run(context.Background(), query.MustParse("s:f:a:x=2"), query.MustParse("s:f:b:*"))
	require.NoError(t, err)
	var got []string
	for _, r := range run.Results {
		got = append(got, r.Query)
	}
	assert.Equal(t, []string{"s:f:a:x=2", "s:f:b:"}, got)
	assert.NotEmpty(t, run.RunID)
}

// ---------------------------------------------------------------------------
// Outcomes
// ---------------------------------------------------------------------------

func TestOutcomes(t *testing.T) {
	split := params.New().Combine("x", 1).BeginSubcases().Combine("y", "a", "b")
	tests := []struct {
		name   string
		b      params.Builder
		body   testgroup.Body
		status logging.Status
		logs   []string
	}{
		{
			name: "fail in one subcase",
			b:    split,
			body: func(f *fixture.Fixture) error {
				f.Expect(params.Value[string](f.Params(), "y") == "a", "y is %v", f.Params().Get("y"))
				return nil
			},
			status: logging.StatusFail,
			logs:   []string{`fail: subcase y="b": y is b`},
		},
		{
			name:   "returned error",
			b:      split,
			body:   func(*fixture.Fixture) error { return errors.New("broken") },
			status: logging.StatusFail,
			logs:   []string{`exception: subcase y="a": broken`, `exception: subcase y="b": broken`},
		},
		{
			name:   "panic",
			b:      params.New(),
			body:   func(*fixture.Fixture) error { panic("boom") },
			status: logging.StatusFail,
			logs:   []string{"exception: panic: boom"},
		},
		{
			name:   "warning",
			b:      params.New(),
			body:   func(f *fixture.Fixture) error { f.Warn("slow"); return nil },
			status: logging.StatusWarn,
			logs:   []string{"warn: slow"},
		},
		{
			name:   "skip without subcases",
			b:      params.New().Combine("x", 1),
			body:   func(f *fixture.Fixture) error { return f.SkipIf(true, "not supported") },
			status: logging.StatusSkip,
			logs:   []string{"skip: not supported"},
		},
		{
			name:   "all subcases skipped",
			b:      split,
			body:   func(*fixture.Fixture) error { return logging.Skip("nope") },
			status: logging.StatusSkip,
			logs:   []string{"skip: all 2 subcases skipped"},
		},
		{
			name: "some subcases skipped",
			b:    split,
			body: func(f *fixture.Fixture) error {
				return f.SkipIf(f.Subcase().Get("y") == "a", "nope")
			},
			status: logging.StatusPass,
		},
		{
			name:   "no subcases",
			b:      split.Filter(func(c params.Case) bool { return c.Get("y") == "c" }),
			body:   func(*fixture.Fixture) error { return nil },
			status: logging.StatusSkip,
			logs:   []string{"skip: no subcases"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := runAll(t, runner.New(oneTest(tt.b, tt.body), nil))
			require.Len(t, results, 1)
			assert.Equal(t, tt.status, results[0].Status)
			assert.Equal(t, tt.logs, messages(results[0]))
		})
	}
}

func TestPanicKeepsStack(t *testing.T) {
	results := runAll(t, runner.New(oneTest(params.New(), func(*fixture.Fixture) error {
		var m map[string]int
		m["x"] = 1
		return nil
	}), nil))
	require.Len(t, results, 1)
	e := results[0].Logs[0]
	assert.Equal(t, logging.SeverityException, e.Severity)
	assert.True(t, strings.HasPrefix(e.Message, "panic: assignment to entry in nil map"), e.Message)
	assert.Contains(t, e.Stack, "runner_test.go")
	assert.NotContains(t, e.Stack, "runtime/panic.go")
	assert.NotContains(t, e.Stack, "cts/params.")
	assert.NotContains(t, e.Stack, "cts/testgroup.")
}

func TestSubcaseSkipsAreDebugEntries(t *testing.T) {
	split := params.New().BeginSubcases().Combine("y", "a", "b")
	reg := oneTest(split, func(f *fixture.Fixture) error {
		return f.SkipIf(f.Subcase().Get("y") == "b", "no b")
	})
	results := runAll(t, runner.New(reg, nil, runner.WithDebug(true)))
	assert.Equal(t, logging.StatusPass, results[0].Status)
	assert.Equal(t, []string{`debug: subcase y="b" skipped: no b`}, messages(results[0]))
}

func TestUnimplemented(t *testing.T) {
	reg := testgroup.NewRegistry()
	reg.Group("s", "f").Test("todo").Unimplemented()
	results := runAll(t, runner.New(reg, nil))
	require.Len(t, results, 1)
	assert.Equal(t, logging.StatusSkip, results[0].Status)
	assert.Equal(t, 0, results[0].Subcases)
}

func TestBeforeAllSubcases(t *testing.T) {
	reg := testgroup.NewRegistry()
	var bodies int
	reg.Group("s", "f").Test("t").
		Params(params.New().Combine("x", 1, 2).BeginSubcases().Combine("y", 1, 2)).
		BeforeAllSubcases(func(f *fixture.Fixture) error {
			assert.Equal(t, 0, f.Subcase().Len())
			return f.SkipIf(f.Params().Get("x") == 2, "x=2 unsupported")
		}).
		Fn(func(*fixture.Fixture) error {
			bodies++
			return nil
		})

	results := runAll(t, runner.New(reg, nil))
	require.Len(t, results, 2)
	assert.Equal(t, logging.StatusPass, results[0].Status)
	assert.Equal(t, logging.StatusSkip, results[1].Status)
	assert.Equal(t, 2, bodies)
}

func TestTimingUsesClock(t *testing.T) {
	clock := &stepClock{now: time.Unix(0, 0), step: 1500 * time.Microsecond}
	reg := oneTest(params.New(), func(*fixture.Fixture) error { return nil })
	results := runAll(t, runner.New(reg, nil, runner.WithClock(clock)))
	assert.InDelta(t, 1.5, results[0].TimeMS, 1e-9)
}

// ---------------------------------------------------------------------------
// Timeouts, cancellation and async expectations
// ---------------------------------------------------------------------------

func TestCaseTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	reg := oneTest(params.New(), func(f *fixture.Fixture) error {
		<-release
		f.Fail("too late") // dropped, must not panic
		return nil
	})

	results := runAll(t, runner.New(reg, nil, runner.WithCaseTimeout(20*time.Millisecond)))
	require.Len(t, results, 1)
	assert.Equal(t, logging.StatusFail, results[0].Status)
	assert.Equal(t, []string{"fail: case timed out after 20ms"}, messages(results[0]))
}

func TestAsyncExpectationJoinedBeforeFinish(t *testing.T) {
	reg := oneTest(params.New(), func(f *fixture.Fixture) error {
		f.Eventually("mapAsync", func(context.Context) error {
			time.Sleep(10 * time.Millisecond)
			return errors.New("rejected")
		})
		return nil
	})
	results := runAll(t, runner.New(reg, nil))
	assert.Equal(t, []string{"fail: mapAsync: rejected"}, messages(results[0]))
}

func TestRunCancelled(t *testing.T) {
	reg := oneTest(params.New().Combine("x", 1, 2, 3), func(*fixture.Fixture) error { return nil })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := runner.New(reg, nil).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, run.Results, 3)
	for _, r := range run.Results {
		assert.Equal(t, logging.StatusFail, r.Status)
	}
}

// ---------------------------------------------------------------------------
// Devices, sinks and expectations
// ---------------------------------------------------------------------------

func TestDeviceReleasedAfterCase(t *testing.T) {
	pool := devicepool.New(devicepool.HeadlessFactory{})
	defer pool.Close()

	b := params.New().Combine("x", 1, 2).BeginSubcases().Combine("y", 1, 2)
	reg := oneTest(b, func(f *fixture.Fixture) error {
		d, err := f.Device()
		if err != nil {
			return err
		}
		f.Expect(!d.IsLost(), "device lost")
		return nil
	})
	results := runAll(t, runner.New(reg, pool, runner.WithParallelism(2)))
	for _, r := range results {
		assert.Equal(t, logging.StatusPass, r.Status, r.Query)
	}
	st := pool.Stats()
	assert.Equal(t, 0, st.Held)
	assert.LessOrEqual(t, st.Idle, 2)
}

func TestAbandonedCaseCannotKeepDevice(t *testing.T) {
	pool := devicepool.New(devicepool.HeadlessFactory{}, devicepool.WithMaxDevices(1))
	defer pool.Close()

	late := make(chan error, 1)
	reg := oneTest(params.New().Combine("x", 1, 2), func(f *fixture.Fixture) error {
		if f.Params().Get("x") == 1 {
			// Ignores its context and asks for the device after the timeout.
			time.Sleep(100 * time.Millisecond)
			_, err := f.Device()
			late <- err
			return err
		}
		_, err := f.Device()
		return err
	})

	results := runAll(t, runner.New(reg, pool, runner.WithCaseTimeout(50*time.Millisecond)))
	require.Len(t, results, 2)
	assert.Equal(t, logging.StatusFail, results[0].Status)
	assert.Equal(t, logging.StatusPass, results[1].Status, messages(results[1]))

	select {
	case err := <-late:
		assert.ErrorIs(t, err, fixture.ErrCaseFinished)
	case <-time.After(5 * time.Second):
		t.Fatal("abandoned body never returned")
	}
	assert.Equal(t, 0, pool.Stats().Held)

	// A later case still gets the only device.
	run, err := runner.New(reg, pool, runner.WithCaseTimeout(time.Second)).
		Run(context.Background(), query.MustParse("s:f:t:x=2"))
	require.NoError(t, err)
	require.Len(t, run.Results, 1)
	assert.Equal(t, logging.StatusPass, run.Results[0].Status, messages(run.Results[0]))
	assert.Equal(t, 0, pool.Stats().Held)
}

func TestSinksSeeEveryResult(t *testing.T) {
	reg := oneTest(params.New().Combine("x", 1, 2, 3), func(*fixture.Fixture) error { return nil })
	var got []string
	r := runner.New(reg, nil, runner.WithParallelism(3), runner.WithSink(func(res report.CaseResult) {
		got = append(got, res.Query)
	}))
	runAll(t, r)
	assert.ElementsMatch(t, []string{"s:f:t:x=1", "s:f:t:x=2", "s:f:t:x=3"}, got)
}

func TestRunID(t *testing.T) {
	reg := oneTest(params.New(), func(*fixture.Fixture) error { return nil })
	run, err := runner.New(reg, nil, runner.WithRunID("nightly-42")).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "nightly-42", run.RunID)

	run, err = runner.New(reg, nil).Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, run.RunID)
}

func TestExpectations(t *testing.T) {
	reg := oneTest(params.New().Combine("x", 1, 2), func(f *fixture.Fixture) error {
		f.Fail("line one\nline two")
		return nil
	})
	exp := []report.Expectation{{Query: query.MustParse("s:f:t:x=1"), Status: logging.StatusFail}}
	run, err := runner.New(reg, nil, runner.WithExpectations(exp)).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, run.Results[0].Expected)
	assert.Equal(t, []string{"fail: line one"}, messages(run.Results[0]))
	assert.Empty(t, run.Results[0].Logs[0].Stack)

	assert.False(t, run.Results[1].Expected)
	assert.NotEmpty(t, run.Results[1].Logs[0].Stack)
	assert.True(t, run.Failed())
}
