// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package report collects case results into a run and writes them out.
package report

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/gogpu/cts/logging"
)

// CaseResult is the outcome of one top-level case.
type CaseResult struct {
	Query string `json:"query"`
	logging.Result
	// Subcases is the number of subcase invocations that ran.
	Subcases int `json:"subcases"`
	// Expected marks a failure listed in the expectations file.
	Expected bool `json:"expected,omitempty"`
}

// Incomplete returns a failed result for a case whose Recorder was never
// finished.
func Incomplete(query, reason string) CaseResult {
	return CaseResult{
		Query: query,
		Result: logging.Result{
			Status: logging.StatusFail,
			Logs:   []logging.LogEntry{logging.NewEntry(logging.SeverityFail, errors.Errorf("case did not finish: %s", reason))},
		},
	}
}

// Adapter describes the GPU the run used.
type Adapter struct {
	Name    string `json:"name"`
	Vendor  string `json:"vendor,omitempty"`
	Type    string `json:"type,omitempty"`
	Backend string `json:"backend,omitempty"`
}

// Run is one invocation of the harness.
type Run struct {
	RunID    string        `json:"runId"`
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"durationNs"`
	Adapter  *Adapter      `json:"adapter,omitempty"`
	Results  []CaseResult  `json:"results"`
}

// NewRun starts a run with a fresh id.
func NewRun() *Run {
	return &Run{RunID: uuid.NewString(), Start: time.Now()}
}

// Failed reports whether any result failed and was not expected to.
func (r *Run) Failed() bool {
	return slices.ContainsFunc(r.Results, func(c CaseResult) bool {
		return c.Status == logging.StatusFail && !c.Expected
	})
}

// Summary counts the results by status.
func (r *Run) Summary() Summary {
	s := Summary{RunID: r.RunID, Duration: r.Duration}
	for _, c := range r.Results {
		s.Total++
		s.Subcases += c.Subcases
		switch c.Status {
		case logging.StatusPass:
			s.Pass++
		case logging.StatusSkip:
			s.Skip++
		case logging.StatusWarn:
			s.Warn++
		case logging.StatusFail:
			if c.Expected {
				s.ExpectedFail++
			} else {
				s.Fail++
			}
		}
	}
	return s
}
