// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package testgroup declares tests.
//
// There is no process-wide registry. A suite exposes a Register function
// that adds its tests to a Registry passed in by the caller:
//
//	func Register(r *testgroup.Registry) {
//	    g := r.Group("webgpu", "api", "validation", "createBuffer")
//	    g.Test("size").
//	        Desc("Buffers larger than maxBufferSize are invalid.").
//	        Params(params.New().Combine("mapped", false, true)).
//	        Fn(func(t *fixture.Fixture) error { ... })
//	}
//
// Mistakes in a declaration (duplicate names, a parameter space that fails
// to expand) are programming errors and panic at registration time, the
// way duplicate driver registration does in database/sql.
package testgroup

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/gogpu/cts/fixture"
	"github.com/gogpu/cts/params"
	"github.com/gogpu/cts/query"
)

// Body is a test function. It runs once per subcase. A returned skip
// error (logging.Skip) skips the subcase; any other error fails it.
type Body func(t *fixture.Fixture) error

// RegistrationError reports an invalid test declaration.
type RegistrationError struct {
	Test string // suite:file:test
	Err  error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("testgroup: %s: %v", e.Test, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// Registry holds the tests of one or more suites.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]*Group
	tests  []*Test
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{groups: make(map[string]*Group)}
}

// Group returns the group for one test file, creating it on first use.
// file is the file path below the suite, e.g. "api", "validation",
// "createTexture".
func (r *Registry) Group(suite string, file ...string) *Group {
	if err := checkName(suite); err != nil || len(file) == 0 {
		panic(fmt.Sprintf("testgroup: invalid group %q %q", suite, file))
	}
	for _, f := range file {
		if err := checkName(f); err != nil {
			panic(fmt.Sprintf("testgroup: invalid file path element %q: %v", f, err))
		}
	}
	key := suite + ":" + strings.Join(file, ",")

	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.groups[key]; ok {
		return g
	}
	g := &Group{reg: r, suite: suite, file: slices.Clone(file), names: make(map[string]bool)}
	r.groups[key] = g
	return g
}

// Tests returns every declared test sorted by full name.
func (r *Registry) Tests() []*Test {
	r.mu.RLock()
	tests := slices.Clone(r.tests)
	r.mu.RUnlock()
	slices.SortFunc(tests, func(a, b *Test) int { return strings.Compare(a.FullName(), b.FullName()) })
	return tests
}

// Count returns the number of declared tests.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tests)
}

// Validate checks every declaration and returns all problems joined:
// tests without a body and parameter spaces that fail to expand.
func (r *Registry) Validate() error {
	var errs []error
	for _, t := range r.Tests() {
		if t.body == nil && !t.unimplemented {
			errs = append(errs, &RegistrationError{Test: t.FullName(), Err: errors.New("no body; call Fn or Unimplemented")})
			continue
		}
		if err := t.builder.Validate(); err != nil {
			errs = append(errs, &RegistrationError{Test: t.FullName(), Err: err})
		}
	}
	return errors.Join(errs...)
}

// CaseSpec is one top-level case ready to run.
type CaseSpec struct {
	ID     query.TestCaseID
	Test   *Test
	Params params.Case
}

// Cases yields the top-level cases matched by any of qs, in test order and
// then expansion order. With no queries every case is yielded. An expansion
// error is yielded once and ends the sequence.
func (r *Registry) Cases(qs ...query.Query) iter.Seq2[CaseSpec, error] {
	return func(yield func(CaseSpec, error) bool) {
		for _, t := range r.Tests() {
			if !selects(qs, t) {
				continue
			}
			for c, err := range t.builder.TopLevel() {
				if err != nil {
					yield(CaseSpec{}, &RegistrationError{Test: t.FullName(), Err: err})
					return
				}
				id := t.caseID(c)
				if !matches(qs, id) {
					continue
				}
				if !yield(CaseSpec{ID: id, Test: t, Params: c}, nil) {
					return
				}
			}
		}
	}
}

func selects(qs []query.Query, t *Test) bool {
	if len(qs) == 0 {
		return true
	}
	return slices.ContainsFunc(qs, func(q query.Query) bool {
		return q.Selects(t.group.suite, t.group.file, t.path)
	})
}

func matches(qs []query.Query, id query.TestCaseID) bool {
	if len(qs) == 0 {
		return true
	}
	return slices.ContainsFunc(qs, func(q query.Query) bool { return q.Matches(id) })
}

// checkName rejects characters that are query syntax.
func checkName(s string) error {
	if s == "" {
		return errors.New("empty name")
	}
	if i := strings.IndexAny(s, ":,;=*\"'"); i >= 0 {
		return fmt.Errorf("name contains %q", s[i])
	}
	return nil
}
