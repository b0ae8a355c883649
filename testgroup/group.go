// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package testgroup

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/cts/params"
	"github.com/gogpu/cts/query"
)

// Group is the set of tests in one file.
type Group struct {
	reg   *Registry
	suite string
	file  []string
	names map[string]bool
}

// Suite returns the suite name.
func (g *Group) Suite() string { return g.suite }

// File returns the file path.
func (g *Group) File() []string { return slices.Clone(g.file) }

// Test declares a test. name may be a comma-separated test path, such as
// "sample_count,1d". Test panics if the name is already declared in the
// group.
func (g *Group) Test(name string) *Test {
	path := strings.Split(name, ",")
	for _, p := range path {
		if err := checkName(p); err != nil {
			panic(fmt.Sprintf("testgroup: invalid test name %q: %v", name, err))
		}
	}

	g.reg.mu.Lock()
	defer g.reg.mu.Unlock()
	if g.names[name] {
		panic("testgroup: Test called twice for " + g.suite + ":" + strings.Join(g.file, ",") + ":" + name)
	}
	g.names[name] = true
	t := &Test{group: g, path: path, builder: params.New()}
	g.reg.tests = append(g.reg.tests, t)
	return t
}

// Test is one declared test. Its setters return the Test for chaining and
// must be called before Fn.
type Test struct {
	group         *Group
	path          []string
	desc          string
	builder       params.Builder
	before        Body
	body          Body
	unimplemented bool
}

// FullName returns "suite:file:test".
func (t *Test) FullName() string {
	return t.group.suite + ":" + strings.Join(t.group.file, ",") + ":" + strings.Join(t.path, ",")
}

// Path returns the test path within its file.
func (t *Test) Path() []string { return slices.Clone(t.path) }

// Group returns the group the test belongs to.
func (t *Test) Group() *Group { return t.group }

// Description returns the text set with Desc.
func (t *Test) Description() string { return t.desc }

// Builder returns the parameter space.
func (t *Test) Builder() params.Builder { return t.builder }

// Body returns the test function, nil for unimplemented tests.
func (t *Test) Body() Body { return t.body }

// BeforeAll returns the BeforeAllSubcases hook, or nil.
func (t *Test) BeforeAll() Body { return t.before }

// IsUnimplemented reports whether the test was declared with Unimplemented.
func (t *Test) IsUnimplemented() bool { return t.unimplemented }

func (t *Test) mustBeOpen(method string) {
	if t.body != nil || t.unimplemented {
		panic("testgroup: " + method + " after Fn on " + t.FullName())
	}
}

// Desc sets the description.
func (t *Test) Desc(desc string) *Test {
	t.mustBeOpen("Desc")
	t.desc = desc
	return t
}

// Params sets the parameter space. Without it the test has one case with
// no parameters.
func (t *Test) Params(b params.Builder) *Test {
	t.mustBeOpen("Params")
	t.builder = b
	return t
}

// BeforeAllSubcases sets a hook that runs once per top-level case, before
// its subcases. The hook sees the top-level params only. It typically
// calls Fixture.SelectDevice or returns a skip for the whole case.
func (t *Test) BeforeAllSubcases(fn Body) *Test {
	t.mustBeOpen("BeforeAllSubcases")
	t.before = fn
	return t
}

// Fn sets the body and completes the declaration. It panics with a
// RegistrationError if the parameter space does not expand.
func (t *Test) Fn(body Body) {
	t.mustBeOpen("Fn")
	if body == nil {
		panic("testgroup: Fn body is nil for " + t.FullName())
	}
	if err := t.builder.Validate(); err != nil {
		panic(&RegistrationError{Test: t.FullName(), Err: err})
	}
	t.body = body
}

// Unimplemented completes the declaration of a test that has no body yet.
// Its cases report skip.
func (t *Test) Unimplemented() {
	t.mustBeOpen("Unimplemented")
	t.unimplemented = true
}

// ErrUnimplemented is the skip reason of unimplemented tests.
var ErrUnimplemented = errors.New("test is not implemented")

func (t *Test) caseID(c params.Case) query.TestCaseID {
	return query.TestCaseID{
		Suite:  t.group.suite,
		File:   t.group.file,
		Test:   t.path,
		Params: c.String(),
	}
}
