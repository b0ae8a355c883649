// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package testgroup

import (
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/cts/fixture"
	"github.com/gogpu/cts/params"
	"github.com/gogpu/cts/query"
)

func nop(*fixture.Fixture) error { return nil }

func mustPanic(t *testing.T, fn func()) any {
	t.Helper()
	var r any
	func() {
		defer func() { r = recover() }()
		fn()
	}()
	if r == nil {
		t.Fatal("expected panic")
	}
	return r
}

// caseIDs collects case query strings, failing on errors.
func caseIDs(t *testing.T, seq iter.Seq2[CaseSpec, error]) []string {
	t.Helper()
	var out []string
	for cs, err := range seq {
		if err != nil {
			t.Fatalf("Cases() error = %v", err)
		}
		out = append(out, cs.ID.String())
	}
	return out
}

func newRegistry() *Registry {
	r := NewRegistry()
	g := r.Group("webgpu", "api", "buffer")
	g.Test("size").Params(params.New().Combine("x", 1, 2).BeginSubcases().Combine("y", "a")).Fn(nop)
	g.Test("map,read").Fn(nop)
	r.Group("webgpu", "api", "texture").Test("mip").Params(params.New().Combine("d", "1d", "2d")).Fn(nop)
	r.Group("other", "misc").Test("todo").Unimplemented()
	return r
}

// ---------------------------------------------------------------------------
// Declaration
// ---------------------------------------------------------------------------

func TestGroupReturnsSameGroup(t *testing.T) {
	r := NewRegistry()
	if r.Group("s", "a", "b") != r.Group("s", "a", "b") {
		t.Error("Group() returned a new group for the same file")
	}
	if r.Group("s", "a", "b") == r.Group("s", "a") {
		t.Error("different files share a group")
	}
}

func TestTestsSortedByName(t *testing.T) {
	r := newRegistry()
	var names []string
	for _, tt := range r.Tests() {
		names = append(names, tt.FullName())
	}
	want := []string{
		"other:misc:todo",
		"webgpu:api,buffer:map,read",
		"webgpu:api,buffer:size",
		"webgpu:api,texture:mip",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Tests() mismatch (-want +got):\n%s", diff)
	}
	if r.Count() != 4 {
		t.Errorf("Count() = %d, want 4", r.Count())
	}
}

func TestDuplicateTestPanics(t *testing.T) {
	r := NewRegistry()
	g := r.Group("s", "f")
	g.Test("t").Fn(nop)
	r2 := mustPanic(t, func() { r.Group("s", "f").Test("t") })
	if s, _ := r2.(string); !strings.Contains(s, "s:f:t") {
		t.Errorf("panic = %v, want test name", r2)
	}
}

func TestInvalidNamesPanic(t *testing.T) {
	r := NewRegistry()
	mustPanic(t, func() { r.Group("") })
	mustPanic(t, func() { r.Group("s") })
	mustPanic(t, func() { r.Group("s", "a*") })
	mustPanic(t, func() { r.Group("s", "f").Test("a:b") })
	mustPanic(t, func() { r.Group("s", "f").Test("a,,b") })
}

func TestFnPanicsOnBadParams(t *testing.T) {
	r := NewRegistry()
	b := params.New().Combine("x", 1).Combine("x", 2)
	got := mustPanic(t, func() { r.Group("s", "f").Test("dup").Params(b).Fn(nop) })

	err, ok := got.(error)
	var re *RegistrationError
	if !ok || !errors.As(err, &re) || !errors.Is(err, params.ErrDuplicateKey) {
		t.Fatalf("panic = %v, want RegistrationError wrapping ErrDuplicateKey", got)
	}
	if re.Test != "s:f:dup" {
		t.Errorf("Test = %q, want s:f:dup", re.Test)
	}
}

func TestSettersAfterFnPanic(t *testing.T) {
	r := NewRegistry()
	tt := r.Group("s", "f").Test("t")
	tt.Fn(nop)
	mustPanic(t, func() { tt.Desc("late") })
	mustPanic(t, func() { tt.Params(params.New()) })
	mustPanic(t, func() { tt.Fn(nop) })
	mustPanic(t, func() { r.Group("s", "f").Test("nil").Fn(nil) })
}

func TestValidate(t *testing.T) {
	r := newRegistry()
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	r.Group("s", "f").Test("forgotten").Desc("no body")
	err := r.Validate()
	var re *RegistrationError
	if !errors.As(err, &re) || re.Test != "s:f:forgotten" {
		t.Errorf("Validate() = %v, want error for s:f:forgotten", err)
	}
}

// ---------------------------------------------------------------------------
// Case selection
// ---------------------------------------------------------------------------

func TestCasesAll(t *testing.T) {
	got := caseIDs(t, newRegistry().Cases())
	want := []string{
		"other:misc:todo:",
		"webgpu:api,buffer:map,read:",
		"webgpu:api,buffer:size:x=1",
		"webgpu:api,buffer:size:x=2",
		"webgpu:api,texture:mip:d=\"1d\"",
		"webgpu:api,texture:mip:d=\"2d\"",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Cases() mismatch (-want +got):\n%s", diff)
	}
}

func TestCasesFiltered(t *testing.T) {
	r := newRegistry()
	tests := []struct {
		queries []string
		want    []string
	}{
		{[]string{"webgpu:api,buffer:*"}, []string{"webgpu:api,buffer:map,read:", "webgpu:api,buffer:size:x=1", "webgpu:api,buffer:size:x=2"}},
		{[]string{"webgpu:api,buffer:size:x=2;*"}, []string{"webgpu:api,buffer:size:x=2"}},
		{[]string{"webgpu:api,texture:mip:d=\"2d\"", "other:*"}, []string{"other:misc:todo:", "webgpu:api,texture:mip:d=\"2d\""}},
		{[]string{"webgpu:api,render,*"}, nil},
	}
	for _, tt := range tests {
		var qs []query.Query
		for _, s := range tt.queries {
			qs = append(qs, query.MustParse(s))
		}
		got := caseIDs(t, r.Cases(qs...))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Cases(%v) mismatch (-want +got):\n%s", tt.queries, diff)
		}
	}
}

func TestCasesCarryTopLevelParams(t *testing.T) {
	for cs, err := range newRegistry().Cases(query.MustParse("webgpu:api,buffer:size:x=1")) {
		if err != nil {
			t.Fatal(err)
		}
		if got := params.Value[int](cs.Params, "x"); got != 1 {
			t.Errorf("x = %d, want 1", got)
		}
		if cs.Params.Has("y") {
			t.Error("top-level case carries subcase key y")
		}
		if cs.Test.FullName() != "webgpu:api,buffer:size" {
			t.Errorf("Test = %s", cs.Test.FullName())
		}
	}
}
