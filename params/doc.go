// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package params builds combinatorial parameter spaces for conformance tests.
//
// A test declares its parameter space as a chain of operations on a
// [Builder]. Nothing is evaluated at declaration time; the chain is pure data
// until it is expanded into a lazy, restartable sequence of [Case] records.
//
//	b := params.New().
//	    Combine("format", "rgba8unorm", "bgra8unorm").
//	    Expand("mipLevelCount", func(c params.Case) iter.Seq[any] {
//	        return params.Seq(1, 2, 3)
//	    }).
//	    Unless(func(c params.Case) bool {
//	        return c.Get("format") == "bgra8unorm" && c.Get("mipLevelCount") == 3
//	    }).
//	    BeginSubcases().
//	    Combine("sampleCount", 1, 4)
//
// # Top-level cases and subcases
//
// Operations declared before [Builder.BeginSubcases] produce top-level cases;
// operations declared after it produce subcases. Subcases are not flattened
// globally: each top-level case re-derives its own subcase sequence, so the
// execution loop is nested and subcase numbering restarts for every
// top-level case.
//
//	for top, err := range b.TopLevel() {
//	    for sub, err := range b.Subcases(top) {
//	        ...
//	    }
//	}
//
// # Configuration errors
//
// Duplicate parameter names, predicates or generators that read a parameter
// which has not been declared yet, and repeated BeginSubcases calls are
// configuration errors. They surface at expansion time as a [*ConfigError]
// yielded by the sequence, after which the sequence stops.
//
// # Determinism
//
// Expansion follows declaration order. Expanding the same Builder twice
// yields identical sequences, which keeps case names stable for bisection.
package params
