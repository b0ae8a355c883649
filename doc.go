// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cts is a conformance-test harness for WebGPU-style GPU APIs.
//
// # Overview
//
// A conformance suite is thousands of small, parameterized cases. Each test
// declares a parameter space, and the harness expands it into concrete cases,
// runs the test body once per case against the implementation under test,
// and records what happened.
//
// The harness is organized into:
//   - params: the combinatorial parameter space builder
//   - logging: the per-case result recorder (status, logs, timing)
//   - fixture: the handle passed to test bodies (expectations, devices)
//   - testgroup: explicit test registries, no process-wide state
//   - query: suite:file:test:params selection strings
//   - runner: expansion, execution and result collection
//   - gpu, devicepool: the reference device under test and its pool
//   - report, metrics, server: result output
//
// # Quick Start
//
//	reg := testgroup.NewRegistry()
//	g := reg.Group("webgpu", "api", "validation", "createTexture")
//
//	g.Test("zero_size").
//	    Params(params.New().
//	        Combine("dimension", "1d", "2d", "3d").
//	        BeginSubcases().
//	        Combine("zeroArgument", "width", "height", "depth")).
//	    Fn(func(t *fixture.Fixture) error {
//	        ...
//	        return nil
//	    })
//
//	r := runner.New(reg, pool)
//	run, err := r.Run(ctx, query.MustParse("webgpu:*"))
//
// # Logging
//
// The harness is silent by default. Call [SetLogger] to route its diagnostics
// through any [log/slog] handler.
package cts

// Version information
const (
	// Version is the current version of the harness
	Version = "0.4.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 4

	// VersionPatch is the patch version
	VersionPatch = 0
)
