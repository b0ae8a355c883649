// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu is the reference device the conformance suites test.
//
// A Device validates WebGPU object creation (textures, buffers, shader
// modules) the way a browser implementation would and, for valid
// descriptors, creates the object on a wgpu HAL device. By default the HAL
// device comes from the noop backend, so the whole validation layer runs
// headless in CI; Open(WithBackend(gputypes.BackendVulkan)) targets real
// hardware when it is present.
//
// Validation failures do not return Go errors. As in WebGPU they produce an
// invalid object and raise a GPU error that is captured by the innermost
// matching error scope:
//
//	dev.PushErrorScope(gpu.ErrorFilterValidation)
//	tex, _ := dev.CreateTexture(&desc)
//	gpuErr, _ := dev.PopErrorScope()
//
// Go errors are reserved for operational failures such as ErrDeviceLost.
package gpu
