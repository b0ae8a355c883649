// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package webgpu is the reference conformance suite. It checks the
// validation rules of the gpu package device: texture and buffer creation,
// WGSL shader types and device loss.
//
// Tests are registered explicitly:
//
//	reg := testgroup.NewRegistry()
//	webgpu.Register(reg)
package webgpu

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/cts/testgroup"
)

// Suite is the suite name of every test in this package.
const Suite = "webgpu"

// Register adds the suite's tests to r.
func Register(r *testgroup.Registry) {
	registerCreateTexture(r.Group(Suite, "api", "validation", "createTexture"))
	registerCreateBuffer(r.Group(Suite, "api", "validation", "createBuffer"))
	registerShaderTypes(r.Group(Suite, "shader", "validation", "types"))
	registerDevice(r.Group(Suite, "api", "operation", "device"))
}

func anys[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

var textureUsages = map[string]gputypes.TextureUsage{
	"CopySrc":                         gputypes.TextureUsageCopySrc,
	"CopyDst":                         gputypes.TextureUsageCopyDst,
	"TextureBinding":                  gputypes.TextureUsageTextureBinding,
	"StorageBinding":                  gputypes.TextureUsageStorageBinding,
	"RenderAttachment":                gputypes.TextureUsageRenderAttachment,
	"TextureBinding|RenderAttachment": gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment,
	"StorageBinding|RenderAttachment": gputypes.TextureUsageStorageBinding | gputypes.TextureUsageRenderAttachment,
	"CopySrc|CopyDst|TextureBinding":  gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding,
}

// bufferUsages is ordered; usage pairs are taken from it without repeats.
var bufferUsages = []struct {
	name  string
	usage gputypes.BufferUsage
}{
	{"None", gputypes.BufferUsageNone},
	{"MapRead", gputypes.BufferUsageMapRead},
	{"MapWrite", gputypes.BufferUsageMapWrite},
	{"CopySrc", gputypes.BufferUsageCopySrc},
	{"CopyDst", gputypes.BufferUsageCopyDst},
	{"Index", gputypes.BufferUsageIndex},
	{"Vertex", gputypes.BufferUsageVertex},
	{"Uniform", gputypes.BufferUsageUniform},
	{"Storage", gputypes.BufferUsageStorage},
	{"Indirect", gputypes.BufferUsageIndirect},
	{"QueryResolve", gputypes.BufferUsageQueryResolve},
}
