// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/cts/fixture"
	"github.com/gogpu/cts/params"
	"github.com/gogpu/cts/testgroup"
)

func registerCreateBuffer(g *testgroup.Group) {
	names := make([]any, len(bufferUsages))
	index := make(map[string]int, len(bufferUsages))
	for i, u := range bufferUsages {
		names[i] = u.name
		index[u.name] = i
	}

	g.Test("usage").
		Desc("Map usages combine only with the matching copy usage; an empty usage is invalid; mapped buffers need a size aligned to 4.").
		Params(params.New().
			Combine("usage1", names...).
			Combine("usage2", names...).
			Filter(func(c params.Case) bool {
				return index[params.Value[string](c, "usage1")] <= index[params.Value[string](c, "usage2")]
			}).
			Combine("mappedAtCreation", false, true).
			BeginSubcases().
			Combine("size", uint64(0), uint64(4), uint64(6), uint64(16))).
		Fn(func(f *fixture.Fixture) error {
			p := f.Params()
			u1 := bufferUsages[index[params.Value[string](p, "usage1")]].usage
			u2 := bufferUsages[index[params.Value[string](p, "usage2")]].usage
			usage := u1 | u2
			mapped := params.Value[bool](p, "mappedAtCreation")
			size := params.Value[uint64](p, "size")

			shouldError := usage == 0 ||
				(usage.Contains(gputypes.BufferUsageMapRead) && usage&^(gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst) != 0) ||
				(usage.Contains(gputypes.BufferUsageMapWrite) && usage&^(gputypes.BufferUsageMapWrite|gputypes.BufferUsageCopySrc) != 0) ||
				(mapped && size%4 != 0)
			return createBuffer(f, shouldError, gputypes.BufferDescriptor{
				Size:             size,
				Usage:            usage,
				MappedAtCreation: mapped,
			})
		})

	g.Test("limit").
		Desc("A buffer larger than maxBufferSize is invalid.").
		Params(params.New().
			Combine("usage", "CopySrc", "Storage").
			BeginSubcases().
			Combine("beyondLimit", uint64(1), uint64(4), uint64(1)<<20)).
		Fn(func(f *fixture.Fixture) error {
			dev, err := f.Device()
			if err != nil {
				return err
			}
			p := f.Params()
			return createBuffer(f, true, gputypes.BufferDescriptor{
				Size:  dev.Limits().MaxBufferSize + params.Value[uint64](p, "beyondLimit"),
				Usage: bufferUsages[index[params.Value[string](p, "usage")]].usage,
			})
		})
}

func createBuffer(f *fixture.Fixture, shouldError bool, desc gputypes.BufferDescriptor) error {
	dev, err := f.Device()
	if err != nil {
		return err
	}
	f.ExpectValidationError(shouldError, func() {
		buf, err := dev.CreateBuffer(&desc)
		if !f.ExpectOK(err) {
			return
		}
		f.Expect(buf.Valid() != shouldError, "buffer Valid() = %v, want %v", buf.Valid(), !shouldError)
		buf.Destroy()
	})
	return nil
}
