// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"context"
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/cts/fixture"
	"github.com/gogpu/cts/gpu"
	"github.com/gogpu/cts/params"
	"github.com/gogpu/cts/testgroup"
)

func registerDevice(g *testgroup.Group) {
	g.Test("lost").
		Desc("Destroying a device resolves its lost signal and fails later calls with ErrDeviceLost.").
		Fn(func(f *fixture.Fixture) error {
			dev, err := f.Device()
			if err != nil {
				return err
			}
			f.Eventually("device lost signal", func(ctx context.Context) error {
				select {
				case <-dev.Lost():
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			})

			dev.Destroy()

			f.Expect(dev.IsLost(), "IsLost() = false after Destroy")
			f.Expect(dev.LostReason() == "destroyed", "LostReason() = %q, want %q", dev.LostReason(), "destroyed")
			_, err = dev.CreateBuffer(&gputypes.BufferDescriptor{Size: 4, Usage: gputypes.BufferUsageCopyDst})
			f.Expect(errors.Is(err, gpu.ErrDeviceLost), "CreateBuffer() error = %v, want %v", err, gpu.ErrDeviceLost)
			f.Expect(errors.Is(dev.PushErrorScope(gpu.ErrorFilterValidation), gpu.ErrDeviceLost),
				"PushErrorScope() on a lost device did not fail")

			// Destroy is idempotent.
			dev.Destroy()
			return nil
		})

	g.Test("features").
		Desc("A device selected with a feature requirement has the feature enabled.").
		Params(params.New().
			Combine("feature",
				gputypes.FeatureDepthClipControl,
				gputypes.FeatureDepth32FloatStencil8,
				gputypes.FeatureTextureCompressionBC,
				gputypes.FeatureTextureCompressionETC2,
				gputypes.FeatureTextureCompressionASTC)).
		BeforeAllSubcases(func(f *fixture.Fixture) error {
			return f.SelectDevice(gpu.Require(params.Value[gputypes.Feature](f.Params(), "feature")))
		}).
		Fn(func(f *fixture.Fixture) error {
			feature := params.Value[gputypes.Feature](f.Params(), "feature")
			dev, err := f.Device()
			if err != nil {
				return err
			}
			f.Expect(dev.HasFeature(feature), "device %s lacks required feature %s", dev.Label(), feature)
			return nil
		})

	g.Test("destroy_with_open_error_scope").
		Desc("Losing the device with an open error scope resolves the scope without an error.").
		Fn(func(f *fixture.Fixture) error {
			dev, err := f.Device()
			if err != nil {
				return err
			}
			if !f.ExpectOK(dev.PushErrorScope(gpu.ErrorFilterValidation)) {
				return nil
			}
			dev.Destroy()
			gpuErr, err := dev.PopErrorScope()
			f.Expect(gpuErr == nil && err == nil, "PopErrorScope() = %v, %v; want nil, nil", gpuErr, err)
			return nil
		})
}
