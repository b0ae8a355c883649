// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"iter"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/cts/fixture"
	"github.com/gogpu/cts/gpu"
	"github.com/gogpu/cts/params"
	"github.com/gogpu/cts/testgroup"
)

var allDimensions = []any{
	gputypes.TextureDimension1D,
	gputypes.TextureDimension2D,
	gputypes.TextureDimension3D,
}

func registerCreateTexture(g *testgroup.Group) {
	g.Test("zero_size").
		Desc("A texture with a zero width, height or depthOrArrayLayers is invalid.").
		Params(params.New().
			Combine("dimension", allDimensions...).
			Combine("zeroArgument", "none", "width", "height", "depthOrArrayLayers").
			BeginSubcases().
			Combine("format", gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatR8Uint)).
		Fn(func(f *fixture.Fixture) error {
			p := f.Params()
			dim := params.Value[gputypes.TextureDimension](p, "dimension")
			zero := params.Value[string](p, "zeroArgument")

			size := textureSize(dim, 1, 1)
			switch zero {
			case "width":
				size.Width = 0
			case "height":
				size.Height = 0
			case "depthOrArrayLayers":
				size.DepthOrArrayLayers = 0
			}
			return createTexture(f, zero != "none", gputypes.TextureDescriptor{
				Size:          size,
				MipLevelCount: 1,
				SampleCount:   1,
				Dimension:     dim,
				Format:        params.Value[gputypes.TextureFormat](p, "format"),
				Usage:         gputypes.TextureUsageTextureBinding,
			})
		})

	g.Test("dimension_format").
		Desc("Compressed and depth/stencil formats are 2d only. Formats behind a feature fail without it.").
		Params(params.New().
			Combine("dimension", allDimensions...).
			Combine("format", anys(gpu.SupportedFormats())...)).
		Fn(func(f *fixture.Fixture) error {
			p := f.Params()
			dim := params.Value[gputypes.TextureDimension](p, "dimension")
			format := params.Value[gputypes.TextureFormat](p, "format")
			fi, _ := gpu.Format(format)

			dev, err := f.Device()
			if err != nil {
				return err
			}
			shouldError := (fi.Feature != 0 && !dev.HasFeature(fi.Feature)) ||
				(dim != gputypes.TextureDimension2D && (fi.Compressed() || fi.DepthStencil))
			return createTexture(f, shouldError, gputypes.TextureDescriptor{
				Size:          textureSize(dim, fi.BlockWidth, fi.BlockHeight),
				MipLevelCount: 1,
				SampleCount:   1,
				Dimension:     dim,
				Format:        format,
				Usage:         gputypes.TextureUsageTextureBinding,
			})
		})

	g.Test("texture_format,feature").
		Desc("Formats behind a feature are valid once the device enables it.").
		Params(params.New().
			Combine("format", anys(featureFormats())...).
			Combine("enableRequiredFeature", false, true)).
		BeforeAllSubcases(func(f *fixture.Fixture) error {
			p := f.Params()
			if !params.Value[bool](p, "enableRequiredFeature") {
				return nil
			}
			fi, _ := gpu.Format(params.Value[gputypes.TextureFormat](p, "format"))
			return f.SelectDevice(gpu.Require(fi.Feature))
		}).
		Fn(func(f *fixture.Fixture) error {
			p := f.Params()
			format := params.Value[gputypes.TextureFormat](p, "format")
			fi, _ := gpu.Format(format)
			return createTexture(f, !params.Value[bool](p, "enableRequiredFeature"), gputypes.TextureDescriptor{
				Size:          textureSize(gputypes.TextureDimension2D, fi.BlockWidth, fi.BlockHeight),
				MipLevelCount: 1,
				SampleCount:   1,
				Dimension:     gputypes.TextureDimension2D,
				Format:        format,
				Usage:         gputypes.TextureUsageTextureBinding,
			})
		})

	g.Test("mipLevelCount,bound_check").
		Desc("mipLevelCount must be between 1 and the full mip chain length of the size.").
		Params(params.New().
			Combine("dimension", allDimensions...).
			Expand("size", mipSizes).
			Expand("mipLevelCount", func(c params.Case) iter.Seq[any] {
				size := extent(params.Value[[3]uint32](c, "size"))
				maxMips := gpu.MaxMipLevelCount(size, params.Value[gputypes.TextureDimension](c, "dimension"))
				return func(yield func(any) bool) {
					for n := uint32(0); n <= maxMips+1; n++ {
						if !yield(n) {
							return
						}
					}
				}
			}).
			BeginSubcases().
			Combine("format", gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatR8Unorm)).
		Fn(func(f *fixture.Fixture) error {
			p := f.Params()
			dim := params.Value[gputypes.TextureDimension](p, "dimension")
			size := extent(params.Value[[3]uint32](p, "size"))
			mips := params.Value[uint32](p, "mipLevelCount")
			shouldError := mips == 0 || mips > gpu.MaxMipLevelCount(size, dim)
			return createTexture(f, shouldError, gputypes.TextureDescriptor{
				Size:          size,
				MipLevelCount: mips,
				SampleCount:   1,
				Dimension:     dim,
				Format:        params.Value[gputypes.TextureFormat](p, "format"),
				Usage:         gputypes.TextureUsageTextureBinding,
			})
		})

	g.Test("sampleCount").
		Desc("Only 1 and 4 samples are valid. Multisampled textures are 2d render attachments with a single mip level.").
		Params(params.New().
			Combine("dimension", gputypes.TextureDimension2D, gputypes.TextureDimension3D).
			Combine("format",
				gputypes.TextureFormatRGBA8Unorm,
				gputypes.TextureFormatR32Uint,
				gputypes.TextureFormatRGBA32Float).
			BeginSubcases().
			Combine("sampleCount", uint32(0), uint32(1), uint32(2), uint32(4), uint32(8), uint32(16)).
			Combine("mipLevelCount", uint32(1), uint32(2)).
			Combine("usage",
				"TextureBinding",
				"RenderAttachment",
				"TextureBinding|RenderAttachment",
				"StorageBinding|RenderAttachment")).
		Fn(func(f *fixture.Fixture) error {
			p := f.Params()
			dim := params.Value[gputypes.TextureDimension](p, "dimension")
			format := params.Value[gputypes.TextureFormat](p, "format")
			samples := params.Value[uint32](p, "sampleCount")
			mips := params.Value[uint32](p, "mipLevelCount")
			usage := textureUsages[params.Value[string](p, "usage")]
			fi, _ := gpu.Format(format)

			var shouldError bool
			switch samples {
			case 1:
			case 4:
				shouldError = dim != gputypes.TextureDimension2D ||
					mips != 1 ||
					!fi.Multisample ||
					usage.Contains(gputypes.TextureUsageStorageBinding) ||
					!usage.Contains(gputypes.TextureUsageRenderAttachment)
			default:
				shouldError = true
			}
			return createTexture(f, shouldError, gputypes.TextureDescriptor{
				Size:          textureSize(dim, 4, 4),
				MipLevelCount: mips,
				SampleCount:   samples,
				Dimension:     dim,
				Format:        format,
				Usage:         usage,
			})
		})

	// TODO: the device does not check viewFormats yet; add the test with
	// the format compatibility rule.
	g.Test("viewFormats").
		Desc("Every view format must be compatible with the texture format.").
		Unimplemented()
}

// createTexture creates desc in a validation error scope and checks that
// it fails exactly when shouldError is set.
func createTexture(f *fixture.Fixture, shouldError bool, desc gputypes.TextureDescriptor) error {
	dev, err := f.Device()
	if err != nil {
		return err
	}
	f.ExpectValidationError(shouldError, func() {
		tex, err := dev.CreateTexture(&desc)
		if !f.ExpectOK(err) {
			return
		}
		f.Expect(tex.Valid() != shouldError, "texture Valid() = %v, want %v", tex.Valid(), !shouldError)
		tex.Destroy()
	})
	return nil
}

// textureSize returns a small valid size for dim whose width and height
// are multiples of the given block size.
func textureSize(dim gputypes.TextureDimension, bw, bh uint32) gputypes.Extent3D {
	switch dim {
	case gputypes.TextureDimension1D:
		return gputypes.Extent3D{Width: bw * 4, Height: 1, DepthOrArrayLayers: 1}
	case gputypes.TextureDimension3D:
		return gputypes.Extent3D{Width: bw * 4, Height: bh * 4, DepthOrArrayLayers: 4}
	default:
		return gputypes.Extent3D{Width: bw * 4, Height: bh * 4, DepthOrArrayLayers: 1}
	}
}

func extent(s [3]uint32) gputypes.Extent3D {
	return gputypes.Extent3D{Width: s[0], Height: s[1], DepthOrArrayLayers: s[2]}
}

func mipSizes(c params.Case) iter.Seq[any] {
	switch params.Value[gputypes.TextureDimension](c, "dimension") {
	case gputypes.TextureDimension1D:
		return params.Seq([3]uint32{32, 1, 1}, [3]uint32{1, 1, 1})
	case gputypes.TextureDimension3D:
		return params.Seq([3]uint32{32, 32, 32}, [3]uint32{31, 32, 16}, [3]uint32{1, 1, 64})
	default:
		return params.Seq([3]uint32{32, 32, 1}, [3]uint32{31, 32, 1}, [3]uint32{32, 31, 8}, [3]uint32{1, 1, 1})
	}
}

func featureFormats() []gputypes.TextureFormat {
	var out []gputypes.TextureFormat
	for _, format := range gpu.SupportedFormats() {
		if fi, _ := gpu.Format(format); fi.Feature != 0 {
			out = append(out, format)
		}
	}
	return out
}
