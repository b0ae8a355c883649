// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "github.com/gogpu/gputypes"

// FormatInfo describes the capabilities of a texture format.
type FormatInfo struct {
	// BlockWidth and BlockHeight are 1 for uncompressed formats.
	BlockWidth, BlockHeight uint32
	// BytesPerBlock is the texel block size, 0 for depth/stencil formats.
	BytesPerBlock uint32
	Renderable    bool
	Multisample   bool
	Storage       bool
	DepthStencil  bool
	// Feature must be enabled on the device to use the format, 0 if none.
	Feature gputypes.Feature
	// StorageFeature enables storage binding for the format, 0 if none.
	StorageFeature gputypes.Feature
}

// Compressed reports whether the format uses multi-texel blocks.
func (fi FormatInfo) Compressed() bool {
	return fi.BlockWidth > 1 || fi.BlockHeight > 1
}

type fcap uint8

const (
	capRender fcap = 1 << iota
	capMS
	capStorage
)

func plain(bytes uint32, caps fcap) FormatInfo {
	return FormatInfo{
		BlockWidth: 1, BlockHeight: 1, BytesPerBlock: bytes,
		Renderable:  caps&capRender != 0,
		Multisample: caps&capMS != 0,
		Storage:     caps&capStorage != 0,
	}
}

func depth(f gputypes.Feature) FormatInfo {
	return FormatInfo{BlockWidth: 1, BlockHeight: 1, Renderable: true, Multisample: true, DepthStencil: true, Feature: f}
}

func block(w, h, bytes uint32, f gputypes.Feature) FormatInfo {
	return FormatInfo{BlockWidth: w, BlockHeight: h, BytesPerBlock: bytes, Feature: f}
}

// Core formats, plus depth32float-stencil8 and the compressed families
// that need a feature. Formats missing here are not supported.
var formatTable = map[gputypes.TextureFormat]FormatInfo{
	gputypes.TextureFormatR8Unorm: plain(1, capRender|capMS),
	gputypes.TextureFormatR8Snorm: plain(1, 0),
	gputypes.TextureFormatR8Uint:  plain(1, capRender|capMS),
	gputypes.TextureFormatR8Sint:  plain(1, capRender|capMS),

	gputypes.TextureFormatR16Uint:  plain(2, capRender|capMS),
	gputypes.TextureFormatR16Sint:  plain(2, capRender|capMS),
	gputypes.TextureFormatR16Float: plain(2, capRender|capMS),
	gputypes.TextureFormatRG8Unorm: plain(2, capRender|capMS),
	gputypes.TextureFormatRG8Snorm: plain(2, 0),
	gputypes.TextureFormatRG8Uint:  plain(2, capRender|capMS),
	gputypes.TextureFormatRG8Sint:  plain(2, capRender|capMS),

	gputypes.TextureFormatR32Float:       plain(4, capRender|capMS|capStorage),
	gputypes.TextureFormatR32Uint:        plain(4, capRender|capStorage),
	gputypes.TextureFormatR32Sint:        plain(4, capRender|capStorage),
	gputypes.TextureFormatRG16Uint:       plain(4, capRender|capMS),
	gputypes.TextureFormatRG16Sint:       plain(4, capRender|capMS),
	gputypes.TextureFormatRG16Float:      plain(4, capRender|capMS),
	gputypes.TextureFormatRGBA8Unorm:     plain(4, capRender|capMS|capStorage),
	gputypes.TextureFormatRGBA8UnormSrgb: plain(4, capRender|capMS),
	gputypes.TextureFormatRGBA8Snorm:     plain(4, capStorage),
	gputypes.TextureFormatRGBA8Uint:      plain(4, capRender|capMS|capStorage),
	gputypes.TextureFormatRGBA8Sint:      plain(4, capRender|capMS|capStorage),
	gputypes.TextureFormatBGRA8Unorm: {
		BlockWidth: 1, BlockHeight: 1, BytesPerBlock: 4,
		Renderable: true, Multisample: true,
		StorageFeature: gputypes.FeatureBGRA8UnormStorage,
	},
	gputypes.TextureFormatBGRA8UnormSrgb: plain(4, capRender|capMS),
	gputypes.TextureFormatRGB10A2Uint:    plain(4, capRender|capMS),
	gputypes.TextureFormatRGB10A2Unorm:   plain(4, capRender|capMS),
	gputypes.TextureFormatRG11B10Ufloat:  plain(4, 0),
	gputypes.TextureFormatRGB9E5Ufloat:   plain(4, 0),

	gputypes.TextureFormatRG32Float:   plain(8, capRender|capStorage),
	gputypes.TextureFormatRG32Uint:    plain(8, capRender|capStorage),
	gputypes.TextureFormatRG32Sint:    plain(8, capRender|capStorage),
	gputypes.TextureFormatRGBA16Uint:  plain(8, capRender|capMS|capStorage),
	gputypes.TextureFormatRGBA16Sint:  plain(8, capRender|capMS|capStorage),
	gputypes.TextureFormatRGBA16Float: plain(8, capRender|capMS|capStorage),

	gputypes.TextureFormatRGBA32Float: plain(16, capRender|capStorage),
	gputypes.TextureFormatRGBA32Uint:  plain(16, capRender|capStorage),
	gputypes.TextureFormatRGBA32Sint:  plain(16, capRender|capStorage),

	gputypes.TextureFormatStencil8:             depth(0),
	gputypes.TextureFormatDepth16Unorm:         depth(0),
	gputypes.TextureFormatDepth24Plus:          depth(0),
	gputypes.TextureFormatDepth24PlusStencil8:  depth(0),
	gputypes.TextureFormatDepth32Float:         depth(0),
	gputypes.TextureFormatDepth32FloatStencil8: depth(gputypes.FeatureDepth32FloatStencil8),
}

func init() {
	bc := gputypes.FeatureTextureCompressionBC
	for f := gputypes.TextureFormatBC1RGBAUnorm; f <= gputypes.TextureFormatBC7RGBAUnormSrgb; f++ {
		bytes := uint32(16)
		switch f {
		case gputypes.TextureFormatBC1RGBAUnorm, gputypes.TextureFormatBC1RGBAUnormSrgb,
			gputypes.TextureFormatBC4RUnorm, gputypes.TextureFormatBC4RSnorm:
			bytes = 8
		}
		formatTable[f] = block(4, 4, bytes, bc)
	}

	etc := gputypes.FeatureTextureCompressionETC2
	for f := gputypes.TextureFormatETC2RGB8Unorm; f <= gputypes.TextureFormatEACRG11Snorm; f++ {
		bytes := uint32(8)
		switch f {
		case gputypes.TextureFormatETC2RGBA8Unorm, gputypes.TextureFormatETC2RGBA8UnormSrgb,
			gputypes.TextureFormatEACRG11Unorm, gputypes.TextureFormatEACRG11Snorm:
			bytes = 16
		}
		formatTable[f] = block(4, 4, bytes, etc)
	}

	astc := gputypes.FeatureTextureCompressionASTC
	footprints := [][2]uint32{
		{4, 4}, {5, 4}, {5, 5}, {6, 5}, {6, 6}, {8, 5}, {8, 6},
		{8, 8}, {10, 5}, {10, 6}, {10, 8}, {10, 10}, {12, 10}, {12, 12},
	}
	f := gputypes.TextureFormatASTC4x4Unorm
	for _, fp := range footprints {
		formatTable[f] = block(fp[0], fp[1], 16, astc)
		formatTable[f+1] = block(fp[0], fp[1], 16, astc)
		f += 2
	}
}

// Format returns the capabilities of f and whether it is supported at all.
func Format(f gputypes.TextureFormat) (FormatInfo, bool) {
	fi, ok := formatTable[f]
	return fi, ok
}

// SupportedFormats returns every format the validation layer knows, in
// numeric order.
func SupportedFormats() []gputypes.TextureFormat {
	out := make([]gputypes.TextureFormat, 0, len(formatTable))
	for f := gputypes.TextureFormatR8Unorm; f <= gputypes.TextureFormatASTC12x12UnormSrgb; f++ {
		if _, ok := formatTable[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
