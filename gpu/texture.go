// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Texture is a texture object. Invalid textures are returned for
// descriptors that fail validation; they can be destroyed but not used.
type Texture struct {
	device *Device
	desc   gputypes.TextureDescriptor
	valid  bool

	mu        sync.Mutex
	raw       hal.Texture
	destroyed bool
}

// Valid reports whether the texture passed validation.
func (t *Texture) Valid() bool { return t.valid }

// Descriptor returns the descriptor the texture was created with.
func (t *Texture) Descriptor() gputypes.TextureDescriptor { return t.desc }

// Destroy releases the texture. Destroy is idempotent.
func (t *Texture) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return
	}
	t.destroyed = true
	if t.raw != nil && !t.device.IsLost() {
		t.device.halDev().DestroyTexture(t.raw)
	}
	t.raw = nil
}

// MaxMipLevelCount returns the largest valid mip level count for a texture
// of the given size and dimension.
func MaxMipLevelCount(size gputypes.Extent3D, dim gputypes.TextureDimension) uint32 {
	var m uint32
	switch dim {
	case gputypes.TextureDimension1D:
		return 1
	case gputypes.TextureDimension3D:
		m = max(size.Width, size.Height, size.DepthOrArrayLayers)
	default:
		m = max(size.Width, size.Height)
	}
	if m == 0 {
		return 1
	}
	return uint32(bits.Len32(m))
}

// CreateTexture validates desc and creates the texture. A descriptor that
// fails validation yields an invalid texture and a validation error on the
// device. The only Go error is ErrDeviceLost.
func (d *Device) CreateTexture(desc *gputypes.TextureDescriptor) (*Texture, error) {
	if d.IsLost() {
		return nil, ErrDeviceLost
	}
	t := &Texture{device: d, desc: *desc}
	if msg := d.validateTexture(desc); msg != "" {
		d.raise(ErrorFilterValidation, "CreateTexture", "%s", msg)
		return t, nil
	}

	raw, err := d.halDev().CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Size.Width, Height: desc.Size.Height, DepthOrArrayLayers: desc.Size.DepthOrArrayLayers},
		MipLevelCount: desc.MipLevelCount,
		SampleCount:   desc.SampleCount,
		Dimension:     desc.Dimension,
		Format:        desc.Format,
		Usage:         desc.Usage,
		ViewFormats:   desc.ViewFormats,
	})
	if err != nil {
		d.raise(ErrorFilterOutOfMemory, "CreateTexture", "%v", err)
		return t, nil
	}
	t.raw = raw
	t.valid = true
	return t, nil
}

// validateTexture returns a description of the first rule desc breaks,
// or "" if it is valid.
func (d *Device) validateTexture(desc *gputypes.TextureDescriptor) string {
	size := desc.Size
	if desc.Usage == 0 {
		return "usage must not be empty"
	}
	if desc.Usage.ContainsUnknownBits() {
		return fmt.Sprintf("usage %#x has unknown bits", uint64(desc.Usage))
	}
	if size.Width == 0 || size.Height == 0 || size.DepthOrArrayLayers == 0 {
		return fmt.Sprintf("size %dx%dx%d has a zero dimension", size.Width, size.Height, size.DepthOrArrayLayers)
	}

	fi, ok := Format(desc.Format)
	if !ok {
		return fmt.Sprintf("format %s is not supported", desc.Format)
	}
	if fi.Feature != 0 && !d.features.Contains(fi.Feature) {
		return fmt.Sprintf("format %s requires feature %s", desc.Format, fi.Feature)
	}

	lim := d.limits
	switch desc.Dimension {
	case gputypes.TextureDimension1D:
		if size.Width > lim.MaxTextureDimension1D {
			return fmt.Sprintf("width %d exceeds maxTextureDimension1D %d", size.Width, lim.MaxTextureDimension1D)
		}
		if size.Height != 1 || size.DepthOrArrayLayers != 1 {
			return "1d textures must have height and depthOrArrayLayers of 1"
		}
		if fi.Compressed() || fi.DepthStencil {
			return fmt.Sprintf("format %s cannot be used with 1d textures", desc.Format)
		}
		if desc.Usage.Contains(gputypes.TextureUsageRenderAttachment) {
			return "1d textures cannot be render attachments"
		}
	case gputypes.TextureDimension2D:
		if size.Width > lim.MaxTextureDimension2D || size.Height > lim.MaxTextureDimension2D {
			return fmt.Sprintf("size %dx%d exceeds maxTextureDimension2D %d", size.Width, size.Height, lim.MaxTextureDimension2D)
		}
		if size.DepthOrArrayLayers > lim.MaxTextureArrayLayers {
			return fmt.Sprintf("%d layers exceeds maxTextureArrayLayers %d", size.DepthOrArrayLayers, lim.MaxTextureArrayLayers)
		}
	case gputypes.TextureDimension3D:
		m := lim.MaxTextureDimension3D
		if size.Width > m || size.Height > m || size.DepthOrArrayLayers > m {
			return fmt.Sprintf("size %dx%dx%d exceeds maxTextureDimension3D %d", size.Width, size.Height, size.DepthOrArrayLayers, m)
		}
		if fi.Compressed() || fi.DepthStencil {
			return fmt.Sprintf("format %s cannot be used with 3d textures", desc.Format)
		}
	default:
		return fmt.Sprintf("dimension %s is not valid", desc.Dimension)
	}

	if fi.Compressed() && (size.Width%fi.BlockWidth != 0 || size.Height%fi.BlockHeight != 0) {
		return fmt.Sprintf("size %dx%d is not a multiple of the %dx%d block of %s",
			size.Width, size.Height, fi.BlockWidth, fi.BlockHeight, desc.Format)
	}

	if desc.MipLevelCount == 0 {
		return "mipLevelCount must be at least 1"
	}
	if maxMips := MaxMipLevelCount(size, desc.Dimension); desc.MipLevelCount > maxMips {
		return fmt.Sprintf("mipLevelCount %d exceeds maximum %d for size", desc.MipLevelCount, maxMips)
	}

	switch desc.SampleCount {
	case 1:
	case 4:
		if desc.Dimension != gputypes.TextureDimension2D {
			return "multisampled textures must be 2d"
		}
		if desc.MipLevelCount != 1 || size.DepthOrArrayLayers != 1 {
			return "multisampled textures must have one mip level and one layer"
		}
		if !fi.Multisample {
			return fmt.Sprintf("format %s does not support multisampling", desc.Format)
		}
		if desc.Usage.Contains(gputypes.TextureUsageStorageBinding) {
			return "multisampled textures cannot be storage bindings"
		}
		if !desc.Usage.Contains(gputypes.TextureUsageRenderAttachment) {
			return "multisampled textures must be render attachments"
		}
	default:
		return fmt.Sprintf("sampleCount %d must be 1 or 4", desc.SampleCount)
	}

	if desc.Usage.Contains(gputypes.TextureUsageRenderAttachment) && !fi.Renderable {
		return fmt.Sprintf("format %s is not renderable", desc.Format)
	}
	if desc.Usage.Contains(gputypes.TextureUsageStorageBinding) {
		storage := fi.Storage || (fi.StorageFeature != 0 && d.features.Contains(fi.StorageFeature))
		if !storage {
			return fmt.Sprintf("format %s cannot be a storage binding", desc.Format)
		}
	}
	return ""
}
