// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Buffer is a buffer object. Invalid buffers are returned for descriptors
// that fail validation.
type Buffer struct {
	device *Device
	desc   gputypes.BufferDescriptor
	valid  bool

	mu        sync.Mutex
	raw       hal.Buffer
	destroyed bool
}

// Valid reports whether the buffer passed validation.
func (b *Buffer) Valid() bool { return b.valid }

// Size returns the requested size in bytes.
func (b *Buffer) Size() uint64 { return b.desc.Size }

// Usage returns the requested usage.
func (b *Buffer) Usage() gputypes.BufferUsage { return b.desc.Usage }

// Destroy releases the buffer. Destroy is idempotent.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return
	}
	b.destroyed = true
	if b.raw != nil && !b.device.IsLost() {
		b.device.halDev().DestroyBuffer(b.raw)
	}
	b.raw = nil
}

// CreateBuffer validates desc and creates the buffer. See CreateTexture
// for the error model.
func (d *Device) CreateBuffer(desc *gputypes.BufferDescriptor) (*Buffer, error) {
	if d.IsLost() {
		return nil, ErrDeviceLost
	}
	b := &Buffer{device: d, desc: *desc}
	if msg := d.validateBuffer(desc); msg != "" {
		d.raise(ErrorFilterValidation, "CreateBuffer", "%s", msg)
		return b, nil
	}
	raw, err := d.halDev().CreateBuffer(&hal.BufferDescriptor{
		Label:            desc.Label,
		Size:             desc.Size,
		Usage:            desc.Usage,
		MappedAtCreation: desc.MappedAtCreation,
	})
	if err != nil {
		d.raise(ErrorFilterOutOfMemory, "CreateBuffer", "%v", err)
		return b, nil
	}
	b.raw = raw
	b.valid = true
	return b, nil
}

func (d *Device) validateBuffer(desc *gputypes.BufferDescriptor) string {
	u := desc.Usage
	if u == 0 {
		return "usage must not be empty"
	}
	if u.ContainsUnknownBits() {
		return fmt.Sprintf("usage %#x has unknown bits", uint64(u))
	}
	if u.Contains(gputypes.BufferUsageMapRead) && u&^(gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst) != 0 {
		return "MapRead may only be combined with CopyDst"
	}
	if u.Contains(gputypes.BufferUsageMapWrite) && u&^(gputypes.BufferUsageMapWrite|gputypes.BufferUsageCopySrc) != 0 {
		return "MapWrite may only be combined with CopySrc"
	}
	if desc.Size > d.limits.MaxBufferSize {
		return fmt.Sprintf("size %d exceeds maxBufferSize %d", desc.Size, d.limits.MaxBufferSize)
	}
	if desc.MappedAtCreation && desc.Size%4 != 0 {
		return fmt.Sprintf("mappedAtCreation requires a size multiple of 4, got %d", desc.Size)
	}
	return ""
}
