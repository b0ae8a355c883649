// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// headlessProvider exposes a standalone HAL device through the
// gpucontext.DeviceProvider interface. There is no surface, so
// SurfaceFormat is undefined.
type headlessProvider struct {
	device hal.Device
	queue  hal.Queue
	info   gputypes.AdapterInfo
}

func (p *headlessProvider) Device() gpucontext.Device { return p.device }

func (p *headlessProvider) Queue() gpucontext.Queue { return p.queue }

// Adapter is not exposed; only its metadata is.
func (p *headlessProvider) Adapter() gpucontext.Adapter { return nil }

func (p *headlessProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

func (p *headlessProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: p.info.Name, Type: adapterType(p.info.DeviceType)}
}

var _ gpucontext.DeviceProvider = (*headlessProvider)(nil)

func adapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}

// halDevice extracts the HAL device from a provider, if it carries one.
func halDevice(p gpucontext.DeviceProvider) hal.Device {
	if p == nil {
		return nil
	}
	d, _ := p.Device().(hal.Device)
	return d
}
