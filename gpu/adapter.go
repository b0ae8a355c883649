// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/cts"
)

// ProbeAdapter returns the adapter a hardware-backed device would be opened
// on. It checks the compiled-in hardware backends in order and returns
// ErrNoAdapter when none has an adapter; the noop backend is not
// considered.
func ProbeAdapter() (gputypes.AdapterInfo, error) {
	for _, b := range hardwareBackends {
		backend, ok := hal.GetBackend(b)
		if !ok {
			continue
		}
		instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
		if err != nil {
			cts.Logger().Warn("gpu: adapter probe failed", "backend", b.String(), "error", err)
			continue
		}
		adapters := instance.EnumerateAdapters(nil)
		if len(adapters) == 0 {
			instance.Destroy()
			continue
		}
		info := selectAdapter(adapters).Info
		instance.Destroy()
		cts.Logger().Info("gpu: adapter found", "name", info.Name, "type", info.DeviceType.String(), "backend", b.String())
		return info, nil
	}
	return gputypes.AdapterInfo{}, ErrNoAdapter
}
