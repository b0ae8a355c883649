// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/cts/internal/cache"
)

// compiled is the memoized outcome of compiling one WGSL source.
type compiled struct {
	spirv []uint32
	err   error
}

// Compilation is pure, so results are shared by every device.
var shaderCache = cache.NewSharded[string, compiled](64, cache.StringHasher)

// ShaderCacheStats reports the WGSL compilation cache counters.
func ShaderCacheStats() cache.Stats {
	return shaderCache.Stats()
}

// CompileWGSL compiles WGSL source to SPIR-V words with naga.
func CompileWGSL(source string) ([]uint32, error) {
	c := shaderCache.GetOrCreate(source, func() compiled {
		words, err := compileWGSL(source)
		return compiled{spirv: words, err: err}
	})
	return c.spirv, c.err
}

func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}
	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

// ShaderModule is a compiled shader. A module whose source failed to
// compile is invalid and reports the compiler message.
type ShaderModule struct {
	device *Device
	label  string
	spirv  []uint32
	err    error
	raw    hal.ShaderModule
}

// Valid reports whether the source compiled.
func (m *ShaderModule) Valid() bool { return m.err == nil }

// CompilationError returns the compiler error, or nil.
func (m *ShaderModule) CompilationError() error { return m.err }

// SPIRV returns the generated SPIR-V words.
func (m *ShaderModule) SPIRV() []uint32 { return m.spirv }

// Destroy releases the HAL module.
func (m *ShaderModule) Destroy() {
	if m.raw != nil && !m.device.IsLost() {
		m.device.halDev().DestroyShaderModule(m.raw)
	}
	m.raw = nil
}

// CreateShaderModule compiles WGSL source. Compilation errors raise a
// validation error carrying the compiler message and yield an invalid
// module.
func (d *Device) CreateShaderModule(label, source string) (*ShaderModule, error) {
	if d.IsLost() {
		return nil, ErrDeviceLost
	}
	m := &ShaderModule{device: d, label: label}
	m.spirv, m.err = CompileWGSL(source)
	if m.err != nil {
		d.raise(ErrorFilterValidation, "CreateShaderModule", "%v", m.err)
		return m, nil
	}
	raw, err := d.halDev().CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: m.spirv},
	})
	if err != nil {
		d.raise(ErrorFilterInternal, "CreateShaderModule", "%v", err)
		m.err = err
		return m, nil
	}
	m.raw = raw
	return m, nil
}
