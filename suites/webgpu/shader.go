// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"fmt"

	"github.com/gogpu/cts/fixture"
	"github.com/gogpu/cts/params"
	"github.com/gogpu/cts/testgroup"
)

// wgslTypes maps a type spelling to whether it names a WGSL type.
var wgslTypes = []struct {
	name  string
	valid bool
}{
	{"f32", true},
	{"i32", true},
	{"u32", true},
	{"bool", true},
	{"vec4<f32>", true},
	{"f33", false},
	{"vec5<f32>", false},
}

// hostShareable spaces hold memory visible to the host; bool has no
// host-visible layout and is rejected there.
var hostShareable = map[string]bool{
	"uniform": true,
	"storage": true,
}

func registerShaderTypes(g *testgroup.Group) {
	names := make([]any, len(wgslTypes))
	valid := make(map[string]bool, len(wgslTypes))
	for i, ty := range wgslTypes {
		names[i] = ty.name
		valid[ty.name] = ty.valid
	}

	g.Test("address_space").
		Desc("Variables of each scalar and vector type in each address space compile unless the type is unknown or not host-shareable.").
		Params(params.New().
			Combine("type", names...).
			Combine("addressSpace", "function", "private", "workgroup", "uniform", "storage")).
		Fn(func(f *fixture.Fixture) error {
			p := f.Params()
			ty := params.Value[string](p, "type")
			space := params.Value[string](p, "addressSpace")
			shouldError := !valid[ty] || (ty == "bool" && hostShareable[space])

			dev, err := f.Device()
			if err != nil {
				return err
			}
			source := variableShader(ty, space)
			f.Debug("source:\n%s", source)
			f.ExpectValidationError(shouldError, func() {
				m, err := dev.CreateShaderModule(ty+" in "+space, source)
				if !f.ExpectOK(err) {
					return
				}
				f.Expect(m.Valid() != shouldError, "module Valid() = %v, want %v (%v)", m.Valid(), !shouldError, m.CompilationError())
				m.Destroy()
			})
			return nil
		})
}

// variableShader returns a compute shader reading a variable of type ty
// declared in the given address space.
func variableShader(ty, space string) string {
	const entry = "@compute @workgroup_size(1)\nfn main() {\n%s\tlet x = v;\n}\n"
	switch space {
	case "function":
		return fmt.Sprintf(entry, fmt.Sprintf("\tvar v: %s;\n", ty))
	case "uniform":
		return fmt.Sprintf("@group(0) @binding(0) var<uniform> v: %s;\n\n", ty) + fmt.Sprintf(entry, "")
	case "storage":
		return fmt.Sprintf("@group(0) @binding(0) var<storage, read_write> v: %s;\n\n", ty) + fmt.Sprintf(entry, "")
	default:
		return fmt.Sprintf("var<%s> v: %s;\n\n", space, ty) + fmt.Sprintf(entry, "")
	}
}
