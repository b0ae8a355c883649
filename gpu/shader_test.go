// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"testing"
)

const validWGSL = `
@compute @workgroup_size(1)
fn main() {
}
`

func TestCompileWGSL(t *testing.T) {
	words, err := CompileWGSL(validWGSL)
	if err != nil {
		t.Fatalf("CompileWGSL() error: %v", err)
	}
	const spirvMagic = 0x07230203
	if len(words) == 0 || words[0] != spirvMagic {
		t.Fatalf("CompileWGSL() did not produce SPIR-V (first word %#x)", firstWord(words))
	}

	before := ShaderCacheStats().Hits
	if _, err := CompileWGSL(validWGSL); err != nil {
		t.Fatal(err)
	}
	if after := ShaderCacheStats().Hits; after != before+1 {
		t.Errorf("cache hits = %d, want %d", after, before+1)
	}
}

func firstWord(w []uint32) uint32 {
	if len(w) == 0 {
		return 0
	}
	return w[0]
}

func TestCreateShaderModule(t *testing.T) {
	d := openTestDevice(t)

	_ = d.PushErrorScope(ErrorFilterValidation)
	m, err := d.CreateShaderModule("ok", validWGSL)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Destroy()
	if gpuErr, _ := d.PopErrorScope(); gpuErr != nil {
		t.Errorf("valid module raised %v", gpuErr)
	}
	if !m.Valid() || len(m.SPIRV()) == 0 {
		t.Errorf("Valid() = %v, len(SPIRV()) = %d", m.Valid(), len(m.SPIRV()))
	}

	_ = d.PushErrorScope(ErrorFilterValidation)
	bad, err := d.CreateShaderModule("bad", "fn main( {")
	if err != nil {
		t.Fatal(err)
	}
	gpuErr, _ := d.PopErrorScope()
	if bad.Valid() || bad.CompilationError() == nil {
		t.Error("syntax error produced a valid module")
	}
	if !IsValidation(gpuErr) {
		t.Errorf("PopErrorScope() = %v, want validation error", gpuErr)
	}
}
