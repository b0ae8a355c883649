// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestCreateBufferValidation(t *testing.T) {
	tests := []struct {
		name  string
		desc  gputypes.BufferDescriptor
		valid bool
	}{
		{"vertex", gputypes.BufferDescriptor{Size: 16, Usage: gputypes.BufferUsageVertex}, true},
		{"zero size", gputypes.BufferDescriptor{Size: 0, Usage: gputypes.BufferUsageUniform}, true},
		{"no usage", gputypes.BufferDescriptor{Size: 16}, false},
		{"unknown bits", gputypes.BufferDescriptor{Size: 16, Usage: 1 << 30}, false},
		{"map read copy dst", gputypes.BufferDescriptor{Size: 16, Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst}, true},
		{"map read storage", gputypes.BufferDescriptor{Size: 16, Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageStorage}, false},
		{"map write copy src", gputypes.BufferDescriptor{Size: 16, Usage: gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc}, true},
		{"map write copy dst", gputypes.BufferDescriptor{Size: 16, Usage: gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopyDst}, false},
		{"map read and write", gputypes.BufferDescriptor{Size: 16, Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageMapWrite}, false},
		{"mapped aligned", gputypes.BufferDescriptor{Size: 16, Usage: gputypes.BufferUsageUniform, MappedAtCreation: true}, true},
		{"mapped unaligned", gputypes.BufferDescriptor{Size: 6, Usage: gputypes.BufferUsageUniform, MappedAtCreation: true}, false},
		{"too large", gputypes.BufferDescriptor{Size: gputypes.DefaultLimits().MaxBufferSize + 4, Usage: gputypes.BufferUsageStorage}, false},
	}

	d := openTestDevice(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_ = d.PushErrorScope(ErrorFilterValidation)
			buf, err := d.CreateBuffer(&tt.desc)
			if err != nil {
				t.Fatal(err)
			}
			defer buf.Destroy()
			gpuErr, _ := d.PopErrorScope()
			if buf.Valid() != tt.valid {
				t.Errorf("Valid() = %v, want %v (error: %v)", buf.Valid(), tt.valid, gpuErr)
			}
			if buf.Size() != tt.desc.Size || buf.Usage() != tt.desc.Usage {
				t.Errorf("Size(), Usage() = %d, %v", buf.Size(), buf.Usage())
			}
		})
	}
}
