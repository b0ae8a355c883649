// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// Requirements lists what a test needs from a device.
type Requirements struct {
	Features gputypes.Features
}

// Require returns Requirements for the given features.
func Require(features ...gputypes.Feature) Requirements {
	var r Requirements
	for _, f := range features {
		r.Features.Insert(f)
	}
	return r
}

// Union returns requirements satisfying both r and o.
func (r Requirements) Union(o Requirements) Requirements {
	return Requirements{Features: r.Features.Union(o.Features)}
}

// SatisfiedBy reports whether d meets the requirements.
func (r Requirements) SatisfiedBy(d *Device) bool {
	return d.Features().ContainsAll(r.Features)
}

// String lists the required features, or "none".
func (r Requirements) String() string {
	if r.Features.IsEmpty() {
		return "none"
	}
	var names []string
	for f := gputypes.Feature(1); f != 0 && gputypes.Features(f) <= r.Features; f <<= 1 {
		if r.Features.Contains(f) {
			names = append(names, f.String())
		}
	}
	return strings.Join(names, ",")
}

// ParseFeature resolves a feature name. Both the Go spelling
// ("TextureCompressionBC") and the WebGPU spelling
// ("texture-compression-bc") are accepted.
func ParseFeature(name string) (gputypes.Feature, error) {
	want := normalizeFeature(name)
	for f := gputypes.Feature(1); f != 0; f <<= 1 {
		s := f.String()
		if s == "Unknown" {
			break
		}
		if normalizeFeature(s) == want {
			return f, nil
		}
	}
	return 0, fmt.Errorf("gpu: unknown feature %q: %w", name, ErrUnsupportedFeature)
}

func normalizeFeature(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer("-", "", "_", "").Replace(s)
}
