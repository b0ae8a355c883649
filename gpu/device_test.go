// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

func openTestDevice(t *testing.T, opts ...Option) *Device {
	t.Helper()
	d, err := Open(opts...)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(d.Destroy)
	return d
}

func TestOpenDefaults(t *testing.T) {
	d := openTestDevice(t)
	if d.Limits() != gputypes.DefaultLimits() {
		t.Error("Limits() != DefaultLimits()")
	}
	if !d.Features().IsEmpty() {
		t.Errorf("Features() = %v, want empty", d.Features())
	}
	if d.Label() == "" || d.ID() == 0 {
		t.Errorf("Label() = %q, ID() = %d", d.Label(), d.ID())
	}
	if got := d.AdapterInfo().Name; got != "Noop Adapter" {
		t.Errorf("AdapterInfo().Name = %q, want Noop Adapter", got)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(WithBackend(gputypes.BackendBrowserWebGPU))
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("Open() error = %v, want ErrBackendUnavailable", err)
	}
}

func TestOpenFeaturesOnNoop(t *testing.T) {
	d := openTestDevice(t, WithFeatures(gputypes.Features(gputypes.FeatureTextureCompressionBC)), WithLabel("bc"))
	if !d.HasFeature(gputypes.FeatureTextureCompressionBC) {
		t.Error("feature not enabled")
	}
	if d.Label() != "bc" {
		t.Errorf("Label() = %q, want bc", d.Label())
	}
}

func TestProvider(t *testing.T) {
	d := openTestDevice(t)
	var p gpucontext.DeviceProvider = d.Provider()
	if p.Device() == nil || p.Queue() == nil {
		t.Error("provider has no HAL device or queue")
	}
	if p.Adapter() != nil {
		t.Error("Adapter() != nil")
	}
	if p.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Errorf("SurfaceFormat() = %v, want Undefined", p.SurfaceFormat())
	}
	if got := p.AdapterInfo().Type; got != gpucontext.AdapterTypeUnknown {
		t.Errorf("AdapterInfo().Type = %v, want Unknown", got)
	}
}

// =============================================================================
// Error scopes
// =============================================================================

func invalidBuffer(t *testing.T, d *Device) {
	t.Helper()
	if _, err := d.CreateBuffer(&gputypes.BufferDescriptor{Size: 4}); err != nil {
		t.Fatal(err)
	}
}

func TestErrorScopeCapturesFirstError(t *testing.T) {
	d := openTestDevice(t)
	if err := d.PushErrorScope(ErrorFilterValidation); err != nil {
		t.Fatal(err)
	}
	invalidBuffer(t, d)
	if _, err := d.CreateTexture(&gputypes.TextureDescriptor{}); err != nil {
		t.Fatal(err)
	}
	gpuErr, err := d.PopErrorScope()
	if err != nil {
		t.Fatal(err)
	}
	var ge *Error
	if !errors.As(gpuErr, &ge) || ge.Op != "CreateBuffer" {
		t.Errorf("PopErrorScope() = %v, want CreateBuffer validation error", gpuErr)
	}
	if !IsValidation(gpuErr) {
		t.Error("IsValidation() = false")
	}
	if errs := d.UncapturedErrors(); len(errs) != 0 {
		t.Errorf("UncapturedErrors() = %v, want none", errs)
	}
}

func TestErrorScopeFilterMismatch(t *testing.T) {
	d := openTestDevice(t)
	_ = d.PushErrorScope(ErrorFilterValidation)
	_ = d.PushErrorScope(ErrorFilterOutOfMemory)
	invalidBuffer(t, d)

	if gpuErr, _ := d.PopErrorScope(); gpuErr != nil {
		t.Errorf("out-of-memory scope captured %v", gpuErr)
	}
	if gpuErr, _ := d.PopErrorScope(); gpuErr == nil {
		t.Error("validation scope captured nothing")
	}
}

func TestUncapturedErrors(t *testing.T) {
	d := openTestDevice(t)
	invalidBuffer(t, d)
	invalidBuffer(t, d)
	if errs := d.UncapturedErrors(); len(errs) != 2 {
		t.Errorf("len(UncapturedErrors()) = %d, want 2", len(errs))
	}
	if errs := d.UncapturedErrors(); len(errs) != 0 {
		t.Errorf("UncapturedErrors() not drained: %v", errs)
	}
}

func TestPopEmptyErrorScope(t *testing.T) {
	d := openTestDevice(t)
	if _, err := d.PopErrorScope(); !errors.Is(err, ErrEmptyErrorScope) {
		t.Errorf("PopErrorScope() error = %v, want ErrEmptyErrorScope", err)
	}
}

// =============================================================================
// Loss
// =============================================================================

func TestDestroyLosesDevice(t *testing.T) {
	d, err := Open()
	if err != nil {
		t.Fatal(err)
	}
	tex, _ := d.CreateTexture(&gputypes.TextureDescriptor{
		Size: gputypes.Extent3D{Width: 4, Height: 4, DepthOrArrayLayers: 1}, MipLevelCount: 1, SampleCount: 1,
		Dimension: gputypes.TextureDimension2D, Format: gputypes.TextureFormatRGBA8Unorm, Usage: gputypes.TextureUsageCopyDst,
	})
	d.Destroy()
	d.Destroy()

	select {
	case <-d.Lost():
	default:
		t.Fatal("Lost() not closed after Destroy")
	}
	if !d.IsLost() || d.LostReason() != "destroyed" {
		t.Errorf("IsLost() = %v, LostReason() = %q", d.IsLost(), d.LostReason())
	}
	if _, err := d.CreateBuffer(&gputypes.BufferDescriptor{Size: 4, Usage: gputypes.BufferUsageCopyDst}); !errors.Is(err, ErrDeviceLost) {
		t.Errorf("CreateBuffer on lost device error = %v, want ErrDeviceLost", err)
	}
	if err := d.PushErrorScope(ErrorFilterValidation); !errors.Is(err, ErrDeviceLost) {
		t.Errorf("PushErrorScope on lost device error = %v, want ErrDeviceLost", err)
	}
	if gpuErr, err := d.PopErrorScope(); gpuErr != nil || err != nil {
		t.Errorf("PopErrorScope on lost device = %v, %v, want nil, nil", gpuErr, err)
	}
	tex.Destroy() // must not touch the destroyed HAL device
}

func TestProbeAdapter(t *testing.T) {
	info, err := ProbeAdapter()
	if err != nil && !errors.Is(err, ErrNoAdapter) {
		t.Fatalf("ProbeAdapter() error = %v, want nil or ErrNoAdapter", err)
	}
	if err == nil && info.Name == "" {
		t.Error("ProbeAdapter() returned an unnamed adapter")
	}
}
