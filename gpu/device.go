// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/cts"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// The noop backend is always available; it backs headless devices.
	_ "github.com/gogpu/wgpu/hal/noop"
)

var nextDeviceID atomic.Uint64

// Options configures Open.
type Options struct {
	// Backend selects the HAL backend. BackendEmpty is the noop backend.
	Backend gputypes.Backend
	// Features are the optional features enabled on the device.
	Features gputypes.Features
	// Limits are the device limits. Zero means gputypes.DefaultLimits().
	Limits gputypes.Limits
	// Label names the device in logs.
	Label string
}

// Option configures Open.
type Option func(*Options)

// WithBackend selects the HAL backend.
func WithBackend(b gputypes.Backend) Option {
	return func(o *Options) { o.Backend = b }
}

// WithFeatures enables optional features.
func WithFeatures(f gputypes.Features) Option {
	return func(o *Options) { o.Features = f }
}

// WithLimits overrides the default limits.
func WithLimits(l gputypes.Limits) Option {
	return func(o *Options) { o.Limits = l }
}

// WithLabel names the device.
func WithLabel(label string) Option {
	return func(o *Options) { o.Label = label }
}

type errorScope struct {
	filter ErrorFilter
	err    *Error
}

// Device is a logical device with WebGPU validation semantics.
// Device is safe for concurrent use.
type Device struct {
	id       uint64
	label    string
	features gputypes.Features
	limits   gputypes.Limits
	provider *headlessProvider
	instance hal.Instance

	mu         sync.Mutex
	scopes     []errorScope
	uncaptured []error
	lost       chan struct{}
	lostReason string
}

// Open creates a device on the first suitable adapter of the selected
// backend. Discrete and integrated GPUs are preferred over others.
func Open(opts ...Option) (*Device, error) {
	o := Options{Backend: gputypes.BackendEmpty}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Limits == (gputypes.Limits{}) {
		o.Limits = gputypes.DefaultLimits()
	}

	backend, ok := hal.GetBackend(o.Backend)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, o.Backend)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := selectAdapter(adapters)

	// The noop backend validates nothing itself, so every feature the
	// validation layer knows can be enabled on it.
	if o.Backend != gputypes.BackendEmpty && !selected.Features.ContainsAll(o.Features) {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: adapter %q: %w", selected.Info.Name, ErrUnsupportedFeature)
	}
	halFeatures := o.Features.Intersect(selected.Features)
	open, err := selected.Adapter.Open(halFeatures, o.Limits)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}

	d := &Device{
		id:       nextDeviceID.Add(1),
		label:    o.Label,
		features: o.Features,
		limits:   o.Limits,
		provider: &headlessProvider{device: open.Device, queue: open.Queue, info: selected.Info},
		instance: instance,
		lost:     make(chan struct{}),
	}
	if d.label == "" {
		d.label = fmt.Sprintf("device-%d", d.id)
	}
	cts.Logger().Debug("gpu: device opened",
		"device", d.label, "adapter", selected.Info.Name, "backend", o.Backend.String())
	return d, nil
}

func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// ID returns a process-unique device number.
func (d *Device) ID() uint64 { return d.id }

// Label returns the device label.
func (d *Device) Label() string { return d.label }

// Features returns the enabled optional features.
func (d *Device) Features() gputypes.Features { return d.features }

// HasFeature reports whether f is enabled.
func (d *Device) HasFeature(f gputypes.Feature) bool { return d.features.Contains(f) }

// Limits returns the device limits.
func (d *Device) Limits() gputypes.Limits { return d.limits }

// Provider exposes the device to gpucontext consumers.
func (d *Device) Provider() gpucontext.DeviceProvider { return d.provider }

// AdapterInfo describes the adapter the device was opened on.
func (d *Device) AdapterInfo() gputypes.AdapterInfo { return d.provider.info }

// PushErrorScope starts capturing GPU errors matching filter.
func (d *Device) PushErrorScope(filter ErrorFilter) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.isLostLocked() {
		return ErrDeviceLost
	}
	d.scopes = append(d.scopes, errorScope{filter: filter})
	return nil
}

// PopErrorScope ends the innermost scope and returns the first GPU error it
// captured, or nil. The second result reports misuse: ErrEmptyErrorScope
// when no scope is open. On a lost device both results are nil.
func (d *Device) PopErrorScope() (gpuErr, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.isLostLocked() {
		return nil, nil
	}
	n := len(d.scopes)
	if n == 0 {
		return nil, ErrEmptyErrorScope
	}
	s := d.scopes[n-1]
	d.scopes = d.scopes[:n-1]
	if s.err == nil {
		return nil, nil
	}
	return s.err, nil
}

// UncapturedErrors returns and clears the GPU errors that no scope captured.
func (d *Device) UncapturedErrors() []error {
	d.mu.Lock()
	defer d.mu.Unlock()
	errs := d.uncaptured
	d.uncaptured = nil
	return errs
}

// raise delivers a GPU error to the innermost scope whose filter matches.
func (d *Device) raise(filter ErrorFilter, op, format string, args ...any) {
	e := &Error{Filter: filter, Op: op, Message: fmt.Sprintf(format, args...)}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.scopes) - 1; i >= 0; i-- {
		if d.scopes[i].filter != filter {
			continue
		}
		if d.scopes[i].err == nil {
			d.scopes[i].err = e
		}
		return
	}
	d.uncaptured = append(d.uncaptured, e)
	cts.Logger().Warn("gpu: uncaptured error", "device", d.label, "error", e)
}

// Destroy releases the HAL device and marks the device lost.
// Destroy is idempotent.
func (d *Device) Destroy() {
	d.lose("destroyed")
}

func (d *Device) lose(reason string) {
	d.mu.Lock()
	if d.isLostLocked() {
		d.mu.Unlock()
		return
	}
	d.lostReason = reason
	d.scopes = nil
	close(d.lost)
	d.mu.Unlock()

	if d.provider.device != nil {
		d.provider.device.Destroy()
	}
	if d.instance != nil {
		d.instance.Destroy()
	}
	cts.Logger().Debug("gpu: device lost", "device", d.label, "reason", reason)
}

// Lost returns a channel closed when the device is lost.
func (d *Device) Lost() <-chan struct{} { return d.lost }

// IsLost reports whether the device has been lost.
func (d *Device) IsLost() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isLostLocked()
}

// LostReason returns why the device was lost, or "".
func (d *Device) LostReason() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lostReason
}

func (d *Device) isLostLocked() bool {
	select {
	case <-d.lost:
		return true
	default:
		return false
	}
}

func (d *Device) halDev() hal.Device {
	return halDevice(d.provider)
}
