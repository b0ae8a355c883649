// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package devicepool hands out GPU devices to running test cases.
//
// Each device has at most one holder. A reservation reuses an idle device
// whose enabled features match the request exactly, so that a case never
// observes features it did not ask for; otherwise a new device is created
// while under the cap, and beyond it the caller blocks until a release.
package devicepool

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/cts"
	"github.com/gogpu/cts/gpu"
)

var (
	// ErrUnsupported is returned when the factory cannot create a device
	// meeting the requirements. Fixtures turn it into a skip.
	ErrUnsupported = errors.New("devicepool: requirements not supported")

	// ErrClosed is returned by Reserve after Close.
	ErrClosed = errors.New("devicepool: pool closed")
)

// Factory creates devices for the pool.
type Factory interface {
	// Supports reports whether devices meeting req can be created.
	Supports(req gpu.Requirements) bool
	// Create opens a device with exactly the required features.
	Create(req gpu.Requirements) (*gpu.Device, error)
}

// HeadlessFactory creates devices on a HAL backend (noop by default).
type HeadlessFactory struct {
	// Available is the set of features devices may be created with.
	Available gputypes.Features
	// Options are passed to gpu.Open ahead of the feature option.
	Options []gpu.Option
}

// Supports reports whether every required feature is available.
func (f HeadlessFactory) Supports(req gpu.Requirements) bool {
	return f.Available.ContainsAll(req.Features)
}

// Create opens a device with req's features.
func (f HeadlessFactory) Create(req gpu.Requirements) (*gpu.Device, error) {
	opts := append(slices.Clip(f.Options), gpu.WithFeatures(req.Features))
	return gpu.Open(opts...)
}

// Option configures a Pool.
type Option func(*Pool)

// WithMaxDevices caps the number of live devices. n <= 0 means no cap.
func WithMaxDevices(n int) Option {
	return func(p *Pool) { p.max = n }
}

// Pool is a set of reusable devices. Pool is safe for concurrent use.
type Pool struct {
	factory Factory
	max     int

	mu      sync.Mutex
	idle    []*gpu.Device
	held    map[*gpu.Device]struct{}
	pending int // devices being created outside the lock
	closed  bool
	changed chan struct{} // closed and replaced on every release
}

// New creates an empty pool.
func New(factory Factory, opts ...Option) *Pool {
	p := &Pool{
		factory: factory,
		held:    make(map[*gpu.Device]struct{}),
		changed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stats is a snapshot of pool occupancy.
type Stats struct {
	Idle int
	Held int
}

// Stats returns current occupancy.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Idle: len(p.idle), Held: len(p.held)}
}

// Reserve returns a device meeting req for the caller's exclusive use.
// It blocks while the pool is at capacity and every live device is held,
// until a device is released or ctx is done. A done ctx fails the
// reservation even when a device is free.
func (p *Pool) Reserve(ctx context.Context, req gpu.Requirements) (*gpu.Device, error) {
	if !p.factory.Supports(req) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, req)
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrClosed
		}
		if d := p.takeIdle(req); d != nil {
			p.held[d] = struct{}{}
			p.mu.Unlock()
			cts.Logger().Debug("devicepool: reused device", "device", d.Label(), "features", req.String())
			return d, nil
		}
		if p.max <= 0 || len(p.idle)+len(p.held)+p.pending < p.max || p.evictIdle() {
			p.pending++
			p.mu.Unlock()
			return p.create(req)
		}
		wait := p.changed
		p.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// create opens a device outside the lock in a slot counted by pending,
// then registers it as held.
func (p *Pool) create(req gpu.Requirements) (*gpu.Device, error) {
	d, err := p.factory.Create(req)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending--
	if err != nil {
		p.broadcast()
		return nil, fmt.Errorf("devicepool: create device: %w", err)
	}
	if p.closed {
		d.Destroy()
		return nil, ErrClosed
	}
	p.held[d] = struct{}{}
	cts.Logger().Debug("devicepool: created device", "device", d.Label(), "features", req.String())
	return d, nil
}

// takeIdle removes and returns an idle device whose features equal req's.
// Caller must hold p.mu.
func (p *Pool) takeIdle(req gpu.Requirements) *gpu.Device {
	for i, d := range p.idle {
		if d.Features() == req.Features {
			p.idle = slices.Delete(p.idle, i, i+1)
			return d
		}
	}
	return nil
}

// evictIdle destroys the oldest idle device to make room.
// Caller must hold p.mu.
func (p *Pool) evictIdle() bool {
	if len(p.idle) == 0 {
		return false
	}
	d := p.idle[0]
	p.idle = p.idle[1:]
	d.Destroy()
	return true
}

// Release returns a reserved device. Lost devices are dropped instead of
// reused. Releasing a device that is not held panics.
func (p *Pool) Release(d *gpu.Device) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.held[d]; !ok {
		panic("devicepool: release of a device that is not held")
	}
	delete(p.held, d)

	switch {
	case p.closed:
		d.Destroy()
	case d.IsLost():
		cts.Logger().Debug("devicepool: dropped lost device", "device", d.Label(), "reason", d.LostReason())
	default:
		p.idle = append(p.idle, d)
	}
	p.broadcast()
}

// Close destroys idle devices and fails pending and future reservations.
// Held devices are destroyed when released. Close is idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for _, d := range p.idle {
		d.Destroy()
	}
	p.idle = nil
	p.broadcast()
}

// Caller must hold p.mu.
func (p *Pool) broadcast() {
	close(p.changed)
	p.changed = make(chan struct{})
}
