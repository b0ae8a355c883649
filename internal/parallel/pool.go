// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package parallel runs test cases on a fixed set of worker goroutines.
package parallel

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of workers, each with its own queue. An idle worker
// steals from the other queues, so one slow case does not hold back the
// cases queued behind it.
//
// Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// New starts a pool with the given number of workers. If workers is 0 or
// negative, GOMAXPROCS is used.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := max(workers*4, 8)

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case <-p.done:
			drain(own)
			return
		case work := <-own:
			work()
			continue
		default:
		}
		if stolen := p.steal(id); stolen != nil {
			stolen()
			continue
		}
		select {
		case <-p.done:
			drain(own)
			return
		case work := <-own:
			work()
		}
	}
}

func drain(queue chan func()) {
	for {
		select {
		case work := <-queue:
			work()
		default:
			return
		}
	}
}

func (p *Pool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case work := <-p.queues[i]:
			return work
		default:
		}
	}
	return nil
}

// PanicError carries a panic raised by a work item.
type PanicError struct {
	Index int
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("parallel: item %d panicked: %v", e.Index, e.Value)
}

// ForEach calls fn(i) for every i in [0, n) on the workers and waits for
// all calls to return. Items are queued round-robin in index order.
//
// If an item panics, the remaining items still run and ForEach re-panics
// on the caller's goroutine with a *PanicError for the lowest such index.
// On a closed pool ForEach runs every item on the caller's goroutine.
func (p *Pool) ForEach(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if !p.running.Load() {
		for i := range n {
			fn(i)
		}
		return
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		panicked *PanicError
	)
	run := func(i int) {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				mu.Lock()
				if panicked == nil || i < panicked.Index {
					panicked = &PanicError{Index: i, Value: r}
				}
				mu.Unlock()
			}
		}()
		fn(i)
	}

	wg.Add(n)
	for i := range n {
		select {
		case p.queues[i%p.workers] <- func() { run(i) }:
		case <-p.done:
			run(i)
		}
	}
	wg.Wait()

	if panicked != nil {
		panic(panicked)
	}
}

// Submit queues one work item on the shortest queue without waiting for it.
// It is a no-op on a closed pool.
func (p *Pool) Submit(fn func()) {
	if fn == nil || !p.running.Load() {
		return
	}
	idx := 0
	for i := 1; i < p.workers; i++ {
		if len(p.queues[i]) < len(p.queues[idx]) {
			idx = i
		}
	}
	select {
	case p.queues[idx] <- fn:
	case <-p.done:
	}
}

// Close stops the workers after they finish the queued work. Close is
// idempotent.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers.
func (p *Pool) Workers() int { return p.workers }

// IsRunning reports whether the pool accepts work.
func (p *Pool) IsRunning() bool { return p.running.Load() }
