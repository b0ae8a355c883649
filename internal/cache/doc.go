// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cache provides a small generic LRU cache and a sharded variant
// for keys hit from many goroutines.
//
// The reference device uses it to memoize WGSL compilation: the same shader
// source is compiled once per process no matter how many cases or devices
// ask for it.
//
//	c := cache.NewSharded[string, []uint32](64, cache.StringHasher)
//	words := c.GetOrCreate(src, func() []uint32 { return compile(src) })
//
// Cache and Sharded are safe for concurrent use and must not be copied after creation.
package cache
