// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cache

import "hash/fnv"

// ShardCount is the number of shards in a Sharded cache. It is a power of
// two so a shard is picked with a mask.
const ShardCount = 16

// Hasher picks the shard for a key.
type Hasher[K any] func(K) uint64

// StringHasher is the FNV-1a hash of s.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // never fails
	return h.Sum64()
}

// Sharded spreads keys over ShardCount independent LRU caches so that
// concurrent callers with different keys rarely share a lock.
type Sharded[K comparable, V any] struct {
	shards [ShardCount]*Cache[K, V]
	hash   Hasher[K]
}

// NewSharded creates a sharded cache holding at most capacity entries per
// shard. A capacity of 0 means unlimited.
func NewSharded[K comparable, V any](capacity int, hash Hasher[K]) *Sharded[K, V] {
	s := &Sharded[K, V]{hash: hash}
	for i := range s.shards {
		s.shards[i] = New[K, V](capacity)
	}
	return s
}

func (s *Sharded[K, V]) shard(key K) *Cache[K, V] {
	return s.shards[s.hash(key)&(ShardCount-1)]
}

// Get returns the cached value for key.
func (s *Sharded[K, V]) Get(key K) (V, bool) { return s.shard(key).Get(key) }

// Set stores value under key.
func (s *Sharded[K, V]) Set(key K, value V) { s.shard(key).Set(key, value) }

// GetOrCreate returns the cached value for key, calling create on a miss.
// create runs under the shard lock.
func (s *Sharded[K, V]) GetOrCreate(key K, create func() V) V {
	return s.shard(key).GetOrCreate(key, create)
}

// Delete removes key and reports whether it was present.
func (s *Sharded[K, V]) Delete(key K) bool { return s.shard(key).Delete(key) }

// Clear drops every entry in every shard.
func (s *Sharded[K, V]) Clear() {
	for _, c := range s.shards {
		c.Clear()
	}
}

// Len returns the total number of entries.
func (s *Sharded[K, V]) Len() int {
	n := 0
	for _, c := range s.shards {
		n += c.Len()
	}
	return n
}

// Stats sums the counters of all shards.
func (s *Sharded[K, V]) Stats() Stats {
	var total Stats
	for _, c := range s.shards {
		st := c.Stats()
		total.Len += st.Len
		total.Capacity += st.Capacity
		total.Hits += st.Hits
		total.Misses += st.Misses
		total.Evictions += st.Evictions
	}
	if n := total.Hits + total.Misses; n > 0 {
		total.HitRate = float64(total.Hits) / float64(n)
	}
	return total
}
