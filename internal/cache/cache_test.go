// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cache

import (
	"sync"
	"testing"
)

func TestGetSet(t *testing.T) {
	c := New[string, int](4)
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v, want 1, true", v, ok)
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) found missing key")
	}
	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) after overwrite = %d, want 2", v)
	}
	if got := c.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](2)
	var evicted []int
	c.OnEvict(func(k, _ int) { evicted = append(evicted, k) })

	c.Set(1, 1)
	c.Set(2, 2)
	c.Get(1) // 2 is now least recently used
	c.Set(3, 3)

	if _, ok := c.Get(2); ok {
		t.Error("key 2 survived eviction")
	}
	if _, ok := c.Get(1); !ok {
		t.Error("key 1 was evicted")
	}
	if len(evicted) != 1 || evicted[0] != 2 {
		t.Errorf("evicted = %v, want [2]", evicted)
	}
	if s := c.Stats(); s.Evictions != 1 {
		t.Errorf("Stats().Evictions = %d, want 1", s.Evictions)
	}
}

func TestUnlimited(t *testing.T) {
	c := New[int, int](0)
	for i := range 1000 {
		c.Set(i, i)
	}
	if got := c.Len(); got != 1000 {
		t.Errorf("Len() = %d, want 1000", got)
	}
}

func TestGetOrCreate(t *testing.T) {
	c := New[string, int](8)
	calls := 0
	create := func() int { calls++; return 7 }

	if v := c.GetOrCreate("k", create); v != 7 {
		t.Errorf("GetOrCreate = %d, want 7", v)
	}
	if v := c.GetOrCreate("k", create); v != 7 {
		t.Errorf("GetOrCreate = %d, want 7", v)
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.HitRate != 0.5 {
		t.Errorf("Stats() = %+v, want 1 hit, 1 miss, 0.5 rate", s)
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := New[int, int](8)
	cleared := 0
	c.OnEvict(func(int, int) { cleared++ })
	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(3, 3)

	if !c.Delete(2) {
		t.Error("Delete(2) = false")
	}
	if c.Delete(2) {
		t.Error("second Delete(2) = true")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	if cleared != 2 {
		t.Errorf("eviction callback ran %d times on Clear, want 2", cleared)
	}
	c.Set(4, 4)
	if v, ok := c.Get(4); !ok || v != 4 {
		t.Error("cache unusable after Clear")
	}
}

func TestConcurrentGetOrCreate(t *testing.T) {
	c := New[int, int](16)
	var mu sync.Mutex
	created := map[int]int{}
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 32 {
				k := (i + g) % 8
				c.GetOrCreate(k, func() int {
					mu.Lock()
					created[k]++
					mu.Unlock()
					return k * k
				})
			}
		}()
	}
	wg.Wait()
	for k, n := range created {
		if n != 1 {
			t.Errorf("key %d created %d times", k, n)
		}
	}
}
