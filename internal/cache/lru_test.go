// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRU_GetAdd(t *testing.T) {
	c := NewLRU[int](3, time.Minute)

	c.Add("a", 1)
	c.Add("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("expected a=1, got %d (found=%v)", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	c.Add("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("expected replaced value 10, got %d", v)
	}

	hits, misses, size := c.Stats()
	if hits != 2 || misses != 1 || size != 2 {
		t.Errorf("expected 2 hits, 1 miss, size 2, got %d, %d, %d", hits, misses, size)
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string](3, time.Minute)
	c.Add("a", "A")
	c.Add("b", "B")
	c.Add("c", "C")

	// Touch a so b becomes the eviction candidate
	c.Get("a")
	c.Add("d", "D")

	tests := []struct {
		key  string
		want bool
	}{
		{"a", true},
		{"b", false},
		{"c", true},
		{"d", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if _, ok := c.Get(tt.key); ok != tt.want {
				t.Errorf("expected present=%v, got %v", tt.want, ok)
			}
		})
	}
}

func TestLRU_Expiry(t *testing.T) {
	c := NewLRU[int](3, time.Minute)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Add("a", 1)
	now = now.Add(59 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected entry before ttl")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("expected entry to expire after ttl")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry to be removed, got len %d", c.Len())
	}
}

func TestLRU_RemoveAndPurge(t *testing.T) {
	c := NewLRU[int](0, 0)
	if c.capacity != DefaultCapacity || c.ttl != DefaultTTL {
		t.Errorf("expected defaults, got capacity %d ttl %v", c.capacity, c.ttl)
	}

	c.Add("a", 1)
	c.Add("b", 2)

	if !c.Remove("a") {
		t.Error("expected Remove to report present key")
	}
	if c.Remove("a") {
		t.Error("expected second Remove to report missing key")
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Purge, got %d", c.Len())
	}
	c.Add("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Error("expected cache usable after Purge")
	}
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[int](50, time.Minute)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*200+i)%80)
				c.Add(key, i)
				c.Get(key)
				if i%50 == 0 {
					c.Purge()
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("expected at most 50 entries, got %d", c.Len())
	}
}
