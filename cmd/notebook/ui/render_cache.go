package ui

import (
	"hash/fnv"
	"strconv"
	"sync"
)

// RenderCache memoizes rendered transcript turns. Turns are immutable once
// appended, so a turn's output only changes with the width or render mode.
type RenderCache struct {
	mu      sync.Mutex
	entries map[uint64]string
	maxSize int
	hits    int
	misses  int
}

// NewRenderCache creates a cache holding at most maxSize entries.
func NewRenderCache(maxSize int) *RenderCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &RenderCache{
		entries: make(map[uint64]string, maxSize),
		maxSize: maxSize,
	}
}

// TurnKey derives the cache key for one rendered turn.
func TurnKey(role, content string, width int, markdown bool) uint64 {
	h := fnv.New64a()
	h.Write([]byte(role))
	h.Write([]byte{0})
	h.Write([]byte(content))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(width)))
	if markdown {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// GetOrCompute returns the cached output for key, rendering it on a miss.
// When full, the cache is emptied before storing; transcripts only grow, so
// the old entries are the least likely to be asked for again after a resize.
func (rc *RenderCache) GetOrCompute(key uint64, compute func() string) string {
	rc.mu.Lock()
	if out, ok := rc.entries[key]; ok {
		rc.hits++
		rc.mu.Unlock()
		return out
	}
	rc.misses++
	rc.mu.Unlock()

	out := compute()

	rc.mu.Lock()
	if len(rc.entries) >= rc.maxSize {
		rc.entries = make(map[uint64]string, rc.maxSize)
	}
	rc.entries[key] = out
	rc.mu.Unlock()
	return out
}

// Len returns the number of cached entries.
func (rc *RenderCache) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.entries)
}

// Stats returns hit and miss counts.
func (rc *RenderCache) Stats() (hits, misses int) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.hits, rc.misses
}
