// Package shardmap provides a string-keyed map split into independently
// locked segments. A key's segment is chosen by farmhash, so writers touching
// different keys rarely contend on the same lock.
package shardmap

import (
	"sort"
	"sync"

	farmhash "github.com/leemcloughlin/gofarmhash"
)

const DefaultShards = 32

type segment[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// Map is safe for concurrent use. Values are never replaced once stored
// through GetOrCreate.
type Map[V any] struct {
	segments []*segment[V]
}

// New creates a Map with the given number of segments. capacity is the
// expected total number of keys and only pre-sizes the segment maps.
func New[V any](shards, capacity int) *Map[V] {
	if shards <= 0 {
		shards = DefaultShards
	}
	segs := make([]*segment[V], shards)
	for i := range segs {
		segs[i] = &segment[V]{items: make(map[string]V, capacity/shards)}
	}
	return &Map[V]{segments: segs}
}

func (m *Map[V]) segmentFor(key string) *segment[V] {
	h := farmhash.Hash32([]byte(key))
	return m.segments[int(h%uint32(len(m.segments)))]
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key string) (V, bool) {
	seg := m.segmentFor(key)
	seg.mu.RLock()
	defer seg.mu.RUnlock()
	v, ok := seg.items[key]
	return v, ok
}

// GetOrCreate returns the value stored under key, calling create and storing
// its result when the key is absent. The lookup and the insertion happen
// under the same segment lock, so two callers racing on a new key both get
// the single stored value. created reports whether this call stored it.
func (m *Map[V]) GetOrCreate(key string, create func() V) (v V, created bool) {
	seg := m.segmentFor(key)

	seg.mu.RLock()
	v, ok := seg.items[key]
	seg.mu.RUnlock()
	if ok {
		return v, false
	}

	seg.mu.Lock()
	defer seg.mu.Unlock()
	if v, ok = seg.items[key]; ok {
		return v, false
	}
	v = create()
	seg.items[key] = v
	return v, true
}

// Len returns the total number of keys across all segments.
func (m *Map[V]) Len() int {
	n := 0
	for _, seg := range m.segments {
		seg.mu.RLock()
		n += len(seg.items)
		seg.mu.RUnlock()
	}
	return n
}

// Range calls fn for every key/value pair until fn returns false. Each
// segment is read-locked while it is visited; fn must not write to the map.
func (m *Map[V]) Range(fn func(key string, v V) bool) {
	for _, seg := range m.segments {
		seg.mu.RLock()
		for k, v := range seg.items {
			if !fn(k, v) {
				seg.mu.RUnlock()
				return
			}
		}
		seg.mu.RUnlock()
	}
}

// Keys returns all keys in ascending order.
func (m *Map[V]) Keys() []string {
	keys := make([]string, 0, m.Len())
	m.Range(func(k string, _ V) bool {
		keys = append(keys, k)
		return true
	})
	sort.Strings(keys)
	return keys
}

// Shards returns the number of segments.
func (m *Map[V]) Shards() int {
	return len(m.segments)
}
