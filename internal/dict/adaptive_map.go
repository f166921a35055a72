// Package dict implements the dictionary builder (C6): frequency-based
// admission (A1), enum/boolean column promotion (A2), and the adaptive map
// that backs frequency counting behind a sync.RWMutex-guarded registry.
package dict

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

// stat tracks a distinct string's occurrence count and total byte length,
// updated with lock-free atomics so concurrent column scans never block
// each other once the entry itself exists.
type stat struct {
	count    atomic.Int64
	totalLen atomic.Int64
}

func (s *stat) add(length int) {
	s.count.Add(1)
	s.totalLen.Add(int64(length))
}

// Frequency reports occurrence count and mean byte length for one string.
type Frequency struct {
	Count    int64
	MeanLen  float64
}

// shard is one partition of the upgraded sharded map.
type shard struct {
	mu sync.Mutex
	m  map[string]*stat
}

// AdaptiveMap starts as a single mutex-guarded map and transparently
// upgrades to a fixed set of sharded maps once it holds at least threshold
// distinct keys. Callers observe the same Add/Stats operations regardless
// of which backend is active.
type AdaptiveMap struct {
	threshold int
	numShards int

	mu       sync.RWMutex
	simple   map[string]*stat
	shards   []*shard
	upgraded bool
}

// NewAdaptiveMap builds an AdaptiveMap that upgrades at threshold distinct
// keys.
func NewAdaptiveMap(threshold int) *AdaptiveMap {
	if threshold < 1 {
		threshold = 1
	}
	return &AdaptiveMap{
		threshold: threshold,
		numShards: 16,
		simple:    make(map[string]*stat),
	}
}

// Add records one occurrence of s with the given byte length, creating its
// entry on first sight. Safe for concurrent use across goroutines scanning
// different columns.
func (m *AdaptiveMap) Add(s string, length int) {
	m.mu.RLock()
	if m.upgraded {
		sh := m.shardFor(s)
		m.mu.RUnlock()
		sh.getOrCreate(s).add(length)
		return
	}
	if st, ok := m.simple[s]; ok {
		m.mu.RUnlock()
		st.add(length)
		return
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upgraded {
		sh := m.shardForLocked(s)
		m.mu.Unlock()
		sh.getOrCreate(s).add(length)
		m.mu.Lock()
		return
	}
	if st, ok := m.simple[s]; ok {
		st.add(length)
		return
	}
	if len(m.simple)+1 >= m.threshold {
		m.upgradeLocked()
		sh := m.shardForLocked(s)
		sh.getOrCreate(s).add(length)
		return
	}
	st := &stat{}
	st.add(length)
	m.simple[s] = st
}

func (m *AdaptiveMap) upgradeLocked() {
	m.shards = make([]*shard, m.numShards)
	for i := range m.shards {
		m.shards[i] = &shard{m: make(map[string]*stat)}
	}
	for k, v := range m.simple {
		sh := m.shardForLocked(k)
		sh.m[k] = v
	}
	m.simple = nil
	m.upgraded = true
}

func (m *AdaptiveMap) shardFor(s string) *shard {
	return m.shards[shardIndex(s, len(m.shards))]
}

func (m *AdaptiveMap) shardForLocked(s string) *shard {
	return m.shards[shardIndex(s, len(m.shards))]
}

func shardIndex(s string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32()) % n
}

func (sh *shard) getOrCreate(s string) *stat {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	st, ok := sh.m[s]
	if !ok {
		st = &stat{}
		sh.m[s] = st
	}
	return st
}

// Get returns the recorded Frequency for s, if present.
func (m *AdaptiveMap) Get(s string) (Frequency, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var st *stat
	if m.upgraded {
		sh := m.shardFor(s)
		sh.mu.Lock()
		st = sh.m[s]
		sh.mu.Unlock()
	} else {
		st = m.simple[s]
	}
	if st == nil {
		return Frequency{}, false
	}
	count := st.count.Load()
	total := st.totalLen.Load()
	mean := 0.0
	if count > 0 {
		mean = float64(total) / float64(count)
	}
	return Frequency{Count: count, MeanLen: mean}, true
}
