// Package sync provides keyed locking primitives for per-session state.
package sync

import (
	"sync"
)

// KeyedMutex serializes operations per key without a global lock. Keys are
// hashed onto a fixed set of shards, so two sessions rarely contend and a
// hot session never blocks the rest.
type KeyedMutex struct {
	shards [32]sync.Mutex
}

// NewKeyedMutex creates a KeyedMutex with 32 shards.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{}
}

// Lock acquires the lock for the key's shard. Empty keys map to shard 0.
func (m *KeyedMutex) Lock(key string) {
	m.shards[m.shardFor(key)].Lock()
}

// Unlock releases the lock for the key's shard.
func (m *KeyedMutex) Unlock(key string) {
	m.shards[m.shardFor(key)].Unlock()
}

// WithLock runs fn while holding the key's lock.
func (m *KeyedMutex) WithLock(key string, fn func()) {
	m.Lock(key)
	defer m.Unlock(key)
	fn()
}

func (m *KeyedMutex) shardFor(key string) int {
	if key == "" {
		return 0
	}
	return int(hashString(key) % uint32(len(m.shards)))
}

// hashString is a 31-multiplier string hash, good enough for shard
// selection.
func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}
