package session

import "sync"

// KeyedMutex serializes work per user key so no two steps of the same
// user's flow run concurrently, while different users interleave freely.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewKeyedMutex instantiates the per-key lock table.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[int64]*sync.Mutex)}
}

// Lock acquires the lock for the given key, creating it on first use.
// Entries are kept for the process lifetime; the active-user set is small.
func (k *KeyedMutex) Lock(key int64) {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()
	lock.Lock()
}

// Unlock releases the lock for the given key.
func (k *KeyedMutex) Unlock(key int64) {
	k.mu.Lock()
	lock := k.locks[key]
	k.mu.Unlock()
	if lock != nil {
		lock.Unlock()
	}
}
