package session

import "sync"

// KeyedMutex serializes work per key. Two near-simultaneous events for the
// same sender id must not interleave their read-modify-write of the session
// record; different senders never contend.
//
// Entries are reference counted and removed when the last holder unlocks,
// so the map does not grow with the number of users ever seen.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for key, blocking while another goroutine holds it.
func (km *KeyedMutex) Lock(key string) {
	km.mu.Lock()
	entry, ok := km.locks[key]
	if !ok {
		entry = &lockEntry{}
		km.locks[key] = entry
	}
	entry.refs++
	km.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the mutex for key.
func (km *KeyedMutex) Unlock(key string) {
	km.mu.Lock()
	entry, ok := km.locks[key]
	if ok {
		entry.refs--
		if entry.refs == 0 {
			delete(km.locks, key)
		}
	}
	km.mu.Unlock()

	if ok {
		entry.mu.Unlock()
	}
}
