package reconcile

import "sync"

// keyedMutex provides mutual exclusion scoped to a string key. Locks
// are retained for the lifetime of the holder; key cardinality is
// bounded by the batch (devices, software version pairs).
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()

	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}

	k.mu.Unlock()

	m.Lock()

	return m.Unlock
}
