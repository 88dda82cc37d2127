package versionchain

import "sync"

// Locker hands out one exclusive lock per entity ID.
// Idle locks are dropped so the map only holds IDs that are currently in use.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*entityLock
}

type entityLock struct {
	mu   sync.Mutex
	refs int
}

// NewLocker creates an empty locker
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*entityLock)}
}

// Lock blocks until the caller holds the lock for id and returns the unlock function.
func (l *Locker) Lock(id string) (unlock func()) {
	l.mu.Lock()
	el, ok := l.locks[id]
	if !ok {
		el = &entityLock{}
		l.locks[id] = el
	}
	el.refs++
	l.mu.Unlock()

	el.mu.Lock()

	return func() {
		el.mu.Unlock()

		l.mu.Lock()
		el.refs--
		if el.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// held returns how many IDs currently have waiters or holders
func (l *Locker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
