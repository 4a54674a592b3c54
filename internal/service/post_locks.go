package service

import "sync"

// PostLocks serializes publish attempts per post id so two racing requests
// cannot both observe the same post as eligible and double-publish. The lock
// must be taken before the eligibility read and held through the mark-posted
// write. In-memory only: the deployment model is a single process.
type PostLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewPostLocks() *PostLocks {
	return &PostLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock blocks until the per-post lock is held and returns its unlock func.
func (l *PostLocks) Lock(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
