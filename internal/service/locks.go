package service

import "sync"

// queueLocks serializes writers per queue id. Entries are dropped once no goroutine holds or
// waits for them, so the map only grows with concurrently touched queues.
type queueLocks struct {
	mu    sync.Mutex
	locks map[uint]*queueLock
}

type queueLock struct {
	mu   sync.Mutex
	refs int
}

func newQueueLocks() *queueLocks {
	return &queueLocks{locks: make(map[uint]*queueLock)}
}

// lock blocks until the caller owns queueID and returns the matching unlock.
func (l *queueLocks) lock(queueID uint) func() {
	l.mu.Lock()
	ql, ok := l.locks[queueID]
	if !ok {
		ql = &queueLock{}
		l.locks[queueID] = ql
	}
	ql.refs++
	l.mu.Unlock()

	ql.mu.Lock()
	return func() {
		ql.mu.Unlock()
		l.mu.Lock()
		ql.refs--
		if ql.refs == 0 {
			delete(l.locks, queueID)
		}
		l.mu.Unlock()
	}
}

func (l *queueLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
