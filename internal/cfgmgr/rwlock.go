package cfgmgr

import "sync"

// rwLock is a reader-preferring reader/writer lock. A reader is admitted
// whenever no write is in progress, even while a writer is waiting, so read
// sections may nest on one goroutine. A writer waits until no reader holds
// the lock.
type rwLock struct {
	mu      sync.Mutex
	cond    sync.Cond
	readers int
	writing bool
}

func newRWLock() *rwLock {
	l := &rwLock{}
	l.cond.L = &l.mu
	return l
}

func (l *rwLock) RLock() {
	l.mu.Lock()
	for l.writing {
		l.cond.Wait()
	}
	l.readers++
	l.mu.Unlock()
}

func (l *rwLock) RUnlock() {
	l.mu.Lock()
	l.readers--
	if l.readers == 0 {
		l.cond.Broadcast()
	}
	l.mu.Unlock()
}

func (l *rwLock) Lock() {
	l.mu.Lock()
	for l.writing || l.readers > 0 {
		l.cond.Wait()
	}
	l.writing = true
	l.mu.Unlock()
}

func (l *rwLock) Unlock() {
	l.mu.Lock()
	l.writing = false
	l.cond.Broadcast()
	l.mu.Unlock()
}
