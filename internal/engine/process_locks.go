package engine

import "sync"

// processLocks hands out one mutex per process id. Entries are dropped once
// nobody holds or waits for them.
type processLocks struct {
	mu    sync.Mutex
	locks map[int64]*processLock
}

type processLock struct {
	sync.Mutex
	refs int
}

func (p *processLocks) lock(processID int64) (unlock func()) {
	p.mu.Lock()
	if p.locks == nil {
		p.locks = make(map[int64]*processLock)
	}
	l, ok := p.locks[processID]
	if !ok {
		l = &processLock{}
		p.locks[processID] = l
	}
	l.refs++
	p.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, processID)
		}
		p.mu.Unlock()
	}
}

func (p *processLocks) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.locks)
}
