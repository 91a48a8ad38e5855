package services

import "sync"

// taskLocks serializes writes per task id so two racing updates cannot
// interleave their read-modify-write of status and progress. Entries are
// small and never reclaimed; the working set is bounded by the number of
// live tasks.
type taskLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newTaskLocks() *taskLocks {
	return &taskLocks{locks: make(map[uint]*sync.Mutex)}
}

// lock acquires the per-task mutex and returns its unlock func.
func (l *taskLocks) lock(id uint) func() {
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
