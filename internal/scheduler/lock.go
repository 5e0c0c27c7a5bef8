package scheduler

import "sync"

// JobLock hands out one non-blocking lock per job name. Different names
// never contend.
type JobLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewJobLock() *JobLock {
	return &JobLock{locks: make(map[string]*sync.Mutex)}
}

// TryAcquire returns a release func and true, or false when job is already
// running.
func (l *JobLock) TryAcquire(job string) (func(), bool) {
	l.mu.Lock()
	m, ok := l.locks[job]
	if !ok {
		m = &sync.Mutex{}
		l.locks[job] = m
	}
	l.mu.Unlock()

	if !m.TryLock() {
		return nil, false
	}
	return m.Unlock, true
}
