package services

import (
	"context"
	"sync"
)

// WeekLocks serialises scheduling runs per week within the process.
// Runs for different weeks proceed concurrently.
type WeekLocks struct {
	mu    sync.Mutex
	locks map[string]*weekLock
}

type weekLock struct {
	held chan struct{}
	refs int
}

// NewWeekLocks creates an empty lock set
func NewWeekLocks() *WeekLocks {
	return &WeekLocks{locks: make(map[string]*weekLock)}
}

// Lock blocks until the week's lock is held or ctx is done.
// The returned unlock function is safe to call more than once.
func (l *WeekLocks) Lock(ctx context.Context, weekStart string) (func(), error) {
	l.mu.Lock()
	wl, ok := l.locks[weekStart]
	if !ok {
		wl = &weekLock{held: make(chan struct{}, 1)}
		l.locks[weekStart] = wl
	}
	wl.refs++
	l.mu.Unlock()

	select {
	case wl.held <- struct{}{}:
	case <-ctx.Done():
		l.release(weekStart, wl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-wl.held
			l.release(weekStart, wl)
		})
	}, nil
}

// Held returns the number of weeks with a holder or waiter
func (l *WeekLocks) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *WeekLocks) release(weekStart string, wl *weekLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	wl.refs--
	if wl.refs == 0 {
		delete(l.locks, weekStart)
	}
}
