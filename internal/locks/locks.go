// Package locks provides per-key advisory locks used to keep maintenance
// jobs such as a weekly-stats rebuild from running twice for one user.
package locks

import (
	"context"
	"sync"
)

// Locker hands out non-blocking exclusive locks by key.
type Locker interface {
	// TryLock returns acquired=false without error when the key is held.
	TryLock(ctx context.Context, key string) (release func(context.Context) error, acquired bool, err error)
}

// MemoryLocker is a process-local Locker.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

func (l *MemoryLocker) TryLock(_ context.Context, key string) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, false, nil
	}
	l.held[key] = struct{}{}

	var once sync.Once
	release := func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}
	return release, true, nil
}
