package inject

import "sync"

// LockManager hands out one mutex per service name, serializing first-time
// resolution of a name when a registry is shared across goroutines.
type LockManager struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLockManager() *LockManager {
	return &LockManager{
		locks: make(map[string]*sync.Mutex),
	}
}

func (lm *LockManager) GetLockFor(name string) *sync.Mutex {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if lock, exists := lm.locks[name]; exists {
		return lock
	}

	lock := &sync.Mutex{}
	lm.locks[name] = lock
	return lock
}

func (lm *LockManager) ReleaseLock(name string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	delete(lm.locks, name)
}
