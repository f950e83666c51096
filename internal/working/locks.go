package working

import "sync"

// profileLocks serializes writers of the same profile.
type profileLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newProfileLocks() *profileLocks {
	return &profileLocks{m: make(map[string]*sync.Mutex)}
}

func (l *profileLocks) lock(profileID string) func() {
	l.mu.Lock()
	mu, ok := l.m[profileID]
	if !ok {
		mu = &sync.Mutex{}
		l.m[profileID] = mu
	}
	l.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// overflowGuard marks profiles with an overflow resolution in flight.
// Acquisition never blocks.
type overflowGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newOverflowGuard() *overflowGuard {
	return &overflowGuard{active: make(map[string]struct{})}
}

func (g *overflowGuard) tryAcquire(profileID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[profileID]; busy {
		return false
	}
	g.active[profileID] = struct{}{}
	return true
}

func (g *overflowGuard) release(profileID string) {
	g.mu.Lock()
	delete(g.active, profileID)
	g.mu.Unlock()
}
