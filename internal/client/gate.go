package client

import (
	"sync"
	"time"
)

// gate lets one bulk submit through at a time and remembers when it started.
type gate struct {
	mu        sync.RWMutex
	busy      bool
	startedAt time.Time
}

func (g *gate) tryEnter() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.busy {
		return false
	}
	g.busy = true
	g.startedAt = time.Now()
	return true
}

func (g *gate) leave() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.busy = false
}

func (g *gate) isBusy() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.busy
}

func (g *gate) elapsed() time.Duration {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.busy {
		return 0
	}
	return time.Since(g.startedAt)
}
