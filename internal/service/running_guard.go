package service

import (
	"context"
	"sync"
)

// ExportedCommitGuard is an exported alias so _test packages can test the guard.
type ExportedCommitGuard = commitGuard

// ─────────────────────────────────────────────────────────────
// commitGuard: prevents concurrent commits of the same session
// ─────────────────────────────────────────────────────────────

// commitGuard ensures only one commit per session key runs at a time
// and lets shutdown wait for in-flight saves.
type commitGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// TryLock attempts to mark key as committing. Returns false if a commit
// for key is already running.
func (g *commitGuard) TryLock(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, ok := g.running[key]; ok {
		return false
	}
	g.running[key] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock releases key. Must be called after TryLock returns true.
func (g *commitGuard) Unlock(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, key)
	g.wg.Done()
}

// Running reports whether a commit for key is in flight.
func (g *commitGuard) Running(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.running[key]
	return ok
}

// WaitAll blocks until all in-flight commits complete or ctx is cancelled.
func (g *commitGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
