package orchestrator

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// cancelRegistry tracks the context.CancelFunc for every actively
// running session, grounded on the teacher's WorkerPool.activeSessions
// map — simplified here to back one goroutine per session instead of a
// polling worker pool, since multi-node scaling is out of scope.
type cancelRegistry struct {
	mu     sync.RWMutex
	active map[uuid.UUID]context.CancelFunc
}

func newCancelRegistry() *cancelRegistry {
	return &cancelRegistry{active: make(map[uuid.UUID]context.CancelFunc)}
}

func (r *cancelRegistry) register(sessionID uuid.UUID, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[sessionID] = cancel
}

func (r *cancelRegistry) unregister(sessionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, sessionID)
}

// cancel signals the session's goroutine to stop, reporting whether
// one was actually running.
func (r *cancelRegistry) cancel(sessionID uuid.UUID) bool {
	r.mu.RLock()
	cancelFn, ok := r.active[sessionID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	cancelFn()
	return true
}

func (r *cancelRegistry) isActive(sessionID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.active[sessionID]
	return ok
}

func (r *cancelRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}
