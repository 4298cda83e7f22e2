package admission

import (
	"context"
	"sync"
	"time"
)

type registryKey struct {
	variant Variant
	owner   string
}

// Registry keeps one live Engine per (variant, draft owner). Engines idle for
// longer than the configured timeout are dropped; their drafts stay persisted.
type Registry struct {
	deps Deps
	idle time.Duration

	mu      sync.Mutex
	engines map[registryKey]*Engine
}

func NewRegistry(deps Deps, idle time.Duration) *Registry {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Registry{deps: deps, idle: idle, engines: make(map[registryKey]*Engine)}
}

// Mount starts a fresh engine hydrated from the persisted draft, replacing any
// previous one for the same owner. It is what loading the form page does.
// An engine that is still submitting is kept and returned instead.
func (r *Registry) Mount(ctx context.Context, v Variant, owner string) *Engine {
	return r.install(ctx, v, owner, func(live *Engine) bool {
		return live.State() == StateSubmitting
	})
}

// Get returns the live engine, mounting one when there is none.
func (r *Registry) Get(ctx context.Context, v Variant, owner string) *Engine {
	r.mu.Lock()
	e, ok := r.engines[registryKey{v, owner}]
	r.mu.Unlock()
	if ok {
		return e
	}
	return r.install(ctx, v, owner, func(*Engine) bool { return true })
}

// install hydrates a new engine outside the lock, then stores it unless the
// engine found under the lock at that point should be kept.
func (r *Registry) install(ctx context.Context, v Variant, owner string, keep func(live *Engine) bool) *Engine {
	e := NewEngine(v, owner, r.deps)
	e.Hydrate(ctx)

	k := registryKey{v, owner}
	r.mu.Lock()
	defer r.mu.Unlock()
	if live, ok := r.engines[k]; ok && keep(live) {
		return live
	}
	r.engines[k] = e
	return e
}

// Len is the number of live engines.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.engines)
}

// Sweep drops idle engines and returns how many were dropped.
func (r *Registry) Sweep() int {
	if r.idle <= 0 {
		return 0
	}
	cutoff := r.deps.Now().Add(-r.idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for k, e := range r.engines {
		if e.State() != StateSubmitting && e.LastActive().Before(cutoff) {
			delete(r.engines, k)
			n++
		}
	}
	return n
}

// Run sweeps every `every` until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
