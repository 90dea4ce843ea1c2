package chain

import (
	"log"
	"sync"
)

// MutexRegistry serializes work by string key, per spec.md §5 ("A
// named-mutex registry is available for serializing work by string key")
// and §9's guidance to gate shared state "behind explicit initialization
// and a clear teardown, rather than implicit module state" — so this is
// an explicitly constructed struct, never a package-level global.
type MutexRegistry struct {
	// Debug gates lock-acquisition tracing to the standard logger.
	Debug bool

	mu      sync.Mutex
	mutexes map[string]*sync.Mutex
}

// NewMutexRegistry constructs an empty registry.
func NewMutexRegistry() *MutexRegistry {
	return &MutexRegistry{mutexes: make(map[string]*sync.Mutex)}
}

func (r *MutexRegistry) mutexFor(name string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mutexes[name]
	if !ok {
		m = &sync.Mutex{}
		r.mutexes[name] = m
	}
	return m
}

// Lock acquires the mutex registered under name, creating it if absent.
func (r *MutexRegistry) Lock(name string) {
	if r.Debug {
		log.Printf("chain: mutex registry: acquiring %q", name)
	}
	r.mutexFor(name).Lock()
	if r.Debug {
		log.Printf("chain: mutex registry: acquired %q", name)
	}
}

// Unlock releases the mutex registered under name.
func (r *MutexRegistry) Unlock(name string) {
	r.mutexFor(name).Unlock()
	if r.Debug {
		log.Printf("chain: mutex registry: released %q", name)
	}
}

// WithLock runs fn while holding the mutex registered under name.
func (r *MutexRegistry) WithLock(name string, fn func()) {
	r.Lock(name)
	defer r.Unlock(name)
	fn()
}
