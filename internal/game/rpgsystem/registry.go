package rpgsystem

import "sync"

// SystemDaggerheart is the identifier for the shipped Daggerheart strategy.
const SystemDaggerheart = "daggerheart"

// Registry holds difficulty strategies keyed by system identifier.
// Lookup of an unknown or empty identifier yields the no-op default.
type Registry struct {
	mu      sync.RWMutex
	systems map[string]System
	unknown System
}

// NewRegistry creates a registry pre-populated with the Daggerheart system.
func NewRegistry() *Registry {
	r := &Registry{
		systems: make(map[string]System),
		unknown: NewUndefined(),
	}
	r.Register(SystemDaggerheart, NewDaggerheart())
	return r
}

// Register adds or replaces the system stored under id.
//
// Precondition: id must not be empty.
func (r *Registry) Register(id string, s System) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.systems[id] = s
}

// Get returns the system registered under id, or the no-op default when id
// is unknown.
func (r *Registry) Get(id string) System {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.systems[id]; ok {
		return s
	}
	return r.unknown
}

// IDs returns the registered system identifiers.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.systems))
	for id := range r.systems {
		ids = append(ids, id)
	}
	return ids
}
