package tier

import "sync"

// Registry resolves tier IDs to their definitions. It is safe for concurrent
// use; registration normally happens once at startup.
type Registry struct {
	mu    sync.RWMutex
	tiers map[string]Tier
}

// NewRegistry creates a registry preloaded with the built-in tiers.
func NewRegistry() *Registry {
	r := &Registry{tiers: make(map[string]Tier)}
	for _, t := range []Tier{Free, Pro, Enterprise} {
		r.tiers[t.ID] = t
	}
	return r
}

// Register adds or replaces a tier definition.
func (r *Registry) Register(t Tier) error {
	if t.ID == "" {
		return ErrInvalidTier
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiers[t.ID] = t
	return nil
}

// Get resolves a tier by ID.
func (r *Registry) Get(id string) (Tier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tiers[id]
	if !ok {
		return Tier{}, ErrUnknownTier
	}
	return t, nil
}
