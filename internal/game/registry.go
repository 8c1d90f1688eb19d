package game

import (
	"fmt"
	"sync"
)

// Registry holds the minigame catalog, keyed by ID, in registration order.
type Registry struct {
	mu    sync.RWMutex
	games map[string]Minigame
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		games: make(map[string]Minigame),
	}
}

// Register adds a minigame. A game with the same ID is replaced in place.
func (r *Registry) Register(g Minigame) error {
	if g == nil {
		return fmt.Errorf("cannot register nil minigame")
	}
	if g.ID() == "" {
		return fmt.Errorf("minigame id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.games[g.ID()]; !exists {
		r.order = append(r.order, g.ID())
	}
	r.games[g.ID()] = g
	return nil
}

// Get retrieves a minigame by ID.
func (r *Registry) Get(id string) (Minigame, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[id]
	return g, ok
}

// List returns all minigames in registration order.
// The returned slice is a copy.
func (r *Registry) List() []Minigame {
	r.mu.RLock()
	defer r.mu.RUnlock()

	games := make([]Minigame, 0, len(r.order))
	for _, id := range r.order {
		games = append(games, r.games[id])
	}
	return games
}

// IDs returns all registered IDs in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Count returns the number of registered minigames.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
