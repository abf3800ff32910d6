package graph

import (
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// ErrGraphNotFound is returned by [Store.Delete] for unknown identifiers.
var ErrGraphNotFound = errors.New("graph not found")

// Store registers graphs under generated identifiers so that temporary
// graphs can be tracked and destroyed.
type Store interface {
	// Put registers g and returns its identifier. Registering a graph that
	// already has an identifier keeps it.
	Put(g *Graph) string
	// Get returns a registered graph.
	Get(id string) (*Graph, bool)
	// Delete unregisters a graph. Returns ErrGraphNotFound for unknown ids.
	Delete(id string) error
	// List returns the registered graphs in registration order.
	List() []*Graph
}

// MemoryStore is an in-process [Store]. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	graphs map[string]*Graph
	order  []string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{graphs: make(map[string]*Graph)}
}

// Put implements Store.
func (s *MemoryStore) Put(g *Graph) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.id == "" {
		g.id = uuid.NewString()
	}
	if _, ok := s.graphs[g.id]; !ok {
		s.order = append(s.order, g.id)
	}
	s.graphs[g.id] = g
	return g.id
}

// Get implements Store.
func (s *MemoryStore) Get(id string) (*Graph, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.graphs[id]
	return g, ok
}

// Delete implements Store.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.graphs[id]; !ok {
		return ErrGraphNotFound
	}
	delete(s.graphs, id)
	s.order = slices.DeleteFunc(s.order, func(x string) bool { return x == id })
	return nil
}

// List implements Store.
func (s *MemoryStore) List() []*Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Graph, len(s.order))
	for i, id := range s.order {
		out[i] = s.graphs[id]
	}
	return out
}

// Len returns the number of registered graphs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.graphs)
}
