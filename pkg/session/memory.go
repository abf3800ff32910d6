package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in memory. Stored sessions are copied so
// callers may keep modifying theirs.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if s.IsExpired() {
		_ = m.Delete(context.Background(), id)
		return nil, nil
	}
	return clone(s), nil
}

func (m *MemoryStore) Set(_ context.Context, s *Session) error {
	if s.ID == "" {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = clone(s)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Session
	for _, s := range m.sessions {
		if !s.IsExpired() {
			out = append(out, clone(s))
		}
	}
	sortSessions(out)
	return out, nil
}

func (m *MemoryStore) Cleanup(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.IsExpired() {
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func clone(s *Session) *Session {
	c := *s
	c.Graphs = make(map[string][]byte, len(s.Graphs))
	for k, v := range s.Graphs {
		c.Graphs[k] = v
	}
	return &c
}

var _ Store = (*MemoryStore)(nil)
