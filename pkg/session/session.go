// Package session persists working sets of multilayer networks between
// runs.
//
// A [Session] holds named collections, each stored as the JSON of its
// flattened graph; the aggregated and layer graphs are derived again when
// a collection is loaded. Sessions are kept by a [Store]:
//   - [MemoryStore]: in-process storage for the server and tests
//   - [FileStore]: JSON files in a config directory, for the CLI
//   - [MongoStore]: a MongoDB collection, for shared server deployments
//
// # Usage
//
//	store, err := session.NewFileStore("") // ~/.config/timenexus/sessions/
//	sess := session.New("cell cycle", session.DefaultTTL)
//	if err := sess.Put(collection); err != nil {
//	    return err
//	}
//	err = store.Set(ctx, sess)
//
//	// Later
//	sess, err := store.Get(ctx, id)
//	if sess == nil {
//	    // not found or expired
//	}
//	c, err := sess.Collection("Extracted network")
package session

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
	"github.com/timenexus/timenexus/pkg/mln/transform"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session or a collection does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidID is returned for identifiers that cannot name a session.
	ErrInvalidID = errors.New("invalid session id")
)

// DefaultTTL is the default session duration.
const DefaultTTL = 30 * 24 * time.Hour

// Session is a named set of collections.
type Session struct {
	ID        string            `json:"id" bson:"_id"`
	Name      string            `json:"name" bson:"name"`
	Graphs    map[string][]byte `json:"graphs" bson:"graphs"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
	// ExpiresAt is zero for sessions that never expire.
	ExpiresAt time.Time `json:"expires_at,omitzero" bson:"expires_at,omitempty"`
}

// New creates an empty session. A ttl of zero or less never expires.
func New(name string, ttl time.Duration) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		Name:      name,
		Graphs:    make(map[string][]byte),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
	return s
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Put stores c under its name, replacing any collection of that name.
func (s *Session) Put(c *mln.Collection) error {
	data, err := graph.MarshalGraph(c.Flattened)
	if err != nil {
		return err
	}
	if s.Graphs == nil {
		s.Graphs = make(map[string][]byte)
	}
	s.Graphs[c.Name] = data
	s.UpdatedAt = time.Now()
	return nil
}

// Collection loads the collection stored under name.
func (s *Session) Collection(name string) (*mln.Collection, error) {
	data, ok := s.Graphs[name]
	if !ok {
		return nil, ErrNotFound
	}
	g, err := graph.UnmarshalGraph(data)
	if err != nil {
		return nil, err
	}
	c, err := transform.ImportFlattened(g)
	if err != nil {
		return nil, err
	}
	c.Name = name
	return c, nil
}

// Remove deletes the collection stored under name.
func (s *Session) Remove(name string) bool {
	if _, ok := s.Graphs[name]; !ok {
		return false
	}
	delete(s.Graphs, name)
	s.UpdatedAt = time.Now()
	return true
}

// Names returns the sorted names of the stored collections.
func (s *Session) Names() []string {
	out := make([]string, 0, len(s.Graphs))
	for name := range s.Graphs {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the live sessions, most recently updated first.
	List(ctx context.Context) ([]*Session, error)

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error

	Close() error
}

func sortSessions(out []*Session) {
	slices.SortFunc(out, func(a, b *Session) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
}
