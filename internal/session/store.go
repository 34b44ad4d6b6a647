package session

import (
	"context"
	"errors"
	"sync"

	"github.com/hyperjump/sukima/internal/models"
)

// ErrNotFound is returned by Store.Get for an unknown conversation.
var ErrNotFound = errors.New("session not found")

// Store persists sessions keyed by conversation identifier. Writes must be
// atomic per conversation: a concurrent reader for the same identifier never
// observes a partially written session.
type Store interface {
	Get(ctx context.Context, conversationID string) (*models.Session, error)
	Put(ctx context.Context, sess *models.Session) error
	Delete(ctx context.Context, conversationID string) error
	Count(ctx context.Context) (int64, error)
	Close() error
}

// MemoryStore keeps sessions in a process-wide map for the lifetime of the
// chat. Sessions are never garbage-collected implicitly; only Delete (or a
// reset writing a fresh session) removes data.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]models.Session)}
}

// Get returns a copy of the stored session, or ErrNotFound.
func (m *MemoryStore) Get(_ context.Context, conversationID string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Put stores a copy of sess under its conversation id.
func (m *MemoryStore) Put(_ context.Context, sess *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ConversationID] = *sess
	return nil
}

// Delete removes the session for conversationID. Unknown ids are a no-op.
func (m *MemoryStore) Delete(_ context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, conversationID)
	return nil
}

// Count returns the number of stored sessions.
func (m *MemoryStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.sessions)), nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
