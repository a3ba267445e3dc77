package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oshaghisina/partswizard/internal/domain"
)

// MemoryStore implements Repository using an in-memory map. It is used
// in tests and for local development without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.WizardSession
}

// NewMemory creates a new in-memory repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.WizardSession),
	}
}

// CreateSession starts a fresh session, replacing any existing one wholesale.
func (s *MemoryStore) CreateSession(_ context.Context, userID string, state domain.State) (*domain.WizardSession, error) {
	if !state.Storable() {
		return nil, fmt.Errorf("create session: invalid state %q", state)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess := &domain.WizardSession{
		UserID:    userID,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[userID] = sess
	return sess.Clone(), nil
}

// GetSession retrieves a session by user ID.
func (s *MemoryStore) GetSession(_ context.Context, userID string) (*domain.WizardSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	return sess.Clone(), nil
}

// UpdateSession applies a partial update and refreshes the updated_at
// timestamp.
func (s *MemoryStore) UpdateSession(_ context.Context, userID string, patch SessionPatch) (*domain.WizardSession, error) {
	if patch.State != nil && !patch.State.Storable() {
		return nil, fmt.Errorf("update session: invalid state %q", *patch.State)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}

	if patch.State != nil {
		sess.State = *patch.State
	}
	if patch.Vehicle != nil {
		sess.Vehicle = *patch.Vehicle
	}
	if patch.Part != nil {
		sess.Part = *patch.Part
	}
	if patch.Contact != nil {
		contact := *patch.Contact
		sess.Contact = &contact
	}
	sess.UpdatedAt = time.Now()

	return sess.Clone(), nil
}

// DeleteSession removes a session. Idempotent.
func (s *MemoryStore) DeleteSession(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[userID]
	delete(s.sessions, userID)
	return ok, nil
}

// CleanupExpiredSessions removes sessions idle longer than ttl.
func (s *MemoryStore) CleanupExpiredSessions(_ context.Context, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	threshold := time.Now().Add(-ttl)
	var removed int64
	for userID, sess := range s.sessions {
		if sess.UpdatedAt.Before(threshold) {
			delete(s.sessions, userID)
			removed++
		}
	}
	return removed, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close releases nothing for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
