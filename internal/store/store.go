// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/oshaghisina/partswizard/internal/domain"
)

// SessionPatch describes a partial session update. Nil fields are left
// untouched; non-nil sub-objects replace the stored value wholesale
// (no deep merge).
type SessionPatch struct {
	State   *domain.State
	Vehicle *domain.VehicleData
	Part    *domain.PartData
	Contact *domain.ContactData
}

// Empty reports whether the patch changes nothing.
func (p SessionPatch) Empty() bool {
	return p.State == nil && p.Vehicle == nil && p.Part == nil && p.Contact == nil
}

// Repository defines the interface for persisting wizard sessions.
type Repository interface {
	// CreateSession starts a fresh session for a user, replacing any
	// existing one wholesale.
	CreateSession(ctx context.Context, userID string, state domain.State) (*domain.WizardSession, error)

	// GetSession retrieves a session by user ID. Returns nil, nil when
	// the user has no session.
	GetSession(ctx context.Context, userID string) (*domain.WizardSession, error)

	// UpdateSession applies a partial update and refreshes updated_at.
	// Returns the updated session, or nil, nil when the user has no
	// session.
	UpdateSession(ctx context.Context, userID string, patch SessionPatch) (*domain.WizardSession, error)

	// DeleteSession removes a session. Idempotent; reports whether a
	// session existed.
	DeleteSession(ctx context.Context, userID string) (bool, error)

	// CleanupExpiredSessions removes sessions idle longer than ttl and
	// returns how many were deleted. Retention is an operational knob,
	// not wizard behavior.
	CleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies storage connectivity.
	Ping(ctx context.Context) error

	// Close releases storage resources.
	Close() error
}
