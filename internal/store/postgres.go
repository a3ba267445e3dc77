package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	"github.com/oshaghisina/partswizard/internal/domain"
)

// PostgresStore implements Repository using PostgreSQL.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

// NewPostgres creates a new PostgreSQL-backed repository.
func NewPostgres(dsn string) (Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS wizard_sessions (
		user_id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		vehicle_json JSONB NOT NULL DEFAULT '{}',
		part_json JSONB NOT NULL DEFAULT '{}',
		contact_json JSONB,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_wizard_sessions_updated ON wizard_sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateSession starts a fresh session, replacing any existing one wholesale.
func (s *PostgresStore) CreateSession(ctx context.Context, userID string, state domain.State) (*domain.WizardSession, error) {
	if !state.Storable() {
		return nil, fmt.Errorf("create session: invalid state %q", state)
	}

	now := time.Now()
	query := s.builder.
		Insert("wizard_sessions").
		Columns("user_id", "state", "vehicle_json", "part_json", "contact_json", "created_at", "updated_at").
		Values(userID, string(state), "{}", "{}", nil, now.Unix(), now.Unix()).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			state = excluded.state,
			vehicle_json = excluded.vehicle_json,
			part_json = excluded.part_json,
			contact_json = excluded.contact_json,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`)

	if _, err := query.RunWith(s.db).ExecContext(ctx); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return &domain.WizardSession{
		UserID:    userID,
		State:     state,
		CreatedAt: time.Unix(now.Unix(), 0),
		UpdatedAt: time.Unix(now.Unix(), 0),
	}, nil
}

// GetSession retrieves a session by user ID.
func (s *PostgresStore) GetSession(ctx context.Context, userID string) (*domain.WizardSession, error) {
	query := s.builder.
		Select("user_id", "state", "vehicle_json", "part_json", "contact_json", "created_at", "updated_at").
		From("wizard_sessions").
		Where(sq.Eq{"user_id": userID})

	row := query.RunWith(s.db).QueryRowContext(ctx)
	return scanSession(row)
}

// UpdateSession applies a partial update and refreshes updated_at.
func (s *PostgresStore) UpdateSession(ctx context.Context, userID string, patch SessionPatch) (*domain.WizardSession, error) {
	if patch.State != nil && !patch.State.Storable() {
		return nil, fmt.Errorf("update session: invalid state %q", *patch.State)
	}

	update := s.builder.
		Update("wizard_sessions").
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"user_id": userID})

	if patch.State != nil {
		update = update.Set("state", string(*patch.State))
	}
	if patch.Vehicle != nil {
		data, err := json.Marshal(patch.Vehicle)
		if err != nil {
			return nil, fmt.Errorf("encode vehicle data: %w", err)
		}
		update = update.Set("vehicle_json", string(data))
	}
	if patch.Part != nil {
		data, err := json.Marshal(patch.Part)
		if err != nil {
			return nil, fmt.Errorf("encode part data: %w", err)
		}
		update = update.Set("part_json", string(data))
	}
	if patch.Contact != nil {
		data, err := json.Marshal(patch.Contact)
		if err != nil {
			return nil, fmt.Errorf("encode contact data: %w", err)
		}
		update = update.Set("contact_json", string(data))
	}

	result, err := update.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, nil
	}

	return s.GetSession(ctx, userID)
}

// DeleteSession removes a session. Idempotent.
func (s *PostgresStore) DeleteSession(ctx context.Context, userID string) (bool, error) {
	query := s.builder.
		Delete("wizard_sessions").
		Where(sq.Eq{"user_id": userID})

	result, err := query.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// CleanupExpiredSessions removes sessions idle longer than ttl.
func (s *PostgresStore) CleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()
	query := s.builder.
		Delete("wizard_sessions").
		Where(sq.Lt{"updated_at": threshold})

	result, err := query.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
