package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oshaghisina/partswizard/internal/domain"
	"github.com/oshaghisina/partswizard/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	sessionMu sync.Mutex // Mutex for session writes to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS wizard_sessions (
		user_id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		vehicle_json TEXT NOT NULL DEFAULT '{}',
		part_json TEXT NOT NULL DEFAULT '{}',
		contact_json TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_wizard_sessions_updated ON wizard_sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// execRetry runs a write statement, retrying once when SQLite reports
// a concurrency conflict despite the busy timeout.
func (s *SQLiteStore) execRetry(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if shared.IsSQLiteConflictError(err) {
		time.Sleep(50 * time.Millisecond)
		result, err = s.db.ExecContext(ctx, query, args...)
	}
	return result, err
}

// CreateSession starts a fresh session, replacing any existing one wholesale.
func (s *SQLiteStore) CreateSession(ctx context.Context, userID string, state domain.State) (*domain.WizardSession, error) {
	if !state.Storable() {
		return nil, fmt.Errorf("create session: invalid state %q", state)
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	now := time.Now()
	query := `
	INSERT INTO wizard_sessions (user_id, state, vehicle_json, part_json, contact_json, created_at, updated_at)
	VALUES (?, ?, '{}', '{}', NULL, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		state = excluded.state,
		vehicle_json = excluded.vehicle_json,
		part_json = excluded.part_json,
		contact_json = excluded.contact_json,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at`

	if _, err := s.execRetry(ctx, query, userID, string(state), now.Unix(), now.Unix()); err != nil {
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
func (s *SQLiteStore) GetSession(ctx context.Context, userID string) (*domain.WizardSession, error) {
	query := `
		SELECT user_id, state, vehicle_json, part_json, contact_json, created_at, updated_at
		FROM wizard_sessions WHERE user_id = ?`

	row := s.db.QueryRowContext(ctx, query, userID)
	return scanSession(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*domain.WizardSession, error) {
	var sess domain.WizardSession
	var state, vehicleJSON, partJSON string
	var contactJSON sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(&sess.UserID, &state, &vehicleJSON, &partJSON, &contactJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	sess.State = domain.State(state)
	if err := json.Unmarshal([]byte(vehicleJSON), &sess.Vehicle); err != nil {
		return nil, fmt.Errorf("decode vehicle data: %w", err)
	}
	if err := json.Unmarshal([]byte(partJSON), &sess.Part); err != nil {
		return nil, fmt.Errorf("decode part data: %w", err)
	}
	if contactJSON.Valid {
		var contact domain.ContactData
		if err := json.Unmarshal([]byte(contactJSON.String), &contact); err != nil {
			return nil, fmt.Errorf("decode contact data: %w", err)
		}
		sess.Contact = &contact
	}
	sess.CreatedAt = time.Unix(createdAt, 0)
	sess.UpdatedAt = time.Unix(updatedAt, 0)

	return &sess, nil
}

// UpdateSession applies a partial update and refreshes updated_at.
func (s *SQLiteStore) UpdateSession(ctx context.Context, userID string, patch SessionPatch) (*domain.WizardSession, error) {
	if patch.State != nil && !patch.State.Storable() {
		return nil, fmt.Errorf("update session: invalid state %q", *patch.State)
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().Unix()}

	if patch.State != nil {
		sets = append(sets, "state = ?")
		args = append(args, string(*patch.State))
	}
	if patch.Vehicle != nil {
		data, err := json.Marshal(patch.Vehicle)
		if err != nil {
			return nil, fmt.Errorf("encode vehicle data: %w", err)
		}
		sets = append(sets, "vehicle_json = ?")
		args = append(args, string(data))
	}
	if patch.Part != nil {
		data, err := json.Marshal(patch.Part)
		if err != nil {
			return nil, fmt.Errorf("encode part data: %w", err)
		}
		sets = append(sets, "part_json = ?")
		args = append(args, string(data))
	}
	if patch.Contact != nil {
		data, err := json.Marshal(patch.Contact)
		if err != nil {
			return nil, fmt.Errorf("encode contact data: %w", err)
		}
		sets = append(sets, "contact_json = ?")
		args = append(args, string(data))
	}

	query := `UPDATE wizard_sessions SET ` + strings.Join(sets, ", ") + ` WHERE user_id = ?`
	args = append(args, userID)

	result, err := s.execRetry(ctx, query, args...)
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
func (s *SQLiteStore) DeleteSession(ctx context.Context, userID string) (bool, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	result, err := s.execRetry(ctx, `DELETE FROM wizard_sessions WHERE user_id = ?`, userID)
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
func (s *SQLiteStore) CleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()
	result, err := s.db.ExecContext(ctx, `DELETE FROM wizard_sessions WHERE updated_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
