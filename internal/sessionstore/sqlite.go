package sessionstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLite stores state rows under one session scope.
type SQLite struct {
	DB    *sql.DB
	Scope string
	Now   func() time.Time
}

// Begin deactivates any previous scope and opens a fresh one for userID.
func Begin(ctx context.Context, db *sql.DB, userID string) (*SQLite, error) {
	s := &SQLite{DB: db, Scope: uuid.NewString(), Now: time.Now}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM session_scope WHERE active=0`); err != nil {
		return nil, fmt.Errorf("prune scopes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE session_scope SET active=0`); err != nil {
		return nil, fmt.Errorf("deactivate scopes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO session_scope(id,user_id,active,created_at) VALUES (?,?,1,?)`,
		s.Scope, userID, s.now()); err != nil {
		return nil, fmt.Errorf("insert scope: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the active scope, or ErrNoScope.
func Current(ctx context.Context, db *sql.DB) (*SQLite, error) {
	var id string
	err := db.QueryRowContext(ctx, `SELECT id FROM session_scope WHERE active=1 ORDER BY created_at DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoScope
	}
	if err != nil {
		return nil, err
	}
	return &SQLite{DB: db, Scope: id, Now: time.Now}, nil
}

// CurrentOrBegin returns the active scope, opening an anonymous one if none exists.
func CurrentOrBegin(ctx context.Context, db *sql.DB) (*SQLite, error) {
	s, err := Current(ctx, db)
	if errors.Is(err, ErrNoScope) {
		return Begin(ctx, db, "")
	}
	return s, err
}

// End drops the scope and everything stored in it.
func (s *SQLite) End(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM session_scope WHERE id=?`, s.Scope)
	return err
}

// UserID returns the user the scope was opened for.
func (s *SQLite) UserID(ctx context.Context) (string, error) {
	var userID string
	err := s.DB.QueryRowContext(ctx, `SELECT user_id FROM session_scope WHERE id=?`, s.Scope).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoScope
	}
	return userID, err
}

func (s *SQLite) Load(ctx context.Context, name string) ([]byte, bool, error) {
	var data string
	err := s.DB.QueryRowContext(ctx, `SELECT data FROM session_state WHERE scope=? AND name=?`, s.Scope, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(data), true, nil
}

func (s *SQLite) Save(ctx context.Context, name string, data []byte) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO session_state(scope,name,data,updated_at) VALUES (?,?,?,?)
ON CONFLICT(scope,name) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at`,
		s.Scope, name, string(data), s.now())
	return err
}

func (s *SQLite) Delete(ctx context.Context, name string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM session_state WHERE scope=? AND name=?`, s.Scope, name)
	return err
}

func (s *SQLite) Clear(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM session_state WHERE scope=?`, s.Scope)
	return err
}

func (s *SQLite) now() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return now().UTC().Format(time.RFC3339Nano)
}
