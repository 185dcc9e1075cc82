// Package sqlite is the single-file session store used for local development
// and tests, where running Postgres is not worth it.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/model"
	_ "modernc.org/sqlite"
)

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions(
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	access_token TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions(expires_at);`

type SessionRepository struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. Use ":memory:" for a
// throwaway store.
func Open(path string) (*SessionRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// one connection keeps ":memory:" databases alive and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SessionRepository{db: db}, nil
}

func (r *SessionRepository) Close() error {
	return r.db.Close()
}

func (r *SessionRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, sessionsSchema)
	return err
}

func (r *SessionRepository) Create(ctx context.Context, session model.Session) error {
	_, err := r.db.ExecContext(
		ctx,
		"INSERT INTO sessions(id, user_id, name, email, role, image_url, access_token, created_at, expires_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)",
		session.ID,
		session.UserID,
		session.Name,
		session.Email,
		session.Role,
		session.ImageURL,
		session.AccessToken,
		session.CreatedAt.UnixMilli(),
		session.ExpiresAt.UnixMilli(),
	)
	return err
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var (
		session   model.Session
		createdAt int64
		expiresAt int64
	)
	err := r.db.QueryRowContext(
		ctx,
		"SELECT id, user_id, name, email, role, image_url, access_token, created_at, expires_at FROM sessions WHERE id = ?",
		id,
	).Scan(
		&session.ID,
		&session.UserID,
		&session.Name,
		&session.Email,
		&session.Role,
		&session.ImageURL,
		&session.AccessToken,
		&createdAt,
		&expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	session.CreatedAt = time.UnixMilli(createdAt)
	session.ExpiresAt = time.UnixMilli(expiresAt)
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	return err
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", before.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
