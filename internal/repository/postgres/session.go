package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions(
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	access_token TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions(expires_at);`

type sessionRepo struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func newSessionRepo(db *pgxpool.Pool, logger *zap.Logger) Session {
	return &sessionRepo{
		db:     db,
		logger: logger,
	}
}

func (r *sessionRepo) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, sessionsSchema)
	return err
}

func (r *sessionRepo) Create(ctx context.Context, session model.Session) error {
	id, err := uuid.Parse(session.ID)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		ctx,
		"INSERT INTO sessions(id, user_id, name, email, role, image_url, access_token, created_at, expires_at) VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		id,
		session.UserID,
		session.Name,
		session.Email,
		session.Role,
		session.ImageURL,
		session.AccessToken,
		session.CreatedAt,
		session.ExpiresAt,
	)
	return err
}

// FindByID returns nil without an error when no such session exists.
func (r *sessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	sessionID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	var (
		session model.Session
		rowID   uuid.UUID
	)
	if err := r.db.QueryRow(
		ctx,
		"SELECT s.id, s.user_id, s.name, s.email, s.role, s.image_url, s.access_token, s.created_at, s.expires_at FROM sessions s WHERE s.id = $1",
		sessionID,
	).Scan(
		&rowID,
		&session.UserID,
		&session.Name,
		&session.Email,
		&session.Role,
		&session.ImageURL,
		&session.AccessToken,
		&session.CreatedAt,
		&session.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	session.ID = rowID.String()
	return &session, nil
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	sessionID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}

	_, err = r.db.Exec(ctx, "DELETE FROM sessions WHERE id = $1", sessionID)
	return err
}

func (r *sessionRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM sessions WHERE expires_at <= $1", before)
	if err != nil {
		return 0, err
	}

	if n := tag.RowsAffected(); n > 0 {
		r.logger.Sugar().Infof("deleted %d expired sessions", n)
	}

	return tag.RowsAffected(), nil
}
