package repository

import (
	"context"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/repository/postgres"
	"github.com/BloggingApp/blog-gateway/internal/repository/redisrepo"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionStore is satisfied by the postgres and sqlite session repositories.
type SessionStore interface {
	Migrate(ctx context.Context) error
	Create(ctx context.Context, session model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type Repository struct {
	Sessions SessionStore
	Redis    *redisrepo.RedisRepository
}

// New leaves Redis nil when rdb is nil; the gateway then runs without the
// post cache and the toggle guard.
func New(sessions SessionStore, rdb *redis.Client) *Repository {
	repo := &Repository{
		Sessions: sessions,
	}
	if rdb != nil {
		repo.Redis = redisrepo.New(rdb)
	}
	return repo
}

func NewPostgresSessions(db *pgxpool.Pool, logger *zap.Logger) SessionStore {
	return postgres.New(db, logger).Session
}
