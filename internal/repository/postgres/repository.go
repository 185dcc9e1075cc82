package postgres

import (
	"context"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/config"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Session interface {
	Migrate(ctx context.Context) error
	Create(ctx context.Context, session model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type PostgresRepository struct {
	Session
}

func New(db *pgxpool.Pool, logger *zap.Logger) *PostgresRepository {
	return &PostgresRepository{
		Session: newSessionRepo(db, logger),
	}
}

func DB(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, cfg.URL())
}
