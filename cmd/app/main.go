package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/apiclient"
	"github.com/BloggingApp/blog-gateway/internal/config"
	"github.com/BloggingApp/blog-gateway/internal/handler"
	"github.com/BloggingApp/blog-gateway/internal/oauth"
	"github.com/BloggingApp/blog-gateway/internal/repository"
	"github.com/BloggingApp/blog-gateway/internal/repository/postgres"
	"github.com/BloggingApp/blog-gateway/internal/repository/sqlite"
	"github.com/BloggingApp/blog-gateway/internal/server"
	"github.com/BloggingApp/blog-gateway/internal/service"
	"github.com/BloggingApp/blog-gateway/internal/session"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := loadEnv(); err != nil {
		logger.Sugar().Infof("no .env file loaded: %s", err.Error())
	}

	cfg, err := config.Load(".")
	if err != nil {
		logger.Sugar().Panicf("failed to load config: %s", err.Error())
	}

	sessions, closeSessions := openSessionStore(ctx, cfg, logger)
	defer closeSessions()

	if err := sessions.Migrate(ctx); err != nil {
		logger.Sugar().Panicf("failed to migrate session store: %s", err.Error())
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
		})
		pong, err := rdb.Ping(ctx).Result()
		if err != nil {
			logger.Sugar().Panicf("failed to ping redis: %s", err.Error())
		}
		logger.Sugar().Infof("Successfully connected to Redis: %s", pong)
		defer rdb.Close()
	}

	repos := repository.New(sessions, rdb)
	gate := session.NewGate(repos.Sessions, cfg.Session, logger)
	go gate.StartCleanup(ctx, cfg.Session.CleanupInterval)

	services := service.New(logger, service.Deps{
		Repo:      repos,
		Clients:   apiclient.NewFactory(cfg.API.BaseURL, cfg.API.Timeout),
		Gate:      gate,
		Completer: service.NewCompleter(cfg.AI),
		Config:    cfg,
	})

	google := oauth.NewGoogle(cfg.Google)
	if google == nil {
		logger.Info("Google sign-in is disabled")
	}

	handlers := handler.New(logger, services, gate, google, cfg.App)

	srv := server.New()
	serverConfig := config.ServerConfig{
		Port:           cfg.App.Port,
		Handler:        handlers.InitRoutes(),
		MaxHeaderBytes: 1 << 20,
		ReadTimeout:    time.Second * 10,
		WriteTimeout:   time.Second * 30,
	}
	go func() {
		if err := srv.Run(serverConfig); err != nil {
			logger.Sugar().Panicf("failed to run http server: %s", err.Error())
		}
	}()

	logger.Sugar().Infof("Server started on port %s", cfg.App.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("failed to shut down http server: %s", err.Error())
	}
}

func openSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.SessionStore, func()) {
	if cfg.Session.Store == "sqlite" {
		store, err := sqlite.Open(cfg.Session.SQLitePath)
		if err != nil {
			logger.Sugar().Panicf("failed to open sqlite session store: %s", err.Error())
		}
		logger.Sugar().Infof("Using SQLite session store at %s", cfg.Session.SQLitePath)
		return store, func() { store.Close() }
	}

	db, err := postgres.DB(ctx, cfg.DB)
	if err != nil {
		logger.Sugar().Panicf("failed to connect to postgres: %s", err.Error())
	}
	if err := db.Ping(ctx); err != nil {
		logger.Sugar().Panicf("failed to ping postgres: %s", err.Error())
	}
	logger.Info("Successfully connected to PostgreSQL")

	return repository.NewPostgresSessions(db, logger), db.Close
}

func loadEnv() error {
	return godotenv.Load()
}
