package server

import (
	"context"
	"fmt"

	"Spitbox/cache"
	"Spitbox/config"
	"Spitbox/core/auth"
	"Spitbox/db"
	"Spitbox/logger"
	"Spitbox/repository"
	"Spitbox/service"
	"Spitbox/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App holds everything a running server needs. It is built once at startup.
type App struct {
	Config  *config.Config
	DB      *gorm.DB
	Store   *repository.Store
	Storage storage.Backend
	Redis   *redis.Client // nil when Redis is not configured

	Auth     *service.AuthService
	Beats    *service.BeatService
	Comments *service.CommentService
	Likes    *service.LikeService
	Admin    *service.AdminService
}

// NewApp connects the database, storage backend and optional Redis described
// by cfg and wires the services.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		db.Close(gdb)
		return nil, err
	}

	backend, err := storage.NewBackendFromConfig(ctx, cfg)
	if err != nil {
		db.Close(gdb)
		return nil, fmt.Errorf("failed to initialize %s storage: %w", cfg.StorageBackend, err)
	}

	var (
		rdb    *redis.Client
		locker cache.Locker
	)
	if cfg.RedisEnabled() {
		rdb, err = cache.ConnectRedis(ctx, cfg)
		if err != nil {
			db.Close(gdb)
			return nil, err
		}
		locker = cache.NewRedisLocker(rdb)
		logger.Info("Successfully connected to Redis", logger.String("addr", cfg.RedisAddr()))
	} else {
		locker = cache.NewLocalLocker()
		logger.Info("Redis not configured, using in-process locks")
	}

	var google auth.GoogleVerifier
	if cfg.GoogleClientID != "" {
		google, err = auth.NewGoogleVerifier(ctx, cfg.GoogleClientID)
		if err != nil {
			db.Close(gdb)
			return nil, err
		}
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, Google sign-in disabled")
	}

	app := Build(cfg, gdb, backend, google, locker)
	app.Redis = rdb
	logger.Info("Application initialized",
		logger.String("db", cfg.DBDriver),
		logger.String("storage", backend.Name()))
	return app, nil
}

// Build wires services over already opened dependencies.
func Build(cfg *config.Config, gdb *gorm.DB, backend storage.Backend, google auth.GoogleVerifier, locker cache.Locker) *App {
	store := repository.NewStore(gdb)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())
	return &App{
		Config:   cfg,
		DB:       gdb,
		Store:    store,
		Storage:  backend,
		Auth:     service.NewAuthService(store, tokens, google, locker),
		Beats:    service.NewBeatService(store, backend),
		Comments: service.NewCommentService(store),
		Likes:    service.NewLikeService(store),
		Admin:    service.NewAdminService(gdb, cfg.AdminSecret),
	}
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Warn("Failed to close Redis", logger.ErrorField(err))
		}
	}
	return db.Close(a.DB)
}
