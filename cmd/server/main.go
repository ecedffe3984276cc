package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/ayush/todolist/backend/internal/auth"
	"github.com/ayush/todolist/backend/internal/config"
	"github.com/ayush/todolist/backend/internal/logger"
	"github.com/ayush/todolist/backend/internal/server"
	"github.com/ayush/todolist/backend/internal/store"
	"github.com/ayush/todolist/backend/internal/todo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	l := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Pretty: os.Getenv("LOG_PRETTY") == "true",
	})
	ctx := context.Background()

	// ── MongoDB ──────────────────────────────────────────────
	conn, err := store.NewConnector(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		l.Fatal().Err(err).Msg("mongo config")
	}
	defer conn.Close(context.Background())
	todoStore := store.NewTodoStore(conn, cfg.Location)

	// Connect eagerly; requests retry if this attempt fails.
	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	if err := todoStore.EnsureIndexes(startCtx); err != nil {
		l.Warn().Err(err).Msg("mongo not ready at startup, will connect on first request")
	}
	cancel()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		l.Fatal().Err(err).Msg("postgres connect")
	}
	defer pgPool.Close()
	users := store.NewPostgresStore(pgPool)
	if err := users.Migrate(ctx); err != nil {
		l.Fatal().Err(err).Msg("postgres migrate")
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		l.Fatal().Err(err).Msg("redis connect")
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb)

	// ── MinIO ────────────────────────────────────────────────
	var exports *todo.ExportHandler
	if cfg.ExportsEnabled() {
		minioStore, err := store.NewMinioStore(
			ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
		if err != nil {
			l.Fatal().Err(err).Msg("minio connect")
		}
		exports = todo.NewExportHandler(todoStore, minioStore)
	}

	// ── Router ───────────────────────────────────────────────
	router := server.NewRouter(server.Deps{
		Logger:         l,
		Sessions:       sessions,
		Auth:           auth.NewHandler(users, sessions),
		Todos:          todo.NewHandler(todoStore),
		Exports:        exports,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		l.Info().Str("addr", srv.Addr).Bool("exports", exports != nil).Msg("todo backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		l.Error().Err(err).Msg("shutdown")
	}
}
