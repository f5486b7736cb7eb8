package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/bookshelf/internal/config"
	"github.com/msomdec/bookshelf/internal/domain"
	"github.com/msomdec/bookshelf/internal/handler"
	"github.com/msomdec/bookshelf/internal/media"
	"github.com/msomdec/bookshelf/internal/repository/sqlite"
	"github.com/msomdec/bookshelf/internal/service"
)

func main() {
	logLevel := new(slog.LevelVar)
	logOpts := &slog.HandlerOptions{Level: logLevel}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logLevel.Set(cfg.LogLevel)
	slog.Info("configuration loaded", "config", cfg)
	if cfg.WeakSecret() {
		slog.Warn("JWT_SECRET is shorter than 32 characters")
	}

	ctx := context.Background()

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	tokens, err := service.NewTokenService(cfg.JWTSecret)
	if err != nil {
		slog.Error("failed to create token service", "error", err)
		os.Exit(1)
	}
	hasher := service.NewPasswordHasher(cfg.BcryptCost, cfg.HashWorkers)
	authService, err := service.NewAuthService(ctx, db.Users(), hasher, tokens)
	if err != nil {
		slog.Error("failed to create auth service", "error", err)
		os.Exit(1)
	}

	var store domain.MediaStore
	var mediaReader handler.MediaReader
	if cfg.UseS3() {
		s3Store, err := media.NewS3Store(ctx, media.S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicURL:       cfg.MediaPublicURL,
		})
		if err != nil {
			slog.Error("failed to create S3 media store", "error", err)
			os.Exit(1)
		}
		store = s3Store
		slog.Info("media stored in S3", "bucket", cfg.S3Bucket)
	} else {
		blobs := db.MediaBlobs()
		if cfg.MediaPublicURL != "" {
			blobs = blobs.WithBaseURL(cfg.MediaPublicURL)
		}
		store, mediaReader = blobs, blobs
		slog.Info("media stored in SQLite")
	}
	bookService := service.NewBookService(db.Books(), store)
	accountService := service.NewAccountService(db.Users(), bookService)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, accountService, bookService, mediaReader)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Wrap(mux, cfg.MaxBodyBytes),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
