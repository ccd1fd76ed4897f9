package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pdfdesk/backend/internal/client"
	"github.com/pdfdesk/backend/internal/config"
	"github.com/pdfdesk/backend/internal/db"
	"github.com/pdfdesk/backend/internal/handler"
	"github.com/pdfdesk/backend/internal/logging"
	"github.com/pdfdesk/backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

type store interface {
	service.UserStore
	service.FileStore
}

// @title pdfdesk API
// @version 1.0
// @description Authentication, user management and PDF upload backend.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env 파일이 없으면 환경변수만 사용
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Log)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}

	authService, err := service.NewAuthService(st, notifier, cfg.Auth, service.WithLogger(logger))
	if err != nil {
		return err
	}

	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			return err
		}
		logger.Info("admin account ensured", "email", cfg.Auth.AdminEmail)
	}

	storage, filesDir, err := newObjectStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if !cfg.Server.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.RouterDeps{
		Auth:           authService,
		Users:          service.NewUserService(st, authService),
		Uploads:        service.NewUploadService(st, storage),
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		FilesDir:       filesDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store, func(), error) {
	switch strings.ToLower(cfg.Store.Driver) {
	case "memory":
		logger.Warn("using in-memory store, data is lost on restart")
		return db.NewMemory(), func() {}, nil
	case "postgres", "":
		pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		pg := db.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pool.Close, nil
	default:
		return nil, nil, errors.New("unknown STORE_DRIVER " + cfg.Store.Driver)
	}
}

func newNotifier(cfg config.Config, logger *slog.Logger) (service.Notifier, error) {
	mailer, err := client.NewMailer(cfg.SMTP,
		client.WithResetTemplate(cfg.Auth.ResetEmailTitle, cfg.Auth.ResetEmailBody),
		client.WithLinkLifetime(service.ResetTokenTTL),
	)
	if err != nil {
		return nil, err
	}
	if !mailer.IsConfigured() {
		logger.Warn("SMTP_HOST not set, reset links are logged instead of mailed")
		return client.NewLogNotifier(logger), nil
	}
	return mailer, nil
}

// newObjectStorage prefers S3 and falls back to FILES_DIR. The returned
// directory is non-empty only for the disk backend.
func newObjectStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (service.ObjectStorage, string, error) {
	if cfg.Storage.S3Bucket != "" {
		s3Storage, err := client.NewS3Storage(ctx, cfg.Storage)
		if err != nil {
			return nil, "", err
		}
		logger.Info("uploads stored in s3", "bucket", cfg.Storage.S3Bucket)
		return s3Storage, "", nil
	}

	disk, err := client.NewDiskStorage(cfg.Storage.FilesDir, "/files")
	if err != nil {
		return nil, "", err
	}
	logger.Info("uploads stored on disk", "dir", cfg.Storage.FilesDir)
	return disk, cfg.Storage.FilesDir, nil
}
