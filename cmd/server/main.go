package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/inkwell/backend/internal/assistant"
	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/handlers"
	"github.com/anonto42/inkwell/backend/internal/notifier"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/router"
	"github.com/anonto42/inkwell/backend/internal/storage"
	"github.com/anonto42/inkwell/backend/pkg/config"
	"github.com/anonto42/inkwell/backend/pkg/firebase"
	"github.com/anonto42/inkwell/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.Env)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return errors.Wrap(err, "initialize databases")
	}
	defer db.CloseDB(log)

	if err := repositories.Migrate(db.Postgres); err != nil {
		return errors.Wrap(err, "migrate")
	}
	if err := repositories.NewMongoContentRepository(db.Content).EnsureIndexes(ctx); err != nil {
		return errors.Wrap(err, "ensure content indexes")
	}

	// Firebase is optional; without credentials only local accounts work.
	var (
		firebaseApp *firebase.App
		idTokens    auth.IDTokenVerifier
	)
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket)
		if err != nil {
			return errors.Wrap(err, "initialize firebase")
		}
		idTokens = firebaseApp.AuthClient
		log.Info("Firebase app initialized")
	} else {
		log.Warn("FIREBASE_CREDENTIALS_PATH not set, Firebase login disabled")
	}

	uploader, err := newUploader(cfg, firebaseApp)
	if err != nil {
		return err
	}

	repos := router.NewRepositories(db.Postgres, db.Content)
	queue := notifier.NewRedisQueue(db.Redis)
	dispatcher := notifier.NewDispatcher(queue, repos.Follows, repos.Notifications, log, cfg.NotifyPollInterval)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	config.SetupMiddleware(e, cfg, log)
	err = router.SetupRoutes(e, router.Deps{
		Repos:            repos,
		Notifier:         notifier.New(queue),
		Tokens:           auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		Firebase:         idTokens,
		Uploader:         uploader,
		PostImagesBucket: cfg.PostImagesBucket,
		AvatarsBucket:    cfg.AvatarsBucket,
		Assistant:        assistant.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel),
		Health: map[string]handlers.Check{
			"postgres": db.PingPostgres,
			"mongo":    db.PingMongo,
			"redis":    db.PingRedis,
		},
		Log: log,
	})
	if err != nil {
		return errors.Wrap(err, "setup routes")
	}

	dispatched := make(chan error, 1)
	go func() {
		dispatched <- dispatcher.Run(ctx)
	}()

	served := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			served <- err
		}
		close(served)
	}()

	select {
	case err := <-served:
		stop()
		<-dispatched
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	if err := <-dispatched; err != nil {
		log.WithError(err).Error("notification dispatcher stopped")
	}
	return nil
}

func newUploader(cfg *config.Config, app *firebase.App) (storage.Uploader, error) {
	switch cfg.StorageDriver {
	case "firebase":
		if app == nil {
			return nil, errors.New("STORAGE_DRIVER=firebase requires FIREBASE_CREDENTIALS_PATH")
		}
		bucket, err := app.Bucket()
		if err != nil {
			return nil, err
		}
		return storage.NewFirebaseUploader(bucket, app.BucketName), nil
	case "minio":
		uploader, err := storage.NewMinioUploader(storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.StoragePublicURL,
		})
		if err != nil {
			return nil, err
		}
		return uploader, nil
	default:
		return nil, errors.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
