package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"campaign_audio_backend/internal/audiostore"
	"campaign_audio_backend/internal/campaigns"
	apphttp "campaign_audio_backend/internal/http"
	"campaign_audio_backend/internal/http/router"
	"campaign_audio_backend/internal/jobs"
	"campaign_audio_backend/internal/playback"
	"campaign_audio_backend/internal/snapshot"
	"campaign_audio_backend/internal/voices"
	"campaign_audio_backend/platform/config"
	"campaign_audio_backend/platform/db"
	"campaign_audio_backend/platform/logger"
	"campaign_audio_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	store := audiostore.New(cfg, log)
	if err := store.Init(); err != nil {
		log.Error("failed to initialize audio storage", "error", err)
		panic("failed to initialize audio storage: " + err.Error())
	}
	lock, err := audiostore.NewStoreLock(cfg)
	if err != nil {
		log.Error("failed to initialize store lock", "error", err)
		panic("failed to initialize store lock: " + err.Error())
	}
	log.Info("audio storage initialized", "audioDir", store.AudioDir(), "voiceDir", store.VoiceDir())

	dispatcher, err := jobs.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize job dispatcher", "error", err)
		panic("failed to initialize job dispatcher: " + err.Error())
	}
	defer dispatcher.Close()

	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	voicesModule := voices.NewModule(pool, store, val, log)
	campaignsModule := campaigns.NewModule(pool, voicesModule.Service(), store, lock, dispatcher, cfg, val, log)
	playbackModule := playback.NewModule(pool, cfg)
	snapshotModule := snapshot.NewModule(pool, store, lock, cfg, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			campaignsModule,
			voicesModule,
			playbackModule,
			snapshotModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
