package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"campaign_audio_backend/internal/audiostore"
	campaignrepo "campaign_audio_backend/internal/campaigns/repository"
	"campaign_audio_backend/internal/jobs"
	"campaign_audio_backend/internal/tts"
	voicerepo "campaign_audio_backend/internal/voices/repository"
	"campaign_audio_backend/platform/config"
	"campaign_audio_backend/platform/db"
	"campaign_audio_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting audio worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

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

	worker, err := jobs.NewWorker(
		cfg,
		campaignrepo.New(pool),
		voicerepo.New(pool),
		tts.NewClient(cfg),
		store,
		lock,
		jobs.RandomVoicePicker,
		log,
	)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("audio worker stopped")
}
