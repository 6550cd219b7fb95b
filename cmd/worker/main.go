package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/tripdeskhq/tripdesk/internal/assets"
	"github.com/tripdeskhq/tripdesk/internal/config"
	"github.com/tripdeskhq/tripdesk/internal/database"
	"github.com/tripdeskhq/tripdesk/internal/logging"
	"github.com/tripdeskhq/tripdesk/internal/repository"
	"github.com/tripdeskhq/tripdesk/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logging.New(cfg.LogLevel)

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.WithError(err).Fatal("ensure schema")
	}

	store, err := assets.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("init asset store")
	}
	if err := store.EnsureBucket(ctx); err != nil {
		log.WithError(err).Fatal("ensure bucket")
	}

	server := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, asynq.Config{
		Concurrency: cfg.WorkerCount,
	})
	// A standalone worker has no live SSE sessions, so no feed broker.
	processor := worker.NewProcessor(
		repository.NewNotificationRepository(pool),
		repository.NewAssetRepository(pool),
		store,
		nil,
		log,
	)

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	if err := server.Run(processor.Handler()); err != nil {
		log.WithError(err).Error("worker stopped")
		os.Exit(1)
	}
}
