package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/tripdeskhq/tripdesk/internal/api"
	"github.com/tripdeskhq/tripdesk/internal/assets"
	"github.com/tripdeskhq/tripdesk/internal/config"
	"github.com/tripdeskhq/tripdesk/internal/database"
	"github.com/tripdeskhq/tripdesk/internal/feed"
	"github.com/tripdeskhq/tripdesk/internal/logging"
	"github.com/tripdeskhq/tripdesk/internal/repository"
	"github.com/tripdeskhq/tripdesk/internal/session"
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

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer queueClient.Close()

	srv := api.New(cfg, log, api.Deps{
		Bookings:      repository.NewBookingRepository(pool),
		Notifications: repository.NewNotificationRepository(pool),
		Assets:        repository.NewAssetRepository(pool),
		Objects:       store,
		Queue:         api.AsynqQueue{Client: queueClient},
		Signer:        session.NewSigner(cfg.SessionSecret),
		Profiles:      session.NewCache(),
		Broker:        feed.NewBroker(),
	})
	if err := srv.Run(ctx); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}
