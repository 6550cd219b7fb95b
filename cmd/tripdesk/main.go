// Command tripdesk runs the admin console pieces from one binary: the API
// server, the background worker, or both together sharing a live feed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/tripdeskhq/tripdesk/internal/api"
	"github.com/tripdeskhq/tripdesk/internal/assets"
	"github.com/tripdeskhq/tripdesk/internal/config"
	"github.com/tripdeskhq/tripdesk/internal/database"
	"github.com/tripdeskhq/tripdesk/internal/feed"
	"github.com/tripdeskhq/tripdesk/internal/logging"
	"github.com/tripdeskhq/tripdesk/internal/repository"
	"github.com/tripdeskhq/tripdesk/internal/session"
	"github.com/tripdeskhq/tripdesk/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "tripdesk: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tripdesk",
		Short:        "tripdesk admin console service",
		Long:         `tripdesk serves the marketplace admin console API and runs its background worker.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newServeCmd(),
		newWorkerCmd(),
		newMigrateCmd(),
	)
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server with an embedded worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel)

			pool, err := database.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()
			if err := database.EnsureSchema(ctx, pool); err != nil {
				return err
			}
			store, err := assets.New(cfg)
			if err != nil {
				return err
			}
			if err := store.EnsureBucket(ctx); err != nil {
				return err
			}

			redisOpt := asynq.RedisClientOpt{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			}
			queueClient := asynq.NewClient(redisOpt)
			defer queueClient.Close()

			notifications := repository.NewNotificationRepository(pool)
			assetRepo := repository.NewAssetRepository(pool)
			broker := feed.NewBroker()

			// Embedded worker shares the broker so SSE sessions see
			// dispatches processed in this process.
			asynqServer := asynq.NewServer(redisOpt, asynq.Config{Concurrency: cfg.WorkerCount})
			processor := worker.NewProcessor(notifications, assetRepo, store, broker, log)
			go func() {
				<-ctx.Done()
				asynqServer.Shutdown()
			}()
			go func() {
				if err := asynqServer.Run(processor.Handler()); err != nil {
					log.WithError(err).Error("embedded worker stopped")
				}
			}()

			srv := api.New(cfg, log, api.Deps{
				Bookings:      repository.NewBookingRepository(pool),
				Notifications: notifications,
				Assets:        assetRepo,
				Objects:       store,
				Queue:         api.AsynqQueue{Client: queueClient},
				Signer:        session.NewSigner(cfg.SessionSecret),
				Profiles:      session.NewCache(),
				Broker:        broker,
			})
			return srv.Run(ctx)
		},
	}
}

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the background worker only",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel)

			pool, err := database.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()
			if err := database.EnsureSchema(ctx, pool); err != nil {
				return err
			}
			store, err := assets.New(cfg)
			if err != nil {
				return err
			}
			if err := store.EnsureBucket(ctx); err != nil {
				return err
			}

			server := asynq.NewServer(asynq.RedisClientOpt{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			}, asynq.Config{Concurrency: cfg.WorkerCount})
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
			return server.Run(processor.Handler())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create database tables and the asset bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			pool, err := database.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()
			if err := database.EnsureSchema(ctx, pool); err != nil {
				return err
			}
			store, err := assets.New(cfg)
			if err != nil {
				return err
			}
			if err := store.EnsureBucket(ctx); err != nil {
				return err
			}
			fmt.Println("schema and bucket ready")
			return nil
		},
	}
}
