package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/myusa/platform/internal/config"
	"github.com/myusa/platform/internal/database"
	"github.com/myusa/platform/internal/notification"
	"github.com/myusa/platform/internal/queue"
	"github.com/myusa/platform/internal/queue/workers"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPool(context.Background(), cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	deliveryWorker := workers.NewDeliveryWorker(notification.NewPGStore(db))

	mux := asynq.NewServeMux()
	mux.Handle(queue.TypeNotificationDeliver, asynq.HandlerFunc(deliveryWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(mux); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
