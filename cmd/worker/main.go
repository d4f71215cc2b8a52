package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"resumeBuilder/internal/config"
	"resumeBuilder/internal/events"
	"resumeBuilder/internal/logging"
	"resumeBuilder/internal/metrics"
	"resumeBuilder/internal/pdf"
	"resumeBuilder/internal/persistence"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/tasks"
	"resumeBuilder/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := logging.New(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	if !cfg.MinIO.Enabled {
		log.Fatal("worker requires MINIO_ENABLED=true to store job results")
	}

	ctx := context.Background()
	storageClient, err := storage.NewClient(ctx, cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	redisClient := persistence.NewRedisClient(cfg.Redis)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	renderer, err := render.New(storageClient, logger)
	if err != nil {
		log.Fatalf("init renderer: %v", err)
	}

	deps := worker.Deps{
		Storage:   storageClient,
		Publisher: events.NewRedisBus(redisClient, cfg.Redis.Channel),
		Logger:    logger,
	}
	generator := pdf.RodGenerator{Timeout: pdf.DefaultTimeout, Bin: cfg.Worker.ChromeBin}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		Logger:      newAsynqLogger(logger),
	})

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeDocumentExport, worker.NewExportTaskHandler(deps))
	mux.Handle(tasks.TypeDocumentPDF, worker.NewPDFTaskHandler(deps, renderer, generator))

	logger.Info("worker service started",
		slog.String("redis_addr", cfg.Redis.Addr()),
		slog.Int("concurrency", cfg.Worker.Concurrency),
	)
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
