package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/docrag/docrag/internal/cache"
	"github.com/docrag/docrag/internal/config"
	"github.com/docrag/docrag/internal/database"
	"github.com/docrag/docrag/internal/document"
	"github.com/docrag/docrag/internal/embedding"
	"github.com/docrag/docrag/internal/llm"
	"github.com/docrag/docrag/internal/queue"
	"github.com/docrag/docrag/internal/queue/workers"
	"github.com/docrag/docrag/internal/rag"
	"github.com/docrag/docrag/internal/storage"
	"github.com/docrag/docrag/internal/vectorstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	gateway := llm.NewGateway(cfg.LLM)
	objStore := storage.NewSupabaseStorage(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey)
	jobTracker := cache.NewJobTracker(cache.NewCache(rdb))

	vs := vectorstore.NewPgVectorStore(db)
	embedSvc := embedding.NewService(gateway, cfg.Embedding)
	generator := rag.NewGenerator(gateway, cfg.LLM, cfg.Retrieval)
	pipeline := rag.NewPipeline(vs, embedSvc, generator, rag.NewBM25Reranker(), cfg.Ingest, cfg.Retrieval, logger)

	docStore := document.NewPgStore(db)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	docWorker := workers.NewDocumentWorker(docStore, objStore, cfg.Storage.Bucket, pipeline, jobTracker, logger)
	registry.Register(queue.TypeDocumentProcess, asynq.HandlerFunc(docWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", cfg.Worker.Concurrency)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
