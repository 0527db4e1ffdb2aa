package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/docrag/docrag/internal/api/handlers"
	"github.com/docrag/docrag/internal/api/middleware"
	"github.com/docrag/docrag/internal/auth"
	"github.com/docrag/docrag/internal/cache"
	"github.com/docrag/docrag/internal/classify"
	"github.com/docrag/docrag/internal/config"
	"github.com/docrag/docrag/internal/document"
	"github.com/docrag/docrag/internal/embedding"
	"github.com/docrag/docrag/internal/llm"
	"github.com/docrag/docrag/internal/queue"
	"github.com/docrag/docrag/internal/rag"
	"github.com/docrag/docrag/internal/storage"
	"github.com/docrag/docrag/internal/vectorstore"
)

type Router struct {
	mux    *chi.Mux
	db     *pgxpool.Pool
	redis  *redis.Client
	cfg    *config.Config
	jwt    *auth.JWTMiddleware
	llmGW  llm.Gateway
	logger *slog.Logger
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, logger *slog.Logger) *Router {
	return &Router{
		mux:    chi.NewRouter(),
		db:     db,
		redis:  rdb,
		cfg:    cfg,
		jwt:    auth.NewJWTMiddleware(cfg.Auth.JWTSecret),
		llmGW:  llm.NewGateway(cfg.LLM),
		logger: logger,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(rt.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	objStore := storage.NewSupabaseStorage(rt.cfg.Storage.SupabaseURL, rt.cfg.Storage.SupabaseKey)
	queueClient := queue.NewClient(rt.cfg.Redis, rt.cfg.Ingest)
	jobTracker := cache.NewJobTracker(cache.NewCache(rt.redis))

	vs := vectorstore.NewPgVectorStore(rt.db)
	docStore := document.NewPgStore(rt.db)
	docSvc := document.NewService(docStore, objStore, rt.cfg.Storage.Bucket, queueClient, jobTracker, vs)
	embedSvc := embedding.NewService(rt.llmGW, rt.cfg.Embedding)
	generator := rag.NewGenerator(rt.llmGW, rt.cfg.LLM, rt.cfg.Retrieval)
	pipeline := rag.NewPipeline(vs, embedSvc, generator, rag.NewBM25Reranker(), rt.cfg.Ingest, rt.cfg.Retrieval, rt.logger)

	classifySvc := classify.NewService(rt.llmGW, rt.cfg.LLM, rt.logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		docH := handlers.NewDocumentHandler(docSvc, jobTracker)
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", docH.Upload)
			r.Get("/", docH.List)
			r.Get("/{id}", docH.Get)
			r.Delete("/{id}", docH.Delete)
			r.Get("/{id}/status", docH.Status)
		})

		ragH := handlers.NewRAGHandler(pipeline)
		r.Post("/rag/query", ragH.Query)

		classifyH := handlers.NewClassifyHandler(classifySvc)
		r.Post("/classify", classifyH.Classify)
	})

	return r
}
