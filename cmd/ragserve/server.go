package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/ragserve/api/handlers"
	"github.com/BaSui01/ragserve/chat"
	"github.com/BaSui01/ragserve/config"
	"github.com/BaSui01/ragserve/internal/cache"
	"github.com/BaSui01/ragserve/internal/metrics"
	"github.com/BaSui01/ragserve/internal/server"
	"github.com/BaSui01/ragserve/llm/factory"
	"github.com/BaSui01/ragserve/llm/tokenizer"
	"github.com/BaSui01/ragserve/memory"
	"github.com/BaSui01/ragserve/rag"
	"github.com/BaSui01/ragserve/rag/loader"
)

// Server 聚合全部组件并管理业务与指标两个 HTTP 端口的生命周期。
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	httpManager    *server.Manager
	metricsManager *server.Manager
	snapshots      *cache.SessionSnapshots
	store          rag.VectorStore

	cancel context.CancelFunc
}

// NewServer 创建服务实例。组件在 Start 时装配。
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, logger: logger}
}

// Start 装配组件并启动 HTTP 服务。分词编码不可用视为致命错误，
// 服务拒绝启动：没有它记忆预算无法执行。
func (s *Server) Start() error {
	cfg := s.cfg
	logger := s.logger

	tok := tokenizer.NewTiktokenTokenizer(cfg.Memory.Encoding)
	if err := tok.Validate(); err != nil {
		return fmt.Errorf("tokenizer validation failed: %w", err)
	}
	logger.Info("tokenizer validated", zap.String("encoding", cfg.Memory.Encoding))

	store, err := s.buildVectorStore()
	if err != nil {
		return fmt.Errorf("vector store init failed: %w", err)
	}
	s.store = store

	embedder := rag.NewHTTPEmbedder(cfg.Embedding.EmbedderConfig())
	retriever := rag.NewRetriever(store, embedder, logger)
	selector := chat.NewSelector(cfg.Retrieval.RetrievalOptions(), retriever)

	resolver, err := factory.NewResolver(cfg.LLM.FactoryConfig(), logger)
	if err != nil {
		return fmt.Errorf("backend resolver init failed: %w", err)
	}
	logger.Info("llm providers initialized",
		zap.Strings("kinds", resolver.Registry().List()),
		zap.String("default", cfg.LLM.Default))

	var snapshots memory.Snapshotter
	if cfg.Redis.Enabled {
		redisSnapshots, err := cache.NewSessionSnapshots(cfg.Redis.CacheConfig(), logger)
		if err != nil {
			return fmt.Errorf("redis init failed: %w", err)
		}
		s.snapshots = redisSnapshots
		snapshots = redisSnapshots
		logger.Info("session snapshots enabled", zap.String("addr", cfg.Redis.Addr))
	}

	sessions := memory.NewSessionStore(snapshots, logger)

	summaryBackend, err := resolver.Resolve(cfg.Memory.SummaryModel)
	if err != nil {
		return fmt.Errorf("summary backend resolve failed: %w", err)
	}
	summarizer := memory.NewSummarizer(summaryBackend.Provider, summaryBackend.Model)
	keeper := memory.NewBudgetKeeper(
		cfg.Memory.TokenBudget,
		memory.ParsePolicy(cfg.Memory.Policy),
		tok, summarizer, logger)

	collector := metrics.NewCollector("ragserve", logger)
	orch := chat.NewOrchestrator(selector, resolver, sessions, keeper, collector, logger)

	chunker := rag.NewDocumentChunker(cfg.Chunking.ChunkingOptions(), tok, logger)
	loaders := loader.NewRegistry()

	chatHandler := handlers.NewChatHandler(orch, collector, logger)
	docsHandler := handlers.NewDocumentsHandler(loaders, chunker, embedder, store, collector, logger)
	healthHandler := handlers.NewHealthHandler(Version, logger)
	s.registerHealthChecks(healthHandler, resolver)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", chatHandler.Handle)
	mux.HandleFunc("POST /documents/upload", docsHandler.HandleUpload)
	mux.HandleFunc("GET /documents/count", docsHandler.HandleCount)
	mux.HandleFunc("GET /healthz", healthHandler.HandleLiveness)
	mux.HandleFunc("GET /readyz", healthHandler.HandleReadiness)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	middlewares := []Middleware{
		Recovery(logger),
		RequestID(),
		RequestLogger(logger),
		Metrics(collector),
		CORS(cfg.Server.CORSOrigins),
	}
	if cfg.Server.RateLimitRPS > 0 {
		middlewares = append(middlewares,
			RateLimiter(ctx, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))
	}
	handler := Chain(mux, middlewares...)

	s.httpManager = server.NewManager(handler, server.Config{
		Addr:            fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     120 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", collector.Handler())
	s.metricsManager = server.NewManager(metricsMux, server.Config{
		Addr:            fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     60 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	if err := s.httpManager.Start(); err != nil {
		cancel()
		return fmt.Errorf("http server start failed: %w", err)
	}
	if err := s.metricsManager.Start(); err != nil {
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		s.httpManager.Shutdown(shutdownCtx)
		return fmt.Errorf("metrics server start failed: %w", err)
	}

	logger.Info("ragserve started",
		zap.String("http_addr", s.httpManager.Addr()),
		zap.String("metrics_addr", s.metricsManager.Addr()))
	return nil
}

// WaitForShutdown 阻塞至收到退出信号，然后按序优雅关闭。
func (s *Server) WaitForShutdown() {
	s.httpManager.WaitForShutdown()

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.metricsManager.Shutdown(ctx); err != nil {
		s.logger.Error("metrics server shutdown error", zap.Error(err))
	}
	if s.snapshots != nil {
		if err := s.snapshots.Close(); err != nil {
			s.logger.Error("redis close error", zap.Error(err))
		}
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Error("vector store close error", zap.Error(err))
		}
	}
}

func (s *Server) buildVectorStore() (rag.VectorStore, error) {
	switch s.cfg.Vector.Driver {
	case "memory":
		return rag.NewInMemoryVectorStore(s.logger), nil
	default:
		return rag.NewSQLiteVectorStore(s.cfg.Vector.Path, s.logger)
	}
}

func (s *Server) registerHealthChecks(h *handlers.HealthHandler, resolver *factory.Resolver) {
	h.RegisterCheck(handlers.HealthCheckFunc{
		CheckName: "vector_store",
		Fn: func(ctx context.Context) error {
			_, err := s.store.Count(ctx)
			return err
		},
	})

	h.RegisterCheck(handlers.HealthCheckFunc{
		CheckName: "llm_backend",
		Fn: func(ctx context.Context) error {
			backend, err := resolver.Resolve("")
			if err != nil {
				return err
			}
			_, err = backend.Provider.HealthCheck(ctx)
			return err
		},
	})

	if s.snapshots != nil {
		h.RegisterCheck(handlers.HealthCheckFunc{
			CheckName: "redis",
			Fn: func(ctx context.Context) error {
				return s.snapshots.Ping(ctx)
			},
		})
	}
}
