package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/arcline/ideascope/internal/config"
	"github.com/arcline/ideascope/internal/db"
	dbRedis "github.com/arcline/ideascope/internal/db/redis"
	"github.com/arcline/ideascope/internal/domain"
	logpkg "github.com/arcline/ideascope/internal/logger"
	"github.com/arcline/ideascope/internal/metrics"
	budgetrepo "github.com/arcline/ideascope/internal/repository/budget"
	"github.com/arcline/ideascope/internal/repository/embcache"
	chiTransport "github.com/arcline/ideascope/internal/transport/chi"
	openaiTransport "github.com/arcline/ideascope/internal/transport/openai"
	analysisuc "github.com/arcline/ideascope/internal/usecase/analysis"
	embeddinguc "github.com/arcline/ideascope/internal/usecase/embedding"
	healthuc "github.com/arcline/ideascope/internal/usecase/health"
	retrievaluc "github.com/arcline/ideascope/internal/usecase/retrieval"
	"github.com/arcline/ideascope/internal/vectorstore"
	"github.com/arcline/ideascope/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ideascope API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Database.Addrs),
	)

	// Redis is optional: without it the service runs with no embedding
	// cache and in-memory-only budget counters.
	var store db.Store
	if len(cfg.Database.Addrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		ctx := context.Background()
		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to cache store")
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterAnalysisMetrics()

	embedder := buildEmbedder(cfg, store, logger)

	vecStore := vectorstore.New(cfg.Store.Capacity)
	retrievalSvc := retrievaluc.New(
		vecStore, embedder, cfg.Store.TopK, cfg.Store.MinSimilarity, logger,
	)

	analysts := buildProviders(cfg.EnabledProviders(config.RoleAnalyst), logger)
	if len(analysts) == 0 {
		logger.Warn("No analysis providers enabled; /v1/analyze will return 503")
	}

	opts := []analysisuc.Option{
		analysisuc.WithMaxRetries(cfg.Analysis.MaxRetries),
	}
	if research := buildProviders(cfg.EnabledProviders(config.RoleResearch), logger); len(research) > 0 {
		opts = append(opts, analysisuc.WithResearchProvider(research[0]))
	}
	analysisSvc := analysisuc.New(analysts, retrievalSvc, logger, opts...)

	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pinger, embeddingHealthChecker(cfg, logger), vecStore, len(analysts))

	server := chiTransport.NewServer(analysisSvc, retrievalSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain:
// OpenAI -> Cached -> Instrumented -> Resilient (hash fallback outermost).
func buildEmbedder(cfg config.Config, store db.Store, logger *zap.Logger) domain.Embedder {
	if !cfg.Embedding.Enabled() {
		logger.Info("No remote embedding provider configured, using hash embedder")
		return embeddinguc.NewResilientEmbedder(nil, logger)
	}

	base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:        cfg.Embedding.APIKey,
		BaseURL:       cfg.Embedding.BaseURL,
		Model:         cfg.Embedding.Model,
		Dimensions:    cfg.Embedding.Dimensions,
		MaxInputChars: cfg.Embedding.MaxInputChars,
		Provider:      cfg.Embedding.Provider,
		Logger:        logger,
	})

	var remote domain.Embedder = base
	if store != nil {
		remote = embcache.New(base, store, cfg.Storage.KeyPrefix, metrics.EmbeddingCacheTotal, logger)
	}

	// Single BudgetTracker shared by the embedder chain.
	var budget *embeddinguc.BudgetTracker
	budgetCfg := cfg.Embedding.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := embeddinguc.BudgetActionWarn
		if budgetCfg.Action == "reject" {
			action = embeddinguc.BudgetActionReject
		}
		budget = embeddinguc.NewBudgetTracker(
			cfg.Embedding.Provider, cfg.Storage.KeyPrefix,
			budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, logger,
		)
		if store != nil {
			budgetStore := budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour)
			budget.WithStore(context.Background(), budgetStore)
		}
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	// Go gotcha: (*BudgetTracker)(nil) wrapped in BudgetChecker != nil.
	var budgetChecker embeddinguc.BudgetChecker
	if budget != nil {
		budgetChecker = budget
	}

	remote = embeddinguc.NewInstrumentedEmbedder(
		remote, cfg.Embedding.Provider, cfg.Embedding.Model, budgetChecker, logger,
	)

	logger.Info("Embedder chain created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cached", store != nil),
	)

	return embeddinguc.NewResilientEmbedder(remote, logger)
}

// buildProviders creates chat clients for the given provider configs.
func buildProviders(configs []config.ProviderConfig, logger *zap.Logger) []analysisuc.Provider {
	out := make([]analysisuc.Provider, 0, len(configs))
	for _, pc := range configs {
		out = append(out, openaiTransport.NewChatClient(&openaiTransport.ChatConfig{
			APIKey:      pc.APIKey,
			BaseURL:     pc.BaseURL,
			Provider:    pc.ID,
			Model:       pc.Model,
			Temperature: pc.Temperature,
			MaxTokens:   pc.MaxTokens,
			Logger:      logger,
		}))
		logger.Info("Analysis provider registered",
			zap.String("provider", pc.ID),
			zap.String("model", pc.Model),
			zap.Int("priority", pc.Priority),
			zap.String("role", pc.Role),
		)
	}
	return out
}

// embeddingHealthChecker returns a checker for the remote embedding API,
// or nil when only the hash embedder is in play.
func embeddingHealthChecker(cfg config.Config, logger *zap.Logger) healthuc.EmbeddingChecker {
	if !cfg.Embedding.Enabled() {
		return nil
	}
	return openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:   cfg.Embedding.APIKey,
		BaseURL:  cfg.Embedding.BaseURL,
		Model:    cfg.Embedding.Model,
		Provider: cfg.Embedding.Provider,
		Logger:   logger,
	})
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
