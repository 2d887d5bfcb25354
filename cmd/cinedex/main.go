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
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/cinedex/cinedex/internal/config"
	dbRedis "github.com/cinedex/cinedex/internal/db/redis"
	"github.com/cinedex/cinedex/internal/domain"
	logpkg "github.com/cinedex/cinedex/internal/logger"
	"github.com/cinedex/cinedex/internal/metrics"
	"github.com/cinedex/cinedex/internal/repository/embcache"
	movierepo "github.com/cinedex/cinedex/internal/repository/movie"
	"github.com/cinedex/cinedex/internal/repository/querycache"
	reviewrepo "github.com/cinedex/cinedex/internal/repository/review"
	"github.com/cinedex/cinedex/internal/repository/searchindex"
	userrepo "github.com/cinedex/cinedex/internal/repository/user"
	chiTransport "github.com/cinedex/cinedex/internal/transport/chi"
	openaiEmb "github.com/cinedex/cinedex/internal/transport/openai"
	agentuc "github.com/cinedex/cinedex/internal/usecase/agent"
	authuc "github.com/cinedex/cinedex/internal/usecase/auth"
	healthuc "github.com/cinedex/cinedex/internal/usecase/health"
	movieuc "github.com/cinedex/cinedex/internal/usecase/movie"
	reviewuc "github.com/cinedex/cinedex/internal/usecase/review"
	searchuc "github.com/cinedex/cinedex/internal/usecase/search"
	"github.com/cinedex/cinedex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting cinedex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Embedder chain — composition root
	baseEmbedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	var embedder domain.Embedder = embcache.New(baseEmbedder, store, metrics.EmbeddingCacheTotal, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Repositories
	movieRepo := movierepo.New(store)
	userRepo := userrepo.New(store)
	reviewRepo := reviewrepo.New(store)
	indexRepo := searchindex.New(store, cfg.Embedding.Dimensions, cfg.Search.Oversample)
	resultCache := querycache.New(store, metrics.QueryCacheTotal, metrics.CacheGenerationBumps, logger)

	// The index is best-effort: without it every search rides the
	// brute-force fallback until the store recovers.
	if err := indexRepo.EnsureIndex(ctx); err != nil {
		logger.Warn("Vector index unavailable, search will use fallback", zap.Error(err))
	}

	// Use case services
	searchSvc := searchuc.New(indexRepo, movieRepo, resultCache, embedder, searchuc.Config{
		CacheTTL:     time.Duration(cfg.Cache.TTLSec) * time.Second,
		ScanCap:      cfg.Search.ScanCap,
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
		CacheTimeout: time.Duration(cfg.Search.CacheTimeoutMS) * time.Millisecond,
		IndexTimeout: time.Duration(cfg.Search.IndexTimeoutMS) * time.Millisecond,
		ScanTimeout:  time.Duration(cfg.Search.ScanTimeoutMS) * time.Millisecond,
		EmbedTimeout: time.Duration(cfg.Search.EmbedTimeoutMS) * time.Millisecond,
	}, logger)
	movieSvc := movieuc.New(movieRepo, embedder, searchSvc, cfg.Search.ScanCap, logger)
	reviewSvc := reviewuc.New(reviewRepo, movieRepo, searchSvc, logger)
	authSvc := authuc.New(userRepo, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMin)*time.Minute)
	healthSvc := healthuc.New(store, baseEmbedder, indexRepo)

	var agentSvc *agentuc.Service
	if cfg.Agent.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.Agent.APIKey)
		if cfg.Agent.BaseURL != "" {
			clientCfg.BaseURL = cfg.Agent.BaseURL
		}
		agentSvc = agentuc.New(
			openai.NewClientWithConfig(clientCfg),
			searchSvc, movieSvc, cfg.Agent.Model, cfg.Agent.MaxToolRounds, logger,
		)
		logger.Info("Chat agent enabled", zap.String("model", cfg.Agent.Model))
	}

	server := chiTransport.NewServer(authSvc, movieSvc, reviewSvc, searchSvc, agentSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

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
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

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
