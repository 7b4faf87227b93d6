package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/gana36/YELPB/internal/config"
	"github.com/gana36/YELPB/internal/db"
	dbRedis "github.com/gana36/YELPB/internal/db/redis"
	logpkg "github.com/gana36/YELPB/internal/logger"
	"github.com/gana36/YELPB/internal/metrics"
	usagerepo "github.com/gana36/YELPB/internal/repository/usage"
	chiTransport "github.com/gana36/YELPB/internal/transport/chi"
	geminiAnalyzer "github.com/gana36/YELPB/internal/transport/gemini"
	openaiAnalyzer "github.com/gana36/YELPB/internal/transport/openai"
	"github.com/gana36/YELPB/internal/transport/yelp"
	assistantuc "github.com/gana36/YELPB/internal/usecase/assistant"
	healthuc "github.com/gana36/YELPB/internal/usecase/health"
	"github.com/gana36/YELPB/internal/usecase/quota"
	searchuc "github.com/gana36/YELPB/internal/usecase/search"
	usageuc "github.com/gana36/YELPB/internal/usecase/usage"
	"github.com/gana36/YELPB/internal/version"
)

// analyzer is what the assistant and the health check need from a provider.
type analyzer interface {
	assistantuc.Analyzer
	healthuc.AnalyzerChecker
}

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

	logger.Info("Starting yelpb API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("assistant_provider", cfg.Assistant.Provider),
	)

	ctx := context.Background()

	// Optional counter store. Without it quotas are tracked in memory only.
	var store db.Store
	if cfg.Database.Enabled() {
		redisStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer redisStore.Close()

		if err := redisStore.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")
		store = redisStore
	}

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterSourceMetrics()

	yelpClient := yelp.NewClient(yelp.Config{
		APIKey:            cfg.Sources.Yelp.APIKey,
		BaseURL:           cfg.Sources.Yelp.BaseURL,
		Timeout:           time.Duration(cfg.Sources.Yelp.TimeoutSec) * time.Second,
		RequestsPerSecond: cfg.Sources.Yelp.RequestsPerSecond,
		Burst:             cfg.Sources.Yelp.Burst,
		Logger:            logger,
	})

	// One tracker per source, shared by the decorators and the usage report.
	action := quota.ActionWarn
	if cfg.Usage.Action == "reject" {
		action = quota.ActionReject
	}
	chatQuota := newTracker(ctx, yelp.SourceChat, cfg, action, store, logger)
	listingQuota := newTracker(ctx, yelp.SourceListing, cfg, action, store, logger)

	chatSource := quota.NewGuardedChat(yelp.NewChatClient(yelpClient), yelp.SourceChat, chatQuota, logger)
	listingSource := quota.NewGuardedListing(yelp.NewListingClient(yelpClient), yelp.SourceListing, listingQuota, logger)

	searchSvc := searchuc.New(chatSource, listingSource, logger).
		WithBranchTimeout(time.Duration(cfg.Sources.BranchTimeoutSec) * time.Second)

	// Pass nil interfaces (not typed nil pointers!) for unconfigured collaborators.
	// Go gotcha: (*gemini.Analyzer)(nil) wrapped in an interface != nil.
	var textAnalyzer assistantuc.Analyzer
	var analyzerHealth healthuc.AnalyzerChecker
	if cfg.Assistant.Enabled() {
		a := buildAnalyzer(ctx, cfg.Assistant, logger)
		textAnalyzer = a
		analyzerHealth = a
		logger.Info("Assistant analyzer created",
			zap.String("provider", cfg.Assistant.Provider),
			zap.String("model", cfg.Assistant.Model),
		)
	}
	assistantSvc := assistantuc.New(textAnalyzer, searchSvc, logger)

	usageSvc := usageuc.New(chatQuota, listingQuota)

	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pinger, analyzerHealth)

	server := chiTransport.NewServer(searchSvc, assistantSvc, usageSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	if len(cfg.HTTP.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.HTTP.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", chiTransport.HeaderSourcesDegraded},
			MaxAge:         300,
		}))
	}
	if cfg.RateLimit.RequestsPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit.RequestsPerMinute, time.Minute))
	}
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(metrics.Middleware())
	server.Register(r)

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

// newTracker creates a source quota tracker, persisted when a store is configured.
func newTracker(
	ctx context.Context,
	source string,
	cfg config.Config,
	action quota.Action,
	store db.Store,
	logger *zap.Logger,
) *quota.Tracker {
	t := quota.NewTracker(source, cfg.Database.KeyPrefix, cfg.Usage.DailyRequestLimit, action, logger)
	if store != nil {
		t.WithStore(ctx, usagerepo.New(store, usagerepo.DefaultTTL))
	}
	return t
}

// buildAnalyzer creates the configured text analysis provider.
func buildAnalyzer(ctx context.Context, cfg config.AssistantConfig, logger *zap.Logger) analyzer {
	switch cfg.Provider {
	case "gemini":
		a, err := geminiAnalyzer.NewAnalyzer(ctx, &geminiAnalyzer.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal("Failed to create Gemini analyzer", zap.Error(err))
		}
		return a
	default:
		return openaiAnalyzer.NewAnalyzer(&openaiAnalyzer.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Logger:  logger,
		})
	}
}
