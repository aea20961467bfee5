package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/didim/welfare-matcher/internal/ai"
	"github.com/didim/welfare-matcher/internal/api"
	"github.com/didim/welfare-matcher/internal/config"
	"github.com/didim/welfare-matcher/internal/db"
	"github.com/didim/welfare-matcher/internal/eligibility"
	"github.com/didim/welfare-matcher/internal/ingest"
	"github.com/didim/welfare-matcher/internal/logger"
	"github.com/didim/welfare-matcher/internal/metrics"
	"github.com/didim/welfare-matcher/internal/recommend"
)

func main() {
	boot := logger.New("info", "json")
	cfg, err := config.Load()
	if err != nil {
		boot.Fatal("failed to load config", zap.Error(err))
	}
	_ = boot.Sync()

	zl := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zl.Sync() }()
	log := logger.NewZapAdapter(zl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Database.MigrateOnStart {
		if err := db.ApplyMigrations(ctx, pool, log); err != nil {
			zl.Fatal("migration failed", zap.Error(err))
		}
	}

	store := db.NewStore(pool)
	m := metrics.New(prometheus.DefaultRegisterer)

	var gen ai.TextGenerator
	if !cfg.GenAI.Disabled {
		gen = ai.NewOllamaClient(cfg.GenAI.BaseURL, cfg.GenAI.Model, cfg.GenAI.APIKey)
	} else {
		log.Warn("genai disabled; assessments use rule-based classification", nil)
	}

	classifier := ai.NewClassifier(gen, log, m)
	classifier.Timeout = cfg.GenAI.Timeout
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable; classification cache disabled", map[string]interface{}{"error": err.Error()})
		} else {
			classifier.Cache = ai.NewRedisCache(rdb, cfg.Redis.TTL)
		}
	}

	registry, err := ingest.LoadRegistry(cfg.Ingest.RegistryPath)
	if err != nil {
		zl.Fatal("failed to load product sources", zap.Error(err))
	}
	pipeline := ingest.NewPipeline(registry, store, store, log.With(map[string]interface{}{"component": "ingest"}), m)
	pipeline.Concurrency = cfg.Ingest.Concurrency

	policy := eligibility.DefaultPolicy()
	recommendations := recommend.NewService(classifier, store, log, m)
	srv, err := api.NewServer(api.Options{
		CORSOrigins:    cfg.Server.CORSOrigins,
		AdminSecret:    cfg.Server.AdminSecret,
		JWTSecret:      cfg.Server.JWTSecret,
		RequestTimeout: cfg.Server.Timeout,
		Gatherer:       prometheus.DefaultGatherer,
	}, api.Deps{
		Eligibility:     eligibility.NewService(store, policy, log, m),
		Recommendations: recommendations,
		Applications:    store,
		Writer:          ai.NewApplicationWriter(gen, log),
		Policy:          policy,
		Catalog:         store,
		Ingester:        pipeline,
		Log:             log,
		Metrics:         m,
	})
	if err != nil {
		zl.Fatal("failed to build server", zap.Error(err))
	}

	go func() {
		log.Info("server starting", map[string]interface{}{"port": cfg.Server.Port, "env": cfg.App.Environment})
		if err := srv.Start(cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Echo.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	recommendations.Wait()
	log.Info("server stopped", nil)
}
